/*
Copyright © 2019 the InMAP authors.
This file is part of the InMAP transect tool.

The InMAP transect tool is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The InMAP transect tool is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the InMAP transect tool.  If not, see <http://www.gnu.org/licenses/>.
*/

package transect

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a run parameter is out of range.
	ErrInvalidParameter = errors.New("transect: invalid parameter")

	// ErrGeometryDecomposition is returned when a centerline cannot be
	// split into straight segments.
	ErrGeometryDecomposition = errors.New("transect: centerline cannot be decomposed into segments")

	// ErrEmptyTransectSet is returned when no transect could be created.
	ErrEmptyTransectSet = errors.New("transect: no transect lines created")

	// ErrNoElevationData is returned when the elevation source has no value
	// for any of the sample points.
	ErrNoElevationData = errors.New("transect: no elevations created. Check coordinate system " +
		"of centerline and make sure the centerline is within the raster extent")
)

// InvalidParameterError describes a parameter that failed validation.
type InvalidParameterError struct {
	Name  string
	Value interface{}
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("transect: invalid parameter: %s=%v but should be >0", e.Name, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidParameter).
func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// UnmatchedAnchorError is returned by Run when an anchor does not lie on
// any centerline segment and the FailUnmatchedAnchors policy is in effect.
type UnmatchedAnchorError struct {
	Anchor Anchor
}

func (e *UnmatchedAnchorError) Error() string {
	return fmt.Sprintf("transect: anchor at distance %g (%g, %g) does not lie on any centerline segment",
		e.Anchor.Distance, e.Anchor.X, e.Anchor.Y)
}

func decompositionErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrGeometryDecomposition, fmt.Sprintf(format, a...))
}

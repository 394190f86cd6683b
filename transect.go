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

// Package transect creates cross-section transects perpendicular to a
// stream centerline at fixed intervals, samples points along each transect,
// and attaches surface elevations to the samples to create elevation
// profiles.
package transect

import (
	"math"

	"github.com/ctessum/geom"
)

// Version gives the version number.
const Version = "1.0.0"

// Params are the run-level parameters.
type Params struct {
	// Spacing is the arc-length distance between transects.
	Spacing float64

	// TransectLength is the width of each transect.
	TransectLength float64

	// SampleCount is the number of sample points on each transect.
	SampleCount int
}

// Validate checks that all parameters are positive.
func (p Params) Validate() error {
	if !(p.Spacing > 0) {
		return &InvalidParameterError{Name: "Spacing", Value: p.Spacing}
	}
	if !(p.TransectLength > 0) {
		return &InvalidParameterError{Name: "TransectLength", Value: p.TransectLength}
	}
	if p.SampleCount <= 0 {
		return &InvalidParameterError{Name: "SampleCount", Value: p.SampleCount}
	}
	return nil
}

// Transect is a straight line perpendicular to the centerline, centered
// on an anchor.
type Transect struct {
	ID                  int
	Origin, Destination geom.Point
	Length              float64
}

// Build creates a transect of length transectLength centered on anchor and
// perpendicular to segment.
func Build(anchor geom.Point, segment Segment, transectLength float64, id int) Transect {
	rise := segment.End.Y - segment.Start.Y
	run := segment.End.X - segment.Start.X

	var a float64
	if run == 0 {
		a = math.Pi / 2
	} else {
		a = math.Atan(rise / run)
	}

	halfWidth := transectLength / 2
	dx := halfWidth * math.Cos(a)
	dy := halfWidth * math.Sin(a)

	return Transect{
		ID:          id,
		Origin:      geom.Point{X: anchor.X + dy, Y: anchor.Y - dx},
		Destination: geom.Point{X: anchor.X - dy, Y: anchor.Y + dx},
		Length:      transectLength,
	}
}

// LineString returns t as a two-point line running from its origin to its
// destination.
func (t Transect) LineString() geom.LineString {
	return geom.LineString{t.Origin, t.Destination}
}

// Bounds gives the rectangular extents of the transect.
func (t Transect) Bounds() *geom.Bounds { return t.LineString().Bounds() }

// PositionAlongLine returns the point at distance d from the origin of t.
// d is clamped to [0, t.Length].
func (t Transect) PositionAlongLine(d float64) geom.Point {
	if d <= 0 {
		return t.Origin
	}
	if d >= t.Length {
		return t.Destination
	}
	return lerp(t.Origin, t.Destination, d/t.Length)
}

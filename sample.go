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

import "github.com/ctessum/geom"

// SamplePoint is a location on a transect where elevation is queried.
type SamplePoint struct {
	TransectID int

	// Position is the distance from the transect origin.
	Position float64

	Location geom.Point

	// Elevation is only meaningful when Valid is true. Valid is false
	// when the location is outside of the elevation source coverage.
	Elevation float64
	Valid     bool
}

// Sample returns sampleCount evenly spaced points along t. The first
// point is half a spacing from the origin, so all points are strictly
// inside the transect.
func Sample(t Transect, sampleCount int) ([]SamplePoint, error) {
	if sampleCount <= 0 {
		return nil, &InvalidParameterError{Name: "SampleCount", Value: sampleCount}
	}
	spacing := t.Length / float64(sampleCount)
	o := make([]SamplePoint, sampleCount)
	for i := range o {
		pos := spacing/2 + float64(i)*spacing
		o[i] = SamplePoint{
			TransectID: t.ID,
			Position:   pos,
			Location:   t.PositionAlongLine(pos),
		}
	}
	return o, nil
}

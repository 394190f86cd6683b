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
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name                string
		anchor              geom.Point
		segment             Segment
		origin, destination geom.Point
	}{
		{
			name:        "horizontal",
			anchor:      geom.Point{X: 5, Y: 0},
			segment:     Segment{Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 10, Y: 0}},
			origin:      geom.Point{X: 5, Y: -2},
			destination: geom.Point{X: 5, Y: 2},
		},
		{
			name:        "vertical",
			anchor:      geom.Point{X: 0, Y: 5},
			segment:     Segment{Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 0, Y: 10}},
			origin:      geom.Point{X: 2, Y: 5},
			destination: geom.Point{X: -2, Y: 5},
		},
		{
			name:        "diagonal",
			anchor:      geom.Point{X: 1, Y: 1},
			segment:     Segment{Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 2, Y: 2}},
			origin:      geom.Point{X: 1 + math.Sqrt2, Y: 1 - math.Sqrt2},
			destination: geom.Point{X: 1 - math.Sqrt2, Y: 1 + math.Sqrt2},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr := Build(test.anchor, test.segment, 4, 3)
			if tr.ID != 3 {
				t.Errorf("ID: have %d, want 3", tr.ID)
			}
			if pointDifferent(tr.Origin, test.origin) {
				t.Errorf("origin: have %v, want %v", tr.Origin, test.origin)
			}
			if pointDifferent(tr.Destination, test.destination) {
				t.Errorf("destination: have %v, want %v", tr.Destination, test.destination)
			}
		})
	}
}

func TestBuildPerpendicular(t *testing.T) {
	segments := []Segment{
		{Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 3, Y: 4}},
		{Start: geom.Point{X: 3, Y: 4}, End: geom.Point{X: -7, Y: 1}},
		{Start: geom.Point{X: -7, Y: 1}, End: geom.Point{X: -7, Y: -20}},
		{Start: geom.Point{X: -7, Y: -20}, End: geom.Point{X: 100, Y: -19}},
	}
	const length = 37.5
	for i, s := range segments {
		anchor := lerp(s.Start, s.End, 0.3)
		tr := Build(anchor, s, length, i)
		tx, ty := s.End.X-s.Start.X, s.End.Y-s.Start.Y
		vx, vy := tr.Destination.X-tr.Origin.X, tr.Destination.Y-tr.Origin.Y
		if dot := (tx*vx + ty*vy) / math.Hypot(tx, ty); math.Abs(dot) > 1.e-9 {
			t.Errorf("segment %d: transect is not perpendicular; dot product = %g", i, dot)
		}
		if l := tr.LineString().Length(); absDifferent(l, length) {
			t.Errorf("segment %d: length is %g but should be %g", i, l, length)
		}
		mid := tr.PositionAlongLine(length / 2)
		if pointDifferent(mid, anchor) {
			t.Errorf("segment %d: transect is centered on %v, not the anchor %v", i, mid, anchor)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		p    Params
		name string
	}{
		{p: Params{Spacing: 10, TransectLength: 50, SampleCount: 20}},
		{p: Params{Spacing: 0, TransectLength: 50, SampleCount: 20}, name: "Spacing"},
		{p: Params{Spacing: 10, TransectLength: -5, SampleCount: 20}, name: "TransectLength"},
		{p: Params{Spacing: 10, TransectLength: 50, SampleCount: 0}, name: "SampleCount"},
	}
	for _, test := range tests {
		err := test.p.Validate()
		if test.name == "" {
			if err != nil {
				t.Errorf("%+v: unexpected error %v", test.p, err)
			}
			continue
		}
		var ipe *InvalidParameterError
		if !errors.As(err, &ipe) || ipe.Name != test.name {
			t.Errorf("%+v: have error %v, want invalid %s", test.p, err, test.name)
		}
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%+v: error should match ErrInvalidParameter", test.p)
		}
	}
}

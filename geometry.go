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
	"math"

	"github.com/ctessum/geom"
)

// DefaultTolerance is the distance, in the units of the centerline
// projection, within which a point is considered to touch a segment.
const DefaultTolerance = 1.e-6

// PositionAlongLine returns the point at arc-length distance d along l.
// d is clamped to [0, l.Length()]. l must contain at least one point.
func PositionAlongLine(l geom.LineString, d float64) geom.Point {
	if d <= 0 || len(l) == 1 {
		return l[0]
	}
	for i := 0; i < len(l)-1; i++ {
		p1, p2 := l[i], l[i+1]
		segLen := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
		if d <= segLen && segLen > 0 {
			return lerp(p1, p2, d/segLen)
		}
		d -= segLen
	}
	return l[len(l)-1]
}

func lerp(p1, p2 geom.Point, f float64) geom.Point {
	return geom.Point{
		X: p1.X + (p2.X-p1.X)*f,
		Y: p1.Y + (p2.Y-p1.Y)*f,
	}
}

// distToSegment returns the shortest distance between p and the line
// segment running from a to b.
func distToSegment(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Contains returns whether p lies exactly on one of the segments of l.
func Contains(l geom.LineString, p geom.Point) bool {
	for i := 0; i < len(l)-1; i++ {
		a, b := l[i], l[i+1]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross != 0 {
			continue
		}
		if between(p.X, a.X, b.X) && between(p.Y, a.Y, b.Y) {
			return true
		}
	}
	return false
}

func between(v, a, b float64) bool {
	return v >= math.Min(a, b) && v <= math.Max(a, b)
}

// Touches returns whether p is within tolerance of l.
func Touches(l geom.LineString, p geom.Point, tolerance float64) bool {
	if len(l) == 1 {
		return math.Hypot(p.X-l[0].X, p.Y-l[0].Y) <= tolerance
	}
	for i := 0; i < len(l)-1; i++ {
		if distToSegment(p, l[i], l[i+1]) <= tolerance {
			return true
		}
	}
	return false
}

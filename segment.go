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
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Segment is one straight piece of a centerline.
type Segment struct {
	Start, End geom.Point
}

// LineString returns the segment as a two-point line.
func (s Segment) LineString() geom.LineString {
	return geom.LineString{s.Start, s.End}
}

// Bounds gives the rectangular extents of the segment.
func (s Segment) Bounds() *geom.Bounds {
	return s.LineString().Bounds()
}

// Length is the length of the segment.
func (s Segment) Length() float64 { return s.LineString().Length() }

// matches reports whether p is on s, allowing for tolerance.
func (s Segment) matches(p geom.Point, tolerance float64) bool {
	l := s.LineString()
	return Contains(l, p) || Touches(l, p, tolerance)
}

// Decompose splits centerline into its straight segments, in order.
// Zero-length segments caused by repeated vertices are left out; they
// have no direction to build a transect from.
func Decompose(centerline geom.LineString) ([]Segment, error) {
	if len(centerline) < 2 {
		return nil, decompositionErrorf("centerline has %d vertices but needs at least 2", len(centerline))
	}
	segments := make([]Segment, 0, len(centerline)-1)
	for i := 0; i < len(centerline)-1; i++ {
		if centerline[i].Equals(centerline[i+1]) {
			continue
		}
		segments = append(segments, Segment{Start: centerline[i], End: centerline[i+1]})
	}
	if len(segments) == 0 {
		return nil, decompositionErrorf("centerline has zero length")
	}
	return segments, nil
}

// A Locator finds the centerline segment that an anchor lies on.
// ok is false if there is no such segment.
type Locator interface {
	Locate(p geom.Point) (s Segment, ok bool)
}

// LocatorFunc creates a Locator for the given segments.
type LocatorFunc func(segments []Segment) Locator

// LinearLocator scans the segments in order and returns the first one
// that contains or touches the point, so a point on a shared vertex
// belongs to the earlier segment.
type LinearLocator struct {
	Segments  []Segment
	Tolerance float64
}

// NewLinearLocator returns a LinearLocator using DefaultTolerance.
func NewLinearLocator(segments []Segment) Locator {
	return &LinearLocator{Segments: segments, Tolerance: DefaultTolerance}
}

// Locate implements Locator.
func (l *LinearLocator) Locate(p geom.Point) (Segment, bool) {
	for _, s := range l.Segments {
		if s.matches(p, l.Tolerance) {
			return s, true
		}
	}
	return Segment{}, false
}

// indexedSegment is an R-tree entry. The embedded line gives it the
// geom.Geom methods the tree needs.
type indexedSegment struct {
	geom.LineString
	seg Segment
	i   int
}

// IndexLocator uses an R-tree to find candidate segments for a point.
// Among the candidates, the one that comes first in the centerline wins,
// so the result is always the same as the LinearLocator result.
type IndexLocator struct {
	index     *rtree.Rtree
	Tolerance float64
}

// NewIndexLocator returns an IndexLocator using DefaultTolerance.
func NewIndexLocator(segments []Segment) Locator {
	l := &IndexLocator{
		index:     rtree.NewTree(25, 50),
		Tolerance: DefaultTolerance,
	}
	for i, s := range segments {
		l.index.Insert(&indexedSegment{LineString: s.LineString(), seg: s, i: i})
	}
	return l
}

// Locate implements Locator.
func (l *IndexLocator) Locate(p geom.Point) (Segment, bool) {
	b := &geom.Bounds{
		Min: geom.Point{X: p.X - l.Tolerance, Y: p.Y - l.Tolerance},
		Max: geom.Point{X: p.X + l.Tolerance, Y: p.Y + l.Tolerance},
	}
	var best *indexedSegment
	for _, sI := range l.index.SearchIntersect(b) {
		s := sI.(*indexedSegment)
		if best != nil && s.i > best.i {
			continue
		}
		if s.seg.matches(p, l.Tolerance) {
			best = s
		}
	}
	if best == nil {
		return Segment{}, false
	}
	return best.seg, true
}

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
	"context"

	"github.com/ctessum/geom"
)

// Anchor is a point on the centerline where a transect is rooted.
type Anchor struct {
	geom.Point

	// Distance is the arc-length distance of the anchor from the start of
	// the centerline.
	Distance float64
}

// Walk returns a channel that yields an anchor every spacing units along
// centerline, starting at distance 0 and stopping before the distance
// reaches the length of the centerline. The final partial interval produces
// no anchor. The channel is closed when the walk is finished or when ctx
// is cancelled, so callers may stop reading early.
func Walk(ctx context.Context, centerline geom.LineString, spacing float64) (<-chan Anchor, error) {
	if !(spacing > 0) {
		return nil, &InvalidParameterError{Name: "Spacing", Value: spacing}
	}
	if len(centerline) == 0 {
		return nil, decompositionErrorf("centerline has no vertices")
	}
	length := centerline.Length()
	c := make(chan Anchor)
	go func() {
		defer close(c)
		for i := 0; ; i++ {
			d := float64(i) * spacing
			if d >= length {
				return
			}
			select {
			case c <- Anchor{Point: PositionAlongLine(centerline, d), Distance: d}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return c, nil
}

// Anchors is like Walk but returns all of the anchors at once.
func Anchors(centerline geom.LineString, spacing float64) ([]Anchor, error) {
	c, err := Walk(context.Background(), centerline, spacing)
	if err != nil {
		return nil, err
	}
	var o []Anchor
	for a := range c {
		o = append(o, a)
	}
	return o, nil
}

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
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotPadding is the distance added above and below the elevation range
// of a profile plot.
const PlotPadding = 10.

// ProfilePlot creates a plot of elevation against position for the
// given transect profile. Samples without an elevation are left out.
// The horizontal axis spans the transect and the vertical axis spans
// the elevation range plus PlotPadding on either side.
func ProfilePlot(id int, profile []SamplePoint, transectLength float64) (*plot.Plot, error) {
	xy := make(plotter.XYs, 0, len(profile))
	for _, s := range profile {
		if s.Valid {
			xy = append(xy, struct{ X, Y float64 }{X: s.Position, Y: s.Elevation})
		}
	}
	if len(xy) == 0 {
		return nil, fmt.Errorf("transect %d: %w", id, ErrNoElevationData)
	}
	elev := make([]float64, len(xy))
	for i, v := range xy {
		elev[i] = v.Y
	}

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("Elevation of transect %d", id)
	p.X.Label.Text = "Position along transect (meters)"
	p.Y.Label.Text = "Elevation (meters)"

	blue := color.NRGBA{0, 0, 255, 255}
	l, err := plotter.NewLine(xy)
	if err != nil {
		return nil, err
	}
	l.Color = blue
	s, err := plotter.NewScatter(xy)
	if err != nil {
		return nil, err
	}
	s.Color = blue
	s.Shape = draw.CircleGlyph{}
	p.Add(l, s)

	p.X.Min = 0
	p.X.Max = transectLength
	p.Y.Min = floats.Min(elev) - PlotPadding
	p.Y.Max = floats.Max(elev) + PlotPadding
	return p, nil
}

// WriteProfilePlot writes a profile plot to w in the given format
// ("png", "svg", "pdf", etc.).
func WriteProfilePlot(w io.Writer, format string, id int, profile []SamplePoint, transectLength float64) error {
	p, err := ProfilePlot(id, profile, transectLength)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("transect: preparing plot: %v", err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		return fmt.Errorf("transect: writing plot: %v", err)
	}
	return nil
}

// SaveProfilePlot saves a profile plot to filename. The format is chosen
// by the file extension.
func SaveProfilePlot(filename string, id int, profile []SamplePoint, transectLength float64) error {
	p, err := ProfilePlot(id, profile, transectLength)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("transect: saving plot %s: %v", filename, err)
	}
	return nil
}

// PlotFileName returns the path of the profile plot for transect id in
// directory dir.
func PlotFileName(dir string, id int, format string) string {
	return filepath.Join(dir, fmt.Sprintf("transect_%d.%s", id, strings.TrimPrefix(format, ".")))
}

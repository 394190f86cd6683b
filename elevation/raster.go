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

// Package elevation provides surface elevation sources for transect
// profiles.
package elevation

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// DefaultVariable is the name of the NetCDF variable that holds
// elevation data by default.
const DefaultVariable = "elevation"

// Raster is a regular grid of elevations, such as a digital elevation
// model. Lookups return the value of the cell containing the point;
// there is no interpolation between cells.
type Raster struct {
	// Data holds the cell values with shape [ny, nx]. Row 0 is the row
	// with its lower edge at Yo.
	Data *sparse.DenseArray

	// Xo and Yo are the coordinates of the lower-left corner of the grid,
	// and Dx and Dy are the cell edge lengths.
	Xo, Yo, Dx, Dy float64

	// Cells equal to NoData are missing when HasNoData is true.
	// NaN cells are always missing.
	NoData    float64
	HasNoData bool
}

// NewRaster returns a raster with ny rows and nx columns filled with
// zeros.
func NewRaster(ny, nx int, xo, yo, dx, dy float64) *Raster {
	return &Raster{
		Data: sparse.ZerosDense(ny, nx),
		Xo:   xo,
		Yo:   yo,
		Dx:   dx,
		Dy:   dy,
	}
}

// Bounds gives the rectangular extents of r.
func (r *Raster) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.Xo, Y: r.Yo},
		Max: geom.Point{
			X: r.Xo + r.Dx*float64(r.Data.Shape[1]),
			Y: r.Yo + r.Dy*float64(r.Data.Shape[0]),
		},
	}
}

// Value returns the value of the cell containing p. ok is false if p is
// outside of the grid or the cell is missing.
func (r *Raster) Value(p geom.Point) (v float64, ok bool) {
	ny, nx := r.Data.Shape[0], r.Data.Shape[1]
	col := int(math.Floor((p.X - r.Xo) / r.Dx))
	row := int(math.Floor((p.Y - r.Yo) / r.Dy))
	if col < 0 || col >= nx || row < 0 || row >= ny {
		return 0, false
	}
	v = r.Data.Get(row, col)
	if math.IsNaN(v) || (r.HasNoData && v == r.NoData) {
		return 0, false
	}
	return v, true
}

// ValueAt implements transect.ElevationSource.
func (r *Raster) ValueAt(ctx context.Context, p geom.Point) (float64, bool, error) {
	v, ok := r.Value(p)
	return v, ok, nil
}

// ValuesAt implements transect.BatchElevationSource.
func (r *Raster) ValuesAt(ctx context.Context, p []geom.Point) ([]float64, []bool, error) {
	v := make([]float64, len(p))
	ok := make([]bool, len(p))
	for i, pp := range p {
		v[i], ok[i] = r.Value(pp)
	}
	return v, ok, nil
}

// OpenNetCDF reads a raster from a NetCDF file. See ReadNetCDF for the
// expected file layout.
func OpenNetCDF(filename, variable string) (*Raster, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("elevation: opening DEM file: %v", err)
	}
	defer f.Close()
	r, err := ReadNetCDF(f, variable)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, filename)
	}
	return r, nil
}

// ReadNetCDF reads a raster from NetCDF data. The named variable must
// have dimensions [y, x] and be of type float or double. The grid
// location is read from the global attributes xo, yo, dx, and dy.
// The missing value is read from the nodata global attribute or the
// _FillValue attribute of the variable.
func ReadNetCDF(rw cdf.ReaderWriterAt, variable string) (*Raster, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("elevation: reading DEM: %v", err)
	}
	dims := f.Header.Lengths(variable)
	if len(dims) != 2 {
		return nil, fmt.Errorf("elevation: DEM variable '%s' has %d dimensions but should have 2",
			variable, len(dims))
	}
	r := &Raster{Data: sparse.ZerosDense(dims...)}
	for _, a := range []struct {
		name string
		v    *float64
	}{{"xo", &r.Xo}, {"yo", &r.Yo}, {"dx", &r.Dx}, {"dy", &r.Dy}} {
		v, ok := attrFloat(f.Header.GetAttribute("", a.name))
		if !ok {
			return nil, fmt.Errorf("elevation: DEM is missing the '%s' attribute", a.name)
		}
		*a.v = v
	}
	if !(r.Dx > 0) || !(r.Dy > 0) {
		return nil, fmt.Errorf("elevation: DEM cell size dx=%g, dy=%g should be >0", r.Dx, r.Dy)
	}
	if v, ok := attrFloat(f.Header.GetAttribute("", "nodata")); ok {
		r.NoData, r.HasNoData = v, true
	} else if v, ok := attrFloat(f.Header.GetAttribute(variable, "_FillValue")); ok {
		r.NoData, r.HasNoData = v, true
	}

	rr := f.Reader(variable, nil, nil)
	buf := rr.Zero(len(r.Data.Elements))
	if _, err = rr.Read(buf); err != nil {
		return nil, fmt.Errorf("elevation: reading DEM variable '%s': %v", variable, err)
	}
	switch dat := buf.(type) {
	case []float32:
		for i, v := range dat {
			r.Data.Elements[i] = float64(v)
		}
	case []float64:
		copy(r.Data.Elements, dat)
	default:
		return nil, fmt.Errorf("elevation: DEM variable '%s' has unsupported type %T", variable, buf)
	}
	return r, nil
}

func attrFloat(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

// WriteNetCDF writes r in the format read by ReadNetCDF.
func (r *Raster) WriteNetCDF(rw cdf.ReaderWriterAt, variable string) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{r.Data.Shape[0], r.Data.Shape[1]})
	h.AddVariable(variable, []string{"y", "x"}, []float64{0})
	h.AddAttribute(variable, "description", "Surface elevation")
	h.AddAttribute("", "xo", []float64{r.Xo})
	h.AddAttribute("", "yo", []float64{r.Yo})
	h.AddAttribute("", "dx", []float64{r.Dx})
	h.AddAttribute("", "dy", []float64{r.Dy})
	if r.HasNoData {
		h.AddAttribute("", "nodata", []float64{r.NoData})
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("elevation: creating DEM netcdf file: %v", err)
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("elevation: creating DEM netcdf file: %v", err)
	}
	end := f.Header.Lengths(variable)
	start := make([]int, len(end))
	w := f.Writer(variable, start, end)
	if _, err := w.Write(r.Data.Elements); err != nil {
		return fmt.Errorf("elevation: writing DEM variable '%s': %v", variable, err)
	}
	return nil
}

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

package elevation

import (
	"context"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/kr/pretty"
)

// testRaster returns a 3 x 4 raster with 10 m cells whose lower-left corner
// is at (100, 200). Cell values are 10*row + col, except for one nodata cell.
func testRaster() *Raster {
	r := NewRaster(3, 4, 100, 200, 10, 10)
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			r.Data.Set(float64(10*row+col), row, col)
		}
	}
	r.NoData, r.HasNoData = -9999, true
	r.Data.Set(-9999, 2, 3)
	return r
}

func TestRasterValue(t *testing.T) {
	r := testRaster()
	tests := []struct {
		p  geom.Point
		v  float64
		ok bool
	}{
		{p: geom.Point{X: 100, Y: 200}, v: 0, ok: true},
		{p: geom.Point{X: 105, Y: 205}, v: 0, ok: true},
		{p: geom.Point{X: 115, Y: 225}, v: 21, ok: true},
		{p: geom.Point{X: 139.9, Y: 219.9}, v: 13, ok: true},
		{p: geom.Point{X: 135, Y: 225}, ok: false}, // nodata
		{p: geom.Point{X: 99.9, Y: 205}, ok: false},
		{p: geom.Point{X: 140, Y: 205}, ok: false},
		{p: geom.Point{X: 105, Y: 230}, ok: false},
		{p: geom.Point{X: 105, Y: 150}, ok: false},
	}
	for _, test := range tests {
		v, ok := r.Value(test.p)
		if ok != test.ok || v != test.v {
			t.Errorf("%v: have (%g, %v), want (%g, %v)", test.p, v, ok, test.v, test.ok)
		}
	}

	r.Data.Set(math.NaN(), 0, 0)
	if _, ok := r.Value(geom.Point{X: 101, Y: 201}); ok {
		t.Error("NaN cells should be missing")
	}

	if b := r.Bounds(); b.Min != (geom.Point{X: 100, Y: 200}) || b.Max != (geom.Point{X: 140, Y: 230}) {
		t.Errorf("bounds: %v", b)
	}
}

func TestRasterValuesAt(t *testing.T) {
	r := testRaster()
	p := []geom.Point{{X: 115, Y: 225}, {X: 0, Y: 0}, {X: 125, Y: 215}}
	v, ok, err := r.ValuesAt(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(v, []float64{21, 0, 12}); len(diff) != 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff(ok, []bool{true, false, true}); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestNetCDF(t *testing.T) {
	dir, err := ioutil.TempDir("", "elevation_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "dem.ncf")

	want := testRaster()
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	if err := want.WriteNetCDF(f, DefaultVariable); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	have, err := OpenNetCDF(filename, DefaultVariable)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(have, want); len(diff) != 0 {
		t.Error(diff)
	}
	for i, v := range want.Data.Elements {
		if have.Data.Elements[i] != v {
			t.Fatalf("element %d: have %g, want %g", i, have.Data.Elements[i], v)
		}
	}

	if _, err := OpenNetCDF(filename, "height"); err == nil {
		t.Error("a missing variable should cause an error")
	}
	if _, err := OpenNetCDF(filepath.Join(dir, "missing.ncf"), DefaultVariable); err == nil {
		t.Error("a missing file should cause an error")
	}
}

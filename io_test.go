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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/kr/pretty"
)

const testPrj = `PROJCS["NAD_1983_UTM_Zone_10N",GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",-123.0],PARAMETER["Scale_Factor",0.9996],PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "transect_test")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// writeCenterline writes a polyline shapefile with one feature per line.
func writeCenterline(t *testing.T, filename string, lines ...geom.MultiLineString) {
	e, err := shp.NewEncoderFromFields(filename, goshp.POLYLINE, goshp.NumberField("id", 10))
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range lines {
		if err := e.EncodeFields(l, i); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()
}

func TestReadCenterline(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	want := geom.LineString{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 15}}

	t.Run("shapefile", func(t *testing.T) {
		f := filepath.Join(dir, "centerline.shp")
		writeCenterline(t, f, geom.MultiLineString{want[0:3], want[2:4]})
		if err := writePrj(shpBase(f), testPrj); err != nil {
			t.Fatal(err)
		}
		l, prj, err := ReadCenterline(f)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(l, want); len(diff) != 0 {
			t.Error(diff)
		}
		if prj != testPrj {
			t.Errorf("prj: have %q", prj)
		}
	})
	t.Run("multiple features", func(t *testing.T) {
		f := filepath.Join(dir, "two.shp")
		writeCenterline(t, f, geom.MultiLineString{want}, geom.MultiLineString{want})
		if _, _, err := ReadCenterline(f); err == nil {
			t.Error("a centerline file with two features should fail")
		}
	})
	const lineJSON = `{"type": "LineString", "coordinates": [[0, 0], [10, 0], [10, 10], [20, 15]]}`
	t.Run("geojson", func(t *testing.T) {
		f := filepath.Join(dir, "stream.geojson")
		if err := ioutil.WriteFile(f, []byte(lineJSON), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		l, prj, err := ReadCenterline(f)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(l, want); len(diff) != 0 {
			t.Error(diff)
		}
		if prj != "" {
			t.Errorf("prj should be empty: %q", prj)
		}
	})
	t.Run("geojson with prj", func(t *testing.T) {
		f := filepath.Join(dir, "reach.geojson")
		if err := ioutil.WriteFile(f, []byte(lineJSON), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := writePrj(shpBase(f), testPrj); err != nil {
			t.Fatal(err)
		}
		l, prj, err := ReadCenterline(f)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(l, want); len(diff) != 0 {
			t.Error(diff)
		}
		if prj != testPrj {
			t.Errorf("prj: have %q", prj)
		}
	})
	t.Run("not a line", func(t *testing.T) {
		f := filepath.Join(dir, "point.geojson")
		err := ioutil.WriteFile(f, []byte(`{"type": "Point", "coordinates": [0, 0]}`), os.ModePerm)
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := ReadCenterline(f); err == nil {
			t.Error("a point centerline should fail")
		}
	})
	t.Run("unsupported", func(t *testing.T) {
		if _, _, err := ReadCenterline(filepath.Join(dir, "centerline.kml")); err == nil {
			t.Error("unsupported file type should fail")
		}
	})
}

type transectRecord struct {
	geom.MultiLineString
	LineID int `shp:"lineID"`
}

func TestWriteTransects(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	f := filepath.Join(dir, "transects.shp")

	transects := []Transect{
		{ID: 4, Origin: geom.Point{X: 5, Y: -2}, Destination: geom.Point{X: 5, Y: 2}, Length: 4},
		{ID: 9, Origin: geom.Point{X: 2, Y: 5}, Destination: geom.Point{X: -2, Y: 5}, Length: 4},
	}
	if err := WriteTransects(f, transects, testPrj); err != nil {
		t.Fatal(err)
	}
	if prj := readPrj(f); prj != testPrj {
		t.Errorf("prj: have %q", prj)
	}

	d, err := shp.NewDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	var i int
	for {
		var rec transectRecord
		if !d.DecodeRow(&rec) {
			break
		}
		if rec.LineID != transects[i].ID {
			t.Errorf("record %d: lineID %d, want %d", i, rec.LineID, transects[i].ID)
		}
		want := geom.MultiLineString{transects[i].LineString()}
		if diff := pretty.Diff(rec.MultiLineString, want); len(diff) != 0 {
			t.Errorf("record %d: %v", i, diff)
		}
		i++
	}
	if err := d.Error(); err != nil {
		t.Fatal(err)
	}
	if i != len(transects) {
		t.Errorf("have %d records, want %d", i, len(transects))
	}
}

func TestWriteReadElevations(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	f := filepath.Join(dir, "elevations.shp")

	samples := []SamplePoint{
		{TransectID: 0, Position: 1, Location: geom.Point{X: 1, Y: 1}, Elevation: 101.5, Valid: true},
		{TransectID: 1, Position: 3, Location: geom.Point{X: 2, Y: 3}},
		{TransectID: 1, Position: 1, Location: geom.Point{X: 2, Y: 1}, Elevation: 100.25, Valid: true},
		{TransectID: 1, Position: 5, Location: geom.Point{X: 2, Y: 5}, Elevation: 98.75, Valid: true},
	}
	if err := WriteSamples(f, samples, "", true); err != nil {
		t.Fatal(err)
	}
	have, err := ReadElevations(f, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []SamplePoint{samples[2], samples[1], samples[3]}
	if diff := pretty.Diff(have, want); len(diff) != 0 {
		t.Error(diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "elevations.prj")); !os.IsNotExist(err) {
		t.Error("no prj file should be written without projection information")
	}
}

func TestWriteSamples(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	f := filepath.Join(dir, "samples.shp")

	samples := []SamplePoint{
		{TransectID: 2, Position: 1.5, Location: geom.Point{X: 1, Y: 1}},
		{TransectID: 2, Position: 4.5, Location: geom.Point{X: 1, Y: 4}},
	}
	if err := WriteSamples(f, samples, testPrj, false); err != nil {
		t.Fatal(err)
	}
	d, err := shp.NewDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if n := len(d.Fields()); n != 2 {
		t.Errorf("have %d fields, want 2", n)
	}
	var i int
	for {
		var rec elevationRecord
		if !d.DecodeRow(&rec) {
			break
		}
		if rec.LineID != 2 || rec.Pos != samples[i].Position {
			t.Errorf("record %d: %+v", i, rec)
		}
		if p, ok := rec.Geom.(geom.Point); !ok || p != samples[i].Location {
			t.Errorf("record %d: geometry %v", i, rec.Geom)
		}
		i++
	}
	if i != 2 {
		t.Errorf("have %d records, want 2", i)
	}
}

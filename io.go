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
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// NoData is the value written to elevation shapefiles for samples
// without an elevation.
const NoData = -9999.

// Names of the attribute fields in output shapefiles.
const (
	LineIDField    = "lineID"
	PositionField  = "pos"
	ElevationField = "RASTERVALU"
)

// centerlineRecord is a holder for a shapefile centerline feature.
type centerlineRecord struct {
	geom.Geom
}

// elevationRecord is a holder for an elevation point feature.
type elevationRecord struct {
	geom.Geom
	LineID    int     `shp:"lineID"`
	Pos       float64 `shp:"pos"`
	Elevation float64 `shp:"RASTERVALU"`
}

// ReadCenterline reads a centerline from a shapefile (.shp) or GeoJSON
// (.geojson or .json) file. The file must contain a single line feature;
// multi-part lines are joined in order. prj is the contents of the
// associated .prj file, or "" if there isn't one.
func ReadCenterline(filename string) (centerline geom.LineString, prj string, err error) {
	var g geom.Geom
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".shp":
		g, err = readCenterlineShp(filename)
	case ".geojson", ".json":
		var b []byte
		b, err = ioutil.ReadFile(filename)
		if err != nil {
			return nil, "", fmt.Errorf("transect: reading centerline: %v", err)
		}
		g, err = geojson.Decode(b)
		if err != nil {
			err = fmt.Errorf("transect: decoding centerline %s: %v", filename, err)
		}
	default:
		err = fmt.Errorf("transect: unsupported centerline file type '%s'", filename)
	}
	if err != nil {
		return nil, "", err
	}
	centerline, err = joinLines(g)
	if err != nil {
		return nil, "", fmt.Errorf("transect: centerline %s: %v", filename, err)
	}
	return centerline, readPrj(filename), nil
}

func readCenterlineShp(filename string) (geom.Geom, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("transect: opening centerline shapefile '%s': %v", filename, err)
	}
	defer d.Close()
	var recs []centerlineRecord
	for {
		var rec centerlineRecord
		if !d.DecodeRow(&rec) {
			break
		}
		recs = append(recs, rec)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("transect: reading centerline shapefile '%s': %v", filename, err)
	}
	if len(recs) != 1 {
		return nil, fmt.Errorf("transect: centerline shapefile '%s' has %d features but should have 1",
			filename, len(recs))
	}
	return recs[0].Geom, nil
}

// joinLines converts a linear geometry into a single LineString.
func joinLines(g geom.Geom) (geom.LineString, error) {
	switch t := g.(type) {
	case geom.LineString:
		return t, nil
	case geom.MultiLineString:
		var o geom.LineString
		for _, l := range t {
			for i, p := range l {
				if i == 0 && len(o) > 0 && o[len(o)-1].Equals(p) {
					continue
				}
				o = append(o, p)
			}
		}
		return o, nil
	default:
		return nil, fmt.Errorf("geometry type %T is not a line", g)
	}
}

// readPrj returns the contents of the .prj file that goes with filename.
func readPrj(filename string) string {
	b, err := ioutil.ReadFile(strings.TrimSuffix(filename, filepath.Ext(filename)) + ".prj")
	if err != nil {
		return ""
	}
	return string(b)
}

// writePrj writes the projection information for the shapefile
// fileBase.shp, if there is any.
func writePrj(fileBase, prj string) error {
	if prj == "" {
		return nil
	}
	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("transect: creating prj file: %v", err)
	}
	if _, err := fmt.Fprint(f, prj); err != nil {
		f.Close()
		return fmt.Errorf("transect: writing prj file: %v", err)
	}
	return f.Close()
}

func shpBase(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// WriteTransects writes the transects to a polyline shapefile. The
// transect ID is stored in the lineID field so that it doesn't depend on
// the order that the features are stored in.
func WriteTransects(filename string, transects []Transect, prj string) error {
	fileBase := shpBase(filename)
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYLINE,
		goshp.NumberField(LineIDField, 10))
	if err != nil {
		return fmt.Errorf("transect: creating transect shapefile: %v", err)
	}
	for _, t := range transects {
		if err := e.EncodeFields(geom.MultiLineString{t.LineString()}, t.ID); err != nil {
			e.Close()
			return fmt.Errorf("transect: writing transect shapefile: %v", err)
		}
	}
	e.Close()
	return writePrj(fileBase, prj)
}

// WriteSamples writes sample points to a point shapefile with lineID
// and pos fields. If withElevation is true, a RASTERVALU field is added
// holding the sample elevation, or NoData where it is missing.
func WriteSamples(filename string, samples []SamplePoint, prj string, withElevation bool) error {
	fileBase := shpBase(filename)
	fields := []goshp.Field{
		goshp.NumberField(LineIDField, 10),
		goshp.FloatField(PositionField, 14, 8),
	}
	if withElevation {
		fields = append(fields, goshp.FloatField(ElevationField, 16, 6))
	}
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POINT, fields...)
	if err != nil {
		return fmt.Errorf("transect: creating sample shapefile: %v", err)
	}
	for _, s := range samples {
		vals := []interface{}{s.TransectID, s.Position}
		if withElevation {
			v := NoData
			if s.Valid {
				v = s.Elevation
			}
			vals = append(vals, v)
		}
		if err := e.EncodeFields(s.Location, vals...); err != nil {
			e.Close()
			return fmt.Errorf("transect: writing sample shapefile: %v", err)
		}
	}
	e.Close()
	return writePrj(fileBase, prj)
}

// ReadElevations reads the elevation profile of transect lineID from an
// elevation point shapefile created by WriteSamples. The samples are
// sorted by position.
func ReadElevations(filename string, lineID int) ([]SamplePoint, error) {
	d, err := shp.NewDecoder(shpBase(filename) + ".shp")
	if err != nil {
		return nil, fmt.Errorf("transect: opening elevation shapefile '%s': %v", filename, err)
	}
	defer d.Close()
	var o []SamplePoint
	for {
		var rec elevationRecord
		if !d.DecodeRow(&rec) {
			break
		}
		if rec.LineID != lineID {
			continue
		}
		sp := SamplePoint{
			TransectID: rec.LineID,
			Position:   rec.Pos,
		}
		if rec.Elevation != NoData {
			sp.Elevation, sp.Valid = rec.Elevation, true
		}
		if p, ok := rec.Geom.(geom.Point); ok {
			sp.Location = p
		}
		o = append(o, sp)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("transect: reading elevation shapefile '%s': %v", filename, err)
	}
	sort.SliceStable(o, func(i, j int) bool { return o[i].Position < o[j].Position })
	return o, nil
}

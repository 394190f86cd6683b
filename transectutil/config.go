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

package transectutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/transect"
	"github.com/spf13/cast"
)

// RunConfig holds the settings for a transect run.
type RunConfig struct {
	transect.Params

	// CenterlineFile is the shapefile or GeoJSON file holding the stream
	// centerline.
	CenterlineFile string

	// DEMFile is the NetCDF elevation raster, and DEMVariable is the
	// name of the variable within it.
	DEMFile, DEMVariable string

	// Output shapefiles. SampleFile may be empty.
	TransectFile, SampleFile, ElevationFile string

	// PlotDir is the directory where profile plots are saved. No plots
	// are created if it is empty.
	PlotDir, PlotFormat string

	Unmatched  transect.UnmatchedAnchorPolicy
	NewLocator transect.LocatorFunc

	Workers      int
	QueryTimeout time.Duration
	Retries      int
}

// PlotConfig holds the settings for plotting a transect profile from an
// existing elevation shapefile.
type PlotConfig struct {
	ElevationFile  string
	LineID         int
	TransectLength float64
	Output         string
}

// Locators are the available segment locators.
var Locators = map[string]transect.LocatorFunc{
	"linear": transect.NewLinearLocator,
	"rtree":  transect.NewIndexLocator,
}

// NewRunConfig reads a RunConfig from cfg.
func NewRunConfig(cfg *viper.Viper) (*RunConfig, error) {
	timeout, err := cast.ToDurationE(cfg.Get("QueryTimeout"))
	if err != nil {
		return nil, fmt.Errorf("transectutil: QueryTimeout: %v", err)
	}
	c := &RunConfig{
		Params: transect.Params{
			Spacing:        cfg.GetFloat64("Spacing"),
			TransectLength: cfg.GetFloat64("TransectLength"),
			SampleCount:    cfg.GetInt("SampleCount"),
		},
		CenterlineFile: os.ExpandEnv(cfg.GetString("Centerline")),
		DEMFile:        os.ExpandEnv(cfg.GetString("DEM")),
		DEMVariable:    os.ExpandEnv(cfg.GetString("DEMVariable")),
		TransectFile:   os.ExpandEnv(cfg.GetString("TransectFile")),
		SampleFile:     os.ExpandEnv(cfg.GetString("SampleFile")),
		ElevationFile:  os.ExpandEnv(cfg.GetString("ElevationFile")),
		PlotDir:        os.ExpandEnv(cfg.GetString("PlotDir")),
		PlotFormat:     strings.TrimPrefix(cfg.GetString("PlotFormat"), "."),
		Workers:        cfg.GetInt("Workers"),
		QueryTimeout:   timeout,
		Retries:        cfg.GetInt("Retries"),
	}
	if !cfg.GetBool("SkipUnmatchedAnchors") {
		c.Unmatched = transect.FailUnmatchedAnchors
	}
	if err := c.Params.Validate(); err != nil {
		return nil, err
	}

	vars := []string{c.CenterlineFile, c.DEMFile, c.DEMVariable}
	varNames := []string{"Centerline", "DEM", "DEMVariable"}
	for i, v := range vars {
		if v == "" {
			return nil, fmt.Errorf("transectutil: %s is not specified", varNames[i])
		}
	}
	if err := checkShapefile(c.TransectFile, "TransectFile"); err != nil {
		return nil, err
	}
	if err := checkShapefile(c.ElevationFile, "ElevationFile"); err != nil {
		return nil, err
	}
	if c.SampleFile != "" {
		if err := checkShapefile(c.SampleFile, "SampleFile"); err != nil {
			return nil, err
		}
	}

	var ok bool
	name := strings.ToLower(cfg.GetString("Locator"))
	if c.NewLocator, ok = Locators[name]; !ok {
		return nil, fmt.Errorf("transectutil: invalid Locator '%s'; valid options are 'linear' and 'rtree'", name)
	}
	if c.Workers < 0 {
		return nil, fmt.Errorf("transectutil: Workers=%d but should be >=0", c.Workers)
	}
	if c.Retries < 0 {
		return nil, fmt.Errorf("transectutil: Retries=%d but should be >=0", c.Retries)
	}
	if c.QueryTimeout < 0 {
		return nil, fmt.Errorf("transectutil: QueryTimeout=%v but should be >=0", c.QueryTimeout)
	}
	if c.PlotDir != "" && c.PlotFormat == "" {
		return nil, fmt.Errorf("transectutil: PlotFormat is not specified")
	}
	return c, nil
}

// NewPlotConfig reads a PlotConfig from cfg.
func NewPlotConfig(cfg *viper.Viper) (*PlotConfig, error) {
	c := &PlotConfig{
		ElevationFile:  os.ExpandEnv(cfg.GetString("ElevationFile")),
		LineID:         cfg.GetInt("plot.lineID"),
		TransectLength: cfg.GetFloat64("TransectLength"),
		Output:         os.ExpandEnv(cfg.GetString("plot.Output")),
	}
	if err := checkShapefile(c.ElevationFile, "ElevationFile"); err != nil {
		return nil, err
	}
	if !(c.TransectLength > 0) {
		return nil, &transect.InvalidParameterError{Name: "TransectLength", Value: c.TransectLength}
	}
	if c.LineID < 0 {
		return nil, fmt.Errorf("transectutil: plot.lineID=%d but should be >=0", c.LineID)
	}
	if c.Output == "" {
		c.Output = transect.PlotFileName(".", c.LineID, "png")
	}
	return c, nil
}

// checkShapefile makes sure that a shapefile path is specified and has
// the right extension.
func checkShapefile(f, name string) error {
	if f == "" {
		return fmt.Errorf("transectutil: %s is not specified", name)
	}
	if ext := filepath.Ext(f); ext != ".shp" {
		return fmt.Errorf("transectutil: %s file extension must be '.shp' but is '%s'", name, ext)
	}
	return nil
}

// setLogging configures log according to the LogLevel and LogFile
// options. It returns a function that closes the log file, if any.
func setLogging(cfg *viper.Viper, log *logrus.Logger) (func() error, error) {
	level, err := logrus.ParseLevel(cfg.GetString("LogLevel"))
	if err != nil {
		return nil, fmt.Errorf("transectutil: LogLevel: %v", err)
	}
	log.SetLevel(level)
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	logFile := os.ExpandEnv(cfg.GetString("LogFile"))
	if logFile == "" {
		return func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, fmt.Errorf("transectutil: creating log file: %v", err)
	}
	log.Out = f
	return f.Close, nil
}

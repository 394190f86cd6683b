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
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/transect"
	"github.com/spatialmodel/transect/elevation"
	"github.com/spf13/cast"
)

// Run creates transects along the centerline in c.CenterlineFile, looks
// up their elevations in c.DEMFile, and saves the transects, sample
// points, elevation points, and (optionally) profile plots.
// If none of the samples has an elevation, the transects and sample
// points are still saved, plotting is skipped, and
// transect.ErrNoElevationData is returned.
func Run(ctx context.Context, c *RunConfig, log logrus.FieldLogger) error {
	centerlineFile, err := maybeDownload(ctx, c.CenterlineFile, log)
	if err != nil {
		return err
	}
	demFile, err := maybeDownload(ctx, c.DEMFile, log)
	if err != nil {
		return err
	}

	centerline, prj, err := transect.ReadCenterline(centerlineFile)
	if err != nil {
		return err
	}
	if prj != "" {
		if _, err := proj.Parse(prj); err != nil {
			log.WithField("error", err).Warn("unable to parse centerline spatial reference; " +
				"make sure it matches the DEM")
		}
	} else {
		log.Warn("centerline has no spatial reference information; make sure it matches the DEM")
	}

	dem, err := elevation.OpenNetCDF(demFile, c.DEMVariable)
	if err != nil {
		return err
	}
	var src transect.ElevationSource = dem
	if c.Retries > 0 {
		src = &elevation.Retry{Source: dem, MaxRetries: uint64(c.Retries), Log: log}
	}

	r, err := transect.Run(ctx, &transect.RunConfig{
		Params:       c.Params,
		Centerline:   centerline,
		Source:       src,
		NewLocator:   c.NewLocator,
		Unmatched:    c.Unmatched,
		Workers:      c.Workers,
		QueryTimeout: c.QueryTimeout,
		Log:          log,
	})
	noData := errors.Is(err, transect.ErrNoElevationData)
	if err != nil && !noData {
		return err
	}

	upload := new(uploader)
	transectFile := upload.maybeUpload(c.TransectFile)
	sampleFile := upload.maybeUpload(c.SampleFile)
	elevationFile := upload.maybeUpload(c.ElevationFile)
	samples := r.Samples()
	if err := transect.WriteTransects(transectFile, r.Transects, prj); err != nil {
		return err
	}
	if sampleFile != "" {
		if err := transect.WriteSamples(sampleFile, samples, prj, false); err != nil {
			return err
		}
	}
	if err := transect.WriteSamples(elevationFile, samples, prj, true); err != nil {
		return err
	}
	if err := upload.uploadOutput(ctx, log); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"transects":  c.TransectFile,
		"elevations": c.ElevationFile,
	}).Info("saved output")

	if noData {
		log.Warn(transect.ErrNoElevationData.Error())
		return transect.ErrNoElevationData
	}
	if c.PlotDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.PlotDir, os.ModePerm); err != nil {
		return fmt.Errorf("transectutil: creating plot directory: %v", err)
	}
	for _, id := range r.Profiles.IDs() {
		f := transect.PlotFileName(c.PlotDir, id, c.PlotFormat)
		err := transect.SaveProfilePlot(f, id, r.Profiles.Profile(id), c.TransectLength)
		if errors.Is(err, transect.ErrNoElevationData) {
			log.WithField("transect", id).Warn("no elevation data; skipping plot")
			continue
		} else if err != nil {
			return err
		}
	}
	log.WithField("dir", c.PlotDir).Info("saved profile plots")
	return nil
}

// Plot plots the elevation profile of a single transect from an
// elevation point shapefile created by Run.
func Plot(ctx context.Context, c *PlotConfig, log logrus.FieldLogger) error {
	elevationFile, err := maybeDownload(ctx, c.ElevationFile, log)
	if err != nil {
		return err
	}
	profile, err := transect.ReadElevations(elevationFile, c.LineID)
	if err != nil {
		return err
	}
	if len(profile) == 0 {
		return fmt.Errorf("transectutil: no samples for lineID %d in %s", c.LineID, c.ElevationFile)
	}
	upload := new(uploader)
	out := upload.maybeUpload(c.Output)
	if err := transect.SaveProfilePlot(out, c.LineID, profile, c.TransectLength); err != nil {
		return err
	}
	if err := upload.uploadOutput(ctx, log); err != nil {
		return err
	}
	log.WithField("file", c.Output).Info("saved profile plot")
	return nil
}

// WriteConfig writes the settings in cfg to w in TOML format.
func WriteConfig(w io.Writer, cfg *viper.Viper) error {
	settings := make(map[string]interface{})
	for _, option := range options {
		if option.name == "config" {
			continue
		}
		v := cfg.Get(option.name)
		switch option.defaultVal.(type) {
		case string:
			v = cast.ToString(v)
		case bool:
			v = cast.ToBool(v)
		case int:
			v = cast.ToInt(v)
		case float64:
			v = cast.ToFloat64(v)
		}
		setNested(settings, option.name, v)
	}
	if err := toml.NewEncoder(w).Encode(settings); err != nil {
		return fmt.Errorf("transectutil: writing configuration: %v", err)
	}
	return nil
}

// setNested sets a value in m for a dotted key like "plot.lineID".
func setNested(m map[string]interface{}, key string, v interface{}) {
	for i := 0; i < len(key); i++ {
		if key[i] != '.' {
			continue
		}
		sub, ok := m[key[:i]].(map[string]interface{})
		if !ok {
			sub = make(map[string]interface{})
			m[key[:i]] = sub
		}
		setNested(sub, key[i+1:], v)
		return
	}
	m[key] = v
}

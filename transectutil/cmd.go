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

// Package transectutil contains the command-line interface for the
// transect tool.
package transectutil

import (
	"context"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/transect"
	"github.com/spatialmodel/transect/elevation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the commands.
var Log = logrus.New()

// closeLog closes the log file, if there is one.
var closeLog = func() error { return nil }

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the transect tool.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of logged messages:
              one of "debug", "info", "warning", or "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the file that log messages are written to.
              If it is empty, messages are written to standard error.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Centerline",
			usage: `
              Centerline is the path to the shapefile (.shp) or GeoJSON
              (.geojson) file holding the stream centerline. It must hold a
              single line feature in the same coordinate system as the DEM.
              It can also be a URL or a blob storage location
              (gs://, s3://, or file://).`,
			shorthand:  "c",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DEM",
			usage: `
              DEM is the path to the NetCDF digital elevation model. The
              grid location is read from the xo, yo, dx, and dy global
              attributes. It can also be a URL or a blob storage location.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DEMVariable",
			usage: `
              DEMVariable is the name of the elevation variable in the DEM file.`,
			defaultVal: elevation.DefaultVariable,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TransectFile",
			usage: `
              TransectFile is the path to the output transect line shapefile.`,
			defaultVal: "transects.shp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SampleFile",
			usage: `
              SampleFile is the path to the output sample point shapefile.
              If it is empty, the sample points are not saved separately.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ElevationFile",
			usage: `
              ElevationFile is the path to the shapefile of sample points and
              their elevations. It is written by 'run' and read by 'plot'.`,
			defaultVal: "elevations.shp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "PlotDir",
			usage: `
              PlotDir is the directory where a profile plot is saved for each
              transect. If it is empty, no plots are created.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PlotFormat",
			usage: `
              PlotFormat is the file format of profile plots, for example
              "png", "svg", or "pdf".`,
			defaultVal: "png",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Spacing",
			usage: `
              Spacing is the distance between transects along the centerline,
              in the units of the centerline coordinate system.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TransectLength",
			usage: `
              TransectLength is the length of each transect.`,
			defaultVal: 50.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "SampleCount",
			usage: `
              SampleCount is the number of elevation samples along each transect.`,
			defaultVal: 20,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SkipUnmatchedAnchors",
			usage: `
              SkipUnmatchedAnchors specifies whether transect anchors that do
              not lie on any centerline segment are skipped. If false, an
              unmatched anchor stops the run with an error.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Locator",
			usage: `
              Locator specifies how the centerline segment under each anchor
              is found: "linear" checks every segment in order and "rtree"
              uses a spatial index, which is faster for long centerlines.`,
			defaultVal: "linear",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of concurrent elevation lookups. If it is
              0, the number of processors is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "QueryTimeout",
			usage: `
              QueryTimeout is the longest time to wait for one elevation
              lookup, for example "500ms" or "2s". Sources that support batch
              lookups, such as the NetCDF DEM, look up all the samples of a
              transect at once, so the limit covers the whole transect;
              other sources are queried one sample point at a time, so it
              covers each point. Lookups that take longer are treated as
              missing data. "0s" means no limit.`,
			defaultVal: "0s",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Retries",
			usage: `
              Retries is the number of times a failed elevation lookup is
              retried.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "plot.lineID",
			usage: `
              plot.lineID is the ID of the transect to plot.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "plot.Output",
			usage: `
              plot.Output is the path of the plot file. The format is chosen
              by the file extension. The default is transect_<lineID>.png.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TRANSECT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("transect: problem reading configuration file: %v", err)
		}
	}
	var err error
	closeLog, err = setLogging(Cfg, Log)
	return err
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "transect",
	Short: "Create stream cross-section elevation profiles.",
	Long: `transect creates evenly spaced transect lines perpendicular to a stream
centerline, samples each transect at evenly spaced points, looks up the
elevation of each point in a digital elevation model, and saves the results
as shapefiles and profile plots.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'TRANSECT_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag:  true,
	PersistentPreRunE:  func(*cobra.Command, []string) error { return setConfig() },
	PersistentPostRunE: func(*cobra.Command, []string) error { return closeLog() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of the transect tool.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("transect v%s\n", transect.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd creates transects and their elevation profiles.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create transects and elevation profiles.",
	Long: `run creates transects along the centerline, looks up the elevations
of the sample points along each transect, and saves the transects,
elevation points, and (if PlotDir is set) a profile plot of each transect.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := NewRunConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(context.Background(), c, Log)
	},
	DisableAutoGenTag: true,
}

// plotCmd plots the profile of one transect.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot the elevation profile of a transect.",
	Long: `plot reads the elevation points of the transect with the given
lineID from ElevationFile and saves a plot of elevation against
position along the transect. Points without an elevation are left out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := NewPlotConfig(Cfg)
		if err != nil {
			return err
		}
		return Plot(context.Background(), c, Log)
	},
	DisableAutoGenTag: true,
}

// configCmd prints the configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration.",
	Long: `config prints the configuration that results from the defaults,
the configuration file, environment variables, and command-line
arguments, in TOML format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return WriteConfig(cmd.OutOrStdout(), Cfg)
	},
	DisableAutoGenTag: true,
}

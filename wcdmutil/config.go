/*
Copyright © 2019 the WCDM authors.
This file is part of WCDM.

WCDM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WCDM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WCDM.  If not, see <http://www.gnu.org/licenses/>.
*/

package wcdmutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to WCDM.
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
			name: "Scenario",
			usage: `
              Scenario is the path to a TOML file describing the patches, links,
              and production schedule to simulate. It can contain environment
              variables. If it is empty, the built-in four-patch horizontal
              scenario is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Solver",
			usage: `
              Solver is the name of the flux solver to use. If it is empty, the
              solver named in the scenario is used. Run 'wcdm solvers' for a
              list of the available solvers.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "StepDuration",
			usage: `
              StepDuration is the length of each time step. If it is not greater
              than zero, the step duration in the scenario is used.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "NumSteps",
			usage: `
              NumSteps is the number of steps to calculate. If < 1, one step is
              calculated for each entry in the scenario production schedule.
              Otherwise the schedule is truncated, or extended by repeating its
              last entry.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location. The
              file type is chosen by its extension, which must be .csv or .xlsx.
              It can include environment variables.`,
			defaultVal: "wcdm_output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path where a PNG chart of the results should be
              saved. If it is empty, no chart is created. It can include
              environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be
              saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables maps the names of additional output variables to
              expressions of patch amounts and Time. Patch names with spaces must
              be enclosed in square brackets. These are added to, and take
              precedence over, the output variables in the scenario. It can
              include environment variables.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the largest change in the relative concentration
              profile between two steps at which a steady-state simulation is
              considered to have converged.`,
			defaultVal: 1.e-6,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "MaxSteps",
			usage: `
              MaxSteps is the largest number of steps a steady-state simulation
              calculates before stopping, whether or not it has converged.`,
			defaultVal: 100000,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "open",
			usage: `
              open specifies whether the chart in PlotFile should be opened
              with the default viewer once the simulation has finished.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WCDM")
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
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wcdmutil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument or environment variable.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("wcdmutil: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("wcdmutil: invalid type for %s: %#v", varName, i)
	}
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile makes sure that the output file is specified, has a
// supported type, and that its directory exists, and expands any
// environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`wcdmutil: you need to specify an output file configuration variable (for example: OutputFile="output.csv")`)
	}
	f = os.ExpandEnv(f)
	switch ext := strings.ToLower(filepath.Ext(f)); ext {
	case ".csv", ".xlsx":
	default:
		return f, fmt.Errorf("wcdmutil: OutputFile must end in .csv or .xlsx, but has extension %q", ext)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("wcdmutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkPlotFile expands any environment variables in the plot file
// path and makes sure it is a PNG file.
func checkPlotFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	if ext := strings.ToLower(filepath.Ext(f)); ext != ".png" {
		return f, fmt.Errorf("wcdmutil: PlotFile must end in .png, but has extension %q", ext)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

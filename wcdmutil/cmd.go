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

// Package wcdmutil contains the command-line interface and input and
// output handling for the WCDM diffusion model.
package wcdmutil

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/wcdm"
	"github.com/spf13/cobra"
)

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(solversCmd)
	Root.AddCommand(runCmd)
	runCmd.AddCommand(steadyCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wcdm",
	Short: "A compartment model of compound diffusion.",
	Long: `WCDM simulates the diffusion of a compound across a network of
connected patches with sources and sinks, in discrete time steps.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'WCDM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of WCDM.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("WCDM v%s\n", wcdm.Version)
	},
	DisableAutoGenTag: true,
}

var solversCmd = &cobra.Command{
	Use:   "solvers",
	Short: "List the available flux solvers",
	Long:  "solvers prints the names of the flux solvers that can be used in simulations.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(strings.Join(wcdm.SolverNames(), "\n"))
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a WCDM simulation, applying the production schedule of the
scenario one step at a time. Use the 'steady' subcommand instead to run
with constant production until the concentration profile stops changing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := runConfig()
		if err != nil {
			return err
		}
		c.NumSteps = Cfg.GetInt("NumSteps")
		return Run(cmd, s, c)
	},
	DisableAutoGenTag: true,
}

// steadyCmd is a command that runs a steady-state simulation.
var steadyCmd = &cobra.Command{
	Use:   "steady",
	Short: "Run WCDM in steady-state mode.",
	Long: `steady runs WCDM with the initial production of each patch held
constant until the shape of the concentration profile within each group of
connected patches stops changing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, c, err := runConfig()
		if err != nil {
			return err
		}
		c.Steady = true
		c.Tolerance = Cfg.GetFloat64("Tolerance")
		c.MaxSteps = Cfg.GetInt("MaxSteps")
		if !(c.Tolerance > 0) {
			return fmt.Errorf("wcdmutil: Tolerance=%g but should be >0", c.Tolerance)
		}
		if c.MaxSteps < 1 {
			return fmt.Errorf("wcdmutil: MaxSteps=%d but should be >0", c.MaxSteps)
		}
		return Run(cmd, s, c)
	},
	DisableAutoGenTag: true,
}

// runConfig reads the scenario and the run settings shared by the
// run commands from Cfg.
func runConfig() (*Scenario, *RunConfig, error) {
	var s *Scenario
	if path := Cfg.GetString("Scenario"); path != "" {
		var err error
		s, err = ReadScenarioFile(path)
		if err != nil {
			return nil, nil, err
		}
	} else {
		s = HorizontalScenario()
	}
	if solver := Cfg.GetString("Solver"); solver != "" {
		s.Solver = solver
	}
	if dt := Cfg.GetFloat64("StepDuration"); dt > 0 {
		s.StepDuration = dt
	}

	outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
	if err != nil {
		return nil, nil, err
	}
	plotFile, err := checkPlotFile(Cfg.GetString("PlotFile"))
	if err != nil {
		return nil, nil, err
	}
	vars, err := GetStringMapString("OutputVariables", Cfg)
	if err != nil {
		return nil, nil, err
	}
	c := &RunConfig{
		LogFile:         checkLogFile(Cfg.GetString("LogFile"), outputFile),
		OutputFile:      outputFile,
		PlotFile:        plotFile,
		OutputVariables: checkOutputVars(vars),
		Open:            Cfg.GetBool("open"),
	}
	return s, c, nil
}

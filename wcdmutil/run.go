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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/wcdm"
	"github.com/spatialmodel/wcdm/chart"
	"github.com/spf13/cobra"
)

// RunConfig holds the settings for a simulation run.
type RunConfig struct {
	// LogFile is the path to the desired logfile location.
	LogFile string

	// OutputFile is the path to the desired output file location,
	// ending in .csv or .xlsx.
	OutputFile string

	// PlotFile is the path to the desired PNG chart location.
	// If it is empty, no chart is created.
	PlotFile string

	// OutputVariables are added to the scenario output variables.
	OutputVariables map[string]string

	// NumSteps is the number of steps to calculate in a scheduled run.
	// If < 1, one step is calculated per scenario production vector.
	NumSteps int

	// If Steady is true, the simulation keeps the initial production
	// and runs until the relative concentration profile changes by
	// less than Tolerance between steps, or until MaxSteps steps.
	Steady    bool
	Tolerance float64
	MaxSteps  int

	// If Open is true, the chart is opened once it is written.
	Open bool
}

// Run runs the scenario described by s.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its output and to the log file.
func Run(CobraCommand *cobra.Command, s *Scenario, c *RunConfig) error {
	startTime := time.Now()

	logfile, err := os.Create(c.LogFile)
	if err != nil {
		return fmt.Errorf("wcdmutil: problem creating log file: %v", err)
	}
	defer logfile.Close()

	log := logrus.New()
	log.Out = io.MultiWriter(CobraCommand.OutOrStdout(), logfile)
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}

	vars := make(map[string]string)
	for k, v := range s.OutputVariables {
		vars[k] = v
	}
	for k, v := range c.OutputVariables {
		vars[k] = v
	}
	o, err := wcdm.NewOutputter(vars, nil)
	if err != nil {
		return err
	}
	log.Info("wcdm: parsed output variable expressions")

	w, err := s.System()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"solver":  w.Solver().Name(),
		"patches": w.PatchMap().Len(),
		"links":   w.PatchMap().NumLinks(),
		"dt":      s.StepDuration,
	}).Info("wcdm: initialized system")
	for _, p := range w.PatchMap().Patches() {
		log.Info(p.String())
	}

	r := wcdm.NewSnapshots(w.PatchMap())
	var runFuncs []wcdm.StepManipulator
	if c.Steady {
		runFuncs = []wcdm.StepManipulator{
			wcdm.Step(),
			wcdm.MassBalanceCheck(massBalanceTolerance),
			wcdm.Record(r),
			wcdm.Log(log),
			wcdm.EquilibriumCheck(c.Tolerance),
			wcdm.MaxSteps(c.MaxSteps),
		}
	} else {
		schedule, err := s.Schedule(c.NumSteps)
		if err != nil {
			return err
		}
		runFuncs = []wcdm.StepManipulator{
			wcdm.ProductionSchedule(schedule),
			wcdm.Step(),
			wcdm.MassBalanceCheck(massBalanceTolerance),
			wcdm.Record(r),
			wcdm.Log(log),
		}
	}

	sim := &wcdm.Simulation{
		System:    w,
		Dt:        s.StepDuration,
		InitFuncs: []wcdm.StepManipulator{wcdm.Record(r)},
		RunFuncs:  runFuncs,
		CleanupFuncs: []wcdm.StepManipulator{
			func(*wcdm.Simulation) error { return writeOutput(c.OutputFile, r, o) },
		},
	}

	if err = sim.Init(); err != nil {
		return fmt.Errorf("wcdm: problem initializing model: %v", err)
	}
	if err = sim.Run(); err != nil {
		return fmt.Errorf("wcdm: problem running simulation: %v", err)
	}
	if err = sim.Cleanup(); err != nil {
		return fmt.Errorf("wcdm: problem shutting down model: %v", err)
	}
	log.WithFields(logrus.Fields{
		"steps": sim.Steps(),
		"time":  sim.Time(),
		"total": w.PatchMap().Total(),
	}).Info("wcdm: simulation finished")
	log.Infof("wcdm: wrote results to %s", c.OutputFile)

	if c.PlotFile != "" {
		if err := writePlot(c.PlotFile, r); err != nil {
			return err
		}
		log.Infof("wcdm: wrote chart to %s", c.PlotFile)
		if c.Open {
			if err := open.Run(c.PlotFile); err != nil {
				log.WithError(err).Warn("wcdm: could not open chart")
			}
		}
	}

	log.Infof("wcdm: elapsed time: %v", time.Since(startTime))
	return nil
}

// massBalanceTolerance is the relative error allowed in the total
// amount at each step.
const massBalanceTolerance = 1.e-8

func writePlot(fileName string, r *wcdm.Snapshots) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("wcdmutil: problem creating chart file: %v", err)
	}
	if err := chart.WritePNG(f, r, chart.Width, chart.Height); err != nil {
		f.Close()
		return fmt.Errorf("wcdmutil: problem drawing chart: %v", err)
	}
	return f.Close()
}

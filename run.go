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

package wcdm

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Simulation drives a WorldDiffusionSystem through a series of
// manipulator pipelines.
type Simulation struct {
	System *WorldDiffusionSystem
	Dt     float64 // step duration

	// InitFuncs are run once by Init, RunFuncs are run repeatedly by
	// Run until Done is set, and CleanupFuncs are run once by Cleanup.
	InitFuncs, RunFuncs, CleanupFuncs []StepManipulator

	// Done is set by a manipulator to end the Run loop.
	Done bool

	step      int
	time      float64
	prevTotal float64 // total amount before the latest step
}

// StepManipulator is a function that operates on a simulation.
type StepManipulator func(s *Simulation) error

// Init runs the initialization functions.
func (s *Simulation) Init() error {
	if s.System == nil {
		return fmt.Errorf("wcdm: simulation has no system")
	}
	if !(s.Dt > 0) {
		return fmt.Errorf("%w: Dt=%g", ErrInvalidDuration, s.Dt)
	}
	s.prevTotal = s.System.PatchMap().Total()
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the run functions repeatedly until one of them sets Done.
// At least one of RunFuncs, such as ProductionSchedule,
// EquilibriumCheck combined with MaxSteps, or MaxSteps alone, must end
// the loop.
func (s *Simulation) Run() error {
	if len(s.RunFuncs) == 0 && !s.Done {
		return fmt.Errorf("wcdm: simulation has no run functions, so it would never finish")
	}
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup runs the cleanup functions.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Steps returns the number of steps taken so far.
func (s *Simulation) Steps() int { return s.step }

// Time returns the simulated time elapsed so far.
func (s *Simulation) Time() float64 { return s.time }

// ProductionSchedule sets the production of every patch from the next
// vector in production at each call and marks the simulation done when
// the last vector has been applied.
func ProductionSchedule(production [][]float64) StepManipulator {
	i := 0
	return func(s *Simulation) error {
		if i >= len(production) {
			return fmt.Errorf("%w: production schedule has %d entries and is exhausted",
				ErrDimensionMismatch, len(production))
		}
		if err := s.System.UpdateProduction(production[i]); err != nil {
			return fmt.Errorf("wcdm: production schedule entry %d: %w", i, err)
		}
		i++
		if i == len(production) {
			s.Done = true
		}
		return nil
	}
}

// Step advances the system by one step of length Dt.
func Step() StepManipulator {
	return func(s *Simulation) error {
		s.prevTotal = s.System.PatchMap().Total()
		if err := s.System.MakeStep(s.Dt); err != nil {
			return fmt.Errorf("wcdm: step %d: %w", s.step+1, err)
		}
		s.step++
		s.time += s.Dt
		return nil
	}
}

// Record appends the current state of the system to r.
func Record(r *Snapshots) StepManipulator {
	return func(s *Simulation) error {
		return r.Add(s.time, s.System.PatchMap().RepartitionVector())
	}
}

// Log writes simulation status messages to l.
func Log(l logrus.FieldLogger) StepManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()
	return func(s *Simulation) error {
		l.WithFields(logrus.Fields{
			"step":      s.step,
			"time":      s.time,
			"total":     s.System.PatchMap().Total(),
			"walltime":  time.Since(startTime).String(),
			"Δwalltime": time.Since(timeStepTime).String(),
		}).Info("wcdm: completed step")
		timeStepTime = time.Now()
		return nil
	}
}

// MassBalanceCheck checks that the change in the total amount over the
// latest step equals the production over that step, within a relative
// tolerance.
func MassBalanceCheck(tolerance float64) StepManipulator {
	return func(s *Simulation) error {
		var produced float64
		for _, p := range s.System.PatchMap().Patches() {
			produced += p.Production()
		}
		want := s.prevTotal + produced*s.Dt
		have := s.System.PatchMap().Total()
		if !floats.EqualWithinAbsOrRel(have, want, tolerance, tolerance) {
			return fmt.Errorf("%w: step %d: total=%g, expected %g", ErrMassBalance, s.step, have, want)
		}
		return nil
	}
}

// EquilibriumCheck marks the simulation done once the concentration
// profile within each connected group of patches, relative to the group
// mean, changes by less than tolerance between two consecutive calls.
func EquilibriumCheck(tolerance float64) StepManipulator {
	var old []float64
	return func(s *Simulation) error {
		profile := relativeProfile(s.System.PatchMap())
		if old != nil && floats.Distance(profile, old, math.Inf(1)) < tolerance {
			s.Done = true
		}
		old = profile
		return nil
	}
}

// relativeProfile returns each patch concentration divided by the mean
// concentration of its connected group. Groups with a zero mean keep
// their raw concentrations.
func relativeProfile(m *PatchMap) []float64 {
	c := m.Concentrations()
	o := make([]float64, len(c))
	for _, group := range m.Components() {
		var mean float64
		for _, i := range group {
			mean += c[i]
		}
		mean /= float64(len(group))
		for _, i := range group {
			if mean == 0 {
				o[i] = c[i]
			} else {
				o[i] = c[i] / mean
			}
		}
	}
	return o
}

// MaxSteps marks the simulation done once n steps have been taken.
func MaxSteps(n int) StepManipulator {
	return func(s *Simulation) error {
		if s.step >= n {
			s.Done = true
		}
		return nil
	}
}

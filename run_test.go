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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSimulation(t *testing.T) {
	const testTolerance = 1.e-10
	w := horizontalSystem(t, "least-squares")
	r := NewSnapshots(w.PatchMap())

	buf := new(bytes.Buffer)
	log := logrus.New()
	log.Out = buf

	s := &Simulation{
		System: w,
		Dt:     horizontalDt,
		InitFuncs: []StepManipulator{
			Record(r),
		},
		RunFuncs: []StepManipulator{
			ProductionSchedule(horizontalProduction()),
			Step(),
			MassBalanceCheck(testTolerance),
			Record(r),
			Log(log),
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}

	if s.Steps() != 10 {
		t.Errorf("steps: have %d, want 10", s.Steps())
	}
	if s.Time() != 100 {
		t.Errorf("time: have %g, want 100", s.Time())
	}
	if r.Len() != 11 {
		t.Fatalf("snapshots: have %d, want 11", r.Len())
	}
	if r.Times[0] != 0 || r.Times[10] != 100 {
		t.Errorf("snapshot times: %v", r.Times)
	}
	totals := r.Totals()
	wantTotals := []float64{0, 10, 20, 30, 40, 50, 60, 70, 50, 30, 10}
	for i, want := range wantTotals {
		if absDifferent(totals[i], want, testTolerance) {
			t.Errorf("snapshot %d total: have %g, want %g", i, totals[i], want)
		}
	}
	if got := strings.Count(buf.String(), "completed step"); got != 10 {
		t.Errorf("have %d log messages, want 10", got)
	}
	if names := r.Names; names[2] != "Fast Transit" || r.CompoundNames[2] != "Oxygen" {
		t.Errorf("snapshot names: %v %v", names, r.CompoundNames)
	}
}

func TestSnapshotsShares(t *testing.T) {
	r := &Snapshots{Names: []string{"a", "b"}, CompoundNames: []string{"x", "x"}}
	if err := r.Add(0, []float64{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(1, []float64{3, 1}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(2, []float64{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("have error %v, want %v", err, ErrDimensionMismatch)
	}
	shares := r.Shares()
	if shares[0][0] != 0 || shares[0][1] != 0 {
		t.Errorf("shares of an empty snapshot should be zero, have %v", shares[0])
	}
	if shares[1][0] != 0.75 || shares[1][1] != 0.25 {
		t.Errorf("have shares %v, want [0.75 0.25]", shares[1])
	}
	if s := r.Series(0); s[0] != 0 || s[1] != 3 {
		t.Errorf("have series %v, want [0 3]", s)
	}
}

func TestMassBalanceCheck(t *testing.T) {
	patches := newTestPatches(t, []float64{1, 1}, []float64{1, 0})
	s := &Simulation{
		System: newTestSystem(t, "direct", patches, []PatchLink{{0, 1, 1}}),
		Dt:     0.1,
		RunFuncs: []StepManipulator{
			Step(),
			func(s *Simulation) error {
				s.System.PatchMap().Patch(1).addAmount(1)
				return nil
			},
			MassBalanceCheck(1.e-8),
			MaxSteps(5),
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); !errors.Is(err, ErrMassBalance) {
		t.Errorf("have error %v, want %v", err, ErrMassBalance)
	}
}

func TestProductionScheduleMismatch(t *testing.T) {
	patches := newTestPatches(t, []float64{1, 1}, []float64{1, 0})
	s := &Simulation{
		System: newTestSystem(t, "direct", patches, nil),
		Dt:     1,
		RunFuncs: []StepManipulator{
			ProductionSchedule([][]float64{{1, 1}, {1, 1, 1}}),
			Step(),
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("have error %v, want %v", err, ErrDimensionMismatch)
	}
	if s.Steps() != 1 {
		t.Errorf("have %d steps, want 1", s.Steps())
	}
}

func TestSimulationInvalidDt(t *testing.T) {
	patches := newTestPatches(t, []float64{1}, []float64{1})
	s := &Simulation{System: newTestSystem(t, "direct", patches, nil)}
	if err := s.Init(); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("have error %v, want %v", err, ErrInvalidDuration)
	}
}

func TestSimulationNoRunFuncs(t *testing.T) {
	patches := newTestPatches(t, []float64{1}, []float64{1})
	s := &Simulation{System: newTestSystem(t, "direct", patches, nil), Dt: 1}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err == nil {
		t.Error("expected an error for a simulation with no run functions")
	}
	if s.Steps() != 0 {
		t.Errorf("have %d steps, want 0", s.Steps())
	}
}

// Under constant production the absolute amounts keep growing but the
// shape of the concentration profile settles.
func TestEquilibriumCheck(t *testing.T) {
	const maxSteps = 10000
	patches := newTestPatches(t, []float64{1, 1}, []float64{0, 0})
	w := newTestSystem(t, "direct", patches, []PatchLink{{0, 1, 1}})
	if err := w.UpdateProduction([]float64{1, 0}); err != nil {
		t.Fatal(err)
	}
	s := &Simulation{
		System: w,
		Dt:     0.1,
		RunFuncs: []StepManipulator{
			Step(),
			MassBalanceCheck(1.e-8),
			EquilibriumCheck(1.e-3),
			MaxSteps(maxSteps),
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Steps() <= 1 || s.Steps() >= maxSteps {
		t.Errorf("equilibrium reached after %d steps", s.Steps())
	}
	c := w.PatchMap().Concentrations()
	// The steady-state gap is production / (2 * weight).
	if absDifferent(c[0]-c[1], 0.5, 0.05) {
		t.Errorf("concentration gap = %g, want about 0.5", c[0]-c[1])
	}
}

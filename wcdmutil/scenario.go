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

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/wcdm"
)

// Scenario holds the inputs of a simulation.
type Scenario struct {
	// Solver is the name of the flux solver.
	Solver string

	// StepDuration is the length of each time step.
	StepDuration float64

	// Patches are the compartments, in index order.
	Patches []PatchConfig

	// Links connect patches by index.
	Links []LinkConfig

	// Production holds the production vector to use at each step.
	// If it is empty, the production of each patch stays at its initial
	// value.
	Production [][]float64

	// OutputVariables maps names to expressions that are calculated at
	// each step and included in the output file.
	OutputVariables map[string]string
}

// PatchConfig holds the initial state of a patch.
type PatchConfig struct {
	Name          string
	CompoundName  string
	Depth         float64
	MoleculeSpeed float64
	Amount        float64
	Production    float64
}

// LinkConfig holds the parameters of a link between two patches.
type LinkConfig struct {
	Patch1, Patch2 int
	Value          float64
}

// LoadScenario reads a TOML scenario from r.
func LoadScenario(r io.Reader) (*Scenario, error) {
	s := new(Scenario)
	if _, err := toml.DecodeReader(r, s); err != nil {
		return nil, fmt.Errorf("wcdmutil: problem reading scenario: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadScenarioFile reads a TOML scenario from the file at path, which
// can contain environment variables.
func ReadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("wcdmutil: problem opening scenario file: %v", err)
	}
	defer f.Close()
	return LoadScenario(f)
}

// HorizontalScenario returns four patches of the same depth in a chain.
// The first patch produces oxygen for seven steps, after which the other
// three start consuming it.
func HorizontalScenario() *Scenario {
	s := &Scenario{
		Solver:       "least-squares",
		StepDuration: 10,
		Patches: []PatchConfig{
			{Name: "Producer", CompoundName: "Oxygen", Depth: 200, MoleculeSpeed: 1, Production: 1},
			{Name: "Neighbour", CompoundName: "Oxygen", Depth: 200, MoleculeSpeed: 1},
			{Name: "Fast Transit", CompoundName: "Oxygen", Depth: 200, MoleculeSpeed: 2},
			{Name: "Enclosed", CompoundName: "Oxygen", Depth: 200, MoleculeSpeed: 1},
		},
		Links: []LinkConfig{
			{Patch1: 0, Patch2: 1, Value: 1},
			{Patch1: 1, Patch2: 2, Value: 1},
			{Patch1: 2, Patch2: 3, Value: 0.5},
		},
		OutputVariables: map[string]string{
			"Total": "Producer + Neighbour + [Fast Transit] + Enclosed",
		},
	}
	for i := 0; i < 7; i++ {
		s.Production = append(s.Production, []float64{1, 0, 0, 0})
	}
	for i := 0; i < 3; i++ {
		s.Production = append(s.Production, []float64{1, -1, -1, -1})
	}
	return s
}

// Validate checks that the scenario describes a system that can be
// simulated.
func (s *Scenario) Validate() error {
	if len(s.Patches) == 0 {
		return fmt.Errorf("wcdmutil: scenario has no patches")
	}
	if !(s.StepDuration > 0) {
		return fmt.Errorf("wcdmutil: scenario StepDuration=%g but should be >0", s.StepDuration)
	}
	for i, p := range s.Production {
		if len(p) != len(s.Patches) {
			return fmt.Errorf("wcdmutil: scenario production vector %d has %d values but there are %d patches",
				i, len(p), len(s.Patches))
		}
	}
	return nil
}

// System creates the diffusion system described by the scenario.
func (s *Scenario) System() (*wcdm.WorldDiffusionSystem, error) {
	patches := make([]*wcdm.Patch, len(s.Patches))
	for i, pc := range s.Patches {
		p, err := wcdm.NewPatch(pc.Depth, pc.MoleculeSpeed, pc.Amount, pc.Production, pc.CompoundName, pc.Name)
		if err != nil {
			return nil, err
		}
		patches[i] = p
	}
	links := make([]wcdm.PatchLink, len(s.Links))
	for i, l := range s.Links {
		links[i] = wcdm.PatchLink{Patch1: l.Patch1, Patch2: l.Patch2, Value: l.Value}
	}
	m, err := wcdm.NewPatchMap(patches, links)
	if err != nil {
		return nil, err
	}
	solver, err := wcdm.NewSolver(s.Solver)
	if err != nil {
		return nil, err
	}
	return wcdm.NewWorldDiffusionSystem(m, solver), nil
}

// Schedule returns n production vectors. The scenario production
// schedule is truncated or extended by repeating its last vector as
// needed. If the scenario has no schedule, the initial production of
// each patch is used throughout. If n < 1, the scenario schedule is
// returned as is.
func (s *Scenario) Schedule(n int) ([][]float64, error) {
	if n < 1 {
		if len(s.Production) == 0 {
			return nil, fmt.Errorf("wcdmutil: the scenario has no production schedule, so the number of steps must be specified")
		}
		return s.Production, nil
	}
	last := make([]float64, len(s.Patches))
	for i, p := range s.Patches {
		last[i] = p.Production
	}
	o := make([][]float64, n)
	for i := range o {
		if i < len(s.Production) {
			last = s.Production[i]
		}
		o[i] = last
	}
	return o, nil
}

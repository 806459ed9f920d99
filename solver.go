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
	"sort"
)

// solveFunc computes one flux per link of m, indexed by LinkID.
// Fluxes are per unit of time; a positive flux moves compound from
// Patch1 to Patch2.
type solveFunc func(m *PatchMap) ([]float64, error)

// solvers holds the available flux strategies.
var solvers = map[string]solveFunc{
	"direct":           solveDirect,
	"least-squares":    solveLeastSquares,
	"np-least_squares": solveLeastSquares,
}

// Solver computes the fluxes along every link of a PatchMap
// using a named strategy.
type Solver struct {
	name  string
	solve solveFunc
}

// NewSolver returns the solver registered under name.
// Use SolverNames to list the available strategies.
func NewSolver(name string) (*Solver, error) {
	f, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q; valid options are %v", ErrUnsupportedSolver, name, SolverNames())
	}
	return &Solver{name: name, solve: f}, nil
}

// Name returns the strategy name the solver was created with.
func (s *Solver) Name() string { return s.name }

// Solve returns the flux along every link of m, indexed by LinkID.
// It does not modify m.
func (s *Solver) Solve(m *PatchMap) ([]float64, error) {
	return s.solve(m)
}

func (s *Solver) String() string { return "Solver " + s.name }

// SolverNames returns the names of the available solvers in
// alphabetical order.
func SolverNames() []string {
	o := make([]string, 0, len(solvers))
	for n := range solvers {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// linkWeight returns the conductance of link l scaled by the
// harmonic mean of the molecule speeds on either side.
func (m *PatchMap) linkWeight(l PatchLink) float64 {
	return l.Value * harmonicMean(m.patches[l.Patch1].moleculeSpeed, m.patches[l.Patch2].moleculeSpeed)
}

// solveDirect computes each flux independently from the
// concentration difference across the link.
func solveDirect(m *PatchMap) ([]float64, error) {
	flux := make([]float64, len(m.links))
	for i, l := range m.links {
		if l.Value == 0 {
			continue
		}
		c1 := m.patches[l.Patch1].Concentration()
		c2 := m.patches[l.Patch2].Concentration()
		flux[i] = m.linkWeight(l) * (c1 - c2)
		if !isFinite(flux[i]) {
			return nil, fmt.Errorf("%w: direct: link %d flux=%g", ErrSolverDivergence, i, flux[i])
		}
	}
	return flux, nil
}

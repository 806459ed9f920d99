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
)

// WorldDiffusionSystem advances a PatchMap through time using a Solver.
// It is not safe for concurrent use.
type WorldDiffusionSystem struct {
	m *PatchMap
	s *Solver
}

// NewWorldDiffusionSystem returns a system that steps m using s.
func NewWorldDiffusionSystem(m *PatchMap, s *Solver) *WorldDiffusionSystem {
	return &WorldDiffusionSystem{m: m, s: s}
}

// PatchMap returns the patch map owned by the system.
func (w *WorldDiffusionSystem) PatchMap() *PatchMap { return w.m }

// Solver returns the flux solver used by the system.
func (w *WorldDiffusionSystem) Solver() *Solver { return w.s }

// UpdateProduction sets the production rate of every patch.
// production must have one finite entry per patch; otherwise nothing
// is changed.
func (w *WorldDiffusionSystem) UpdateProduction(production []float64) error {
	if len(production) != w.m.Len() {
		return fmt.Errorf("%w: production vector has length %d but there are %d patches",
			ErrDimensionMismatch, len(production), w.m.Len())
	}
	for i, v := range production {
		if !isFinite(v) {
			return fmt.Errorf("%w: production[%d]=%g", ErrInvalidParameter, i, v)
		}
	}
	for i, p := range w.m.patches {
		p.SetProduction(production[i])
	}
	return nil
}

// MakeStep advances the system by duration. Fluxes are computed from the
// state at the start of the step and then committed along with production.
// If the solver fails, or any resulting amount is not finite, the patch
// map is left unchanged.
func (w *WorldDiffusionSystem) MakeStep(duration float64) error {
	if !(duration > 0) || !isFinite(duration) {
		return fmt.Errorf("%w: %g", ErrInvalidDuration, duration)
	}
	flux, err := w.s.Solve(w.m)
	if err != nil {
		return err
	}
	if len(flux) != w.m.NumLinks() {
		return fmt.Errorf("%w: solver %s returned %d fluxes for %d links",
			ErrSolverDivergence, w.s.Name(), len(flux), w.m.NumLinks())
	}
	for i, f := range flux {
		if !isFinite(f * duration) {
			return fmt.Errorf("%w: solver %s: link %d flux=%g", ErrSolverDivergence, w.s.Name(), i, f)
		}
	}

	amounts := w.m.RepartitionVector()
	for i, f := range flux {
		l := w.m.links[i]
		amounts[l.Patch1] -= f * duration
		amounts[l.Patch2] += f * duration
	}
	for i, p := range w.m.patches {
		amounts[i] += p.production * duration
		if !isFinite(amounts[i]) {
			return fmt.Errorf("%w: patch %d amount overflows to %g", ErrSolverDivergence, i, amounts[i])
		}
	}
	for i, p := range w.m.patches {
		p.amount = amounts[i]
	}
	return nil
}

func (w *WorldDiffusionSystem) String() string {
	return fmt.Sprintf("World diffusion system (%s)\n%s", w.s.Name(), w.m)
}

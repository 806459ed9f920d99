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

	"gonum.org/v1/gonum/mat"
)

// solveLeastSquares reconciles all link fluxes at once. The unknowns
// are the flux along each active link and the concentration of each
// patch after one unit of time. Each link contributes the row
//
//	f_l - w_l (c'_1 - c'_2) = 0
//
// and each patch the mass balance row
//
//	c'_k + (Σ f_out - Σ f_in) / depth_k = c_k
//
// so the fluxes are driven by the end-of-interval concentrations rather
// than the current ones. Links with zero conductance are left out of
// the system and carry no flux. The system is square, so it is solved
// exactly by LU factorization rather than fitted in the least-squares
// sense; the strategy keeps its registered name.
func solveLeastSquares(m *PatchMap) ([]float64, error) {
	flux := make([]float64, len(m.links))

	var active []int
	for i, l := range m.links {
		if l.Value != 0 {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return flux, nil
	}

	nl, np := len(active), len(m.patches)
	n := nl + np
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)

	for row, li := range active {
		l := m.links[li]
		w := m.linkWeight(l)
		if !isFinite(w) {
			return nil, fmt.Errorf("%w: least-squares: link %d weight=%g", ErrSolverDivergence, li, w)
		}
		a.Set(row, row, 1)
		a.Set(row, nl+l.Patch1, -w)
		a.Set(row, nl+l.Patch2, w)

		a.Set(nl+l.Patch1, row, a.At(nl+l.Patch1, row)+1/m.patches[l.Patch1].depth)
		a.Set(nl+l.Patch2, row, a.At(nl+l.Patch2, row)-1/m.patches[l.Patch2].depth)
	}
	for k, p := range m.patches {
		c := p.Concentration()
		if !isFinite(c) {
			return nil, fmt.Errorf("%w: least-squares: patch %d concentration=%g", ErrSolverDivergence, k, c)
		}
		a.Set(nl+k, nl+k, 1)
		b.SetVec(nl+k, c)
	}

	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		if cond, ok := err.(mat.Condition); ok {
			return nil, fmt.Errorf("%w: least-squares: ill-conditioned system (condition number %g)", ErrSolverDivergence, float64(cond))
		}
		return nil, fmt.Errorf("%w: least-squares: %v", ErrSolverDivergence, err)
	}
	for row, li := range active {
		f := x.At(row, 0)
		if !isFinite(f) {
			return nil, fmt.Errorf("%w: least-squares: link %d flux=%g", ErrSolverDivergence, li, f)
		}
		flux[li] = f
	}
	return flux, nil
}

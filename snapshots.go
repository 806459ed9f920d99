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

	"gonum.org/v1/gonum/floats"
)

// Snapshots holds the repartition vector of a PatchMap at a series of times.
type Snapshots struct {
	Names         []string // patch names
	CompoundNames []string // compound held in each patch

	Times   []float64
	Amounts [][]float64 // [snapshot][patch]
}

// NewSnapshots returns an empty record for the patches in m.
func NewSnapshots(m *PatchMap) *Snapshots {
	r := &Snapshots{
		Names:         make([]string, m.Len()),
		CompoundNames: make([]string, m.Len()),
	}
	for i, p := range m.Patches() {
		r.Names[i] = p.Name()
		r.CompoundNames[i] = p.CompoundName()
	}
	return r
}

// Add appends a snapshot. amounts is copied.
func (r *Snapshots) Add(time float64, amounts []float64) error {
	if len(amounts) != len(r.Names) {
		return fmt.Errorf("%w: snapshot has %d amounts but there are %d patches",
			ErrDimensionMismatch, len(amounts), len(r.Names))
	}
	a := make([]float64, len(amounts))
	copy(a, amounts)
	r.Times = append(r.Times, time)
	r.Amounts = append(r.Amounts, a)
	return nil
}

// Len returns the number of snapshots.
func (r *Snapshots) Len() int { return len(r.Times) }

// Totals returns the total amount at each snapshot.
func (r *Snapshots) Totals() []float64 {
	o := make([]float64, len(r.Amounts))
	for i, a := range r.Amounts {
		o[i] = floats.Sum(a)
	}
	return o
}

// Shares returns the fraction of the total amount held by each
// patch at each snapshot. A zero total is treated as 1.
func (r *Snapshots) Shares() [][]float64 {
	o := make([][]float64, len(r.Amounts))
	for i, a := range r.Amounts {
		total := floats.Sum(a)
		if total == 0 {
			total = 1
		}
		o[i] = make([]float64, len(a))
		copy(o[i], a)
		floats.Scale(1/total, o[i])
	}
	return o
}

// Series returns the amount in patch i at each snapshot.
func (r *Snapshots) Series(i int) []float64 {
	o := make([]float64, len(r.Amounts))
	for j, a := range r.Amounts {
		o[j] = a[i]
	}
	return o
}

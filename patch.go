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
)

// Patch holds the state of a single compartment.
type Patch struct {
	depth         float64 // characteristic depth used to convert amount to concentration
	moleculeSpeed float64 // mobility of the compound within this patch

	amount     float64 // current amount of compound
	production float64 // source (>0) or sink (<0) rate per unit time

	compoundName string
	name         string
}

// NewPatch creates a new patch. depth and moleculeSpeed must be positive,
// and all numeric arguments must be finite.
// compoundName and name are only used for reporting.
func NewPatch(depth, moleculeSpeed, amount, production float64, compoundName, name string) (*Patch, error) {
	if !(depth > 0) || math.IsInf(depth, 0) {
		return nil, fmt.Errorf("%w: patch %q: depth=%g but should be >0", ErrInvalidParameter, name, depth)
	}
	if !(moleculeSpeed > 0) || math.IsInf(moleculeSpeed, 0) {
		return nil, fmt.Errorf("%w: patch %q: molecule speed=%g but should be >0", ErrInvalidParameter, name, moleculeSpeed)
	}
	if !isFinite(amount) {
		return nil, fmt.Errorf("%w: patch %q: amount=%g", ErrInvalidParameter, name, amount)
	}
	if !isFinite(production) {
		return nil, fmt.Errorf("%w: patch %q: production=%g", ErrInvalidParameter, name, production)
	}
	return &Patch{
		depth:         depth,
		moleculeSpeed: moleculeSpeed,
		amount:        amount,
		production:    production,
		compoundName:  compoundName,
		name:          name,
	}, nil
}

// Depth returns the patch depth.
func (p *Patch) Depth() float64 { return p.depth }

// MoleculeSpeed returns the mobility coefficient of the compound in this patch.
func (p *Patch) MoleculeSpeed() float64 { return p.moleculeSpeed }

// Amount returns the current amount of compound in the patch.
func (p *Patch) Amount() float64 { return p.amount }

// Production returns the current production rate.
func (p *Patch) Production() float64 { return p.production }

// CompoundName returns the name of the compound held in the patch.
func (p *Patch) CompoundName() string { return p.compoundName }

// Name returns the patch name.
func (p *Patch) Name() string { return p.name }

// Concentration returns amount / depth, which is the quantity
// that drives exchange between patches.
func (p *Patch) Concentration() float64 { return p.amount / p.depth }

// SetProduction sets the production rate.
func (p *Patch) SetProduction(production float64) {
	p.production = production
}

// addAmount adjusts the amount by a signed delta.
func (p *Patch) addAmount(delta float64) {
	p.amount += delta
}

func (p *Patch) String() string {
	return fmt.Sprintf("Patch %s: %s amount=%g production=%g depth=%g speed=%g",
		p.name, p.compoundName, p.amount, p.production, p.depth, p.moleculeSpeed)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// harmonicMean combines two coefficients on either side of
// an interface.
func harmonicMean(a, b float64) float64 {
	return 2. * a * b / (a + b)
}

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
	"errors"
	"math"
	"reflect"
	"testing"
)

// newTestPatches creates one patch per depth, all with a molecule
// speed of 1 and the given amounts.
func newTestPatches(t *testing.T, depths, amounts []float64) []*Patch {
	t.Helper()
	patches := make([]*Patch, len(depths))
	for i := range depths {
		p, err := NewPatch(depths[i], 1, amounts[i], 0, "Oxygen", string(rune('A'+i)))
		if err != nil {
			t.Fatal(err)
		}
		patches[i] = p
	}
	return patches
}

func TestNewPatchInvalid(t *testing.T) {
	tests := []struct {
		name                             string
		depth, speed, amount, production float64
	}{
		{name: "zero depth", depth: 0, speed: 1},
		{name: "negative depth", depth: -1, speed: 1},
		{name: "NaN depth", depth: math.NaN(), speed: 1},
		{name: "infinite depth", depth: math.Inf(1), speed: 1},
		{name: "zero speed", depth: 1, speed: 0},
		{name: "negative speed", depth: 1, speed: -2},
		{name: "NaN amount", depth: 1, speed: 1, amount: math.NaN()},
		{name: "infinite production", depth: 1, speed: 1, production: math.Inf(-1)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := NewPatch(test.depth, test.speed, test.amount, test.production, "Oxygen", "x")
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("have error %v, want %v", err, ErrInvalidParameter)
			}
			if p != nil {
				t.Errorf("patch should be nil, have %v", p)
			}
		})
	}
}

func TestPatchAccessors(t *testing.T) {
	p, err := NewPatch(200, 2, 50, -1, "Oxygen", "Producer")
	if err != nil {
		t.Fatal(err)
	}
	if p.Depth() != 200 || p.MoleculeSpeed() != 2 || p.Amount() != 50 || p.Production() != -1 {
		t.Errorf("unexpected patch values: %v", p)
	}
	if p.CompoundName() != "Oxygen" || p.Name() != "Producer" {
		t.Errorf("unexpected patch names: %v", p)
	}
	if c := p.Concentration(); c != 0.25 {
		t.Errorf("concentration: have %g, want 0.25", c)
	}
	p.SetProduction(3)
	if p.Production() != 3 {
		t.Errorf("production: have %g, want 3", p.Production())
	}
}

func TestNewPatchMapInvalid(t *testing.T) {
	tests := []struct {
		name string
		link PatchLink
	}{
		{name: "out of range", link: PatchLink{Patch1: 0, Patch2: 3, Value: 1}},
		{name: "negative index", link: PatchLink{Patch1: -1, Patch2: 1, Value: 1}},
		{name: "self link", link: PatchLink{Patch1: 1, Patch2: 1, Value: 1}},
		{name: "negative value", link: PatchLink{Patch1: 0, Patch2: 1, Value: -0.5}},
		{name: "NaN value", link: PatchLink{Patch1: 0, Patch2: 1, Value: math.NaN()}},
		{name: "infinite value", link: PatchLink{Patch1: 0, Patch2: 1, Value: math.Inf(1)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			patches := newTestPatches(t, []float64{1, 1, 1}, []float64{0, 0, 0})
			links := []PatchLink{{Patch1: 0, Patch2: 1, Value: 1}, test.link}
			_, err := NewPatchMap(patches, links)
			if !errors.Is(err, ErrInvalidTopology) {
				t.Errorf("have error %v, want %v", err, ErrInvalidTopology)
			}
		})
	}
}

func TestNewPatchMapRepeatedPatch(t *testing.T) {
	patches := newTestPatches(t, []float64{1, 1}, []float64{10, 10})
	_, err := NewPatchMap([]*Patch{patches[0], patches[1], patches[0]}, []PatchLink{{Patch1: 0, Patch2: 2, Value: 1}})
	if !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("have error %v, want %v", err, ErrInvalidTopology)
	}
	_, err = NewPatchMap([]*Patch{patches[1], patches[1]}, nil)
	if !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("have error %v, want %v", err, ErrInvalidTopology)
	}
}

func TestNeighbors(t *testing.T) {
	patches := newTestPatches(t, []float64{1, 1, 1, 1}, []float64{0, 0, 0, 0})
	m, err := NewPatchMap(patches, []PatchLink{
		{Patch1: 0, Patch2: 1, Value: 1},
		{Patch1: 1, Patch2: 2, Value: 0.5},
		{Patch1: 2, Patch2: 1, Value: 2}, // parallel
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		i    int
		want []Neighbor
	}{
		{i: 0, want: []Neighbor{{Index: 1, Value: 1, Link: 0}}},
		{i: 1, want: []Neighbor{
			{Index: 0, Value: 1, Link: 0},
			{Index: 2, Value: 0.5, Link: 1},
			{Index: 2, Value: 2, Link: 2},
		}},
		{i: 2, want: []Neighbor{{Index: 1, Value: 0.5, Link: 1}, {Index: 1, Value: 2, Link: 2}}},
		{i: 3, want: []Neighbor{}},
	}
	for _, test := range tests {
		have, err := m.Neighbors(test.i)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, test.want) {
			t.Errorf("patch %d: have %+v, want %+v", test.i, have, test.want)
		}
	}
	if _, err := m.Neighbors(4); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("have error %v, want %v", err, ErrDimensionMismatch)
	}
}

func TestApplyFlux(t *testing.T) {
	patches := newTestPatches(t, []float64{1, 2}, []float64{10, 4})
	m, err := NewPatchMap(patches, []PatchLink{{Patch1: 0, Patch2: 1, Value: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyFlux(0, 3); err != nil {
		t.Fatal(err)
	}
	if have, want := m.RepartitionVector(), []float64{7, 7}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if err := m.ApplyFlux(0, -1); err != nil {
		t.Fatal(err)
	}
	if have, want := m.RepartitionVector(), []float64{8, 6}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := m.Concentrations(), []float64{8, 3}; !reflect.DeepEqual(have, want) {
		t.Errorf("concentrations: have %v, want %v", have, want)
	}
	for _, id := range []LinkID{-1, 1} {
		if err := m.ApplyFlux(id, 1); !errors.Is(err, ErrUnknownLink) {
			t.Errorf("link %d: have error %v, want %v", id, err, ErrUnknownLink)
		}
	}
	if have, want := m.Total(), 14.; have != want {
		t.Errorf("total: have %g, want %g", have, want)
	}
}

func TestComponents(t *testing.T) {
	patches := newTestPatches(t, []float64{1, 1, 1, 1, 1}, []float64{0, 0, 0, 0, 0})
	m, err := NewPatchMap(patches, []PatchLink{
		{Patch1: 3, Patch2: 1, Value: 1},
		{Patch1: 0, Patch2: 2, Value: 0}, // no conductance
		{Patch1: 4, Patch2: 2, Value: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{0}, {1, 3}, {2, 4}}
	if have := m.Components(); !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

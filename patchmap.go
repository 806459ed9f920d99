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
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// LinkID identifies a link by its position in a PatchMap.
type LinkID int

// PatchLink is an undirected connection between two patches.
// Patch1 and Patch2 are indices into the PatchMap patch list and
// Value is the conductance of the connection. The orientation only
// matters for the sign convention of fluxes: a positive flux moves
// compound from Patch1 to Patch2.
type PatchLink struct {
	Patch1, Patch2 int
	Value          float64
}

// Neighbor is an entry in the adjacency list of a patch.
type Neighbor struct {
	Index int     // index of the neighboring patch
	Value float64 // conductance of the connecting link
	Link  LinkID
}

// PatchMap holds a set of patches and the links between them.
// Patch indices and LinkIDs are stable for the life of the map.
type PatchMap struct {
	patches   []*Patch
	links     []PatchLink
	neighbors [][]Neighbor
}

// NewPatchMap creates a PatchMap from the given patches and links,
// checking that every link refers to two distinct existing patches and
// has a finite, non-negative conductance. A patch may only appear once.
func NewPatchMap(patches []*Patch, links []PatchLink) (*PatchMap, error) {
	m := &PatchMap{
		patches:   make([]*Patch, len(patches)),
		links:     make([]PatchLink, len(links)),
		neighbors: make([][]Neighbor, len(patches)),
	}
	seen := make(map[*Patch]int, len(patches))
	for i, p := range patches {
		if p == nil {
			return nil, fmt.Errorf("%w: patch %d is nil", ErrInvalidParameter, i)
		}
		if j, ok := seen[p]; ok {
			return nil, fmt.Errorf("%w: patch %d is the same patch as patch %d", ErrInvalidTopology, i, j)
		}
		seen[p] = i
		m.patches[i] = p
	}
	copy(m.links, links)
	for i, l := range m.links {
		if err := m.checkLink(l); err != nil {
			return nil, fmt.Errorf("%w: link %d: %v", ErrInvalidTopology, i, err)
		}
		id := LinkID(i)
		m.neighbors[l.Patch1] = append(m.neighbors[l.Patch1], Neighbor{Index: l.Patch2, Value: l.Value, Link: id})
		m.neighbors[l.Patch2] = append(m.neighbors[l.Patch2], Neighbor{Index: l.Patch1, Value: l.Value, Link: id})
	}
	return m, nil
}

func (m *PatchMap) checkLink(l PatchLink) error {
	n := len(m.patches)
	if l.Patch1 < 0 || l.Patch1 >= n {
		return fmt.Errorf("patch index %d out of range [0, %d)", l.Patch1, n)
	}
	if l.Patch2 < 0 || l.Patch2 >= n {
		return fmt.Errorf("patch index %d out of range [0, %d)", l.Patch2, n)
	}
	if l.Patch1 == l.Patch2 {
		return fmt.Errorf("patch %d is linked to itself", l.Patch1)
	}
	if !(l.Value >= 0) || math.IsInf(l.Value, 0) {
		return fmt.Errorf("value=%g but should be finite and >=0", l.Value)
	}
	return nil
}

// Len returns the number of patches.
func (m *PatchMap) Len() int { return len(m.patches) }

// Patch returns the patch at index i.
func (m *PatchMap) Patch(i int) *Patch { return m.patches[i] }

// Patches returns the patches in index order. The returned slice
// must not be modified.
func (m *PatchMap) Patches() []*Patch { return m.patches }

// NumLinks returns the number of links.
func (m *PatchMap) NumLinks() int { return len(m.links) }

// Link returns the link with the given ID.
func (m *PatchMap) Link(id LinkID) PatchLink { return m.links[id] }

// Links returns a copy of the links in LinkID order.
func (m *PatchMap) Links() []PatchLink {
	o := make([]PatchLink, len(m.links))
	copy(o, m.links)
	return o
}

// Neighbors returns the neighbors of patch i in link order.
func (m *PatchMap) Neighbors(i int) ([]Neighbor, error) {
	if i < 0 || i >= len(m.patches) {
		return nil, fmt.Errorf("%w: patch index %d out of range [0, %d)", ErrDimensionMismatch, i, len(m.patches))
	}
	o := make([]Neighbor, len(m.neighbors[i]))
	copy(o, m.neighbors[i])
	return o, nil
}

// RepartitionVector returns the amount of compound in each patch.
func (m *PatchMap) RepartitionVector() []float64 {
	o := make([]float64, len(m.patches))
	for i, p := range m.patches {
		o[i] = p.amount
	}
	return o
}

// Concentrations returns amount / depth for each patch.
func (m *PatchMap) Concentrations() []float64 {
	o := make([]float64, len(m.patches))
	for i, p := range m.patches {
		o[i] = p.Concentration()
	}
	return o
}

// Total returns the total amount of compound in the map.
func (m *PatchMap) Total() float64 {
	return floats.Sum(m.RepartitionVector())
}

// ApplyFlux moves amount from Patch1 to Patch2 of the given link.
// Negative amounts move compound the other way.
func (m *PatchMap) ApplyFlux(id LinkID, amount float64) error {
	if id < 0 || int(id) >= len(m.links) {
		return fmt.Errorf("%w: %d (map has %d links)", ErrUnknownLink, id, len(m.links))
	}
	l := m.links[id]
	m.patches[l.Patch1].addAmount(-amount)
	m.patches[l.Patch2].addAmount(amount)
	return nil
}

// Components returns the groups of patches connected by links with a
// positive conductance. Each group is sorted, and groups are ordered
// by their lowest index.
func (m *PatchMap) Components() [][]int {
	g := simple.NewUndirectedGraph()
	for i := range m.patches {
		g.AddNode(simple.Node(i))
	}
	for _, l := range m.links {
		if l.Value == 0 {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(l.Patch1), T: simple.Node(l.Patch2)})
	}
	cc := topo.ConnectedComponents(g)
	o := make([][]int, len(cc))
	for i, c := range cc {
		group := make([]int, len(c))
		for j, n := range c {
			group[j] = int(n.ID())
		}
		sort.Ints(group)
		o[i] = group
	}
	sort.Slice(o, func(i, j int) bool { return o[i][0] < o[j][0] })
	return o
}

func (m *PatchMap) String() string {
	b := new(bytes.Buffer)
	for _, p := range m.patches {
		fmt.Fprintln(b, p)
	}
	for i, l := range m.links {
		fmt.Fprintf(b, "Link %d: %s <-> %s value=%g\n", i,
			m.patches[l.Patch1].name, m.patches[l.Patch2].name, l.Value)
	}
	return b.String()
}

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
	"reflect"
	"testing"

	"github.com/Knetic/govaluate"
)

var horizontalNames = []string{"Producer", "Neighbour", "Fast Transit", "Enclosed"}

func TestOutputter(t *testing.T) {
	o, err := NewOutputter(map[string]string{
		"Total":  "Producer + Neighbour + [Fast Transit] + Enclosed",
		"Share":  "Producer / Total",
		"Growth": "exp(0) * abs(-2) * sum(1, Time)",
		"Double": "twice(Enclosed)",
	}, map[string]govaluate.ExpressionFunction{
		"twice": func(arg ...interface{}) (interface{}, error) {
			return 2 * arg[0].(float64), nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if have, want := o.Names(), []string{"Double", "Growth", "Share", "Total"}; !reflect.DeepEqual(have, want) {
		t.Errorf("names: have %v, want %v", have, want)
	}
	have, err := o.Evaluate(horizontalNames, []float64{1, 2, 3, 4}, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{
		"Total":  10,
		"Share":  0.1,
		"Growth": 12,
		"Double": 8,
	}
	for k, w := range want {
		if absDifferent(have[k], w, 1.e-12) {
			t.Errorf("%s: have %g, want %g", k, have[k], w)
		}
	}
}

func TestOutputterResults(t *testing.T) {
	o, err := NewOutputter(map[string]string{"Outside": "Neighbour + [Fast Transit] + Enclosed"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := &Snapshots{Names: horizontalNames, CompoundNames: []string{"O", "O", "O", "O"}}
	if err := r.Add(0, []float64{0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(10, []float64{9, 0.5, 0.25, 0.25}); err != nil {
		t.Fatal(err)
	}
	have, err := o.Results(r)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]float64{"Outside": {0, 1}}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestOutputterErrors(t *testing.T) {
	if _, err := NewOutputter(map[string]string{"Bad": "Producer +"}, nil); err == nil {
		t.Error("expected a parse error")
	}
	tests := map[string]map[string]string{
		"undefined": {"A": "Producer + Nowhere"},
		"circular":  {"A": "B + 1", "B": "A * 2"},
		"self":      {"A": "A + 1"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			o, err := NewOutputter(vars, nil)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := o.Evaluate(horizontalNames, []float64{1, 2, 3, 4}, 0); err == nil {
				t.Error("expected an evaluation error")
			}
		})
	}
}

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
	"sort"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/floats"
)

// TimeVar is the name of the variable that holds the simulation time
// in output expressions.
const TimeVar = "Time"

// Outputter calculates user-defined output variables from snapshots.
//
// Each output variable is defined by an expression that can refer to
// patch amounts by patch name, to the simulation time as "Time", and to
// other output variables. Names that contain spaces must be enclosed in
// square brackets, for example "[Fast Transit] * 2".
type Outputter struct {
	expressions map[string]*govaluate.EvaluableExpression
	names       []string
}

// NewOutputter parses outputVariables, which maps output variable names
// to expressions, and adds a set of default functions:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'abs(x)' which returns the absolute value of x.
//
// 'sum(x, ...)' which adds up its arguments.
//
// Functions in outputFunctions are added to, or replace, the defaults.
func NewOutputter(outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("wcdm: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			x, ok := arg[0].(float64)
			if !ok {
				return nil, fmt.Errorf("wcdm: invalid argument %v for function 'exp'", arg[0])
			}
			return math.Exp(x), nil
		},
		"abs": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("wcdm: got %d arguments for function 'abs', but needs 1", len(arg))
			}
			x, ok := arg[0].(float64)
			if !ok {
				return nil, fmt.Errorf("wcdm: invalid argument %v for function 'abs'", arg[0])
			}
			return math.Abs(x), nil
		},
		"sum": func(arg ...interface{}) (interface{}, error) {
			v := make([]float64, len(arg))
			for i, a := range arg {
				x, ok := a.(float64)
				if !ok {
					return nil, fmt.Errorf("wcdm: invalid argument %v for function 'sum'", a)
				}
				v[i] = x
			}
			return floats.Sum(v), nil
		},
	}
	for k, f := range outputFunctions {
		funcs[k] = f
	}

	o := &Outputter{
		expressions: make(map[string]*govaluate.EvaluableExpression),
	}
	for name, expr := range outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("wcdm: output variable %q: %v", name, err)
		}
		o.expressions[name] = e
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	return o, nil
}

// Names returns the output variable names in alphabetical order.
func (o *Outputter) Names() []string { return o.names }

// Evaluate calculates every output variable for a single state, where
// amounts holds the amount in the patch with the corresponding name.
func (o *Outputter) Evaluate(names []string, amounts []float64, time float64) (map[string]float64, error) {
	if len(names) != len(amounts) {
		return nil, fmt.Errorf("%w: %d names for %d amounts", ErrDimensionMismatch, len(names), len(amounts))
	}
	params := make(map[string]interface{}, len(names)+1)
	for i, n := range names {
		params[n] = amounts[i]
	}
	params[TimeVar] = time

	e := evaluation{o: o, params: params, visiting: make(map[string]bool)}
	out := make(map[string]float64, len(o.names))
	for _, n := range o.names {
		v, err := e.value(n)
		if err != nil {
			return nil, err
		}
		out[n] = v
	}
	return out, nil
}

// Results calculates every output variable for every snapshot in r.
func (o *Outputter) Results(r *Snapshots) (map[string][]float64, error) {
	out := make(map[string][]float64, len(o.names))
	for _, n := range o.names {
		out[n] = make([]float64, r.Len())
	}
	for i := 0; i < r.Len(); i++ {
		v, err := o.Evaluate(r.Names, r.Amounts[i], r.Times[i])
		if err != nil {
			return nil, fmt.Errorf("wcdm: snapshot %d: %v", i, err)
		}
		for n, x := range v {
			out[n][i] = x
		}
	}
	return out, nil
}

// evaluation resolves output variables that depend on each other.
type evaluation struct {
	o        *Outputter
	params   map[string]interface{}
	visiting map[string]bool
}

func (e *evaluation) value(name string) (float64, error) {
	if v, ok := e.params[name]; ok {
		return v.(float64), nil
	}
	if e.visiting[name] {
		return math.NaN(), fmt.Errorf("wcdm: output variable %q is defined in terms of itself", name)
	}
	expr := e.o.expressions[name]
	e.visiting[name] = true
	for _, v := range expr.Vars() {
		if _, ok := e.params[v]; ok {
			continue
		}
		if _, ok := e.o.expressions[v]; !ok {
			return math.NaN(), fmt.Errorf("wcdm: output variable %q: undefined variable name '%s'", name, v)
		}
		if _, err := e.value(v); err != nil {
			return math.NaN(), err
		}
	}
	e.visiting[name] = false

	r, err := expr.Evaluate(e.params)
	if err != nil {
		return math.NaN(), fmt.Errorf("wcdm: output variable %q: %v", name, err)
	}
	x, ok := r.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("wcdm: output variable %q evaluates to %v, which is not a number", name, r)
	}
	e.params[name] = x
	return x, nil
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import "github.com/cpmech/gosl/chk"

// Parameter holds a scalar parameter of the problem (e.g. a load multiplier λ).
// A bifurcation tracker may fold the parameter into the Solution, after which the
// parameter is an unknown like any other dof and Value reads it from there
type Parameter struct {
	Key string    // name of parameter
	val float64   // value when not folded
	sol *Solution // solution holding the value when folded
	idx int       // index in sol; -1 => not folded
}

// NewParameter returns a new parameter
func NewParameter(key string, val float64) *Parameter {
	return &Parameter{Key: key, val: val, idx: -1}
}

// Value returns the current value
func (o *Parameter) Value() float64 {
	if o.idx < 0 {
		return o.val
	}
	return o.sol.Dof(o.idx)
}

// Set sets the value
func (o *Parameter) Set(v float64) {
	if o.idx < 0 {
		o.val = v
		return
	}
	o.sol.SetDof(o.idx, v)
}

// Index returns the index of the parameter in the Solution; -1 if not folded
func (o *Parameter) Index() int { return o.idx }

// Fold appends the parameter to sol and returns its index
func (o *Parameter) Fold(sol *Solution) (idx int) {
	if o.idx >= 0 {
		chk.Panic("parameter %q is folded already (index=%d)", o.Key, o.idx)
	}
	o.idx = sol.Append(o.val)
	o.sol = sol
	return o.idx
}

// Unfold copies the tracked value back into the parameter; the caller is responsible for
// removing the entry from the Solution
func (o *Parameter) Unfold() {
	if o.idx < 0 {
		return
	}
	o.val = o.sol.Dof(o.idx)
	o.sol = nil
	o.idx = -1
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import "github.com/cpmech/gosl/chk"

// Solution holds the global unknowns (dofs) in an arena addressed by stable indices.
//
//          / u \  original dofs: [0, Norig)
//   vals = | a |  augmentation dofs appended by bifurcation trackers; e.g. λ, null vectors
//          \ h /  hidden dofs: held fixed, but still addressable
//
//  Only the first Ndof() entries ("live" entries) are unknowns of the system being solved.
//  Hiding and showing entries changes the live length only; values never move.
type Solution struct {
	vals  []float64 // all values
	nlive int       // number of live entries
	norig int       // number of original dofs
}

// NewSolution returns a new Solution with norig original dofs set to zero
func NewSolution(norig int) (o *Solution) {
	o = new(Solution)
	o.vals = make([]float64, norig)
	o.nlive = norig
	o.norig = norig
	return
}

// Ndof returns the number of live dofs
func (o *Solution) Ndof() int { return o.nlive }

// Norig returns the number of original dofs
func (o *Solution) Norig() int { return o.norig }

// Size returns the number of stored dofs; i.e. live plus hidden
func (o *Solution) Size() int { return len(o.vals) }

// Dof returns the value of dof i; hidden dofs can be read as well
func (o *Solution) Dof(i int) float64 { return o.vals[i] }

// SetDof sets the value of dof i
func (o *Solution) SetDof(i int, v float64) { o.vals[i] = v }

// AddToDof adds v to dof i
func (o *Solution) AddToDof(i int, v float64) { o.vals[i] += v }

// Values returns a copy of the live dofs
func (o *Solution) Values() (v []float64) {
	v = make([]float64, o.nlive)
	copy(v, o.vals[:o.nlive])
	return
}

// SetValues sets the first len(v) dofs
func (o *Solution) SetValues(v []float64) {
	if len(v) > len(o.vals) {
		chk.Panic("cannot set %d values in Solution with %d entries", len(v), len(o.vals))
	}
	copy(o.vals, v)
}

// Append appends dofs right after the live entries and returns the index of the first one.
// Hidden entries are discarded and the new entries become live
func (o *Solution) Append(vals ...float64) (first int) {
	first = o.nlive
	o.vals = append(o.vals[:o.nlive], vals...)
	o.nlive = len(o.vals)
	return
}

// SetNdof sets the number of live dofs; entries beyond n are hidden
func (o *Solution) SetNdof(n int) {
	if n < o.norig || n > len(o.vals) {
		chk.Panic("number of live dofs %d is out of range [%d,%d]", n, o.norig, len(o.vals))
	}
	o.nlive = n
}

// Truncate drops all entries beyond n; the remaining ones become live
func (o *Solution) Truncate(n int) {
	if n < o.norig || n > len(o.vals) {
		chk.Panic("cannot truncate Solution with %d entries to %d (norig=%d)", len(o.vals), n, o.norig)
	}
	o.vals = o.vals[:n]
	o.nlive = n
}

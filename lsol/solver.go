// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package lsol implements linear solvers for the Newton iterations of nonlinear systems
package lsol

import (
	"errors"

	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
)

// ErrPrecondition indicates that a solver was used in a state that does not allow the requested
// operation; e.g. Resolve called before any Solve
var ErrPrecondition = errors.New("precondition violation")

// System defines what linear solvers need from the nonlinear problem being solved
type System interface {
	Ndof() int                                      // number of unknowns (size of system)
	Assemble(fb []float64, kb *Triplet) (err error) // assembles fb = -R and kb = dR/dy
	SetSignOfJacobian(sign int)                     // records the sign of the determinant of kb
}

// Solver defines linear solvers
//  Solve assembles and solves kb x = fb; with resolve enabled, the factorisation (or matrix) is
//  kept and Resolve solves kb x = rhs with the same kb
type Solver interface {
	Name() string                              // name of solver
	Solve(sys System, x []float64) (err error) // assembles system and solves it
	Resolve(rhs, x []float64) (err error)      // solves with stored factors
	EnableResolve()                            // keep factors after Solve
	DisableResolve()                           // release factors
	ResolveIsEnabled() bool                    // tells whether factors are kept
}

// Get returns a new linear solver from factory
func Get(name string, dat *inp.LinSolData) (sol Solver, err error) {
	fcn, ok := allocators[name]
	if !ok {
		return nil, chk.Err("cannot find linear solver named %q", name)
	}
	if dat == nil {
		dat = new(inp.LinSolData)
		dat.SetDefault()
	}
	return fcn(dat), nil
}

// allocators holds all available linear solvers
var allocators = map[string]func(dat *inp.LinSolData) Solver{}

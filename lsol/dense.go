// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"fmt"
	"math"

	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

// Dense implements a direct solver based on the LU factorisation of the dense Jacobian matrix.
// It also records the sign of the determinant of the Jacobian
type Dense struct {
	Verbose bool    // show messages
	lu      *mat.LU // factors; nil if not available
	n       int     // size of factorised system
	resolve bool    // keep factors after Solve
}

// register solver
func init() {
	allocators["dense"] = func(dat *inp.LinSolData) Solver {
		return &Dense{Verbose: dat.Verbose}
	}
}

// Name returns the name of the solver
func (o *Dense) Name() string { return "dense" }

// Solve assembles and solves the linear system
func (o *Dense) Solve(sys System, x []float64) (err error) {

	// assemble
	n := sys.Ndof()
	if len(x) != n {
		return chk.Err("dense: size of solution vector (%d) must be equal to ndof (%d)", len(x), n)
	}
	fb := make([]float64, n)
	kb := NewTriplet(n, n)
	err = sys.Assemble(fb, kb)
	if err != nil {
		return
	}

	// factorise
	o.lu = new(mat.LU)
	o.lu.Factorize(kb.ToDense())
	o.n = n

	// sign of determinant
	_, sign := o.lu.LogDet()
	sys.SetSignOfJacobian(int(sign))

	// solve
	err = o.backsubs(fb, x)
	if !o.resolve {
		o.lu = nil
	}
	return
}

// Resolve solves the linear system with new right-hand side using the stored factors
func (o *Dense) Resolve(rhs, x []float64) (err error) {
	if o.lu == nil {
		return fmt.Errorf("dense: cannot resolve without factors: %w", ErrPrecondition)
	}
	return o.backsubs(rhs, x)
}

// EnableResolve makes Solve keep the factors
func (o *Dense) EnableResolve() { o.resolve = true }

// DisableResolve releases the factors
func (o *Dense) DisableResolve() {
	o.resolve = false
	o.lu = nil
}

// ResolveIsEnabled tells whether factors are kept after Solve
func (o *Dense) ResolveIsEnabled() bool { return o.resolve }

// backsubs performs the back substitution
func (o *Dense) backsubs(rhs, x []float64) (err error) {
	if len(rhs) != o.n || len(x) != o.n {
		return chk.Err("dense: size of vectors (rhs=%d, x=%d) must be equal to the size of the factorised system (%d)", len(rhs), len(x), o.n)
	}
	b := mat.NewVecDense(o.n, append([]float64{}, rhs...))
	var xv mat.VecDense
	err = o.lu.SolveVecTo(&xv, false, b)
	if err != nil {
		cond, ok := err.(mat.Condition)
		if !ok || math.IsInf(float64(cond), 0) {
			return chk.Err("dense: cannot solve linear system:\n%v", err)
		}
		if o.Verbose {
			io.Pfred("dense: warning: %v\n", err)
		}
		err = nil
	}
	for i := 0; i < o.n; i++ {
		x[i] = xv.AtVec(i)
	}
	return
}

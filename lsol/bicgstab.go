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
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
)

// BiCGStab implements the BiConjugate Gradient Stabilized method with Jacobi preconditioning for
// non-symmetric sparse systems. With resolve enabled, the assembled matrix is kept and Resolve
// iterates again with the new right-hand side
type BiCGStab struct {
	Tol     float64     // tolerance on ‖r‖/‖b‖
	MaxIt   int         // max number of iterations
	Verbose bool        // show messages
	a       *sparse.CSR // matrix; nil if not available
	dinv    []float64   // inverse of diagonal (preconditioner)
	n       int         // size of system
	resolve bool        // keep matrix after Solve
}

// register solver
func init() {
	allocators["bicgstab"] = func(dat *inp.LinSolData) Solver {
		return &BiCGStab{Tol: dat.Tol, MaxIt: dat.MaxIt, Verbose: dat.Verbose}
	}
}

// Name returns the name of the solver
func (o *BiCGStab) Name() string { return "bicgstab" }

// Solve assembles and solves the linear system
func (o *BiCGStab) Solve(sys System, x []float64) (err error) {

	// assemble
	n := sys.Ndof()
	if len(x) != n {
		return chk.Err("bicgstab: size of solution vector (%d) must be equal to ndof (%d)", len(x), n)
	}
	fb := make([]float64, n)
	kb := NewTriplet(n, n)
	err = sys.Assemble(fb, kb)
	if err != nil {
		return
	}

	// matrix and preconditioner
	o.n = n
	o.a = kb.ToCSR()
	o.dinv = make([]float64, n)
	for i := 0; i < n; i++ {
		d := o.a.At(i, i)
		if math.Abs(d) < 1e-14 {
			o.dinv[i] = 1
		} else {
			o.dinv[i] = 1.0 / d
		}
	}

	// solve
	err = o.iterate(fb, x)
	if !o.resolve {
		o.a = nil
	}
	return
}

// Resolve solves the linear system with new right-hand side using the stored matrix
func (o *BiCGStab) Resolve(rhs, x []float64) (err error) {
	if o.a == nil {
		return fmt.Errorf("bicgstab: cannot resolve without matrix: %w", ErrPrecondition)
	}
	return o.iterate(rhs, x)
}

// EnableResolve makes Solve keep the matrix
func (o *BiCGStab) EnableResolve() { o.resolve = true }

// DisableResolve releases the matrix
func (o *BiCGStab) DisableResolve() {
	o.resolve = false
	o.a = nil
}

// ResolveIsEnabled tells whether the matrix is kept after Solve
func (o *BiCGStab) ResolveIsEnabled() bool { return o.resolve }

// iterate runs the preconditioned BiCGStab iterations starting from x = 0
func (o *BiCGStab) iterate(b, x []float64) (err error) {

	// check
	n := o.n
	if len(b) != n || len(x) != n {
		return chk.Err("bicgstab: size of vectors (b=%d, x=%d) must be equal to the size of the system (%d)", len(b), len(x), n)
	}

	// initial values
	for i := 0; i < n; i++ {
		x[i] = 0
	}
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return
	}
	r := make([]float64, n)
	rt := make([]float64, n)
	p := make([]float64, n)
	v := make([]float64, n)
	s := make([]float64, n)
	t := make([]float64, n)
	ph := make([]float64, n)
	sh := make([]float64, n)
	copy(r, b)
	copy(rt, b)

	// iterations
	var rho, rhoPrev, alpha, omega float64
	for it := 0; it < o.MaxIt; it++ {

		// direction
		rho = floats.Dot(rt, r)
		if math.Abs(rho) < 1e-300 {
			return chk.Err("bicgstab: rho breakdown at iteration %d", it)
		}
		if it == 0 {
			copy(p, r)
		} else {
			beta := (rho / rhoPrev) * (alpha / omega)
			floats.AddScaled(p, -omega, v) // p -= ω v
			floats.Scale(beta, p)          // p *= β
			floats.Add(p, r)               // p += r
		}
		o.psolve(ph, p)
		o.matvec(v, ph)
		alpha = rho / floats.Dot(rt, v)

		// half step
		floats.AddScaledTo(s, r, -alpha, v)
		if floats.Norm(s, 2) < o.Tol*bnorm {
			floats.AddScaled(x, alpha, ph)
			o.message(it, floats.Norm(s, 2)/bnorm)
			return
		}

		// stabilisation
		o.psolve(sh, s)
		o.matvec(t, sh)
		omega = floats.Dot(t, s) / floats.Dot(t, t)
		floats.AddScaled(x, alpha, ph)
		floats.AddScaled(x, omega, sh)
		floats.AddScaledTo(r, s, -omega, t)
		if floats.Norm(r, 2) < o.Tol*bnorm {
			o.message(it, floats.Norm(r, 2)/bnorm)
			return
		}
		if math.Abs(omega) < 1e-300 {
			return chk.Err("bicgstab: omega breakdown at iteration %d", it)
		}
		rhoPrev = rho
	}
	return chk.Err("bicgstab: did not converge after %d iterations. ‖r‖/‖b‖ = %g", o.MaxIt, floats.Norm(r, 2)/bnorm)
}

// matvec computes dst = A x
func (o *BiCGStab) matvec(dst, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	o.a.MulVecTo(dst, false, x)
}

// psolve applies the Jacobi preconditioner
func (o *BiCGStab) psolve(dst, src []float64) {
	for i := range dst {
		dst[i] = o.dinv[i] * src[i]
	}
}

// message prints convergence information
func (o *BiCGStab) message(it int, relres float64) {
	if o.Verbose {
		io.Pf("bicgstab: converged after %d iterations. ‖r‖/‖b‖ = %g\n", it+1, relres)
	}
}

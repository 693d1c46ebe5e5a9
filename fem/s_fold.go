// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"
	"math"

	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// BlockFoldSolver solves the linear system of the fold-augmented problem by block elimination.
// Only the bordered Jacobian A = [[J, dR/dλ], [Φᵀ, 0]] is factorised (by Base); four solves with
// A plus the directional derivatives of J y give the Newton correction of (u, λ, y)
type BlockFoldSolver struct {
	Base    lsol.Solver  // solver of the bordered system
	h       *FoldHandler // handler
	resolve bool         // keep factors and vectors after Solve
	e       []float64    // [N+1] A⁻¹ e_λ; nil if not available
	q       []float64    // [N+1] A⁻¹ (dJy/de, 0)
}

// NewBlockFoldSolver returns a new block solver
func NewBlockFoldSolver(h *FoldHandler, base lsol.Solver) *BlockFoldSolver {
	return &BlockFoldSolver{Base: base, h: h}
}

// Name returns the name of the solver
func (o *BlockFoldSolver) Name() string { return "block-fold" }

// Solve solves the fold-augmented system
//  Input:
//   sys -- the problem with the fold handler in full mode
//  Output:
//   x -- [2N+1] Newton correction of (u, λ, y)
func (o *BlockFoldSolver) Solve(sys lsol.System, x []float64) (err error) {

	// check
	N := o.h.N
	if err = checkSize(o.Name(), "solution vector", x, 2*N+1); err != nil {
		return
	}
	o.e, o.q = nil, nil

	// block mode; keep base factors until done
	o.Base.EnableResolve()
	o.h.SolveBlockSystem()
	defer func() {
		o.h.SolveFullSystem()
		if !o.resolve || err != nil {
			o.Base.DisableResolve()
			o.e, o.q = nil, nil
		}
	}()

	// a = A⁻¹ (f1, f2); the base solver records the sign of det A
	a := make([]float64, N+1)
	err = o.Base.Solve(sys, a)
	if err != nil {
		return
	}
	signA := o.h.prob.SignOfJacobian()

	// e = A⁻¹ e_λ
	e := make([]float64, N+1)
	rhs := make([]float64, N+1)
	rhs[N] = 1
	err = o.Base.Resolve(rhs, e)
	if err != nil {
		return
	}

	// J y and its derivatives along a and e
	prob := o.h.prob
	L := dofLength(prob, N+1)
	dirs := []*direction{newDirection(a[:N], a[N], L), newDirection(e[:N], e[N], L)}
	jy := make([]float64, N)
	djy := utl.Alloc(len(dirs), N)
	err = prob.nullProducts(o.h.Param, dirs, o.h.y, jy, djy)
	if err != nil {
		return
	}

	// w = A⁻¹ (-J y - dJy/da, f2) and q = A⁻¹ (dJy/de, 0)
	w := make([]float64, N+1)
	q := make([]float64, N+1)
	for i := 0; i < N; i++ {
		rhs[i] = -jy[i] - djy[0][i]
	}
	rhs[N] = 1.0 - o.h.normValue()
	err = o.Base.Resolve(rhs, w)
	if err != nil {
		return
	}
	copy(rhs, djy[1])
	rhs[N] = 0
	err = o.Base.Resolve(rhs, q)
	if err != nil {
		return
	}

	// correction
	err = o.combine(a, e, w, q, x)
	if err != nil {
		return
	}
	// det J = det A · e_λ since e_λ = -1 / (Φ · J⁻¹ dR/dλ)
	sys.SetSignOfJacobian(signA * int(math.Copysign(1, e[N])))
	if o.resolve {
		o.e, o.q = e, q
	}
	return
}

// Resolve solves the fold-augmented system with a new right-hand side, reusing the factors and
// vectors stored by the last Solve
//  Input:
//   rhs -- [2N+1] right-hand side corresponding to (u, λ, y)
//  Output:
//   x -- [2N+1] solution
func (o *BlockFoldSolver) Resolve(rhs, x []float64) (err error) {

	// check
	if o.e == nil {
		return fmt.Errorf("%s: cannot resolve without a previous solve with resolve enabled: %w", o.Name(), ErrPrecondition)
	}
	N := o.h.N
	if err = checkSize(o.Name(), "right-hand side", rhs, 2*N+1); err != nil {
		return
	}
	if err = checkSize(o.Name(), "solution vector", x, 2*N+1); err != nil {
		return
	}

	// a = A⁻¹ (r1, r2)
	a := make([]float64, N+1)
	err = o.Base.Resolve(rhs[:N+1], a)
	if err != nil {
		return
	}

	// derivative of J y along a
	prob := o.h.prob
	dirs := []*direction{newDirection(a[:N], a[N], dofLength(prob, N+1))}
	djy := utl.Alloc(1, N)
	err = prob.nullProducts(o.h.Param, dirs, o.h.y, nil, djy)
	if err != nil {
		return
	}

	// w = A⁻¹ (r3 - dJy/da, r2)
	r := make([]float64, N+1)
	for i := 0; i < N; i++ {
		r[i] = rhs[N+1+i] - djy[0][i]
	}
	r[N] = rhs[N]
	w := make([]float64, N+1)
	err = o.Base.Resolve(r, w)
	if err != nil {
		return
	}
	return o.combine(a, o.e, w, o.q, x)
}

// EnableResolve makes Solve keep the factors and vectors required by Resolve
func (o *BlockFoldSolver) EnableResolve() { o.resolve = true }

// DisableResolve releases factors and vectors
func (o *BlockFoldSolver) DisableResolve() {
	o.resolve = false
	o.e, o.q = nil, nil
	o.Base.DisableResolve()
}

// ResolveIsEnabled tells whether factors are kept after Solve
func (o *BlockFoldSolver) ResolveIsEnabled() bool { return o.resolve }

// combine computes the correction x from the four block solutions
//   (Δu, Δλ) = a + t e    Δy = w - t q    with t = w_λ / q_λ
func (o *BlockFoldSolver) combine(a, e, w, q, x []float64) (err error) {
	N := o.h.N
	if q[N] == 0 {
		return chk.Err("%s: singular bordered system: zero pivot", o.Name())
	}
	t := w[N] / q[N]
	for i := 0; i <= N; i++ {
		x[i] = a[i] + t*e[i]
	}
	for i := 0; i < N; i++ {
		x[N+1+i] = w[i] - t*q[i]
	}
	return
}

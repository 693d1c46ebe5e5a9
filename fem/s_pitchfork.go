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

// BlockPitchforkSolver solves the linear system of the pitchfork-augmented problem by block
// elimination. Only A = [[J, ψ], [ψᵀ, 0]] is factorised (by Base)
type BlockPitchforkSolver struct {
	Base    lsol.Solver       // solver of the bordered system
	h       *PitchforkHandler // handler
	resolve bool              // keep factors and vectors after Solve
	g       []float64         // [N+1] A⁻¹ (dR/dλ, 0); nil if not available
	hv      []float64         // [N+1] A⁻¹ (dJy/d(g,-1), 0)
}

// NewBlockPitchforkSolver returns a new block solver
func NewBlockPitchforkSolver(h *PitchforkHandler, base lsol.Solver) *BlockPitchforkSolver {
	return &BlockPitchforkSolver{Base: base, h: h}
}

// Name returns the name of the solver
func (o *BlockPitchforkSolver) Name() string { return "block-pitchfork" }

// Solve solves the pitchfork-augmented system
//  Input:
//   sys -- the problem with the pitchfork handler in full mode
//  Output:
//   x -- [2N+2] Newton correction of (u, σ, y, λ)
func (o *BlockPitchforkSolver) Solve(sys lsol.System, x []float64) (err error) {

	// check
	N := o.h.N
	if err = checkSize(o.Name(), "solution vector", x, 2*N+2); err != nil {
		return
	}
	o.g, o.hv = nil, nil

	// block mode; keep base factors until done
	o.Base.EnableResolve()
	o.h.SolveBlockSystem()
	defer func() {
		o.h.SolveFullSystem()
		if !o.resolve || err != nil {
			o.Base.DisableResolve()
			o.g, o.hv = nil, nil
		}
	}()

	// a = A⁻¹ (f1, fs)
	a := make([]float64, N+1)
	err = o.Base.Solve(sys, a)
	if err != nil {
		return
	}

	// g = A⁻¹ (dR/dλ, 0)
	prob := o.h.prob
	rhs := make([]float64, N+1)
	err = prob.DerivativeWrtParameter(o.h.Param, rhs[:N])
	if err != nil {
		return
	}
	g := make([]float64, N+1)
	err = o.Base.Resolve(rhs, g)
	if err != nil {
		return
	}

	// J y and its derivatives along (a, 0) and (g, -1)
	L := math.Max(dofLength(prob, N), math.Abs(o.h.Param.Value()))
	dirs := []*direction{newDirection(a[:N], 0, L), newDirection(g[:N], -1, L)}
	jy := make([]float64, N)
	djy := utl.Alloc(len(dirs), N)
	err = prob.nullProducts(o.h.Param, dirs, o.h.y, jy, djy)
	if err != nil {
		return
	}

	// w = A⁻¹ (-J y - D1, fn) and h = A⁻¹ (D2, 0)
	w := make([]float64, N+1)
	hv := make([]float64, N+1)
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
	err = o.Base.Resolve(rhs, hv)
	if err != nil {
		return
	}

	// correction
	err = o.combine(a, g, w, hv, x)
	if err != nil {
		return
	}
	sys.SetSignOfJacobian(int(math.Copysign(1, hv[N])))
	if o.resolve {
		o.g, o.hv = g, hv
	}
	return
}

// Resolve solves the pitchfork-augmented system with a new right-hand side, reusing the factors
// and vectors stored by the last Solve
//  Input:
//   rhs -- [2N+2] right-hand side corresponding to (u, σ, y, λ)
//  Output:
//   x -- [2N+2] solution
func (o *BlockPitchforkSolver) Resolve(rhs, x []float64) (err error) {

	// check
	if o.g == nil {
		return fmt.Errorf("%s: cannot resolve without a previous solve with resolve enabled: %w", o.Name(), ErrPrecondition)
	}
	N := o.h.N
	if err = checkSize(o.Name(), "right-hand side", rhs, 2*N+2); err != nil {
		return
	}
	if err = checkSize(o.Name(), "solution vector", x, 2*N+2); err != nil {
		return
	}

	// a = A⁻¹ (r1, rs)
	a := make([]float64, N+1)
	err = o.Base.Resolve(rhs[:N+1], a)
	if err != nil {
		return
	}

	// derivative of J y along (a, 0)
	prob := o.h.prob
	L := math.Max(dofLength(prob, N), math.Abs(o.h.Param.Value()))
	dirs := []*direction{newDirection(a[:N], 0, L)}
	djy := utl.Alloc(1, N)
	err = prob.nullProducts(o.h.Param, dirs, o.h.y, nil, djy)
	if err != nil {
		return
	}

	// w = A⁻¹ (r3 - D1, rn)
	r := make([]float64, N+1)
	for i := 0; i < N; i++ {
		r[i] = rhs[N+1+i] - djy[0][i]
	}
	r[N] = rhs[2*N+1]
	w := make([]float64, N+1)
	err = o.Base.Resolve(r, w)
	if err != nil {
		return
	}
	return o.combine(a, o.g, w, o.hv, x)
}

// EnableResolve makes Solve keep the factors and vectors required by Resolve
func (o *BlockPitchforkSolver) EnableResolve() { o.resolve = true }

// DisableResolve releases factors and vectors
func (o *BlockPitchforkSolver) DisableResolve() {
	o.resolve = false
	o.g, o.hv = nil, nil
	o.Base.DisableResolve()
}

// ResolveIsEnabled tells whether factors are kept after Solve
func (o *BlockPitchforkSolver) ResolveIsEnabled() bool { return o.resolve }

// combine computes the correction x from the four block solutions
//   Δλ = -w_σ / h_σ    (Δu, Δσ) = a - Δλ g    Δy = w_u + Δλ h_u
func (o *BlockPitchforkSolver) combine(a, g, w, hv, x []float64) (err error) {
	N := o.h.N
	if hv[N] == 0 {
		return chk.Err("%s: singular bordered system: zero pivot", o.Name())
	}
	dlam := -w[N] / hv[N]
	for i := 0; i <= N; i++ {
		x[i] = a[i] - dlam*g[i]
	}
	for i := 0; i < N; i++ {
		x[N+1+i] = w[i] + dlam*hv[i]
	}
	x[2*N+1] = dlam
	return
}

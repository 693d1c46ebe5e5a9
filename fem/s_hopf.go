// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"
	"math"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// BlockHopfSolver solves the linear system of the Hopf-augmented problem by block elimination.
// Base factorises the original Jacobian J (standard mode) and Complex factorises the bordered
// complex matrix K (complex mode); see HopfHandler
type BlockHopfSolver struct {
	Base    lsol.Solver  // solver of the original system
	Complex lsol.Solver  // solver of the complex system
	h       *HopfHandler // handler
	resolve bool         // keep factors and vectors after Solve
	g       []float64    // [N] J⁻¹ dR/dλ; nil if not available
	q       []float64    // [2N+2] K⁻¹ (dP/d(g,-1), 0, 0)
}

// NewBlockHopfSolver returns a new block solver. The solver of the complex system is a new
// instance of the same kind as base
func NewBlockHopfSolver(h *HopfHandler, base lsol.Solver) (o *BlockHopfSolver, err error) {
	o = &BlockHopfSolver{Base: base, h: h}
	o.Complex, err = lsol.Get(base.Name(), &h.prob.LsData)
	if err != nil {
		return nil, chk.Err("cannot allocate solver of complex system:\n%v", err)
	}
	return
}

// Name returns the name of the solver
func (o *BlockHopfSolver) Name() string { return "block-hopf" }

// Solve solves the Hopf-augmented system
//  Input:
//   sys -- the problem with the Hopf handler in full mode
//  Output:
//   x -- [3N+2] Newton correction of (u, φ, ψ, λ, ω)
func (o *BlockHopfSolver) Solve(sys lsol.System, x []float64) (err error) {
	return o.solve(sys, x, nil, nil)
}

// SolveForTwoRhs solves the Hopf-augmented system for the assembled right-hand side and for rhs2,
// sharing the factorisations and the element loop computing the directional derivatives
//  Input:
//   sys  -- the problem with the Hopf handler in full mode
//   rhs2 -- [3N+2] second right-hand side
//  Output:
//   x  -- [3N+2] Newton correction
//   x2 -- [3N+2] solution corresponding to rhs2
func (o *BlockHopfSolver) SolveForTwoRhs(sys lsol.System, x, rhs2, x2 []float64) (err error) {
	n := 3*o.h.N + 2
	if err = checkSize(o.Name(), "second right-hand side", rhs2, n); err != nil {
		return
	}
	if err = checkSize(o.Name(), "second solution vector", x2, n); err != nil {
		return
	}
	return o.solve(sys, x, rhs2, x2)
}

// Resolve solves the Hopf-augmented system with a new right-hand side, reusing the factors and
// vectors stored by the last Solve
//  Input:
//   rhs -- [3N+2] right-hand side corresponding to (u, φ, ψ, λ, ω)
//  Output:
//   x -- [3N+2] solution
func (o *BlockHopfSolver) Resolve(rhs, x []float64) (err error) {

	// check
	if o.g == nil {
		return fmt.Errorf("%s: cannot resolve without a previous solve with resolve enabled: %w", o.Name(), ErrPrecondition)
	}
	N := o.h.N
	if err = checkSize(o.Name(), "right-hand side", rhs, 3*N+2); err != nil {
		return
	}
	if err = checkSize(o.Name(), "solution vector", x, 3*N+2); err != nil {
		return
	}

	// a = J⁻¹ r1
	a := make([]float64, N)
	err = o.Base.Resolve(rhs[:N], a)
	if err != nil {
		return
	}

	// derivative of complex residuals along (a, 0)
	P := utl.Alloc(1, 2*N)
	err = o.complexProducts([]*direction{newDirection(a, 0, o.dofLength())}, P)
	if err != nil {
		return
	}

	// b = K⁻¹ (r2, r3, rλ, rω) and p = K⁻¹ (P, 0, 0)
	b := make([]float64, 2*N+2)
	err = o.Complex.Resolve(rhs[N:], b)
	if err != nil {
		return
	}
	p := make([]float64, 2*N+2)
	err = o.Complex.Resolve(bordered(P[0]), p)
	if err != nil {
		return
	}
	return o.combine(a, o.g, b, p, o.q, x)
}

// EnableResolve makes Solve keep the factors and vectors required by Resolve
func (o *BlockHopfSolver) EnableResolve() { o.resolve = true }

// DisableResolve releases factors and vectors
func (o *BlockHopfSolver) DisableResolve() {
	o.resolve = false
	o.g, o.q = nil, nil
	o.Base.DisableResolve()
	o.Complex.DisableResolve()
}

// ResolveIsEnabled tells whether factors are kept after Solve
func (o *BlockHopfSolver) ResolveIsEnabled() bool { return o.resolve }

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// solve implements Solve and SolveForTwoRhs; rhs2 and x2 may be nil
func (o *BlockHopfSolver) solve(sys lsol.System, x, rhs2, x2 []float64) (err error) {

	// check
	N := o.h.N
	if err = checkSize(o.Name(), "solution vector", x, 3*N+2); err != nil {
		return
	}
	o.g, o.q = nil, nil

	// keep factors until done; the handler returns to full mode on exit
	o.Base.EnableResolve()
	o.Complex.EnableResolve()
	defer func() {
		o.h.SolveFullSystem()
		if !o.resolve || err != nil {
			o.Base.DisableResolve()
			o.Complex.DisableResolve()
			o.g, o.q = nil, nil
		}
	}()

	// standard mode: a = J⁻¹ f1
	o.h.SolveStandardSystem()
	a := make([]float64, N)
	err = o.Base.Solve(sys, a)
	if err != nil {
		return
	}

	// g = J⁻¹ dR/dλ
	prob := o.h.prob
	rlam := make([]float64, N)
	err = prob.DerivativeWrtParameter(o.h.Param, rlam)
	if err != nil {
		return
	}
	g := make([]float64, N)
	err = o.Base.Resolve(rlam, g)
	if err != nil {
		return
	}

	// a2 = J⁻¹ r1
	var a2 []float64
	if rhs2 != nil {
		a2 = make([]float64, N)
		err = o.Base.Resolve(rhs2[:N], a2)
		if err != nil {
			return
		}
	}

	// derivatives of complex residuals along (a, 0), (g, -1) and (a2, 0)
	L := o.dofLength()
	dirs := []*direction{newDirection(a, 0, L), newDirection(g, -1, L)}
	if rhs2 != nil {
		dirs = append(dirs, newDirection(a2, 0, L))
	}
	P := utl.Alloc(len(dirs), 2*N)
	err = o.complexProducts(dirs, P)
	if err != nil {
		return
	}

	// complex mode: b = K⁻¹ (f2, f3, fλ, fω)
	o.h.SolveComplexSystem()
	b := make([]float64, 2*N+2)
	err = o.Complex.Solve(sys, b)
	if err != nil {
		return
	}

	// p = K⁻¹ (D1, 0, 0) and q = K⁻¹ (D2, 0, 0)
	p := make([]float64, 2*N+2)
	q := make([]float64, 2*N+2)
	err = o.Complex.Resolve(bordered(P[0]), p)
	if err != nil {
		return
	}
	err = o.Complex.Resolve(bordered(P[1]), q)
	if err != nil {
		return
	}

	// correction
	err = o.combine(a, g, b, p, q, x)
	if err != nil {
		return
	}

	// second right-hand side
	if rhs2 != nil {
		b2 := make([]float64, 2*N+2)
		err = o.Complex.Resolve(rhs2[N:], b2)
		if err != nil {
			return
		}
		p2 := make([]float64, 2*N+2)
		err = o.Complex.Resolve(bordered(P[2]), p2)
		if err != nil {
			return
		}
		err = o.combine(a2, g, b2, p2, q, x2)
		if err != nil {
			return
		}
	}
	sys.SetSignOfJacobian(int(math.Copysign(1, q[2*N+1])))
	if o.resolve {
		o.g, o.q = g, q
	}
	return
}

// combine computes the correction x from the block solutions
//   z = b - p    Δλ = -z_s / q_s    Δω = z_ω + Δλ q_ω
//   Δu = a - Δλ g    (Δφ, Δψ) = z + Δλ q
//  where the subscripts ω and s denote the ω and slack components of the complex system
func (o *BlockHopfSolver) combine(a, g, b, p, q, x []float64) (err error) {
	N := o.h.N
	s := 2*N + 1
	if q[s] == 0 {
		return chk.Err("%s: singular bordered system: zero pivot", o.Name())
	}
	dlam := -(b[s] - p[s]) / q[s]
	for i := 0; i < N; i++ {
		x[i] = a[i] - dlam*g[i]
	}
	for i := 0; i < 2*N; i++ {
		x[N+i] = b[i] - p[i] + dlam*q[i]
	}
	x[3*N] = dlam
	x[3*N+1] = b[2*N] - p[2*N] + dlam*q[2*N]
	return
}

// complexProducts computes the directional derivatives of (J φ + ω M ψ, J ψ - ω M φ)
//  Output:
//   P -- [ndirs][2N]
func (o *BlockHopfSolver) complexProducts(dirs []*direction, P [][]float64) (err error) {
	for k := range P {
		for i := range P[k] {
			P[k][i] = 0
		}
	}
	h := o.h
	N := h.N
	w := h.Omega()
	return h.prob.jacobianDerivs(h.Param, true, dirs, func(e ele.Element, J, M [][]float64, dJ, dM [][][]float64) {
		raw := e.Ndof()
		for i := 0; i < raw; i++ {
			I := e.EqnNumber(i)
			for j := 0; j < raw; j++ {
				c := e.EqnNumber(j)
				ph, ps := h.phi(c), h.psi(c)
				for k := range dirs {
					P[k][I] += dJ[k][i][j]*ph + w*dM[k][i][j]*ps
					P[k][N+I] += dJ[k][i][j]*ps - w*dM[k][i][j]*ph
				}
			}
		}
	})
}

// bordered returns a copy of the complex residuals v extended with zero normalisation rows
func bordered(v []float64) (res []float64) {
	res = make([]float64, len(v)+2)
	copy(res, v)
	return
}

// dofLength returns the largest absolute value of u and λ
func (o *BlockHopfSolver) dofLength() float64 {
	return math.Max(dofLength(o.h.prob, o.h.N), math.Abs(o.h.Param.Value()))
}

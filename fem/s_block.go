// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"
	"math"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/floats"
)

// direction holds a direction along which the element Jacobians are differentiated
type direction struct {
	du   []float64 // [N] components corresponding to the original dofs
	dlam float64   // component corresponding to the parameter
	mult float64   // finite difference step
}

// newDirection returns a new direction with a step proportional to the size of the dofs:
//   mult = (dofLength / max|d| + FdStep) FdStep
//  Note: the step is not adapted; poorly scaled problems may suffer from cancellation
func newDirection(du []float64, dlam, dofLength float64) (o *direction) {
	o = &direction{du: du, dlam: dlam, mult: FdStep}
	l := math.Max(floats.Norm(du, math.Inf(1)), math.Abs(dlam))
	if l > 0 {
		o.mult = (dofLength/l + FdStep) * FdStep
	}
	return
}

// jacobianDerivs loops over all elements and computes, for each direction d, the directional
// derivatives of the element Jacobian (and mass matrix) by forward differences:
//   dJ = [J(u + m du, λ + m dλ) - J(u, λ)] / m
//  The original dofs and the parameter are perturbed in place and restored afterwards.
//  fcn receives the unperturbed matrices and the derivatives; M and dM are nil if !withMass
func (o *Problem) jacobianDerivs(p *ele.Parameter, withMass bool, dirs []*direction,
	fcn func(e ele.Element, J, M [][]float64, dJ, dM [][][]float64)) (err error) {

	sol := o.Sol
	for _, e := range o.Elems {

		// unperturbed matrices
		raw := e.Ndof()
		res := make([]float64, raw)
		J := utl.Alloc(raw, raw)
		var M [][]float64
		if withMass {
			M = utl.Alloc(raw, raw)
			err = e.JacobianAndMass(res, J, M, sol)
		} else {
			err = e.Jacobian(res, J, sol)
		}
		if err != nil {
			return
		}

		// perturbed matrices
		dJ := make([][][]float64, len(dirs))
		dM := make([][][]float64, len(dirs))
		idx := make([]int, raw+1)
		delta := make([]float64, raw+1)
		for k, d := range dirs {
			dJ[k] = utl.Alloc(raw, raw)
			if withMass {
				dM[k] = utl.Alloc(raw, raw)
			}
			for i := 0; i < raw; i++ {
				idx[i] = e.EqnNumber(i)
				delta[i] = d.mult * d.du[idx[i]]
			}
			n := raw
			if d.dlam != 0 {
				idx[raw] = p.Index()
				delta[raw] = d.mult * d.dlam
				n++
			}
			err = o.perturb(idx[:n], delta[:n], func() error {
				if withMass {
					return e.JacobianAndMass(res, dJ[k], dM[k], sol)
				}
				return e.Jacobian(res, dJ[k], sol)
			})
			if err != nil {
				return
			}
			for i := 0; i < raw; i++ {
				for j := 0; j < raw; j++ {
					dJ[k][i][j] = (dJ[k][i][j] - J[i][j]) / d.mult
					if withMass {
						dM[k][i][j] = (dM[k][i][j] - M[i][j]) / d.mult
					}
				}
			}
		}
		if !withMass {
			dM = nil
		}
		fcn(e, J, M, dJ, dM)
	}
	return
}

// nullProducts computes J y and the directional derivatives of J y along each direction
//  Input:
//   y -- function returning component I of the null vector
//  Output:
//   jy  -- [N] J y; may be nil
//   djy -- [ndirs][N] derivatives of J y
func (o *Problem) nullProducts(p *ele.Parameter, dirs []*direction, y func(I int) float64, jy []float64, djy [][]float64) (err error) {
	for i := range jy {
		jy[i] = 0
	}
	for k := range djy {
		for i := range djy[k] {
			djy[k][i] = 0
		}
	}
	return o.jacobianDerivs(p, false, dirs, func(e ele.Element, J, M [][]float64, dJ, dM [][][]float64) {
		raw := e.Ndof()
		for i := 0; i < raw; i++ {
			I := e.EqnNumber(i)
			for j := 0; j < raw; j++ {
				yj := y(e.EqnNumber(j))
				if jy != nil {
					jy[I] += J[i][j] * yj
				}
				for k := range dirs {
					djy[k][I] += dJ[k][i][j] * yj
				}
			}
		}
	})
}

// initialVector solves J x = rhs using the linear solver of the problem with the pass-through
// handler; if rhs is nil, dR/dλ is used
func initialVector(prob *Problem, param *ele.Parameter, rhs, x []float64) (err error) {
	if rhs == nil {
		rhs = make([]float64, prob.Sol.Norig())
		err = prob.DerivativeWrtParameter(param, rhs)
		if err != nil {
			return
		}
	}
	ls := prob.LinSol
	if !ls.ResolveIsEnabled() {
		ls.EnableResolve()
		defer ls.DisableResolve()
	}
	tmp := make([]float64, prob.Ndof())
	err = ls.Solve(prob, tmp)
	if err != nil {
		return
	}
	return ls.Resolve(rhs, x)
}

// dofLength returns the largest absolute value of the first n dofs
func dofLength(prob *Problem, n int) float64 {
	return floats.Norm(prob.Sol.Values()[:n], math.Inf(1))
}

// checkSize checks the size of a vector passed to a block solver
func checkSize(solver, what string, v []float64, n int) error {
	if len(v) != n {
		return fmt.Errorf("%w: %s: size of %s (%d) must be equal to %d", ErrDimension, solver, what, len(v), n)
	}
	return nil
}

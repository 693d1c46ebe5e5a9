// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lumped

import (
	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
)

// Brusselator implements the kinetics of the Brusselator model with B = λ
//
//   r = { A - (B+1) u + u² v ,  B u - u² v }      M = ρ I
//
//  The steady state (A, B/A) loses stability through a Hopf bifurcation at B = 1 + A²
type Brusselator struct {
	id  int            // element Id
	Eqs [2]int         // equation numbers of u and v
	A   float64        // constant A
	Rho float64        // mass coefficient
	Lam *ele.Parameter // parameter B
}

// register element
func init() {
	ele.SetAllocator("brusselator", func(id int, edat *inp.ElemData, params map[string]*ele.Parameter) (ele.Element, error) {
		eqs, err := ele.GetEqs(edat, 2)
		if err != nil {
			return nil, err
		}
		if eqs[0] < 0 || eqs[1] < 0 || eqs[0] == eqs[1] {
			return nil, chk.Err("brusselator needs two distinct free dofs. eqs=%v", eqs)
		}
		lam, err := ele.GetParam(edat, params)
		if err != nil {
			return nil, err
		}
		if lam == nil {
			return nil, chk.Err("brusselator needs a parameter (B)")
		}
		return NewBrusselator(id, eqs[0], eqs[1], ele.GetPrm(edat, "a", 2), ele.GetPrm(edat, "rho", 1), lam), nil
	})
}

// NewBrusselator returns a new Brusselator element
func NewBrusselator(id, equ, eqv int, a, rho float64, lam *ele.Parameter) *Brusselator {
	return &Brusselator{id: id, Eqs: [2]int{equ, eqv}, A: a, Rho: rho, Lam: lam}
}

// Id returns the element Id
func (o *Brusselator) Id() int { return o.id }

// Ndof returns the number of local dofs
func (o *Brusselator) Ndof() int { return 2 }

// EqnNumber returns the global equation number of local dof i
func (o *Brusselator) EqnNumber(i int) int { return o.Eqs[i] }

// Residuals computes local residuals
func (o *Brusselator) Residuals(res []float64, sol *ele.Solution) (err error) {
	u, v := sol.Dof(o.Eqs[0]), sol.Dof(o.Eqs[1])
	b := o.Lam.Value()
	res[0] = o.A - (b+1.0)*u + u*u*v
	res[1] = b*u - u*u*v
	return
}

// Jacobian computes local residuals and Jacobian
func (o *Brusselator) Jacobian(res []float64, jac [][]float64, sol *ele.Solution) (err error) {
	o.Residuals(res, sol)
	u, v := sol.Dof(o.Eqs[0]), sol.Dof(o.Eqs[1])
	b := o.Lam.Value()
	jac[0][0], jac[0][1] = -(b+1.0)+2.0*u*v, u*u
	jac[1][0], jac[1][1] = b-2.0*u*v, -u*u
	return
}

// JacobianAndMass computes local residuals, Jacobian and mass matrix
func (o *Brusselator) JacobianAndMass(res []float64, jac, mass [][]float64, sol *ele.Solution) (err error) {
	o.Jacobian(res, jac, sol)
	mass[0][0], mass[0][1] = o.Rho, 0
	mass[1][0], mass[1][1] = 0, o.Rho
	return
}

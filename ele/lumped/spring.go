// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package lumped implements point (lumped) elements: springs, reactions and kinetics
package lumped

import (
	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
)

// Spring implements a linear spring connecting two dofs
//
//   r = k (ua - ub) {1, -1}      M = ρ [[1/3, 1/6], [1/6, 1/3]]
//
// The residual follows the static convention R = K u - f, so k > 0 stiffens. Kinetics elements
// such as Brusselator use the rate convention R = du/dt = f; there, diffusive coupling needs k < 0
type Spring struct {
	id  int     // element Id
	Eqs [2]int  // equation numbers
	K   float64 // stiffness
	Rho float64 // mass coefficient
}

// register element
func init() {
	ele.SetAllocator("spring", func(id int, edat *inp.ElemData, params map[string]*ele.Parameter) (ele.Element, error) {
		eqs, err := ele.GetEqs(edat, 2)
		if err != nil {
			return nil, err
		}
		if eqs[0] < 0 || eqs[1] < 0 || eqs[0] == eqs[1] {
			return nil, chk.Err("spring needs two distinct free dofs. eqs=%v", eqs)
		}
		return NewSpring(id, eqs[0], eqs[1], ele.GetPrm(edat, "k", 1), ele.GetPrm(edat, "rho", 0)), nil
	})
}

// NewSpring returns a new spring
func NewSpring(id, eqa, eqb int, k, rho float64) *Spring {
	return &Spring{id: id, Eqs: [2]int{eqa, eqb}, K: k, Rho: rho}
}

// Id returns the element Id
func (o *Spring) Id() int { return o.id }

// Ndof returns the number of local dofs
func (o *Spring) Ndof() int { return 2 }

// EqnNumber returns the global equation number of local dof i
func (o *Spring) EqnNumber(i int) int { return o.Eqs[i] }

// Residuals computes local residuals
func (o *Spring) Residuals(res []float64, sol *ele.Solution) (err error) {
	f := o.K * (sol.Dof(o.Eqs[0]) - sol.Dof(o.Eqs[1]))
	res[0], res[1] = f, -f
	return
}

// Jacobian computes local residuals and Jacobian
func (o *Spring) Jacobian(res []float64, jac [][]float64, sol *ele.Solution) (err error) {
	o.Residuals(res, sol)
	jac[0][0], jac[0][1] = o.K, -o.K
	jac[1][0], jac[1][1] = -o.K, o.K
	return
}

// JacobianAndMass computes local residuals, Jacobian and mass matrix
func (o *Spring) JacobianAndMass(res []float64, jac, mass [][]float64, sol *ele.Solution) (err error) {
	o.Jacobian(res, jac, sol)
	mass[0][0], mass[0][1] = o.Rho/3.0, o.Rho/6.0
	mass[1][0], mass[1][1] = o.Rho/6.0, o.Rho/3.0
	return
}

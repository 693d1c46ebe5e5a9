// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lumped

import (
	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
)

// Reaction implements a point source acting on a single dof u with polynomial dependence on u
// and on a parameter λ
//
//   r = c0 + c1 u + c2 u² + c3 u³ + λ (d0 + d1 u) + d2 λ²
//
//  If Cached is set, λ is read from a copy refreshed by RefreshParams instead of the parameter
type Reaction struct {
	id     int            // element Id
	Eq     int            // equation number
	C      [4]float64     // polynomial coefficients in u
	D      [3]float64     // coefficients of parameter terms
	Rho    float64        // lumped mass
	Lam    *ele.Parameter // parameter; may be nil
	Cached bool           // use cached λ
	lamc   float64        // cached λ
}

// register element
func init() {
	ele.SetAllocator("reaction", func(id int, edat *inp.ElemData, params map[string]*ele.Parameter) (ele.Element, error) {
		eqs, err := ele.GetEqs(edat, 1)
		if err != nil {
			return nil, err
		}
		if eqs[0] < 0 {
			return nil, chk.Err("reaction element needs a free dof. eq=%d", eqs[0])
		}
		lam, err := ele.GetParam(edat, params)
		if err != nil {
			return nil, err
		}
		o := NewReaction(id, eqs[0], lam)
		for i, key := range []string{"c0", "c1", "c2", "c3"} {
			o.C[i] = ele.GetPrm(edat, key, 0)
		}
		for i, key := range []string{"d0", "d1", "d2"} {
			o.D[i] = ele.GetPrm(edat, key, 0)
		}
		o.Rho = ele.GetPrm(edat, "rho", 0)
		o.Cached = edat.Cache
		o.RefreshParams()
		return o, nil
	})
}

// NewReaction returns a new reaction element with zero coefficients
func NewReaction(id, eq int, lam *ele.Parameter) (o *Reaction) {
	o = &Reaction{id: id, Eq: eq, Lam: lam}
	o.RefreshParams()
	return
}

// Id returns the element Id
func (o *Reaction) Id() int { return o.id }

// Ndof returns the number of local dofs
func (o *Reaction) Ndof() int { return 1 }

// EqnNumber returns the global equation number of local dof i
func (o *Reaction) EqnNumber(i int) int { return o.Eq }

// RefreshParams updates the cached parameter
func (o *Reaction) RefreshParams() {
	if o.Lam != nil {
		o.lamc = o.Lam.Value()
	}
}

// Residuals computes local residuals
func (o *Reaction) Residuals(res []float64, sol *ele.Solution) (err error) {
	u := sol.Dof(o.Eq)
	λ := o.lambda()
	res[0] = o.C[0] + u*(o.C[1]+u*(o.C[2]+u*o.C[3])) + λ*(o.D[0]+o.D[1]*u) + o.D[2]*λ*λ
	return
}

// Jacobian computes local residuals and Jacobian
func (o *Reaction) Jacobian(res []float64, jac [][]float64, sol *ele.Solution) (err error) {
	o.Residuals(res, sol)
	u := sol.Dof(o.Eq)
	jac[0][0] = o.C[1] + u*(2.0*o.C[2]+3.0*o.C[3]*u) + o.lambda()*o.D[1]
	return
}

// JacobianAndMass computes local residuals, Jacobian and mass matrix
func (o *Reaction) JacobianAndMass(res []float64, jac, mass [][]float64, sol *ele.Solution) (err error) {
	o.Jacobian(res, jac, sol)
	mass[0][0] = o.Rho
	return
}

// lambda returns the value of the parameter
func (o *Reaction) lambda() float64 {
	if o.Lam == nil {
		return 0
	}
	if o.Cached {
		return o.lamc
	}
	return o.Lam.Value()
}

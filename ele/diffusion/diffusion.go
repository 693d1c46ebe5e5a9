// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package diffusion implements elements for diffusion-reaction problems
package diffusion

import (
	"math"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
)

// Diffusion implements a 2-node (linear) element for the steady Bratu-Gelfand problem
//
//     du       d  ⎛  du ⎞
//   ρ ── - ─── ⎜k ── ⎟ = λ exp(u)      on   [xa, xb]
//     dt     dx ⎝  dx ⎠
//
//  Nodes with negative equation numbers are prescribed (u = 0) and are not local dofs
type Diffusion struct {

	// basic data
	id   int            // element Id
	X    [2]float64     // nodal coordinates
	Umap [2]int         // equation numbers of nodes; -1 => prescribed
	Loc  []int          // local dof => node
	K    float64        // conductivity
	Rho  float64        // coefficient of du/dt (mass matrix)
	Lam  *ele.Parameter // load multiplier

	// scratchpad
	S []float64 // [2] shape functions @ ip
	G []float64 // [2] derivatives of shape functions @ ip
}

// integration points: 2-point Gauss rule {ξ, weight}
var ips = [][2]float64{{-1.0 / math.Sqrt(3.0), 1}, {1.0 / math.Sqrt(3.0), 1}}

// initialisation ///////////////////////////////////////////////////////////////////////////////////

// register element
func init() {

	// element allocator
	ele.SetAllocator("bratu", func(id int, edat *inp.ElemData, params map[string]*ele.Parameter) (ele.Element, error) {

		// basic data
		var o Diffusion
		o.id = id
		if len(edat.Eqs) != 2 {
			return nil, chk.Err("bratu element needs 2 equation numbers; %d were given", len(edat.Eqs))
		}
		o.Umap = [2]int{edat.Eqs[0], edat.Eqs[1]}
		for m := 0; m < 2; m++ {
			if o.Umap[m] >= 0 {
				o.Loc = append(o.Loc, m)
			}
		}
		if len(o.Loc) == 0 {
			return nil, chk.Err("bratu element has no free dofs")
		}

		// geometry and constants
		o.X[0], o.X[1] = edat.Prms["xa"], edat.Prms["xb"]
		if o.X[1] <= o.X[0] {
			return nil, chk.Err("bratu element needs xb > xa. xa=%g, xb=%g", o.X[0], o.X[1])
		}
		o.K = ele.GetPrm(edat, "k", 1)
		o.Rho = ele.GetPrm(edat, "rho", 1)

		// parameter
		o.Lam = params[edat.Param]
		if o.Lam == nil {
			return nil, chk.Err("bratu element needs a parameter; %q was given", edat.Param)
		}

		// scratchpad
		o.S = make([]float64, 2)
		o.G = make([]float64, 2)
		return &o, nil
	})
}

// implementation ///////////////////////////////////////////////////////////////////////////////////

// Id returns the element Id
func (o *Diffusion) Id() int { return o.id }

// Ndof returns the number of local dofs
func (o *Diffusion) Ndof() int { return len(o.Loc) }

// EqnNumber returns the global equation number of local dof i
func (o *Diffusion) EqnNumber(i int) int { return o.Umap[o.Loc[i]] }

// Residuals computes local residuals
func (o *Diffusion) Residuals(res []float64, sol *ele.Solution) (err error) {
	return o.compute(res, nil, nil, sol)
}

// Jacobian computes local residuals and Jacobian
func (o *Diffusion) Jacobian(res []float64, jac [][]float64, sol *ele.Solution) (err error) {
	return o.compute(res, jac, nil, sol)
}

// JacobianAndMass computes local residuals, Jacobian and mass matrix
func (o *Diffusion) JacobianAndMass(res []float64, jac, mass [][]float64, sol *ele.Solution) (err error) {
	return o.compute(res, jac, mass, sol)
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// compute performs the integration over the element; jac and mass may be nil
func (o *Diffusion) compute(res []float64, jac, mass [][]float64, sol *ele.Solution) (err error) {

	// clear
	nd := len(o.Loc)
	for i := 0; i < nd; i++ {
		res[i] = 0
		for j := 0; j < nd; j++ {
			if jac != nil {
				jac[i][j] = 0
			}
			if mass != nil {
				mass[i][j] = 0
			}
		}
	}

	// nodal values
	var ul [2]float64
	for m := 0; m < 2; m++ {
		if o.Umap[m] >= 0 {
			ul[m] = sol.Dof(o.Umap[m])
		}
	}

	// for each integration point
	λ := o.Lam.Value()
	L := o.X[1] - o.X[0]
	J := L / 2.0
	var u, dudx, src float64
	for _, ip := range ips {

		// shape functions and variables @ ip
		ξ := ip[0]
		o.S[0], o.S[1] = (1.0-ξ)/2.0, (1.0+ξ)/2.0
		o.G[0], o.G[1] = -1.0/L, 1.0/L
		u = o.S[0]*ul[0] + o.S[1]*ul[1]
		dudx = o.G[0]*ul[0] + o.G[1]*ul[1]
		src = λ * math.Exp(u)
		coef := J * ip[1]
		if math.IsInf(src, 0) || math.IsNaN(src) {
			return chk.Err("bratu element %d: source term overflow with u=%g and λ=%g", o.id, u, λ)
		}

		// residuals and matrices
		for i, m := range o.Loc {
			res[i] += coef * (o.K*dudx*o.G[m] - src*o.S[m])
			for j, n := range o.Loc {
				if jac != nil {
					jac[i][j] += coef * (o.K*o.G[m]*o.G[n] - src*o.S[m]*o.S[n])
				}
				if mass != nil {
					mass[i][j] += coef * o.Rho * o.S[m] * o.S[n]
				}
			}
		}
	}
	return
}

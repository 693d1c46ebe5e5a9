// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/floats"
)

// FoldHandler implements the handler of the augmented system locating fold (turning) points
//
//        R(u, λ) = 0        global dofs:  u  [0, N)
//        Φ · y   = 1                      λ  N
//   J(u, λ) y    = 0                      y  [N+1, 2N+1)
//
//  In block mode, only u and λ are unknowns and the system matrix is the bordered Jacobian
//  A = [[J, dR/dλ], [Φᵀ, 0]] used by BlockFoldSolver
type FoldHandler struct {
	prob  *Problem       // the problem
	Param *ele.Parameter // bifurcation parameter
	Phi   []float64      // [N] normalisation vector
	Count []int          // [N] number of elements referencing each dof
	N     int            // number of original dofs
	block bool           // block mode
	nelem float64        // number of elements
}

// NewFoldHandler returns a new fold handler, appending λ and y to the dofs of the problem.
// The initial null vector is the normalised solution of J y = dR/dλ
func NewFoldHandler(prob *Problem, param *ele.Parameter) (o *FoldHandler, err error) {

	// check
	if prob.Sol.Size() != prob.Sol.Norig() {
		return nil, chk.Err("cannot track fold: problem is augmented already")
	}
	if param.Index() >= 0 {
		return nil, chk.Err("cannot track fold: parameter %q is folded already", param.Key)
	}

	// handler
	o = new(FoldHandler)
	o.prob = prob
	o.Param = param
	o.N = prob.Sol.Norig()
	o.nelem = float64(len(prob.Elems))
	o.Count, err = countDofs(prob)
	if err != nil {
		return
	}

	// initial null vector
	y := make([]float64, o.N)
	err = initialVector(prob, param, nil, y)
	if err != nil {
		return nil, chk.Err("cannot compute initial null vector:\n%v", err)
	}
	norm := floats.Norm(y, 2)
	if norm == 0 {
		return nil, chk.Err("cannot track fold: initial null vector is zero")
	}
	floats.Scale(1.0/norm, y)
	o.Phi = append([]float64{}, y...)

	// augment dofs
	param.Fold(prob.Sol)
	prob.Sol.Append(y...)
	return
}

// Name returns the name of the handler
func (o *FoldHandler) Name() string { return "fold" }

// Parameter returns the bifurcation parameter
func (o *FoldHandler) Parameter() *ele.Parameter { return o.Param }

// Eigenfunction returns a copy of the null vector
func (o *FoldHandler) Eigenfunction() [][]float64 {
	y := make([]float64, o.N)
	for I := 0; I < o.N; I++ {
		y[I] = o.y(I)
	}
	return [][]float64{y}
}

// Concurrent returns false: the Jacobian perturbs the shared dofs
func (o *FoldHandler) Concurrent() bool { return false }

// SolveBlockSystem switches to block mode: only u and λ are unknowns
func (o *FoldHandler) SolveBlockSystem() {
	if o.block {
		return
	}
	o.prob.Sol.SetNdof(o.N + 1)
	o.block = true
}

// SolveFullSystem switches to full mode: u, λ and y are unknowns
func (o *FoldHandler) SolveFullSystem() {
	if !o.block {
		return
	}
	o.prob.Sol.SetNdof(2*o.N + 1)
	o.block = false
}

// Free restores the original dofs and unfolds the parameter
func (o *FoldHandler) Free() {
	o.SolveFullSystem()
	o.Param.Unfold()
	o.prob.Sol.Truncate(o.N)
}

// Ndof returns the number of equations of element
func (o *FoldHandler) Ndof(e ele.Element) int {
	if o.block {
		return e.Ndof() + 1
	}
	return 2*e.Ndof() + 1
}

// EqnNumber returns the global equation number of local equation i
func (o *FoldHandler) EqnNumber(e ele.Element, i int) int {
	raw := e.Ndof()
	if i < raw {
		return e.EqnNumber(i)
	}
	if i == raw {
		return o.N
	}
	return o.N + 1 + e.EqnNumber(i-raw-1)
}

// Residuals computes residuals
func (o *FoldHandler) Residuals(e ele.Element, res []float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, nil); err != nil {
			return
		}
	}
	raw := e.Ndof()
	if o.block {
		err = e.Residuals(res[:raw], o.prob.Sol)
		res[raw] = o.normResidual(e)
		return
	}
	jac := utl.Alloc(raw, raw)
	err = e.Jacobian(res[:raw], jac, o.prob.Sol)
	if err != nil {
		return
	}
	res[raw] = o.normResidual(e)
	o.nullResidual(e, jac, res[raw+1:])
	return
}

// Jacobian computes residuals and Jacobian
func (o *FoldHandler) Jacobian(e ele.Element, res []float64, jac [][]float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, jac); err != nil {
			return
		}
	}

	// original residuals and Jacobian
	sol := o.prob.Sol
	raw := e.Ndof()
	zeroMat(jac)
	J := utl.Alloc(raw, raw)
	err = e.Jacobian(res[:raw], J, sol)
	if err != nil {
		return
	}
	res[raw] = o.normResidual(e)
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			jac[i][j] = J[i][j]
		}
	}

	// block mode: bordered Jacobian
	rp := make([]float64, raw)
	if o.block {
		for j := 0; j < raw; j++ {
			I := e.EqnNumber(j)
			jac[raw][j] = o.Phi[I] / float64(o.Count[I])
		}
		return o.prob.perturbParam(o.Param, FdStep, func() error {
			if err := e.Residuals(rp, sol); err != nil {
				return err
			}
			for i := 0; i < raw; i++ {
				jac[i][raw] = (rp[i] - res[i]) / FdStep
			}
			return nil
		})
	}

	// full mode: normalisation row and null vector block
	o.nullResidual(e, J, res[raw+1:])
	for j := 0; j < raw; j++ {
		I := e.EqnNumber(j)
		jac[raw][raw+1+j] = o.Phi[I] / float64(o.Count[I])
	}
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			jac[raw+1+i][raw+1+j] = J[i][j]
		}
	}

	// derivatives of J y with respect to u
	Jp := utl.Alloc(raw, raw)
	jyp := make([]float64, raw)
	for j := 0; j < raw; j++ {
		err = o.prob.perturb([]int{e.EqnNumber(j)}, []float64{FdStep}, func() error {
			if err := e.Jacobian(rp, Jp, sol); err != nil {
				return err
			}
			o.nullResidual(e, Jp, jyp)
			for i := 0; i < raw; i++ {
				jac[raw+1+i][j] = (jyp[i] - res[raw+1+i]) / FdStep
			}
			return nil
		})
		if err != nil {
			return
		}
	}

	// derivatives with respect to the parameter
	return o.prob.perturbParam(o.Param, FdStep, func() error {
		if err := e.Jacobian(rp, Jp, sol); err != nil {
			return err
		}
		o.nullResidual(e, Jp, jyp)
		for i := 0; i < raw; i++ {
			jac[i][raw] = (rp[i] - res[i]) / FdStep
			jac[raw+1+i][raw] = (jyp[i] - res[raw+1+i]) / FdStep
		}
		return nil
	})
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// y returns the component I of the null vector
func (o *FoldHandler) y(I int) float64 { return o.prob.Sol.Dof(o.N + 1 + I) }

// normResidual returns the share of element e in the normalisation equation Φ·y - 1
func (o *FoldHandler) normResidual(e ele.Element) (r float64) {
	for i := 0; i < e.Ndof(); i++ {
		I := e.EqnNumber(i)
		r += o.Phi[I] * o.y(I) / float64(o.Count[I])
	}
	return r - 1.0/o.nelem
}

// nullResidual computes the element part of J y
func (o *FoldHandler) nullResidual(e ele.Element, jac [][]float64, jy []float64) {
	for i := range jy {
		jy[i] = 0
		for j := range jy {
			jy[i] += jac[i][j] * o.y(e.EqnNumber(j))
		}
	}
}

// normValue returns Φ·y
func (o *FoldHandler) normValue() (res float64) {
	for I := 0; I < o.N; I++ {
		res += o.Phi[I] * o.y(I)
	}
	return
}

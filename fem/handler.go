// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gosl/chk"
)

// AssemblyHandler maps the contributions of elements onto the (possibly augmented) global system.
// All requests for the number of dofs, equation numbers, residuals and Jacobians of elements go
// through the active handler
//  Note: res receives R (not -R) and jac receives dR/dy, both with size Ndof(e)
type AssemblyHandler interface {
	Name() string                                                       // name of handler
	Ndof(e ele.Element) int                                             // number of equations of element
	EqnNumber(e ele.Element, i int) int                                 // global equation number of local equation i
	Residuals(e ele.Element, res []float64) (err error)                 // computes residuals
	Jacobian(e ele.Element, res []float64, jac [][]float64) (err error) // computes residuals and Jacobian
	Concurrent() bool                                                   // elements may be computed concurrently
}

// BifurcationHandler defines handlers augmenting the system to track bifurcations
type BifurcationHandler interface {
	AssemblyHandler
	Parameter() *ele.Parameter  // bifurcation parameter
	Eigenfunction() [][]float64 // copy of the null (eigen) vector(s)
	Free()                      // restores the original dofs and unfolds the parameter
}

// PassThrough implements the handler of the original (non-augmented) system
type PassThrough struct {
	prob *Problem
}

// Name returns the name of the handler
func (o *PassThrough) Name() string { return "pass-through" }

// Ndof returns the number of equations of element
func (o *PassThrough) Ndof(e ele.Element) int { return e.Ndof() }

// EqnNumber returns the global equation number of local equation i
func (o *PassThrough) EqnNumber(e ele.Element, i int) int { return e.EqnNumber(i) }

// Residuals computes residuals
func (o *PassThrough) Residuals(e ele.Element, res []float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, nil); err != nil {
			return
		}
	}
	return e.Residuals(res, o.prob.Sol)
}

// Jacobian computes residuals and Jacobian
func (o *PassThrough) Jacobian(e ele.Element, res []float64, jac [][]float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, jac); err != nil {
			return
		}
	}
	return e.Jacobian(res, jac, o.prob.Sol)
}

// Concurrent tells that elements can be computed concurrently
func (o *PassThrough) Concurrent() bool { return true }

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// countDofs returns the number of elements referencing each original dof
func countDofs(prob *Problem) (count []int, err error) {
	count = make([]int, prob.Sol.Norig())
	for _, e := range prob.Elems {
		for i := 0; i < e.Ndof(); i++ {
			count[e.EqnNumber(i)]++
		}
	}
	for I, c := range count {
		if c == 0 {
			return nil, chk.Err("dof %d is not referenced by any element", I)
		}
	}
	return
}

// checkDims checks the sizes of local arrays; jac may be nil
func checkDims(h AssemblyHandler, e ele.Element, res []float64, jac [][]float64) error {
	n := h.Ndof(e)
	if len(res) != n {
		return fmt.Errorf("%w: %s handler: residuals of element %d must have size %d; got %d", ErrDimension, h.Name(), e.Id(), n, len(res))
	}
	if jac == nil {
		return nil
	}
	if len(jac) != n {
		return fmt.Errorf("%w: %s handler: Jacobian of element %d must have %d rows; got %d", ErrDimension, h.Name(), e.Id(), n, len(jac))
	}
	for i := range jac {
		if len(jac[i]) != n {
			return fmt.Errorf("%w: %s handler: row %d of Jacobian of element %d must have %d columns; got %d", ErrDimension, h.Name(), i, e.Id(), n, len(jac[i]))
		}
	}
	return nil
}

// zeroMat sets all entries of a matrix to zero
func zeroMat(a [][]float64) {
	for i := range a {
		for j := range a[i] {
			a[i][j] = 0
		}
	}
}


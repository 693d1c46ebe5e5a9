// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"

	"github.com/cpmech/gobif/ele"
)

// EigenHandler implements the handler used to assemble the matrices of the shifted generalised
// eigenproblem (J - σ M) z = (μ - σ) M z. It has no residuals
type EigenHandler struct {
	prob  *Problem
	Sigma float64 // shift
}

// Name returns the name of the handler
func (o *EigenHandler) Name() string { return "eigen" }

// Ndof returns the number of equations of element
func (o *EigenHandler) Ndof(e ele.Element) int { return e.Ndof() }

// EqnNumber returns the global equation number of local equation i
func (o *EigenHandler) EqnNumber(e ele.Element, i int) int { return e.EqnNumber(i) }

// Residuals fails: the eigenproblem has no residuals
func (o *EigenHandler) Residuals(e ele.Element, res []float64) (err error) {
	return fmt.Errorf("eigen handler cannot compute residuals of element %d: %w", e.Id(), ErrUnsupported)
}

// Jacobian fails: the eigenproblem has no residuals
func (o *EigenHandler) Jacobian(e ele.Element, res []float64, jac [][]float64) (err error) {
	return fmt.Errorf("eigen handler cannot compute Jacobian of element %d: %w", e.Id(), ErrUnsupported)
}

// JacobianAndMass computes jac = J - σ M and mass = M
func (o *EigenHandler) JacobianAndMass(e ele.Element, res []float64, jac, mass [][]float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, jac); err != nil {
			return
		}
		if err = checkDims(o, e, res, mass); err != nil {
			return
		}
	}
	err = e.JacobianAndMass(res, jac, mass, o.prob.Sol)
	if err != nil {
		return
	}
	if o.Sigma != 0 {
		for i := range jac {
			for j := range jac[i] {
				jac[i][j] -= o.Sigma * mass[i][j]
			}
		}
	}
	return
}

// Concurrent tells that elements can be computed concurrently
func (o *EigenHandler) Concurrent() bool { return true }

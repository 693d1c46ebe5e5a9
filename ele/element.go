// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ele implements the elements contributing to nonlinear systems R(u,λ) = 0
package ele

// Element defines what all elements must implement
//  Note: res and jac are local arrays with size Ndof() and [Ndof()][Ndof()], respectively;
//        res receives R (not -R) and jac receives dR/du
type Element interface {

	// information
	Id() int             // returns the element Id
	Ndof() int           // number of local dofs
	EqnNumber(i int) int // global equation number of local dof i

	// called for each iteration
	Residuals(res []float64, sol *Solution) (err error)                              // computes local residuals
	Jacobian(res []float64, jac [][]float64, sol *Solution) (err error)              // computes local residuals and Jacobian
	JacobianAndMass(res []float64, jac, mass [][]float64, sol *Solution) (err error) // computes residuals, Jacobian and mass matrix
}

// WithParamCache defines elements keeping data that depend on problem parameters; these data
// must be refreshed every time a parameter changes
type WithParamCache interface {
	RefreshParams() // recompute parameter-dependent data
}


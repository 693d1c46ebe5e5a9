// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package tests implements structures and functions to test bifurcation tracking simulations
package tests

import (
	"testing"

	"github.com/cpmech/gobif/fem"
	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Results holds the results of a bifurcation tracking simulation
type Results struct {
	Param  float64     // critical value of parameter
	Extra  float64     // σ (pitchfork) or ω (Hopf); zero for folds
	U      []float64   // [norig] state at bifurcation
	Eigen  [][]float64 // null (eigen) vectors
	Sign   int         // sign of the determinant of the Jacobian after the last iteration
	Ndof   int         // number of unknowns of the augmented system
	Solver string      // name of linear solver used while tracking
}

// RunSim reads a simulation file, solves the original problem, activates the tracking given in
// the file and locates the bifurcation. The tracking is deactivated afterwards.
// If block >= 0, it overrides the block flag in the file (0 => false, 1 => true)
func RunSim(tst *testing.T, simfilepath string, block int, verbose bool) (res *Results, prob *fem.Problem) {
	prob = ReadProblem(tst, simfilepath, block, verbose)
	if prob == nil {
		return
	}
	return Locate(tst, prob, verbose), prob
}

// Locate solves the original problem, activates the tracking given in the simulation data and
// locates the bifurcation. The tracking is deactivated afterwards
func Locate(tst *testing.T, prob *fem.Problem, verbose bool) (res *Results) {

	// original problem
	err := prob.Newton()
	if err != nil {
		tst.Errorf("Newton failed on original problem:\n%v", err)
		return
	}

	// tracking
	err = prob.ActivateTracking()
	if err != nil {
		tst.Errorf("ActivateTracking failed:\n%v", err)
		return
	}
	defer prob.DeactivateTracking()
	err = prob.Newton()
	if err != nil {
		tst.Errorf("Newton failed on augmented problem:\n%v", err)
		return
	}

	// results
	res = new(Results)
	res.Param = prob.BifurcationParameter().Value()
	switch h := prob.Handler.(type) {
	case *fem.PitchforkHandler:
		res.Extra = h.Sigma()
	case *fem.HopfHandler:
		res.Extra = h.Omega()
	}
	res.U = prob.Sol.Values()[:prob.Sol.Norig()]
	res.Eigen = prob.Eigenfunction()
	res.Sign = prob.SignOfJacobian()
	res.Ndof = prob.Ndof()
	res.Solver = prob.LinSol.Name()
	if verbose {
		io.Pforan("%s = %v  extra = %v  solver = %s\n", prob.BifurcationParameter().Key, res.Param, res.Extra, res.Solver)
	}
	return
}

// CheckJacobian compares the Jacobian assembled by the active handler with central differences
// of the assembled residuals
func CheckJacobian(tst *testing.T, prob *fem.Problem, tol float64, verbose bool) {

	// analytical
	n := prob.Ndof()
	fb := make([]float64, n)
	kb := lsol.NewTriplet(n, n)
	err := prob.Assemble(fb, kb)
	if err != nil {
		tst.Errorf("Assemble failed:\n%v", err)
		return
	}
	ana := kb.ToDense()

	// numerical: fb = -R
	y0 := prob.Sol.Values()
	num := mat.NewDense(n, n, nil)
	fd.Jacobian(num, func(r, y []float64) {
		for i := 0; i < n; i++ {
			prob.SetDof(i, y[i])
		}
		prob.ActionsAfterChangeInParameter()
		if err := prob.AssembleResiduals(r); err != nil {
			chk.Panic("AssembleResiduals failed:\n%v", err)
		}
		for i := range r {
			r[i] = -r[i]
		}
	}, y0, &fd.JacobianSettings{Formula: fd.Central})
	for i := 0; i < n; i++ {
		prob.SetDof(i, y0[i])
	}
	prob.ActionsAfterChangeInParameter()

	// compare
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			chk.AnaNum(tst, io.Sf("%s: K%d%d", prob.Handler.Name(), i, j), tol, ana.At(i, j), num.At(i, j), verbose)
		}
	}
}

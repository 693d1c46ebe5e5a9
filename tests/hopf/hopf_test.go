// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/cpmech/gobif/ana"
	"github.com/cpmech/gobif/tests"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_hopf01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hopf01. Brusselator")

	sol := ana.Brusselator{A: 2}
	bc, ωc := sol.Hopf()
	uc, vc := sol.Steady(bc)
	φc, ψc := sol.Eigenvector([]float64{4, -4})
	for _, block := range []int{0, 1} {
		res, _ := tests.RunSim(tst, "data/brusselator.yaml", block, chk.Verbose)
		if res == nil {
			return
		}
		label := io.Sf("block=%d", block)
		chk.Float64(tst, label+": B*", 1e-8, res.Param, bc)
		chk.Float64(tst, label+": ω", 1e-8, res.Extra, ωc)
		chk.Array(tst, label+": u*", 1e-8, res.U, []float64{uc, vc})
		chk.Array(tst, label+": φ", 1e-8, res.Eigen[0], φc)
		chk.Array(tst, label+": ψ", 1e-8, res.Eigen[1], ψc)
		chk.Int(tst, label+": ndof", res.Ndof, 8)
	}
}

func Test_hopf02(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hopf02. two coupled Brusselator cells")

	// the in-phase mode does not feel the coupling
	sol := ana.Brusselator{A: 2}
	φc, ψc := sol.Eigenvector([]float64{4, -4, 4, -4})
	for _, block := range []int{0, 1} {
		res, _ := tests.RunSim(tst, "data/cells2.sim", block, chk.Verbose)
		if res == nil {
			return
		}
		label := io.Sf("block=%d", block)
		chk.Float64(tst, label+": B*", 1e-8, res.Param, 5)
		chk.Float64(tst, label+": ω", 1e-8, res.Extra, 2)
		chk.Array(tst, label+": u*", 1e-8, res.U, []float64{2, 2.5, 2, 2.5})
		chk.Array(tst, label+": φ", 1e-8, res.Eigen[0], φc)
		chk.Array(tst, label+": ψ", 1e-8, res.Eigen[1], ψc)
		chk.Int(tst, label+": ndof", res.Ndof, 14)
	}
}

func Test_hopf03(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hopf03. Jacobian of augmented system")

	prob := tests.ReadProblem(tst, "data/cells2.sim", 0, chk.Verbose)
	if prob == nil {
		return
	}
	prob.Sol.SetValues([]float64{2.1, 2.3, 1.9, 2.6})
	err := prob.ActivateTracking()
	if err != nil {
		tst.Errorf("ActivateTracking failed:\n%v", err)
		return
	}
	tests.CheckJacobian(tst, prob, 1e-5, chk.Verbose)
	prob.DeactivateTracking()
}

func Test_hopf04(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hopf04. coupled cells: nonsingular Jacobian along the steady branch")

	// at u = (A, B/A) each cell contributes A² = 4 (in-phase mode) and the diffusive coupling
	// shifts the out-of-phase mode to det = A² (2 - B) + A² B = 8
	prob := tests.ReadProblem(tst, "data/cells2.sim", -1, chk.Verbose)
	if prob == nil {
		return
	}
	sol := ana.Brusselator{A: 2}
	b := prob.Params["B"]
	for _, bval := range []float64{3, 4.8, 5, 7} {
		b.Set(bval)
		prob.ActionsAfterChangeInParameter()
		u, v := sol.Steady(bval)
		prob.Sol.SetValues([]float64{u, v, u, v})
		chk.Float64(tst, io.Sf("det J (B=%g)", bval), 1e-10, tests.Determinant(tst, prob), 32)
	}
}

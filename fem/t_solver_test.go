// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/require"
)

// fullCorrection solves the augmented system with a dense solver on the full Jacobian
func fullCorrection(tst *testing.T, prob *Problem) (x []float64, sign int) {
	x = make([]float64, prob.Ndof())
	err := new(lsol.Dense).Solve(prob, x)
	require.NoError(tst, err)
	return x, prob.SignOfJacobian()
}

// blockCorrection solves the augmented system with the active (block) solver
func blockCorrection(tst *testing.T, prob *Problem) (x []float64) {
	n := prob.Ndof()
	x = make([]float64, n)
	err := prob.LinSol.Solve(prob, x)
	require.NoError(tst, err)
	chk.Int(tst, "ndof after block solve", prob.Ndof(), n)
	return
}

// resolveCorrection solves the augmented system again with the assembled residuals as rhs
func resolveCorrection(tst *testing.T, prob *Problem) (x []float64) {
	n := prob.Ndof()
	fb := make([]float64, n)
	require.NoError(tst, prob.AssembleResiduals(fb))
	x = make([]float64, n)
	require.NoError(tst, prob.LinSol.Resolve(fb, x))
	return
}

func Test_solver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver01. block fold solver")

	// state away from the solution
	prob, lam := foldChain()
	prob.Sol.SetValues([]float64{-0.1, -0.05, 0.02})
	require.NoError(tst, prob.ActivateFoldTracking(lam, true))
	prob.Sol.SetDof(4, 0.7)
	prob.Sol.SetDof(6, 0.1)
	bs := prob.LinSol.(*BlockFoldSolver)

	// resolve before solve
	x := make([]float64, prob.Ndof())
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)

	// block against dense
	xf, _ := fullCorrection(tst, prob)
	xb := blockCorrection(tst, prob)
	io.Pforan("xf = %v\nxb = %v\n", xf, xb)
	chk.Array(tst, "block = dense", 1e-6, xb, xf)

	// without resolve enabled, nothing is kept
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)

	// resolve
	bs.EnableResolve()
	xb = blockCorrection(tst, prob)
	xr := resolveCorrection(tst, prob)
	chk.Array(tst, "resolve = solve", 1e-8, xr, xb)

	// disable
	bs.DisableResolve()
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)
	prob.DeactivateTracking()
	if _, ok := prob.LinSol.(*lsol.Dense); !ok {
		tst.Errorf("base solver should have been restored")
	}
}

func Test_solver02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver02. block pitchfork solver")

	prob, lam := pitchforkChain(-0.05)
	prob.Sol.SetValues([]float64{0.1, -0.2, 0.15})
	require.NoError(tst, prob.ActivatePitchforkTracking(lam, []float64{1, 0, -1}, true))
	prob.Sol.SetDof(3, 0.01) // σ
	prob.Sol.SetDof(5, 0.2)  // y1
	bs := prob.LinSol.(*BlockPitchforkSolver)

	// resolve before solve
	x := make([]float64, prob.Ndof())
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)

	// block against dense
	xf, _ := fullCorrection(tst, prob)
	xb := blockCorrection(tst, prob)
	io.Pforan("xf = %v\nxb = %v\n", xf, xb)
	chk.Array(tst, "block = dense", 1e-6, xb, xf)

	// resolve
	bs.EnableResolve()
	xb = blockCorrection(tst, prob)
	xr := resolveCorrection(tst, prob)
	chk.Array(tst, "resolve = solve", 1e-8, xr, xb)
	prob.DeactivateTracking()
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)
}

func Test_solver03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver03. block Hopf solver")

	prob, lam := brusselator()
	prob.Sol.SetValues([]float64{2.1, 2.3})
	require.NoError(tst, prob.ActivateHopfTracking(lam, 1.9, []float64{4, -4}, []float64{0, 2}, true))
	prob.Sol.SetDof(3, -0.12) // φ1
	bs := prob.LinSol.(*BlockHopfSolver)
	if bs.Complex == bs.Base {
		tst.Errorf("complex and base solvers must be different instances")
		return
	}

	// resolve before solve
	x := make([]float64, prob.Ndof())
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)

	// block against dense
	xf, _ := fullCorrection(tst, prob)
	xb := blockCorrection(tst, prob)
	io.Pforan("xf = %v\nxb = %v\n", xf, xb)
	chk.Array(tst, "block = dense", 1e-6, xb, xf)

	// two right-hand sides
	fb := make([]float64, prob.Ndof())
	require.NoError(tst, prob.AssembleResiduals(fb))
	rhs2 := make([]float64, len(fb))
	for i := range fb {
		rhs2[i] = 2 * fb[i]
	}
	x1 := make([]float64, len(fb))
	x2 := make([]float64, len(fb))
	require.NoError(tst, bs.SolveForTwoRhs(prob, x1, rhs2, x2))
	chk.Array(tst, "x1", 1e-12, x1, xb)
	for i := range x2 {
		x2[i] /= 2
	}
	chk.Array(tst, "x2/2", 1e-6, x2, xb)
	chk.Int(tst, "ndof after two rhs", prob.Ndof(), len(fb))

	// resolve
	bs.EnableResolve()
	xb = blockCorrection(tst, prob)
	xr := resolveCorrection(tst, prob)
	chk.Array(tst, "resolve = solve", 1e-8, xr, xb)
	bs.DisableResolve()
	require.ErrorIs(tst, bs.Resolve(x, x), ErrPrecondition)
	prob.DeactivateTracking()
}

func Test_solver04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver04. handler returns to full mode on errors")

	prob, lam := foldChain()
	require.NoError(tst, prob.ActivateFoldTracking(lam, true))
	n := prob.Ndof()

	// wrong size
	err := prob.LinSol.Solve(prob, make([]float64, n-1))
	require.ErrorIs(tst, err, ErrDimension)
	chk.Int(tst, "ndof", prob.Ndof(), n)

	// singular bordered matrix: Φ = 0
	h := prob.tracking.handler.(*FoldHandler)
	for i := range h.Phi {
		h.Phi[i] = 0
	}
	err = prob.LinSol.Solve(prob, make([]float64, n))
	if err == nil {
		tst.Errorf("singular system should have failed")
	}
	chk.Int(tst, "ndof after error", prob.Ndof(), n)
	prob.DeactivateTracking()
	chk.Int(tst, "ndof after deactivation", prob.Ndof(), 3)
}

func Test_solver05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver05. sign of Jacobian from the block fold solver")

	// walk along the branch of newton02 with the fold handler active; the sign reported by the
	// block solver is the sign of det J = 6 u0 + 1 and changes once, at λ* = 37/36
	prob, lam := foldChain()
	require.NoError(tst, prob.ActivateFoldTracking(lam, true))
	var signs []int
	nflips := 0
	for k := 0; k <= 10; k++ {
		u0 := -float64(k) / 30.0
		if k == 5 {
			continue // singular
		}
		lam.Set(1 - u0*u0 - u0/3)
		prob.ActionsAfterChangeInParameter()
		for i, v := range []float64{u0, 2 * u0 / 3, u0 / 3} {
			prob.Sol.SetDof(i, v)
		}
		blockCorrection(tst, prob)
		s := prob.SignOfJacobian()
		chk.Int(tst, io.Sf("sign (k=%d)", k), s, int(math.Copysign(1, 6*u0+1)))
		if len(signs) > 0 && s != signs[len(signs)-1] {
			nflips++
		}
		signs = append(signs, s)
	}
	io.Pforan("signs = %v\n", signs)
	chk.Int(tst, "number of flips", nflips, 1)
	chk.Int(tst, "first sign", signs[0], 1)
	chk.Int(tst, "last sign", signs[len(signs)-1], -1)
	prob.DeactivateTracking()
}

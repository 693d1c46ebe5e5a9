// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/ele/lumped"
	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/require"
)

func Test_newton01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton01. original problem")

	prob, lam := foldChain()
	prob.Ctrl.ShowR = chk.Verbose
	lam.Set(0.5)
	prob.ActionsAfterChangeInParameter()
	prob.Sol.SetValues([]float64{0.5, 0.3, 0.1})
	require.NoError(tst, prob.Newton())

	// branch: λ = 1 - u0² - u0/3 => u0 = (-1/3 + sqrt(1/9 + 4 (1 - λ))) / 2
	u0 := (-1.0/3.0 + math.Sqrt(1.0/9.0+4.0*(1.0-0.5))) / 2.0
	chk.Array(tst, "u", 1e-10, prob.Sol.Values(), []float64{u0, 2 * u0 / 3, u0 / 3})
}

func Test_newton02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton02. sign of Jacobian along the fold branch")

	// walk along the branch u0 ∈ [0, -1/3]: λ increases up to λ* = 37/36 at u0 = -1/6 and then
	// decreases; det J = 6 u0 + 1 changes sign once
	prob, lam := foldChain()
	var signs []int
	nflips := 0
	for k := 0; k <= 10; k++ {
		u0 := -float64(k) / 30.0
		if k == 5 {
			continue // singular
		}
		lam.Set(1 - u0*u0 - u0/3)
		prob.Sol.SetValues([]float64{u0, 2 * u0 / 3, u0 / 3})
		x := make([]float64, 3)
		require.NoError(tst, prob.LinSol.Solve(prob, x))
		chk.Array(tst, io.Sf("δu on branch (k=%d)", k), 1e-12, x, []float64{0, 0, 0})
		s := prob.SignOfJacobian()
		if len(signs) > 0 && s != signs[len(signs)-1] {
			nflips++
		}
		signs = append(signs, s)
	}
	io.Pforan("signs = %v\n", signs)
	chk.Int(tst, "number of flips", nflips, 1)
	chk.Int(tst, "first sign", signs[0], 1)
	chk.Int(tst, "last sign", signs[len(signs)-1], -1)
}

func Test_newton03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton03. fold tracking")

	for _, block := range []bool{false, true} {
		prob, lam := foldChain()
		prob.Ctrl.ShowR = chk.Verbose
		require.NoError(tst, prob.ActivateFoldTracking(lam, block))
		require.NoError(tst, prob.Newton())

		label := io.Sf("block=%v", block)
		chk.Float64(tst, label+": λ*", 1e-6, prob.BifurcationParameter().Value(), 37.0/36.0)
		chk.Array(tst, label+": u*", 1e-6, prob.Sol.Values()[:3], []float64{-1.0 / 6.0, -1.0 / 9.0, -1.0 / 18.0})

		// null vector is parallel to (3, 2, 1)
		y := prob.Eigenfunction()[0]
		chk.Array(tst, label+": y", 1e-6, []float64{y[1] / y[0], y[2] / y[0]}, []float64{2.0 / 3.0, 1.0 / 3.0})

		// destructor
		prob.DeactivateTracking()
		chk.Int(tst, label+": ndof", prob.Ndof(), 3)
		chk.Int(tst, label+": size", prob.Sol.Size(), 3)
		chk.Float64(tst, label+": λ after", 1e-6, lam.Value(), 37.0/36.0)
		if prob.TrackingActive() || prob.BifurcationParameter() != nil || prob.Eigenfunction() != nil {
			tst.Errorf("%s: tracking should be inactive", label)
		}
		if _, ok := prob.LinSol.(*lsol.Dense); !ok {
			tst.Errorf("%s: base solver should have been restored", label)
		}
	}
}

func Test_newton04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton04. pitchfork tracking")

	// symmetric problem: pitchfork of trivial branch at λ = 1
	for _, block := range []bool{false, true} {
		prob, lam := pitchforkChain(0)
		require.NoError(tst, prob.ActivatePitchforkTracking(lam, []float64{1, 0, -1}, block))
		require.NoError(tst, prob.Newton())
		h := prob.tracking.handler.(*PitchforkHandler)
		label := io.Sf("block=%v", block)
		chk.Float64(tst, label+": λ*", 1e-8, lam.Value(), 1)
		chk.Float64(tst, label+": σ", 1e-10, h.Sigma(), 0)
		chk.Array(tst, label+": u*", 1e-10, prob.Sol.Values()[:3], []float64{0, 0, 0})
		s := 1.0 / math.Sqrt2
		chk.Array(tst, label+": y", 1e-8, prob.Eigenfunction()[0], []float64{s, 0, -s})
		prob.DeactivateTracking()
		chk.Int(tst, label+": size", prob.Sol.Size(), 3)
	}

	// forced symmetric problem: λ* = 1 + 3 u0² with u0 = u2
	for _, block := range []bool{false, true} {
		prob, lam := pitchforkChain(-0.05)
		prob.Ctrl.ShowR = chk.Verbose
		require.NoError(tst, prob.ActivatePitchforkTracking(lam, []float64{1, 0, -1}, block))
		require.NoError(tst, prob.Newton())
		h := prob.tracking.handler.(*PitchforkHandler)
		u := prob.Sol.Values()[:3]
		label := io.Sf("forced, block=%v", block)
		io.Pforan("%s: u = %v  λ = %v\n", label, u, lam.Value())
		chk.Float64(tst, label+": u0 = u2", 1e-10, u[0], u[2])
		chk.Float64(tst, label+": u1 = -2 u0³", 1e-10, u[1], -2*u[0]*u[0]*u[0])
		chk.Float64(tst, label+": λ*", 1e-8, lam.Value(), 1+3*u[0]*u[0])
		chk.Float64(tst, label+": σ", 1e-10, h.Sigma(), 0)
		prob.DeactivateTracking()
	}
}

func Test_newton05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton05. Hopf tracking")

	for _, block := range []bool{false, true} {
		prob, lam := brusselator()
		prob.Ctrl.ShowR = chk.Verbose
		require.NoError(tst, prob.ActivateHopfTracking(lam, 1.9, []float64{4, -4}, []float64{0, 2}, block))
		require.NoError(tst, prob.Newton())
		h := prob.tracking.handler.(*HopfHandler)
		label := io.Sf("block=%v", block)
		chk.Float64(tst, label+": B*", 1e-8, lam.Value(), 5)
		chk.Float64(tst, label+": ω", 1e-8, h.Omega(), 2)
		chk.Array(tst, label+": u*", 1e-8, prob.Sol.Values()[:2], []float64{2, 2.5})

		// eigenvector (4, -4 + 2i) scaled by C · z = 1 with C = (4, -4)
		d := 1088.0
		ef := prob.Eigenfunction()
		chk.Array(tst, label+": φ", 1e-8, ef[0], []float64{128 / d, -144 / d})
		chk.Array(tst, label+": ψ", 1e-8, ef[1], []float64{32 / d, 32 / d})
		prob.DeactivateTracking()
		chk.Int(tst, label+": size", prob.Sol.Size(), 2)
	}
}

func Test_newton06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton06. concurrent assembly")

	// Bratu-like chain: many springs and reactions
	build := func(nworkers int) *Problem {
		n := 40
		lam := ele.NewParameter("lambda", 0.3)
		var elems []ele.Element
		for i := 0; i < n-1; i++ {
			elems = append(elems, lumped.NewSpring(len(elems), i, i+1, 2, 1))
		}
		for i := 0; i < n; i++ {
			r := lumped.NewReaction(len(elems), i, lam)
			r.C[1], r.C[3], r.D[0] = 1, 0.1, -1
			r.Rho = 1
			elems = append(elems, r)
		}
		prob := New(n, elems, []*ele.Parameter{lam})
		prob.Nworkers = nworkers
		for i := 0; i < n; i++ {
			prob.Sol.SetDof(i, 0.01*float64(i))
		}
		return prob
	}
	serial := build(1)
	parallel := build(4)
	fbs, kbs := assembleDense(tst, serial)
	fbp, kbp := assembleDense(tst, parallel)
	chk.Array(tst, "fb", 1e-15, fbp, fbs)
	chk.Deep2(tst, "kb", 1e-15, kbp, kbs)

	// same Newton iterations
	require.NoError(tst, serial.Newton())
	require.NoError(tst, parallel.Newton())
	chk.Array(tst, "u", 1e-15, parallel.Sol.Values(), serial.Sol.Values())

	// partitions
	chk.Int(tst, "nparts", len(partition(10, 4)), 4)
	chk.Ints(tst, "part0", partition(10, 4)[0][:], []int{0, 3})
	chk.Ints(tst, "part3", partition(10, 4)[3][:], []int{8, 10})
	chk.Int(tst, "nparts(2,4)", len(partition(2, 4)), 2)
}

func Test_newton07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton07. tracking errors")

	prob, lam := foldChain()
	require.NoError(tst, prob.ActivateFoldTracking(lam, true))
	if err := prob.ActivateFoldTracking(lam, true); err == nil {
		tst.Errorf("second activation should have failed")
	}
	prob.DeactivateTracking()
	prob.DeactivateTracking() // no-op

	// wrong size of symmetry vector
	prob, lam = pitchforkChain(0)
	require.ErrorIs(tst, prob.ActivatePitchforkTracking(lam, []float64{1, 0}, true), ErrDimension)
	chk.Int(tst, "size", prob.Sol.Size(), 3)

	// zero eigenvector
	prob, lam = brusselator()
	if err := prob.ActivateHopfTracking(lam, 2, []float64{0, 0}, []float64{0, 0}, true); err == nil {
		tst.Errorf("zero eigenvector should have failed")
	}
	chk.Int(tst, "size", prob.Sol.Size(), 2)
	chk.Int(tst, "λ index", lam.Index(), -1)
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

func Test_guard01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("guard01. restore dofs on every exit path")

	prob, lam := foldChain()
	prob.Sol.SetValues([]float64{1, 2, 3})
	require.NoError(tst, prob.ActivateFoldTracking(lam, false))
	before := prob.Sol.Values()

	// hook
	ncalls := 0
	prob.AfterParamChange = func() { ncalls++ }

	// normal return: dofs perturbed inside
	err := prob.perturb([]int{0, 2}, []float64{0.5, -1}, func() error {
		chk.Float64(tst, "u0 inside", 1e-17, prob.Dof(0), 1.5)
		chk.Float64(tst, "u2 inside", 1e-17, prob.Dof(2), 2)
		return nil
	})
	require.NoError(tst, err)
	chk.Array(tst, "after return", 1e-17, prob.Sol.Values(), before)
	chk.Int(tst, "hook calls without parameter", ncalls, 0)

	// error
	errTest := errors.New("test")
	err = prob.perturb([]int{1, 3}, []float64{1, 1}, func() error {
		chk.Float64(tst, "λ inside", 1e-17, lam.Value(), 2)
		return errTest
	})
	require.ErrorIs(tst, err, errTest)
	chk.Array(tst, "after error", 1e-17, prob.Sol.Values(), before)
	chk.Int(tst, "hook calls with parameter", ncalls, 2)

	// panic
	func() {
		defer func() {
			if r := recover(); r == nil {
				tst.Errorf("panic should have been propagated")
			}
		}()
		prob.perturb([]int{3, 4}, []float64{0.1, 0.2}, func() error {
			panic("stop")
		})
	}()
	chk.Array(tst, "after panic", 1e-17, prob.Sol.Values(), before)
	chk.Int(tst, "hook calls after panic", ncalls, 4)

	// repeated index: restored in reverse order
	err = prob.perturb([]int{0, 0}, []float64{1, 1}, func() error {
		chk.Float64(tst, "u0 twice", 1e-17, prob.Dof(0), 3)
		return nil
	})
	require.NoError(tst, err)
	chk.Array(tst, "after repeated", 1e-17, prob.Sol.Values(), before)
	prob.DeactivateTracking()
}

func Test_guard02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("guard02. perturb parameters")

	prob, lam := foldChain()
	ncalls := 0
	var seen []float64
	prob.AfterParamChange = func() {
		ncalls++
		seen = append(seen, lam.Value())
	}

	// unfolded parameter
	err := prob.perturbParam(lam, 0.25, func() error {
		chk.Float64(tst, "λ inside", 1e-17, lam.Value(), 1.25)
		return errors.New("fail")
	})
	if err == nil {
		tst.Errorf("error should have been returned")
		return
	}
	chk.Float64(tst, "λ after", 1e-17, lam.Value(), 1)
	chk.Int(tst, "hook calls", ncalls, 2)
	chk.Array(tst, "hook values", 1e-17, seen, []float64{1.25, 1})

	// derivative with respect to the parameter calls the hook around the perturbation
	ncalls = 0
	drdp := make([]float64, 3)
	require.NoError(tst, prob.DerivativeWrtParameter(lam, drdp))
	chk.Array(tst, "dR/dλ", 1e-7, drdp, []float64{1, 0, 0})
	chk.Int(tst, "hook calls", ncalls, 2)

	// wrong size
	require.ErrorIs(tst, prob.DerivativeWrtParameter(lam, drdp[:2]), ErrDimension)
}

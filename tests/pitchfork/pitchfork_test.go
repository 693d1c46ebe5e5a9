// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"testing"

	"github.com/cpmech/gobif/tests"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_pitchfork01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("pitchfork01. symmetric chain")

	s := 1.0 / math.Sqrt2
	for _, block := range []int{0, 1} {
		res, _ := tests.RunSim(tst, "data/chain3.sim", block, chk.Verbose)
		if res == nil {
			return
		}
		label := io.Sf("block=%d", block)
		chk.Float64(tst, label+": λ*", 1e-8, res.Param, 1)
		chk.Float64(tst, label+": σ", 1e-10, res.Extra, 0)
		chk.Array(tst, label+": u*", 1e-10, res.U, []float64{0, 0, 0})
		chk.Array(tst, label+": y", 1e-8, res.Eigen[0], []float64{s, 0, -s})
		chk.Int(tst, label+": ndof", res.Ndof, 8)
	}
}

func Test_pitchfork02(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("pitchfork02. forced symmetric chain")

	var lams []float64
	for _, block := range []int{0, 1} {
		res, _ := tests.RunSim(tst, "data/forced.yaml", block, chk.Verbose)
		if res == nil {
			return
		}
		label := io.Sf("block=%d", block)
		u := res.U
		chk.Float64(tst, label+": u0 = u2", 1e-10, u[0], u[2])
		chk.Float64(tst, label+": u1 = -2 u0³", 1e-10, u[1], -2*u[0]*u[0]*u[0])
		chk.Float64(tst, label+": λ* = 1 + 3 u0²", 1e-8, res.Param, 1+3*u[0]*u[0])
		chk.Float64(tst, label+": σ", 1e-10, res.Extra, 0)
		lams = append(lams, res.Param)
	}
	chk.Float64(tst, "block = dense", 1e-8, lams[1], lams[0])
}

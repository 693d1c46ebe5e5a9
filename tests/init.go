// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"testing"

	"github.com/cpmech/gobif/fem"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

func init() {
	io.Verbose = false
}

// Verbose turns on messages from tests
func Verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// ReadProblem reads a simulation file (relative to the test package; e.g. data/chain3.sim) and
// allocates the problem with the initial state of the file.
// If block >= 0, it overrides the block flag of the tracking data (0 => false, 1 => true)
func ReadProblem(tst *testing.T, simfilepath string, block int, verbose bool) (prob *fem.Problem) {
	sim, err := inp.ReadSim(simfilepath)
	if err != nil {
		tst.Errorf("ReadSim failed:\n%v", err)
		return
	}
	if block >= 0 {
		sim.Track.Block = block == 1
	}
	sim.Solver.ShowR = verbose
	prob, err = fem.NewProblem(sim, verbose)
	if err != nil {
		tst.Errorf("NewProblem failed:\n%v", err)
		return nil
	}
	return
}

// Determinant returns the determinant of the Jacobian assembled by the active handler at the
// current state
func Determinant(tst *testing.T, prob *fem.Problem) float64 {
	n := prob.Ndof()
	fb := make([]float64, n)
	kb := lsol.NewTriplet(n, n)
	if err := prob.Assemble(fb, kb); err != nil {
		tst.Errorf("Assemble failed:\n%v", err)
		return 0
	}
	return mat.Det(kb.ToDense())
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"time"

	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Main holds all data for a simulation: the original problem is solved first and then, if
// requested in the simulation data, the bifurcation is located
type Main struct {
	Sim     *inp.Simulation // simulation data
	Prob    *Problem        // the problem
	Summary *Summary        // summary structure; nil => not saved
	ShowMsg bool            // show messages
}

// NewMain returns a new Main structure
//  Input:
//   simfilepath -- simulation (.sim or .yaml) filename including full path
//   saveSummary -- save summary
//   verbose     -- show messages
func NewMain(simfilepath string, saveSummary, verbose bool) (o *Main, err error) {

	// read input data
	o = new(Main)
	o.Sim, err = inp.ReadSim(simfilepath)
	if err != nil {
		return nil, err
	}
	o.ShowMsg = verbose
	if o.ShowMsg {
		io.Pf("> Simulation file %q read\n", simfilepath)
	}

	// summary
	if saveSummary {
		o.Summary = &Summary{Key: o.Sim.Key, Track: o.Sim.Track.Type, Param: o.Sim.Track.Param}
	}

	// problem
	o.Prob, err = NewProblem(o.Sim, verbose)
	if err != nil {
		return nil, chk.Err("cannot allocate problem:\n%v", err)
	}
	o.Prob.Summary = o.Summary
	return
}

// Run solves the original problem and locates the bifurcation, if any
func (o *Main) Run() (err error) {

	// exit commands
	cputime := time.Now()
	defer func() { err = o.onexit(cputime, err) }()

	// original problem
	if o.ShowMsg {
		io.Pf("> Solving original problem\n")
	}
	err = o.Prob.Newton()
	if err != nil {
		return chk.Err("cannot solve original problem:\n%v", err)
	}
	if o.Sim.Track.Type == "" {
		return
	}

	// bifurcation
	err = o.Prob.ActivateTracking()
	if err != nil {
		return
	}
	defer o.Prob.DeactivateTracking()
	if o.ShowMsg {
		io.Pf("> Locating %s bifurcation\n", o.Sim.Track.Type)
	}
	err = o.Prob.Newton()
	if err != nil {
		return chk.Err("cannot locate %s bifurcation:\n%v", o.Sim.Track.Type, err)
	}

	// results
	if o.Summary != nil {
		o.Summary.Value = o.Prob.BifurcationParameter().Value()
		switch h := o.Prob.Handler.(type) {
		case *PitchforkHandler:
			o.Summary.Extra = h.Sigma()
		case *HopfHandler:
			o.Summary.Extra = h.Omega()
		}
		o.Summary.Eigen = o.Prob.Eigenfunction()
	}
	return
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// onexit prints the final message with cpu time and saves the summary
func (o *Main) onexit(cputime time.Time, prevErr error) (err error) {

	// show final message
	elapsed := time.Now().Sub(cputime)
	if o.ShowMsg {
		if prevErr == nil {
			io.PfGreen("> Success\n")
			io.Pf("> CPU time = %v\n", elapsed)
		} else {
			io.PfRed("> Failed\n")
		}
	}

	// save summary even if previous error is not nil
	if o.Summary != nil {
		o.Summary.U = o.Prob.Sol.Values()[:o.Prob.Sol.Norig()]
		o.Summary.Sign = o.Prob.SignOfJacobian()
		o.Summary.CPUtime = elapsed.String()
		err = o.Summary.Save(o.Sim.DirOut)
		if err != nil {
			return
		}
	}

	// skip if previous error is not nil
	if prevErr != nil {
		err = prevErr
	}
	return
}

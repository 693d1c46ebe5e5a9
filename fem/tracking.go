// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// tracking holds the data of an active bifurcation tracking
type tracking struct {
	handler BifurcationHandler // augmented handler
	base    lsol.Solver        // linear solver active before tracking
}

// ActivateFoldTracking augments the problem to locate a fold point with respect to parameter p.
// With block, the augmented linear systems are solved by a BlockFoldSolver wrapping the current
// linear solver; otherwise the current solver is used on the full augmented system
func (o *Problem) ActivateFoldTracking(p *ele.Parameter, block bool) (err error) {
	if err = o.checkNoTracking(p); err != nil {
		return
	}
	h, err := NewFoldHandler(o, p)
	if err != nil {
		return
	}
	var ls lsol.Solver
	if block {
		ls = NewBlockFoldSolver(h, o.LinSol)
	}
	o.activate(h, ls)
	return
}

// ActivatePitchforkTracking augments the problem to locate a pitchfork bifurcation with respect
// to parameter p; symmetry is the symmetry-breaking vector
func (o *Problem) ActivatePitchforkTracking(p *ele.Parameter, symmetry []float64, block bool) (err error) {
	if err = o.checkNoTracking(p); err != nil {
		return
	}
	h, err := NewPitchforkHandler(o, p, symmetry)
	if err != nil {
		return
	}
	var ls lsol.Solver
	if block {
		ls = NewBlockPitchforkSolver(h, o.LinSol)
	}
	o.activate(h, ls)
	return
}

// ActivateHopfTracking augments the problem to locate a Hopf bifurcation with respect to
// parameter p; omega, phi and psi are the initial guesses of the frequency and of the real and
// imaginary parts of the critical eigenvector
func (o *Problem) ActivateHopfTracking(p *ele.Parameter, omega float64, phi, psi []float64, block bool) (err error) {
	if err = o.checkNoTracking(p); err != nil {
		return
	}
	h, err := NewHopfHandler(o, p, omega, phi, psi)
	if err != nil {
		return
	}
	var ls lsol.Solver
	if block {
		ls, err = NewBlockHopfSolver(h, o.LinSol)
		if err != nil {
			h.Free()
			return
		}
	}
	o.activate(h, ls)
	return
}

// ActivateTracking activates the tracking given in the simulation data
func (o *Problem) ActivateTracking() (err error) {
	if o.Sim == nil {
		return chk.Err("cannot activate tracking without simulation data")
	}
	t := o.Sim.Track
	p, ok := o.Params[t.Param]
	if !ok {
		return chk.Err("cannot find parameter %q", t.Param)
	}
	switch t.Type {
	case "fold":
		return o.ActivateFoldTracking(p, t.Block)
	case "pitchfork":
		return o.ActivatePitchforkTracking(p, t.Symmetry, t.Block)
	case "hopf":
		return o.ActivateHopfTracking(p, t.Omega, t.Phi, t.Psi, t.Block)
	}
	return chk.Err("tracking type %q is not available", t.Type)
}

// DeactivateTracking restores the original problem: the dofs, the pass-through handler and the
// linear solver active before tracking. The parameter keeps the located critical value
func (o *Problem) DeactivateTracking() {
	if o.tracking == nil {
		return
	}
	o.LinSol.DisableResolve()
	o.LinSol = o.tracking.base
	o.tracking.handler.Free()
	o.Handler = &PassThrough{o}
	if o.ShowMsg {
		io.Pf("> %s tracking deactivated\n", o.tracking.handler.Name())
	}
	o.tracking = nil
}

// TrackingActive tells whether a bifurcation is being tracked
func (o *Problem) TrackingActive() bool { return o.tracking != nil }

// BifurcationParameter returns the parameter of the active tracking; nil if none
func (o *Problem) BifurcationParameter() *ele.Parameter {
	if o.tracking == nil {
		return nil
	}
	return o.tracking.handler.Parameter()
}

// Eigenfunction returns the null (eigen) vector(s) of the active tracking; nil if none
func (o *Problem) Eigenfunction() [][]float64 {
	if o.tracking == nil {
		return nil
	}
	return o.tracking.handler.Eigenfunction()
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// checkNoTracking checks that no tracking is active and that p belongs to the problem
func (o *Problem) checkNoTracking(p *ele.Parameter) error {
	if o.tracking != nil {
		return chk.Err("cannot activate tracking: %s tracking is active already", o.tracking.handler.Name())
	}
	if p == nil {
		return chk.Err("cannot activate tracking: parameter is nil")
	}
	return nil
}

// activate makes h the active handler and ls (if not nil) the active linear solver
func (o *Problem) activate(h BifurcationHandler, ls lsol.Solver) {
	o.tracking = &tracking{handler: h, base: o.LinSol}
	o.Handler = h
	if ls != nil {
		o.LinSol = ls
	}
	if o.ShowMsg {
		io.Pf("> %s tracking activated with parameter %q = %g; ndof = %d\n", h.Name(), h.Parameter().Key, h.Parameter().Value(), o.Ndof())
	}
}

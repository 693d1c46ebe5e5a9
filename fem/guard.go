// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gobif/ele"

// perturb adds delta[k] to dof idx[k], runs fcn and restores the dofs.
//  The dofs are restored on every exit path (normal return, error or panic). If any of the dofs
//  is a folded parameter, ActionsAfterChangeInParameter is called with the perturbed values and
//  again with the restored ones.
//  Note: perturbations of the shared dofs must not run concurrently with readers of these dofs
func (o *Problem) perturb(idx []int, delta []float64, fcn func() error) (err error) {

	// snapshot
	bkp := make([]float64, len(idx))
	param := false
	for k, i := range idx {
		bkp[k] = o.Sol.Dof(i)
		if o.isParamDof(i) {
			param = true
		}
	}

	// restore on exit
	defer func() {
		for k := len(idx) - 1; k >= 0; k-- {
			o.Sol.SetDof(idx[k], bkp[k])
		}
		if param {
			o.ActionsAfterChangeInParameter()
		}
	}()

	// perturb and run
	for k, i := range idx {
		o.Sol.AddToDof(i, delta[k])
	}
	if param {
		o.ActionsAfterChangeInParameter()
	}
	return fcn()
}

// perturbParam adds delta to a parameter, runs fcn and restores the parameter.
// ActionsAfterChangeInParameter is called after the perturbation and after the restoration
func (o *Problem) perturbParam(p *ele.Parameter, delta float64, fcn func() error) (err error) {
	if p.Index() >= 0 {
		return o.perturb([]int{p.Index()}, []float64{delta}, fcn)
	}
	bkp := p.Value()
	defer func() {
		p.Set(bkp)
		o.ActionsAfterChangeInParameter()
	}()
	p.Set(bkp + delta)
	o.ActionsAfterChangeInParameter()
	return fcn()
}

// isParamDof tells whether dof i holds a folded parameter
func (o *Problem) isParamDof(i int) bool {
	for _, p := range o.Params {
		if p.Index() == i {
			return true
		}
	}
	if o.tracking != nil {
		return o.tracking.handler.Parameter().Index() == i
	}
	return false
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the Newton driver and the bifurcation trackers of nonlinear problems
// R(u, λ) = 0 assembled from elements
package fem

import (
	"fmt"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gobif/lsol"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"golang.org/x/sync/errgroup"
)

// FdStep is the step used in all finite difference approximations of derivatives
const FdStep = 1e-8

// Problem holds the elements and the unknowns of a nonlinear problem and drives its Newton
// iterations through the active assembly handler and linear solver
type Problem struct {

	// input
	Sim     *inp.Simulation // simulation data; nil if not built from a simulation file
	Ctrl    inp.SolverData  // nonlinear solver control
	LsData  inp.LinSolData  // linear solver data
	ShowMsg bool            // show messages

	// elements and unknowns
	Elems  []ele.Element             // all elements
	Sol    *ele.Solution             // dofs
	Params map[string]*ele.Parameter // all parameters

	// assembly and solvers
	Handler  AssemblyHandler // active assembly handler
	LinSol   lsol.Solver     // active linear solver
	Nworkers int             // number of goroutines computing element contributions

	// callbacks and output
	AfterParamChange func()   // [optional] called every time a parameter changes
	Summary          *Summary // [optional] records the residuals of Newton iterations

	// internal
	sign     int       // sign of the determinant of the Jacobian
	tracking *tracking // active bifurcation tracking; nil => none
}

// New returns a new Problem with the given elements and parameters. The pass-through handler and
// the dense linear solver are activated
func New(ndof int, elems []ele.Element, params []*ele.Parameter) (o *Problem) {
	o = new(Problem)
	o.Ctrl.SetDefault()
	o.Ctrl.PostProcess()
	o.LsData.SetDefault()
	o.Elems = elems
	o.Sol = ele.NewSolution(ndof)
	o.Params = make(map[string]*ele.Parameter)
	for _, p := range params {
		o.Params[p.Key] = p
	}
	o.Handler = &PassThrough{o}
	o.LinSol = &lsol.Dense{}
	o.sign = 1
	return
}

// NewProblem returns a new Problem built from simulation data
func NewProblem(sim *inp.Simulation, verbose bool) (o *Problem, err error) {

	// parameters
	var params []*ele.Parameter
	pmap := make(map[string]*ele.Parameter)
	for _, pd := range sim.Params {
		p := ele.NewParameter(pd.Key, pd.Val)
		params = append(params, p)
		pmap[p.Key] = p
	}

	// elements
	elems := make([]ele.Element, len(sim.Elems))
	for i, edat := range sim.Elems {
		elems[i], err = ele.New(i, edat, pmap)
		if err != nil {
			return
		}
	}

	// problem
	o = New(sim.Ndof, elems, params)
	o.Sim = sim
	o.Ctrl = sim.Solver
	o.LsData = sim.LinSol
	o.Nworkers = sim.Solver.Nworkers
	o.ShowMsg = verbose
	if len(sim.Ini) > 0 {
		o.Sol.SetValues(sim.Ini)
	}

	// linear solver
	o.LinSol, err = lsol.Get(sim.LinSol.Name, &o.LsData)
	if err != nil {
		return
	}
	if o.ShowMsg {
		io.Pf("> Problem with %d dofs and %d elements allocated\n", o.Ndof(), len(o.Elems))
	}
	return
}

// Ndof returns the number of unknowns of the system being solved
func (o *Problem) Ndof() int { return o.Sol.Ndof() }

// Dof returns the value of dof i
func (o *Problem) Dof(i int) float64 { return o.Sol.Dof(i) }

// SetDof sets the value of dof i
func (o *Problem) SetDof(i int, v float64) { o.Sol.SetDof(i, v) }

// Nelements returns the number of elements
func (o *Problem) Nelements() int { return len(o.Elems) }

// Element returns element i
func (o *Problem) Element(i int) ele.Element { return o.Elems[i] }

// SignOfJacobian returns the sign of the determinant of the Jacobian computed by the last solve
func (o *Problem) SignOfJacobian() int { return o.sign }

// SetSignOfJacobian sets the sign of the determinant of the Jacobian
func (o *Problem) SetSignOfJacobian(sign int) { o.sign = sign }

// ActionsAfterChangeInParameter refreshes parameter-dependent data of elements and calls the
// AfterParamChange callback
func (o *Problem) ActionsAfterChangeInParameter() {
	for _, e := range o.Elems {
		if c, ok := e.(ele.WithParamCache); ok {
			c.RefreshParams()
		}
	}
	if o.AfterParamChange != nil {
		o.AfterParamChange()
	}
}

// Assemble assembles fb = -R and kb = dR/dy using the active handler
func (o *Problem) Assemble(fb []float64, kb *lsol.Triplet) (err error) {
	for i := range fb {
		fb[i] = 0
	}
	kb.Start()
	h := o.Handler
	return o.eachElem(true, func(e ele.Element, res []float64, jac [][]float64) error {
		for i := range res {
			I := h.EqnNumber(e, i)
			if paranoid && I >= len(fb) {
				return fmt.Errorf("%w: equation %d of element %d is out of range [0,%d)", ErrDimension, I, e.Id(), len(fb))
			}
			fb[I] -= res[i]
			for j := range res {
				kb.Put(I, h.EqnNumber(e, j), jac[i][j])
			}
		}
		return nil
	})
}

// AssembleResiduals assembles fb = -R using the active handler
func (o *Problem) AssembleResiduals(fb []float64) (err error) {
	for i := range fb {
		fb[i] = 0
	}
	h := o.Handler
	return o.eachElem(false, func(e ele.Element, res []float64, jac [][]float64) error {
		for i := range res {
			I := h.EqnNumber(e, i)
			if paranoid && I >= len(fb) {
				return fmt.Errorf("%w: equation %d of element %d is out of range [0,%d)", ErrDimension, I, e.Id(), len(fb))
			}
			fb[I] -= res[i]
		}
		return nil
	})
}

// DerivativeWrtParameter computes the derivative of the original residuals with respect to a
// parameter by forward finite differences
//  Output:
//   drdp -- [norig] dR/dp
func (o *Problem) DerivativeWrtParameter(p *ele.Parameter, drdp []float64) (err error) {
	n := o.Sol.Norig()
	if len(drdp) != n {
		return fmt.Errorf("%w: size of dR/dp (%d) must be equal to the number of original dofs (%d)", ErrDimension, len(drdp), n)
	}
	r0 := make([]float64, n)
	err = o.rawResiduals(r0)
	if err != nil {
		return
	}
	return o.perturbParam(p, FdStep, func() error {
		if err := o.rawResiduals(drdp); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			drdp[i] = (drdp[i] - r0[i]) / FdStep
		}
		return nil
	})
}

// AssembleEigenMatrices assembles the matrices of the generalised eigenproblem
//   (J - σ M) z = (μ - σ) M z
//  Output:
//   kb -- J - σ M
//   mb -- M
func (o *Problem) AssembleEigenMatrices(sigma float64, kb, mb *lsol.Triplet) (err error) {
	if o.tracking != nil {
		return fmt.Errorf("cannot assemble eigen matrices while %s tracking is active: %w", o.tracking.handler.Name(), ErrPrecondition)
	}
	prev := o.Handler
	h := &EigenHandler{prob: o, Sigma: sigma}
	o.Handler = h
	defer func() { o.Handler = prev }()
	kb.Start()
	mb.Start()
	for _, e := range o.Elems {
		n := h.Ndof(e)
		res := make([]float64, n)
		jac := utl.Alloc(n, n)
		mass := utl.Alloc(n, n)
		err = h.JacobianAndMass(e, res, jac, mass)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			I := h.EqnNumber(e, i)
			for j := 0; j < n; j++ {
				J := h.EqnNumber(e, j)
				kb.Put(I, J, jac[i][j])
				mb.Put(I, J, mass[i][j])
			}
		}
	}
	return
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// rawResiduals assembles the residuals of the original equations, bypassing the handler
func (o *Problem) rawResiduals(r []float64) (err error) {
	for i := range r {
		r[i] = 0
	}
	for _, e := range o.Elems {
		res := make([]float64, e.Ndof())
		err = e.Residuals(res, o.Sol)
		if err != nil {
			return
		}
		for i, v := range res {
			r[e.EqnNumber(i)] += v
		}
	}
	return
}

// elemResult holds the contribution of one element
type elemResult struct {
	res []float64
	jac [][]float64
}

// eachElem computes the contributions of all elements through the active handler and passes them
// to scatter in element order. With Nworkers > 1, contributions are computed concurrently if the
// handler allows it; scatter is always called sequentially
func (o *Problem) eachElem(withJac bool, scatter func(e ele.Element, res []float64, jac [][]float64) error) (err error) {

	// compute contribution of element
	h := o.Handler
	compute := func(e ele.Element, r *elemResult) error {
		n := h.Ndof(e)
		r.res = make([]float64, n)
		if withJac {
			r.jac = utl.Alloc(n, n)
			return h.Jacobian(e, r.res, r.jac)
		}
		return h.Residuals(e, r.res)
	}

	// serial
	nel := len(o.Elems)
	if o.Nworkers < 2 || nel < 2 || !h.Concurrent() {
		var r elemResult
		for _, e := range o.Elems {
			err = compute(e, &r)
			if err != nil {
				return
			}
			err = scatter(e, r.res, r.jac)
			if err != nil {
				return
			}
		}
		return
	}

	// concurrent
	results := make([]elemResult, nel)
	var g errgroup.Group
	for _, part := range partition(nel, o.Nworkers) {
		part := part // per-iteration copy (go < 1.22 loop semantics)
		g.Go(func() error {
			for i := part[0]; i < part[1]; i++ {
				if err := compute(o.Elems[i], &results[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		return
	}
	for i, e := range o.Elems {
		err = scatter(e, results[i].res, results[i].jac)
		if err != nil {
			return
		}
	}
	return
}

// partition splits [0,n) into at most np contiguous ranges {start, end}
func partition(n, np int) (parts [][2]int) {
	if np > n {
		np = n
	}
	if np < 1 {
		chk.Panic("cannot partition %d items into %d parts", n, np)
	}
	size, extra := n/np, n%np
	start := 0
	for p := 0; p < np; p++ {
		end := start + size
		if p < extra {
			end++
		}
		parts = append(parts, [2]int{start, end})
		start = end
	}
	return
}

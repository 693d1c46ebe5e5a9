// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/floats"
)

// PitchforkHandler implements the handler of the augmented system locating symmetry-breaking
// (pitchfork) bifurcations
//
//   R(u, λ) + σ ψ = 0        global dofs:  u  [0, N)
//           ψ · u = 0                      σ  N
//        J(u, λ) y = 0                      y  [N+1, 2N+1)
//           ψ · y = 1                      λ  2N+1
//
//  where ψ is the (normalised) symmetry vector and σ a slack variable vanishing at the solution.
//  In block mode, only u and σ are unknowns and the system matrix is A = [[J, ψ], [ψᵀ, 0]]
type PitchforkHandler struct {
	prob  *Problem       // the problem
	Param *ele.Parameter // bifurcation parameter
	Psi   []float64      // [N] normalised symmetry vector
	Count []int          // [N] number of elements referencing each dof
	N     int            // number of original dofs
	block bool           // block mode
	nelem float64        // number of elements
}

// NewPitchforkHandler returns a new pitchfork handler, appending σ, y and λ to the dofs of the
// problem. The initial null vector is the solution of J y = ψ scaled such that ψ · y = 1
func NewPitchforkHandler(prob *Problem, param *ele.Parameter, symmetry []float64) (o *PitchforkHandler, err error) {

	// check
	if prob.Sol.Size() != prob.Sol.Norig() {
		return nil, chk.Err("cannot track pitchfork: problem is augmented already")
	}
	if param.Index() >= 0 {
		return nil, chk.Err("cannot track pitchfork: parameter %q is folded already", param.Key)
	}
	N := prob.Sol.Norig()
	if len(symmetry) != N {
		return nil, fmt.Errorf("%w: size of symmetry vector (%d) must be equal to the number of dofs (%d)", ErrDimension, len(symmetry), N)
	}

	// handler
	o = new(PitchforkHandler)
	o.prob = prob
	o.Param = param
	o.N = N
	o.nelem = float64(len(prob.Elems))
	o.Count, err = countDofs(prob)
	if err != nil {
		return
	}

	// symmetry vector
	norm := floats.Norm(symmetry, 2)
	if norm == 0 {
		return nil, chk.Err("cannot track pitchfork: symmetry vector is zero")
	}
	o.Psi = make([]float64, N)
	floats.ScaleTo(o.Psi, 1.0/norm, symmetry)

	// initial null vector
	y := make([]float64, N)
	err = initialVector(prob, param, o.Psi, y)
	if err != nil {
		return nil, chk.Err("cannot compute initial null vector:\n%v", err)
	}
	py := floats.Dot(o.Psi, y)
	if py == 0 {
		return nil, chk.Err("cannot track pitchfork: initial null vector is orthogonal to the symmetry vector")
	}
	floats.Scale(1.0/py, y)

	// augment dofs
	prob.Sol.Append(0)
	prob.Sol.Append(y...)
	param.Fold(prob.Sol)
	return
}

// Name returns the name of the handler
func (o *PitchforkHandler) Name() string { return "pitchfork" }

// Parameter returns the bifurcation parameter
func (o *PitchforkHandler) Parameter() *ele.Parameter { return o.Param }

// Sigma returns the slack variable
func (o *PitchforkHandler) Sigma() float64 { return o.prob.Sol.Dof(o.N) }

// Eigenfunction returns a copy of the null vector
func (o *PitchforkHandler) Eigenfunction() [][]float64 {
	y := make([]float64, o.N)
	for I := 0; I < o.N; I++ {
		y[I] = o.y(I)
	}
	return [][]float64{y}
}

// Concurrent returns false: the Jacobian perturbs the shared dofs
func (o *PitchforkHandler) Concurrent() bool { return false }

// SolveBlockSystem switches to block mode: only u and σ are unknowns
func (o *PitchforkHandler) SolveBlockSystem() {
	if o.block {
		return
	}
	o.prob.Sol.SetNdof(o.N + 1)
	o.block = true
}

// SolveFullSystem switches to full mode: u, σ, y and λ are unknowns
func (o *PitchforkHandler) SolveFullSystem() {
	if !o.block {
		return
	}
	o.prob.Sol.SetNdof(2*o.N + 2)
	o.block = false
}

// Free restores the original dofs and unfolds the parameter
func (o *PitchforkHandler) Free() {
	o.SolveFullSystem()
	o.Param.Unfold()
	o.prob.Sol.Truncate(o.N)
}

// Ndof returns the number of equations of element
func (o *PitchforkHandler) Ndof(e ele.Element) int {
	if o.block {
		return e.Ndof() + 1
	}
	return 2*e.Ndof() + 2
}

// EqnNumber returns the global equation number of local equation i
func (o *PitchforkHandler) EqnNumber(e ele.Element, i int) int {
	raw := e.Ndof()
	switch {
	case i < raw:
		return e.EqnNumber(i)
	case i == raw:
		return o.N
	case i <= 2*raw:
		return o.N + 1 + e.EqnNumber(i-raw-1)
	}
	return 2*o.N + 1
}

// Residuals computes residuals
func (o *PitchforkHandler) Residuals(e ele.Element, res []float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, nil); err != nil {
			return
		}
	}
	raw := e.Ndof()
	if o.block {
		err = e.Residuals(res[:raw], o.prob.Sol)
		if err != nil {
			return
		}
		o.symmetryResiduals(e, res)
		return
	}
	jac := utl.Alloc(raw, raw)
	err = e.Jacobian(res[:raw], jac, o.prob.Sol)
	if err != nil {
		return
	}
	o.symmetryResiduals(e, res)
	o.nullResidual(e, jac, res[raw+1:2*raw+1])
	res[2*raw+1] = o.normResidual(e)
	return
}

// Jacobian computes residuals and Jacobian
func (o *PitchforkHandler) Jacobian(e ele.Element, res []float64, jac [][]float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, jac); err != nil {
			return
		}
	}

	// original residuals and Jacobian
	sol := o.prob.Sol
	raw := e.Ndof()
	zeroMat(jac)
	J := utl.Alloc(raw, raw)
	err = e.Jacobian(res[:raw], J, sol)
	if err != nil {
		return
	}
	o.symmetryResiduals(e, res)

	// bordered Jacobian: common to both modes
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			jac[i][j] = J[i][j]
		}
		I := e.EqnNumber(i)
		c := o.Psi[I] / float64(o.Count[I])
		jac[i][raw] = c
		jac[raw][i] = c
	}
	if o.block {
		return
	}

	// full mode: null vector block and normalisation row
	lam := 2*raw + 1
	o.nullResidual(e, J, res[raw+1:lam])
	res[lam] = o.normResidual(e)
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			jac[raw+1+i][raw+1+j] = J[i][j]
		}
		I := e.EqnNumber(i)
		jac[lam][raw+1+i] = o.Psi[I] / float64(o.Count[I])
	}

	// derivatives of J y with respect to u
	rp := make([]float64, raw)
	Jp := utl.Alloc(raw, raw)
	jyp := make([]float64, raw)
	for j := 0; j < raw; j++ {
		err = o.prob.perturb([]int{e.EqnNumber(j)}, []float64{FdStep}, func() error {
			if err := e.Jacobian(rp, Jp, sol); err != nil {
				return err
			}
			o.nullResidual(e, Jp, jyp)
			for i := 0; i < raw; i++ {
				jac[raw+1+i][j] = (jyp[i] - res[raw+1+i]) / FdStep
			}
			return nil
		})
		if err != nil {
			return
		}
	}

	// derivatives with respect to the parameter
	return o.prob.perturbParam(o.Param, FdStep, func() error {
		if err := e.Jacobian(rp, Jp, sol); err != nil {
			return err
		}
		o.nullResidual(e, Jp, jyp)
		for i := 0; i < raw; i++ {
			I := e.EqnNumber(i)
			r := rp[i] + o.Sigma()*o.Psi[I]/float64(o.Count[I])
			jac[i][lam] = (r - res[i]) / FdStep
			jac[raw+1+i][lam] = (jyp[i] - res[raw+1+i]) / FdStep
		}
		return nil
	})
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// y returns the component I of the null vector
func (o *PitchforkHandler) y(I int) float64 { return o.prob.Sol.Dof(o.N + 1 + I) }

// symmetryResiduals adds the slack term σ ψ to the original residuals in res[:raw] and computes
// the share of element e in the symmetry equation ψ · u
func (o *PitchforkHandler) symmetryResiduals(e ele.Element, res []float64) {
	raw := e.Ndof()
	sigma := o.Sigma()
	res[raw] = 0
	for i := 0; i < raw; i++ {
		I := e.EqnNumber(i)
		c := o.Psi[I] / float64(o.Count[I])
		res[i] += sigma * c
		res[raw] += c * o.prob.Sol.Dof(I)
	}
}

// normResidual returns the share of element e in the normalisation equation ψ · y - 1
func (o *PitchforkHandler) normResidual(e ele.Element) (r float64) {
	for i := 0; i < e.Ndof(); i++ {
		I := e.EqnNumber(i)
		r += o.Psi[I] * o.y(I) / float64(o.Count[I])
	}
	return r - 1.0/o.nelem
}

// nullResidual computes the element part of J y
func (o *PitchforkHandler) nullResidual(e ele.Element, jac [][]float64, jy []float64) {
	for i := range jy {
		jy[i] = 0
		for j := range jy {
			jy[i] += jac[i][j] * o.y(e.EqnNumber(j))
		}
	}
}

// normValue returns ψ · y
func (o *PitchforkHandler) normValue() (res float64) {
	for I := 0; I < o.N; I++ {
		res += o.Psi[I] * o.y(I)
	}
	return
}

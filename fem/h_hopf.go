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

// modes of the Hopf handler
const (
	hopfFull     = iota // u, φ, ψ, λ and ω are unknowns
	hopfStandard        // only u is unknown; the original problem
	hopfComplex         // φ, ψ, ω and a slack variable are unknowns; u and λ are fixed
)

// HopfHandler implements the handler of the augmented system locating Hopf bifurcations
//
//        R(u, λ)           = 0        global dofs:  u  [0, N)
//   J(u, λ) φ + ω M(u) ψ   = 0                      φ  [N, 2N)
//   J(u, λ) ψ - ω M(u) φ   = 0                      ψ  [2N, 3N)
//              C · φ       = 1                      λ  3N
//              C · ψ       = 0                      ω  3N+1
//
//  where z = φ + i ψ is the eigenvector of J z = i ω M z and C the normalisation vector.
//  In complex mode, the (2N+2)×(2N+2) system matrix is
//
//   K = [[  J  , ω M ,  M ψ , M φ ],
//        [ -ω M,  J  , -M φ , M ψ ],
//        [  Cᵀ ,  0  ,   0  ,  0  ],
//        [  0  ,  Cᵀ ,   0  ,  0  ]]
//
//  whose third column is the derivative with respect to ω and fourth column borders the
//  rotation z → i z; both are assembled element by element
type HopfHandler struct {
	prob  *Problem       // the problem
	Param *ele.Parameter // bifurcation parameter
	C     []float64      // [N] normalisation vector
	Count []int          // [N] number of elements referencing each dof
	N     int            // number of original dofs
	mode  int            // hopfFull, hopfStandard or hopfComplex
	nelem float64        // number of elements
}

// NewHopfHandler returns a new Hopf handler, appending φ, ψ, λ and ω to the dofs of the problem.
// The eigenvector guess (phi, psi) is rescaled such that C · φ = 1 and C · ψ = 0, with C = phi
func NewHopfHandler(prob *Problem, param *ele.Parameter, omega float64, phi, psi []float64) (o *HopfHandler, err error) {

	// check
	if prob.Sol.Size() != prob.Sol.Norig() {
		return nil, chk.Err("cannot track Hopf bifurcation: problem is augmented already")
	}
	if param.Index() >= 0 {
		return nil, chk.Err("cannot track Hopf bifurcation: parameter %q is folded already", param.Key)
	}
	N := prob.Sol.Norig()
	if len(phi) != N || len(psi) != N {
		return nil, fmt.Errorf("%w: size of eigenvector (phi=%d, psi=%d) must be equal to the number of dofs (%d)", ErrDimension, len(phi), len(psi), N)
	}

	// handler
	o = new(HopfHandler)
	o.prob = prob
	o.Param = param
	o.N = N
	o.nelem = float64(len(prob.Elems))
	o.Count, err = countDofs(prob)
	if err != nil {
		return
	}

	// normalise eigenvector
	o.C = append([]float64{}, phi...)
	a := floats.Dot(o.C, phi)
	b := floats.Dot(o.C, psi)
	d := a*a + b*b
	if d == 0 {
		return nil, chk.Err("cannot track Hopf bifurcation: eigenvector is zero")
	}
	ph := make([]float64, N)
	ps := make([]float64, N)
	for I := 0; I < N; I++ {
		ph[I] = (a*phi[I] + b*psi[I]) / d
		ps[I] = (a*psi[I] - b*phi[I]) / d
	}

	// augment dofs
	prob.Sol.Append(ph...)
	prob.Sol.Append(ps...)
	param.Fold(prob.Sol)
	prob.Sol.Append(omega)
	return
}

// Name returns the name of the handler
func (o *HopfHandler) Name() string { return "hopf" }

// Parameter returns the bifurcation parameter
func (o *HopfHandler) Parameter() *ele.Parameter { return o.Param }

// Omega returns the frequency
func (o *HopfHandler) Omega() float64 { return o.prob.Sol.Dof(3*o.N + 1) }

// Eigenfunction returns copies of the real and imaginary parts of the eigenvector
func (o *HopfHandler) Eigenfunction() [][]float64 {
	phi := make([]float64, o.N)
	psi := make([]float64, o.N)
	for I := 0; I < o.N; I++ {
		phi[I], psi[I] = o.phi(I), o.psi(I)
	}
	return [][]float64{phi, psi}
}

// Concurrent returns true in standard mode only; otherwise the Jacobian perturbs the shared dofs
func (o *HopfHandler) Concurrent() bool { return o.mode == hopfStandard }

// SolveStandardSystem switches to standard mode: only u is unknown
func (o *HopfHandler) SolveStandardSystem() {
	o.prob.Sol.SetNdof(o.N)
	o.mode = hopfStandard
}

// SolveComplexSystem switches to complex mode: φ, ψ, ω and the slack variable are unknowns
func (o *HopfHandler) SolveComplexSystem() {
	o.prob.Sol.SetNdof(2*o.N + 2)
	o.mode = hopfComplex
}

// SolveFullSystem switches to full mode: u, φ, ψ, λ and ω are unknowns
func (o *HopfHandler) SolveFullSystem() {
	o.prob.Sol.SetNdof(3*o.N + 2)
	o.mode = hopfFull
}

// Free restores the original dofs and unfolds the parameter
func (o *HopfHandler) Free() {
	o.SolveFullSystem()
	o.Param.Unfold()
	o.prob.Sol.Truncate(o.N)
}

// Ndof returns the number of equations of element: raw (standard), 2 raw + 2 (complex) or
// 3 raw + 2 (full).
//  Note: the complex mode carries the two normalisation rows C·φ - 1 and C·ψ and the two border
//        columns of ω and of the slack; i.e. it is not the bare 2 raw real form of J - iωM
func (o *HopfHandler) Ndof(e ele.Element) int {
	switch o.mode {
	case hopfStandard:
		return e.Ndof()
	case hopfComplex:
		return 2*e.Ndof() + 2
	}
	return 3*e.Ndof() + 2
}

// EqnNumber returns the global equation number of local equation i
func (o *HopfHandler) EqnNumber(e ele.Element, i int) int {
	raw := e.Ndof()
	switch o.mode {
	case hopfStandard:
		return e.EqnNumber(i)
	case hopfComplex:
		switch {
		case i < raw:
			return e.EqnNumber(i)
		case i < 2*raw:
			return o.N + e.EqnNumber(i-raw)
		}
		return 2*o.N + i - 2*raw
	}
	switch {
	case i < raw:
		return e.EqnNumber(i)
	case i < 2*raw:
		return o.N + e.EqnNumber(i-raw)
	case i < 3*raw:
		return 2*o.N + e.EqnNumber(i-2*raw)
	}
	return 3*o.N + i - 3*raw
}

// Residuals computes residuals
func (o *HopfHandler) Residuals(e ele.Element, res []float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, nil); err != nil {
			return
		}
	}
	raw := e.Ndof()
	if o.mode == hopfStandard {
		return e.Residuals(res, o.prob.Sol)
	}
	r := make([]float64, raw)
	J := utl.Alloc(raw, raw)
	M := utl.Alloc(raw, raw)
	err = e.JacobianAndMass(r, J, M, o.prob.Sol)
	if err != nil {
		return
	}
	if o.mode == hopfComplex {
		o.complexResiduals(e, J, M, res[:2*raw])
		res[2*raw], res[2*raw+1] = o.normResiduals(e)
		return
	}
	copy(res, r)
	o.complexResiduals(e, J, M, res[raw:3*raw])
	res[3*raw], res[3*raw+1] = o.normResiduals(e)
	return
}

// Jacobian computes residuals and Jacobian
func (o *HopfHandler) Jacobian(e ele.Element, res []float64, jac [][]float64) (err error) {
	if paranoid {
		if err = checkDims(o, e, res, jac); err != nil {
			return
		}
	}
	if o.mode == hopfStandard {
		return e.Jacobian(res, jac, o.prob.Sol)
	}

	// original residuals, Jacobian and mass matrix
	sol := o.prob.Sol
	raw := e.Ndof()
	zeroMat(jac)
	r := make([]float64, raw)
	J := utl.Alloc(raw, raw)
	M := utl.Alloc(raw, raw)
	err = e.JacobianAndMass(r, J, M, sol)
	if err != nil {
		return
	}

	// complex block: rows and columns of φ start at p; ψ at p+raw
	p := 0
	if o.mode == hopfFull {
		p = raw
	}
	w := o.Omega()
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			jac[p+i][p+j] = J[i][j]
			jac[p+i][p+raw+j] = w * M[i][j]
			jac[p+raw+i][p+j] = -w * M[i][j]
			jac[p+raw+i][p+raw+j] = J[i][j]
		}
	}
	mphi, mpsi := o.massProducts(e, M)
	for j := 0; j < raw; j++ {
		k := e.EqnNumber(j)
		c := o.C[k] / float64(o.Count[k])
		jac[p+2*raw][p+j] = c
		jac[p+2*raw+1][p+raw+j] = c
	}

	// complex mode: ω and slack columns
	if o.mode == hopfComplex {
		o.complexResiduals(e, J, M, res[:2*raw])
		res[2*raw], res[2*raw+1] = o.normResiduals(e)
		for i := 0; i < raw; i++ {
			jac[i][2*raw], jac[i][2*raw+1] = mpsi[i], mphi[i]
			jac[raw+i][2*raw], jac[raw+i][2*raw+1] = -mphi[i], mpsi[i]
		}
		return
	}

	// full mode: residuals, Jacobian of R and ω column
	lam, omg := 3*raw, 3*raw+1
	copy(res, r)
	o.complexResiduals(e, J, M, res[raw:lam])
	res[lam], res[omg] = o.normResiduals(e)
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			jac[i][j] = J[i][j]
		}
		jac[raw+i][omg] = mpsi[i]
		jac[2*raw+i][omg] = -mphi[i]
	}

	// derivatives of the complex residuals with respect to u
	rp := make([]float64, raw)
	Jp := utl.Alloc(raw, raw)
	Mp := utl.Alloc(raw, raw)
	cp := make([]float64, 2*raw)
	for j := 0; j < raw; j++ {
		err = o.prob.perturb([]int{e.EqnNumber(j)}, []float64{FdStep}, func() error {
			if err := e.JacobianAndMass(rp, Jp, Mp, sol); err != nil {
				return err
			}
			o.complexResiduals(e, Jp, Mp, cp)
			for i := 0; i < 2*raw; i++ {
				jac[raw+i][j] = (cp[i] - res[raw+i]) / FdStep
			}
			return nil
		})
		if err != nil {
			return
		}
	}

	// derivatives with respect to the parameter
	return o.prob.perturbParam(o.Param, FdStep, func() error {
		if err := e.JacobianAndMass(rp, Jp, Mp, sol); err != nil {
			return err
		}
		o.complexResiduals(e, Jp, Mp, cp)
		for i := 0; i < raw; i++ {
			jac[i][lam] = (rp[i] - res[i]) / FdStep
		}
		for i := 0; i < 2*raw; i++ {
			jac[raw+i][lam] = (cp[i] - res[raw+i]) / FdStep
		}
		return nil
	})
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// phi returns the component I of the real part of the eigenvector
func (o *HopfHandler) phi(I int) float64 { return o.prob.Sol.Dof(o.N + I) }

// psi returns the component I of the imaginary part of the eigenvector
func (o *HopfHandler) psi(I int) float64 { return o.prob.Sol.Dof(2*o.N + I) }

// complexResiduals computes the element part of (J φ + ω M ψ, J ψ - ω M φ)
//  Output:
//   res -- [2*raw]
func (o *HopfHandler) complexResiduals(e ele.Element, J, M [][]float64, res []float64) {
	raw := e.Ndof()
	w := o.Omega()
	for i := 0; i < raw; i++ {
		res[i], res[raw+i] = 0, 0
		for j := 0; j < raw; j++ {
			k := e.EqnNumber(j)
			ph, ps := o.phi(k), o.psi(k)
			res[i] += J[i][j]*ph + w*M[i][j]*ps
			res[raw+i] += J[i][j]*ps - w*M[i][j]*ph
		}
	}
}

// massProducts returns the element parts of M φ and M ψ
func (o *HopfHandler) massProducts(e ele.Element, M [][]float64) (mphi, mpsi []float64) {
	raw := e.Ndof()
	mphi = make([]float64, raw)
	mpsi = make([]float64, raw)
	for i := 0; i < raw; i++ {
		for j := 0; j < raw; j++ {
			k := e.EqnNumber(j)
			mphi[i] += M[i][j] * o.phi(k)
			mpsi[i] += M[i][j] * o.psi(k)
		}
	}
	return
}

// normResiduals returns the shares of element e in the normalisation equations C · φ - 1 and C · ψ
func (o *HopfHandler) normResiduals(e ele.Element) (rphi, rpsi float64) {
	for i := 0; i < e.Ndof(); i++ {
		I := e.EqnNumber(i)
		c := o.C[I] / float64(o.Count[I])
		rphi += c * o.phi(I)
		rpsi += c * o.psi(I)
	}
	return rphi - 1.0/o.nelem, rpsi
}

// normValues returns C · φ and C · ψ
func (o *HopfHandler) normValues() (cphi, cpsi float64) {
	for I := 0; I < o.N; I++ {
		cphi += o.C[I] * o.phi(I)
		cpsi += o.C[I] * o.psi(I)
	}
	return
}

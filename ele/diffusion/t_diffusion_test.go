// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diffusion

import (
	"testing"

	"github.com/cpmech/gobif/ele"
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// newBratu allocates a bratu element through the factory
func newBratu(tst *testing.T, eqs []int, lam float64) (e ele.Element, params map[string]*ele.Parameter) {
	params = map[string]*ele.Parameter{"lambda": ele.NewParameter("lambda", lam)}
	edat := &inp.ElemData{
		Type:  "bratu",
		Eqs:   eqs,
		Prms:  map[string]float64{"xa": 0, "xb": 0.5, "k": 1, "rho": 1},
		Param: "lambda",
	}
	e, err := ele.New(0, edat, params)
	require.NoError(tst, err)
	return
}

func Test_bratu01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bratu01. residuals and mass matrix")

	e, _ := newBratu(tst, []int{0, 1}, 2)
	chk.Int(tst, "ndof", e.Ndof(), 2)
	chk.Ints(tst, "eqs", []int{e.EqnNumber(0), e.EqnNumber(1)}, []int{0, 1})

	// u = 0 => r = -λ ∫ S dx = -λ L / 2
	sol := ele.NewSolution(2)
	res := make([]float64, 2)
	jac := utl.Alloc(2, 2)
	mass := utl.Alloc(2, 2)
	require.NoError(tst, e.JacobianAndMass(res, jac, mass, sol))
	chk.Array(tst, "res", 1e-15, res, []float64{-0.5, -0.5})

	// consistent mass: ρ L / 6 [[2, 1], [1, 2]]
	chk.Deep2(tst, "mass", 1e-15, mass, [][]float64{{1.0 / 6.0, 1.0 / 12.0}, {1.0 / 12.0, 1.0 / 6.0}})

	// linear field without source: r = k (u1 - u0) / L {-1, 1}
	e, params := newBratu(tst, []int{0, 1}, 0)
	sol.SetValues([]float64{1, 2})
	require.NoError(tst, e.Residuals(res, sol))
	chk.Array(tst, "res (λ=0)", 1e-14, res, []float64{-2, 2})
	params["lambda"].Set(1)
	require.NoError(tst, e.Residuals(res, sol))
	if res[0] > -2 || res[1] > 2 {
		tst.Errorf("source term should decrease the residuals: res = %v", res)
	}
}

func Test_bratu02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bratu02. Jacobian versus finite differences")

	for _, eqs := range [][]int{{0, 1}, {-1, 0}, {1, -1}} {
		e, _ := newBratu(tst, eqs, 1.5)
		n := e.Ndof()
		sol := ele.NewSolution(2)
		sol.SetValues([]float64{0.3, -0.2})
		res := make([]float64, n)
		jac := utl.Alloc(n, n)
		require.NoError(tst, e.Jacobian(res, jac, sol))
		tmp := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				J := e.EqnNumber(j)
				u0 := sol.Dof(J)
				dnum := fd.Derivative(func(x float64) float64 {
					sol.SetDof(J, x)
					e.Residuals(tmp, sol)
					sol.SetDof(J, u0)
					return tmp[i]
				}, u0, &fd.Settings{Formula: fd.Central, Step: 1e-6})
				chk.AnaNum(tst, io.Sf("eqs=%v dR%d/du%d", eqs, i, j), 1e-8, jac[i][j], dnum, chk.Verbose)
			}
		}
	}
}

func Test_bratu03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bratu03. allocation errors")

	params := map[string]*ele.Parameter{"lambda": ele.NewParameter("lambda", 1)}
	for _, edat := range []*inp.ElemData{
		{Type: "bratu", Eqs: []int{0}, Prms: map[string]float64{"xa": 0, "xb": 1}, Param: "lambda"},
		{Type: "bratu", Eqs: []int{-1, -1}, Prms: map[string]float64{"xa": 0, "xb": 1}, Param: "lambda"},
		{Type: "bratu", Eqs: []int{0, 1}, Prms: map[string]float64{"xa": 1, "xb": 0}, Param: "lambda"},
		{Type: "bratu", Eqs: []int{0, 1}, Prms: map[string]float64{"xa": 0, "xb": 1}, Param: "mu"},
	} {
		_, err := ele.New(3, edat, params)
		require.Error(tst, err)
		io.Pforan("%v\n", err)
	}

	// overflow of source term
	e, _ := newBratu(tst, []int{0, 1}, 1)
	sol := ele.NewSolution(2)
	sol.SetValues([]float64{800, 800})
	require.Error(tst, e.Residuals(make([]float64, 2), sol))
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical solutions of the problems used to verify the trackers
package ana

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Bratu implements the solution of the one-dimensional Bratu-Gelfand problem
//
//     d²u
//     ─── + λ exp(u) = 0     on [0, 1]     u(0) = u(1) = 0
//     dx²
//
//   u(x) = -2 ln[ cosh((x - 1/2) θ / 2) / cosh(θ / 4) ]   with   θ² = 2 λ cosh²(θ / 4)
//
//  Each θ > 0 gives one solution; λ(θ) has a single maximum (fold) at t tanh(t) = 1 with t = θ/4
type Bratu struct {
	Tol    float64 // tolerance for the critical point
	NmaxIt int     // max number of iterations
}

// NewBratu returns a new Bratu solution with default tolerances
func NewBratu() *Bratu {
	return &Bratu{Tol: 1e-15, NmaxIt: 50}
}

// Lambda returns the parameter corresponding to θ
func (o *Bratu) Lambda(θ float64) float64 {
	c := math.Cosh(θ / 4.0)
	return θ * θ / (2.0 * c * c)
}

// U returns the solution at x corresponding to θ
func (o *Bratu) U(x, θ float64) float64 {
	return -2.0 * math.Log(math.Cosh((x-0.5)*θ/2.0)/math.Cosh(θ/4.0))
}

// Umax returns the maximum of the solution (at x = 1/2) corresponding to θ
func (o *Bratu) Umax(θ float64) float64 {
	return 2.0 * math.Log(math.Cosh(θ/4.0))
}

// Critical returns θ and λ at the fold point by solving t tanh(t) = 1 with Newton's method
func (o *Bratu) Critical() (θ, λ float64, err error) {
	t := 1.0
	for it := 0; it < o.NmaxIt; it++ {
		th := math.Tanh(t)
		f := t*th - 1.0
		df := th + t*(1.0-th*th)
		δ := f / df
		t -= δ
		if math.Abs(δ) < o.Tol {
			θ = 4.0 * t
			return θ, o.Lambda(θ), nil
		}
	}
	return 0, 0, chk.Err("Bratu: cannot find critical point after %d iterations", o.NmaxIt)
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

// Brusselator implements the steady state and the Hopf point of the Brusselator kinetics
//
//   du/dt = A - (B+1) u + u² v
//   dv/dt = B u - u² v
//
//  The steady state (A, B/A) has eigenvalues ±iA at B = 1 + A²
type Brusselator struct {
	A float64 // constant A
}

// Steady returns the steady state for the given B
func (o *Brusselator) Steady(b float64) (u, v float64) {
	return o.A, b / o.A
}

// Hopf returns the critical value of B and the frequency
func (o *Brusselator) Hopf() (b, ω float64) {
	return 1.0 + o.A*o.A, o.A
}

// Eigenvector returns the real (φ) and imaginary (ψ) parts of the critical eigenvector z
// satisfying J z = iω z, scaled such that c · z = 1
func (o *Brusselator) Eigenvector(c []float64) (φ, ψ []float64) {
	_, ω := o.Hopf()

	// J = [[A², A²], [-(1+A²), -A²]] at the Hopf point => z = (A², iω - A²)
	a2 := o.A * o.A
	z := []complex128{complex(a2, 0), complex(-a2, ω)}
	var s complex128
	for i := range c {
		s += complex(c[i], 0) * z[i%2]
	}
	φ = make([]float64, len(c))
	ψ = make([]float64, len(c))
	for i := range c {
		w := z[i%2] / s
		φ[i], ψ[i] = real(w), imag(w)
	}
	return
}

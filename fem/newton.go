// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/floats"
)

// Newton runs Newton-Raphson iterations on the system defined by the active handler until the
// residuals or the corrections are small enough. The linear systems are solved by the active
// linear solver (e.g. a block solver while tracking a bifurcation)
func (o *Problem) Newton() (err error) {

	// auxiliary variables
	var it int
	var largFb, largFb0, Lδu float64
	var prevFb, prevLδu float64
	var ndvg int

	// message
	if o.Ctrl.ShowR {
		io.Pf("\n%4s%23s%23s\n", "it", "largFb", "Lδu")
		defer func() {
			io.Pf("%4d%23.15e%23.15e\n", it, largFb, Lδu)
		}()
	}

	// residuals history
	var resids *[]float64
	if o.Summary != nil {
		o.Summary.Resids = append(o.Summary.Resids, nil)
		resids = &o.Summary.Resids[len(o.Summary.Resids)-1]
	}

	// iterations
	for it = 0; it < o.Ctrl.NmaxIt; it++ {

		// assemble right-hand side vector (fb) with negative of residuals
		n := o.Ndof()
		fb := make([]float64, n)
		err = o.AssembleResiduals(fb)
		if err != nil {
			return
		}

		// find largest absolute component of fb
		largFb = floats.Norm(fb, math.Inf(1))
		if resids != nil {
			*resids = append(*resids, largFb)
		}

		// check largFb value
		if it == 0 {
			largFb0 = largFb
			if largFb < o.Ctrl.FbMin {
				return
			}
		} else {
			if largFb < o.Ctrl.FbTol*largFb0 { // converged on fb
				return
			}
			if largFb < o.Ctrl.FbMin { // converged with smallest value of fb
				return
			}
		}

		// check divergence on fb
		if it > 1 && o.Ctrl.DvgCtrl {
			if largFb > prevFb {
				ndvg++
				if ndvg > o.Ctrl.NdvgMax {
					return chk.Err("Newton: diverging: largFb=%g > prevFb=%g after %d iterations", largFb, prevFb, it)
				}
			} else {
				ndvg = 0
			}
		}
		prevFb = largFb

		// solve for wb := δy
		wb := make([]float64, n)
		err = o.LinSol.Solve(o, wb)
		if err != nil {
			return chk.Err("Newton: %s solver failed at iteration %d:\n%v", o.LinSol.Name(), it, err)
		}

		// update dofs (y)
		for i := 0; i < n; i++ {
			o.Sol.AddToDof(i, wb[i]) // y += δy
		}
		if o.tracking != nil {
			o.ActionsAfterChangeInParameter()
		}

		// compute RMS norm of δy and check convergence on δy
		Lδu = rmsErr(wb, o.Ctrl.Atol, o.Ctrl.Rtol, o.Sol.Values())

		// message
		if o.Ctrl.ShowR {
			io.Pf("%4d%23.15e%23.15e\n", it, largFb, Lδu)
		}

		// stop if converged on δy
		if Lδu < o.Ctrl.Itol {
			return
		}

		// check divergence on Lδu
		if it > 1 && o.Ctrl.DvgCtrl {
			if Lδu > prevLδu {
				ndvg++
				if ndvg > o.Ctrl.NdvgMax {
					return chk.Err("Newton: diverging: Lδu=%g > prevLδu=%g after %d iterations", Lδu, prevLδu, it)
				}
			}
		}
		prevLδu = Lδu
	}

	// check if iterations diverged
	return chk.Err("Newton: did not converge after %d iterations (largFb=%g, Lδu=%g)", it, largFb, Lδu)
}

// rmsErr returns the root-mean-square of the corrections scaled by the tolerances
//   rms = sqrt(Σ (δᵢ / (atol + rtol |vᵢ|))² / n)
func rmsErr(δ []float64, atol, rtol float64, v []float64) (res float64) {
	if len(δ) == 0 {
		return
	}
	for i, d := range δ {
		s := d / (atol + rtol*math.Abs(v[i]))
		res += s * s
	}
	return math.Sqrt(res / float64(len(δ)))
}

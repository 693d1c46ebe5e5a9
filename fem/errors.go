// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"

	"github.com/cpmech/gobif/lsol"
)

// error kinds. Errors returned by this package wrap one of these values; use errors.Is to check
var (

	// ErrUnsupported indicates an operation a handler cannot provide; e.g. residuals of an eigenproblem
	ErrUnsupported = errors.New("unsupported operation")

	// ErrPrecondition indicates an operation called in an invalid state; e.g. Resolve before Solve
	ErrPrecondition = lsol.ErrPrecondition

	// ErrDimension indicates arrays with wrong sizes for the active mode. Element arrays are only
	// checked with -tags paranoid
	ErrDimension = errors.New("dimension mismatch")
)

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gobif/ele/diffusion"
	"github.com/cpmech/gobif/ele/lumped"
)

// enforce loading of all elements
func init() {
	_ = diffusion.Diffusion{}
	_ = lumped.Spring{}
	_ = lumped.Reaction{}
	_ = lumped.Brusselator{}
}

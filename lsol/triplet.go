// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Triplet holds the entries of a sparse matrix in coordinate format; repeated entries are added
type Triplet struct {
	m, n int         // dimensions
	dok  *sparse.DOK // dictionary of keys
}

// NewTriplet returns a new m×n Triplet
func NewTriplet(m, n int) (o *Triplet) {
	o = new(Triplet)
	o.Init(m, n)
	return
}

// Init (re)allocates the matrix
func (o *Triplet) Init(m, n int) {
	o.m, o.n = m, n
	o.dok = sparse.NewDOK(m, n)
}

// Start clears all entries
func (o *Triplet) Start() {
	o.dok = sparse.NewDOK(o.m, o.n)
}

// Size returns the dimensions
func (o *Triplet) Size() (m, n int) { return o.m, o.n }

// Put adds x to entry (i,j)
func (o *Triplet) Put(i, j int, x float64) {
	o.dok.Set(i, j, o.dok.At(i, j)+x)
}

// Get returns entry (i,j)
func (o *Triplet) Get(i, j int) float64 { return o.dok.At(i, j) }

// Nnz returns the number of stored entries
func (o *Triplet) Nnz() int { return o.dok.NNZ() }

// ToDense returns a dense copy of the matrix
func (o *Triplet) ToDense() *mat.Dense { return o.dok.ToDense() }

// ToCSR returns the matrix in compressed sparse row format
func (o *Triplet) ToCSR() *sparse.CSR { return o.dok.ToCSR() }

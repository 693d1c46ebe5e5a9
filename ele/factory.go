// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/gobif/inp"
	"github.com/cpmech/gosl/chk"
)

// AllocatorType defines a function that allocates an element
//  Input:
//   id     -- element Id
//   edat   -- element data
//   params -- all parameters of the problem
type AllocatorType func(id int, edat *inp.ElemData, params map[string]*Parameter) (Element, error)

// New returns a new element from factory
func New(id int, edat *inp.ElemData, params map[string]*Parameter) (ele Element, err error) {
	fcn, ok := allocators[edat.Type]
	if !ok {
		err = chk.Err("cannot get allocator for element {type=%q, id=%d}", edat.Type, id)
		return
	}
	ele, err = fcn(id, edat, params)
	if err != nil {
		err = chk.Err("cannot allocate element {type=%q, id=%d}:\n%v", edat.Type, id, err)
		return
	}
	if ele == nil {
		err = chk.Err("element {type=%q, id=%d} is not available", edat.Type, id)
	}
	return
}

// SetAllocator sets a new callback function to allocate an element
func SetAllocator(elementName string, fcn AllocatorType) {
	if _, ok := allocators[elementName]; ok {
		chk.Panic("cannot set allocator function for %q because element name exists already", elementName)
	}
	allocators[elementName] = fcn
}

// GetAllocator gets callback function to allocate an element
func GetAllocator(elementName string) AllocatorType {
	if fcn, ok := allocators[elementName]; ok {
		return fcn
	}
	chk.Panic("cannot get allocator function for element %q", elementName)
	return nil
}

// allocators holds all element allocators
var allocators = make(map[string]AllocatorType)

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// GetEqs checks and returns the equation numbers of an element
func GetEqs(edat *inp.ElemData, n int) (eqs []int, err error) {
	if len(edat.Eqs) != n {
		return nil, chk.Err("%q elements need %d equation numbers; %d were given", edat.Type, n, len(edat.Eqs))
	}
	return edat.Eqs, nil
}

// GetParam returns the parameter an element depends on; nil if the element does not depend on any
func GetParam(edat *inp.ElemData, params map[string]*Parameter) (p *Parameter, err error) {
	if edat.Param == "" {
		return
	}
	p, ok := params[edat.Param]
	if !ok {
		return nil, chk.Err("cannot find parameter %q", edat.Param)
	}
	return
}

// GetPrm returns an element constant or its default value
func GetPrm(edat *inp.ElemData, key string, dflt float64) float64 {
	if v, ok := edat.Prms[key]; ok {
		return v
	}
	return dflt
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from (.sim) JSON or YAML files
package inp

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"gopkg.in/yaml.v3"
)

// ParamData holds a scalar parameter of the problem; e.g. the load multiplier λ
type ParamData struct {
	Key string  `json:"key" yaml:"key"` // name of parameter. ex: "lambda"
	Val float64 `json:"val" yaml:"val"` // initial value
}

// ElemData holds element data
type ElemData struct {
	Type  string             `json:"type" yaml:"type"`   // type of element. ex: spring, reaction, bratu, brusselator
	Eqs   []int              `json:"eqs" yaml:"eqs"`     // global equation numbers of local dofs; -1 means prescribed (zero)
	Prms  map[string]float64 `json:"prms" yaml:"prms"`   // element constants. ex: {"k":1}
	Param string             `json:"param" yaml:"param"` // [optional] key of parameter the element depends on
	Cache bool               `json:"cache" yaml:"cache"` // element caches parameter-dependent data
}

// TrackData holds data for bifurcation tracking
type TrackData struct {
	Type     string    `json:"type" yaml:"type"`         // "", "fold", "pitchfork" or "hopf"
	Param    string    `json:"param" yaml:"param"`       // key of bifurcation parameter
	Block    bool      `json:"block" yaml:"block"`       // use block (bordering) linear solver
	Symmetry []float64 `json:"symmetry" yaml:"symmetry"` // pitchfork: symmetry-breaking vector
	Omega    float64   `json:"omega" yaml:"omega"`       // Hopf: initial guess of frequency
	Phi      []float64 `json:"phi" yaml:"phi"`           // Hopf: real part of initial eigenvector guess
	Psi      []float64 `json:"psi" yaml:"psi"`           // Hopf: imaginary part of initial eigenvector guess
}

// LinSolData holds data for linear solvers
type LinSolData struct {
	Name    string  `json:"name" yaml:"name"`       // "dense" or "bicgstab"
	Tol     float64 `json:"tol" yaml:"tol"`         // tolerance for iterative solvers
	MaxIt   int     `json:"maxit" yaml:"maxit"`     // max number of iterations for iterative solvers
	Verbose bool    `json:"verbose" yaml:"verbose"` // verbose?
}

// SolverData holds nonlinear solver data
type SolverData struct {
	NmaxIt   int     `json:"nmaxit" yaml:"nmaxit"`     // number of max iterations
	Atol     float64 `json:"atol" yaml:"atol"`         // absolute tolerance
	Rtol     float64 `json:"rtol" yaml:"rtol"`         // relative tolerance
	FbTol    float64 `json:"fbtol" yaml:"fbtol"`       // tolerance for convergence on fb
	FbMin    float64 `json:"fbmin" yaml:"fbmin"`       // minimum value of fb
	DvgCtrl  bool    `json:"dvgctrl" yaml:"dvgctrl"`   // use divergence control
	NdvgMax  int     `json:"ndvgmax" yaml:"ndvgmax"`   // max number of continued divergence
	ShowR    bool    `json:"showr" yaml:"showr"`       // show residual
	Nworkers int     `json:"nworkers" yaml:"nworkers"` // number of goroutines for element assembly; 0 or 1 => serial

	// derived
	Itol float64 `json:"-" yaml:"-"` // iterations tolerance
}

// Simulation holds all simulation data
type Simulation struct {

	// input data
	Desc   string       `json:"desc" yaml:"desc"`     // description of simulation
	DirOut string       `json:"dirout" yaml:"dirout"` // directory for output; e.g. /tmp/gobif
	Ndof   int          `json:"ndof" yaml:"ndof"`     // number of original dofs; 0 => 1 + max equation number
	Params []*ParamData `json:"params" yaml:"params"` // parameters
	Elems  []*ElemData  `json:"elems" yaml:"elems"`   // elements
	Ini    []float64    `json:"ini" yaml:"ini"`       // [optional] initial values of dofs
	Track  TrackData    `json:"track" yaml:"track"`   // bifurcation tracking
	Solver SolverData   `json:"solver" yaml:"solver"` // nonlinear solver data
	LinSol LinSolData   `json:"linsol" yaml:"linsol"` // linear solver data

	// derived
	Key string `json:"-" yaml:"-"` // simulation key; e.g. fold3.sim => fold3
}

// ReadSim reads all simulation data from a .sim (JSON) or .yaml file
func ReadSim(simfilepath string) (o *Simulation, err error) {

	// read file
	b, err := os.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("ReadSim: cannot read simulation file %q:\n%v", simfilepath, err)
	}

	// set default values
	o = new(Simulation)
	o.DirOut = "/tmp/gobif"
	o.Solver.SetDefault()
	o.LinSol.SetDefault()

	// decode
	ext := strings.ToLower(io.FnExt(simfilepath))
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, chk.Err("ReadSim: cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}
	o.Key = io.FnKey(simfilepath)

	// check and set derived values
	err = o.PostProcess()
	if err != nil {
		return nil, chk.Err("ReadSim: invalid data in %q:\n%v", simfilepath, err)
	}
	return
}

// PostProcess checks data and computes derived quantities
func (o *Simulation) PostProcess() (err error) {

	// elements
	if len(o.Elems) == 0 {
		return chk.Err("at least one element must be given")
	}
	maxeq := -1
	for i, edat := range o.Elems {
		if edat.Type == "" {
			return chk.Err("element %d has no type", i)
		}
		if edat.Prms == nil {
			edat.Prms = make(map[string]float64)
		}
		for _, eq := range edat.Eqs {
			maxeq = utl.Imax(maxeq, eq)
		}
		if edat.Param != "" && o.GetParam(edat.Param) == nil {
			return chk.Err("element %d depends on parameter %q which is not defined", i, edat.Param)
		}
	}

	// number of dofs
	if o.Ndof == 0 {
		o.Ndof = maxeq + 1
	}
	if maxeq >= o.Ndof {
		return chk.Err("equation number %d is out of range [0,%d)", maxeq, o.Ndof)
	}
	if len(o.Ini) > 0 && len(o.Ini) != o.Ndof {
		return chk.Err("number of initial values (%d) must be equal to ndof (%d)", len(o.Ini), o.Ndof)
	}

	// tracking
	switch o.Track.Type {
	case "":
	case "fold", "pitchfork", "hopf":
		if o.GetParam(o.Track.Param) == nil {
			return chk.Err("cannot track %s bifurcation with undefined parameter %q", o.Track.Type, o.Track.Param)
		}
	default:
		return chk.Err("tracking type %q is not available", o.Track.Type)
	}
	if o.Track.Type == "pitchfork" && len(o.Track.Symmetry) != o.Ndof {
		return chk.Err("pitchfork tracking needs a symmetry vector with %d components", o.Ndof)
	}
	if o.Track.Type == "hopf" && (len(o.Track.Phi) != o.Ndof || len(o.Track.Psi) != o.Ndof) {
		return chk.Err("Hopf tracking needs phi and psi vectors with %d components", o.Ndof)
	}

	// solver
	o.Solver.PostProcess()
	return
}

// GetParam returns parameter data by key; returns nil if not found
func (o *Simulation) GetParam(key string) *ParamData {
	for _, p := range o.Params {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// SetDefault sets default values
func (o *LinSolData) SetDefault() {
	o.Name = "dense"
	o.Tol = 1e-12
	o.MaxIt = 1000
}

// SetDefault set defaults values
func (o *SolverData) SetDefault() {
	o.NmaxIt = 20
	o.Atol = 1e-8
	o.Rtol = 1e-8
	o.FbTol = 1e-10
	o.FbMin = 1e-13
	o.NdvgMax = 20
}

// PostProcess performs a post-processing of the just read json file
func (o *SolverData) PostProcess() {
	o.Itol = utl.Max(10.0*1e-16/o.Rtol, utl.Min(0.01, math.Sqrt(o.Rtol)))
}

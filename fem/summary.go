// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
)

// Summary records a summary of the results of a simulation
type Summary struct {

	// main data
	Key     string      `json:"key"`     // filename key of simulation
	Track   string      `json:"track"`   // type of bifurcation; empty if none
	Param   string      `json:"param"`   // key of bifurcation parameter
	Value   float64     `json:"value"`   // critical value of parameter
	Extra   float64     `json:"extra"`   // σ (pitchfork) or ω (Hopf)
	U       []float64   `json:"u"`       // [norig] original dofs at the end of the simulation
	Eigen   [][]float64 `json:"eigen"`   // null (eigen) vectors
	Sign    int         `json:"sign"`    // sign of the determinant of the Jacobian
	Resids  [][]float64 `json:"resids"`  // largest residual at each iteration of each Newton run
	CPUtime string      `json:"cputime"` // elapsed time
}

// Save saves the summary to dirout/key_sum.json
func (o *Summary) Save(dirout string) (err error) {
	err = os.MkdirAll(dirout, 0777)
	if err != nil {
		return chk.Err("cannot create directory %q:\n%v", dirout, err)
	}
	fn := summaryPath(dirout, o.Key)
	fil, err := os.Create(fn)
	if err != nil {
		return chk.Err("cannot create summary file %q:\n%v", fn, err)
	}
	defer fil.Close()
	enc := json.NewEncoder(fil)
	enc.SetIndent("", "  ")
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary:\n%v", err)
	}
	return
}

// ReadSummary reads a summary saved by Save
func ReadSummary(dirout, key string) (o *Summary, err error) {
	fn := summaryPath(dirout, key)
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, chk.Err("cannot read summary %q:\n%v", fn, err)
	}
	o = new(Summary)
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot decode summary:\n%v", err)
	}
	return
}

// summaryPath returns the path of the summary file
func summaryPath(dirout, key string) string {
	return filepath.Join(dirout, key+"_sum.json")
}

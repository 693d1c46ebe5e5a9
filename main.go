// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gobif/fem"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	saveSummary := io.ArgToBool(2, true)
	doprof := io.ArgToInt(3, 0)

	// message
	if verbose {
		io.PfWhite("\nGobif -- bifurcation tracking of nonlinear finite element systems\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n")

		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"save summary", "saveSummary", saveSummary,
			"profiling: 0=none 1=CPU 2=MEM", "doprof", doprof,
		))
	}

	// profiling?
	switch doprof {
	case 1:
		defer utl.ProfCPU("/tmp/gobif", "cpu.pprof", !verbose)()
	case 2:
		defer utl.ProfMEM("/tmp/gobif", "mem.pprof", !verbose)()
	}

	// simulation
	analysis, err := fem.NewMain(fnamepath, saveSummary, verbose)
	if err != nil {
		chk.Panic("%v", err)
	}

	// run simulation
	err = analysis.Run()
	if err != nil {
		chk.Panic("Run failed:\n%v", err)
	}

	// results
	if analysis.Summary != nil {
		sum := analysis.Summary
		io.Pf("u = %v\n", sum.U)
		if sum.Track != "" {
			io.PfGreen("%s bifurcation located: %s = %.15g\n", sum.Track, sum.Param, sum.Value)
			io.Pf("extra = %.15g\n", sum.Extra)
			for i, v := range sum.Eigen {
				io.Pf("eigenfunction[%d] = %v\n", i, v)
			}
		}
		io.Pf("summary saved in %q\n", analysis.Sim.DirOut)
	}
}

// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package compile wires the core IR ladder (ast -> normalize -> cfg -> x86)
// behind the driver the CLI calls: parse, type-check, run the pipeline,
// emit assembly, then shell out to gcc to assemble and link against the
// runtime, mirroring the teacher's CompileTheWorld convention.
package compile

import (
	"corvid/ast"
	"corvid/compile/cfg"
	"corvid/compile/normalize"
	"corvid/compile/pass"
	"corvid/compile/x86"
	corvidruntime "corvid/runtime"
	"corvid/utils"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
)

const DebugDumpPipeline = false

// Pipeline returns the fixed ordered list of transforms from freshly parsed
// surface AST down to emittable x86 assembly text, alongside the two
// analyses instruction selection's successors depend on.
func Pipeline(namer *pass.Namer) *pass.Manager {
	return pass.NewManager(
		[]pass.Transform{
			normalize.ShrinkPass{},
			normalize.ExposeAllocationPass{},
			normalize.RCOPass{},
			cfg.ExplicateControlPass{},
			x86.SelectInstructionsPass{},
			x86.AllocateRegistersPass{},
			x86.PatchInstructionsPass{},
			x86.PreludeConclusionPass{},
		},
		[]pass.Analysis{x86.LivenessAnalysis{}, x86.InterferenceAnalysis{}},
		namer,
	)
}

// CompileToAsm parses, type-checks, and runs src through the pipeline,
// returning the emitted AT&T assembly text for the host's GOOS. names
// restricts the pipeline to the given pass subset when non-empty, backing
// the CLI's -p flag.
func CompileToAsm(src string, names []string) (string, error) {
	prog := ast.ParseProgram(src)
	if err := ast.TypeCheck(prog); err != nil {
		return "", err
	}
	m := Pipeline(pass.NewNamer())
	if len(names) > 0 {
		m.RestrictTo(names)
	}
	m.Debug = DebugDumpPipeline
	out := m.Run(prog)
	final, ok := out.(*x86.Program)
	if !ok {
		return "", fmt.Errorf("pipeline did not reach x86 assembly (restricted to %v)", names)
	}
	return x86.NewEmitter(goruntime.GOOS).Emit(final), nil
}

// CompileFile reads source, compiles it to an executable at outPath using
// the system gcc, and returns the final binary path. It writes the
// embedded runtime sources into a scratch directory alongside the emitted
// assembly, exactly as the teacher's CompileTheWorld stages a temp build
// directory before shelling out.
func CompileFile(sourcePath, outPath string, names []string) (string, error) {
	src, err := ioutil.ReadFile(sourcePath)
	if err != nil {
		return "", err
	}
	asm, err := CompileToAsm(string(src), names)
	if err != nil {
		return "", err
	}

	tempDir, err := ioutil.TempDir("", "corvid_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tempDir)

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	asmPath := filepath.Join(tempDir, base+".s")
	if err := ioutil.WriteFile(asmPath, []byte(asm), 0644); err != nil {
		return "", err
	}
	if err := corvidruntime.WriteSourcesTo(tempDir); err != nil {
		return "", err
	}

	utils.ExecuteCmd(tempDir, "gcc", "-g", "-std=c99", "-c", "runtime.c")
	utils.ExecuteCmd(tempDir, "gcc", "-g", "-c", base+".s")

	if outPath == "" {
		outPath = base
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return "", err
	}
	utils.ExecuteCmd(tempDir, "gcc", "-g", "-o", absOut, "runtime.o", base+".o")
	return absOut, nil
}

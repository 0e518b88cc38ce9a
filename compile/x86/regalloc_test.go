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
package x86

import (
	"corvid/ast"
	"corvid/compile/cfg"
	"corvid/compile/normalize"
	"corvid/compile/pass"
	"corvid/utils"
	"testing"
)

func allocateFrom(src string) *Program {
	p := ast.ParseProgram(src)
	namer := pass.NewNamer()
	m := pass.NewManager([]pass.Transform{
		normalize.ShrinkPass{},
		normalize.ExposeAllocationPass{},
		normalize.RCOPass{},
		cfg.ExplicateControlPass{},
		SelectInstructionsPass{},
		AllocateRegistersPass{},
	}, []pass.Analysis{LivenessAnalysis{}, InterferenceAnalysis{}}, namer)
	return m.Run(p).(*Program)
}

func collectOperands(p *Program) []Operand {
	var out []Operand
	for _, label := range p.Blocks {
		for _, ins := range p.Instrs[label] {
			i, ok := ins.(*Instr)
			if !ok {
				continue
			}
			out = append(out, i.Args...)
		}
	}
	return out
}

func TestAllocateRegistersLeavesNoVars(t *testing.T) {
	prog := allocateFrom(`
a = 1
b = 2
c = a + b
print(c)
`)
	for _, o := range collectOperands(prog) {
		if _, isVar := o.(Var); isVar {
			t.Fatalf("found leftover Var operand %v after register allocation", o)
		}
	}
}

func TestAllocateRegistersGivesInterferingVarsDistinctColors(t *testing.T) {
	// a and b are both live across each other's definition (both printed
	// after both are assigned), so they must never be colored the same,
	// meaning they never land in the same register or spill slot.
	p := ast.ParseProgram(`
a = 1
b = 2
print(a)
print(b)
`)
	namer := pass.NewNamer()
	m := pass.NewManager([]pass.Transform{
		normalize.ShrinkPass{},
		normalize.ExposeAllocationPass{},
		normalize.RCOPass{},
		cfg.ExplicateControlPass{},
		SelectInstructionsPass{},
	}, []pass.Analysis{LivenessAnalysis{}, InterferenceAnalysis{}}, namer)
	prog := m.Run(p).(*Program)
	graph := m.GetResult("interference").(*utils.Graph[string])
	if !graph.HasEdge("a", "b") {
		t.Fatalf("expected a and b to interfere")
	}
	colors := colorGraph(graph, collectVariables(prog))
	if colors["a"] == colors["b"] {
		t.Fatalf("interfering variables a and b were assigned the same color %d", colors["a"])
	}
}

func TestAllocateRegistersAssignsDistinctSpillSlots(t *testing.T) {
	// More simultaneously-live variables than allocatable registers forces
	// spills; every spilled variable must land on its own stack offset.
	prog := allocateFrom(`
a = 1
b = 2
c = 3
d = 4
e = 5
f = 6
g = 7
h = 8
i = 9
j = 10
k = 11
l = 12
m = 13
print(a + b + c + d + e + f + g + h + i + j + k + l + m)
`)
	offsets := make(map[int]bool)
	for _, o := range collectOperands(prog) {
		if d, ok := o.(Deref); ok && d.Base == "rbp" {
			offsets[d.Offset] = true
		}
	}
	if len(offsets) < 2 {
		t.Fatalf("expected at least two distinct spill slots, got %v", offsets)
	}
	for off := range offsets {
		if off >= 0 || off%8 != 0 {
			t.Fatalf("unexpected spill offset %d", off)
		}
	}
}

func TestAllocateRegistersComputesUsedCallee(t *testing.T) {
	prog := allocateFrom(`
a = 1
b = 2
c = 3
d = 4
e = 5
f = 6
g = 7
h = 8
i = 9
j = 10
k = 11
l = 12
print(a + b + c + d + e + f + g + h + i + j + k + l)
`)
	for _, r := range prog.UsedCallee {
		if !IsCalleeSaved(r) {
			t.Fatalf("UsedCallee contains non-callee-saved register %q", r)
		}
	}
	if prog.StackSpace < 0 || prog.StackSpace%8 != 0 {
		t.Fatalf("stack space %d is not a non-negative multiple of 8", prog.StackSpace)
	}
}

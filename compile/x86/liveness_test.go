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

func buildManager(src string) (*pass.Manager, *Program) {
	p := ast.ParseProgram(src)
	namer := pass.NewNamer()
	m := pass.NewManager(
		[]pass.Transform{
			normalize.ShrinkPass{},
			normalize.ExposeAllocationPass{},
			normalize.RCOPass{},
			cfg.ExplicateControlPass{},
			SelectInstructionsPass{},
		},
		[]pass.Analysis{LivenessAnalysis{}, InterferenceAnalysis{}},
		namer,
	)
	out := m.Run(p).(*Program)
	return m, out
}

func TestLivenessDropsDeadAfterLastUse(t *testing.T) {
	// b is never read, so it should not be live-after its own definition.
	m, prog := buildManager(`
a = 1
b = 2
print(a)
`)
	live := m.GetResult("liveness").(*LivenessResult)
	start := prog.Instrs[cfg.StartLabel]
	for _, ins := range start {
		if i, ok := ins.(*Instr); ok && i.Op == "movq" {
			if v, ok := i.Args[1].(Var); ok && v.Name == "b" {
				if live.LiveAfter[ins].Contains("b") {
					t.Fatalf("b should be dead immediately after its own definition")
				}
			}
		}
	}
}

func TestInterferenceNoEdgeOnMoveSource(t *testing.T) {
	m, _ := buildManager(`
a = 1
b = a
print(b)
`)
	g := m.GetResult("interference").(*utils.Graph[string])
	if g.HasEdge("a", "b") {
		t.Fatalf("movq a, b should not add an edge between a and b")
	}
}

func TestInterferenceEdgeBetweenSimultaneouslyLiveVars(t *testing.T) {
	m, _ := buildManager(`
a = 1
b = 2
print(a)
print(b)
`)
	g := m.GetResult("interference").(*utils.Graph[string])
	if !g.HasEdge("a", "b") {
		t.Fatalf("a and b are both live across each other's definition and should interfere")
	}
}

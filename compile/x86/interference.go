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
	"corvid/compile/pass"
	"corvid/utils"
)

// InterferenceAnalysis builds the conflict graph over locations (variables
// and physical registers) from liveness results. A move (movq/movzbq) is
// exempted from the edge it would otherwise create to its own source or
// destination, which leaves a moved-between pair free to receive the same
// color when nothing else conflicts (the coloring itself has no move bias).
type InterferenceAnalysis struct{}

func (InterferenceAnalysis) Name() string { return "interference" }

func (InterferenceAnalysis) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*Program)
	live := m.GetResult("liveness").(*LivenessResult)
	g := utils.NewGraph[string]()

	for _, label := range p.Blocks {
		for _, ins := range p.Instrs[label] {
			for _, loc := range instrLocations(ins) {
				g.AddVertex(loc)
			}
			la := live.LiveAfter[ins]
			if la == nil {
				continue
			}
			if isMove(ins) {
				addMoveEdges(g, ins.(*Instr), la)
				continue
			}
			_, write := readWrite(ins)
			for _, w := range write {
				la.ForEach(func(l string) {
					if l != w {
						g.AddEdge(w, l)
					}
				})
			}
		}
	}
	return g
}

func isMove(i Instruction) bool {
	ins, ok := i.(*Instr)
	return ok && (ins.Op == "movq" || ins.Op == "movzbq") && len(ins.Args) == 2
}

func addMoveEdges(g *utils.Graph[string], ins *Instr, la *utils.Set[string]) {
	d, dOk := locationName(ins.Args[1])
	if !dOk {
		return
	}
	s, sOk := locationName(ins.Args[0])
	la.ForEach(func(l string) {
		if l == d || (sOk && l == s) {
			return
		}
		g.AddEdge(d, l)
	})
}

func instrLocations(i Instruction) []string {
	read, write := readWrite(i)
	seen := make(map[string]bool)
	var out []string
	for _, l := range append(read, write...) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

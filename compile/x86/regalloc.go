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

// colorRegisters is the fixed bijection between a non-negative color and
// the physical register it names; colors 0..10 are exactly the eleven
// entries of AllocatableRegisters, in order.
var colorRegisters = buildColorRegisters()

func buildColorRegisters() *utils.BiMap[int, string] {
	b := utils.NewBiMap[int, string]()
	for i, r := range AllocatableRegisters {
		b.Put(i, r)
	}
	return b
}

// AllocateRegistersPass runs DSATUR graph coloring over the interference
// graph and rewrites every Var operand to either a physical register or a
// spill slot, then records which callee-saved registers the result
// actually clobbers.
type AllocateRegistersPass struct{}

func (AllocateRegistersPass) Name() string       { return "allocate_registers" }
func (AllocateRegistersPass) SourceLang() string { return "x86Var" }
func (AllocateRegistersPass) TargetLang() string { return "x86Reg" }

func (AllocateRegistersPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*Program)
	graph := m.GetResult("interference").(*utils.Graph[string])
	colors := colorGraph(graph, collectVariables(p))
	rewriteProgramOperands(p, colors)
	p.UsedCallee = computeUsedCallee(p)
	p.StackSpace = 8 * (countSpills(colors) + len(p.UsedCallee))
	return p
}

// collectVariables returns every distinct variable name, in first-occurrence
// order, which fixes the initial queue order so that the coloring (ties
// included) is a function of the program text alone.
func collectVariables(p *Program) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, label := range p.Blocks {
		for _, ins := range p.Instrs[label] {
			instr, ok := ins.(*Instr)
			if !ok {
				continue
			}
			for _, a := range instr.Args {
				if v, ok := a.(Var); ok {
					add(v.Name)
				}
			}
		}
	}
	return out
}

// colorGraph pre-colors every physical register with its fixed color, then
// repeatedly pops the maximum-saturation uncolored variable from a priority
// queue and assigns it the smallest color not already used by a colored
// neighbor.
func colorGraph(g *utils.Graph[string], variables []string) map[string]int {
	colors := make(map[string]int)
	for name, c := range ReservedColors {
		colors[name] = c
	}
	for c := 0; c < len(AllocatableRegisters); c++ {
		name, _ := colorRegisters.Get(c)
		colors[name] = c
	}

	neighborColors := make(map[string]*utils.Set[int], len(variables))
	pq := utils.NewPriorityQueue[string]()
	for _, v := range variables {
		if _, isPhysical := colors[v]; isPhysical {
			continue
		}
		used := utils.NewSet[int]()
		for _, n := range g.Neighbours(v) {
			if c, ok := colors[n]; ok {
				used.Add(c)
			}
		}
		neighborColors[v] = used
		pq.Push(v, used.Length())
	}

	for {
		v, ok := pq.Pop()
		if !ok {
			break
		}
		c := smallestAvailableColor(neighborColors[v])
		colors[v] = c
		for _, n := range g.Neighbours(v) {
			if !pq.Contains(n) {
				continue
			}
			if neighborColors[n].Add(c) {
				pq.Push(n, neighborColors[n].Length())
			}
		}
	}
	return colors
}

func smallestAvailableColor(used *utils.Set[int]) int {
	c := 0
	for used.Contains(c) {
		c++
	}
	return c
}

func rewriteProgramOperands(p *Program, colors map[string]int) {
	for _, label := range p.Blocks {
		for _, ins := range p.Instrs[label] {
			instr, ok := ins.(*Instr)
			if !ok {
				continue
			}
			for i, a := range instr.Args {
				instr.Args[i] = rewriteOperand(a, colors)
			}
		}
	}
}

// rewriteOperand maps a colored variable to its register or spill slot.
// Spill slot numbering starts at 1 for color 11 (-8(%rbp)), matching the
// stack layout the prelude/conclusion pass builds frame space for.
func rewriteOperand(o Operand, colors map[string]int) Operand {
	v, ok := o.(Var)
	if !ok {
		return o
	}
	c := colors[v.Name]
	if c < len(AllocatableRegisters) {
		name, _ := colorRegisters.Get(c)
		return Reg{name}
	}
	slot := c - (len(AllocatableRegisters) - 1)
	return Deref{Base: "rbp", Offset: -8 * slot}
}

func countSpills(colors map[string]int) int {
	spills := make(map[int]bool)
	for name, c := range colors {
		if _, isPhysical := ReservedColors[name]; isPhysical {
			continue
		}
		if c >= len(AllocatableRegisters) {
			spills[c] = true
		}
	}
	return len(spills)
}

func computeUsedCallee(p *Program) []string {
	var used []string
	for _, r := range CalleeSaved {
		if registerWrittenAnywhere(p, r) {
			used = append(used, r)
		}
	}
	return used
}

func registerWrittenAnywhere(p *Program, reg string) bool {
	for _, label := range p.Blocks {
		for _, ins := range p.Instrs[label] {
			_, write := readWrite(ins)
			for _, w := range write {
				if w == reg {
					return true
				}
			}
		}
	}
	return false
}

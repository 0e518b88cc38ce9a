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
	"corvid/compile/cfg"
	"corvid/compile/pass"
	"corvid/utils"
)

const MainLabel = "main"

// PreludeConclusionPass synthesizes the main and conclusion blocks around
// the already-patched body, saving and restoring every callee-saved
// register the allocator put to work and carving out 16-byte-aligned stack
// space for spills.
type PreludeConclusionPass struct{}

func (PreludeConclusionPass) Name() string       { return "prelude_conclusion" }
func (PreludeConclusionPass) SourceLang() string { return "x86Patched" }
func (PreludeConclusionPass) TargetLang() string { return "x86Asm" }

func (PreludeConclusionPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*Program)
	s := utils.Align(p.StackSpace, 16) - 8*len(p.UsedCallee)

	var main []Instruction
	main = append(main,
		&Instr{Op: "pushq", Args: []Operand{Reg{"rbp"}}},
		&Instr{Op: "movq", Args: []Operand{Reg{"rsp"}, Reg{"rbp"}}},
	)
	for _, r := range p.UsedCallee {
		main = append(main, &Instr{Op: "pushq", Args: []Operand{Reg{r}}})
	}
	if s > 0 {
		main = append(main, &Instr{Op: "subq", Args: []Operand{Imm{int64(s)}, Reg{"rsp"}}})
	}
	main = append(main, &Jump{Label: cfg.StartLabel})

	var conclusion []Instruction
	if s > 0 {
		conclusion = append(conclusion, &Instr{Op: "addq", Args: []Operand{Imm{int64(s)}, Reg{"rsp"}}})
	}
	for i := len(p.UsedCallee) - 1; i >= 0; i-- {
		conclusion = append(conclusion, &Instr{Op: "popq", Args: []Operand{Reg{p.UsedCallee[i]}}})
	}
	conclusion = append(conclusion,
		&Instr{Op: "popq", Args: []Operand{Reg{"rbp"}}},
		&Retq{},
	)

	out := NewProgram()
	out.StackSpace = p.StackSpace
	out.UsedCallee = p.UsedCallee
	out.AddBlock(MainLabel, main)
	for _, label := range p.Blocks {
		out.AddBlock(label, p.Instrs[label])
	}
	out.AddBlock(cfg.ConclusionLabel, conclusion)
	return out
}

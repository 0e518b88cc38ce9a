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

import "corvid/compile/pass"

const maxPatchableImm = 1 << 16

// PatchInstructionsPass rewrites operand shapes the assembler can't encode
// directly: a memory-to-memory instruction, an oversized immediate, and a
// cmpq whose second operand is an immediate. It finishes by dropping every
// movq a, a the allocator leaves behind when two variables happened to
// receive the same register.
type PatchInstructionsPass struct{}

func (PatchInstructionsPass) Name() string       { return "patch_instructions" }
func (PatchInstructionsPass) SourceLang() string { return "x86Reg" }
func (PatchInstructionsPass) TargetLang() string { return "x86Patched" }

func (PatchInstructionsPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*Program)
	for _, label := range p.Blocks {
		p.Instrs[label] = patchBlock(p.Instrs[label])
	}
	return p
}

func patchBlock(instrs []Instruction) []Instruction {
	out := make([]Instruction, 0, len(instrs))
	for _, ins := range instrs {
		out = append(out, patchInstr(ins)...)
	}
	return dropIdentityMoves(out)
}

// patchInstr applies the legality rewrites in order, first match wins.
func patchInstr(ins Instruction) []Instruction {
	i, ok := ins.(*Instr)
	if !ok || len(i.Args) != 2 {
		return []Instruction{ins}
	}
	src, dst := i.Args[0], i.Args[1]

	if IsMemory(src) && IsMemory(dst) {
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{src, Reg{"rax"}}},
			&Instr{Op: i.Op, Args: []Operand{Reg{"rax"}, dst}},
		}
	}
	if imm, ok := src.(Imm); ok && oversized(imm) {
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{imm, Reg{"rax"}}},
			&Instr{Op: i.Op, Args: []Operand{Reg{"rax"}, dst}},
		}
	}
	if imm, ok := dst.(Imm); ok && oversized(imm) {
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{imm, Reg{"rax"}}},
			&Instr{Op: i.Op, Args: []Operand{src, Reg{"rax"}}},
		}
	}
	if i.Op == "cmpq" {
		if imm, ok := dst.(Imm); ok {
			return []Instruction{
				&Instr{Op: "movq", Args: []Operand{imm, Reg{"rax"}}},
				&Instr{Op: "cmpq", Args: []Operand{src, Reg{"rax"}}},
			}
		}
	}
	return []Instruction{ins}
}

func oversized(imm Imm) bool {
	return imm.Value > maxPatchableImm || imm.Value < -maxPatchableImm
}

func dropIdentityMoves(instrs []Instruction) []Instruction {
	out := make([]Instruction, 0, len(instrs))
	for _, ins := range instrs {
		if i, ok := ins.(*Instr); ok && (i.Op == "movq" || i.Op == "movzbq") && len(i.Args) == 2 {
			if i.Args[0] == i.Args[1] {
				continue
			}
		}
		out = append(out, ins)
	}
	return out
}

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

import "testing"

func runPatch(instrs []Instruction) []Instruction {
	return patchBlock(instrs)
}

func TestPatchMemoryToMemoryGoesThroughRax(t *testing.T) {
	out := runPatch([]Instruction{
		&Instr{Op: "addq", Args: []Operand{Deref{"rbp", -8}, Deref{"rbp", -16}}},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 instructions, got %d: %v", len(out), out)
	}
	first := out[0].(*Instr)
	if first.Op != "movq" || first.Args[1] != (Reg{"rax"}) {
		t.Fatalf("expected first instruction to load into %%rax, got %v", first)
	}
	second := out[1].(*Instr)
	if second.Args[0] != (Reg{"rax"}) {
		t.Fatalf("expected second instruction to read from %%rax, got %v", second)
	}
}

func TestPatchOversizedImmediateLoadsRax(t *testing.T) {
	out := runPatch([]Instruction{
		&Instr{Op: "movq", Args: []Operand{Imm{1 << 20}, Reg{"rbx"}}},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 instructions for oversized immediate, got %v", out)
	}
}

func TestPatchCmpqImmediateSecondOperand(t *testing.T) {
	out := runPatch([]Instruction{
		&Instr{Op: "cmpq", Args: []Operand{Reg{"rbx"}, Imm{5}}},
	})
	if len(out) != 2 {
		t.Fatalf("expected cmpq with immediate 2nd operand to split into 2, got %v", out)
	}
	second := out[1].(*Instr)
	if second.Op != "cmpq" || second.Args[1] != (Reg{"rax"}) {
		t.Fatalf("expected rewritten cmpq against %%rax, got %v", second)
	}
}

func TestPatchDropsIdentityMove(t *testing.T) {
	out := runPatch([]Instruction{
		&Instr{Op: "movq", Args: []Operand{Reg{"rbx"}, Reg{"rbx"}}},
		&Instr{Op: "movq", Args: []Operand{Reg{"rbx"}, Reg{"rcx"}}},
	})
	if len(out) != 1 {
		t.Fatalf("expected identity move to be dropped, got %v", out)
	}
}

func TestPatchLeavesLegalInstructionAlone(t *testing.T) {
	out := runPatch([]Instruction{
		&Instr{Op: "addq", Args: []Operand{Imm{1}, Reg{"rbx"}}},
	})
	if len(out) != 1 {
		t.Fatalf("expected legal instruction to pass through unchanged, got %v", out)
	}
}

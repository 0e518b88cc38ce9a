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
	"testing"
)

func buildPrelude(stackSpace int, usedCallee []string) *Program {
	p := NewProgram()
	p.StackSpace = stackSpace
	p.UsedCallee = usedCallee
	p.AddBlock(cfg.StartLabel, []Instruction{&Retq{}})
	out := PreludeConclusionPass{}.Run(p, pass.NewManager(nil, nil, pass.NewNamer())).(*Program)
	return out
}

func TestPreludeOmitsSubWhenNoStackSpace(t *testing.T) {
	out := buildPrelude(0, nil)
	for _, ins := range out.Instrs[MainLabel] {
		if i, ok := ins.(*Instr); ok && i.Op == "subq" {
			t.Fatalf("did not expect a subq when stack_space is 0, got %v", out.Instrs[MainLabel])
		}
	}
}

func TestPreludePushesUsedCalleeInOrder(t *testing.T) {
	out := buildPrelude(0, []string{"rbx", "r12"})
	var pushed []string
	for _, ins := range out.Instrs[MainLabel] {
		if i, ok := ins.(*Instr); ok && i.Op == "pushq" {
			if r, ok := i.Args[0].(Reg); ok && r.Name != "rbp" {
				pushed = append(pushed, r.Name)
			}
		}
	}
	if len(pushed) != 2 || pushed[0] != "rbx" || pushed[1] != "r12" {
		t.Fatalf("expected pushq rbx then r12, got %v", pushed)
	}
}

func TestConclusionPopsUsedCalleeInReverse(t *testing.T) {
	out := buildPrelude(0, []string{"rbx", "r12"})
	var popped []string
	for _, ins := range out.Instrs[cfg.ConclusionLabel] {
		if i, ok := ins.(*Instr); ok && i.Op == "popq" {
			if r, ok := i.Args[0].(Reg); ok && r.Name != "rbp" {
				popped = append(popped, r.Name)
			}
		}
	}
	if len(popped) != 2 || popped[0] != "r12" || popped[1] != "rbx" {
		t.Fatalf("expected popq r12 then rbx, got %v", popped)
	}
}

func TestConclusionEndsInRetq(t *testing.T) {
	out := buildPrelude(16, []string{"rbx"})
	instrs := out.Instrs[cfg.ConclusionLabel]
	if _, ok := instrs[len(instrs)-1].(*Retq); !ok {
		t.Fatalf("expected conclusion to end in retq, got %v", instrs)
	}
}

func TestMainJumpsToStart(t *testing.T) {
	out := buildPrelude(0, nil)
	instrs := out.Instrs[MainLabel]
	j, ok := instrs[len(instrs)-1].(*Jump)
	if !ok || j.Label != cfg.StartLabel {
		t.Fatalf("expected main to end with jmp start, got %v", instrs)
	}
}

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
	"fmt"
	"strings"
)

// Instruction is one of Instr, Callq, Jump, JumpIf, or Retq.
type Instruction interface {
	instrNode()
}

// Instr is a plain opcode-and-operands instruction: "addq", "subq", "negq",
// "movq", "movzbq", "xorq", "cmpq", "set<cc>", "pushq", "popq". Operand
// order follows AT&T syntax (source(s) first, destination last).
type Instr struct {
	Op   string
	Args []Operand
}

type Callq struct {
	Symbol string
	Arity  int
}

type Jump struct {
	Label string
}

// JumpIf is a conditional jump; Cc is one of e, l, le, g, ge.
type JumpIf struct {
	Cc    string
	Label string
}

type Retq struct{}

func (*Instr) instrNode()   {}
func (*Callq) instrNode()   {}
func (*Jump) instrNode()    {}
func (*JumpIf) instrNode()  {}
func (*Retq) instrNode()    {}

func (i *Instr) String() string {
	if len(i.Args) == 0 {
		return i.Op
	}
	parts := make([]string, len(i.Args))
	for k, a := range i.Args {
		parts[k] = a.String()
	}
	return i.Op + " " + strings.Join(parts, ", ")
}

func (i *Callq) String() string { return fmt.Sprintf("callq %s", i.Symbol) }
func (i *Jump) String() string  { return fmt.Sprintf("jmp %s", i.Label) }
func (i *JumpIf) String() string {
	return fmt.Sprintf("j%s %s", i.Cc, i.Label)
}
func (i *Retq) String() string { return "retq" }

// Program is a label -> instruction-list mapping, carrying register
// allocation metadata that downstream passes (patch, prelude/conclusion)
// fill in once it is known.
type Program struct {
	Blocks []string // label order: the CFG's block order (mint order, start last)
	Instrs map[string][]Instruction

	StackSpace int      // bytes reserved for spills, not yet 16-aligned
	UsedCallee []string // callee-saved registers actually written, in fixed order
}

func NewProgram() *Program {
	return &Program{Instrs: make(map[string][]Instruction)}
}

func (p *Program) AddBlock(label string, instrs []Instruction) {
	if _, ok := p.Instrs[label]; !ok {
		p.Blocks = append(p.Blocks, label)
	}
	p.Instrs[label] = instrs
}

func (p *Program) String() string {
	var b strings.Builder
	for _, label := range p.Blocks {
		fmt.Fprintf(&b, "%s:\n", label)
		for _, instr := range p.Instrs[label] {
			fmt.Fprintf(&b, "  %s\n", instrString(instr))
		}
	}
	return b.String()
}

func instrString(i Instruction) string {
	switch v := i.(type) {
	case *Instr:
		return v.String()
	case *Callq:
		return v.String()
	case *Jump:
		return v.String()
	case *JumpIf:
		return v.String()
	case *Retq:
		return v.String()
	}
	return "<?x86-instr?>"
}

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
	"corvid/utils"
	"fmt"
	"strings"
)

// Emitter renders a fully patched, fully allocated Program as AT&T-syntax
// assembly text, applying the platform's external-symbol mangling
// convention to every label.
type Emitter struct {
	goos string
	buf  strings.Builder
}

func NewEmitter(goos string) *Emitter {
	return &Emitter{goos: goos}
}

// Emit renders the whole program: the .text directive and main's .globl
// declaration, then every block in Blocks order. The runtime globals
// (free_ptr, fromspace_end) are only referenced by name; no data
// directives are emitted for them.
func (e *Emitter) Emit(p *Program) string {
	e.buf.Reset()
	e.emit0(".text")
	e.buf.WriteString(fmt.Sprintf("  .globl %s\n", e.label(MainLabel)))
	for _, label := range p.Blocks {
		e.emitBlock(label, p.Instrs[label])
	}
	return e.buf.String()
}

func (e *Emitter) emitBlock(label string, instrs []Instruction) {
	e.buf.WriteString(fmt.Sprintf("%s:\n", e.label(label)))
	for _, ins := range instrs {
		e.emitInstr(ins)
	}
}

func (e *Emitter) label(n string) string {
	return utils.LabelName(e.goos, n)
}

func (e *Emitter) emitInstr(ins Instruction) {
	switch i := ins.(type) {
	case *Instr:
		e.emitPlain(i)
	case *Callq:
		e.emit1("callq", e.label(i.Symbol))
	case *Jump:
		e.emit1("jmp", e.label(i.Label))
	case *JumpIf:
		e.emit1("j"+i.Cc, e.label(i.Label))
	case *Retq:
		e.emit0("retq")
	}
}

func (e *Emitter) emitPlain(i *Instr) {
	switch len(i.Args) {
	case 0:
		e.emit0(i.Op)
	case 1:
		e.emit1(i.Op, e.operand(i.Args[0]))
	default:
		parts := make([]string, len(i.Args))
		for k, a := range i.Args {
			parts[k] = e.operand(a)
		}
		e.emit1(i.Op, strings.Join(parts, ", "))
	}
}

// operand renders one operand, resolving a Global reference through the
// label-naming convention since it names an external runtime symbol.
func (e *Emitter) operand(o Operand) string {
	if g, ok := o.(Global); ok {
		return fmt.Sprintf("%s(%%rip)", e.label(g.Name))
	}
	return o.String()
}

func (e *Emitter) emit0(mnemonic string) {
	e.buf.WriteString(fmt.Sprintf("  %s\n", mnemonic))
}

func (e *Emitter) emit1(mnemonic, operand string) {
	e.buf.WriteString(fmt.Sprintf("  %s %s\n", mnemonic, operand))
}

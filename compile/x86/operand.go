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

// Package x86 is the pseudo-x86 IR: the program stays in this shape from
// instruction selection through patching, narrowing at each stage (first
// Variable operands disappear at register allocation, then illegal operand
// pairings disappear at patching) until it is ready for direct text
// emission.
package x86

import "fmt"

// Operand is one of Imm, Reg, Deref, or Var. Var only survives until
// register allocation assigns every variable a Reg or a Deref.
type Operand interface {
	fmt.Stringer
	operandNode()
}

type Imm struct {
	Value int64
}

type Reg struct {
	Name string
}

// Deref is a fixed register-plus-offset memory reference; there is no
// indexed-addressing form, so any non-constant subscript index must be
// resolved to a register operand before an address can be built from it.
type Deref struct {
	Base   string
	Offset int
}

type Var struct {
	Name string
}

// Global is a RIP-relative reference to an external data symbol
// (free_ptr, fromspace_end). It is never a register or a variable, so the
// allocator and liveness analysis do not track it; instruction patching
// treats it as a memory operand (see IsMemory).
type Global struct {
	Name string
}

func (Imm) operandNode()    {}
func (Reg) operandNode()    {}
func (Deref) operandNode()  {}
func (Var) operandNode()    {}
func (Global) operandNode() {}

func (o Imm) String() string    { return fmt.Sprintf("$%d", o.Value) }
func (o Reg) String() string    { return "%" + o.Name }
func (o Var) String() string    { return o.Name }
func (o Global) String() string { return fmt.Sprintf("%s(%%rip)", o.Name) }
func (o Deref) String() string {
	if o.Offset == 0 {
		return fmt.Sprintf("(%%%s)", o.Base)
	}
	return fmt.Sprintf("%d(%%%s)", o.Offset, o.Base)
}

// IsMemory reports whether o addresses memory rather than a register or an
// immediate. Global counts as memory: it is a RIP-relative load/store just
// like Deref, so a Global paired with a Deref is still a memory-to-memory
// instruction the assembler can't encode directly.
func IsMemory(o Operand) bool {
	switch o.(type) {
	case Deref, Global:
		return true
	}
	return false
}

func IsImmediate(o Operand) bool {
	_, ok := o.(Imm)
	return ok
}

func RegName(o Operand) (string, bool) {
	switch v := o.(type) {
	case Reg:
		return v.Name, true
	}
	return "", false
}

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
	"corvid/compile/pass"
	"corvid/utils"
)

// SelectInstructionsPass lowers the CFG IR's straight-line statements and
// terminators to the pattern table: every block keeps its label, but its
// body becomes x86 instructions operating on Var/Imm/Reg/Deref/Global
// operands. Variables survive selection and are only eliminated by
// register allocation.
type SelectInstructionsPass struct{}

func (SelectInstructionsPass) Name() string       { return "select_instructions" }
func (SelectInstructionsPass) SourceLang() string { return "CLike" }
func (SelectInstructionsPass) TargetLang() string { return "x86Var" }

func (SelectInstructionsPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*cfg.Program)
	out := NewProgram()
	for _, label := range p.Order {
		out.AddBlock(label, selectBlock(p.Blocks[label]))
	}
	return out
}

func selectBlock(stmts []cfg.Stmt) []Instruction {
	var instrs []Instruction
	for _, s := range stmts {
		instrs = append(instrs, selectStmt(s)...)
	}
	return instrs
}

func selectStmt(s cfg.Stmt) []Instruction {
	switch st := s.(type) {
	case *cfg.Assign:
		return selectAssign(st.Name, st.Value)
	case *cfg.Print:
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{atom(st.Value), Reg{"rdi"}}},
			&Callq{Symbol: "print_int", Arity: 1},
		}
	case *cfg.Effect:
		return selectEffect(st.Value)
	case *cfg.SubscriptAssign:
		return selectSubscriptWrite(st.Tuple, st.Index, st.Value)
	case *cfg.Collect:
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{Imm{int64(st.Bytes)}, Reg{"rdi"}}},
			&Callq{Symbol: "collect", Arity: 1},
		}
	case *cfg.Goto:
		return []Instruction{&Jump{Label: st.Label}}
	case *cfg.IfGoto:
		return []Instruction{
			&Instr{Op: "cmpq", Args: []Operand{atom(st.Right), atom(st.Left)}},
			&JumpIf{Cc: ccFor(st.Op), Label: st.Then},
			&Jump{Label: st.Else},
		}
	case *cfg.Return:
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{atom(st.Value), Reg{"rax"}}},
			&Jump{Label: cfg.ConclusionLabel},
		}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

// selectEffect lowers an effect-only expression statement: its value is
// computed, if it has any side effect at all, and discarded.
func selectEffect(e ast.Expr) []Instruction {
	switch e.(type) {
	case *ast.InputIntExpr:
		return []Instruction{&Callq{Symbol: "read_int", Arity: 0}}
	default:
		return nil
	}
}

func selectAssign(name string, rhs ast.Expr) []Instruction {
	dst := Var{name}
	switch x := rhs.(type) {
	case *ast.BinExpr:
		return selectBinAssign(dst, x)
	case *ast.UnaryExpr:
		return selectUnaryAssign(dst, x)
	case *ast.CompareExpr:
		return selectCompareAssign(dst, x)
	case *ast.InputIntExpr:
		return []Instruction{
			&Callq{Symbol: "read_int", Arity: 0},
			&Instr{Op: "movq", Args: []Operand{Reg{"rax"}, dst}},
		}
	case *ast.SubscriptExpr:
		return selectSubscriptRead(dst, x.Tuple, x.Index)
	case *ast.LenExpr:
		return []Instruction{&Instr{Op: "movq", Args: []Operand{Imm{tupleLength(x.X)}, dst}}}
	case *ast.AllocateExpr:
		return selectAllocate(dst, x)
	default:
		// Atomic RHS: literal, name, or global.
		return []Instruction{&Instr{Op: "movq", Args: []Operand{atom(rhs), dst}}}
	}
}

func selectBinAssign(dst Var, x *ast.BinExpr) []Instruction {
	op := "addq"
	if x.Op == ast.OpSub {
		op = "subq"
	}
	left, right := atom(x.Left), atom(x.Right)
	if sameAsDst(x.Left, dst) {
		// x = x + a / x = x - a: the instruction is already two-operand.
		return []Instruction{&Instr{Op: op, Args: []Operand{right, dst}}}
	}
	if x.Op == ast.OpAdd && sameAsDst(x.Right, dst) {
		// addq is commutative: x = a + x also folds to a single addq.
		return []Instruction{&Instr{Op: op, Args: []Operand{left, dst}}}
	}
	return []Instruction{
		&Instr{Op: "movq", Args: []Operand{left, dst}},
		&Instr{Op: op, Args: []Operand{right, dst}},
	}
}

func selectUnaryAssign(dst Var, x *ast.UnaryExpr) []Instruction {
	if x.Op == ast.OpNot {
		if sameAsDst(x.X, dst) {
			return []Instruction{&Instr{Op: "xorq", Args: []Operand{Imm{1}, dst}}}
		}
		return []Instruction{
			&Instr{Op: "movq", Args: []Operand{atom(x.X), dst}},
			&Instr{Op: "xorq", Args: []Operand{Imm{1}, dst}},
		}
	}
	return []Instruction{
		&Instr{Op: "movq", Args: []Operand{atom(x.X), dst}},
		&Instr{Op: "negq", Args: []Operand{dst}},
	}
}

func selectCompareAssign(dst Var, x *ast.CompareExpr) []Instruction {
	return []Instruction{
		&Instr{Op: "cmpq", Args: []Operand{atom(x.Right), atom(x.Left)}},
		&Instr{Op: "set" + ccFor(x.Op), Args: []Operand{Reg{"al"}}},
		&Instr{Op: "movzbq", Args: []Operand{Reg{"al"}, dst}},
	}
}

// selectSubscriptRead and selectSubscriptWrite materialize the tuple
// pointer into the scratch register %r11 before dereferencing it, rather
// than building a Deref whose base is itself an unallocated variable: once
// register allocation runs, that variable might be spilled to a stack
// slot, and there is no x86 addressing mode that dereferences a memory
// operand in a single instruction.
func selectSubscriptRead(dst Var, tup, idx ast.Expr) []Instruction {
	offset := 8 * (constIndex(idx) + 1)
	return []Instruction{
		&Instr{Op: "movq", Args: []Operand{atom(tup), Reg{"r11"}}},
		&Instr{Op: "movq", Args: []Operand{Deref{Base: "r11", Offset: offset}, dst}},
	}
}

func selectSubscriptWrite(tup, idx, val ast.Expr) []Instruction {
	offset := 8 * (constIndex(idx) + 1)
	return []Instruction{
		&Instr{Op: "movq", Args: []Operand{atom(tup), Reg{"r11"}}},
		&Instr{Op: "movq", Args: []Operand{atom(val), Deref{Base: "r11", Offset: offset}}},
	}
}

// selectAllocate bumps the heap pointer and writes a one-word tag (the
// element count) at offset 0, matching the Expose-Allocation heap-check
// contract that guarantees fromspace_end has already been verified to
// leave enough room.
func selectAllocate(dst Var, x *ast.AllocateExpr) []Instruction {
	bytes := int64(8 * (x.Length + 1))
	return []Instruction{
		&Instr{Op: "movq", Args: []Operand{Global{"free_ptr"}, dst}},
		&Instr{Op: "addq", Args: []Operand{Imm{bytes}, Global{"free_ptr"}}},
		&Instr{Op: "movq", Args: []Operand{dst, Reg{"r11"}}},
		&Instr{Op: "movq", Args: []Operand{Imm{int64(x.Length)}, Deref{Base: "r11", Offset: 0}}},
	}
}

func constIndex(idx ast.Expr) int {
	lit, ok := idx.(*ast.IntLit)
	if !ok {
		panic("select_instructions: subscript index must be a compile-time constant")
	}
	return int(lit.Value)
}

func tupleLength(e ast.Expr) int64 {
	t := e.GetType()
	if t == nil || t.Kind != ast.KindTuple {
		panic("select_instructions: len() of a non-tuple operand")
	}
	return int64(len(t.Elems))
}

func sameAsDst(e ast.Expr, dst Var) bool {
	n, ok := e.(*ast.NameExpr)
	return ok && n.Name == dst.Name
}

func atom(e ast.Expr) Operand {
	switch x := e.(type) {
	case *ast.IntLit:
		return Imm{x.Value}
	case *ast.BoolLit:
		if x.Value {
			return Imm{1}
		}
		return Imm{0}
	case *ast.NameExpr:
		return Var{x.Name}
	case *ast.GlobalValueExpr:
		return Global{x.Name}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func ccFor(op ast.CmpOp) string {
	switch op {
	case ast.CmpEQ:
		return "e"
	case ast.CmpLT:
		return "l"
	case ast.CmpLE:
		return "le"
	case ast.CmpGT:
		return "g"
	case ast.CmpGE:
		return "ge"
	}
	utils.ShouldNotReachHere()
	return ""
}

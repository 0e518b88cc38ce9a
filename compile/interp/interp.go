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

// Package interp evaluates the core IR directly, without lowering to
// machine code. It runs the same node set at every stage a program passes
// through on its way to assembly -- the freshly parsed surface tree, the
// post-remove-complex-operands tree, and the explicate-control CFG -- so a
// pipeline run and a -e interpretation of the same source can be diffed
// stdout-for-stdout at whichever boundary a test cares about.
package interp

import (
	"bufio"
	"corvid/ast"
	"corvid/compile/cfg"
	"corvid/utils"
	"fmt"
	"io"
)

// simulatedHeapBytes bounds the machine's virtual free_ptr/fromspace_end
// pair, letting a program that calls collect() exercise the same
// out-of-heap panic path the compiled runtime would hit, without the
// interpreter actually managing raw memory.
const simulatedHeapBytes = 16 * 1024 * 1024

// TupleValue is the interpreter's heap object: a fixed-length, mutable,
// reference-typed cell. Two NameExpr reads of the same assigned tuple
// alias the same *TupleValue, matching the aliasing a real tuple pointer
// gives compiled code.
type TupleValue struct {
	Elems []interface{}
}

// RuntimeError is what a Machine's panics get converted to at the API
// boundary; it carries the same message the core passes would have
// panicked with.
type RuntimeError struct {
	msg string
}

func (e *RuntimeError) Error() string { return e.msg }

// Machine is a flat-environment tree-walking interpreter. Variables live
// in a single map regardless of the block they're assigned from, matching
// the language's lack of lexical scoping (ast.TypeCheck uses the same flat
// env).
type Machine struct {
	env map[string]interface{}
	in  *bufio.Reader
	out io.Writer

	freePtr      int64
	fromspaceEnd int64
}

// NewMachine builds a Machine reading input_int() calls from in and
// writing print statements to out.
func NewMachine(in io.Reader, out io.Writer) *Machine {
	return &Machine{
		env:          make(map[string]interface{}),
		in:           bufio.NewReader(in),
		out:          out,
		freePtr:      0,
		fromspaceEnd: simulatedHeapBytes,
	}
}

// RunProgram interprets a surface or post-RCO ast.Program (the same node
// set, narrower shapes downstream) from an empty environment.
func (m *Machine) RunProgram(prog *ast.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, isReturn := r.(*returnSignal); isReturn {
				return
			}
			err = &RuntimeError{msg: fmt.Sprintf("%v", r)}
		}
	}()
	m.execStmts(prog.Body)
	return nil
}

// RunCFG interprets an explicate-control cfg.Program, starting at
// cfg.StartLabel and following Goto/IfGoto terminators block to block
// until a Return statement ends the run.
func (m *Machine) RunCFG(prog *cfg.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{msg: fmt.Sprintf("%v", r)}
		}
	}()
	label := cfg.StartLabel
	for {
		block, ok := prog.Blocks[label]
		utils.Assert(ok, "interp: no block labeled %s", label)
		next, done := m.execBlock(block)
		if done {
			return nil
		}
		label = next
	}
}

// execBlock runs a CFG block's straight-line statements and reports where
// control goes next: the label a Goto/IfGoto names, or done=true once a
// Return terminator is reached.
func (m *Machine) execBlock(stmts []cfg.Stmt) (next string, done bool) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *cfg.Assign:
			m.env[st.Name] = m.eval(st.Value)
		case *cfg.Print:
			fmt.Fprintln(m.out, asInt(m.eval(st.Value)))
		case *cfg.Effect:
			m.eval(st.Value)
		case *cfg.SubscriptAssign:
			tuple := asTuple(m.eval(st.Tuple))
			idx := asInt(m.eval(st.Index))
			tuple.Elems[idx] = m.eval(st.Value)
		case *cfg.Collect:
			m.collect(int64(st.Bytes))
		case *cfg.Goto:
			return st.Label, false
		case *cfg.IfGoto:
			if m.evalCompare(st.Op, m.eval(st.Left), m.eval(st.Right)) {
				return st.Then, false
			}
			return st.Else, false
		case *cfg.Return:
			m.eval(st.Value)
			return "", true
		default:
			utils.Fatal("interp: unknown cfg statement shape %T", s)
		}
	}
	utils.Fatal("interp: block fell off the end without a terminator")
	return "", true
}

func (m *Machine) execStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		m.execStmt(s)
	}
}

func (m *Machine) execStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		m.env[st.Name] = m.eval(st.Value)
	case *ast.PrintStmt:
		fmt.Fprintln(m.out, asInt(m.eval(st.Value)))
	case *ast.ExprStmt:
		m.eval(st.Value)
	case *ast.IfStmt:
		if asBool(m.eval(st.Cond)) {
			m.execStmts(st.Then)
		} else {
			m.execStmts(st.Else)
		}
	case *ast.WhileStmt:
		for asBool(m.eval(st.Cond)) {
			m.execStmts(st.Body)
		}
	case *ast.SubscriptAssignStmt:
		tuple := asTuple(m.eval(st.Tuple))
		idx := asInt(m.eval(st.Index))
		tuple.Elems[idx] = m.eval(st.Value)
	case *ast.CollectStmt:
		m.collect(int64(st.Bytes))
	case *ast.ReturnStmt:
		panic(&returnSignal{value: m.eval(st.Value)})
	default:
		utils.Fatal("interp: unknown statement shape %T", s)
	}
}

// returnSignal unwinds execStmts/eval back to RunProgram's caller via
// panic/recover, mirroring how a ReturnStmt can appear mid-body rather
// than only in tail position.
type returnSignal struct {
	value interface{}
}

func (m *Machine) eval(e ast.Expr) interface{} {
	switch x := e.(type) {
	case *ast.IntLit:
		return x.Value
	case *ast.BoolLit:
		return x.Value
	case *ast.NameExpr:
		v, ok := m.env[x.Name]
		utils.Assert(ok, "interp: use of undeclared name %s", x.Name)
		return v
	case *ast.BinExpr:
		l, r := asInt(m.eval(x.Left)), asInt(m.eval(x.Right))
		switch x.Op {
		case ast.OpAdd:
			return utils.Add64(l, r)
		case ast.OpSub:
			return utils.Sub64(l, r)
		}
		utils.Fatal("interp: unknown binary op %v", x.Op)
	case *ast.UnaryExpr:
		v := m.eval(x.X)
		switch x.Op {
		case ast.OpNeg:
			return utils.Neg64(asInt(v))
		case ast.OpNot:
			return !asBool(v)
		}
		utils.Fatal("interp: unknown unary op %v", x.Op)
	case *ast.CompareExpr:
		return m.evalCompare(x.Op, m.eval(x.Left), m.eval(x.Right))
	case *ast.LogicalExpr:
		l := asBool(m.eval(x.Left))
		switch x.Op {
		case ast.LogAnd:
			if !l {
				return false
			}
			return asBool(m.eval(x.Right))
		case ast.LogOr:
			if l {
				return true
			}
			return asBool(m.eval(x.Right))
		}
		utils.Fatal("interp: unknown logical op %v", x.Op)
	case *ast.IfExpr:
		if asBool(m.eval(x.Cond)) {
			return m.eval(x.Then)
		}
		return m.eval(x.Else)
	case *ast.InputIntExpr:
		return m.readInt()
	case *ast.TupleExpr:
		elems := make([]interface{}, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = m.eval(el)
		}
		return &TupleValue{Elems: elems}
	case *ast.SubscriptExpr:
		tuple := asTuple(m.eval(x.Tuple))
		idx := asInt(m.eval(x.Index))
		utils.Assert(idx >= 0 && int(idx) < len(tuple.Elems), "interp: tuple index %d out of range", idx)
		return tuple.Elems[idx]
	case *ast.LenExpr:
		return int64(len(asTuple(m.eval(x.X)).Elems))
	case *ast.AllocateExpr:
		return m.allocate(x.Length)
	case *ast.GlobalValueExpr:
		switch x.Name {
		case "free_ptr":
			return m.freePtr
		case "fromspace_end":
			return m.fromspaceEnd
		}
		utils.Fatal("interp: unknown global value %s", x.Name)
	case *ast.Begin:
		m.execStmts(x.Stmts)
		return m.eval(x.Result)
	default:
		utils.Fatal("interp: unknown expression shape %T", e)
	}
	utils.ShouldNotReachHere()
	return nil
}

func (m *Machine) evalCompare(op ast.CmpOp, l, r interface{}) bool {
	if lt, ok := l.(*TupleValue); ok {
		rt := r.(*TupleValue)
		utils.Assert(op == ast.CmpEQ, "interp: tuples only support ==")
		return lt == rt
	}
	if lb, ok := l.(bool); ok {
		rb := r.(bool)
		utils.Assert(op == ast.CmpEQ, "interp: bool only supports ==")
		return lb == rb
	}
	li, ri := asInt(l), asInt(r)
	switch op {
	case ast.CmpEQ:
		return li == ri
	case ast.CmpLT:
		return li < ri
	case ast.CmpLE:
		return li <= ri
	case ast.CmpGT:
		return li > ri
	case ast.CmpGE:
		return li >= ri
	}
	utils.Fatal("interp: unknown compare op %v", op)
	return false
}

// allocate bumps the simulated free_ptr and hands back a fresh tuple; the
// corresponding heap-check/collect sequence is an explicit CollectStmt the
// caller already ran ahead of this call.
func (m *Machine) allocate(length int) *TupleValue {
	m.freePtr += 8 * int64(length+1)
	return &TupleValue{Elems: make([]interface{}, length)}
}

// collect models the runtime's collector from the interpreter's point of
// view: since TupleValue cells are ordinary Go heap objects already
// reclaimed by the host GC, collect's only observable effect here is
// resetting the bump pointer and failing loudly if the caller is about to
// ask for more than the simulated heap can give back.
func (m *Machine) collect(bytesNeeded int64) {
	m.freePtr = 0
	if m.freePtr+bytesNeeded > m.fromspaceEnd {
		utils.Fatal("interp: out of simulated heap space")
	}
}

func (m *Machine) readInt() int64 {
	var v int64
	n, err := fmt.Fscan(m.in, &v)
	utils.Assert(err == nil && n == 1, "interp: input_int: expected a decimal integer")
	return v
}

func asInt(v interface{}) int64 {
	i, ok := v.(int64)
	utils.Assert(ok, "interp: expected int, got %T", v)
	return i
}

func asBool(v interface{}) bool {
	b, ok := v.(bool)
	utils.Assert(ok, "interp: expected bool, got %T", v)
	return b
}

func asTuple(v interface{}) *TupleValue {
	t, ok := v.(*TupleValue)
	utils.Assert(ok, "interp: expected tuple, got %T", v)
	return t
}


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
package cfg

import (
	"corvid/ast"
	"corvid/compile/pass"
	"corvid/utils"
)

// ExplicateControlPass turns the flattened, every-operand-atomic surface
// tree into an explicit label graph: every branch becomes a pair of block
// references, every loop becomes a back-edge goto, and the implicit
// fall-off-the-end return is made real.
type ExplicateControlPass struct{}

func (ExplicateControlPass) Name() string       { return "explicate_control" }
func (ExplicateControlPass) SourceLang() string { return "Surface" }
func (ExplicateControlPass) TargetLang() string { return "CLike" }

func (ExplicateControlPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*ast.Program)
	e := &explicator{namer: m.Namer, prog: NewProgram()}
	tail := e.explicateStmts(p.Body, []Stmt{&Return{Value: &ast.IntLit{Value: 0}}})
	e.prog.AddBlock(StartLabel, tail)
	return e.prog
}

type explicator struct {
	namer *pass.Namer
	prog  *Program
}

// createBlock interns stmts under a fresh label and returns a single-goto
// reference to it, unless stmts is already exactly that goto, in which case
// it is returned unchanged so chains of empty continuations don't mint a
// new label at every step.
func (e *explicator) createBlock(stmts []Stmt) []Stmt {
	if len(stmts) == 1 {
		if _, ok := stmts[0].(*Goto); ok {
			return stmts
		}
	}
	label := e.namer.Fresh("block")
	e.prog.AddBlock(label, stmts)
	return []Stmt{&Goto{Label: label}}
}

func (e *explicator) gotoLabel(stmts []Stmt) string {
	ref := e.createBlock(stmts)
	return ref[0].(*Goto).Label
}

// explicateStmts folds a statement list onto a continuation, right to left,
// so each statement's continuation is everything that follows it.
func (e *explicator) explicateStmts(stmts []ast.Stmt, cont []Stmt) []Stmt {
	result := cont
	for i := len(stmts) - 1; i >= 0; i-- {
		result = e.explicateStmt(stmts[i], result)
	}
	return result
}

func (e *explicator) explicateStmt(s ast.Stmt, cont []Stmt) []Stmt {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return e.explicateAssign(st.Value, st.Name, cont)
	case *ast.PrintStmt:
		return append([]Stmt{&Print{Value: st.Value}}, cont...)
	case *ast.ExprStmt:
		return e.explicateEffect(st.Value, cont)
	case *ast.IfStmt:
		contBlock := e.createBlock(cont)
		thenTail := e.explicateStmts(st.Then, contBlock)
		elseTail := e.explicateStmts(st.Else, contBlock)
		return e.explicatePred(st.Cond, thenTail, elseTail)
	case *ast.WhileStmt:
		// The loop header's own label is needed by the body before the
		// header's statements exist, so it is reserved up front; the body is
		// explicated to jump back to it, then the header is built testing
		// the condition and filled in afterward.
		headLabel := e.namer.Fresh("loop_head")
		contBlock := e.createBlock(cont)
		bodyTail := e.explicateStmts(st.Body, []Stmt{&Goto{Label: headLabel}})
		header := e.explicatePred(st.Cond, bodyTail, contBlock)
		e.prog.AddBlock(headLabel, header)
		return []Stmt{&Goto{Label: headLabel}}
	case *ast.SubscriptAssignStmt:
		return append([]Stmt{&SubscriptAssign{Tuple: st.Tuple, Index: st.Index, Value: st.Value}}, cont...)
	case *ast.CollectStmt:
		return append([]Stmt{&Collect{Bytes: st.Bytes}}, cont...)
	case *ast.ReturnStmt:
		// A return is a terminator: anything lexically after it in the same
		// block is unreachable and the continuation built so far is dropped.
		return []Stmt{&Return{Value: st.Value}}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

// explicateEffect evaluates e for its side effects only; its value, if any,
// is discarded. Pure subexpressions with no side effect of their own
// contribute nothing and are dropped.
func (e *explicator) explicateEffect(expr ast.Expr, cont []Stmt) []Stmt {
	switch x := expr.(type) {
	case *ast.IfExpr:
		contBlock := e.createBlock(cont)
		thenTail := e.explicateEffect(x.Then, contBlock)
		elseTail := e.explicateEffect(x.Else, contBlock)
		return e.explicatePred(x.Cond, thenTail, elseTail)
	case *ast.Begin:
		result := e.explicateEffect(x.Result, cont)
		return e.explicateStmts(x.Stmts, result)
	case *ast.InputIntExpr:
		return append([]Stmt{&Effect{Value: x}}, cont...)
	default:
		return cont
	}
}

// explicateAssign evaluates rhs and binds its result to name, then
// continues into cont.
func (e *explicator) explicateAssign(rhs ast.Expr, name string, cont []Stmt) []Stmt {
	switch x := rhs.(type) {
	case *ast.IfExpr:
		contBlock := e.createBlock(cont)
		thenTail := e.explicateAssign(x.Then, name, contBlock)
		elseTail := e.explicateAssign(x.Else, name, contBlock)
		return e.explicatePred(x.Cond, thenTail, elseTail)
	case *ast.Begin:
		result := append([]Stmt{&Assign{Name: name, Value: x.Result}}, cont...)
		return e.explicateStmts(x.Stmts, result)
	default:
		return append([]Stmt{&Assign{Name: name, Value: rhs}}, cont...)
	}
}

// explicatePred compiles cnd as a branch condition, dispatching to thenTail
// when it holds and elseTail otherwise. A Begin-wrapped condition is
// handled identically whether it came from an if-statement or a while-loop
// test: its bindings are spliced in ahead of testing its result, so a
// while's per-iteration side effects in the test re-run on every pass
// through the header.
func (e *explicator) explicatePred(cnd ast.Expr, thenTail, elseTail []Stmt) []Stmt {
	switch x := cnd.(type) {
	case *ast.CompareExpr:
		thenLabel := e.gotoLabel(thenTail)
		elseLabel := e.gotoLabel(elseTail)
		return []Stmt{&IfGoto{Op: x.Op, Left: x.Left, Right: x.Right, Then: thenLabel, Else: elseLabel}}
	case *ast.BoolLit:
		if x.Value {
			return thenTail
		}
		return elseTail
	case *ast.UnaryExpr:
		if x.Op == ast.OpNot {
			return e.explicatePred(x.X, elseTail, thenTail)
		}
		utils.ShouldNotReachHere()
		return nil
	case *ast.IfExpr:
		thenBlock := e.createBlock(thenTail)
		elseBlock := e.createBlock(elseTail)
		innerThen := e.explicatePred(x.Then, thenBlock, elseBlock)
		innerElse := e.explicatePred(x.Else, thenBlock, elseBlock)
		return e.explicatePred(x.Cond, innerThen, innerElse)
	case *ast.Begin:
		result := e.explicatePred(x.Result, thenTail, elseTail)
		return e.explicateStmts(x.Stmts, result)
	default:
		// A bare boolean atom (a variable, typically): branch on whether it
		// equals false, sending the false case to elseTail.
		thenLabel := e.gotoLabel(thenTail)
		elseLabel := e.gotoLabel(elseTail)
		return []Stmt{&IfGoto{Op: ast.CmpEQ, Left: cnd, Right: &ast.BoolLit{Value: false}, Then: elseLabel, Else: thenLabel}}
	}
}

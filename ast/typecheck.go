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
package ast

import (
	"fmt"

	"corvid/utils"
)

// TypeCheck is the ambient front-end collaborator spec.md assumes already
// ran: it walks the freshly parsed tree, infers a Type for every name from
// its assignments, and annotates every TupleExpr/SubscriptExpr/IfExpr node
// with the structural type the core pipeline needs. The core itself never
// calls this; the driver does, once, before handing the tree to the pass
// manager.
type TypeError struct {
	msg string
}

func (e *TypeError) Error() string { return e.msg }

type checker struct {
	env map[string]*Type
}

func TypeCheck(prog *Program) (err error) {
	c := &checker{env: make(map[string]*Type)}
	defer func() {
		if r := recover(); r != nil {
			err = &TypeError{msg: fmt.Sprintf("%v", r)}
		}
	}()
	c.checkStmts(prog.Body)
	return err
}

func (c *checker) checkStmts(stmts []Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *checker) checkStmt(s Stmt) {
	switch st := s.(type) {
	case *AssignStmt:
		t := c.infer(st.Value)
		c.env[st.Name] = t
	case *PrintStmt:
		c.infer(st.Value)
	case *ExprStmt:
		c.infer(st.Value)
	case *IfStmt:
		ct := c.infer(st.Cond)
		if !ct.IsBool() {
			panic("if condition must be bool, got " + ct.String())
		}
		c.checkStmts(st.Then)
		c.checkStmts(st.Else)
	case *WhileStmt:
		ct := c.infer(st.Cond)
		if !ct.IsBool() {
			panic("while condition must be bool, got " + ct.String())
		}
		c.checkStmts(st.Body)
	case *SubscriptAssignStmt:
		c.infer(st.Tuple)
		c.infer(st.Index)
		c.infer(st.Value)
	case *CollectStmt:
		// internal, introduced post-typecheck
	case *ReturnStmt:
		c.infer(st.Value)
	default:
		utils.ShouldNotReachHere()
	}
}

func (c *checker) infer(e Expr) *Type {
	switch x := e.(type) {
	case *IntLit:
		return IntType
	case *BoolLit:
		return BoolType
	case *NameExpr:
		t, ok := c.env[x.Name]
		if !ok {
			panic("use of undeclared name " + x.Name)
		}
		x.Type = t
		return t
	case *BinExpr:
		lt := c.infer(x.Left)
		rt := c.infer(x.Right)
		if !lt.IsInt() || !rt.IsInt() {
			panic("arithmetic operands must be int")
		}
		return IntType
	case *UnaryExpr:
		t := c.infer(x.X)
		if x.Op == OpNeg && !t.IsInt() {
			panic("unary - requires int")
		}
		if x.Op == OpNot && !t.IsBool() {
			panic("not requires bool")
		}
		return t
	case *CompareExpr:
		c.infer(x.Left)
		c.infer(x.Right)
		return BoolType
	case *LogicalExpr:
		lt := c.infer(x.Left)
		rt := c.infer(x.Right)
		if !lt.IsBool() || !rt.IsBool() {
			panic("and/or operands must be bool")
		}
		return BoolType
	case *IfExpr:
		ct := c.infer(x.Cond)
		if !ct.IsBool() {
			panic("if-expression condition must be bool")
		}
		tt := c.infer(x.Then)
		et := c.infer(x.Else)
		if !tt.Equal(et) {
			panic(fmt.Sprintf("if-expression branches disagree: %v vs %v", tt, et))
		}
		x.Type = tt
		return tt
	case *InputIntExpr:
		return IntType
	case *TupleExpr:
		elems := make([]*Type, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = c.infer(el)
		}
		x.Type = TupleType(elems)
		return x.Type
	case *SubscriptExpr:
		tt := c.infer(x.Tuple)
		c.infer(x.Index)
		if !tt.IsTuple() {
			panic("subscript target must be a tuple")
		}
		if lit, ok := x.Index.(*IntLit); ok && int(lit.Value) < len(tt.Elems) {
			x.Type = tt.Elems[lit.Value]
		} else {
			x.Type = IntType
		}
		return x.Type
	case *LenExpr:
		c.infer(x.X)
		return IntType
	case *AllocateExpr:
		return x.Type
	case *GlobalValueExpr:
		return IntType
	case *Begin:
		c.checkStmts(x.Stmts)
		return c.infer(x.Result)
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

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

// Package normalize holds the passes that turn a freshly parsed program
// into one where every operand is atomic: Shrink, Expose-Allocation, and
// Remove-Complex-Operands.
package normalize

import (
	"corvid/ast"
	"corvid/compile/pass"
	"corvid/utils"
)

// ShrinkPass translates short-circuit and/or into conditional expressions.
// It is structural and idempotent: running it again on already-shrunk
// input finds no LogicalExpr nodes left to rewrite.
type ShrinkPass struct{}

func (ShrinkPass) Name() string       { return "shrink" }
func (ShrinkPass) SourceLang() string { return "Surface" }
func (ShrinkPass) TargetLang() string { return "Surface" }

func (ShrinkPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*ast.Program)
	return &ast.Program{Body: shrinkStmts(p.Body)}
}

func shrinkStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = shrinkStmt(s)
	}
	return out
}

func shrinkStmt(s ast.Stmt) ast.Stmt {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return &ast.AssignStmt{Name: st.Name, Value: shrinkExpr(st.Value)}
	case *ast.PrintStmt:
		return &ast.PrintStmt{Value: shrinkExpr(st.Value)}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Value: shrinkExpr(st.Value)}
	case *ast.IfStmt:
		return &ast.IfStmt{
			Cond: shrinkExpr(st.Cond),
			Then: shrinkStmts(st.Then),
			Else: shrinkStmts(st.Else),
		}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: shrinkExpr(st.Cond), Body: shrinkStmts(st.Body)}
	case *ast.SubscriptAssignStmt:
		return &ast.SubscriptAssignStmt{
			Tuple: shrinkExpr(st.Tuple),
			Index: shrinkExpr(st.Index),
			Value: shrinkExpr(st.Value),
		}
	case *ast.CollectStmt:
		return st
	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Value: shrinkExpr(st.Value)}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func shrinkExpr(e ast.Expr) ast.Expr {
	switch x := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.NameExpr, *ast.InputIntExpr,
		*ast.AllocateExpr, *ast.GlobalValueExpr:
		return x
	case *ast.LogicalExpr:
		left := shrinkExpr(x.Left)
		right := shrinkExpr(x.Right)
		if x.Op == ast.LogAnd {
			return &ast.IfExpr{Cond: left, Then: right, Else: &ast.BoolLit{Value: false}, Type: ast.BoolType}
		}
		return &ast.IfExpr{Cond: left, Then: &ast.BoolLit{Value: true}, Else: right, Type: ast.BoolType}
	case *ast.BinExpr:
		return &ast.BinExpr{Op: x.Op, Left: shrinkExpr(x.Left), Right: shrinkExpr(x.Right)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: x.Op, X: shrinkExpr(x.X)}
	case *ast.CompareExpr:
		return &ast.CompareExpr{Op: x.Op, Left: shrinkExpr(x.Left), Right: shrinkExpr(x.Right)}
	case *ast.IfExpr:
		return &ast.IfExpr{Cond: shrinkExpr(x.Cond), Then: shrinkExpr(x.Then), Else: shrinkExpr(x.Else), Type: x.Type}
	case *ast.TupleExpr:
		elems := make([]ast.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = shrinkExpr(el)
		}
		return &ast.TupleExpr{Elems: elems, Type: x.Type}
	case *ast.SubscriptExpr:
		return &ast.SubscriptExpr{Tuple: shrinkExpr(x.Tuple), Index: shrinkExpr(x.Index), Type: x.Type}
	case *ast.LenExpr:
		return &ast.LenExpr{X: shrinkExpr(x.X)}
	case *ast.Begin:
		return &ast.Begin{Stmts: shrinkStmts(x.Stmts), Result: shrinkExpr(x.Result)}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

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
package normalize

import (
	"corvid/ast"
	"testing"
)

func countLogical(stmts []ast.Stmt) int {
	n := 0
	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)
	var walkStmt2 func([]ast.Stmt)
	walkExpr = func(e ast.Expr) {
		switch x := e.(type) {
		case *ast.LogicalExpr:
			n++
			walkExpr(x.Left)
			walkExpr(x.Right)
		case *ast.BinExpr:
			walkExpr(x.Left)
			walkExpr(x.Right)
		case *ast.UnaryExpr:
			walkExpr(x.X)
		case *ast.CompareExpr:
			walkExpr(x.Left)
			walkExpr(x.Right)
		case *ast.IfExpr:
			walkExpr(x.Cond)
			walkExpr(x.Then)
			walkExpr(x.Else)
		case *ast.TupleExpr:
			for _, el := range x.Elems {
				walkExpr(el)
			}
		case *ast.SubscriptExpr:
			walkExpr(x.Tuple)
			walkExpr(x.Index)
		case *ast.LenExpr:
			walkExpr(x.X)
		case *ast.Begin:
			walkStmt2(x.Stmts)
			walkExpr(x.Result)
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.AssignStmt:
			walkExpr(st.Value)
		case *ast.PrintStmt:
			walkExpr(st.Value)
		case *ast.ExprStmt:
			walkExpr(st.Value)
		case *ast.IfStmt:
			walkExpr(st.Cond)
			walkStmt2(st.Then)
			walkStmt2(st.Else)
		case *ast.WhileStmt:
			walkExpr(st.Cond)
			walkStmt2(st.Body)
		case *ast.SubscriptAssignStmt:
			walkExpr(st.Tuple)
			walkExpr(st.Index)
			walkExpr(st.Value)
		case *ast.ReturnStmt:
			walkExpr(st.Value)
		}
	}
	walkStmt2 = func(ss []ast.Stmt) {
		for _, s := range ss {
			walkStmt(s)
		}
	}
	walkStmt2(stmts)
	return n
}

func TestShrinkRewritesLogicalAndIntoIfExpr(t *testing.T) {
	prog := ast.ParseProgram(`
if (1 < 2) and (3 < 4) {
  print(1)
}
`)
	out := ShrinkPass{}.Run(prog, nil).(*ast.Program)
	if n := countLogical(out.Body); n != 0 {
		t.Fatalf("expected no LogicalExpr nodes left after shrink, found %d", n)
	}
}

func TestShrinkIsIdempotent(t *testing.T) {
	prog := ast.ParseProgram(`
x = input_int()
if (x < 2) or (x > 10) {
  print(1)
} else {
  print(0)
}
`)
	once := ShrinkPass{}.Run(prog, nil).(*ast.Program)
	twice := ShrinkPass{}.Run(once, nil).(*ast.Program)
	if n := countLogical(twice.Body); n != 0 {
		t.Fatalf("expected shrinking an already-shrunk program to be a no-op, found %d logical nodes", n)
	}
}

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
	"corvid/compile/pass"
	"corvid/utils"
)

// ExposeAllocationPass expands tuple literals into an explicit heap-check,
// allocate, and per-element initialize sequence, carried in expression
// position by a Begin. Allocate must immediately follow a sufficient heap
// check, and element writes must follow Allocate without an intervening
// allocation; the sequence built below preserves both by construction.
type ExposeAllocationPass struct{}

func (ExposeAllocationPass) Name() string       { return "expose_allocation" }
func (ExposeAllocationPass) SourceLang() string { return "Surface" }
func (ExposeAllocationPass) TargetLang() string { return "Surface" }

func (ExposeAllocationPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*ast.Program)
	return &ast.Program{Body: exposeStmts(m.Namer, p.Body)}
}

func exposeStmts(namer *pass.Namer, stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = exposeStmt(namer, s)
	}
	return out
}

func exposeStmt(namer *pass.Namer, s ast.Stmt) ast.Stmt {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return &ast.AssignStmt{Name: st.Name, Value: exposeExpr(namer, st.Value)}
	case *ast.PrintStmt:
		return &ast.PrintStmt{Value: exposeExpr(namer, st.Value)}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Value: exposeExpr(namer, st.Value)}
	case *ast.IfStmt:
		return &ast.IfStmt{
			Cond: exposeExpr(namer, st.Cond),
			Then: exposeStmts(namer, st.Then),
			Else: exposeStmts(namer, st.Else),
		}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: exposeExpr(namer, st.Cond), Body: exposeStmts(namer, st.Body)}
	case *ast.SubscriptAssignStmt:
		return &ast.SubscriptAssignStmt{
			Tuple: exposeExpr(namer, st.Tuple),
			Index: exposeExpr(namer, st.Index),
			Value: exposeExpr(namer, st.Value),
		}
	case *ast.CollectStmt:
		return st
	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Value: exposeExpr(namer, st.Value)}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func exposeExpr(namer *pass.Namer, e ast.Expr) ast.Expr {
	switch x := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.NameExpr, *ast.InputIntExpr,
		*ast.AllocateExpr, *ast.GlobalValueExpr:
		return x
	case *ast.BinExpr:
		return &ast.BinExpr{Op: x.Op, Left: exposeExpr(namer, x.Left), Right: exposeExpr(namer, x.Right)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: x.Op, X: exposeExpr(namer, x.X)}
	case *ast.CompareExpr:
		return &ast.CompareExpr{Op: x.Op, Left: exposeExpr(namer, x.Left), Right: exposeExpr(namer, x.Right)}
	case *ast.IfExpr:
		return &ast.IfExpr{Cond: exposeExpr(namer, x.Cond), Then: exposeExpr(namer, x.Then), Else: exposeExpr(namer, x.Else), Type: x.Type}
	case *ast.SubscriptExpr:
		return &ast.SubscriptExpr{Tuple: exposeExpr(namer, x.Tuple), Index: exposeExpr(namer, x.Index), Type: x.Type}
	case *ast.LenExpr:
		return &ast.LenExpr{X: exposeExpr(namer, x.X)}
	case *ast.Begin:
		return &ast.Begin{Stmts: exposeStmts(namer, x.Stmts), Result: exposeExpr(namer, x.Result)}
	case *ast.TupleExpr:
		return exposeTuple(namer, x)
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func exposeTuple(namer *pass.Namer, x *ast.TupleExpr) ast.Expr {
	n := len(x.Elems)
	var stmts []ast.Stmt
	elemNames := make([]string, n)
	for i, el := range x.Elems {
		name := namer.Fresh("init.")
		stmts = append(stmts, &ast.AssignStmt{Name: name, Value: exposeExpr(namer, el)})
		elemNames[i] = name
	}

	bytesNeeded := int64(8 * (n + 1))
	heapOK := &ast.CompareExpr{
		Op:   ast.CmpLT,
		Left: &ast.BinExpr{Op: ast.OpAdd, Left: &ast.GlobalValueExpr{Name: "free_ptr"}, Right: &ast.IntLit{Value: bytesNeeded}},
		Right: &ast.GlobalValueExpr{Name: "fromspace_end"},
	}
	stmts = append(stmts, &ast.IfStmt{
		Cond: heapOK,
		Then: nil,
		Else: []ast.Stmt{&ast.CollectStmt{Bytes: int(bytesNeeded)}},
	})

	vname := namer.Fresh("alloc.")
	stmts = append(stmts, &ast.AssignStmt{Name: vname, Value: &ast.AllocateExpr{Length: n, Type: x.Type}})

	for i, name := range elemNames {
		stmts = append(stmts, &ast.SubscriptAssignStmt{
			Tuple: &ast.NameExpr{Name: vname, Type: x.Type},
			Index: &ast.IntLit{Value: int64(i)},
			Value: &ast.NameExpr{Name: name},
		})
	}

	return &ast.Begin{Stmts: stmts, Result: &ast.NameExpr{Name: vname, Type: x.Type}}
}

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

// RCOPass linearizes nested expressions into three-address assignments.
// rcoExpr(e, needAtomic) returns a (possibly fresh) expression and the
// ordered statements that must run before it is used; rcoStmt flattens
// those into the statement stream. Evaluating the produced flat sequence
// yields the same effects, in the same order, as evaluating the original
// nested expression left to right.
type RCOPass struct{}

func (RCOPass) Name() string       { return "remove_complex_operands" }
func (RCOPass) SourceLang() string { return "Surface" }
func (RCOPass) TargetLang() string { return "Surface" }

func (RCOPass) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*ast.Program)
	return &ast.Program{Body: rcoStmts(m.Namer, p.Body)}
}

func wrapBegin(stmts []ast.Stmt, atom ast.Expr) ast.Expr {
	if len(stmts) == 0 {
		return atom
	}
	return &ast.Begin{Stmts: stmts, Result: atom}
}

func rcoStmts(namer *pass.Namer, stmts []ast.Stmt) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range stmts {
		out = append(out, rcoStmt(namer, s)...)
	}
	return out
}

func rcoStmt(namer *pass.Namer, s ast.Stmt) []ast.Stmt {
	switch st := s.(type) {
	case *ast.AssignStmt:
		rhs, binds := rcoExpr(namer, st.Value, false)
		return append(binds, &ast.AssignStmt{Name: st.Name, Value: rhs})
	case *ast.PrintStmt:
		v, binds := rcoExpr(namer, st.Value, true)
		return append(binds, &ast.PrintStmt{Value: v})
	case *ast.ExprStmt:
		v, binds := rcoExpr(namer, st.Value, false)
		return append(binds, &ast.ExprStmt{Value: v})
	case *ast.IfStmt:
		condE, condBinds := rcoExpr(namer, st.Cond, false)
		wrapped := wrapBegin(condBinds, condE)
		return []ast.Stmt{&ast.IfStmt{
			Cond: wrapped,
			Then: rcoStmts(namer, st.Then),
			Else: rcoStmts(namer, st.Else),
		}}
	case *ast.WhileStmt:
		// The test's own hoisted bindings must re-run on every iteration, so
		// they are carried inside the condition via Begin rather than hoisted
		// above the loop, where they would only run once.
		condE, condBinds := rcoExpr(namer, st.Cond, false)
		wrapped := wrapBegin(condBinds, condE)
		return []ast.Stmt{&ast.WhileStmt{Cond: wrapped, Body: rcoStmts(namer, st.Body)}}
	case *ast.SubscriptAssignStmt:
		tup, tb := rcoExpr(namer, st.Tuple, true)
		idx, ib := rcoExpr(namer, st.Index, true)
		val, vb := rcoExpr(namer, st.Value, true)
		binds := append(append(tb, ib...), vb...)
		return append(binds, &ast.SubscriptAssignStmt{Tuple: tup, Index: idx, Value: val})
	case *ast.CollectStmt:
		return []ast.Stmt{st}
	case *ast.ReturnStmt:
		v, binds := rcoExpr(namer, st.Value, true)
		return append(binds, &ast.ReturnStmt{Value: v})
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

// rcoExpr returns a (possibly fresh) expression and the ordered statements
// that must execute before it. When needAtomic is true and e is complex, a
// fresh name bound to the flattened expression is returned in its place.
func rcoExpr(namer *pass.Namer, e ast.Expr, needAtomic bool) (ast.Expr, []ast.Stmt) {
	switch x := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.NameExpr, *ast.GlobalValueExpr:
		return x, nil
	case *ast.InputIntExpr:
		return atomize(namer, x, needAtomic, nil)
	case *ast.AllocateExpr:
		return atomize(namer, x, needAtomic, nil)
	case *ast.BinExpr:
		l, lb := rcoExpr(namer, x.Left, true)
		r, rb := rcoExpr(namer, x.Right, true)
		binds := append(lb, rb...)
		return atomize(namer, &ast.BinExpr{Op: x.Op, Left: l, Right: r}, needAtomic, binds)
	case *ast.UnaryExpr:
		sub, sb := rcoExpr(namer, x.X, true)
		return atomize(namer, &ast.UnaryExpr{Op: x.Op, X: sub}, needAtomic, sb)
	case *ast.CompareExpr:
		l, lb := rcoExpr(namer, x.Left, true)
		r, rb := rcoExpr(namer, x.Right, true)
		binds := append(lb, rb...)
		return atomize(namer, &ast.CompareExpr{Op: x.Op, Left: l, Right: r}, needAtomic, binds)
	case *ast.LenExpr:
		sub, sb := rcoExpr(namer, x.X, true)
		return atomize(namer, &ast.LenExpr{X: sub}, needAtomic, sb)
	case *ast.SubscriptExpr:
		tup, tb := rcoExpr(namer, x.Tuple, true)
		idx, ib := rcoExpr(namer, x.Index, true)
		binds := append(tb, ib...)
		return atomize(namer, &ast.SubscriptExpr{Tuple: tup, Index: idx, Type: x.Type}, needAtomic, binds)
	case *ast.IfExpr:
		thenE, thenBinds := rcoExpr(namer, x.Then, false)
		elseE, elseBinds := rcoExpr(namer, x.Else, false)
		thenBranch := wrapBegin(thenBinds, thenE)
		elseBranch := wrapBegin(elseBinds, elseE)
		condE, condBinds := rcoExpr(namer, x.Cond, true)
		newE := &ast.IfExpr{Cond: condE, Then: thenBranch, Else: elseBranch, Type: x.Type}
		return atomize(namer, newE, needAtomic, condBinds)
	case *ast.Begin:
		var prefix []ast.Stmt
		for _, s := range x.Stmts {
			prefix = append(prefix, rcoStmt(namer, s)...)
		}
		resE, resBinds := rcoExpr(namer, x.Result, needAtomic)
		return resE, append(prefix, resBinds...)
	default:
		utils.ShouldNotReachHere()
		return nil, nil
	}
}

// atomize optionally hoists newE into a fresh temporary when an atomic
// operand is required, appending the hoisted statement after binds.
func atomize(namer *pass.Namer, newE ast.Expr, needAtomic bool, binds []ast.Stmt) (ast.Expr, []ast.Stmt) {
	if !needAtomic {
		return newE, binds
	}
	t := namer.Fresh("_t")
	binds = append(binds, &ast.AssignStmt{Name: t, Value: newE})
	return &ast.NameExpr{Name: t, Type: newE.GetType()}, binds
}

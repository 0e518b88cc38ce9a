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
	"strings"
)

// String dumps a program back to source-ish text for -p/debug tracing.
// It does not need to round-trip exactly; it only needs to be readable
// enough to eyeball what a pass did to the tree.
func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Body {
		writeStmt(&b, s, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func writeStmt(b *strings.Builder, s Stmt, depth int) {
	indent(b, depth)
	switch st := s.(type) {
	case *AssignStmt:
		fmt.Fprintf(b, "%s = %s\n", st.Name, ExprString(st.Value))
	case *PrintStmt:
		fmt.Fprintf(b, "print(%s)\n", ExprString(st.Value))
	case *ExprStmt:
		fmt.Fprintf(b, "%s\n", ExprString(st.Value))
	case *IfStmt:
		fmt.Fprintf(b, "if %s {\n", ExprString(st.Cond))
		for _, s2 := range st.Then {
			writeStmt(b, s2, depth+1)
		}
		indent(b, depth)
		b.WriteString("} else {\n")
		for _, s2 := range st.Else {
			writeStmt(b, s2, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *WhileStmt:
		fmt.Fprintf(b, "while %s {\n", ExprString(st.Cond))
		for _, s2 := range st.Body {
			writeStmt(b, s2, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *SubscriptAssignStmt:
		fmt.Fprintf(b, "%s[%s] = %s\n", ExprString(st.Tuple), ExprString(st.Index), ExprString(st.Value))
	case *CollectStmt:
		fmt.Fprintf(b, "collect(%d)\n", st.Bytes)
	case *ReturnStmt:
		fmt.Fprintf(b, "return %s\n", ExprString(st.Value))
	default:
		b.WriteString("<?stmt?>\n")
	}
}

func ExprString(e Expr) string {
	switch x := e.(type) {
	case *IntLit:
		return fmt.Sprintf("%d", x.Value)
	case *BoolLit:
		if x.Value {
			return "true"
		}
		return "false"
	case *NameExpr:
		return x.Name
	case *BinExpr:
		op := "+"
		if x.Op == OpSub {
			op = "-"
		}
		return fmt.Sprintf("(%s %s %s)", ExprString(x.Left), op, ExprString(x.Right))
	case *UnaryExpr:
		if x.Op == OpNot {
			return fmt.Sprintf("(not %s)", ExprString(x.X))
		}
		return fmt.Sprintf("(-%s)", ExprString(x.X))
	case *CompareExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(x.Left), x.Op, ExprString(x.Right))
	case *LogicalExpr:
		op := "and"
		if x.Op == LogOr {
			op = "or"
		}
		return fmt.Sprintf("(%s %s %s)", ExprString(x.Left), op, ExprString(x.Right))
	case *IfExpr:
		return fmt.Sprintf("(%s if %s else %s)", ExprString(x.Then), ExprString(x.Cond), ExprString(x.Else))
	case *InputIntExpr:
		return "input_int()"
	case *TupleExpr:
		parts := make([]string, len(x.Elems))
		for i, el := range x.Elems {
			parts[i] = ExprString(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *SubscriptExpr:
		return fmt.Sprintf("%s[%s]", ExprString(x.Tuple), ExprString(x.Index))
	case *LenExpr:
		return fmt.Sprintf("len(%s)", ExprString(x.X))
	case *AllocateExpr:
		return fmt.Sprintf("allocate(%d, %s)", x.Length, x.Type)
	case *GlobalValueExpr:
		return x.Name
	case *Begin:
		var b strings.Builder
		b.WriteString("{\n")
		for _, s := range x.Stmts {
			writeStmt(&b, s, 1)
		}
		fmt.Fprintf(&b, "  produce %s}", ExprString(x.Result))
		return b.String()
	}
	return "<?expr?>"
}

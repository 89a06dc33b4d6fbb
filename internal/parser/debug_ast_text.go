package parser

import (
	"fmt"
	"iron/internal/ast"
	"reflect"
	"strings"
)

// RenderASTAsText produces an indented, source-like rendering of the tree
// with explicit parentheses, for checking precedence and block structure.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Block:
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, s := range n.Statements {
			sb.WriteString(RenderASTAsText(s, indent+1))
			sb.WriteString("\n")
		}
		if n.Expr != nil {
			sb.WriteString(sp + "  => " + RenderASTAsText(n.Expr, indent+1))
			sb.WriteString("\n")
		}
		// The closing brace aligns with the parent's indent
		sb.WriteString(sp + "}")
		return sb.String()

	case *ast.LetStatement:
		decl := "let "
		if n.Mutable {
			decl += "mut "
		}
		decl += n.Name.Value
		if n.Type != nil {
			decl += ": " + n.Type.String()
		}
		return fmt.Sprintf("%s%s = %s", sp, decl, RenderASTAsText(n.Value, indent))

	case *ast.ExpressionStatement:
		return sp + RenderASTAsText(n.Expression, indent) + ";"

	case *ast.FunctionStatement:
		params := make([]string, 0, len(n.Parameters))
		for _, p := range n.Parameters {
			params = append(params, p.String())
		}
		ret := ""
		if n.ReturnType != nil {
			ret = " -> " + n.ReturnType.String()
		}
		return fmt.Sprintf("%sfn %s(%s)%s %s", sp, n.Name.Value, strings.Join(params, ", "), ret, RenderASTAsText(n.Body, indent))

	case *ast.CallExpression:
		name := n.Function.Value
		if len(n.Path) > 0 {
			name = strings.Join(n.Path, "::") + "::" + name
		}
		return fmt.Sprintf("%s(%s)", name, renderList(n.Arguments, indent))

	case *ast.MethodCallExpression:
		if n.Method.Value == "[]" {
			return fmt.Sprintf("%s[%s]", RenderASTAsText(n.Receiver, indent), renderList(n.Arguments, indent))
		}
		return fmt.Sprintf("%s.%s(%s)", RenderASTAsText(n.Receiver, indent), n.Method.Value, renderList(n.Arguments, indent))

	case *ast.InfixExpression:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, indent), n.Operator, RenderASTAsText(n.Right, indent))

	case *ast.AssignExpression:
		return fmt.Sprintf("(%s = %s)", RenderASTAsText(n.Target, indent), RenderASTAsText(n.Value, indent))

	case *ast.NegationExpression:
		return fmt.Sprintf("(!%s)", RenderASTAsText(n.Right, indent))

	case *ast.ReferenceExpression:
		return fmt.Sprintf("(&%s)", RenderASTAsText(n.Right, indent))

	case *ast.DereferenceExpression:
		return fmt.Sprintf("(*%s)", RenderASTAsText(n.Right, indent))

	case *ast.IfExpression:
		res := fmt.Sprintf("if %s %s", RenderASTAsText(n.Condition, indent), RenderASTAsText(n.Consequence, indent))
		if n.Alternative != nil {
			res += " else " + RenderASTAsText(n.Alternative, indent)
		}
		return res

	case *ast.WhileExpression:
		return fmt.Sprintf("while %s %s", RenderASTAsText(n.Condition, indent), RenderASTAsText(n.Body, indent))

	case *ast.ForExpression:
		return fmt.Sprintf("for %s in %s %s", n.Variable.Value, RenderASTAsText(n.Iterable, indent), RenderASTAsText(n.Body, indent))

	case *ast.ReturnExpression:
		if n.Value == nil {
			return "return"
		}
		return "return " + RenderASTAsText(n.Value, indent)

	case *ast.Identifier:
		return n.Value

	case *ast.Literal:
		if s, ok := n.Value.AsString(); ok {
			return fmt.Sprintf("%q", s)
		}
		return n.Value.Inspect()

	default:
		return fmt.Sprintf("<unknown:%T>", n)
	}
}

func renderList(exprs []ast.Expression, indent int) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, RenderASTAsText(e, indent))
	}
	return strings.Join(parts, ", ")
}

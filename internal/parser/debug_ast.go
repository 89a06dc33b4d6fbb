package parser

import (
	"encoding/json"
	"fmt"
	"iron/internal/ast"
	"os"
)

// WalkAST serializes a tree into nested maps for JSON output. Keys carry a
// numeric prefix so encoders that sort keys keep a readable field order.
func WalkAST(node ast.Node) any {
	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Block:
		statements := make([]any, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]any{
			"0.type":       "Block",
			"1.span":       span(n),
			"2.statements": statements,
			"3.expr":       walkExpr(n.Expr),
		}

	case *ast.LetStatement:
		typ := ""
		if n.Type != nil {
			typ = n.Type.String()
		}
		return map[string]any{
			"0.type":    "LetStatement",
			"1.span":    span(n),
			"2.name":    n.Name.Value,
			"3.mutable": n.Mutable,
			"4.declTy":  typ,
			"5.value":   walkExpr(n.Value),
		}

	case *ast.ExpressionStatement:
		return map[string]any{
			"0.type":       "ExpressionStatement",
			"1.span":       span(n),
			"2.expression": walkExpr(n.Expression),
		}

	case *ast.FunctionStatement:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.String()
		}
		ret := ""
		if n.ReturnType != nil {
			ret = n.ReturnType.String()
		}
		return map[string]any{
			"0.type":       "FunctionStatement",
			"1.span":       span(n),
			"2.name":       n.Name.Value,
			"3.parameters": params,
			"4.returnType": ret,
			"5.body":       WalkAST(n.Body),
		}

	case *ast.Identifier:
		return map[string]any{
			"0.type":  "Identifier",
			"1.span":  span(n),
			"2.value": n.Value,
		}

	case *ast.Literal:
		return map[string]any{
			"0.type":  "Literal",
			"1.span":  span(n),
			"2.ty":    n.Value.Type().String(),
			"3.value": n.Value.Inspect(),
		}

	case *ast.AssignExpression:
		return map[string]any{
			"0.type":   "AssignExpression",
			"1.span":   span(n),
			"2.target": walkExpr(n.Target),
			"3.value":  walkExpr(n.Value),
		}

	case *ast.NegationExpression:
		return map[string]any{
			"0.type":  "NegationExpression",
			"1.span":  span(n),
			"2.right": walkExpr(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]any{
			"0.type":     "InfixExpression",
			"1.span":     span(n),
			"2.left":     walkExpr(n.Left),
			"3.operator": n.Operator,
			"4.right":    walkExpr(n.Right),
		}

	case *ast.ReferenceExpression:
		return map[string]any{
			"0.type":  "ReferenceExpression",
			"1.span":  span(n),
			"2.right": walkExpr(n.Right),
		}

	case *ast.DereferenceExpression:
		return map[string]any{
			"0.type":  "DereferenceExpression",
			"1.span":  span(n),
			"2.right": walkExpr(n.Right),
		}

	case *ast.IfExpression:
		return map[string]any{
			"0.type":        "IfExpression",
			"1.span":        span(n),
			"2.condition":   walkExpr(n.Condition),
			"3.consequence": WalkAST(n.Consequence),
			"4.alternative": walkExpr(n.Alternative),
		}

	case *ast.CallExpression:
		return map[string]any{
			"0.type":      "CallExpression",
			"1.span":      span(n),
			"2.path":      n.Path,
			"3.function":  n.Function.Value,
			"4.arguments": walkExprs(n.Arguments),
		}

	case *ast.MethodCallExpression:
		return map[string]any{
			"0.type":      "MethodCallExpression",
			"1.span":      span(n),
			"2.receiver":  walkExpr(n.Receiver),
			"3.method":    n.Method.Value,
			"4.arguments": walkExprs(n.Arguments),
		}

	case *ast.WhileExpression:
		return map[string]any{
			"0.type":      "WhileExpression",
			"1.span":      span(n),
			"2.condition": walkExpr(n.Condition),
			"3.body":      WalkAST(n.Body),
		}

	case *ast.ForExpression:
		return map[string]any{
			"0.type":     "ForExpression",
			"1.span":     span(n),
			"2.variable": n.Variable.Value,
			"3.iterable": walkExpr(n.Iterable),
			"4.body":     WalkAST(n.Body),
		}

	case *ast.ReturnExpression:
		return map[string]any{
			"0.type":  "ReturnExpression",
			"1.span":  span(n),
			"2.value": walkExpr(n.Value),
		}

	default:
		return map[string]any{
			"0.type": "Unknown: " + n.String(),
		}
	}
}

// walkExpr keeps a nil interface from reaching the type switch as a typed nil.
func walkExpr(e ast.Expression) any {
	if e == nil {
		return nil
	}
	return WalkAST(e)
}

func walkExprs(exprs []ast.Expression) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = walkExpr(e)
	}
	return out
}

func span(n ast.Node) [2]int {
	s := n.Span()
	return [2]int{s.Lo, s.Hi}
}

// WriteASTToJSON takes a root AST node and writes it to a JSON file.
func WriteASTToJSON(node ast.Node, filename string) error {
	astMap := WalkAST(node)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")  // Pretty-print the JSON
	encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &

	if err := encoder.Encode(astMap); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteASTToText writes RenderASTAsText output to filename.
func WriteASTToText(node ast.Node, filename string) error {
	if err := os.WriteFile(filename, []byte(RenderASTAsText(node, 0)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write AST text: %w", err)
	}
	return nil
}

package ast

import (
	"bytes"
	"iron/internal/object"
	"iron/internal/token"
	"strings"
)

// Span is a byte range [Lo, Hi) into the source text.
type Span struct {
	Lo int
	Hi int
}

// Text returns the source covered by the span, clamped to the source bounds.
func (s Span) Text(src string) string {
	lo, hi := max(s.Lo, 0), min(s.Hi, len(src))
	if lo >= hi {
		return ""
	}
	return src[lo:hi]
}

// To joins two spans.
func (s Span) To(end Span) Span {
	return Span{Lo: s.Lo, Hi: max(s.Hi, end.Hi)}
}

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
	Span() Span
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Block is a sequence of statements with an optional trailing expression.
// A program is a Block.
type Block struct {
	Token      token.Token // the { token, or the first token of a program
	Loc        Span
	Statements []Statement
	Expr       Expression // nil evaluates to unit
}

func (b *Block) expressionNode()      {}
func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) Span() Span           { return b.Loc }
func (b *Block) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for _, s := range b.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	if b.Expr != nil {
		out.WriteString(b.Expr.String())
		out.WriteString(" ")
	}
	out.WriteString("}")

	return out.String()
}

type LetStatement struct {
	Token   token.Token // the token.LET token
	Loc     Span
	Name    *Identifier
	Mutable bool
	Type    *object.UnionType
	Value   Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Span() Span           { return ls.Loc }
func (ls *LetStatement) String() string {
	var out bytes.Buffer

	out.WriteString("let ")
	if ls.Mutable {
		out.WriteString("mut ")
	}
	out.WriteString(ls.Name.String())
	if ls.Type != nil {
		out.WriteString(": ")
		out.WriteString(ls.Type.String())
	}
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")

	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Loc        Span
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Span() Span           { return es.Loc }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ";"
}

type Parameter struct {
	Name *Identifier
	Type *object.UnionType // nil leaves the parameter unchecked
}

func (p *Parameter) String() string {
	if p.Type == nil {
		return p.Name.String()
	}
	return p.Name.String() + ": " + p.Type.String()
}

type FunctionStatement struct {
	Token      token.Token // the token.FN token
	Loc        Span
	Name       *Identifier
	Parameters []*Parameter
	ReturnType *object.UnionType
	Body       *Block
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) Span() Span           { return fs.Loc }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	params := make([]string, 0, len(fs.Parameters))
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("fn ")
	out.WriteString(fs.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	if fs.ReturnType != nil {
		out.WriteString("-> ")
		out.WriteString(fs.ReturnType.String())
		out.WriteString(" ")
	}
	out.WriteString(fs.Body.String())

	return out.String()
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Loc   Span
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Span() Span           { return i.Loc }
func (i *Identifier) String() string       { return i.Value }

// Literal is a constant value embedded in the tree.
type Literal struct {
	Token token.Token
	Loc   Span
	Value object.Union
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Literal }
func (l *Literal) Span() Span           { return l.Loc }
func (l *Literal) String() string {
	if s, ok := l.Value.AsString(); ok {
		return `"` + s + `"`
	}
	return l.Value.Inspect()
}

type AssignExpression struct {
	Token  token.Token // the = token
	Loc    Span
	Target Expression
	Value  Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) Span() Span           { return ae.Loc }
func (ae *AssignExpression) String() string {
	return ae.Target.String() + " = " + ae.Value.String()
}

// NegationExpression is the unary ! operator.
type NegationExpression struct {
	Token token.Token // the ! token
	Loc   Span
	Right Expression
}

func (ne *NegationExpression) expressionNode()      {}
func (ne *NegationExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NegationExpression) Span() Span           { return ne.Loc }
func (ne *NegationExpression) String() string       { return "(!" + ne.Right.String() + ")" }

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Loc      Span
	Left     Expression
	Operator string
	OpLoc    Span
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Span() Span           { return ie.Loc }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type ReferenceExpression struct {
	Token token.Token // the & token
	Loc   Span
	Right Expression
}

func (re *ReferenceExpression) expressionNode()      {}
func (re *ReferenceExpression) TokenLiteral() string { return re.Token.Literal }
func (re *ReferenceExpression) Span() Span           { return re.Loc }
func (re *ReferenceExpression) String() string       { return "(&" + re.Right.String() + ")" }

type DereferenceExpression struct {
	Token token.Token // the * token
	Loc   Span
	Right Expression
}

func (de *DereferenceExpression) expressionNode()      {}
func (de *DereferenceExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DereferenceExpression) Span() Span           { return de.Loc }
func (de *DereferenceExpression) String() string       { return "(*" + de.Right.String() + ")" }

type IfExpression struct {
	Token       token.Token // The 'if' token
	Loc         Span
	Condition   Expression
	Consequence *Block
	Alternative Expression // nil, *Block or *IfExpression
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) Span() Span           { return ie.Loc }
func (ie *IfExpression) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(ie.Condition.String())
	out.WriteString(" ")
	out.WriteString(ie.Consequence.String())

	if ie.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(ie.Alternative.String())
	}

	return out.String()
}

type CallExpression struct {
	Token     token.Token // the identifier token
	Loc       Span
	Path      []string // module path, empty for the root namespace
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Span() Span           { return ce.Loc }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	for _, p := range ce.Path {
		out.WriteString(p)
		out.WriteString("::")
	}
	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(joinExpressions(ce.Arguments))
	out.WriteString(")")

	return out.String()
}

type MethodCallExpression struct {
	Token     token.Token // the . or [ token
	Loc       Span
	Receiver  Expression
	Method    *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()      {}
func (mc *MethodCallExpression) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCallExpression) Span() Span           { return mc.Loc }
func (mc *MethodCallExpression) String() string {
	var out bytes.Buffer

	out.WriteString(mc.Receiver.String())
	if mc.Method.Value == "[]" {
		out.WriteString("[")
		out.WriteString(joinExpressions(mc.Arguments))
		out.WriteString("]")
		return out.String()
	}
	out.WriteString(".")
	out.WriteString(mc.Method.String())
	out.WriteString("(")
	out.WriteString(joinExpressions(mc.Arguments))
	out.WriteString(")")

	return out.String()
}

type WhileExpression struct {
	Token     token.Token // the 'while' token
	Loc       Span
	Condition Expression
	Body      *Block
}

func (we *WhileExpression) expressionNode()      {}
func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) Span() Span           { return we.Loc }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + " " + we.Body.String()
}

type ForExpression struct {
	Token    token.Token // the 'for' token
	Loc      Span
	Variable *Identifier
	Iterable Expression
	Body     *Block
}

func (fe *ForExpression) expressionNode()      {}
func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) Span() Span           { return fe.Loc }
func (fe *ForExpression) String() string {
	return "for " + fe.Variable.String() + " in " + fe.Iterable.String() + " " + fe.Body.String()
}

type ReturnExpression struct {
	Token token.Token // the 'return' token
	Loc   Span
	Value Expression // nil returns unit
}

func (re *ReturnExpression) expressionNode()      {}
func (re *ReturnExpression) TokenLiteral() string { return re.Token.Literal }
func (re *ReturnExpression) Span() Span           { return re.Loc }
func (re *ReturnExpression) String() string {
	if re.Value == nil {
		return "return"
	}
	return "return " + re.Value.String()
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

// IsBlockLike reports whether an expression may stand as a statement without
// a trailing semicolon.
func IsBlockLike(e Expression) bool {
	switch e.(type) {
	case *Block, *IfExpression, *WhileExpression, *ForExpression:
		return true
	}
	return false
}

package parser

import (
	"fmt"
	"iron/internal/ast"
	"iron/internal/lexer"
	"iron/internal/object"
	"iron/internal/token"
	"iron/internal/util"
	"strconv"
	"strings"
)

const (
	_          int = iota
	LOWEST         //
	ASSIGN         // x = y, right associative
	EQUALS         // ==
	COMPARISON     // > or <
	SUM            // +
	PRODUCT        // *
	PREFIX         // !X &X *X
	CALL           // x.f(y) or x[i]
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGN,
	token.EQ:       EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.PERCENT:  PRODUCT,
	token.PERIOD:   CALL,
	token.LBRACKET: CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Error lists every problem found while parsing, one "[line:col] message"
// entry each. Incomplete is set when parsing ran out of input, so more
// lines could still complete the program.
type Error struct {
	Messages   []string
	Incomplete bool
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "\n")
}

type Parser struct {
	l      *lexer.Lexer
	src    string
	errors []string

	incomplete bool

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// Parse parses a whole program. A non-nil error is a *Error.
func Parse(source string) (*ast.Block, error) {
	p := New(lexer.New(source), source)
	program := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, &Error{Messages: p.errors, Incomplete: p.incomplete}
	}
	return program, nil
}

func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{
		l:      l,
		src:    source,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.BANG, p.parseNegationExpression)
	p.registerPrefix(token.MINUS, p.parseNegativeLiteral)
	p.registerPrefix(token.AMPERSAND, p.parseReferenceExpression)
	p.registerPrefix(token.ASTERISK, p.parseDereferenceExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACE, p.parseBlockExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.WHILE, p.parseWhileExpression)
	p.registerPrefix(token.FOR, p.parseForExpression)
	p.registerPrefix(token.RETURN, p.parseReturnExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.PERIOD, p.parseMethodCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addErrorAt(pos int, message string, args ...any) {
	line, col := util.GetLineAndColumn(p.src, pos)
	m := fmt.Sprintf(message, args...)
	p.errors = append(p.errors, fmt.Sprintf("[%3d:%2d] %s", line, col, m))
}

func (p *Parser) addError(message string, args ...any) {
	p.addErrorAt(p.curToken.Position, message, args...)
}

func (p *Parser) peekError(t token.TokenType) {
	p.markIncomplete(p.peekToken)
	p.addErrorAt(p.peekToken.Position, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

// markIncomplete records whether the first error was caused by running out
// of input.
func (p *Parser) markIncomplete(tok token.Token) {
	if len(p.errors) == 0 {
		p.incomplete = tok.Type == token.EOF
	}
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.addError("illegal token: %s", tok.Literal)
		return
	}
	p.markIncomplete(tok)
	p.addError("unexpected %s", describe(tok))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.INT, token.FLOAT:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case token.STRING:
		return "string literal"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []string {
	return p.errors
}

// spanFrom covers from start up to the end of the current token.
func (p *Parser) spanFrom(start int) ast.Span {
	return ast.Span{Lo: start, Hi: p.curToken.End}
}

// ParseProgram parses statements until EOF. The program is a block whose
// last expression without a semicolon is its value.
func (p *Parser) ParseProgram() *ast.Block {
	program := &ast.Block{Token: p.curToken}
	p.parseBlockBody(program, token.EOF)
	program.Loc = ast.Span{Lo: 0, Hi: len(p.src)}
	return program
}

func (p *Parser) parseBlockBody(block *ast.Block, end token.TokenType) {
	block.Statements = []ast.Statement{}

	for !p.curTokenIs(end) && !p.curTokenIs(token.EOF) {
		if len(p.errors) > 0 {
			return
		}

		switch p.curToken.Type {
		case token.SEMICOLON:
			// empty statement
		case token.LET:
			if stmt := p.parseLetStatement(end); stmt != nil {
				block.Statements = append(block.Statements, stmt)
			}
		case token.FN:
			if stmt := p.parseFunctionStatement(); stmt != nil {
				block.Statements = append(block.Statements, stmt)
			}
		default:
			p.parseExpressionItem(block, end)
		}

		p.nextToken()
	}
}

// parseExpressionItem parses an expression in statement position. It becomes
// the block's value when it is last and has no semicolon. Block-like
// expressions end at their closing brace.
func (p *Parser) parseExpressionItem(block *ast.Block, end token.TokenType) {
	start := p.curToken
	var expr ast.Expression
	blockLike := false
	switch start.Type {
	case token.IF, token.WHILE, token.FOR, token.LBRACE:
		expr = p.prefixParseFns[start.Type]()
		blockLike = true
	default:
		expr = p.parseExpression(LOWEST)
	}
	if expr == nil {
		return
	}

	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
	case p.peekTokenIs(end):
		block.Expr = expr
		return
	case !blockLike:
		p.peekError(token.SEMICOLON)
		return
	}

	block.Statements = append(block.Statements, &ast.ExpressionStatement{
		Token:      start,
		Loc:        p.spanFrom(start.Position),
		Expression: expr,
	})
}

func (p *Parser) parseLetStatement(end token.TokenType) *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		stmt.Mutable = true
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.identifier()

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		t, ok := p.parseType()
		if !ok {
			return nil
		}
		stmt.Type = &t
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	// the last statement of the input may omit its semicolon
	if !p.peekTokenIs(token.EOF) || end != token.EOF {
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}

	stmt.Loc = p.spanFrom(stmt.Token.Position)
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.identifier()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	stmt.Parameters = params

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		t, ok := p.parseType()
		if !ok {
			return nil
		}
		stmt.ReturnType = &t
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}

	stmt.Loc = p.spanFrom(stmt.Token.Position)
	return stmt
}

func (p *Parser) parseFunctionParameters() ([]*ast.Parameter, bool) {
	params := []*ast.Parameter{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		param := &ast.Parameter{Name: p.identifier()}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			t, ok := p.parseType()
			if !ok {
				return nil, false
			}
			param.Type = &t
		}
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

var typeNames = map[string]object.UnionType{
	"i32":  object.IntType,
	"f32":  object.FloatType,
	"bool": object.BoolType,
	"str":  object.StringType,
	"type": object.TypeType,
}

// parseType reads a type annotation starting at the current token.
func (p *Parser) parseType() (object.UnionType, bool) {
	switch p.curToken.Type {
	case token.AMPERSAND:
		p.nextToken()
		t, ok := p.parseType()
		return t.Ref(), ok
	case token.LPAREN:
		if !p.expectPeek(token.RPAREN) {
			return object.UnionType{}, false
		}
		return object.UnitType, true
	case token.IDENT:
		if t, ok := typeNames[p.curToken.Literal]; ok {
			return t, true
		}
		p.addError("unknown type %s", p.curToken.Literal)
		return object.UnionType{}, false
	}
	p.markIncomplete(p.curToken)
	p.addError("expected a type, got %s", describe(p.curToken))
	return object.UnionType{}, false
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) identifier() *ast.Identifier {
	return &ast.Identifier{
		Token: p.curToken,
		Loc:   ast.Span{Lo: p.curToken.Position, Hi: p.curToken.End},
		Value: p.curToken.Literal,
	}
}

// parseIdentifier handles plain identifiers, calls and module path calls
// such as std::sys::println(x).
func (p *Parser) parseIdentifier() ast.Expression {
	start := p.curToken
	ident := p.identifier()

	var path []string
	for p.peekTokenIs(token.PATH) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		path = append(path, ident.Value)
		ident = p.identifier()
	}

	if !p.peekTokenIs(token.LPAREN) {
		if len(path) > 0 {
			p.peekError(token.LPAREN)
			return nil
		}
		return ident
	}

	p.nextToken()
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	return &ast.CallExpression{
		Token:     start,
		Loc:       p.spanFrom(start.Position),
		Path:      path,
		Function:  ident,
		Arguments: args,
	}
}

func (p *Parser) literal(tok token.Token, value object.Union) *ast.Literal {
	return &ast.Literal{Token: tok, Loc: p.spanFrom(tok.Position), Value: value}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	return p.parseNumber(p.curToken, "")
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	return p.parseNumber(p.curToken, "")
}

// parseNumber builds an integer or float literal from the current token.
// sign is "-" for negative literals.
func (p *Parser) parseNumber(start token.Token, sign string) ast.Expression {
	text := sign + p.curToken.Literal
	switch p.curToken.Type {
	case token.INT:
		value, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			p.addError("integer literal %s does not fit in i32", text)
			return nil
		}
		return p.literal(start, object.Int(int32(value)))
	case token.FLOAT:
		value, err := strconv.ParseFloat(text, 32)
		if err != nil {
			p.addError("could not parse %q as f32", text)
			return nil
		}
		return p.literal(start, object.Float(float32(value)))
	}
	p.addError("expected a number, got %s", describe(p.curToken))
	return nil
}

// parseNegativeLiteral folds unary minus into the literal that follows it.
func (p *Parser) parseNegativeLiteral() ast.Expression {
	start := p.curToken
	if !p.peekTokenIs(token.INT) && !p.peekTokenIs(token.FLOAT) {
		p.addError("unary minus applies only to numeric literals")
		return nil
	}
	p.nextToken()
	return p.parseNumber(start, "-")
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return p.literal(p.curToken, object.String(p.curToken.Literal))
}

func (p *Parser) parseBoolean() ast.Expression {
	return p.literal(p.curToken, object.Bool(p.curTokenIs(token.TRUE)))
}

func (p *Parser) parseNegationExpression() ast.Expression {
	expression := &ast.NegationExpression{Token: p.curToken}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) parseReferenceExpression() ast.Expression {
	expression := &ast.ReferenceExpression{Token: p.curToken}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) parseDereferenceExpression() ast.Expression {
	expression := &ast.DereferenceExpression{Token: p.curToken}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		OpLoc:    ast.Span{Lo: p.curToken.Position, Hi: p.curToken.End},
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	expression.Loc = p.spanFrom(left.Span().Lo)
	return expression
}

func (p *Parser) parseAssignExpression(target ast.Expression) ast.Expression {
	expression := &ast.AssignExpression{Token: p.curToken, Target: target}

	switch t := target.(type) {
	case *ast.Identifier, *ast.DereferenceExpression:
	case *ast.MethodCallExpression:
		if t.Method.Value != "[]" {
			p.addError("cannot assign to %s", target)
			return nil
		}
	default:
		p.addError("cannot assign to %s", target)
		return nil
	}

	p.nextToken()
	expression.Value = p.parseExpression(ASSIGN - 1)
	if expression.Value == nil {
		return nil
	}

	expression.Loc = p.spanFrom(target.Span().Lo)
	return expression
}

func (p *Parser) parseMethodCallExpression(receiver ast.Expression) ast.Expression {
	expression := &ast.MethodCallExpression{Token: p.curToken, Receiver: receiver}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expression.Method = p.identifier()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	expression.Arguments = args

	expression.Loc = p.spanFrom(receiver.Span().Lo)
	return expression
}

// parseIndexExpression turns a[i] into the method call a.[](i).
func (p *Parser) parseIndexExpression(receiver ast.Expression) ast.Expression {
	expression := &ast.MethodCallExpression{Token: p.curToken, Receiver: receiver}
	expression.Method = &ast.Identifier{
		Token: p.curToken,
		Loc:   ast.Span{Lo: p.curToken.Position, Hi: p.curToken.End},
		Value: "[]",
	}

	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	expression.Arguments = []ast.Expression{index}

	expression.Loc = p.spanFrom(receiver.Span().Lo)
	return expression
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	item := p.parseExpression(LOWEST)
	if item == nil {
		return nil, false
	}
	list = append(list, item)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		item := p.parseExpression(LOWEST)
		if item == nil {
			return nil, false
		}
		list = append(list, item)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

// parseGroupedExpression also handles the unit literal ().
func (p *Parser) parseGroupedExpression() ast.Expression {
	start := p.curToken
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return p.literal(start, object.Unit())
	}

	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseBlockExpression() ast.Expression {
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	return block
}

// parseBlock parses { ... } with the current token on the opening brace.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	p.nextToken()

	p.parseBlockBody(block, token.RBRACE)
	if len(p.errors) > 0 {
		return nil
	}
	if !p.curTokenIs(token.RBRACE) {
		p.markIncomplete(p.curToken)
		p.addError("expected }, got %s", describe(p.curToken))
		return nil
	}

	block.Loc = p.spanFrom(block.Token.Position)
	return block
}

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlock()
	if expression.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		switch {
		case p.peekTokenIs(token.IF):
			p.nextToken()
			alt := p.parseIfExpression()
			if alt == nil {
				return nil
			}
			expression.Alternative = alt
		case p.expectPeek(token.LBRACE):
			alt := p.parseBlock()
			if alt == nil {
				return nil
			}
			expression.Alternative = alt
		default:
			return nil
		}
	}

	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) parseWhileExpression() ast.Expression {
	expression := &ast.WhileExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlock()
	if expression.Body == nil {
		return nil
	}

	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) parseForExpression() ast.Expression {
	expression := &ast.ForExpression{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expression.Variable = p.identifier()

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	expression.Iterable = p.parseExpression(LOWEST)
	if expression.Iterable == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlock()
	if expression.Body == nil {
		return nil
	}

	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) parseReturnExpression() ast.Expression {
	expression := &ast.ReturnExpression{Token: p.curToken}

	if !p.peekTokenIs(token.SEMICOLON) && !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		expression.Value = p.parseExpression(LOWEST)
		if expression.Value == nil {
			return nil
		}
	}

	expression.Loc = p.spanFrom(expression.Token.Position)
	return expression
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

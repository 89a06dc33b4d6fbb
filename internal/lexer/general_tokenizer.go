package lexer

import (
	"iron/internal/token"
)

var singleChar = map[rune]token.TokenType{
	'+': token.PLUS,
	'!': token.BANG,
	'/': token.SLASH,
	'*': token.ASTERISK,
	'%': token.PERCENT,
	'&': token.AMPERSAND,
	';': token.SEMICOLON,
	',': token.COMMA,
	'.': token.PERIOD,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACKET,
	']': token.RBRACKET,
}

// compound maps a lead character to its single form and the two-character
// form selected when the next character matches.
var compound = map[rune]struct {
	single token.TokenType
	next   rune
	double token.TokenType
}{
	'=': {token.ASSIGN, '=', token.EQ},
	'-': {token.MINUS, '>', token.ARROW},
	'<': {token.LT, '=', token.LT_EQ},
	'>': {token.GT, '=', token.GT_EQ},
	':': {token.COLON, ':', token.PATH},
}

// GeneralTokenizer handles everything outside string literals.
type GeneralTokenizer struct {
	lexer *Lexer
}

func NewGeneralTokenizer(lexer *Lexer) *GeneralTokenizer {
	return &GeneralTokenizer{lexer: lexer}
}

func (g *GeneralTokenizer) NextToken() token.Token {
	l := g.lexer
	l.skipWhitespace()
	start := l.position

	if c, ok := compound[l.ch]; ok {
		tok := l.handleCompoundToken(c.single, c.next, c.double)
		l.readChar()
		return tok
	}
	if t, ok := singleChar[l.ch]; ok {
		tok := newToken(t, l.ch, start)
		l.readChar()
		return tok
	}

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Position: start}
	case l.ch == '"':
		l.readChar() // opening quote
		l.switchMode(NewStringTokenizer(l, start))
		return l.currentMode.NextToken()
	case isLetter(l.ch):
		literal := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(literal), Literal: literal, Position: start}
	case isDigit(l.ch):
		t, literal := l.readNumber()
		return token.Token{Type: t, Literal: literal, Position: start}
	}

	tok := newToken(token.ILLEGAL, l.ch, start)
	l.readChar()
	return tok
}

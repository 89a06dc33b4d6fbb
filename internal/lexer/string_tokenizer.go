package lexer

import (
	"iron/internal/token"
	"strings"
)

var escapes = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'"':  '"',
	'0':  0,
}

// StringTokenizer reads one double quoted string literal, the opening quote
// already consumed, and hands control back to the general tokenizer.
type StringTokenizer struct {
	lexer *Lexer
	start int
}

func NewStringTokenizer(lexer *Lexer, start int) *StringTokenizer {
	return &StringTokenizer{lexer: lexer, start: start}
}

func (s *StringTokenizer) NextToken() token.Token {
	l := s.lexer
	defer l.switchMode(NewGeneralTokenizer(l))

	var b strings.Builder
	for l.ch != '"' {
		switch l.ch {
		case 0:
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Position: s.start}
		case '\\':
			l.readChar()
			if r, ok := escapes[l.ch]; ok {
				b.WriteRune(r)
			} else {
				// unknown escapes are kept verbatim
				b.WriteRune('\\')
				b.WriteRune(l.ch)
			}
		default:
			b.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // closing quote

	return token.Token{Type: token.STRING, Literal: b.String(), Position: s.start}
}

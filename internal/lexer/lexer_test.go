package lexer

import (
	"iron/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let mut x: i32 = 5;
fn add(a: i32, b) -> i32 { a + b }
x = add(x, 10) * 2 % 3 / 1 - 4;
if x <= 10 { true } else { false }
while x >= 0 { x = x - 1; }
for i in range(0, 3) { std::sys::print(&*i); }
a.push(1.5)[0] == !b > c < d;
"hi\n" # alt comment
return 1_000;
// comment at eof
//`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.MUT, "mut"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.IDENT, "i32"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},

		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "i32"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.IDENT, "i32"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.RBRACE, "}"},

		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.ASTERISK, "*"},
		{token.INT, "2"},
		{token.PERCENT, "%"},
		{token.INT, "3"},
		{token.SLASH, "/"},
		{token.INT, "1"},
		{token.MINUS, "-"},
		{token.INT, "4"},
		{token.SEMICOLON, ";"},

		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.LT_EQ, "<="},
		{token.INT, "10"},
		{token.LBRACE, "{"},
		{token.TRUE, "true"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.FALSE, "false"},
		{token.RBRACE, "}"},

		{token.WHILE, "while"},
		{token.IDENT, "x"},
		{token.GT_EQ, ">="},
		{token.INT, "0"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "x"},
		{token.MINUS, "-"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},

		{token.FOR, "for"},
		{token.IDENT, "i"},
		{token.IN, "in"},
		{token.IDENT, "range"},
		{token.LPAREN, "("},
		{token.INT, "0"},
		{token.COMMA, ","},
		{token.INT, "3"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "std"},
		{token.PATH, "::"},
		{token.IDENT, "sys"},
		{token.PATH, "::"},
		{token.IDENT, "print"},
		{token.LPAREN, "("},
		{token.AMPERSAND, "&"},
		{token.ASTERISK, "*"},
		{token.IDENT, "i"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},

		{token.IDENT, "a"},
		{token.PERIOD, "."},
		{token.IDENT, "push"},
		{token.LPAREN, "("},
		{token.FLOAT, "1.5"},
		{token.RPAREN, ")"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.EQ, "=="},
		{token.BANG, "!"},
		{token.IDENT, "b"},
		{token.GT, ">"},
		{token.IDENT, "c"},
		{token.LT, "<"},
		{token.IDENT, "d"},
		{token.SEMICOLON, ";"},

		{token.STRING, "hi\n"},

		{token.RETURN, "return"},
		{token.INT, "1000"},
		{token.SEMICOLON, ";"},

		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	input := `let s = "a\"b";  foo`

	tests := []struct {
		expectedType token.TokenType
		start, end   int
	}{
		{token.LET, 0, 3},
		{token.IDENT, 4, 5},
		{token.ASSIGN, 6, 7},
		{token.STRING, 8, 14},
		{token.SEMICOLON, 14, 15},
		{token.IDENT, 17, 20},
		{token.EOF, 20, 20},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Position != tt.start || tok.End != tt.end {
			t.Errorf("tests[%d] - span wrong. expected=(%d, %d), got=(%d, %d)",
				i, tt.start, tt.end, tok.Position, tok.End)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)

	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %q: %q", tok.Type, tok.Literal)
	}

	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF after unterminated string, got %q", tok.Type)
	}
}

func TestBadUnderscoreInNumber(t *testing.T) {
	l := New(`1__0`)

	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %q: %q", tok.Type, tok.Literal)
	}
}

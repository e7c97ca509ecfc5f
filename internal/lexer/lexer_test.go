package lexer

import (
	"testing"

	"github.com/funvibe/funxyc/internal/token"
)

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func expectTypes(t *testing.T, input string, want []token.Type) {
	t.Helper()
	got := typesOf(New(input).Tokenize())
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %s, want %s\ngot: %v", i, got[i], want[i], got)
		}
	}
}

func TestSimpleAssignment(t *testing.T) {
	expectTypes(t, "x = 5", []token.Type{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF,
	})
}

func TestOperators(t *testing.T) {
	expectTypes(t, "a == b != c <= d >= e ** f -> g", []token.Type{
		token.IDENT, token.EQ, token.IDENT, token.NEQ, token.IDENT,
		token.LE, token.IDENT, token.GE, token.IDENT,
		token.STARSTAR, token.IDENT, token.ARROW, token.IDENT,
		token.NEWLINE, token.EOF,
	})
}

func TestKeywordsAndTypes(t *testing.T) {
	expectTypes(t, "def f(a: int) -> str:", []token.Type{
		token.DEF, token.IDENT, token.LPAREN, token.IDENT, token.COLON,
		token.TYPE_INT, token.RPAREN, token.ARROW, token.TYPE_STRING,
		token.COLON, token.NEWLINE, token.EOF,
	})
}

func TestIndentDedent(t *testing.T) {
	input := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	expectTypes(t, input, []token.Type{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestNestedDedents(t *testing.T) {
	input := "if a:\n    if b:\n        x = 1\ny = 2\n"
	expectTypes(t, input, []token.Type{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT, token.DEDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestDedentsAtEOF(t *testing.T) {
	input := "while x:\n    y = 1"
	expectTypes(t, input, []token.Type{
		token.WHILE, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	})
}

func TestBlankAndCommentLinesDoNotDedent(t *testing.T) {
	input := "if x:\n    a = 1\n\n    # comment\n    b = 2\n"
	expectTypes(t, input, []token.Type{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.NEWLINE,
		token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	})
}

func TestBracketsSuppressNewlines(t *testing.T) {
	input := "xs = [1,\n      2]\n"
	expectTypes(t, input, []token.Type{
		token.IDENT, token.ASSIGN, token.LBRACKET, token.INT, token.COMMA,
		token.INT, token.RBRACKET, token.NEWLINE, token.EOF,
	})
}

func TestStringEscapes(t *testing.T) {
	toks := New(`s = "a\nb\"c"`).Tokenize()
	if toks[2].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", toks[2].Type)
	}
	if toks[2].Lexeme != "a\nb\"c" {
		t.Errorf("unexpected string value %q", toks[2].Lexeme)
	}
}

func TestNumbers(t *testing.T) {
	toks := New("x = 12 + 3.5").Tokenize()
	if toks[2].Type != token.INT || toks[2].Lexeme != "12" {
		t.Errorf("expected INT 12, got %s %q", toks[2].Type, toks[2].Lexeme)
	}
	if toks[4].Type != token.FLOAT || toks[4].Lexeme != "3.5" {
		t.Errorf("expected FLOAT 3.5, got %s %q", toks[4].Type, toks[4].Lexeme)
	}
}

func TestInconsistentDedentIsIllegal(t *testing.T) {
	input := "if x:\n        a = 1\n    b = 2\n"
	toks := New(input).Tokenize()
	found := false
	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ILLEGAL token for inconsistent dedent, got %v", typesOf(toks))
	}
}

func TestPositions(t *testing.T) {
	toks := New("a = 1\nbb = 2\n").Tokenize()
	if toks[0].Line != 1 {
		t.Errorf("first token line = %d, want 1", toks[0].Line)
	}
	var bb token.Token
	for _, tok := range toks {
		if tok.Lexeme == "bb" {
			bb = tok
		}
	}
	if bb.Line != 2 || bb.Column != 1 {
		t.Errorf("bb at line %d col %d, want line 2 col 1", bb.Line, bb.Column)
	}
}

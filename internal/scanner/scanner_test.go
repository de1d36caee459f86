package scanner

import (
	"testing"

	"github.com/yscript-lang/yscript/internal/token"
)

func collect(source string) []token.Token {
	s := New(source)
	var out []token.Token
	for {
		tok := s.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF || tok.Kind == token.ERROR {
			break
		}
	}
	return out
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := collect("var x = 1 + 2; // comment\nprint x;")
	want := []token.Kind{
		token.VAR, token.IDENTIFIER, token.EQUAL, token.NUMBER, token.PLUS,
		token.NUMBER, token.SEMICOLON, token.PRINT, token.IDENTIFIER, token.SEMICOLON, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected %s, got %s", i, k, toks[i].Kind)
		}
	}
}

func TestScanTwoCharOperators(t *testing.T) {
	toks := collect("!= == <= >= < >")
	want := []token.Kind{token.BANG_EQUAL, token.EQUAL_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL, token.LESS, token.GREATER, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected %s, got %s", i, k, toks[i].Kind)
		}
	}
}

func TestScanStringAndLineTracking(t *testing.T) {
	toks := collect("\"hello\nworld\"")
	if toks[0].Kind != token.STRING {
		t.Fatalf("expected a STRING token, got %s", toks[0].Kind)
	}
	if toks[0].Lexeme != "\"hello\nworld\"" {
		t.Fatalf("expected the lexeme to include both quotes, got %q", toks[0].Lexeme)
	}
	if toks[0].Line != 2 {
		t.Fatalf("expected the newline inside the string to advance the line to 2, got %d", toks[0].Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := collect("\"never closed")
	if toks[0].Kind != token.ERROR {
		t.Fatalf("expected an ERROR token for an unterminated string")
	}
}

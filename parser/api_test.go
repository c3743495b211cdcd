package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deicod/htmldsl/lexer"
)

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.html")
	if err := os.WriteFile(good, []byte("<:def main(m)>{m}</:def>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	program, err := ParseFile(good)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if len(program.Functions) != 1 {
		t.Fatalf("expected one function, got %d", len(program.Functions))
	}

	bad := filepath.Join(dir, "bad.html")
	if err := os.WriteFile(bad, []byte("<:def main(m)>\n  <p>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = ParseFile(bad)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !strings.Contains(err.Error(), bad) {
		t.Errorf("error should name the file: %v", err)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.html")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTokenize(t *testing.T) {
	stream, err := Tokenize("<:def main(m)>hi</:def>")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []lexer.TokenType{
		lexer.TokenLess, lexer.TokenDef, lexer.TokenIdentifier, lexer.TokenLeftParen,
		lexer.TokenIdentifier, lexer.TokenRightParen, lexer.TokenGreater, lexer.TokenText,
		lexer.TokenTagClose, lexer.TokenDef, lexer.TokenGreater, lexer.TokenEOF,
	}
	tokens := stream.Tokens()
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens:\n%s", len(tokens), stream)
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Type, tt)
		}
	}
	if tokens[7].Value != "hi" {
		t.Errorf("text token = %q", tokens[7].Value)
	}
}

func TestTokenizeStopsAtError(t *testing.T) {
	stream, err := Tokenize("<:def main(m)>{@}")
	if err == nil {
		t.Fatal("expected error")
	}
	tokens := stream.Tokens()
	if last := tokens[len(tokens)-1]; last.Type != lexer.TokenInvalid {
		t.Fatalf("last token = %v", last)
	}
}

package lexer

import (
	"strings"
	"testing"
)

func TestTokenTypeString(t *testing.T) {
	if TokenIdentifier.String() != "IDENTIFIER" {
		t.Errorf("got %s", TokenIdentifier)
	}
	if got := TokenType(999).String(); got != "Token(999)" {
		t.Errorf("unknown type rendered as %s", got)
	}
}

func TestTokenTypeIsComparison(t *testing.T) {
	for _, tt := range []TokenType{TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual} {
		if !tt.IsComparison() {
			t.Errorf("%s should be a comparison", tt)
		}
	}
	for _, tt := range []TokenType{TokenAssign, TokenNot, TokenTagClose, TokenIn} {
		if tt.IsComparison() {
			t.Errorf("%s should not be a comparison", tt)
		}
	}
}

func TestTokenStream(t *testing.T) {
	stream := NewTokenStream([]Token{
		{Type: TokenIdentifier, Value: "a", Line: 1, Column: 1},
		{Type: TokenDot, Value: ".", Line: 1, Column: 2},
	})
	if stream.Peek().Value != "a" {
		t.Fatal("Peek should not consume")
	}
	if stream.Next().Value != "a" || stream.Next().Value != "." {
		t.Fatal("unexpected token order")
	}
	if !stream.Eof() || stream.Next().Type != TokenEOF {
		t.Fatal("exhausted stream should report EOF")
	}
	if !strings.Contains(stream.String(), "IDENTIFIER('a') at 1:1") {
		t.Errorf("unexpected dump:\n%s", stream.String())
	}
}

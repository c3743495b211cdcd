package lexer

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenInvalid
	TokenText
	TokenString
	TokenNumber
	TokenIdentifier

	// punctuation
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenTagClose     // </
	TokenInlineClose  // />
	TokenAssign       // =
	TokenNot          // !
	TokenQuote        // "
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenLeftCurly
	TokenRightCurly
	TokenDot
	TokenComma

	// keywords
	TokenDef  // :def
	TokenFor  // :for
	TokenIf   // :if
	TokenElse // :else
	TokenIn   // in
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenInvalid:      "INVALID",
	TokenText:         "TEXT",
	TokenString:       "STRING",
	TokenNumber:       "NUMBER",
	TokenIdentifier:   "IDENTIFIER",
	TokenLess:         "LESS",
	TokenGreater:      "GREATER",
	TokenLessEqual:    "LESS_EQUAL",
	TokenGreaterEqual: "GREATER_EQUAL",
	TokenEqual:        "EQUAL",
	TokenNotEqual:     "NOT_EQUAL",
	TokenTagClose:     "TAG_CLOSE",
	TokenInlineClose:  "INLINE_CLOSE",
	TokenAssign:       "ASSIGN",
	TokenNot:          "NOT",
	TokenQuote:        "QUOTE",
	TokenLeftParen:    "LPAREN",
	TokenRightParen:   "RPAREN",
	TokenLeftBracket:  "LBRACKET",
	TokenRightBracket: "RBRACKET",
	TokenLeftCurly:    "LCURLY",
	TokenRightCurly:   "RCURLY",
	TokenDot:          "DOT",
	TokenComma:        "COMMA",
	TokenDef:          "DEF",
	TokenFor:          "FOR",
	TokenIf:           "IF",
	TokenElse:         "ELSE",
	TokenIn:           "IN",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", tt)
}

// IsComparison reports whether the token is one of the condition operators.
func (tt TokenType) IsComparison() bool {
	switch tt {
	case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		return true
	}
	return false
}

// Token represents a single token of the template source
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%s('%s') at %d:%d", t.Type, t.Value, t.Line, t.Column)
}

// TokenStream represents a buffered stream of tokens. The parser works
// directly on the Scanner; the stream is kept for debugging output and tests.
type TokenStream struct {
	tokens []Token
	pos    int
}

func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{
		tokens: tokens,
		pos:    0,
	}
}

func (ts *TokenStream) Next() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	token := ts.tokens[ts.pos]
	ts.pos++
	return token
}

func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[ts.pos]
}

func (ts *TokenStream) Eof() bool {
	return ts.Peek().Type == TokenEOF
}

// Len returns the number of buffered tokens
func (ts *TokenStream) Len() int {
	return len(ts.tokens)
}

// Tokens returns a copy of the buffered tokens
func (ts *TokenStream) Tokens() []Token {
	return append([]Token(nil), ts.tokens...)
}

// String renders one token per line
func (ts *TokenStream) String() string {
	var b strings.Builder
	for _, tok := range ts.tokens {
		b.WriteString(tok.String())
		b.WriteByte('\n')
	}
	return b.String()
}

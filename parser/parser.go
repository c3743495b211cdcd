package parser

import (
	"fmt"
	"strings"

	"github.com/deicod/htmldsl/lexer"
	"github.com/deicod/htmldsl/nodes"
)

// TemplateSyntaxError represents a lexical or syntactic error in a template
type TemplateSyntaxError struct {
	Message  string
	Line     int
	Column   int
	Name     string
	Filename string
	Expected []lexer.TokenType
	Found    lexer.TokenType
	Cause    error
}

func (e *TemplateSyntaxError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s at line %d, column %d in %s", e.Message, e.Line, e.Column, e.Filename)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s at line %d, column %d in %s", e.Message, e.Line, e.Column, e.Name)
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

func (e *TemplateSyntaxError) Unwrap() error {
	return e.Cause
}

// Parser is a recursive-descent parser over a Scanner with one token of
// lookahead.
type Parser struct {
	scanner  *lexer.Scanner
	name     string
	filename string
	tagStack []string
}

// NewParser creates a new parser reading from the given reader
func NewParser(reader *lexer.Reader, name, filename string) *Parser {
	return &Parser{
		scanner:  lexer.NewScanner(reader),
		name:     name,
		filename: filename,
		tagStack: make([]string, 0),
	}
}

// Scanner exposes the underlying scanner, e.g. to enable token tracing.
func (p *Parser) Scanner() *lexer.Scanner {
	return p.scanner
}

func (p *Parser) current() lexer.Token {
	return p.scanner.Token()
}

func (p *Parser) advance() lexer.Token {
	return p.scanner.NextToken()
}

// expect checks the current token without consuming anything.
func (p *Parser) expect(expected ...lexer.TokenType) (lexer.Token, error) {
	token := p.current()
	for _, tt := range expected {
		if token.Type == tt {
			return token, nil
		}
	}
	return token, p.unexpected(token, expected...)
}

// advanceExpect reads the next token and checks its type.
func (p *Parser) advanceExpect(expected ...lexer.TokenType) (lexer.Token, error) {
	p.advance()
	return p.expect(expected...)
}

func (p *Parser) unexpected(token lexer.Token, expected ...lexer.TokenType) error {
	if token.Type == lexer.TokenInvalid {
		return p.invalidToken(token)
	}
	if token.Type == lexer.TokenEOF {
		return p.failEOF(token, expected)
	}

	names := make([]string, len(expected))
	for i, tt := range expected {
		names[i] = tt.String()
	}
	found := token.Type.String()
	if token.Value != "" {
		found = fmt.Sprintf("%s %q", found, token.Value)
	}
	err := p.Fail(fmt.Sprintf("expected %s, got %s", strings.Join(names, " or "), found), token)
	err.Expected = expected
	err.Found = token.Type
	return err
}

func (p *Parser) invalidToken(token lexer.Token) error {
	msg := fmt.Sprintf("invalid character %q", token.Value)
	var cause error
	if lexErr := p.scanner.Err(); lexErr != nil {
		msg = lexErr.Message
		cause = lexErr
	}
	err := p.Fail(msg, token)
	err.Found = lexer.TokenInvalid
	err.Cause = cause
	return err
}

func (p *Parser) failEOF(token lexer.Token, expected []lexer.TokenType) error {
	var message strings.Builder
	message.WriteString("unexpected end of template")
	if len(expected) > 0 {
		names := make([]string, len(expected))
		for i, tt := range expected {
			names[i] = tt.String()
		}
		message.WriteString(fmt.Sprintf(", expected %s", strings.Join(names, " or ")))
	}
	if len(p.tagStack) > 0 {
		message.WriteString(fmt.Sprintf(". The innermost block that needs to be closed is %q", p.tagStack[len(p.tagStack)-1]))
	}
	err := p.Fail(message.String(), token)
	err.Expected = expected
	err.Found = lexer.TokenEOF
	return err
}

// Fail creates a syntax error at the position of the given token
func (p *Parser) Fail(msg string, token lexer.Token) *TemplateSyntaxError {
	return &TemplateSyntaxError{
		Message:  msg,
		Line:     token.Line,
		Column:   token.Column,
		Name:     p.name,
		Filename: p.filename,
		Found:    token.Type,
	}
}

func (p *Parser) pushTag(name string) {
	p.tagStack = append(p.tagStack, name)
}

func (p *Parser) popTag() {
	if len(p.tagStack) > 0 {
		p.tagStack = p.tagStack[:len(p.tagStack)-1]
	}
}

func position(token lexer.Token) nodes.Position {
	return nodes.NewPosition(token.Line, token.Column)
}

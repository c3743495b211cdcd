package parser

import (
	"github.com/deicod/htmldsl/lexer"
	"github.com/deicod/htmldsl/nodes"
)

// ParseTemplate is a simple one-line API for parsing templates.
// Returns the AST or an error with position information
func ParseTemplate(template string) (*nodes.Program, error) {
	return ParseReader(lexer.NewStringReader(template), "template", "")
}

// ParseFile parses the template stored at path.
func ParseFile(path string) (*nodes.Program, error) {
	reader, err := lexer.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return ParseReader(reader, path, path)
}

// ParseReader parses a template from an already opened reader.
func ParseReader(reader *lexer.Reader, name, filename string) (*nodes.Program, error) {
	return NewParser(reader, name, filename).Parse()
}

// Tokenize parses the template and returns every token the parser consumed,
// including text and string runs. On a syntax error the tokens read so far
// are returned together with the error.
func Tokenize(template string) (*lexer.TokenStream, error) {
	p := NewParser(lexer.NewStringReader(template), "template", "")
	p.Scanner().SetTracing(true)
	_, err := p.Parse()
	return p.Scanner().Trace(), err
}

// Package htmldsl compiles templates written in a small HTML-like language
// and renders them against a JSON model.
package htmldsl

import (
	"io"
	"path/filepath"

	"github.com/deicod/htmldsl/nodes"
	"github.com/deicod/htmldsl/runtime"
)

// Version of the htmldsl library
const Version = "0.1.0"

// Template represents a compiled template
type Template = runtime.Template

// Environment holds rendering options, the loader and the template cache
type Environment = runtime.Environment

// Options control rendering
type Options = runtime.Options

// NewEnvironment creates a new environment with default options
func NewEnvironment() *Environment {
	return runtime.NewEnvironment()
}

// ParseString parses and checks a template from a string
func ParseString(source string) (*Template, error) {
	return runtime.ParseString(source)
}

// ParseFile parses and checks a template from a file
func ParseFile(filename string) (*Template, error) {
	if filename == "" {
		return nil, runtime.NewError(runtime.ErrorTypeTemplate, "filename must not be empty", nodes.Position{}, nil)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	env := runtime.NewEnvironment()
	env.SetLoader(runtime.NewFileSystemLoader(filepath.Dir(absPath)))
	return env.LoadTemplate(filepath.Base(absPath))
}

// Render compiles source and renders it with the JSON model into w.
func Render(source, model string, w io.Writer) error {
	return runtime.Execute(source, model, w)
}

// Node represents an AST node
type Node = nodes.Node

// DumpAST returns a string representation of the AST for debugging
func DumpAST(node Node) string {
	return nodes.Dump(node)
}

// Walk traverses the AST using the visitor pattern
func Walk(visitor nodes.Visitor, node Node) {
	nodes.Walk(visitor, node)
}

// Error represents a semantics or runtime error
type Error = runtime.Error

// ErrorType represents the type of error
type ErrorType = runtime.ErrorType

// IsSyntaxError reports whether err is a lexical or syntactic error
func IsSyntaxError(err error) bool {
	return runtime.IsSyntaxError(err)
}

// IsSemanticsError reports whether err was raised by semantic analysis
func IsSemanticsError(err error) bool {
	return runtime.IsSemanticsError(err)
}

// IsRuntimeError reports whether err was raised while rendering
func IsRuntimeError(err error) bool {
	return runtime.IsRuntimeError(err)
}

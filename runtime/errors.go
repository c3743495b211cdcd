package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deicod/htmldsl/nodes"
	"github.com/deicod/htmldsl/parser"
)

// ErrorType represents the different kinds of compile and render errors
type ErrorType string

const (
	ErrorTypeTemplate  ErrorType = "template_error"
	ErrorTypeSemantics ErrorType = "semantics_error"
	ErrorTypeRuntime   ErrorType = "runtime_error"
)

// Error represents a semantics or runtime error with position information
type Error struct {
	Type     ErrorType
	Message  string
	Position nodes.Position
	Node     nodes.Node
	Cause    error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Position.Line > 0 {
		if e.Position.Column > 0 {
			return fmt.Sprintf("%s at line %d, column %d: %s", e.Type, e.Position.Line, e.Position.Column, e.Message)
		}
		return fmt.Sprintf("%s at line %d: %s", e.Type, e.Position.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType ErrorType, message string, position nodes.Position, node nodes.Node) *Error {
	return &Error{
		Type:     errorType,
		Message:  message,
		Position: position,
		Node:     node,
	}
}

// NewErrorWithCause creates a new error with an underlying cause
func NewErrorWithCause(errorType ErrorType, message string, position nodes.Position, node nodes.Node, cause error) *Error {
	return &Error{
		Type:     errorType,
		Message:  message,
		Position: position,
		Node:     node,
		Cause:    cause,
	}
}

// NewSemanticsError creates an error for a static rule violation
func NewSemanticsError(message string, node nodes.Node) *Error {
	return NewError(ErrorTypeSemantics, message, positionOf(node), node)
}

// NewRuntimeError creates an error raised while rendering
func NewRuntimeError(message string, node nodes.Node) *Error {
	return NewError(ErrorTypeRuntime, message, positionOf(node), node)
}

func positionOf(node nodes.Node) nodes.Position {
	if node == nil {
		return nodes.Position{}
	}
	return node.GetPosition()
}

// IsSyntaxError checks if an error is a lexical or syntactic template error
func IsSyntaxError(err error) bool {
	var syntaxErr *parser.TemplateSyntaxError
	return errors.As(err, &syntaxErr)
}

// IsSemanticsError checks if an error was raised by semantic analysis
func IsSemanticsError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeSemantics
}

// IsRuntimeError checks if an error was raised while rendering
func IsRuntimeError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeRuntime
}

// TemplateNotFoundError represents an error when a single template cannot be located.
type TemplateNotFoundError struct {
	base  *Error
	Name  string
	Tried []string
}

// NewTemplateNotFound creates a TemplateNotFoundError with optional tried locations and cause.
func NewTemplateNotFound(name string, tried []string, cause error) *TemplateNotFoundError {
	message := fmt.Sprintf("template %s not found", name)
	if len(tried) > 0 {
		message = fmt.Sprintf("%s (tried: %s)", message, strings.Join(tried, ", "))
	}

	return &TemplateNotFoundError{
		base:  NewErrorWithCause(ErrorTypeTemplate, message, nodes.Position{}, nil, cause),
		Name:  name,
		Tried: append([]string(nil), tried...),
	}
}

// Error returns the message for TemplateNotFoundError.
func (e *TemplateNotFoundError) Error() string {
	if e == nil {
		return "template not found"
	}
	if e.base != nil {
		return e.base.Error()
	}
	return fmt.Sprintf("template %s not found", e.Name)
}

// Unwrap returns the underlying cause for TemplateNotFoundError.
func (e *TemplateNotFoundError) Unwrap() error {
	if e == nil || e.base == nil {
		return nil
	}
	return e.base.Cause
}

package runtime

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deicod/htmldsl/nodes"
)

// Template represents a checked template ready for rendering. A Template is
// immutable once created and may be executed concurrently.
type Template struct {
	name        string
	environment *Environment
	ast         *nodes.Program
	program     *Program
}

// NewTemplate checks ast and creates a template bound to env.
func NewTemplate(env *Environment, ast *nodes.Program, name string) (*Template, error) {
	if env == nil {
		return nil, NewError(ErrorTypeTemplate, "environment cannot be nil", nodes.Position{}, nil)
	}
	if ast == nil {
		return nil, NewError(ErrorTypeTemplate, "AST cannot be nil", nodes.Position{}, nil)
	}

	program, err := Check(ast)
	if err != nil {
		return nil, err
	}

	return &Template{
		name:        name,
		environment: env,
		ast:         ast,
		program:     program,
	}, nil
}

// Execute parses model as JSON and renders the template into writer.
func (t *Template) Execute(model string, writer io.Writer) error {
	value, err := ParseModel(model)
	if err != nil {
		return err
	}
	return t.ExecuteValue(value, writer)
}

// ExecuteValue renders the template with an already parsed model.
func (t *Template) ExecuteValue(model Value, writer io.Writer) error {
	if writer == nil {
		return NewError(ErrorTypeTemplate, "writer cannot be nil", nodes.Position{}, nil)
	}

	logger := t.environment.Logger()
	start := time.Now()

	buffered := bufio.NewWriter(writer)
	err := NewExecutor(t.program, t.environment.Options(), buffered).Run(model)
	if flushErr := buffered.Flush(); err == nil && flushErr != nil {
		err = NewErrorWithCause(ErrorTypeRuntime, "write failed", nodes.Position{}, nil, flushErr)
	}

	if err != nil {
		logger.Debug("template render failed", "template", t.name, "error", err)
		return err
	}
	logger.Debug("template rendered", "template", t.name, "duration", time.Since(start))
	return nil
}

// ExecuteToString renders the template and returns the output
func (t *Template) ExecuteToString(model string) (string, error) {
	var buf strings.Builder
	if err := t.Execute(model, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Generate renders the template in the background and returns a stream of
// output fragments.
func (t *Template) Generate(model string) (*TemplateStream, error) {
	value, err := ParseModel(model)
	if err != nil {
		return nil, err
	}

	stream := newTemplateStream()
	go func() {
		err := NewExecutor(t.program, t.environment.Options(), stream).Run(value)
		stream.close(err)
	}()
	return stream, nil
}

// ParseModel parses the JSON model passed to main.
func ParseModel(model string) (Value, error) {
	value, err := ParseJSON(model)
	if err != nil {
		return Value{}, NewErrorWithCause(ErrorTypeRuntime, fmt.Sprintf("invalid JSON model: %v", err), nodes.Position{}, nil, err)
	}
	return value, nil
}

// Name returns the template name
func (t *Template) Name() string {
	return t.name
}

// Environment returns the template's environment
func (t *Template) Environment() *Environment {
	return t.environment
}

// AST returns the parsed program
func (t *Template) AST() *nodes.Program {
	return t.ast
}

// Program returns the checked program
func (t *Template) Program() *Program {
	return t.program
}

// FunctionNames returns the functions the template defines in source order.
func (t *Template) FunctionNames() []string {
	return t.program.FunctionNames()
}

// String returns a string representation of the template
func (t *Template) String() string {
	return fmt.Sprintf("Template(name=%s, functions=[%s])", t.name, strings.Join(t.program.FunctionNames(), ", "))
}

// Dump returns a debug representation of the template's AST
func (t *Template) Dump() string {
	return nodes.Dump(t.ast)
}

// NewTemplateFromString is a convenience function to create a template from a string
func NewTemplateFromString(templateString string) (*Template, error) {
	env := NewEnvironment()
	return env.NewTemplate(templateString)
}

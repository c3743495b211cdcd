package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/deicod/htmldsl/parser"
	"github.com/deicod/htmldsl/runtime"
)

var (
	errorColor   = lipgloss.Color("#ef4444") // Red
	warningColor = lipgloss.Color("#f59e0b") // Yellow
	successColor = lipgloss.Color("#10b981") // Green
	mutedColor   = lipgloss.Color("#94a3b8") // Muted gray

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	positionStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	watchStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)

// Exit codes by error kind
const (
	exitFailure   = 1
	exitSyntax    = 2
	exitSemantics = 3
	exitRuntime   = 4
)

// errorKind classifies err for display and exit status.
func errorKind(err error) (string, int) {
	switch {
	case runtime.IsSyntaxError(err):
		return "syntax error", exitSyntax
	case runtime.IsSemanticsError(err):
		return "semantics error", exitSemantics
	case runtime.IsRuntimeError(err):
		return "runtime error", exitRuntime
	}
	return "error", exitFailure
}

func exitCode(err error) int {
	_, code := errorKind(err)
	return code
}

// formatError renders err as a styled one-line diagnostic.
func formatError(err error) string {
	kind, _ := errorKind(err)
	message := err.Error()
	position := ""

	var syntaxErr *parser.TemplateSyntaxError
	var runtimeErr *runtime.Error
	switch {
	case errors.As(err, &syntaxErr):
		message = syntaxErr.Message
		position = fmt.Sprintf("%d:%d", syntaxErr.Line, syntaxErr.Column)
		if syntaxErr.Filename != "" {
			position = syntaxErr.Filename + ":" + position
		}
	case errors.As(err, &runtimeErr):
		message = runtimeErr.Message
		if runtimeErr.Position.Line > 0 {
			position = runtimeErr.Position.String()
		}
	}

	if position == "" {
		return fmt.Sprintf("%s: %s", badgeStyle.Render(kind), message)
	}
	return fmt.Sprintf("%s %s: %s", badgeStyle.Render(kind), positionStyle.Render(position), message)
}

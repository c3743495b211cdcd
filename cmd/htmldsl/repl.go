package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/deicod/htmldsl/nodes"
	"github.com/deicod/htmldsl/runtime"
)

const (
	replPrompt = "model> "
	replHelp   = `Enter a JSON model on one line to render the template with it.
  :reload     recompile the template
  :functions  list the template's functions
  :help       show this help
  exit        quit (or Ctrl+D)`
)

var replCommands = []string{":reload", ":functions", ":help", "exit"}

func newReplCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl TEMPLATE",
		Short: "Render a template interactively against JSON models",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.repl(args[0], cmd.OutOrStdout())
		},
	}
}

// replSession holds the template under test and completion candidates taken
// from the last model and from the fields main reads off its parameter.
type replSession struct {
	app      *app
	env      *runtime.Environment
	name     string
	template *runtime.Template
	keys     []string
	fields   []string
}

func (a *app) repl(templateArg string, out io.Writer) error {
	s := &replSession{app: a, env: a.newEnvironment(), name: templateName(templateArg)}
	if err := s.reload(); err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	historyFile := filepath.Join(os.TempDir(), ".htmldsl_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "htmldsl %s - %s\n", version, s.name)
	fmt.Fprintln(out, "Type ':help' for commands")

	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}
		s.eval(trimmed, out)
	}
}

// eval runs one REPL line: a command or a JSON model.
func (s *replSession) eval(input string, out io.Writer) {
	switch input {
	case ":help":
		fmt.Fprintln(out, replHelp)
		return
	case ":reload":
		if err := s.reload(); err != nil {
			fmt.Fprintln(out, formatError(err))
			return
		}
		fmt.Fprintln(out, okStyle.Render("reloaded"))
		return
	case ":functions":
		fmt.Fprintln(out, strings.Join(s.template.FunctionNames(), "\n"))
		return
	}
	if strings.HasPrefix(input, ":") {
		fmt.Fprintf(out, "unknown command %s (try :help)\n", input)
		return
	}

	model, err := runtime.ParseModel(input)
	if err != nil {
		fmt.Fprintln(out, formatError(err))
		return
	}
	s.keys = model.Keys()

	var b strings.Builder
	err = s.template.ExecuteValue(model, &b)
	fmt.Fprintln(out, b.String())
	if err != nil {
		fmt.Fprintln(out, formatError(err))
	}
}

func (s *replSession) reload() error {
	s.env.InvalidateTemplate(s.name)
	tmpl, err := s.env.LoadTemplate(s.name)
	if err != nil {
		return err
	}
	s.template = tmpl
	s.fields = modelFields(tmpl.AST())
	return nil
}

// modelFields lists the first path segment of every value main reads from
// its model parameter, such as "title" for {m.title}.
func modelFields(program *nodes.Program) []string {
	main, ok := program.Function(runtime.MainFunction)
	if !ok || len(main.Params) != 1 {
		return nil
	}
	param := main.Params[0]

	seen := make(map[string]bool)
	var fields []string
	nodes.Walk(nodes.NodeVisitorFunc(func(node nodes.Node) interface{} {
		v, ok := node.(*nodes.ValueOf)
		if !ok {
			return nil
		}
		if v.Name == param && !v.HasIndex && v.Next != nil && !seen[v.Next.Name] {
			seen[v.Next.Name] = true
			fields = append(fields, v.Next.Name)
		}
		// the rest of the path holds field names, not roots
		return true
	}), main)
	sort.Strings(fields)
	return fields
}

// complete offers REPL commands and, inside a JSON key, the top-level keys of
// the last model together with the fields the template reads.
func (s *replSession) complete(line string) []string {
	var out []string
	for _, cmd := range replCommands {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}

	i := strings.LastIndex(line, `"`)
	if i < 0 {
		return out
	}
	prefix, partial := line[:i+1], line[i+1:]
	seen := make(map[string]bool)
	for _, key := range append(append([]string{}, s.keys...), s.fields...) {
		if !seen[key] && strings.HasPrefix(key, partial) {
			seen[key] = true
			out = append(out, prefix+key+`"`)
		}
	}
	sort.Strings(out)
	return out
}

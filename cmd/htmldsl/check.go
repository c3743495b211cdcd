package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deicod/htmldsl/nodes"
	"github.com/deicod/htmldsl/parser"
)

func newCheckCommand(a *app) *cobra.Command {
	var tokens bool
	var ast bool

	cmd := &cobra.Command{
		Use:   "check TEMPLATE",
		Short: "Parse and check a template without rendering it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(args[0], tokens, ast, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&tokens, "tokens", false, "Print the token stream")
	cmd.Flags().BoolVar(&ast, "ast", false, "Print the syntax tree")

	return cmd
}

func (a *app) check(templateArg string, tokens, ast bool, out io.Writer) error {
	if tokens {
		source, err := os.ReadFile(templateArg)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		stream, err := parser.Tokenize(string(source))
		fmt.Fprint(out, stream.String())
		if err != nil {
			return err
		}
	}

	env := a.newEnvironment()
	tmpl, err := env.LoadTemplate(templateName(templateArg))
	if err != nil {
		return err
	}

	if ast {
		fmt.Fprint(out, nodes.Dump(tmpl.AST()))
	}
	names := tmpl.FunctionNames()
	fmt.Fprintf(out, "%s %s: %d function(s): %s\n",
		okStyle.Render("ok"), tmpl.Name(), len(names), strings.Join(names, ", "))
	return nil
}

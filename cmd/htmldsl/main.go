package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deicod/htmldsl"
)

var (
	version = htmldsl.Version
	commit  = "dev"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCommand(os.Getenv)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(exitCode(err))
	}
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv}

	rootCmd := &cobra.Command{
		Use:   "htmldsl",
		Short: "htmldsl - compile and render HTML templates against JSON models",
		Long: `htmldsl compiles templates written in a small HTML-like language
(functions, loops, conditionals and interpolation) and renders them
against a JSON model.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to htmldsl.yaml")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newReplCommand(a))

	return rootCmd
}

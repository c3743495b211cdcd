package main

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/deicod/htmldsl/internal/config"
	"github.com/deicod/htmldsl/runtime"
)

type renderFlags struct {
	output       string
	model        string
	boilerplate  bool
	indent       int
	autoescape   bool
	maxCallDepth int
	gzip         bool
}

func newRenderCommand(a *app) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render TEMPLATE [MODEL]",
		Short: "Render a template against a JSON model",
		Long: `Renders TEMPLATE with the JSON document in MODEL (a file, or - for stdin).
Without MODEL the --model value is used, defaulting to null.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRenderOverrides(cmd, a.cfg, flags)
			if err := config.Validate(a.cfg); err != nil {
				return err
			}

			modelPath := ""
			if len(args) > 1 {
				modelPath = args[1]
			}
			model, err := readModel(modelPath, flags.model, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.render(args[0], model, flags.output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "Write output to file instead of stdout")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Inline JSON model")
	cmd.Flags().BoolVar(&flags.boilerplate, "boilerplate", false, "Prepend the HTML5 doctype and charset preamble")
	cmd.Flags().IntVar(&flags.indent, "indent", 4, "Spaces per nesting level")
	cmd.Flags().BoolVar(&flags.autoescape, "autoescape", false, "HTML-escape interpolated values")
	cmd.Flags().IntVar(&flags.maxCallDepth, "max-call-depth", 512, "Maximum nested function calls (0 = unlimited)")
	cmd.Flags().BoolVar(&flags.gzip, "gzip", false, "Gzip-compress the output")

	return cmd
}

// applyRenderOverrides copies explicitly set flags over the file configuration.
func applyRenderOverrides(cmd *cobra.Command, cfg *config.Config, flags renderFlags) {
	if cmd.Flags().Changed("boilerplate") {
		cfg.Render.Boilerplate = flags.boilerplate
	}
	if cmd.Flags().Changed("indent") {
		cfg.Render.Indent = flags.indent
	}
	if cmd.Flags().Changed("autoescape") {
		cfg.Render.Autoescape = flags.autoescape
	}
	if cmd.Flags().Changed("max-call-depth") {
		cfg.Render.MaxCallDepth = flags.maxCallDepth
	}
	if cmd.Flags().Changed("gzip") {
		cfg.Render.Gzip = flags.gzip
	}
}

// render compiles the template and writes the output to outPath, or to
// stdout when outPath is empty.
func (a *app) render(templateArg, model, outPath string, stdout io.Writer) error {
	return a.renderWith(a.newEnvironment(), templateArg, model, outPath, stdout)
}

func (a *app) renderWith(env *runtime.Environment, templateArg, model, outPath string, stdout io.Writer) (err error) {
	tmpl, err := env.LoadTemplate(templateName(templateArg))
	if err != nil {
		return err
	}

	var out io.Writer = stdout
	if outPath != "" {
		f, ferr := os.Create(outPath)
		if ferr != nil {
			return fmt.Errorf("failed to create output: %w", ferr)
		}
		defer closeInto(&err, f)
		out = f
	}

	if a.cfg.Render.Gzip {
		zw := gzip.NewWriter(out)
		defer closeInto(&err, zw)
		out = zw
	}

	if err := tmpl.Execute(model, out); err != nil {
		return err
	}
	a.logger.Info("rendered", "template", tmpl.Name(), "out", outPath, "gzip", a.cfg.Render.Gzip)
	return nil
}

// closeInto closes c and stores its error in *err unless an earlier error is
// already there.
func closeInto(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil && cerr != nil {
		*err = cerr
	}
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deicod/htmldsl/internal/config"
	"github.com/deicod/htmldsl/internal/logging"
	"github.com/deicod/htmldsl/runtime"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	getenv     func(string) string

	cfg    *config.Config
	logger *slog.Logger
}

// load reads the configuration and builds the logger, applying the
// persistent flag overrides.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// newEnvironment creates a runtime environment from the loaded configuration.
func (a *app) newEnvironment() *runtime.Environment {
	env := runtime.NewEnvironmentWithOptions(a.cfg.Options())
	env.SetLogger(a.logger)
	env.SetCache(a.cfg.NewCache())
	env.SetLoader(runtime.NewFileSystemLoader(a.cfg.Templates.SearchPath...))
	return env
}

// templateName resolves a command line argument to a loader name: existing
// files are addressed by absolute path, anything else by search path.
func templateName(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		if abs, err := filepath.Abs(arg); err == nil {
			return abs
		}
	}
	return arg
}

// readModel returns the JSON model from a file, from stdin for "-", or the
// inline value when no file is given.
func readModel(path, inline string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		if inline == "" {
			return "null", nil
		}
		return inline, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read model from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read model: %w", err)
	}
	return string(data), nil
}

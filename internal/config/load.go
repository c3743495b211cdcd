package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "htmldsl.yaml"

// ErrNotFound is returned by LoadWithPath when no configuration file exists.
var ErrNotFound = errors.New("no config file found")

// Load reads configuration with ENV interpolation. If configPath is empty,
// default locations are searched and Defaults is returned when none exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	if errors.Is(err, ErrNotFound) && configPath == "" {
		return Defaults(), nil
	}
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, "", err
	}

	cfg.BaseDir = baseDir
	for i, dir := range cfg.Templates.SearchPath {
		if dir != "" && !filepath.IsAbs(dir) {
			cfg.Templates.SearchPath[i] = filepath.Join(baseDir, dir)
		}
	}

	return cfg, absPath, nil
}

// Parse decodes YAML configuration on top of Defaults and validates it.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > HTMLDSL_CONFIG env > ./htmldsl.yaml > ~/.config/htmldsl/htmldsl.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("HTMLDSL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("HTMLDSL_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "htmldsl", FileName)
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("%w (tried HTMLDSL_CONFIG, %s, ~/.config/htmldsl/%s)", ErrNotFound, FileName, FileName)
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// Validate checks the configuration for errors. Call it again after applying
// CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Render.Indent < 0 {
		errs = append(errs, fmt.Sprintf("invalid render.indent: %d (must be >= 0)", cfg.Render.Indent))
	}
	if cfg.Render.MaxCallDepth < 0 {
		errs = append(errs, fmt.Sprintf("invalid render.max_call_depth: %d (must be >= 0)", cfg.Render.MaxCallDepth))
	}
	if cfg.Templates.CacheSize < 0 {
		errs = append(errs, fmt.Sprintf("invalid templates.cache_size: %d (must be >= 0)", cfg.Templates.CacheSize))
	}
	if cfg.Templates.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid templates.cache_ttl: %s (must be >= 0)", cfg.Templates.CacheTTL))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("render:\n  autoescape: true\n"), noEnv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Render.Autoescape {
		t.Error("autoescape should be enabled")
	}
	if cfg.Render.Indent != 4 || cfg.Render.MaxCallDepth != 512 {
		t.Errorf("defaults lost: %+v", cfg.Render)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults lost: %+v", cfg.Log)
	}

	opts := cfg.Options()
	if !opts.Autoescape || opts.IndentWidth != 4 || opts.MaxCallDepth != 512 || opts.Boilerplate {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseInterpolatesEnv(t *testing.T) {
	env := map[string]string{"INDENT": "2"}
	getenv := func(key string) string { return env[key] }

	data := "render:\n  indent: ${INDENT}\nlog:\n  level: ${LEVEL:-debug}\ntemplates:\n  cache_ttl: 30s\n"
	cfg, err := Parse([]byte(data), getenv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Render.Indent != 2 {
		t.Errorf("indent = %d, want 2", cfg.Render.Indent)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Templates.CacheTTL != 30*time.Second {
		t.Errorf("cache_ttl = %s, want 30s", cfg.Templates.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative indent", "render:\n  indent: -1\n", "render.indent"},
		{"negative depth", "render:\n  max_call_depth: -5\n", "render.max_call_depth"},
		{"bad level", "log:\n  level: loud\n", "invalid log level"},
		{"bad format", "log:\n  format: xml\n", "invalid log format"},
		{"negative cache", "templates:\n  cache_size: -1\n", "templates.cache_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), noEnv)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadWithPathResolvesSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("templates:\n  search_path: [views, /abs]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, err := LoadWithPath(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if filepath.Dir(resolved) != cfg.BaseDir {
		t.Errorf("BaseDir %q does not match %q", cfg.BaseDir, resolved)
	}
	want := []string{filepath.Join(cfg.BaseDir, "views"), "/abs"}
	if len(cfg.Templates.SearchPath) != 2 || cfg.Templates.SearchPath[0] != want[0] || cfg.Templates.SearchPath[1] != want[1] {
		t.Errorf("search path = %v, want %v", cfg.Templates.SearchPath, want)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), noEnv); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadFromEnvVariable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("render:\n  boilerplate: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	getenv := func(key string) string {
		if key == "HTMLDSL_CONFIG" {
			return path
		}
		return ""
	}
	cfg, err := Load("", getenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Render.Boilerplate {
		t.Error("boilerplate should come from HTMLDSL_CONFIG file")
	}
}

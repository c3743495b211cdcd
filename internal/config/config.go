package config

import (
	"time"

	"github.com/deicod/htmldsl/runtime"
)

// Config represents the complete htmldsl configuration
type Config struct {
	BaseDir   string          `yaml:"-"` // Directory containing config file, for resolving relative paths
	Render    RenderConfig    `yaml:"render"`
	Templates TemplatesConfig `yaml:"templates"`
	Log       LogConfig       `yaml:"log"`
}

// RenderConfig holds output settings
type RenderConfig struct {
	Boilerplate  bool `yaml:"boilerplate"`    // Prepend the doctype and charset preamble
	Indent       int  `yaml:"indent"`         // Spaces per nesting level
	Autoescape   bool `yaml:"autoescape"`     // HTML-escape interpolated values
	MaxCallDepth int  `yaml:"max_call_depth"` // Nested function call limit (0 = unlimited)
	Gzip         bool `yaml:"gzip"`           // Compress rendered output
}

// TemplatesConfig holds template lookup settings
type TemplatesConfig struct {
	SearchPath []string      `yaml:"search_path"`
	CacheSize  int           `yaml:"cache_size"`
	CacheTTL   time.Duration `yaml:"cache_ttl"` // 0 = never expire
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Defaults returns a Config with default values
func Defaults() *Config {
	return &Config{
		Render: RenderConfig{
			Indent:       runtime.DefaultIndentWidth,
			MaxCallDepth: runtime.DefaultMaxCallDepth,
		},
		Templates: TemplatesConfig{
			SearchPath: []string{"."},
			CacheSize:  64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Options converts the render section into runtime options.
func (c *Config) Options() runtime.Options {
	return runtime.Options{
		Boilerplate:  c.Render.Boilerplate,
		IndentWidth:  c.Render.Indent,
		Autoescape:   c.Render.Autoescape,
		MaxCallDepth: c.Render.MaxCallDepth,
	}
}

// NewCache builds the template cache described by the templates section.
func (c *Config) NewCache() *runtime.TemplateCache {
	return runtime.NewTemplateCache(c.Templates.CacheTTL, c.Templates.CacheSize)
}

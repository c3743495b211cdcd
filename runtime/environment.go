package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/deicod/htmldsl/lexer"
	"github.com/deicod/htmldsl/nodes"
	"github.com/deicod/htmldsl/parser"
)

// Loader represents a template loader interface
type Loader interface {
	Load(name string) (string, error)
}

// FileSystemLoader loads templates from the file system
type FileSystemLoader struct {
	basePaths []string
	mu        sync.RWMutex
}

// NewFileSystemLoader creates a loader searching basePaths in order. When no
// paths are provided, it defaults to the current working directory.
func NewFileSystemLoader(basePaths ...string) *FileSystemLoader {
	paths := filteredSearchPaths(basePaths)
	if len(paths) == 0 {
		paths = append(paths, ".")
	}
	return &FileSystemLoader{
		basePaths: paths,
	}
}

// Load reads a template from the first search path that has it. A leading
// UTF-8 or UTF-16 byte order mark is honoured and stripped.
func (l *FileSystemLoader) Load(name string) (string, error) {
	if filepath.IsAbs(name) {
		source, err := readTemplateFile(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", NewTemplateNotFound(name, []string{name}, err)
			}
			return "", err
		}
		return source, nil
	}

	var tried []string
	for _, basePath := range l.SearchPath() {
		fullPath := filepath.Join(basePath, name)
		tried = append(tried, fullPath)

		source, err := readTemplateFile(fullPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		return source, nil
	}

	return "", NewTemplateNotFound(name, tried, os.ErrNotExist)
}

func readTemplateFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// TemplateModTime returns the modification time for the requested template.
func (l *FileSystemLoader) TemplateModTime(name string) (time.Time, error) {
	if name == "" {
		return time.Time{}, errors.New("template name cannot be empty")
	}

	if filepath.IsAbs(name) {
		info, err := os.Stat(name)
		if err != nil {
			return time.Time{}, err
		}
		return info.ModTime(), nil
	}

	var lastErr error
	for _, base := range l.SearchPath() {
		info, err := os.Stat(filepath.Join(base, name))
		if err == nil {
			return info.ModTime(), nil
		}
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		return time.Time{}, err
	}

	if lastErr != nil {
		return time.Time{}, lastErr
	}
	return time.Time{}, os.ErrNotExist
}

// SetSearchPath replaces the loader's search path list.
func (l *FileSystemLoader) SetSearchPath(paths ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	filtered := filteredSearchPaths(paths)
	if len(filtered) == 0 {
		filtered = []string{"."}
	}
	l.basePaths = filtered
}

// SearchPath returns a copy of the configured search paths.
func (l *FileSystemLoader) SearchPath() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.basePaths...)
}

func filteredSearchPaths(paths []string) []string {
	filtered := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// MapLoader loads templates from a map
type MapLoader struct {
	templates map[string]string
	mu        sync.RWMutex
}

// NewMapLoader creates a new map loader
func NewMapLoader(templates map[string]string) *MapLoader {
	copied := make(map[string]string, len(templates))
	for name, source := range templates {
		copied[name] = source
	}
	return &MapLoader{templates: copied}
}

// Load loads a template from the map
func (l *MapLoader) Load(name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	source, ok := l.templates[name]
	if !ok {
		return "", NewTemplateNotFound(name, []string{name}, nil)
	}
	return source, nil
}

// Set adds or replaces a template source.
func (l *MapLoader) Set(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[name] = source
}

// Options control how templates are rendered.
type Options struct {
	// Boilerplate writes the HTML5 doctype and charset preamble first.
	Boilerplate bool
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int
	// Autoescape HTML-escapes interpolated values.
	Autoescape bool
	// MaxCallDepth bounds nested function calls; zero or less disables the
	// limit.
	MaxCallDepth int
}

const (
	DefaultIndentWidth  = 4
	DefaultMaxCallDepth = 512
)

// DefaultOptions returns the options used by NewEnvironment
func DefaultOptions() Options {
	return Options{
		IndentWidth:  DefaultIndentWidth,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

func (o Options) withDefaults() Options {
	if o.IndentWidth < 0 {
		o.IndentWidth = 0
	}
	return o
}

// Environment holds rendering options, the loader and compiled templates.
type Environment struct {
	loader  Loader
	options Options
	logger  *slog.Logger
	cache   *TemplateCache
	mu      sync.RWMutex
}

// NewEnvironment creates an environment with default options
func NewEnvironment() *Environment {
	return NewEnvironmentWithOptions(DefaultOptions())
}

// NewEnvironmentWithOptions creates an environment with the given options
func NewEnvironmentWithOptions(options Options) *Environment {
	return &Environment{
		options: options,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:   NewTemplateCache(0, 400),
	}
}

// SetLoader sets the template loader
func (env *Environment) SetLoader(loader Loader) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.loader = loader
	env.cache.Clear()
}

// Loader returns the configured loader
func (env *Environment) Loader() Loader {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.loader
}

// SetOptions replaces the rendering options
func (env *Environment) SetOptions(options Options) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.options = options
}

// Options returns the rendering options
func (env *Environment) Options() Options {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.options
}

// SetLogger sets the structured logger; nil restores the discarding logger.
func (env *Environment) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	env.logger = logger
}

// Logger returns the structured logger
func (env *Environment) Logger() *slog.Logger {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.logger
}

// SetCache replaces the template cache
func (env *Environment) SetCache(cache *TemplateCache) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.cache = cache
}

// NewTemplate creates a new template from the given template string
func (env *Environment) NewTemplate(templateString string) (*Template, error) {
	return env.NewTemplateWithName(templateString, "template")
}

// NewTemplateWithName creates a new template with the given name
func (env *Environment) NewTemplateWithName(templateString, name string) (*Template, error) {
	if name == "" {
		name = "template"
	}
	return env.NewTemplateFromReader(lexer.NewStringReader(templateString), name, "")
}

// NewTemplateFromReader parses, checks and wraps a template read from reader.
func (env *Environment) NewTemplateFromReader(reader *lexer.Reader, name, filename string) (*Template, error) {
	start := time.Now()
	ast, err := parser.ParseReader(reader, name, filename)
	if err != nil {
		env.Logger().Debug("template parse failed", "template", name, "error", err)
		return nil, err
	}
	tmpl, err := NewTemplate(env, ast, name)
	if err != nil {
		env.Logger().Debug("template check failed", "template", name, "error", err)
		return nil, err
	}
	env.Logger().Debug("template compiled",
		"template", name,
		"functions", len(tmpl.FunctionNames()),
		"duration", time.Since(start))
	return tmpl, nil
}

// NewTemplateFromAST creates a template from an existing AST
func (env *Environment) NewTemplateFromAST(ast *nodes.Program, name string) (*Template, error) {
	return NewTemplate(env, ast, name)
}

// LoadTemplate loads, compiles and caches a template by name. Cached
// templates are reused until their source changes on disk.
func (env *Environment) LoadTemplate(name string) (*Template, error) {
	env.mu.RLock()
	loader, cache := env.loader, env.cache
	env.mu.RUnlock()

	if tmpl, ok := cache.Get(name, loader); ok {
		env.Logger().Debug("template cache hit", "template", name)
		return tmpl, nil
	}

	if loader == nil {
		return nil, NewError(ErrorTypeTemplate, "no loader configured", nodes.Position{}, nil)
	}

	var modTime time.Time
	if mt, err := getModTime(loader, name); err == nil {
		modTime = mt
	}

	source, err := loader.Load(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := env.NewTemplateFromReader(lexer.NewStringReader(source), name, name)
	if err != nil {
		return nil, err
	}

	cache.Set(name, tmpl, map[string]time.Time{name: modTime})
	return tmpl, nil
}

// InvalidateTemplate drops name from the cache
func (env *Environment) InvalidateTemplate(name string) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	env.cache.Invalidate(name)
}

// ClearCache clears the template cache
func (env *Environment) ClearCache() {
	env.mu.RLock()
	defer env.mu.RUnlock()
	env.cache.Clear()
}

// CacheSize returns the current cache size
func (env *Environment) CacheSize() int {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.cache.Size()
}

// ExecuteTemplate renders template with model into writer
func (env *Environment) ExecuteTemplate(template *Template, model string, writer io.Writer) error {
	return template.Execute(model, writer)
}

// ExecuteToString renders template with model and returns the output
func (env *Environment) ExecuteToString(template *Template, model string) (string, error) {
	var buf strings.Builder
	if err := env.ExecuteTemplate(template, model, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

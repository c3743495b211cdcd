package runtime

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Simple API functions for ease of use

// ParseString parses and checks a template string
func ParseString(templateString string) (*Template, error) {
	return ParseStringWithName(templateString, "template")
}

// ParseStringWithName parses and checks a template string with a given name
func ParseStringWithName(templateString, name string) (*Template, error) {
	return NewEnvironment().NewTemplateWithName(templateString, name)
}

// ExecuteToString is a convenience function that compiles a template and
// renders it with a JSON model
func ExecuteToString(templateString, model string) (string, error) {
	template, err := ParseString(templateString)
	if err != nil {
		return "", err
	}
	return template.ExecuteToString(model)
}

// Execute is a convenience function that compiles a template and renders it
// with a JSON model into writer
func Execute(templateString, model string, writer io.Writer) error {
	template, err := ParseString(templateString)
	if err != nil {
		return err
	}
	return template.Execute(model, writer)
}

// BatchRenderer renders one model through several named templates sharing
// an environment.
type BatchRenderer struct {
	env       *Environment
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewBatchRenderer creates a batch renderer; a nil env uses the defaults.
func NewBatchRenderer(env *Environment) *BatchRenderer {
	if env == nil {
		env = NewEnvironment()
	}
	return &BatchRenderer{
		env:       env,
		templates: make(map[string]*Template),
	}
}

// AddTemplate compiles templateString and registers it under name.
func (br *BatchRenderer) AddTemplate(name, templateString string) error {
	template, err := br.env.NewTemplateWithName(templateString, name)
	if err != nil {
		return err
	}
	br.mu.Lock()
	defer br.mu.Unlock()
	br.templates[name] = template
	return nil
}

// Render renders the named template with model.
func (br *BatchRenderer) Render(name, model string) (string, error) {
	var buf strings.Builder
	if err := br.RenderToWriter(name, model, &buf); err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// RenderToWriter renders the named template with model into writer.
func (br *BatchRenderer) RenderToWriter(name, model string, writer io.Writer) error {
	br.mu.RLock()
	template, ok := br.templates[name]
	br.mu.RUnlock()
	if !ok {
		return NewTemplateNotFound(name, nil, nil)
	}
	return template.Execute(model, writer)
}

// RenderAll parses model once and renders it through every registered
// template, stopping at the first error.
func (br *BatchRenderer) RenderAll(model string) (map[string]string, error) {
	value, err := ParseModel(model)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name     string
		template *Template
	}
	br.mu.RLock()
	entries := make([]entry, 0, len(br.templates))
	for name, template := range br.templates {
		entries = append(entries, entry{name, template})
	}
	br.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	results := make(map[string]string, len(entries))
	for _, e := range entries {
		var buf strings.Builder
		if err := e.template.ExecuteValue(value, &buf); err != nil {
			return results, fmt.Errorf("%s: %w", e.name, err)
		}
		results[e.name] = buf.String()
	}
	return results, nil
}

// HasTemplate reports whether name is registered
func (br *BatchRenderer) HasTemplate(name string) bool {
	br.mu.RLock()
	defer br.mu.RUnlock()
	_, ok := br.templates[name]
	return ok
}

// RemoveTemplate unregisters name
func (br *BatchRenderer) RemoveTemplate(name string) {
	br.mu.Lock()
	defer br.mu.Unlock()
	delete(br.templates, name)
}

// Size returns the number of registered templates
func (br *BatchRenderer) Size() int {
	br.mu.RLock()
	defer br.mu.RUnlock()
	return len(br.templates)
}

// Names returns the registered template names in sorted order
func (br *BatchRenderer) Names() []string {
	br.mu.RLock()
	defer br.mu.RUnlock()
	names := make([]string, 0, len(br.templates))
	for name := range br.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

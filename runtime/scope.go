package runtime

import (
	"fmt"
	"sort"
	"strconv"
)

// ScopePrototype is the static shape of a scope: the names a block declares
// and the enclosing block's prototype.
type ScopePrototype struct {
	parent *ScopePrototype
	names  map[string]struct{}
	order  []string
}

// NewScopePrototype creates a prototype nested in parent (nil for a
// function's root scope).
func NewScopePrototype(parent *ScopePrototype) *ScopePrototype {
	return &ScopePrototype{
		parent: parent,
		names:  make(map[string]struct{}),
	}
}

// Declare adds name to this prototype. It returns false when the name is
// already declared at this level.
func (p *ScopePrototype) Declare(name string) bool {
	if _, ok := p.names[name]; ok {
		return false
	}
	p.names[name] = struct{}{}
	p.order = append(p.order, name)
	return true
}

// DeclaresLocally reports whether name is declared at this level only.
func (p *ScopePrototype) DeclaresLocally(name string) bool {
	_, ok := p.names[name]
	return ok
}

// Resolve reports whether name is visible here or in any enclosing prototype.
func (p *ScopePrototype) Resolve(name string) bool {
	for proto := p; proto != nil; proto = proto.parent {
		if proto.DeclaresLocally(name) {
			return true
		}
	}
	return false
}

// Parent returns the enclosing prototype
func (p *ScopePrototype) Parent() *ScopePrototype {
	return p.parent
}

// Names returns the locally declared names in declaration order.
func (p *ScopePrototype) Names() []string {
	return append([]string(nil), p.order...)
}

// AssignedValue is what a scope binds to a name: either a number produced by
// a numeric literal argument or a JSON value.
type AssignedValue struct {
	numeric bool
	number  float64
	text    string
	value   Value
}

// AssignNumber binds a numeric literal, keeping its source text.
func AssignNumber(number float64, text string) AssignedValue {
	if text == "" {
		text = strconv.FormatFloat(number, 'f', -1, 64)
	}
	return AssignedValue{numeric: true, number: number, text: text}
}

// AssignValue binds a JSON value
func AssignValue(value Value) AssignedValue {
	return AssignedValue{value: value}
}

// IsNumeric reports whether the binding came from a numeric literal.
func (a AssignedValue) IsNumeric() bool {
	return a.numeric
}

// JSON returns the binding as a JSON value.
func (a AssignedValue) JSON() Value {
	if a.numeric {
		return Number(a.text)
	}
	return a.value
}

// Float coerces the binding to a number.
func (a AssignedValue) Float() (float64, error) {
	if a.numeric {
		return a.number, nil
	}
	return a.value.Float()
}

// Truthy coerces the binding to a boolean.
func (a AssignedValue) Truthy() (bool, error) {
	if a.numeric {
		return a.number != 0, nil
	}
	return a.value.Truthy()
}

// Text returns the output form of the binding.
func (a AssignedValue) Text() string {
	if a.numeric {
		return a.text
	}
	return a.value.Text()
}

// Scope holds the runtime bindings of one block invocation. Lookups walk the
// lexical parent chain; function calls start a new chain.
type Scope struct {
	proto  *ScopePrototype
	parent *Scope
	vars   map[string]AssignedValue
}

// NewScope creates a runtime scope for proto nested in parent.
func NewScope(proto *ScopePrototype, parent *Scope) *Scope {
	return &Scope{
		proto:  proto,
		parent: parent,
		vars:   make(map[string]AssignedValue),
	}
}

// Prototype returns the scope's static shape
func (s *Scope) Prototype() *ScopePrototype {
	return s.proto
}

// Set binds a name declared by this scope's prototype.
func (s *Scope) Set(name string, value AssignedValue) error {
	if s.proto != nil && !s.proto.DeclaresLocally(name) {
		return fmt.Errorf("name %q is not declared in this scope", name)
	}
	s.vars[name] = value
	return nil
}

// Get looks a name up in this scope and then in its lexical parents.
func (s *Scope) Get(name string) (AssignedValue, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if value, ok := scope.vars[name]; ok {
			return value, true
		}
	}
	return AssignedValue{}, false
}

// Keys returns every name visible from this scope.
func (s *Scope) Keys() []string {
	seen := make(map[string]struct{})
	for scope := s; scope != nil; scope = scope.parent {
		for name := range scope.vars {
			seen[name] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for name := range seen {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

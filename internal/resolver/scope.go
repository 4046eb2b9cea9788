// Package resolver turns stylesheet expressions into final CSS text:
// variable lookup, interpolation, colour functions and selector flattening.
// It also resolves aliases between design tokens before they seed a Table.
package resolver

import (
	"slices"
	"strings"

	"bennypowers.dev/dtsc/internal/stylesheet"
)

// Table is an immutable set of variable bindings supplied by the caller,
// such as design tokens or configured variables. Compilation never writes
// to it; definitions in the source shadow it through a Scope.
type Table struct {
	vars map[string]string
}

// NewTable copies vars into a Table. Names may be given with or without '$'.
func NewTable(vars map[string]string) Table {
	t := Table{vars: make(map[string]string, len(vars))}
	for name, value := range vars {
		t.vars[normalizeName(name)] = value
	}
	return t
}

// Lookup returns the binding for name
func (t Table) Lookup(name string) (string, bool) {
	v, ok := t.vars[normalizeName(name)]
	return v, ok
}

// Len is the number of bindings
func (t Table) Len() int {
	return len(t.vars)
}

// Names returns the bound names in sorted order
func (t Table) Names() []string {
	names := make([]string, 0, len(t.vars))
	for name := range t.vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Merge returns a new Table with other's bindings layered over t's
func (t Table) Merge(other Table) Table {
	merged := Table{vars: make(map[string]string, len(t.vars)+len(other.vars))}
	for k, v := range t.vars {
		merged.vars[k] = v
	}
	for k, v := range other.vars {
		merged.vars[k] = v
	}
	return merged
}

// Scope holds the bindings visible at one point of a compilation.
// Each rule block gets a child scope; the root scope falls back to a Table.
type Scope struct {
	parent *Scope
	table  Table
	vars   map[string]string
}

// NewScope returns a root scope over table
func NewScope(table Table) *Scope {
	return &Scope{table: table, vars: map[string]string{}}
}

// Child opens a nested block scope
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: map[string]string{}}
}

// Define binds name in this scope. Earlier readers already hold the previous
// value, so a redefinition only affects later references.
func (s *Scope) Define(name, value string) {
	s.vars[normalizeName(name)] = value
}

// DefineGlobal binds name in the root scope
func (s *Scope) DefineGlobal(name, value string) {
	s.root().Define(name, value)
}

// Lookup searches this scope, its ancestors, then the root table
func (s *Scope) Lookup(name string) (string, bool) {
	key := normalizeName(name)
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[key]; ok {
			return v, true
		}
		if cur.parent == nil {
			return cur.table.Lookup(key)
		}
	}
	return "", false
}

// Resolve is Lookup that fails with UndefinedVariableError
func (s *Scope) Resolve(name string, loc stylesheet.Location) (string, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return "", stylesheet.NewUndefinedVariableError(strings.TrimPrefix(name, "$"), loc)
	}
	return v, nil
}

func (s *Scope) root() *Scope {
	cur := s
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// normalizeName strips a leading '$'; '-' and '_' are interchangeable
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "$"), "_", "-")
}

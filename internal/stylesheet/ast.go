// Package stylesheet defines the source tree produced by the parser and
// consumed by the compiler, along with the compile error kinds.
package stylesheet

import "fmt"

// Location is a 1-based line and column (in bytes) within a source file
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsZero reports whether the location was never set
func (l Location) IsZero() bool {
	return l.Line == 0 && l.Column == 0 && l.File == ""
}

// Node is any statement in a stylesheet body
type Node interface {
	Pos() Location
}

// Variable binds a name to an unevaluated value expression
type Variable struct {
	Name  string
	Value string
	// Default assigns only when no binding is visible (`!default`)
	Default bool
	// Global assigns at the root scope (`!global`)
	Global   bool
	Loc      Location
	ValueLoc Location
}

func (v *Variable) Pos() Location { return v.Loc }

// Declaration is a property: value pair inside a rule or at-rule block
type Declaration struct {
	Property string
	Value    string
	Loc      Location
	ValueLoc Location
}

func (d *Declaration) Pos() Location { return d.Loc }

// Rule is a selector with a body that may contain declarations, variables,
// nested rules and at-rules
type Rule struct {
	Selector string
	Children []Node
	Loc      Location
}

func (r *Rule) Pos() Location { return r.Loc }

// AtRule is an at-rule. Block is false for statement forms such as @charset.
type AtRule struct {
	Name     string
	Prelude  string
	Block    bool
	Children []Node
	Loc      Location
	// PreludeLoc is where the prelude text starts
	PreludeLoc Location
}

func (a *AtRule) Pos() Location { return a.Loc }

// Stylesheet is a parsed source file with imports already spliced in
type Stylesheet struct {
	Path  string
	Nodes []Node
	// Imports lists every file read while parsing, the entry file first
	Imports []string
}

// Variables returns the top-level variable declarations in source order
func (s *Stylesheet) Variables() []*Variable {
	var vars []*Variable
	for _, n := range s.Nodes {
		if v, ok := n.(*Variable); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Walk calls fn for every node depth-first in source order. Returning false
// from fn skips the node's children.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch n := n.(type) {
		case *Rule:
			Walk(n.Children, fn)
		case *AtRule:
			Walk(n.Children, fn)
		}
	}
}

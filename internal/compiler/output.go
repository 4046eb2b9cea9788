package compiler

import (
	"fmt"
	"strings"

	"bennypowers.dev/dtsc/internal/stylesheet"
)

// Style selects the output format
type Style string

const (
	// Expanded writes one declaration per line with two-space indentation
	Expanded Style = "expanded"
	// Compressed drops all optional whitespace
	Compressed Style = "compressed"
)

// ParseStyle validates a style name; the empty string means Expanded
func ParseStyle(name string) (Style, error) {
	switch Style(strings.ToLower(name)) {
	case "", Expanded:
		return Expanded, nil
	case Compressed:
		return Compressed, nil
	}
	return "", fmt.Errorf("unknown output style %q: expected %q or %q", name, Expanded, Compressed)
}

// Property is one resolved declaration
type Property struct {
	Name  string
	Value string
	Loc   stylesheet.Location
}

// Statement is an item of compiled output: a *RuleBlock, *AtBlock or *AtStatement
type Statement interface {
	isStatement()
}

// RuleBlock is a flattened selector with its final declarations
type RuleBlock struct {
	Selector     string
	Declarations []Property
}

// AtBlock is a block at-rule. Declarations belong to at-rules such as
// @font-face; Children hold nested output such as rules inside @media.
type AtBlock struct {
	Name         string
	Prelude      string
	Declarations []Property
	Children     []Statement
}

// AtStatement is an at-rule without a block, such as @charset
type AtStatement struct {
	Name    string
	Prelude string
}

func (*RuleBlock) isStatement()   {}
func (*AtBlock) isStatement()     {}
func (*AtStatement) isStatement() {}

// set records a declaration. A repeated property replaces the earlier one
// and takes the later position.
// Custom properties (--name) are case-sensitive; other names are not.
func set(decls []Property, p Property) []Property {
	key := propertyKey(p.Name)
	for i, existing := range decls {
		if propertyKey(existing.Name) == key {
			decls = append(decls[:i], decls[i+1:]...)
			break
		}
	}
	return append(decls, p)
}

func propertyKey(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	return strings.ToLower(name)
}

// Triple is one (selector, property, value) of the output. Scope holds the
// enclosing at-rule preludes, outermost first, e.g. "@media (min-width: 768px)".
type Triple struct {
	Scope    string
	Selector string
	Property string
	Value    string
}

// Message is the text of an @debug or @warn directive
type Message struct {
	Kind string
	Text string
	Loc  stylesheet.Location
}

// Result is a compiled stylesheet. It is never modified after Compile returns.
type Result struct {
	Path       string
	Statements []Statement
	Messages   []Message
	// Imports lists every source file the result depends on
	Imports []string
}

// Triples flattens the output into source-ordered triples
func (r *Result) Triples() []Triple {
	var out []Triple
	var walk func(stmts []Statement, scope string)
	walk = func(stmts []Statement, scope string) {
		for _, st := range stmts {
			switch st := st.(type) {
			case *RuleBlock:
				for _, d := range st.Declarations {
					out = append(out, Triple{Scope: scope, Selector: st.Selector, Property: d.Name, Value: d.Value})
				}
			case *AtBlock:
				head := atHead(st.Name, st.Prelude, " ")
				for _, d := range st.Declarations {
					out = append(out, Triple{Scope: scope, Selector: head, Property: d.Name, Value: d.Value})
				}
				inner := head
				if scope != "" {
					inner = scope + " " + head
				}
				walk(st.Children, inner)
			}
		}
	}
	walk(r.Statements, "")
	return out
}

// CSS serialises the result. Equal results always produce identical text.
func (r *Result) CSS(style Style) string {
	var b strings.Builder
	if style == Compressed {
		writeCompressed(&b, r.Statements)
		return b.String()
	}
	for i, st := range r.Statements {
		if i > 0 {
			b.WriteString("\n")
		}
		writeExpanded(&b, st, "")
	}
	return b.String()
}

func writeExpanded(b *strings.Builder, st Statement, indent string) {
	switch st := st.(type) {
	case *RuleBlock:
		fmt.Fprintf(b, "%s%s {\n", indent, st.Selector)
		writeDeclarations(b, st.Declarations, indent+"  ")
		fmt.Fprintf(b, "%s}\n", indent)
	case *AtBlock:
		fmt.Fprintf(b, "%s%s {\n", indent, atHead(st.Name, st.Prelude, " "))
		writeDeclarations(b, st.Declarations, indent+"  ")
		for _, child := range st.Children {
			writeExpanded(b, child, indent+"  ")
		}
		fmt.Fprintf(b, "%s}\n", indent)
	case *AtStatement:
		fmt.Fprintf(b, "%s%s;\n", indent, atHead(st.Name, st.Prelude, " "))
	}
}

func writeDeclarations(b *strings.Builder, decls []Property, indent string) {
	for _, d := range decls {
		fmt.Fprintf(b, "%s%s: %s;\n", indent, d.Name, d.Value)
	}
}

func writeCompressed(b *strings.Builder, stmts []Statement) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *RuleBlock:
			b.WriteString(compressSelector(st.Selector))
			b.WriteByte('{')
			writeCompressedDeclarations(b, st.Declarations)
			b.WriteByte('}')
		case *AtBlock:
			b.WriteString(atHead(st.Name, st.Prelude, " "))
			b.WriteByte('{')
			writeCompressedDeclarations(b, st.Declarations)
			if len(st.Declarations) > 0 && len(st.Children) > 0 {
				b.WriteByte(';')
			}
			writeCompressed(b, st.Children)
			b.WriteByte('}')
		case *AtStatement:
			b.WriteString(atHead(st.Name, st.Prelude, " "))
			b.WriteByte(';')
		}
	}
}

func writeCompressedDeclarations(b *strings.Builder, decls []Property) {
	for i, d := range decls {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d.Name)
		b.WriteByte(':')
		b.WriteString(d.Value)
	}
}

// compressSelector drops the space after list commas and around combinators
var combinatorSpace = strings.NewReplacer(", ", ",", " > ", ">", " + ", "+", " ~ ", "~")

// compressSelector drops the spaces around commas and combinators outside
// quoted attribute values
func compressSelector(sel string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(sel); i++ {
		quote := sel[i]
		if quote != '"' && quote != '\'' {
			continue
		}
		b.WriteString(combinatorSpace.Replace(sel[start:i]))
		end := closingQuote(sel, i)
		b.WriteString(sel[i:end])
		start = end
		i = end - 1
	}
	b.WriteString(combinatorSpace.Replace(sel[start:]))
	return b.String()
}

// closingQuote returns the index just past the string opened at s[i]
func closingQuote(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

func atHead(name, prelude, sep string) string {
	if prelude == "" {
		return "@" + name
	}
	return "@" + name + sep + prelude
}

// Package compiler turns a parsed stylesheet into flat CSS: it evaluates
// variables and colour functions, flattens nested selectors and removes
// overridden declarations.
package compiler

import (
	"slices"
	"strings"

	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/parser/scss"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/stylesheet"
)

// Options configures a compilation
type Options struct {
	Style Style
	// Variables seed the root scope. Source definitions shadow them.
	Variables resolver.Table
	// LoadPaths and ReadFile are used by CompileFile and CompileString
	LoadPaths []string
	ReadFile  scss.ReadFunc
}

// conditional at-rules wrap the enclosing selector instead of resetting it
var conditional = []string{"media", "supports", "container", "layer", "document"}

// unsupported directives are part of the full Sass language but not this one
var unsupported = []string{
	"mixin", "include", "extend", "function", "return", "content",
	"if", "else", "each", "for", "while", "at-root",
}

// CompileFile parses the file at path with its imports and compiles it
func CompileFile(path string, opts Options) (*Result, error) {
	sheet, err := scss.Parse(path, scss.Options{LoadPaths: opts.LoadPaths, ReadFile: opts.ReadFile})
	if err != nil {
		return nil, err
	}
	return Compile(sheet, opts)
}

// CompileString parses src as if read from name and compiles it
func CompileString(name, src string, opts Options) (*Result, error) {
	sheet, err := scss.ParseString(name, src, scss.Options{LoadPaths: opts.LoadPaths, ReadFile: opts.ReadFile})
	if err != nil {
		return nil, err
	}
	return Compile(sheet, opts)
}

// Emit compiles sheet and serialises it in opts.Style. The same input
// always yields byte-identical output.
func Emit(sheet *stylesheet.Stylesheet, opts Options) (string, error) {
	result, err := Compile(sheet, opts)
	if err != nil {
		return "", err
	}
	return result.CSS(opts.Style), nil
}

// Compile evaluates sheet. The first error aborts the compilation and no
// partial result is returned.
func Compile(sheet *stylesheet.Stylesheet, opts Options) (*Result, error) {
	c := &compiler{result: &Result{Path: sheet.Path, Imports: slices.Clone(sheet.Imports)}}
	var out []Statement
	if err := c.block(sheet.Nodes, resolver.NewScope(opts.Variables), "", &out); err != nil {
		return nil, err
	}
	c.result.Statements = prune(out)
	return c.result, nil
}

type compiler struct {
	result *Result
}

// block compiles nodes under selector. Declarations go to a rule block for
// selector, created in out before any nested output.
func (c *compiler) block(nodes []stylesheet.Node, scope *resolver.Scope, selector string, out *[]Statement) error {
	var own *RuleBlock
	if selector != "" {
		own = &RuleBlock{Selector: selector}
		*out = append(*out, own)
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *stylesheet.Variable:
			if err := c.variable(n, scope); err != nil {
				return err
			}

		case *stylesheet.Declaration:
			if own == nil {
				return stylesheet.NewSyntaxError(n.Loc, "declarations may only be used within a rule")
			}
			p, ok, err := c.declaration(n, scope)
			if err != nil {
				return err
			}
			if ok {
				own.Declarations = set(own.Declarations, p)
			}

		case *stylesheet.Rule:
			sel, err := resolver.Interpolate(n.Selector, scope, n.Loc)
			if err != nil {
				return err
			}
			if selector == "" && resolver.HasParentRef(sel) {
				return stylesheet.NewSyntaxError(n.Loc, "top-level selectors may not contain the parent selector \"&\"")
			}
			if err := c.block(n.Children, scope.Child(), resolver.FlattenSelector(selector, sel), out); err != nil {
				return err
			}

		case *stylesheet.AtRule:
			if err := c.atRule(n, scope, selector, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) variable(v *stylesheet.Variable, scope *resolver.Scope) error {
	if v.Default {
		if _, ok := scope.Lookup(v.Name); ok {
			return nil
		}
	}
	value, err := resolver.Evaluate(v.Value, scope, v.ValueLoc)
	if err != nil {
		return err
	}
	if v.Global {
		scope.DefineGlobal(v.Name, value)
	} else {
		scope.Define(v.Name, value)
	}
	return nil
}

// declaration resolves a property. Custom properties keep their value text
// apart from #{} interpolation. ok is false for values that evaluate empty.
func (c *compiler) declaration(d *stylesheet.Declaration, scope *resolver.Scope) (Property, bool, error) {
	name, err := resolver.Interpolate(d.Property, scope, d.Loc)
	if err != nil {
		return Property{}, false, err
	}
	var value string
	if strings.HasPrefix(name, "--") {
		value, err = resolver.Interpolate(d.Value, scope, d.ValueLoc)
	} else {
		value, err = resolver.Evaluate(d.Value, scope, d.ValueLoc)
	}
	if err != nil {
		return Property{}, false, err
	}
	if value == "" {
		return Property{}, false, nil
	}
	return Property{Name: name, Value: value, Loc: d.Loc}, true, nil
}

func (c *compiler) atRule(a *stylesheet.AtRule, scope *resolver.Scope, selector string, out *[]Statement) error {
	switch {
	case slices.Contains(unsupported, a.Name):
		return stylesheet.NewSyntaxError(a.Loc, "@%s is not supported", a.Name)
	case a.Name == "debug" || a.Name == "warn":
		return c.message(a, scope)
	case a.Name == "error":
		text, err := c.messageText(a, scope)
		if err != nil {
			return err
		}
		return &stylesheet.UserError{Message: text, Loc: a.Loc}
	}

	if !a.Block {
		prelude, err := resolver.Interpolate(a.Prelude, scope, a.Loc)
		if err != nil {
			return err
		}
		*out = append(*out, &AtStatement{Name: a.Name, Prelude: prelude})
		return nil
	}

	at := &AtBlock{Name: a.Name}
	inner := scope.Child()
	var err error
	if slices.Contains(conditional, a.Name) {
		if at.Prelude, err = resolver.Evaluate(a.Prelude, scope, a.PreludeLoc); err != nil {
			return err
		}
		// the enclosing selector continues inside the block
		if err := c.block(a.Children, inner, selector, &at.Children); err != nil {
			return err
		}
	} else {
		if at.Prelude, err = resolver.Interpolate(a.Prelude, scope, a.Loc); err != nil {
			return err
		}
		if err := c.standalone(a.Children, inner, at); err != nil {
			return err
		}
	}
	*out = append(*out, at)
	return nil
}

// standalone compiles the body of an at-rule such as @font-face or
// @keyframes, whose declarations and rules do not inherit a selector
func (c *compiler) standalone(nodes []stylesheet.Node, scope *resolver.Scope, at *AtBlock) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *stylesheet.Declaration:
			p, ok, err := c.declaration(n, scope)
			if err != nil {
				return err
			}
			if ok {
				at.Declarations = set(at.Declarations, p)
			}
		default:
			if err := c.block([]stylesheet.Node{n}, scope, "", &at.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) messageText(a *stylesheet.AtRule, scope *resolver.Scope) (string, error) {
	text, err := resolver.Evaluate(a.Prelude, scope, a.PreludeLoc)
	if err != nil {
		return "", err
	}
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0] {
		text = text[1 : len(text)-1]
	}
	return text, nil
}

func (c *compiler) message(a *stylesheet.AtRule, scope *resolver.Scope) error {
	text, err := c.messageText(a, scope)
	if err != nil {
		return err
	}
	c.result.Messages = append(c.result.Messages, Message{Kind: a.Name, Text: text, Loc: a.Loc})
	if a.Name == "warn" {
		log.Warn("%s: %s", a.Loc, text)
	} else {
		log.Debug("%s: %s", a.Loc, text)
	}
	return nil
}

// prune drops rule blocks without declarations and at-blocks left empty
func prune(stmts []Statement) []Statement {
	var kept []Statement
	for _, st := range stmts {
		switch st := st.(type) {
		case *RuleBlock:
			if len(st.Declarations) == 0 {
				continue
			}
		case *AtBlock:
			st.Children = prune(st.Children)
			if len(st.Declarations) == 0 && len(st.Children) == 0 {
				continue
			}
		}
		kept = append(kept, st)
	}
	return kept
}

// Package scss parses stylesheet source into a stylesheet.Stylesheet tree,
// splicing @import-ed partials in place.
package scss

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/stylesheet"
)

// ReadFunc loads the contents of a source file
type ReadFunc func(path string) ([]byte, error)

// Options configures import resolution
type Options struct {
	// LoadPaths are searched for imports not found beside the importing file
	LoadPaths []string
	// ReadFile defaults to os.ReadFile
	ReadFile ReadFunc
}

// Parser reads one entry file and everything it imports
type Parser struct {
	opts    Options
	stack   []string
	imports []string
}

// NewParser creates a parser
func NewParser(opts Options) *Parser {
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	return &Parser{opts: opts}
}

// Parse reads and parses the file at path
func Parse(path string, opts Options) (*stylesheet.Stylesheet, error) {
	p := NewParser(opts)
	src, err := p.opts.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.parse(path, string(src))
}

// ParseString parses src as if it were read from name. Relative imports
// resolve against name's directory.
func ParseString(name, src string, opts Options) (*stylesheet.Stylesheet, error) {
	return NewParser(opts).parse(name, src)
}

func (p *Parser) parse(path, src string) (*stylesheet.Stylesheet, error) {
	nodes, err := p.parseFile(path, src)
	if err != nil {
		return nil, err
	}
	return &stylesheet.Stylesheet{Path: path, Nodes: nodes, Imports: p.imports}, nil
}

func (p *Parser) parseFile(path, src string) ([]stylesheet.Node, error) {
	p.stack = append(p.stack, path)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()
	if !slices.Contains(p.imports, path) {
		p.imports = append(p.imports, path)
	}

	s := newScanner(path, src)
	nodes, err := p.parseBlock(s, false)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// parseBlock reads statements up to the closing '}' of a nested block, or
// to end of input at the top level
func (p *Parser) parseBlock(s *scanner, nested bool) ([]stylesheet.Node, error) {
	var nodes []stylesheet.Node
	for {
		if err := s.skipSpace(); err != nil {
			return nil, err
		}
		if s.eof() {
			if nested {
				return nil, stylesheet.NewSyntaxError(s.loc(s.pos), `expected "}"`)
			}
			return nodes, nil
		}

		switch s.peek() {
		case '}':
			if !nested {
				return nil, stylesheet.NewSyntaxError(s.loc(s.pos), `unexpected "}"`)
			}
			s.pos++
			return nodes, nil
		case ';':
			s.pos++
			continue
		case '@':
			parsed, err := p.parseAtRule(s)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, parsed...)
			continue
		}

		node, err := p.parseStatement(s)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

var flagPattern = regexp.MustCompile(`\s*!(default|global)\s*$`)

// parseStatement reads a variable, a declaration or a rule
func (p *Parser) parseStatement(s *scanner) (stylesheet.Node, error) {
	start := s.pos
	end, term, err := s.scanStatement(start)
	if err != nil {
		return nil, err
	}

	if term == '{' {
		selector := s.clean(start, end)
		s.pos = end + 1
		children, err := p.parseBlock(s, true)
		if err != nil {
			return nil, err
		}
		if selector == "" {
			return nil, stylesheet.NewSyntaxError(s.loc(start), "expected a selector")
		}
		return &stylesheet.Rule{Selector: selector, Children: children, Loc: s.loc(start)}, nil
	}

	// ';' is consumed; '}' is left for the enclosing block
	s.pos = end
	if term == ';' {
		s.pos++
	}

	colon := s.colon(start, end)
	if colon < 0 {
		return nil, stylesheet.NewSyntaxError(s.loc(start), "expected \":\" in %q", s.clean(start, end))
	}
	name := s.clean(start, colon)
	valueStart := s.skipInline(colon+1, end)
	value := s.clean(valueStart, end)

	if strings.HasPrefix(name, "$") {
		v := &stylesheet.Variable{
			Name:     strings.TrimPrefix(name, "$"),
			Loc:      s.loc(start),
			ValueLoc: s.loc(valueStart),
		}
		for {
			m := flagPattern.FindStringSubmatch(value)
			if m == nil {
				break
			}
			switch m[1] {
			case "default":
				v.Default = true
			case "global":
				v.Global = true
			}
			value = value[:len(value)-len(m[0])]
		}
		if v.Name == "" || value == "" {
			return nil, stylesheet.NewSyntaxError(s.loc(start), "expected a variable name and value")
		}
		v.Value = value
		return v, nil
	}

	if name == "" {
		return nil, stylesheet.NewSyntaxError(s.loc(start), "expected a property name")
	}
	if value == "" {
		return nil, stylesheet.NewSyntaxError(s.loc(valueStart), "expected a value for %q", name)
	}
	return &stylesheet.Declaration{
		Property: name,
		Value:    value,
		Loc:      s.loc(start),
		ValueLoc: s.loc(valueStart),
	}, nil
}

// parseAtRule reads an at-rule. @import of stylesheets returns the imported
// nodes in place of the rule.
func (p *Parser) parseAtRule(s *scanner) ([]stylesheet.Node, error) {
	start := s.pos
	i := start + 1
	for i < len(s.src) && (isNameByte(s.src[i])) {
		i++
	}
	name := strings.ToLower(s.src[start+1 : i])
	if name == "" {
		return nil, stylesheet.NewSyntaxError(s.loc(start), "expected an at-rule name")
	}

	end, term, err := s.scanStatement(i)
	if err != nil {
		return nil, err
	}
	prelude := s.clean(i, end)
	loc := s.loc(start)
	preludeLoc := s.loc(s.skipInline(i, end))

	switch name {
	case "use", "forward":
		return nil, stylesheet.NewSyntaxError(loc, "@%s is not supported; use @import", name)
	}

	if term == '{' {
		s.pos = end + 1
		children, err := p.parseBlock(s, true)
		if err != nil {
			return nil, err
		}
		return []stylesheet.Node{&stylesheet.AtRule{
			Name:       name,
			Prelude:    prelude,
			Block:      true,
			Children:   children,
			Loc:        loc,
			PreludeLoc: preludeLoc,
		}}, nil
	}

	s.pos = end
	if term == ';' {
		s.pos++
	}

	if name == "import" {
		return p.importAll(prelude, loc)
	}
	return []stylesheet.Node{&stylesheet.AtRule{Name: name, Prelude: prelude, Loc: loc, PreludeLoc: preludeLoc}}, nil
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// importAll handles each target of `@import "a", "b"`. Plain CSS imports
// stay as at-rules for the browser.
func (p *Parser) importAll(prelude string, loc stylesheet.Location) ([]stylesheet.Node, error) {
	var nodes []stylesheet.Node
	for _, target := range splitList(prelude) {
		if isCSSImport(target) {
			nodes = append(nodes, &stylesheet.AtRule{Name: "import", Prelude: target, Loc: loc})
			continue
		}
		imported, err := p.importFile(target[1:len(target)-1], loc)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, imported...)
	}
	return nodes, nil
}

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://|^//`)

// isCSSImport reports whether an import target is left to the browser:
// url(), .css files, remote URLs and imports with a media list
func isCSSImport(target string) bool {
	if len(target) < 2 || (target[0] != '"' && target[0] != '\'') {
		return true
	}
	end := strings.IndexByte(target[1:], target[0])
	if end < 0 || end+2 != len(target) {
		return true
	}
	name := target[1 : len(target)-1]
	return strings.HasSuffix(name, ".css") || schemePattern.MatchString(name)
}

func (p *Parser) importFile(name string, loc stylesheet.Location) ([]stylesheet.Node, error) {
	path, src, err := p.resolve(name, loc)
	if err != nil {
		return nil, err
	}

	if slices.Contains(p.stack, path) {
		chain := append(slices.Clone(p.stack), path)
		return nil, stylesheet.NewCircularReferenceError(loc.File, chain)
	}

	log.Debug("importing %s", path)
	return p.parseFile(path, src)
}

// resolve finds an import beside the importing file, then on each load path
func (p *Parser) resolve(name string, loc stylesheet.Location) (string, string, error) {
	dirs := []string{filepath.Dir(loc.File)}
	dirs = append(dirs, p.opts.LoadPaths...)

	for _, dir := range dirs {
		for _, candidate := range candidates(name) {
			path := filepath.Join(dir, candidate)
			src, err := p.opts.ReadFile(path)
			if err == nil {
				return path, string(src), nil
			}
		}
	}
	return "", "", stylesheet.NewSyntaxError(loc, "cannot find stylesheet to import: %q", name)
}

// candidates lists the file names an import may refer to:
// "base" → base.scss, _base.scss, base/index.scss, base/_index.scss
func candidates(name string) []string {
	dir, base := filepath.Split(filepath.FromSlash(name))
	if filepath.Ext(base) == ".scss" {
		return []string{filepath.Join(dir, base), filepath.Join(dir, "_"+base)}
	}
	return []string{
		filepath.Join(dir, base+".scss"),
		filepath.Join(dir, "_"+base+".scss"),
		filepath.Join(dir, base, "index.scss"),
		filepath.Join(dir, base, "_index.scss"),
	}
}

// splitList splits on depth-zero commas outside strings
func splitList(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			if j := strings.IndexByte(s[i+1:], c); j >= 0 {
				i += j + 1
			}
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

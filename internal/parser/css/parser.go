// Package css checks generated stylesheets against the tree-sitter CSS grammar
package css

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Validate parses source and reports every ERROR and MISSING node
func (p *Parser) Validate(source string) ([]Problem, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	var problems []Problem
	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	p.walkTree(root, src, &problems)
	return problems, nil
}

// walkTree descends only into subtrees that contain errors
func (p *Parser) walkTree(node *sitter.Node, source []byte, problems *[]Problem) {
	if node == nil {
		return
	}

	switch {
	case node.IsMissing():
		*problems = append(*problems, Problem{
			Message: fmt.Sprintf("missing %q", node.Kind()),
			Range:   nodeRange(node),
		})
		return
	case node.IsError():
		*problems = append(*problems, Problem{
			Message: fmt.Sprintf("unexpected %q", snippet(source[node.StartByte():node.EndByte()])),
			Range:   nodeRange(node),
		})
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.HasError() {
			p.walkTree(child, source, problems)
		}
	}
}

func nodeRange(node *sitter.Node) Range {
	return Range{
		Start: Position{
			Line:      uint32(node.StartPosition().Row),    //nolint:gosec // G115: bounded by file size
			Character: uint32(node.StartPosition().Column), //nolint:gosec // G115: bounded by file size
		},
		End: Position{
			Line:      uint32(node.EndPosition().Row),    //nolint:gosec // G115: bounded by file size
			Character: uint32(node.EndPosition().Column), //nolint:gosec // G115: bounded by file size
		},
	}
}

// snippet shortens error text to its first line, at most 40 bytes
func snippet(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "…"
	}
	return strings.TrimSpace(s)
}

// Validate checks source with a pooled parser
func Validate(source string) ([]Problem, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Validate(source)
}

// Package html finds the stylesheets embedded in HTML documents
package html

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser handles parsing HTML to extract <style> elements
type Parser struct {
	parser     *sitter.Parser
	styleQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		styleQuery, qerr := sitter.NewQuery(htmlLang, `(style_element (raw_text) @css)`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			styleQuery: styleQuery,
		}
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
	if p.styleQuery != nil {
		p.styleQuery.Close()
	}
}

// StyleRegions returns the contents of every <style> element in document order
func (p *Parser) StyleRegions(source string) []StyleRegion {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var regions []StyleRegion
	matches := cursor.Matches(p.styleQuery, tree.RootNode(), sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			regions = append(regions, StyleRegion{
				Content:   string(sourceBytes[node.StartByte():node.EndByte()]),
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
				StartLine: node.StartPosition().Row,
				StartCol:  node.StartPosition().Column,
			})
		}
	}
	return regions
}

// StyleSource returns the document with everything outside <style> elements
// blanked to spaces. Line breaks are kept, so a position in the result is
// the same position in the HTML.
func (p *Parser) StyleSource(source string) string {
	regions := p.StyleRegions(source)

	var b strings.Builder
	b.Grow(len(source))
	last := uint(0)
	for _, r := range regions {
		blank(&b, source[last:r.StartByte])
		b.WriteString(r.Content)
		last = r.EndByte
	}
	blank(&b, source[last:])
	return b.String()
}

func blank(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '\n' || c == '\r' {
			b.WriteByte(c)
		} else {
			b.WriteByte(' ')
		}
	}
}

// StyleSource extracts with a pooled parser
func StyleSource(source string) string {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.StyleSource(source)
}

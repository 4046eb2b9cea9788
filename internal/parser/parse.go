// Package parser dispatches input documents to the reader for their format:
// token files to the JSON and YAML parsers, HTML to <style> extraction.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/dtsc/internal/parser/html"
	"bennypowers.dev/dtsc/internal/parser/json"
	"bennypowers.dev/dtsc/internal/parser/yaml"
	"bennypowers.dev/dtsc/internal/tokens"
)

// stylesheetLanguages maps language IDs to how their stylesheet is found.
// "scss" → the whole document, "html" → <style> elements.
var stylesheetLanguages = map[string]string{
	"scss": "scss",
	"css":  "scss",
	"html": "html",
}

// IsStylesheetLanguage returns true if documents of the language can be compiled
func IsStylesheetLanguage(languageID string) bool {
	_, ok := stylesheetLanguages[languageID]
	return ok
}

// LanguageForPath guesses a language ID from a file extension
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".scss":
		return "scss"
	case ".css":
		return "css"
	case ".html", ".htm":
		return "html"
	case ".json", ".jsonc":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// StylesheetSource returns the compilable text of a document. Positions in
// the result match positions in content.
func StylesheetSource(content, languageID string) (string, error) {
	switch stylesheetLanguages[languageID] {
	case "scss":
		return content, nil
	case "html":
		return html.StyleSource(content), nil
	default:
		return "", fmt.Errorf("unsupported stylesheet language %q", languageID)
	}
}

// ParseTokenFile reads a DTCG token file, choosing the format by extension
func ParseTokenFile(path, prefix string) ([]*tokens.Token, error) {
	switch LanguageForPath(path) {
	case "json":
		return json.NewParser().ParseFile(path, prefix)
	case "yaml":
		return yaml.NewParser().ParseFile(path, prefix)
	default:
		return nil, fmt.Errorf("unsupported token file %s: expected .json or .yaml", path)
	}
}

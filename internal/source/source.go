// Package source finds the stylesheets a build compiles and maps each one
// to its output file.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/dtsc/internal/collections"
	"bennypowers.dev/dtsc/internal/parser"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns are used when no sources are configured
var DefaultPatterns = []string{"**/*.scss"}

// Entry is one compilable source file
type Entry struct {
	// Path is the file path, joined with the discovery root
	Path string
	// Rel is the path below the pattern's literal base directory, used to
	// place the output
	Rel string
}

// OutputPath is the CSS file written for e under outDir. An empty outDir
// writes beside the source.
func (e Entry) OutputPath(outDir string) string {
	rel := e.Rel
	if outDir == "" {
		rel = e.Path
	}
	css := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".css"
	if outDir == "" {
		return css
	}
	return filepath.Join(outDir, css)
}

// IsPartial reports whether a file is only meant to be imported
func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "_")
}

// Discover expands patterns below root. Partials and files that are not
// stylesheets are skipped. The result is sorted by path.
func Discover(root string, patterns []string) ([]Entry, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	fsys := os.DirFS(root)

	seen := collections.NewSet[string]()
	var entries []Entry
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid source pattern %q", pattern)
		}
		base, _ := doublestar.SplitPattern(pattern)

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen.Has(m) || IsPartial(m) || !parser.IsStylesheetLanguage(parser.LanguageForPath(m)) {
				continue
			}
			seen.Add(m)
			rel := m
			if base != "." {
				rel = strings.TrimPrefix(strings.TrimPrefix(m, base), "/")
			}
			entries = append(entries, Entry{
				Path: filepath.Join(root, filepath.FromSlash(m)),
				Rel:  filepath.FromSlash(rel),
			})
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

// Match reports whether path, relative to the discovery root, is selected by
// any of patterns
func Match(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), rel); ok {
			return true
		}
	}
	return false
}

// Read loads a source file and returns its stylesheet text. For HTML only
// the <style> contents remain, at their original positions.
func Read(p string) (string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return Text(p, data)
}

// Text converts file contents to stylesheet text by file type
func Text(p string, data []byte) (string, error) {
	lang := parser.LanguageForPath(p)
	if lang == "" {
		return "", fmt.Errorf("%s: %w", p, fs.ErrInvalid)
	}
	return parser.StylesheetSource(string(data), lang)
}

// IsStylesheet reports whether a path names a compilable file, partials
// included
func IsStylesheet(p string) bool {
	return parser.IsStylesheetLanguage(parser.LanguageForPath(p))
}

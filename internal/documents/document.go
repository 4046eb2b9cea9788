// Package documents keeps the text of stylesheets open in an editor.
package documents

import (
	"fmt"

	"bennypowers.dev/dtsc/internal/parser"
	"bennypowers.dev/dtsc/internal/uriutil"
)

// Document is the editor's copy of one file
type Document struct {
	uri        string
	languageID string
	content    string
	version    int
}

// NewDocument creates a document. An empty languageID is guessed from the
// URI's extension.
func NewDocument(uri, languageID string, version int, content string) *Document {
	if languageID == "" {
		languageID = parser.LanguageForPath(uri)
	}
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }
func (d *Document) Version() int       { return d.version }
func (d *Document) Content() string    { return d.content }

// Path is the file path the document was opened from
func (d *Document) Path() string {
	return uriutil.URIToPath(d.uri)
}

// IsStylesheet reports whether the document can be compiled
func (d *Document) IsStylesheet() bool {
	return parser.IsStylesheetLanguage(d.languageID)
}

// Source returns the compilable text: the whole document, or the contents
// of the <style> elements of an HTML page at their original positions
func (d *Document) Source() (string, error) {
	return parser.StylesheetSource(d.content, d.languageID)
}

// SetContent replaces the text. Updates older than the current version are
// rejected.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.content = content
	d.version = version
	return nil
}

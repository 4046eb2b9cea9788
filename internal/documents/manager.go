package documents

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/dtsc/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager holds the open documents by URI. It is safe for concurrent use.
type Manager struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{
		documents: make(map[string]*Document),
	}
}

// Get returns the open document for uri, or nil
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[uri]
}

// GetAll returns every open document ordered by URI
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b *Document) int {
		return strings.Compare(a.uri, b.uri)
	})
	return docs
}

// DidOpen starts tracking a document, replacing any earlier copy
func (m *Manager) DidOpen(uri, languageID string, version int, content string) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := NewDocument(uri, languageID, version, content)
	m.documents[uri] = doc
	return doc
}

// DidClose stops tracking a document
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[uri]; !exists {
		return fmt.Errorf("document not found: %s", uri)
	}
	delete(m.documents, uri)
	return nil
}

// DidChange applies content changes in order. A change without a range
// replaces the whole text.
func (m *Manager) DidChange(uri string, version int, changes []any) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	content := doc.Content()
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				content = c.Text
				continue
			}
			content = splice(content, *c.Range, c.Text)
		default:
			return nil, fmt.Errorf("unsupported change %T", change)
		}
	}

	if err := doc.SetContent(content, version); err != nil {
		return nil, err
	}
	return doc, nil
}

// splice replaces the text in r. Positions past the end clamp to it.
func splice(content string, r protocol.Range, text string) string {
	start := position.Offset(content, int(r.Start.Line), int(r.Start.Character))
	end := position.Offset(content, int(r.End.Line), int(r.End.Character))
	if end < start {
		start, end = end, start
	}
	return content[:start] + text + content[end:]
}

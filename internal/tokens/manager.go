package tokens

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Manager holds the tokens of every loaded token file, grouped by file so
// two files may define the same name and a reload replaces only its own
// file. Tokens added without a FilePath share the "" group.
type Manager struct {
	mu     sync.RWMutex
	byFile map[string]map[string]*Token
}

func NewManager() *Manager {
	return &Manager{byFile: map[string]map[string]*Token{}}
}

// Add stores token, replacing one of the same name from the same file
func (m *Manager) Add(token *Token) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(token)
	return nil
}

func (m *Manager) put(token *Token) {
	group, ok := m.byFile[token.FilePath]
	if !ok {
		group = map[string]*Token{}
		m.byFile[token.FilePath] = group
	}
	group[token.Name] = token
}

// Get finds a token by hyphenated name ("color-primary"), DTCG path
// ("color.primary") or variable name with its prefix ("$ds-color-primary").
// Files are searched in path order.
func (m *Manager) Get(nameOrVar string) *Token {
	want := strings.ReplaceAll(strings.TrimPrefix(nameOrVar, "$"), ".", "-")

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, file := range m.files() {
		group := m.byFile[file]
		if tok, ok := group[want]; ok {
			return tok
		}
		for _, tok := range group {
			if tok.VariableName() == want {
				return tok
			}
		}
	}
	return nil
}

// GetAll returns every token ordered by file, then name
func (m *Manager) GetAll() []*Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*Token
	for _, file := range m.files() {
		all = append(all, sortedTokens(m.byFile[file])...)
	}
	return all
}

func (m *Manager) GetBySourceFile(filePath string) []*Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedTokens(m.byFile[filePath])
}

// ReplaceSourceFile swaps the tokens of filePath for a freshly loaded set
func (m *Manager) ReplaceSourceFile(filePath string, tokens []*Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byFile, filePath)
	for _, tok := range tokens {
		m.put(tok)
	}
}

// RemoveBySourceFile drops the tokens of filePath and reports how many
// there were
func (m *Manager) RemoveBySourceFile(filePath string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.byFile[filePath])
	delete(m.byFile, filePath)
	return n
}

// GetSourceFiles returns the files that have tokens loaded, sorted
func (m *Manager) GetSourceFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.DeleteFunc(m.files(), func(f string) bool { return f == "" })
}

func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.byFile)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, group := range m.byFile {
		n += len(group)
	}
	return n
}

// files lists the non-empty groups; callers hold the lock
func (m *Manager) files() []string {
	var out []string
	for file, group := range m.byFile {
		if len(group) > 0 {
			out = append(out, file)
		}
	}
	slices.Sort(out)
	return out
}

func sortedTokens(group map[string]*Token) []*Token {
	out := make([]*Token, 0, len(group))
	for _, name := range slices.Sorted(maps.Keys(group)) {
		out = append(out, group[name])
	}
	return out
}

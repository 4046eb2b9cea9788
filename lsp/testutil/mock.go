// Package testutil provides a ServerContext for handler tests.
package testutil

import (
	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/documents"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/tokens"
	"bennypowers.dev/dtsc/lsp/types"
	"github.com/tliron/glsp"
)

// MockServerContext implements types.ServerContext with real document and
// token managers. Compilation uses the configured variables; callbacks
// override the workspace operations.
type MockServerContext struct {
	docs        *documents.Manager
	tokens      *tokens.Manager
	config      types.ServerConfig
	rootURI     string
	rootPath    string
	glspContext *glsp.Context

	LoadTokensFunc         func() error
	IsTokenFileFunc        func(string) bool
	PublishDiagnosticsFunc func(*glsp.Context, string) error

	LoadTokensCalled       bool
	RegisterWatchersCalled bool
	// Published lists the URIs diagnostics were published for, in order
	Published []string
}

// NewMockServerContext creates a mock with the default configuration
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:   documents.NewManager(),
		tokens: tokens.NewManager(),
		config: types.DefaultConfig(),
	}
}

// SetConfig replaces the configuration
func (m *MockServerContext) SetConfig(config types.ServerConfig) { m.config = config }

func (m *MockServerContext) Document(uri string) *documents.Document { return m.docs.Get(uri) }
func (m *MockServerContext) DocumentManager() *documents.Manager     { return m.docs }
func (m *MockServerContext) AllDocuments() []*documents.Document     { return m.docs.GetAll() }
func (m *MockServerContext) TokenManager() *tokens.Manager           { return m.tokens }
func (m *MockServerContext) GetConfig() types.ServerConfig           { return m.config }

func (m *MockServerContext) IsTokenFile(path string) bool {
	if m.IsTokenFileFunc != nil {
		return m.IsTokenFileFunc(path)
	}
	return false
}

func (m *MockServerContext) LoadTokensFromConfig() error {
	m.LoadTokensCalled = true
	if m.LoadTokensFunc != nil {
		return m.LoadTokensFunc()
	}
	return nil
}

func (m *MockServerContext) Variables() resolver.Table {
	vars, err := build.Variables(m.tokens, m.config.Variables)
	if err != nil {
		return resolver.NewTable(m.config.Variables)
	}
	return vars
}

func (m *MockServerContext) Compile(path, text string) (string, []lint.Diagnostic, error) {
	b := build.New(build.Options{
		Style:     m.config.Style,
		LoadPaths: m.config.LoadPaths,
		Variables: m.Variables(),
		Validate:  m.config.Validate,
	})
	return b.CompileText(path, text)
}

func (m *MockServerContext) RootURI() string         { return m.rootURI }
func (m *MockServerContext) RootPath() string        { return m.rootPath }
func (m *MockServerContext) SetRootURI(uri string)   { m.rootURI = uri }
func (m *MockServerContext) SetRootPath(path string) { m.rootPath = path }

func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	return nil
}

func (m *MockServerContext) GLSPContext() *glsp.Context       { return m.glspContext }
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) { m.glspContext = ctx }

func (m *MockServerContext) PublishDiagnostics(ctx *glsp.Context, uri string) error {
	m.Published = append(m.Published, uri)
	if m.PublishDiagnosticsFunc != nil {
		return m.PublishDiagnosticsFunc(ctx, uri)
	}
	return nil
}

var _ types.ServerContext = (*MockServerContext)(nil)

// Package lsp serves compile diagnostics and colour information to editors
// over the Language Server Protocol.
package lsp

import (
	"path/filepath"
	"slices"
	"sync"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/documents"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/tokens"
	"bennypowers.dev/dtsc/lsp/methods/lifecycle"
	"bennypowers.dev/dtsc/lsp/methods/textDocument"
	"bennypowers.dev/dtsc/lsp/methods/textDocument/diagnostic"
	documentcolor "bennypowers.dev/dtsc/lsp/methods/textDocument/documentColor"
	"bennypowers.dev/dtsc/lsp/methods/workspace"
	"bennypowers.dev/dtsc/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// Server is the dtsc language server
type Server struct {
	documents  *documents.Manager
	tokens     *tokens.Manager
	builder    *build.Builder
	config     types.ServerConfig
	glspServer *server.Server

	mu       sync.RWMutex // protects the fields below
	context  *glsp.Context
	rootURI  string
	rootPath string
}

// NewServer creates a server that compiles documents with config
func NewServer(config types.ServerConfig) (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		tokens:    tokens.NewManager(),
		config:    config,
	}
	vars, err := build.Variables(s.tokens, config.Variables)
	if err != nil {
		return nil, err
	}
	s.builder = build.New(build.Options{
		Style:     config.Style,
		LoadPaths: config.LoadPaths,
		Variables: vars,
		Validate:  config.Validate,
	})

	handler := protocol.Handler{
		Initialize:                     method(s, "initialize", lifecycle.Initialize),
		Initialized:                    notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                       noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                       notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeWatchedFiles: notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:            notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:          notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidSave:            notify(s, "textDocument/didSave", textDocument.DidSave),
		TextDocumentDidClose:           notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentColor:              method(s, "textDocument/documentColor", documentcolor.DocumentColor),
		TextDocumentColorPresentation:  method(s, "textDocument/colorPresentation", documentcolor.ColorPresentation),
	}
	s.glspServer = server.NewServer(&handler, lifecycle.ServerName, false)
	return s, nil
}

// RunStdio serves a client over stdin and stdout until it disconnects
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

func (s *Server) Document(uri string) *documents.Document { return s.documents.Get(uri) }
func (s *Server) DocumentManager() *documents.Manager     { return s.documents }
func (s *Server) AllDocuments() []*documents.Document     { return s.documents.GetAll() }
func (s *Server) TokenManager() *tokens.Manager           { return s.tokens }
func (s *Server) GetConfig() types.ServerConfig           { return s.config }

// Compile compiles stylesheet text as if read from path
func (s *Server) Compile(path, text string) (string, []lint.Diagnostic, error) {
	return s.builder.CompileText(path, text)
}

// Variables returns the table seeding every compilation
func (s *Server) Variables() resolver.Table {
	vars, err := build.Variables(s.tokens, s.config.Variables)
	if err != nil {
		return resolver.NewTable(s.config.Variables)
	}
	return vars
}

// tokenFiles returns the configured token files resolved against the root
func (s *Server) tokenFiles() []string {
	root := s.RootPath()
	files := make([]string, 0, len(s.config.TokensFiles))
	for _, f := range s.config.TokensFiles {
		if !filepath.IsAbs(f) && root != "" {
			f = filepath.Join(root, f)
		}
		files = append(files, filepath.Clean(f))
	}
	return files
}

// IsTokenFile reports whether path is one of the configured token files
func (s *Server) IsTokenFile(path string) bool {
	return slices.Contains(s.tokenFiles(), filepath.Clean(path))
}

// LoadTokensFromConfig (re)reads the configured token files and reseeds
// compilation with them
func (s *Server) LoadTokensFromConfig() error {
	files := s.tokenFiles()
	if err := build.LoadTokens(s.tokens, files, s.config.Prefix); err != nil {
		return err
	}
	vars, err := build.Variables(s.tokens, s.config.Variables)
	if err != nil {
		return err
	}
	s.builder.SetVariables(vars)
	if len(files) > 0 {
		log.Info("loaded %d tokens from %d files", s.tokens.Count(), len(files))
	}
	return nil
}

func (s *Server) RootURI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootURI
}

func (s *Server) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPath
}

func (s *Server) SetRootURI(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootURI = uri
}

func (s *Server) SetRootPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootPath = path
}

// GLSPContext returns the client connection saved at initialization
func (s *Server) GLSPContext() *glsp.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx
}

// PublishDiagnostics compiles the document and pushes the result. Without
// a client connection it does nothing.
func (s *Server) PublishDiagnostics(ctx *glsp.Context, uri string) error {
	if ctx == nil {
		ctx = s.GLSPContext()
	}
	if ctx == nil || ctx.Notify == nil {
		return nil
	}

	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}
	log.Debug("publishing %d diagnostics for %s", len(diagnostics), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

// RegisterFileWatchers asks the client to report changes to stylesheets
// and token files made outside the editor
func (s *Server) RegisterFileWatchers(ctx *glsp.Context) error {
	if ctx == nil || ctx.Call == nil {
		log.Debug("skipping file watcher registration (no client context)")
		return nil
	}

	watchers := []protocol.FileSystemWatcher{{GlobPattern: "**/*.scss"}}
	for _, f := range s.tokenFiles() {
		watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: filepath.ToSlash(f)})
	}
	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:     "dtsc-file-watcher",
			Method: string(protocol.MethodWorkspaceDidChangeWatchedFiles),
			RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
				Watchers: watchers,
			},
		}},
	}

	// client/registerCapability is a request; calling it from inside a
	// handler would block the message loop waiting for its own response
	go func() {
		var result any
		ctx.Call(protocol.ServerClientRegisterCapability, params, &result)
	}()
	return nil
}

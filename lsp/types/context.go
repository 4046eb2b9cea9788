package types

import (
	"bennypowers.dev/dtsc/internal/documents"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/tokens"
	"github.com/tliron/glsp"
)

// ServerContext is what method handlers see of the server. Tests supply
// testutil.MockServerContext instead.
type ServerContext interface {
	// open stylesheets
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document

	// design token seeds
	TokenManager() *tokens.Manager
	IsTokenFile(path string) bool
	LoadTokensFromConfig() error

	// Compile runs the compiler over text as if it were the file at path
	// and returns the CSS with any lint problems of the output
	Compile(path, text string) (string, []lint.Diagnostic, error)
	// Variables is the seed table every compilation starts from
	Variables() resolver.Table
	GetConfig() ServerConfig

	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)
	RegisterFileWatchers(ctx *glsp.Context) error

	// client connection, set once the session is initialized
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)
	PublishDiagnostics(ctx *glsp.Context, uri string) error
}

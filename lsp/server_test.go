package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/dtsc/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func newTestServer(t *testing.T, config types.ServerConfig) *Server {
	t.Helper()
	captureLog(t)
	s, err := NewServer(config)
	require.NoError(t, err)
	return s
}

func TestNewServer(t *testing.T) {
	config := types.DefaultConfig()
	config.Variables = map[string]string{"brand": "teal"}
	s := newTestServer(t, config)

	assert.NotNil(t, s.DocumentManager())
	assert.NotNil(t, s.TokenManager())
	assert.Equal(t, config, s.GetConfig())

	css, _, err := s.Compile("/site/a.scss", "a { color: $brand; }\n")
	require.NoError(t, err)
	assert.Equal(t, "a {\n  color: teal;\n}\n", css)

	_, _, err = s.Compile("/site/b.scss", "a { color: $missing; }\n")
	assert.Error(t, err)
}

func TestServerTokens(t *testing.T) {
	root := t.TempDir()
	tokensJSON := `{ "color": { "$type": "color", "brand": { "$value": "#1abc9c" } } }`
	require.NoError(t, os.WriteFile(filepath.Join(root, "tokens.json"), []byte(tokensJSON), 0o644))

	config := types.DefaultConfig()
	config.TokensFiles = []string{"tokens.json"}
	config.Prefix = "ds"
	s := newTestServer(t, config)
	s.SetRootPath(root)

	assert.True(t, s.IsTokenFile(filepath.Join(root, "tokens.json")))
	assert.True(t, s.IsTokenFile(filepath.Join(root, ".", "tokens.json")))
	assert.False(t, s.IsTokenFile(filepath.Join(root, "other.json")))

	_, _, err := s.Compile("/site/a.scss", "a { color: $ds-color-brand; }\n")
	require.Error(t, err, "tokens are not loaded yet")

	require.NoError(t, s.LoadTokensFromConfig())
	assert.Equal(t, 1, s.TokenManager().Count())

	css, _, err := s.Compile("/site/a.scss", "a { color: darken($ds-color-brand, 10%); }\n")
	require.NoError(t, err)
	assert.Equal(t, "a {\n  color: #148f77;\n}\n", css)

	v, ok := s.Variables().Lookup("ds-color-brand")
	require.True(t, ok)
	assert.Equal(t, "#1abc9c", v)

	t.Run("missing file", func(t *testing.T) {
		config := types.DefaultConfig()
		config.TokensFiles = []string{"missing.json"}
		s := newTestServer(t, config)
		s.SetRootPath(root)
		assert.Error(t, s.LoadTokensFromConfig())
	})
}

func TestPublishDiagnostics(t *testing.T) {
	s := newTestServer(t, types.DefaultConfig())
	uri := "file:///site/a.scss"
	s.DocumentManager().DidOpen(uri, "scss", 1, "a { color: $missing; }\n")

	t.Run("without a client", func(t *testing.T) {
		assert.NoError(t, s.PublishDiagnostics(nil, uri))
	})

	t.Run("with a client", func(t *testing.T) {
		var sent []protocol.PublishDiagnosticsParams
		ctx := &glsp.Context{Notify: func(method string, params any) {
			assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, method)
			sent = append(sent, params.(protocol.PublishDiagnosticsParams))
		}}

		require.NoError(t, s.PublishDiagnostics(ctx, uri))
		require.Len(t, sent, 1)
		assert.Equal(t, uri, sent[0].URI)
		require.Len(t, sent[0].Diagnostics, 1)
		assert.Contains(t, sent[0].Diagnostics[0].Message, "$missing")
	})

	t.Run("saved client", func(t *testing.T) {
		published := 0
		s.SetGLSPContext(&glsp.Context{Notify: func(string, any) { published++ }})
		require.NoError(t, s.PublishDiagnostics(nil, uri))
		assert.Equal(t, 1, published)
	})
}

func TestRegisterFileWatchers(t *testing.T) {
	s := newTestServer(t, types.DefaultConfig())
	assert.NoError(t, s.RegisterFileWatchers(nil))
	assert.NoError(t, s.RegisterFileWatchers(&glsp.Context{}))

	called := make(chan protocol.RegistrationParams, 1)
	ctx := &glsp.Context{Call: func(method string, params any, result any) {
		assert.Equal(t, protocol.ServerClientRegisterCapability, method)
		called <- params.(protocol.RegistrationParams)
	}}
	require.NoError(t, s.RegisterFileWatchers(ctx))

	params := <-called
	require.Len(t, params.Registrations, 1)
	assert.Equal(t, "dtsc-file-watcher", params.Registrations[0].ID)
}

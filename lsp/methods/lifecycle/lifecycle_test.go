package lifecycle_test

import (
	"errors"
	"os"
	"testing"

	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/lsp/methods/lifecycle"
	"bennypowers.dev/dtsc/lsp/testutil"
	"bennypowers.dev/dtsc/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestInitialize(t *testing.T) {
	log.SetOutput(nil)
	defer log.SetOutput(os.Stderr)

	t.Run("root uri", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		req := types.NewRequestContext(ctx, nil)
		rootURI := "file:///workspace/site"

		result, err := lifecycle.Initialize(req, &protocol.InitializeParams{
			ClientInfo: &struct {
				Name    string  `json:"name"`
				Version *string `json:"version,omitempty"`
			}{Name: "test-client"},
			RootURI: &rootURI,
		})
		require.NoError(t, err)

		assert.Equal(t, rootURI, ctx.RootURI())
		assert.Equal(t, "/workspace/site", ctx.RootPath())
		assert.True(t, ctx.LoadTokensCalled)

		init, ok := result.(protocol.InitializeResult)
		require.True(t, ok)
		assert.Equal(t, true, init.Capabilities.ColorProvider)

		sync, ok := init.Capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
		require.True(t, ok)
		require.NotNil(t, sync.Change)
		assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)
		require.NotNil(t, sync.OpenClose)
		assert.True(t, *sync.OpenClose)

		require.NotNil(t, init.ServerInfo)
		assert.Equal(t, lifecycle.ServerName, init.ServerInfo.Name)
	})

	t.Run("root path", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		req := types.NewRequestContext(ctx, nil)
		rootPath := "/workspace/site"

		_, err := lifecycle.Initialize(req, &protocol.InitializeParams{RootPath: &rootPath})
		require.NoError(t, err)
		assert.Equal(t, rootPath, ctx.RootPath())
		assert.Equal(t, "file:///workspace/site", ctx.RootURI())
	})

	t.Run("token errors become warnings", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.LoadTokensFunc = func() error { return errors.New("tokens.json: unexpected EOF") }
		req := types.NewRequestContext(ctx, nil)

		_, err := lifecycle.Initialize(req, &protocol.InitializeParams{})
		require.NoError(t, err)
		require.Len(t, req.Warnings(), 1)
		assert.ErrorContains(t, req.Warnings()[0], "unexpected EOF")
	})
}

func TestInitialized(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	glspCtx := &glsp.Context{}
	req := types.NewRequestContext(ctx, glspCtx)

	require.NoError(t, lifecycle.Initialized(req, &protocol.InitializedParams{}))
	assert.Same(t, glspCtx, ctx.GLSPContext())
	assert.True(t, ctx.RegisterWatchersCalled)
}

func TestShutdownAndTrace(t *testing.T) {
	log.SetOutput(nil)
	defer log.SetOutput(os.Stderr)

	req := types.NewRequestContext(testutil.NewMockServerContext(), nil)

	require.NoError(t, lifecycle.SetTrace(req, &protocol.SetTraceParams{Value: protocol.TraceValueVerbose}))
	assert.Equal(t, protocol.TraceValueVerbose, protocol.GetTraceValue())

	require.NoError(t, lifecycle.Shutdown(req))
	assert.Equal(t, protocol.TraceValueOff, protocol.GetTraceValue())
}

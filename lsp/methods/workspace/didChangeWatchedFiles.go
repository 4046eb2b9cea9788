package workspace

import (
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/uriutil"
	"bennypowers.dev/dtsc/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles reloads tokens when a token file changes, then
// recompiles every open document. Any stylesheet on disk may be imported
// by an open one, so every change triggers the recompile.
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	reload := false
	for _, change := range params.Changes {
		path := uriutil.URIToPath(change.URI)
		log.Debug("watched file changed: %s (type %d)", path, change.Type)
		if req.Server.IsTokenFile(path) {
			reload = true
		}
	}

	if reload {
		if err := req.Server.LoadTokensFromConfig(); err != nil {
			// keep publishing with the previous tokens
			req.AddWarning(err)
		}
	}

	for _, doc := range req.Server.AllDocuments() {
		if err := req.Server.PublishDiagnostics(req.GLSP, doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}

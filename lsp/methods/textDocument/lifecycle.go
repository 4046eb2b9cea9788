// Package textDocument implements document synchronization.
package textDocument

import (
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen tracks the document and publishes its compile diagnostics
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	doc := req.Server.DocumentManager().DidOpen(params.TextDocument.URI, params.TextDocument.LanguageID,
		int(params.TextDocument.Version), params.TextDocument.Text)
	log.Debug("document opened: %s (language: %s, version: %d)", doc.URI(), doc.LanguageID(), doc.Version())
	publish(req, doc.URI())
	return nil
}

// DidChange applies the changes and republishes diagnostics
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if _, err := req.Server.DocumentManager().DidChange(uri, int(params.TextDocument.Version), params.ContentChanges); err != nil {
		return err
	}
	publish(req, uri)
	return nil
}

// DidSave recompiles every open document, since the saved file may be
// imported by others
func DidSave(req *types.RequestContext, params *protocol.DidSaveTextDocumentParams) error {
	for _, doc := range req.Server.AllDocuments() {
		publish(req, doc.URI())
	}
	return nil
}

// DidClose stops tracking the document and clears its diagnostics
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if err := req.Server.DocumentManager().DidClose(uri); err != nil {
		return err
	}
	if ctx := req.GLSP; ctx != nil && ctx.Notify != nil {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func publish(req *types.RequestContext, uri string) {
	ctx := req.GLSP
	if ctx == nil {
		ctx = req.Server.GLSPContext()
	}
	if err := req.Server.PublishDiagnostics(ctx, uri); err != nil {
		req.AddWarning(err)
	}
}

// Package lifecycle implements the LSP session handshake and teardown.
package lifecycle

import (
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/uriutil"
	"bennypowers.dev/dtsc/internal/version"
	"bennypowers.dev/dtsc/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to clients in serverInfo
const ServerName = "dtsc"

// Initialize records the workspace root, loads configured token files and
// advertises the server's capabilities
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("initializing for client: %s", clientName)

	if params.RootURI != nil {
		req.Server.SetRootURI(*params.RootURI)
		req.Server.SetRootPath(uriutil.URIToPath(*params.RootURI))
	} else if params.RootPath != nil {
		req.Server.SetRootPath(*params.RootPath)
		req.Server.SetRootURI(uriutil.PathToURI(*params.RootPath))
	}
	if root := req.Server.RootPath(); root != "" {
		log.Info("workspace root: %s", root)
	}

	if err := req.Server.LoadTokensFromConfig(); err != nil {
		// compile without tokens rather than refuse the session
		req.AddWarning(err)
	}

	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	v := version.GetVersion()
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: &openClose,
				Change:    &syncKind,
			},
			ColorProvider: true,
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &v,
		},
	}, nil
}

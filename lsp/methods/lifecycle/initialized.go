package lifecycle

import (
	"bennypowers.dev/dtsc/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized keeps the client connection for server-initiated messages
// and asks the client to watch stylesheets and token files
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	req.Server.SetGLSPContext(req.GLSP)
	return req.Server.RegisterFileWatchers(req.GLSP)
}

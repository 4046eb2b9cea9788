package lifecycle

import (
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Shutdown handles the shutdown request. Nothing is held open between
// requests, so there is nothing to release.
func Shutdown(req *types.RequestContext) error {
	log.Info("shutting down")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// SetTrace handles $/setTrace
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

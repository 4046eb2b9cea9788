// Package workspace implements workspace notifications and client logging.
package workspace

import (
	"fmt"

	"bennypowers.dev/dtsc/internal/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LogError logs to stderr and, when connected, to the client's output
func LogError(context *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Error("%s", message)
	notify(context, protocol.MessageTypeError, message)
}

// LogWarning logs to stderr and, when connected, to the client's output
func LogWarning(context *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Warn("%s", message)
	notify(context, protocol.MessageTypeWarning, message)
}

func notify(context *glsp.Context, kind protocol.MessageType, message string) {
	if context == nil || context.Notify == nil {
		return
	}
	go context.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    kind,
		Message: message,
	})
}

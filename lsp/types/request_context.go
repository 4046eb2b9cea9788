package types

import "github.com/tliron/glsp"

// RequestContext carries one handler invocation: the server, the client
// connection (nil in unit tests) and problems that should not fail the call.
type RequestContext struct {
	Server   ServerContext
	GLSP     *glsp.Context
	warnings []error
}

func NewRequestContext(server ServerContext, ctx *glsp.Context) *RequestContext {
	return &RequestContext{Server: server, GLSP: ctx}
}

// AddWarning records err for the middleware to log once the handler has
// returned. Nil errors are ignored.
func (r *RequestContext) AddWarning(err error) {
	if err == nil {
		return
	}
	r.warnings = append(r.warnings, err)
}

func (r *RequestContext) Warnings() []error {
	return r.warnings
}

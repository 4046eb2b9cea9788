package lsp

import (
	"fmt"
	"runtime/debug"

	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/lsp/methods/workspace"
	"bennypowers.dev/dtsc/lsp/types"
	"github.com/tliron/glsp"
)

// method wraps a request handler with panic recovery, logging and error
// context. It returns the function type protocol.Handler fields expect.
func method[P, R any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) (R, error),
) func(*glsp.Context, P) (R, error) {
	return func(ctx *glsp.Context, params P) (result R, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("PANIC in %s: %v\n%s", methodName, r, debug.Stack())
				workspace.LogError(ctx, "Internal error in %s: %v", methodName, r)
				err = fmt.Errorf("internal error in %s", methodName)
				var zero R
				result = zero
			}
		}()

		log.Debug("%s started", methodName)
		req := types.NewRequestContext(s, ctx)
		result, err = handler(req, params)
		finish(ctx, methodName, req)
		if err != nil {
			workspace.LogError(ctx, "%s: %v", methodName, err)
			return result, fmt.Errorf("%s: %w", methodName, err)
		}
		log.Debug("%s completed", methodName)
		return result, nil
	}
}

// notify wraps a notification handler
func notify[P any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) error,
) func(*glsp.Context, P) error {
	wrapped := method(s, methodName, func(req *types.RequestContext, params P) (struct{}, error) {
		return struct{}{}, handler(req, params)
	})
	return func(ctx *glsp.Context, params P) error {
		_, err := wrapped(ctx, params)
		return err
	}
}

// noParam wraps a handler that takes no params, like shutdown
func noParam(
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext) error,
) func(*glsp.Context) error {
	wrapped := notify(s, methodName, func(req *types.RequestContext, _ struct{}) error {
		return handler(req)
	})
	return func(ctx *glsp.Context) error {
		return wrapped(ctx, struct{}{})
	}
}

// finish logs the request's warnings
func finish(ctx *glsp.Context, methodName string, req *types.RequestContext) {
	for _, w := range req.Warnings() {
		workspace.LogWarning(ctx, "%s: %v", methodName, w)
	}
}

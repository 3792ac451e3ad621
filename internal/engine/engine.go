package engine

import (
	"context"

	"vane/internal/transport"
)

type Engine struct {
	transport *transport.Server
}

// Run serves the API until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		e.transport.Stop()
	}()

	return e.transport.Serve()
}

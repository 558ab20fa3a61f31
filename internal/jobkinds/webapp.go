package jobkinds

import (
	"context"
	"fmt"
	"net"

	"github.com/tupyy/jobengine/pkg/engine"
)

// WebappFunc is a long-running function bound to an ip/port pair — a small
// HTTP server, a proxy, anything that serves until ctx is cancelled. It is
// expected to block until ctx.Done() and then return.
type WebappFunc func(ctx context.Context, ip string, port int) error

// WebappResult is returned once a WebappJob's server function returns
// (normally on cancellation).
type WebappResult struct {
	IP   string
	Port int
}

// NewWebappJob builds a KindThread job that picks an available TCP port on
// bindIP (0 means let the OS choose), then runs fn bound to it. For web
// apps launched as external processes rather than in-process functions,
// use NewSubprocessJob with a command template instead.
func NewWebappJob(bindIP string, requestedPort int, fn WebappFunc, opts ...engine.JobOption) (*engine.Job, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", bindIP, requestedPort))
	if err != nil {
		return nil, fmt.Errorf("reserve webapp port: %w", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	// The callable re-binds once it actually starts; we only used this
	// listener to let the OS assign requestedPort==0 a free one atomically.
	_ = lis.Close()

	callable := func(ctx context.Context, _ []any) (any, error) {
		if err := fn(ctx, bindIP, port); err != nil && ctx.Err() == nil {
			return nil, err
		}
		return WebappResult{IP: bindIP, Port: port}, nil
	}
	return engine.NewJob(engine.KindThread, callable, nil, opts...), nil
}

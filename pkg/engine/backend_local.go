package engine

import (
	"context"

	"go.uber.org/zap"
)

// LocalBackend runs a job's callable on a dedicated goroutine per
// invocation rather than a bounded pool, suitable for trivially-fast work
// or generator-producing callables. It never blocks the scheduler loop
// itself.
type LocalBackend struct{}

// NewLocalBackend constructs the local backend.
func NewLocalBackend() *LocalBackend { return &LocalBackend{} }

func (b *LocalBackend) Kind() Kind { return KindLocal }

type localHandle struct {
	cancel context.CancelFunc
}

func (h *localHandle) Cancel() { h.cancel() }

func (b *LocalBackend) Start(ctx context.Context, job *Job, args []any, notify notifyFunc) (Handle, error) {
	runCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Named("engine_backend_local").Errorw("callable panicked", "job", job.ID(), "panic", r)
				notify(nil, &panicValue{r}, false)
			}
		}()

		result, err := job.fn(runCtx, args)
		select {
		case <-runCtx.Done():
			notify(result, err, true)
		default:
			notify(result, err, false)
		}
	}()

	return &localHandle{cancel: cancel}, nil
}

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

// DistributedJob is the wire-shaped description of a job a DistributedClient
// dispatches to a remote cluster member.
type DistributedJob struct {
	ID         string
	EntryPoint string
	Args       []any
}

// DistributedClient is the transport seam DistributedBackend drives. A real
// implementation wraps a generated gRPC stub around a *grpc.ClientConn; the
// backend itself never constructs that stub, only the connection, which
// keeps the generated-code boundary out of the scheduling core.
type DistributedClient interface {
	// Submit dispatches job to the cluster and returns once it has been
	// accepted for execution (not once it has completed).
	Submit(ctx context.Context, job DistributedJob) error
	// Await blocks until jobID completes remotely, returning its result.
	Await(ctx context.Context, jobID string) (any, error)
	// Cancel requests cancellation of a remotely running job.
	Cancel(ctx context.Context, jobID string) error
}

// DistributedBackend dispatches jobs to a cluster of peer engines over a
// caller-supplied gRPC connection. The connection is dependency-injected
// rather than dialed internally, so callers control TLS, interceptors, and
// service discovery; this backend only owns reconnect backoff and the
// submit/await protocol.
type DistributedBackend struct {
	conn       *grpc.ClientConn
	client     DistributedClient
	backoff    backoff.BackOff
	maxRetries uint
}

// NewDistributedBackend builds a backend around an already-dialed
// connection and the client built atop it. maxRetries bounds reconnect
// attempts on transient submission failures; 0 means use a sane default.
func NewDistributedBackend(conn *grpc.ClientConn, client DistributedClient, maxRetries uint) *DistributedBackend {
	if maxRetries == 0 {
		maxRetries = 5
	}
	return &DistributedBackend{
		conn:       conn,
		client:     client,
		backoff:    backoff.NewExponentialBackOff(),
		maxRetries: maxRetries,
	}
}

func (b *DistributedBackend) Kind() Kind { return KindDistributed }

type distributedHandle struct {
	cancel context.CancelFunc
	client DistributedClient
	jobID  string
}

func (h *distributedHandle) Cancel() {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.client.Cancel(ctx, h.jobID); err != nil {
		zap.S().Named("engine_backend_distributed").Warnw("remote cancel failed", "job", h.jobID, "error", err)
	}
}

func (b *DistributedBackend) Start(ctx context.Context, job *Job, args []any, notify notifyFunc) (Handle, error) {
	if b.conn.GetState() == connectivity.TransientFailure {
		zap.S().Named("engine_backend_distributed").Warnw("dispatching on a connection in transient failure", "job", job.ID())
	}

	entry := job.processEntryPoint
	if entry == "" {
		return nil, fmt.Errorf("distributed job %s has no registered entry point", job.ID())
	}

	runCtx, cancel := context.WithCancel(ctx)

	submit := func() (struct{}, error) {
		return struct{}{}, b.client.Submit(runCtx, DistributedJob{ID: job.ID(), EntryPoint: string(entry), Args: args})
	}
	if _, err := backoff.Retry(runCtx, submit, backoff.WithBackOff(b.backoff), backoff.WithMaxTries(b.maxRetries)); err != nil {
		cancel()
		return nil, fmt.Errorf("submit job %s to cluster: %w", job.ID(), err)
	}

	go b.await(runCtx, job, notify)

	return &distributedHandle{cancel: cancel, client: b.client, jobID: job.ID()}, nil
}

func (b *DistributedBackend) await(ctx context.Context, job *Job, notify notifyFunc) {
	result, err := b.client.Await(ctx, job.ID())
	select {
	case <-ctx.Done():
		notify(result, err, true)
	default:
		notify(result, err, false)
	}
}

package engine

import (
	"context"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

func jobDependencyError(jobID, producerID, producerStatus string) error {
	return srvErrors.NewDependencyFailedError(jobID, producerID, producerStatus)
}

// Handle is what a Backend returns for a dispatched job: a way to request
// cancellation. Completion is reported out-of-band via the notify callback
// passed to Start, not polled through the handle.
type Handle interface {
	// Cancel requests cancellation. Idempotent.
	Cancel()
}

// notifyFunc is how a backend reports a job's outcome back to the
// scheduler. cancelled takes precedence over err: a job whose callable
// happened to return an error after being cancelled is still reported as
// cancelled.
type notifyFunc func(result any, err error, cancelled bool)

// Backend is the pluggable execution mechanism a Job dispatches to. The
// mechanics of each concrete backend (goroutine pools, child-process IPC,
// distributed cluster clients) stay behind this interface, the seam
// between scheduling and execution.
type Backend interface {
	// Kind identifies which Job.Kind this backend serves.
	Kind() Kind
	// Start begins executing job's callable with args, which the scheduler
	// has already resolved (every JobFuture substituted with its value;
	// see resolveArgs). notify must be called exactly once.
	Start(ctx context.Context, job *Job, args []any, notify notifyFunc) (Handle, error)
}

// resolveArgs walks a job's argument tree, substituting every *JobFuture
// with its resolved value. If any future belongs to a failed or cancelled
// job, it returns a DependencyFailedError identifying the offending
// producer and performs no substitution for the remaining arguments.
func resolveArgs(jobID string, args []any) ([]any, error) {
	var walk func(v any) (any, error)
	walk = func(v any) (any, error) {
		switch t := v.(type) {
		case *JobFuture:
			status := t.job.Status()
			switch status {
			case StatusFailed, StatusCancelled:
				return nil, jobDependencyError(jobID, t.job.ID(), string(status))
			default:
				value, _ := t.job.Result()
				return value, nil
			}
		case []any:
			out := make([]any, len(t))
			for i, e := range t {
				resolved, err := walk(e)
				if err != nil {
					return nil, err
				}
				out[i] = resolved
			}
			return out, nil
		case map[string]any:
			out := make(map[string]any, len(t))
			for k, e := range t {
				resolved, err := walk(e)
				if err != nil {
					return nil, err
				}
				out[k] = resolved
			}
			return out, nil
		default:
			return v, nil
		}
	}

	out := make([]any, len(args))
	for i, a := range args {
		resolved, err := walk(a)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

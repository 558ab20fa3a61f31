package engine

import "context"

// JobFuture is a reference to a job's eventual result. It can be passed as
// an argument to another job, in which case the engine treats it as a
// dependency edge (see Job.injectDependencies), or used directly by a
// caller to observe completion.
type JobFuture struct {
	job *Job
}

// JobID returns the id of the job this future refers to.
func (f *JobFuture) JobID() string {
	return f.job.id
}

// Done reports whether the underlying job has reached a terminal status.
func (f *JobFuture) Done() bool {
	return f.job.Status().Terminal()
}

// Result blocks until the job terminates (or ctx is done) and returns its
// result, or the stored error if the job failed.
func (f *JobFuture) Result(ctx context.Context) (any, error) {
	if _, err := f.job.Wait(ctx, StatusDone, 0); err != nil {
		return nil, err
	}
	return f.job.Result()
}

// Exception blocks until the job terminates and returns its stored error,
// if any.
func (f *JobFuture) Exception(ctx context.Context) error {
	if _, err := f.job.Wait(ctx, StatusDone, 0); err != nil {
		return err
	}
	return f.job.Exception()
}

// OnComplete registers an observer invoked (once, from the scheduler
// goroutine's perspective — actually delivered asynchronously) with the
// job's terminal status. It never blocks the caller.
func (f *JobFuture) OnComplete(observer func(Status)) {
	go func() {
		status, _ := f.job.Wait(context.Background(), StatusDone, 0)
		observer(status)
	}()
}

// MarkGeneratorExhausted signals that the consumer has drained this job's
// lazy-sequence result. Only meaningful for generator-producing callables;
// a no-op otherwise. See GeneratorHandle.
func (f *JobFuture) MarkGeneratorExhausted() error {
	eng := f.job.boundEngine()
	if eng == nil {
		return nil
	}
	return eng.requestExhaust(f.job)
}

// GeneratorState is one of the three states a lazy-sequence-producing job's
// result handle can be in.
type GeneratorState string

const (
	GeneratorProducing GeneratorState = "producing"
	GeneratorStreaming GeneratorState = "streaming"
	GeneratorExhausted GeneratorState = "exhausted"
)

// PullFunc yields the next element of a lazy sequence. ok is false once the
// sequence is exhausted.
type PullFunc func(ctx context.Context) (value any, ok bool, err error)

// GeneratorHandle forwards a lazy sequence out of a job's callable. The
// scheduler marks the producing job running immediately once the callable
// returns a *GeneratorHandle, but defers the done transition until the
// consumer calls MarkGeneratorExhausted. Consumption is an explicit Next/Close
// protocol, not implicit iteration.
type GeneratorHandle struct {
	job   *Job
	pull  PullFunc
	state GeneratorState
}

// NewGeneratorHandle wraps pull as the forwarding handle for job's result.
func NewGeneratorHandle(job *Job, pull PullFunc) *GeneratorHandle {
	return &GeneratorHandle{job: job, pull: pull, state: GeneratorProducing}
}

// State returns the handle's current three-state position.
func (g *GeneratorHandle) State() GeneratorState { return g.state }

// Next pulls the next element. The first call transitions the handle from
// producing to streaming.
func (g *GeneratorHandle) Next(ctx context.Context) (any, bool, error) {
	if g.state == GeneratorProducing {
		g.state = GeneratorStreaming
	}
	value, ok, err := g.pull(ctx)
	if !ok || err != nil {
		g.state = GeneratorExhausted
		_ = g.job.Future().MarkGeneratorExhausted()
	}
	return value, ok, err
}

// Close ends the stream early. An early close is treated as a cancel: the
// job transitions to cancelled rather than done.
func (g *GeneratorHandle) Close() error {
	if g.state == GeneratorExhausted {
		return nil
	}
	g.state = GeneratorExhausted
	return g.job.Cancel()
}

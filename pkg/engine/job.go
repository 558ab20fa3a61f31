package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

// Status is a job's position in the lifecycle state machine. A job is a
// member of exactly one JobStore bucket at any given instant.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a status can only be left via an explicit Rerun.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Kind selects which Backend a job dispatches to.
type Kind string

const (
	KindLocal       Kind = "local"
	KindThread      Kind = "thread"
	KindProcess     Kind = "process"
	KindDistributed Kind = "distributed"
)

// Callable is a unit of work. args has already had any JobFuture arguments
// substituted with resolved values by the time the backend invokes it.
type Callable func(ctx context.Context, args []any) (any, error)

// RetryPolicy bounds how many times a failed job is automatically resubmitted.
type RetryPolicy struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// JobOption configures a Job at construction time.
type JobOption func(*Job)

// WithCondition overrides the default Always condition.
func WithCondition(c Condition) JobOption {
	return func(j *Job) { j.baseCondition = c }
}

// WithRetry sets the job's retry policy.
func WithRetry(maxAttempts int, delay time.Duration) JobOption {
	return func(j *Job) { j.retry = RetryPolicy{MaxAttempts: maxAttempts, RetryDelay: delay} }
}

// WithWaitInterval overrides the minimum duration between successive
// condition re-evaluations for this job.
func WithWaitInterval(d time.Duration) JobOption {
	return func(j *Job) { j.waitInterval = d }
}

// WithLabel attaches a human-readable label used in logs.
func WithLabel(label string) JobOption {
	return func(j *Job) { j.label = label }
}

// WithProcessEntryPoint names the ProcessRegistry entry a KindProcess job
// runs inside its worker subprocess. Required for any job of KindProcess;
// ignored otherwise.
func WithProcessEntryPoint(name ProcessEntryPoint) JobOption {
	return func(j *Job) { j.processEntryPoint = name }
}

const defaultWaitInterval = 100 * time.Millisecond

// Job is a stateful record of one unit of work: its callable, arguments,
// gating condition, lifecycle status, result, and retry bookkeeping.
type Job struct {
	mu sync.Mutex

	id    string
	kind  Kind
	label string
	fn    Callable
	args  []any

	processEntryPoint ProcessEntryPoint

	baseCondition      Condition
	effectiveCondition Condition
	retry              RetryPolicy
	waitInterval       time.Duration
	lastEvaluated      time.Time

	status        Status
	attempts      int
	cancelRequest bool

	result    any
	err       error
	generator *GeneratorHandle

	createdAt time.Time
	startedAt time.Time
	stoppedAt time.Time

	engine *Engine
	handle Handle

	observers []chan Status
}

// NewJob constructs a job in the created state. It is not runnable until
// submitted to an Engine via Engine.Submit.
func NewJob(kind Kind, fn Callable, args []any, opts ...JobOption) *Job {
	j := &Job{
		id:            uuid.NewString(),
		kind:          kind,
		fn:            fn,
		args:          args,
		baseCondition: Always,
		waitInterval:  defaultWaitInterval,
		status:        StatusCreated,
		createdAt:     time.Now(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.effectiveCondition = j.injectDependencies(j.baseCondition)
	return j
}

// injectDependencies conjoins the user condition with AfterOthers over any
// JobFuture found among the job's arguments: passing a future as an
// argument is what creates a dependency edge.
func (j *Job) injectDependencies(base Condition) Condition {
	producers := collectFutureJobIDs(j.args)
	if len(producers) == 0 {
		return base
	}
	return All(base, dependencyCondition(producers...))
}

func collectFutureJobIDs(args []any) []string {
	var ids []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case *JobFuture:
			ids = append(ids, t.job.id)
		case []any:
			for _, e := range t {
				walk(e)
			}
		case map[string]any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	for _, a := range args {
		walk(a)
	}
	return ids
}

// ID returns the job's opaque identity.
func (j *Job) ID() string { return j.id }

// Kind returns the job's backend selector.
func (j *Job) Kind() Kind { return j.kind }

// Label returns the job's human-readable label, if set.
func (j *Job) Label() string { return j.label }

// Status returns the job's current lifecycle status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Attempts returns the number of attempts made so far.
func (j *Job) Attempts() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.attempts
}

// Timestamps returns created_at, started_at and stopped_at. started_at and
// stopped_at are zero until the job has run or terminated, respectively.
func (j *Job) Timestamps() (created, started, stopped time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.createdAt, j.startedAt, j.stoppedAt
}

// bindEngine records the owning engine. Called once, from Engine.Submit.
func (j *Job) bindEngine(e *Engine) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.engine = e
}

// Future returns the handle other jobs and callers use to observe this
// job's eventual result.
func (j *Job) Future() *JobFuture {
	return &JobFuture{job: j}
}

// Cancel requests cancellation. It is idempotent and valid from any
// non-terminal status; the actual state transition happens on the scheduler
// goroutine, which Cancel reaches through the owning engine's request
// mailbox.
func (j *Job) Cancel() error {
	eng := j.boundEngine()
	if eng == nil {
		j.mu.Lock()
		if !j.status.Terminal() {
			j.status = StatusCancelled
			j.err = srvErrors.NewCancelledError(j.id)
			j.stoppedAt = time.Now()
		}
		j.mu.Unlock()
		return nil
	}
	return eng.requestCancel(j)
}

// Rerun resets the attempt counter and returns a terminal job to pending.
// It is only valid from a terminal status.
func (j *Job) Rerun() error {
	eng := j.boundEngine()
	if eng == nil {
		return srvErrors.NewEngineStateError("rerun", "unbound")
	}
	return eng.requestRerun(j)
}

func (j *Job) boundEngine() *Engine {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.engine
}

// Wait blocks until the job reaches targetStatus or any terminal status,
// returning the status actually reached. A zero timeout means wait
// indefinitely (bounded only by ctx).
func (j *Job) Wait(ctx context.Context, targetStatus Status, timeout time.Duration) (Status, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for {
		j.mu.Lock()
		cur := j.status
		if cur == targetStatus || cur.Terminal() {
			j.mu.Unlock()
			return cur, nil
		}
		ch := make(chan Status, 1)
		j.observers = append(j.observers, ch)
		j.mu.Unlock()

		select {
		case s := <-ch:
			if s == targetStatus || s.Terminal() {
				return s, nil
			}
		case <-ctx.Done():
			if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return j.Status(), srvErrors.NewTimeoutError(j.id, timeout)
			}
			return j.Status(), ctx.Err()
		}
	}
}

// Result returns the job's stored result. It is only meaningful after
// termination; if the job failed, the stored error is returned instead.
func (j *Job) Result() (any, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusFailed {
		return nil, j.err
	}
	return j.result, nil
}

// Exception returns the job's stored error, if any.
func (j *Job) Exception() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// setStatus transitions the job and wakes any waiters. Called only from the
// scheduler goroutine.
func (j *Job) setStatus(s Status) {
	j.mu.Lock()
	j.status = s
	observers := j.observers
	j.observers = nil
	j.mu.Unlock()

	for _, ch := range observers {
		ch <- s
	}
}

// resetForRerun clears terminal state back to a fresh pending job, attempt
// counter included. It does not transition status or touch the store; the
// caller (Engine.doRerun) does
// that once it has moved the job between buckets, to keep store and status
// changes ordered consistently everywhere.
func (j *Job) resetForRerun() {
	j.mu.Lock()
	j.attempts = 0
	j.cancelRequest = false
	j.result = nil
	j.err = nil
	j.generator = nil
	j.startedAt = time.Time{}
	j.stoppedAt = time.Time{}
	j.mu.Unlock()
	j.effectiveCondition = j.injectDependencies(j.baseCondition)
}

// recordAttempt increments the attempt counter and, on the first attempt,
// records the start time. Called once per dispatch, from the scheduler tick.
func (j *Job) recordAttempt() {
	j.mu.Lock()
	j.attempts++
	if j.startedAt.IsZero() {
		j.startedAt = time.Now()
	}
	j.mu.Unlock()
}

// scheduleRetry conjoins an AfterTimepoint delay onto the job's condition.
// The attempt itself is counted by recordAttempt at the next dispatch, not
// here.
func (j *Job) scheduleRetry(now time.Time) {
	j.mu.Lock()
	delay := j.retry.RetryDelay
	j.effectiveCondition = All(j.baseCondition, NewAfterTimepoint(now.Add(delay)))
	j.mu.Unlock()
}

// retriesExhausted reports whether no further attempt is available.
// MaxAttempts counts retries, not invocations: a job with MaxAttempts=N
// and an always-failing callable is invoked N+1 times (the initial attempt
// plus N retries) before this returns true.
func (j *Job) retriesExhausted() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.attempts > j.retry.MaxAttempts
}

// shouldEvaluate throttles condition re-evaluation to at most once per
// waitInterval.
func (j *Job) shouldEvaluate(now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if now.Sub(j.lastEvaluated) < j.waitInterval {
		return false
	}
	j.lastEvaluated = now
	return true
}

// finish records a terminal result/error pair and the stop time.
func (j *Job) finish(result any, err error) {
	j.mu.Lock()
	j.result = result
	j.err = err
	j.stoppedAt = time.Now()
	j.mu.Unlock()
}

// setGenerator records the lazy-sequence handle a callable returned and
// exposes it as the job's result.
func (j *Job) setGenerator(g *GeneratorHandle) {
	j.mu.Lock()
	j.generator = g
	j.result = g
	j.mu.Unlock()
}

// hasGenerator reports whether this job's callable produced a generator.
func (j *Job) hasGenerator() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.generator != nil
}

// setHandle records the backend handle used to request cancellation.
func (j *Job) setHandle(h Handle) {
	j.mu.Lock()
	j.handle = h
	j.mu.Unlock()
}

func (j *Job) getHandle() Handle {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.handle
}

// requestCancelFlag marks that cancellation has been requested on a running
// job, for callables that cooperatively poll it instead of watching ctx.
func (j *Job) requestCancelFlag() {
	j.mu.Lock()
	j.cancelRequest = true
	j.mu.Unlock()
}

// cancelRequested reports whether Cancel has been called on this job. The
// scheduler tick checks it to pull a pending job out of the queue instead
// of dispatching it, and the completion handler checks it so a cancelled
// job ends cancelled even when its callable happened to finish first.
func (j *Job) cancelRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelRequest
}

func (j *Job) effectiveConditionSnapshot() Condition {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.effectiveCondition
}

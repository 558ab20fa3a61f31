package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

const defaultTickInterval = 75 * time.Millisecond

// closableBackend is implemented by backends that hold resources worth
// releasing on Engine.Stop (ThreadBackend's worker pool, for instance).
type closableBackend interface {
	Close()
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithBackend registers b for the Kind it serves. A later call for the same
// Kind replaces the earlier registration.
func WithBackend(b Backend) EngineOption {
	return func(e *Engine) { e.backends[b.Kind()] = b }
}

// WithMaxGlobal bounds the total number of concurrently running jobs across
// all kinds. 0 (the default) means unbounded.
func WithMaxGlobal(n int) EngineOption {
	return func(e *Engine) { e.maxGlobal = n }
}

// WithMaxPerKind bounds concurrently running jobs of a single kind. 0 means
// unbounded for that kind.
func WithMaxPerKind(k Kind, n int) EngineOption {
	return func(e *Engine) { e.maxPerKind[k] = n }
}

// WithTickInterval overrides how often the scheduler re-evaluates pending
// jobs' conditions. Rarely needed outside tests.
func WithTickInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.tickInterval = d }
}

// WithPrintTraceback enables logging a job's error through the engine's
// logger every time its callable or its backend's Start fails, including
// retried attempts. Failures caught before dispatch (no backend registered,
// a failed dependency) are not logged.
func WithPrintTraceback(b bool) EngineOption {
	return func(e *Engine) { e.printTraceback = b }
}

type controlKind int

const (
	controlCancel controlKind = iota
	controlRerun
	controlExhaust
)

type controlRequest struct {
	kind controlKind
	job  *Job
	done chan error
}

type completionMsg struct {
	job       *Job
	result    any
	err       error
	cancelled bool
}

type waitRequest struct {
	done chan struct{}
}

// Engine is the scheduling facade: it owns a JobStore, a set of Backends,
// and a single background goroutine that is the only writer of job status
// and store bucket membership. Every other method on Engine and on Job that
// changes a job's state reaches the scheduler goroutine through a channel
// mailbox; read-only lookups go through the store's and the job's mutexes.
type Engine struct {
	store          *JobStore
	backends       map[Kind]Backend
	maxGlobal      int
	maxPerKind     map[Kind]int
	tickInterval   time.Duration
	printTraceback bool

	submitCh     chan *Job
	completionCh chan completionMsg
	controlCh    chan controlRequest
	waitCh       chan waitRequest
	startedCh    chan struct{}
	stopCh       chan struct{}
	doneCh       chan struct{}
	startOnce    sync.Once
	stopOnce     sync.Once

	waiters []chan struct{}

	log *zap.SugaredLogger
}

// NewEngine builds an Engine with the given options. It does not start the
// scheduler goroutine; call Start for that.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		store:        NewJobStore(),
		backends:     make(map[Kind]Backend),
		maxPerKind:   make(map[Kind]int),
		tickInterval: defaultTickInterval,
		submitCh:     make(chan *Job),
		completionCh: make(chan completionMsg),
		controlCh:    make(chan controlRequest),
		waitCh:       make(chan waitRequest),
		startedCh:    make(chan struct{}),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		log:          zap.S().Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the scheduler goroutine. Idempotent: later calls are
// no-ops. ctx bounds the lifetime of every in-flight backend invocation;
// cancelling it is equivalent to Stop plus propagating cancellation to
// running jobs.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		close(e.startedCh)
		go e.loop(ctx)
	})
}

// Stop signals the scheduler goroutine to exit and blocks until it has,
// then closes any backend implementing Close. Idempotent, and safe on an
// engine that was never started.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	select {
	case <-e.startedCh:
		<-e.doneCh
	default:
	}
	for _, b := range e.backends {
		if c, ok := b.(closableBackend); ok {
			c.Close()
		}
	}
}

// running reports whether the scheduler goroutine has been started and has
// not yet exited. Mailbox senders check it so an operation against a
// stopped (or never-started) engine fails with EngineStateError instead of
// blocking on a channel nobody reads.
func (e *Engine) running() bool {
	select {
	case <-e.startedCh:
	default:
		return false
	}
	select {
	case <-e.doneCh:
		return false
	default:
		return true
	}
}

// Run is the engine's scoped acquisition form: it builds an Engine, starts
// its scheduler goroutine, invokes fn with the running engine, and
// guarantees Stop runs before returning on every exit path, including a
// panic inside fn, which is re-raised once Stop has completed.
func Run(ctx context.Context, fn func(*Engine) error, opts ...EngineOption) (err error) {
	e := NewEngine(opts...)
	e.Start(ctx)
	defer func() {
		e.Stop()
		if r := recover(); r != nil {
			panic(r)
		}
	}()
	return fn(e)
}

// Submit admits job to the engine: it is bound to this engine and enqueued
// as pending. The returned future resolves once the job terminates.
func (e *Engine) Submit(job *Job) (*JobFuture, error) {
	if !e.running() {
		return nil, srvErrors.NewEngineStateError("submit", "stopped")
	}
	job.bindEngine(e)
	select {
	case e.submitCh <- job:
		return job.Future(), nil
	case <-e.doneCh:
		return nil, srvErrors.NewEngineStateError("submit", "stopped")
	}
}

// JobStatus looks up a job by id across every bucket. Conditions use this
// to observe other jobs' statuses without reaching into the store directly.
func (e *Engine) JobStatus(id string) (Status, bool) {
	j, ok := e.store.GetByID(id)
	if !ok {
		return "", false
	}
	return j.Status(), true
}

// Job looks up a submitted job by id, for introspection callers (the HTTP
// surface, CLI report generation).
func (e *Engine) Job(id string) (*Job, bool) {
	return e.store.GetByID(id)
}

// Jobs returns every job the engine has ever accepted, across all buckets.
func (e *Engine) Jobs() []*Job {
	return e.store.All()
}

// Wait blocks until the engine is idle: no pending jobs, and no running
// jobs other than generator-producing jobs still streaming. A streaming
// generator job never counts toward idleness; wait on its future instead.
func (e *Engine) Wait(ctx context.Context) error {
	if !e.running() {
		return srvErrors.NewEngineStateError("wait", "stopped")
	}
	done := make(chan struct{})
	select {
	case e.waitCh <- waitRequest{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.doneCh:
		return srvErrors.NewEngineStateError("wait", "stopped")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.doneCh:
		return srvErrors.NewEngineStateError("wait", "stopped")
	}
}

// WaitJob blocks until job reaches a terminal status. It is a thin
// convenience over Job.Wait: Engine keeps it on its own public surface
// because callers reach jobs through the engine (the HTTP handlers, the
// CLI) as often as they hold a *Job directly.
func (e *Engine) WaitJob(ctx context.Context, job *Job) (Status, error) {
	return job.Wait(ctx, StatusDone, 0)
}

func (e *Engine) requestCancel(job *Job) error  { return e.control(controlCancel, job) }
func (e *Engine) requestRerun(job *Job) error   { return e.control(controlRerun, job) }
func (e *Engine) requestExhaust(job *Job) error { return e.control(controlExhaust, job) }

func (e *Engine) control(kind controlKind, job *Job) error {
	if !e.running() {
		return srvErrors.NewEngineStateError("control", "stopped")
	}
	done := make(chan error, 1)
	select {
	case e.controlCh <- controlRequest{kind: kind, job: job, done: done}:
	case <-e.doneCh:
		return srvErrors.NewEngineStateError("control", "stopped")
	}
	select {
	case err := <-done:
		return err
	case <-e.doneCh:
		return srvErrors.NewEngineStateError("control", "stopped")
	}
}

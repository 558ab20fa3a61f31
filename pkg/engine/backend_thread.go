package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ThreadBackend offloads callables to a bounded pool of goroutines: a
// fixed set of worker tokens, an unbounded pending queue, and a dispatch
// loop pairing the two. Start never blocks — surplus work beyond the pool
// size sits queued until a worker frees, so the scheduler goroutine is
// never stalled by a saturated pool. Cancellation is cooperative: a
// worker's context is cancelled, and user code that doesn't check
// ctx.Done() simply keeps the worker slot occupied until it returns on
// its own.
type ThreadBackend struct {
	workers chan struct{} // one token per available worker slot

	mu    sync.Mutex
	queue []threadWork
	wake  chan struct{} // signals dispatch that the queue is non-empty

	wg     sync.WaitGroup
	once   sync.Once
	closed chan struct{}
}

type threadWork struct {
	job    *Job
	args   []any
	ctx    context.Context
	notify notifyFunc
}

// NewThreadBackend starts size workers. size <= 0 means unbounded (every
// submission gets its own goroutine immediately).
func NewThreadBackend(size int) *ThreadBackend {
	b := &ThreadBackend{
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	if size > 0 {
		b.workers = make(chan struct{}, size)
		for i := 0; i < size; i++ {
			b.workers <- struct{}{}
		}
	}
	go b.dispatch()
	return b
}

func (b *ThreadBackend) Kind() Kind { return KindThread }

type threadHandle struct {
	cancel context.CancelFunc
}

func (h *threadHandle) Cancel() { h.cancel() }

func (b *ThreadBackend) Start(ctx context.Context, job *Job, args []any, notify notifyFunc) (Handle, error) {
	select {
	case <-b.closed:
		return nil, fmt.Errorf("thread backend closed")
	default:
	}

	runCtx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	b.queue = append(b.queue, threadWork{job: job, args: args, ctx: runCtx, notify: notify})
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}

	return &threadHandle{cancel: cancel}, nil
}

// next pops the oldest queued work item, if any.
func (b *ThreadBackend) next() (threadWork, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return threadWork{}, false
	}
	w := b.queue[0]
	b.queue = b.queue[1:]
	return w, true
}

// dispatch pairs queued work with available worker tokens. With an
// unbounded pool (b.workers == nil) every queued item launches
// immediately.
func (b *ThreadBackend) dispatch() {
	for {
		w, ok := b.next()
		if !ok {
			select {
			case <-b.wake:
				continue
			case <-b.closed:
				return
			}
		}
		if b.workers != nil {
			select {
			case <-b.workers:
			case <-b.closed:
				return
			}
		}
		b.wg.Add(1)
		go b.run(w)
	}
}

func (b *ThreadBackend) run(w threadWork) {
	defer func() {
		if b.workers != nil {
			b.workers <- struct{}{}
		}
		b.wg.Done()
	}()

	defer func() {
		if r := recover(); r != nil {
			zap.S().Named("engine_backend_thread").Errorw("worker panicked", "job", w.job.ID(), "panic", r)
			w.notify(nil, &panicValue{r}, false)
		}
	}()

	// A job cancelled while still queued never gets its callable invoked.
	if w.ctx.Err() != nil {
		w.notify(nil, w.ctx.Err(), true)
		return
	}

	result, err := w.job.fn(w.ctx, w.args)
	select {
	case <-w.ctx.Done():
		w.notify(result, err, true)
	default:
		w.notify(result, err, false)
	}
}

// Close stops accepting new work and waits for in-flight workers to
// return. Work still queued when Close is called is dropped; the engine
// has already finished those jobs as cancelled by the time it closes its
// backends.
func (b *ThreadBackend) Close() {
	b.once.Do(func() {
		close(b.closed)
		b.wg.Wait()
	})
}

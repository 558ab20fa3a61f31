package jobkinds

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/jobengine/pkg/engine"
)

// CronJob resubmits a fresh job on a fixed interval. It is a thin
// collaborator over the public Engine/Job API: it owns no scheduling state
// of its own, it just calls Engine.Submit again each tick.
type CronJob struct {
	eng      *engine.Engine
	kind     engine.Kind
	fn       engine.Callable
	args     []any
	opts     []engine.JobOption
	interval time.Duration

	stop chan struct{}
}

// NewCronJob builds a CronJob that submits a kind job running fn every
// interval once Start is called.
func NewCronJob(eng *engine.Engine, kind engine.Kind, fn engine.Callable, args []any, interval time.Duration, opts ...engine.JobOption) *CronJob {
	return &CronJob{eng: eng, kind: kind, fn: fn, args: args, opts: opts, interval: interval, stop: make(chan struct{})}
}

// Start launches the resubmission loop. It returns immediately; the loop
// runs until ctx is done or Stop is called.
func (c *CronJob) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		log := zap.S().Named("jobkinds_cron")
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-ticker.C:
				job := engine.NewJob(c.kind, c.fn, c.args, c.opts...)
				if _, err := c.eng.Submit(job); err != nil {
					log.Errorw("cron submit failed", "error", err)
				}
			}
		}
	}()
}

// Stop ends the resubmission loop. Idempotent.
func (c *CronJob) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

// SentinelPredicate reports whether a SentinelJob should submit its next
// occurrence. Evaluated against the same Engine the sentinel submits into,
// so it can reference other jobs' state.
type SentinelPredicate func(eng *engine.Engine) bool

// SentinelJob submits a fresh job each time predicate becomes true,
// checked on pollInterval. Unlike CronJob's fixed
// cadence, a SentinelJob only fires when its predicate holds, and won't
// fire again until the predicate has gone false and then true once more
// (edge-triggered, not level-triggered — otherwise a predicate that stays
// true would resubmit on every poll).
type SentinelJob struct {
	eng          *engine.Engine
	kind         engine.Kind
	fn           engine.Callable
	args         []any
	opts         []engine.JobOption
	predicate    SentinelPredicate
	pollInterval time.Duration

	stop chan struct{}
}

// NewSentinelJob builds a SentinelJob over predicate, polled every
// pollInterval.
func NewSentinelJob(eng *engine.Engine, kind engine.Kind, fn engine.Callable, args []any, predicate SentinelPredicate, pollInterval time.Duration, opts ...engine.JobOption) *SentinelJob {
	return &SentinelJob{
		eng: eng, kind: kind, fn: fn, args: args, opts: opts,
		predicate: predicate, pollInterval: pollInterval, stop: make(chan struct{}),
	}
}

// Start launches the polling loop.
func (s *SentinelJob) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		log := zap.S().Named("jobkinds_sentinel")
		wasTrue := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				now := s.predicate(s.eng)
				if now && !wasTrue {
					job := engine.NewJob(s.kind, s.fn, s.args, s.opts...)
					if _, err := s.eng.Submit(job); err != nil {
						log.Errorw("sentinel submit failed", "error", err)
					}
				}
				wasTrue = now
			}
		}
	}()
}

// Stop ends the polling loop. Idempotent.
func (s *SentinelJob) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

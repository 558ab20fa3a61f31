package engine

import (
	"context"
	"fmt"
	"time"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

// loop is the scheduler's single goroutine: every mutation of job status and
// store bucket membership happens here, and only here. ctx bounds every
// backend invocation dispatched from this engine.
func (e *Engine) loop(ctx context.Context) {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.drainOnStop()
			return
		case <-e.stopCh:
			e.drainOnStop()
			return
		case job := <-e.submitCh:
			e.handleSubmit(job)
		case msg := <-e.completionCh:
			e.handleCompletion(msg)
		case req := <-e.controlCh:
			e.handleControl(req)
		case wr := <-e.waitCh:
			e.handleWait(wr)
		case <-ticker.C:
			e.tick(ctx)
		}
		e.notifyIdleIfNeeded()
	}
}

func (e *Engine) handleSubmit(job *Job) {
	e.store.Insert(StatusPending, job)
	job.setStatus(StatusPending)
}

// tick re-evaluates every pending job's condition, in FIFO submission order,
// and dispatches as many as current capacity allows. Once global capacity is
// exhausted it stops scanning entirely, preserving FIFO order among the
// jobs that remain pending.
func (e *Engine) tick(ctx context.Context) {
	now := time.Now()

	runningByKind := make(map[Kind]int)
	for _, j := range e.store.Bucket(StatusRunning) {
		runningByKind[j.Kind()]++
	}
	totalRunning := e.store.Len(StatusRunning)

	for _, job := range e.store.Bucket(StatusPending) {
		if job.cancelRequested() {
			e.cancelPending(job)
			continue
		}
		if !job.shouldEvaluate(now) {
			continue
		}
		if !safeSatisfy(job.effectiveConditionSnapshot(), e) {
			continue
		}
		if e.maxGlobal > 0 && totalRunning >= e.maxGlobal {
			break
		}
		if max, ok := e.maxPerKind[job.Kind()]; ok && max > 0 && runningByKind[job.Kind()] >= max {
			continue
		}
		if e.dispatch(ctx, job) {
			totalRunning++
			runningByKind[job.Kind()]++
		}
	}
}

func (e *Engine) cancelPending(job *Job) {
	job.finish(nil, srvErrors.NewCancelledError(job.ID()))
	e.store.Move(job, StatusPending, StatusCancelled)
	job.setStatus(StatusCancelled)
}

// dispatch resolves a pending job's arguments, hands it to its backend, and
// moves it to running. It reports false when the job did not stay running
// (no backend registered or argument resolution failed, which fail it; or
// backend Start failed, which fails it or sends it back to pending for a
// retry) so the caller's capacity bookkeeping doesn't count it as occupying
// a slot.
func (e *Engine) dispatch(ctx context.Context, job *Job) bool {
	backend, ok := e.backends[job.Kind()]
	if !ok {
		job.finish(nil, srvErrors.NewBackendError(job.ID(), string(job.Kind()), fmt.Errorf("no backend registered for kind %q", job.Kind()), false))
		e.store.Move(job, StatusPending, StatusFailed)
		job.setStatus(StatusFailed)
		return false
	}

	args, err := resolveArgs(job.ID(), job.args)
	if err != nil {
		job.finish(nil, err)
		e.store.Move(job, StatusPending, StatusFailed)
		job.setStatus(StatusFailed)
		return false
	}

	job.recordAttempt()
	e.store.Move(job, StatusPending, StatusRunning)
	job.setStatus(StatusRunning)

	handle, err := backend.Start(ctx, job, args, func(result any, err error, cancelled bool) {
		select {
		case e.completionCh <- completionMsg{job: job, result: result, err: err, cancelled: cancelled}:
		case <-e.stopCh:
		}
	})
	if err != nil {
		// A start failure consumes the same retry budget a callable failure
		// does, so a transiently unavailable backend gets another chance.
		e.handleFailure(job, srvErrors.NewBackendError(job.ID(), string(job.Kind()), err, job.Attempts() > 1))
		return false
	}
	job.setHandle(handle)
	return true
}

// handleCompletion processes a backend's notify callback. A generator
// result leaves the job in the running bucket: it only reaches done once
// the consumer calls MarkGeneratorExhausted (see handleControl/doExhaust).
func (e *Engine) handleCompletion(msg completionMsg) {
	job := msg.job

	// cancelRequested covers the race where the callable completed on its
	// own between Cancel being requested and the backend observing the
	// cancelled context: once cancel has been asked for, the job ends
	// cancelled no matter which message wins.
	if msg.cancelled || job.cancelRequested() {
		job.finish(nil, srvErrors.NewCancelledError(job.ID()))
		e.finishJob(job, StatusCancelled)
		return
	}

	if gh, ok := msg.result.(*GeneratorHandle); ok && msg.err == nil {
		job.setGenerator(gh)
		return
	}

	if msg.err != nil {
		e.handleFailure(job, srvErrors.NewUserCallableError(job.ID(), msg.err))
		return
	}

	job.finish(msg.result, nil)
	e.finishJob(job, StatusDone)
}

// handleFailure stores wrapped on the job and either schedules a retry or
// finishes it failed. The job must currently be in the running bucket.
func (e *Engine) handleFailure(job *Job, wrapped error) {
	if e.printTraceback {
		e.log.Errorw("job failed", "job", job.ID(), "kind", job.Kind(), "label", job.Label(), "attempts", job.Attempts(), "error", fmt.Sprintf("%+v", wrapped))
	}
	job.finish(nil, wrapped)
	if !job.retriesExhausted() {
		job.scheduleRetry(time.Now())
		e.store.Move(job, StatusRunning, StatusPending)
		job.setStatus(StatusPending)
		return
	}
	e.finishJob(job, StatusFailed)
}

func (e *Engine) finishJob(job *Job, status Status) {
	e.store.Move(job, StatusRunning, status)
	job.setStatus(status)
}

func (e *Engine) handleControl(req controlRequest) {
	var err error
	switch req.kind {
	case controlCancel:
		err = e.doCancel(req.job)
	case controlRerun:
		err = e.doRerun(req.job)
	case controlExhaust:
		err = e.doExhaust(req.job)
	}
	req.done <- err
}

func (e *Engine) doCancel(job *Job) error {
	status := job.Status()
	if status.Terminal() {
		return nil
	}
	if status == StatusPending {
		e.cancelPending(job)
		return nil
	}
	// A generator-producing job's backend goroutine has already returned and
	// already called notify() by the time it sits in running (handleCompletion
	// leaves it there deliberately). There is nobody left listening on a
	// cancelled backend context, so cancellation has to bypass the backend
	// entirely and finish the job directly, mirroring doExhaust.
	if job.hasGenerator() {
		job.finish(nil, srvErrors.NewCancelledError(job.ID()))
		e.finishJob(job, StatusCancelled)
		return nil
	}
	job.requestCancelFlag()
	if h := job.getHandle(); h != nil {
		h.Cancel()
	}
	return nil
}

func (e *Engine) doRerun(job *Job) error {
	status := job.Status()
	if !status.Terminal() {
		return srvErrors.NewEngineStateError("rerun", string(status))
	}
	job.resetForRerun()
	e.store.Move(job, status, StatusPending)
	job.setStatus(StatusPending)
	return nil
}

// drainOnStop cancels every pending and running job before the scheduler
// goroutine exits: Stop leaves no job behind in pending or running.
// Running jobs' backends are asked to cancel
// on a best-effort basis, but the job is finished here regardless — once the
// scheduler goroutine returns, nobody will ever read a late completion off
// completionCh again.
func (e *Engine) drainOnStop() {
	for _, job := range e.store.Bucket(StatusPending) {
		e.cancelPending(job)
	}
	for _, job := range e.store.Bucket(StatusRunning) {
		if h := job.getHandle(); h != nil {
			h.Cancel()
		}
		job.finish(nil, srvErrors.NewCancelledError(job.ID()))
		e.finishJob(job, StatusCancelled)
	}
}

func (e *Engine) doExhaust(job *Job) error {
	if job.Status() != StatusRunning || !job.hasGenerator() {
		return nil
	}
	e.finishJob(job, StatusDone)
	return nil
}

func (e *Engine) handleWait(wr waitRequest) {
	if e.isIdle() {
		close(wr.done)
		return
	}
	e.waiters = append(e.waiters, wr.done)
}

// isIdle reports whether the engine has no pending jobs and no running jobs
// besides generator-producing jobs still streaming.
func (e *Engine) isIdle() bool {
	if e.store.Len(StatusPending) > 0 {
		return false
	}
	for _, j := range e.store.Bucket(StatusRunning) {
		if !j.hasGenerator() {
			return false
		}
	}
	return true
}

func (e *Engine) notifyIdleIfNeeded() {
	if len(e.waiters) == 0 || !e.isIdle() {
		return
	}
	for _, w := range e.waiters {
		close(w)
	}
	e.waiters = nil
}

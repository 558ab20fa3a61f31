package engine

import (
	"time"

	"go.uber.org/zap"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

// Condition gates a job's transition from pending to running. Satisfy must
// be pure with respect to engine state and side-effect-free: the scheduler
// calls it at most once per pending job per tick, and no more often than
// the job's wait interval.
type Condition interface {
	Satisfy(eng *Engine) bool
}

// always is the default condition: every job is runnable as soon as capacity
// allows.
type always struct{}

func (always) Satisfy(*Engine) bool { return true }

// Always is satisfied unconditionally.
var Always Condition = always{}

// statusSet is a small convenience map-of-statuses builder shared by
// AfterAnother and AfterOthers.
type statusSet map[Status]struct{}

func newStatusSet(statuses ...Status) statusSet {
	if len(statuses) == 0 {
		statuses = []Status{StatusDone}
	}
	s := make(statusSet, len(statuses))
	for _, st := range statuses {
		s[st] = struct{}{}
	}
	return s
}

func (s statusSet) has(st Status) bool {
	_, ok := s[st]
	return ok
}

// AfterAnother is satisfied once the referenced job's status is a member of
// Statuses. A job that no longer exists (never submitted, or pruned) is
// treated as satisfied only when the allowed set includes StatusFailed;
// otherwise it is treated as unsatisfied.
type AfterAnother struct {
	JobID    string
	Statuses statusSet
}

// NewAfterAnother builds a condition satisfied once jobID reaches one of the
// given statuses (default: {done}).
func NewAfterAnother(jobID string, statuses ...Status) *AfterAnother {
	return &AfterAnother{JobID: jobID, Statuses: newStatusSet(statuses...)}
}

func (c *AfterAnother) Satisfy(eng *Engine) bool {
	status, ok := eng.JobStatus(c.JobID)
	if !ok {
		return c.Statuses.has(StatusFailed)
	}
	return c.Statuses.has(status)
}

// Mode selects how AfterOthers combines its referenced jobs.
type Mode string

const (
	ModeAll Mode = "all"
	ModeAny Mode = "any"
)

// AfterOthers generalizes AfterAnother over a set of jobs.
type AfterOthers struct {
	JobIDs   []string
	Statuses statusSet
	Mode     Mode
}

// NewAfterOthers builds a condition over a set of referenced jobs.
func NewAfterOthers(mode Mode, jobIDs []string, statuses ...Status) *AfterOthers {
	return &AfterOthers{JobIDs: append([]string(nil), jobIDs...), Statuses: newStatusSet(statuses...), Mode: mode}
}

func (c *AfterOthers) Satisfy(eng *Engine) bool {
	if len(c.JobIDs) == 0 {
		return true
	}
	each := func(id string) bool {
		return (&AfterAnother{JobID: id, Statuses: c.Statuses}).Satisfy(eng)
	}
	switch c.Mode {
	case ModeAny:
		for _, id := range c.JobIDs {
			if each(id) {
				return true
			}
		}
		return false
	default:
		for _, id := range c.JobIDs {
			if !each(id) {
				return false
			}
		}
		return true
	}
}

// dependencyCondition is the condition auto-injected when a JobFuture is
// passed as an argument to another job. Unlike the default AfterAnother
// (satisfied only on {done}), it treats any terminal status as satisfying —
// argument resolution, which runs immediately before dispatch, is what turns
// a failed/cancelled producer into a DependencyFailedError on the consumer.
// Without this, a failed dependency would leave the consumer pending
// forever instead of propagating the failure.
func dependencyCondition(producerIDs ...string) Condition {
	return NewAfterOthers(ModeAll, producerIDs, StatusDone, StatusFailed, StatusCancelled)
}

// AfterTimepoint is satisfied once wall-clock time reaches At.
type AfterTimepoint struct {
	At time.Time
}

func NewAfterTimepoint(at time.Time) AfterTimepoint {
	return AfterTimepoint{At: at}
}

func (c AfterTimepoint) Satisfy(*Engine) bool {
	return !time.Now().Before(c.At)
}

// AllSatisfied is a short-circuiting AND over its members.
type AllSatisfied struct {
	Conditions []Condition
}

func (c AllSatisfied) Satisfy(eng *Engine) bool {
	for _, sub := range c.Conditions {
		if !safeSatisfy(sub, eng) {
			return false
		}
	}
	return true
}

// AnySatisfied is a short-circuiting OR over its members.
type AnySatisfied struct {
	Conditions []Condition
}

func (c AnySatisfied) Satisfy(eng *Engine) bool {
	for _, sub := range c.Conditions {
		if safeSatisfy(sub, eng) {
			return true
		}
	}
	return false
}

// All builds an AllSatisfied combinator, flattening nested AllSatisfied
// members so repeated combination doesn't nest arbitrarily deep.
func All(conditions ...Condition) Condition {
	flat := make([]Condition, 0, len(conditions))
	for _, c := range conditions {
		if inner, ok := c.(AllSatisfied); ok {
			flat = append(flat, inner.Conditions...)
			continue
		}
		flat = append(flat, c)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return AllSatisfied{Conditions: flat}
}

// Any builds an AnySatisfied combinator with the same flattening as All.
func Any(conditions ...Condition) Condition {
	flat := make([]Condition, 0, len(conditions))
	for _, c := range conditions {
		if inner, ok := c.(AnySatisfied); ok {
			flat = append(flat, inner.Conditions...)
			continue
		}
		flat = append(flat, c)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return AnySatisfied{Conditions: flat}
}

// safeSatisfy isolates a user-defined condition's panic so one bad predicate
// can't take down the scheduler loop; the tick treats the panic as "not
// satisfied" and logs a ConditionError.
func safeSatisfy(c Condition, eng *Engine) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Named("engine_condition").Errorw("condition evaluation panicked",
				"error", srvErrors.NewConditionError("", toError(r)))
			ok = false
		}
	}()
	return c.Satisfy(eng)
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicValue{r}
}

type panicValue struct{ v any }

func (p *panicValue) Error() string { return "panic: " + formatAny(p.v) }

package engine

import (
	"context"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
)

// engineContextKey is an unexported type so no other package can collide
// with this context key (the standard Go idiom for context values).
type engineContextKey struct{}

// WithEngine returns a context carrying e as the "current" engine for
// anything built with a Launcher: an explicit scoped value rather than a
// process-wide singleton.
func WithEngine(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, engineContextKey{}, e)
}

// EngineFromContext returns the engine bound by the nearest enclosing
// WithEngine call, if any.
func EngineFromContext(ctx context.Context) (*Engine, bool) {
	e, ok := ctx.Value(engineContextKey{}).(*Engine)
	return e, ok
}

// Launcher wraps a Callable with a fixed Kind so call sites can submit work
// without repeating backend selection and job options at every call. It
// resolves the target engine from ctx (via WithEngine) unless one is bound
// explicitly with WithEngineOverride.
type Launcher struct {
	kind     Kind
	fn       Callable
	opts     []JobOption
	override *Engine
}

// NewLauncher decorates fn for dispatch to kind, with opts applied to every
// job it submits.
func NewLauncher(kind Kind, fn Callable, opts ...JobOption) *Launcher {
	return &Launcher{kind: kind, fn: fn, opts: opts}
}

// WithEngineOverride pins the launcher to a specific engine instead of
// resolving one from the submission context.
func (l *Launcher) WithEngineOverride(e *Engine) *Launcher {
	return &Launcher{kind: l.kind, fn: l.fn, opts: l.opts, override: e}
}

// Submit builds a job from args and the launcher's fixed options, submits it
// to the resolved engine, and returns the resulting future.
func (l *Launcher) Submit(ctx context.Context, args []any, extra ...JobOption) (*JobFuture, error) {
	eng := l.override
	if eng == nil {
		var ok bool
		eng, ok = EngineFromContext(ctx)
		if !ok {
			return nil, srvErrors.NewEngineStateError("launcher.submit", "no engine bound to context")
		}
	}
	opts := append(append([]JobOption(nil), l.opts...), extra...)
	job := NewJob(l.kind, l.fn, args, opts...)
	return eng.Submit(job)
}

// NewProcessLauncher is the process-backend counterpart of NewLauncher: it
// also pins the ProcessEntryPoint a worker subprocess looks up.
func NewProcessLauncher(entry ProcessEntryPoint, fn Callable, opts ...JobOption) *Launcher {
	opts = append(append([]JobOption(nil), opts...), WithProcessEntryPoint(entry))
	return NewLauncher(KindProcess, fn, opts...)
}

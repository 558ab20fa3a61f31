package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// ProcessEntryPoint names a Callable registered for out-of-process
// execution. Go closures aren't transport-serializable, so — unlike the
// in-process backends — a ProcessJob carries the *name* of a callable that
// the worker subprocess looks up in a ProcessRegistry, plus JSON-encodable
// arguments.
type ProcessEntryPoint string

// ProcessRegistry maps entry point names to callables runnable inside a
// worker subprocess. cmd/jobengine's process-worker mode loads one of
// these at startup and dispatches into it by name.
type ProcessRegistry struct {
	mu  sync.RWMutex
	fns map[ProcessEntryPoint]Callable
}

// NewProcessRegistry returns an empty registry.
func NewProcessRegistry() *ProcessRegistry {
	return &ProcessRegistry{fns: make(map[ProcessEntryPoint]Callable)}
}

// Register binds name to fn. Re-registering a name overwrites it.
func (r *ProcessRegistry) Register(name ProcessEntryPoint, fn Callable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
}

// Lookup returns the callable bound to name, if any.
func (r *ProcessRegistry) Lookup(name ProcessEntryPoint) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// processEnvelope is the wire format exchanged with the worker subprocess
// over stdin/stdout.
type processEnvelope struct {
	EntryPoint string `json:"entry_point"`
	Args       []any  `json:"args"`
}

type processResult struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ProcessBackend offloads a job to a freshly spawned child process running
// this binary in "process worker" mode (cmd/jobengine's `process-worker`
// subcommand). Cancellation kills the child.
type ProcessBackend struct {
	workerBinary string
	workerArgs   []string
	sem          chan struct{} // nil means unbounded
}

// NewProcessBackend builds a backend that spawns workerBinary with
// workerArgs for every job. poolSize <= 0 means unbounded concurrent
// children.
func NewProcessBackend(workerBinary string, workerArgs []string, poolSize int) *ProcessBackend {
	b := &ProcessBackend{workerBinary: workerBinary, workerArgs: workerArgs}
	if poolSize > 0 {
		b.sem = make(chan struct{}, poolSize)
	}
	return b
}

func (b *ProcessBackend) Kind() Kind { return KindProcess }

type processHandle struct {
	cancel context.CancelFunc
}

func (h *processHandle) Cancel() { h.cancel() }

func (b *ProcessBackend) Start(ctx context.Context, job *Job, args []any, notify notifyFunc) (Handle, error) {
	runCtx, cancel := context.WithCancel(ctx)

	entry := job.processEntryPoint
	if entry == "" {
		cancel()
		return nil, fmt.Errorf("process job %s has no registered entry point", job.ID())
	}

	go func() {
		if b.sem != nil {
			select {
			case b.sem <- struct{}{}:
				defer func() { <-b.sem }()
			case <-runCtx.Done():
				notify(nil, runCtx.Err(), true)
				return
			}
		}
		b.run(runCtx, job, entry, args, notify)
	}()

	return &processHandle{cancel: cancel}, nil
}

func (b *ProcessBackend) run(ctx context.Context, job *Job, entry ProcessEntryPoint, args []any, notify notifyFunc) {
	payload, err := json.Marshal(processEnvelope{EntryPoint: string(entry), Args: args})
	if err != nil {
		notify(nil, fmt.Errorf("marshal process job args: %w", err), false)
		return
	}

	cmdArgs := append(append([]string{}, b.workerArgs...), "--entry-point", string(entry))
	cmd := exec.CommandContext(ctx, b.workerBinary, cmdArgs...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	select {
	case <-ctx.Done():
		notify(nil, ctx.Err(), true)
		return
	default:
	}

	if runErr != nil {
		zap.S().Named("engine_backend_process").Errorw("worker process failed",
			"job", job.ID(), "entry_point", entry, "stderr", stderr.String(), "error", runErr)
		notify(nil, fmt.Errorf("process worker: %w", runErr), false)
		return
	}

	var out processResult
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		notify(nil, fmt.Errorf("decode process worker output: %w", err), false)
		return
	}
	if out.Error != "" {
		notify(nil, fmt.Errorf("%s", out.Error), false)
		return
	}
	notify(out.Result, nil, false)
}

// RunProcessWorker is the subprocess-side half of ProcessBackend: read an
// envelope from stdin, look the entry point up in reg, invoke it, and write
// a processResult to stdout. Intended to be called from cmd/jobengine's
// process-worker subcommand, which this backend spawns.
func RunProcessWorker(ctx context.Context, reg *ProcessRegistry, stdin []byte) ([]byte, error) {
	var env processEnvelope
	if err := json.Unmarshal(stdin, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	fn, ok := reg.Lookup(ProcessEntryPoint(env.EntryPoint))
	if !ok {
		out, _ := json.Marshal(processResult{Error: fmt.Sprintf("unknown entry point %q", env.EntryPoint)})
		return out, nil
	}

	result, err := fn(ctx, env.Args)
	if err != nil {
		out, _ := json.Marshal(processResult{Error: err.Error()})
		return out, nil
	}

	return json.Marshal(processResult{Result: result})
}

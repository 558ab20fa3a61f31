package jobkinds

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/tupyy/jobengine/pkg/engine"
)

// SubprocessResult is the result of a SubprocessJob's callable: the
// captured stdout and stderr, kept separate, and the process's exit code.
type SubprocessResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandTemplate renders a shell command line from a job's resolved
// arguments, e.g. for running the same script against a different input
// file per job.
type CommandTemplate func(args []any) (name string, cmdArgs []string)

// NewSubprocessJob builds a KindLocal job (the spawned subprocess is its
// own isolation boundary, so no engine-side backend has to host it) whose
// callable runs the command tpl renders for args, honoring ctx
// cancellation by killing the child process.
func NewSubprocessJob(tpl CommandTemplate, args []any, opts ...engine.JobOption) *engine.Job {
	fn := func(ctx context.Context, args []any) (any, error) {
		name, cmdArgs := tpl(args)
		cmd := exec.CommandContext(ctx, name, cmdArgs...)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		result := SubprocessResult{Stdout: stdout.String(), Stderr: stderr.String()}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			zap.S().Named("jobkinds_subprocess").Warnw("subprocess exited non-zero",
				"cmd", name, "args", cmdArgs, "exitCode", result.ExitCode, "stderr", result.Stderr)
			return result, fmt.Errorf("%s: exit code %d", name, result.ExitCode)
		}
		if err != nil {
			return result, fmt.Errorf("run %s: %w", name, err)
		}
		return result, nil
	}
	return engine.NewJob(engine.KindLocal, fn, args, opts...)
}

// ShellCommand is a CommandTemplate that ignores its arguments and always
// runs the same fixed command line, the common case for a SubprocessJob
// wrapping one script.
func ShellCommand(name string, cmdArgs ...string) CommandTemplate {
	return func([]any) (string, []string) { return name, cmdArgs }
}

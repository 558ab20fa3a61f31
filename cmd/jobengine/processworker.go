package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tupyy/jobengine/pkg/engine"
)

var processWorkerEntryPoint string

var processWorkerCmd = &cobra.Command{
	Use:    "process-worker",
	Short:  "Run one registered entry point against an envelope read from stdin (internal use by ProcessBackend)",
	Hidden: true,
	RunE:   runProcessWorker,
}

func init() {
	processWorkerCmd.Flags().StringVar(&processWorkerEntryPoint, "entry-point", "", "registered entry point name")
	rootCmd.AddCommand(processWorkerCmd)
}

// processRegistry is the set of callables this binary can run out-of-process
// on behalf of ProcessBackend. A real deployment registers its own entry
// points here at init time.
var processRegistry = buildProcessRegistry()

func buildProcessRegistry() *engine.ProcessRegistry {
	reg := engine.NewProcessRegistry()
	reg.Register("echo", func(ctx context.Context, args []any) (any, error) {
		return args, nil
	})
	reg.Register("sum", func(ctx context.Context, args []any) (any, error) {
		total := 0.0
		for _, a := range args {
			f, ok := a.(float64)
			if !ok {
				return nil, fmt.Errorf("sum: non-numeric argument %v", a)
			}
			total += f
		}
		return total, nil
	})
	return reg
}

func runProcessWorker(cmd *cobra.Command, args []string) error {
	stdin, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin envelope: %w", err)
	}

	out, err := engine.RunProcessWorker(cmd.Context(), processRegistry, stdin)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

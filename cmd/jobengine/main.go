// Command jobengine runs and inspects the job execution engine described in
// this repository's pkg/engine: it hosts the introspection HTTP API, lets an
// operator list/cancel/rerun jobs from the shell, exports job history to
// .xlsx, and doubles as the out-of-process worker ProcessBackend spawns.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

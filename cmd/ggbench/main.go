// Command ggbench measures frame times of gg rendering workloads.
//
// Usage:
//
//	ggbench run [suite.yaml] [--backend gg|vector] [--json]
//	ggbench list
//	ggbench version
//
// Without a suite file, run measures every built-in workload once with the
// default manifest.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

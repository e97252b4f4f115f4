// Command fusionctl builds the Gironde municipal risk fact table once and
// prints a view of it: search, rankings, clay exposure, gauge reports and
// the poverty/income correlation.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

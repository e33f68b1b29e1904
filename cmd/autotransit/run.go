package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

// run starts the graph and blocks until an OS signal or an fx shutdown
// request, then stops it and exits with the requested code.
func run(ctx context.Context, app *fx.App) {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "autotransit: start: %v\n", err)
		os.Exit(1)
	}

	code := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		code = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "autotransit: stop: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

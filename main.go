package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/vegasq/tibble/internal/cli"
)

// main mirrors cmd/tibble so the module root installs the same tool
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, cli.NewRootCmd(), os.Stderr)
	stop()
	os.Exit(code)
}

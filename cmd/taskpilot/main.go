package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuannvm/taskpilot/internal/cli"
)

func main() {
	// Create a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

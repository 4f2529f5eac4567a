package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abhisek/orbit/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bennypowers.dev/dtsc/internal/cli"
	"bennypowers.dev/dtsc/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

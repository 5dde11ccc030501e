package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-mod.ewintr.nl/ytsum/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand(os.LookupEnv).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the kakeibo command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kakeibo/backend/config"
	"github.com/kakeibo/backend/internal/cli"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cfg.Client).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// Command codeexplainer-admin applies schemas, seeds demo data and issues tokens
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeexplainer/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("admin command failed")
		stop()
		os.Exit(1)
	}
}

// Package main is the entry point for the gtodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pkt.systems/pslog"

	"gtodo/internal/backend/graphql"
	"gtodo/internal/cli"
	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/credential"
	"gtodo/internal/remote"
	"gtodo/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Quiet by default; --debug swaps in a debug-level logger.
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.ErrorLevel}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	factory := func(cfg *config.Config, store credential.Reader) service.Service {
		return graphql.New(cfg.Endpoint, store, remote.WithTimeout(cfg.Timeout), remote.WithAuthScheme(cfg.AuthScheme))
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// Package main starts the back-office operator CLI.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/backoffice/internal/cli"
	entrypoint "github.com/louisbranch/backoffice/internal/platform/cmd"
)

func main() {
	log.SetPrefix("[BACKOFFICECTL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCLI, func(ctx context.Context) error {
		return cli.NewRootCmd().ExecuteContext(ctx)
	}, entrypoint.Quiet())
	if err != nil {
		stop()
		os.Exit(1)
	}
}

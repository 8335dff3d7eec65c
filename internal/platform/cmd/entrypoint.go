// Package cmd holds the startup plumbing shared by the console and the CLI:
// environment loading, flag parsing and the telemetry-wrapped run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/backoffice/internal/platform/config"
	"github.com/louisbranch/backoffice/internal/platform/otel"
)

// Service names reported as the telemetry service.name.
const (
	ServiceBackoffice = "backoffice"
	ServiceCLI        = "backofficectl"
)

const defaultShutdownTimeout = 5 * time.Second

// ParseConfig loads process environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseConfigWithLookup loads cfg from environment only, ignoring the
// process environment.
func ParseConfigWithLookup[T any](cfg *T, environment map[string]string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if environment == nil {
		environment = map[string]string{}
	}
	return config.ParseEnvWithLookup(cfg, environment)
}

// ParseArgs parses args into fs; flags override environment values already
// bound as flag defaults.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

type runSettings struct {
	shutdownTimeout time.Duration
	quiet           bool
}

// RunOption adjusts RunWithTelemetry.
type RunOption func(*runSettings)

// WithShutdownTimeout bounds the span flush on exit.
func WithShutdownTimeout(d time.Duration) RunOption {
	return func(s *runSettings) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// Quiet suppresses the start and shutdown log lines, for terminal commands
// whose output is the product.
func Quiet() RunOption {
	return func(s *runSettings) { s.quiet = true }
}

// RunWithTelemetry sets up tracing for service, runs fn and flushes spans
// once fn returns.
func RunWithTelemetry(ctx context.Context, service string, fn func(context.Context) error, opts ...RunOption) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if fn == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	settings := runSettings{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&settings)
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), settings.shutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil && !settings.quiet {
			log.Printf("%s: flush traces: %v", service, err)
		}
	}()
	if !settings.quiet {
		log.Printf("%s starting", service)
	}
	return fn(ctx)
}

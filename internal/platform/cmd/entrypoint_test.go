package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"CMD_TEST_MODE" envDefault:"server"`
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("CMD_TEST_MODE", "env-mode")

	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "mode")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("Address = %q, want flag value", cfg.Address)
	}
	if cfg.Mode != "env-mode" {
		t.Fatalf("Mode = %q, want env value", cfg.Mode)
	}
}

func TestParseConfigWithLookupIgnoresProcessEnv(t *testing.T) {
	t.Setenv("CMD_TEST_MODE", "process-mode")

	cfg := testConfig{}
	if err := ParseConfigWithLookup(&cfg, map[string]string{"CMD_TEST_ADDRESS": "lookup:1"}); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Address != "lookup:1" || cfg.Mode != "server" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRejectsMissingInputs(t *testing.T) {
	var nilCfg *testConfig
	if err := ParseConfig(nilCfg); err == nil {
		t.Fatal("expected nil config error")
	}
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected nil parser error")
	}
	if err := RunWithTelemetry(context.Background(), " ", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceBackoffice, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("BACKOFFICE_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	got := RunWithTelemetry(context.Background(), ServiceCLI, func(context.Context) error { return want }, WithShutdownTimeout(time.Second))
	if !errors.Is(got, want) {
		t.Fatalf("err = %v, want %v", got, want)
	}
}

func TestQuietSuppressesStartLog(t *testing.T) {
	t.Setenv("BACKOFFICE_OTEL_ENDPOINT", "")
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	if err := RunWithTelemetry(context.Background(), ServiceCLI, func(context.Context) error { return nil }, Quiet()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("quiet run logged %q", buf.String())
	}

	if err := RunWithTelemetry(context.Background(), ServiceBackoffice, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "backoffice starting") {
		t.Fatalf("log = %q", buf.String())
	}
}

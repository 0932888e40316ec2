package cmd

import (
	"context"
	"flag"
	"testing"
)

func TestRunWithTelemetryRequiresServiceName(t *testing.T) {
	t.Parallel()

	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestRunWithTelemetryRequiresRunFunc(t *testing.T) {
	t.Parallel()

	if err := RunWithTelemetry(context.Background(), "server", nil); err == nil {
		t.Fatal("expected error for nil run function")
	}
}

func TestRunWithTelemetryExecutesRun(t *testing.T) {
	t.Setenv("LIFELINES_OTEL_ENDPOINT", "")

	ran := false
	err := RunWithTelemetry(context.Background(), "server", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run with telemetry: %v", err)
	}
	if !ran {
		t.Fatal("expected run function to execute")
	}
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	port := fs.Int("port", 0, "")
	if err := ParseArgs(fs, []string{"-port", "8088"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if *port != 8088 {
		t.Fatalf("expected port 8088, got %d", *port)
	}
}

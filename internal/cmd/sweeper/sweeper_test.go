package sweeper

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("sweeper", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Interval != time.Minute {
		t.Fatalf("expected default interval, got %v", cfg.Interval)
	}
	if cfg.DBPath != "lifelines.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigFlagOverride(t *testing.T) {
	fs := flag.NewFlagSet("sweeper", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-interval", "30s"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Interval != 30*time.Second {
		t.Fatalf("expected flag interval, got %v", cfg.Interval)
	}
}

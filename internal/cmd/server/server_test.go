package server

import (
	"bytes"
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("LIFELINES_JWT_KEY", "test-key")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "lifelines.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.JWTIssuer != "lifelines" {
		t.Fatalf("expected default issuer, got %q", cfg.JWTIssuer)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("LIFELINES_JWT_KEY", "test-key")
	t.Setenv("LIFELINES_ADDR", ":9090")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/test.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigRequiresJWTKey(t *testing.T) {
	t.Setenv("LIFELINES_JWT_KEY", "")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error without a JWT key")
	}
}

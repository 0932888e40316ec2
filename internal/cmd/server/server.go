// Package server parses server flags and launches the LifeLines web process.
package server

import (
	"context"
	"flag"
	"fmt"

	"github.com/parishlabs/lifelines/internal/app"
	entrypoint "github.com/parishlabs/lifelines/internal/platform/cmd"
)

// Config holds server command configuration.
type Config struct {
	Addr          string `env:"LIFELINES_ADDR" envDefault:":8080"`
	DBPath        string `env:"LIFELINES_DB_PATH" envDefault:"lifelines.db"`
	JWTIssuer     string `env:"LIFELINES_JWT_ISSUER" envDefault:"lifelines"`
	JWTKey        string `env:"LIFELINES_JWT_KEY"`
	WebhookSecret string `env:"LIFELINES_WEBHOOK_SECRET"`
	SweepSecret   string `env:"LIFELINES_SWEEP_SECRET"`
	SMTPAddr      string `env:"LIFELINES_SMTP_ADDR"`
	SMTPFrom      string `env:"LIFELINES_SMTP_FROM"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.JWTKey == "" {
		return Config{}, fmt.Errorf("LIFELINES_JWT_KEY is required")
	}
	return cfg, nil
}

// Run starts the LifeLines HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		server, err := app.NewServer(app.Options{
			Addr:     cfg.Addr,
			DBPath:   cfg.DBPath,
			Issuer:   cfg.JWTIssuer,
			JWTKey:   cfg.JWTKey,
			Webhook:  cfg.WebhookSecret,
			Sweep:    cfg.SweepSecret,
			SMTPAddr: cfg.SMTPAddr,
			SMTPFrom: cfg.SMTPFrom,
		})
		if err != nil {
			return err
		}
		defer server.Close()
		return server.ListenAndServe(ctx)
	})
}

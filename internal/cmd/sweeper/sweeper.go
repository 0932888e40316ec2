// Package sweeper parses sweeper flags and launches the background worker.
package sweeper

import (
	"context"
	"flag"
	"time"

	"github.com/parishlabs/lifelines/internal/app"
	entrypoint "github.com/parishlabs/lifelines/internal/platform/cmd"
)

// Config holds sweeper command configuration.
type Config struct {
	DBPath   string        `env:"LIFELINES_DB_PATH" envDefault:"lifelines.db"`
	Interval time.Duration `env:"LIFELINES_SWEEP_INTERVAL" envDefault:"1m"`
	SMTPAddr string        `env:"LIFELINES_SMTP_ADDR"`
	SMTPFrom string        `env:"LIFELINES_SMTP_FROM"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "How often to re-evaluate submitted requests")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the sweep worker.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSweeper, func(ctx context.Context) error {
		return app.RunSweeper(ctx, app.SweeperOptions{
			DBPath:   cfg.DBPath,
			Interval: cfg.Interval,
			SMTPAddr: cfg.SMTPAddr,
			SMTPFrom: cfg.SMTPFrom,
		})
	})
}

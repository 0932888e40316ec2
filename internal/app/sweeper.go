package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/parishlabs/lifelines/internal/formation"
	"github.com/parishlabs/lifelines/internal/notify"
	"github.com/parishlabs/lifelines/internal/storage/sqlite"
)

// SweeperOptions configures the background sweep worker.
type SweeperOptions struct {
	DBPath   string
	Interval time.Duration

	SMTPAddr string
	SMTPFrom string
}

// RunSweeper re-evaluates submitted formation requests on a fixed interval
// until the context ends. One tick runs immediately on startup so restarts
// pick up stranded requests without waiting.
func RunSweeper(ctx context.Context, opts SweeperOptions) error {
	if opts.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	store, err := sqlite.Open(opts.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	var mailer notify.Mailer
	if opts.SMTPAddr != "" {
		mailer = &notify.SMTPMailer{Addr: opts.SMTPAddr, From: opts.SMTPFrom}
	} else {
		mailer = &notify.LogMailer{}
	}
	gateway := notify.NewGateway(mailer, store, log.Default())
	service := formation.NewService(store, store, store, gateway)

	sweep := func() {
		results, err := service.SweepPending(ctx)
		if err != nil {
			log.Printf("sweeper: sweep failed: %v", err)
			return
		}
		acted := 0
		for _, result := range results {
			if result.Outcome == formation.SweepOutcomeApproved || result.Outcome == formation.SweepOutcomeRejected {
				acted++
				log.Printf("sweeper: request %s %s (%s)", result.RequestID, result.Outcome, result.Reason)
			}
		}
		log.Printf("sweeper: evaluated %d submitted requests, acted on %d", len(results), acted)
	}

	sweep()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sweep()
		}
	}
}

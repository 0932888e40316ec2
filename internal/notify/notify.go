// Package notify delivers best-effort email notifications and records every
// attempt in the outbox for support visibility.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/parishlabs/lifelines/internal/formation"
	"github.com/parishlabs/lifelines/internal/platform/id"
	"github.com/parishlabs/lifelines/internal/storage"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Attempt kinds recorded in the outbox.
const (
	KindLeaderWelcome = "leader_welcome"

	outcomeSent   = "sent"
	outcomeFailed = "failed"
)

// Gateway renders and sends notifications. Every send, successful or not, is
// recorded as an email attempt.
type Gateway struct {
	mailer   Mailer
	attempts storage.EmailAttemptStore

	logger *log.Logger
	clock  func() time.Time
	newID  func() (string, error)
}

// NewGateway builds the notification gateway. The attempt store may be nil,
// in which case outcomes are only logged.
func NewGateway(mailer Mailer, attempts storage.EmailAttemptStore, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{
		mailer:   mailer,
		attempts: attempts,
		logger:   logger,
		clock:    time.Now,
		newID:    id.NewID,
	}
}

// SendLeaderWelcome emails a new or reinstated leader about their group. The
// returned error reports delivery failure; callers treat it as best-effort.
func (g *Gateway) SendLeaderWelcome(ctx context.Context, welcome formation.LeaderWelcome) error {
	msg, err := renderLeaderWelcome(welcome)
	if err != nil {
		g.record(ctx, welcome.Email, KindLeaderWelcome, "", err)
		return err
	}

	sendErr := g.mailer.Send(ctx, msg)
	g.record(ctx, welcome.Email, KindLeaderWelcome, msg.Subject, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send leader welcome: %w", sendErr)
	}
	return nil
}

// record writes one outbox row. Recording failures are logged and swallowed;
// the outbox must never make delivery less reliable.
func (g *Gateway) record(ctx context.Context, recipient string, kind string, subject string, sendErr error) {
	if g.attempts == nil {
		return
	}
	attemptID, err := g.newID()
	if err != nil {
		g.logger.Printf("notify: generate attempt id: %v", err)
		return
	}
	attempt := storage.EmailAttemptRecord{
		ID:        attemptID,
		Recipient: recipient,
		Kind:      kind,
		Subject:   subject,
		Outcome:   outcomeSent,
		CreatedAt: g.clock().UTC(),
	}
	if sendErr != nil {
		attempt.Outcome = outcomeFailed
		attempt.LastError = sendErr.Error()
	}
	if err := g.attempts.RecordEmailAttempt(ctx, attempt); err != nil {
		g.logger.Printf("notify: record email attempt for %s: %v", recipient, err)
	}
}

var _ formation.Notifier = (*Gateway)(nil)

package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port of the relay
	From string
	Auth smtp.Auth // nil for an unauthenticated relay
}

// Send delivers one message. The context is honored up front; net/smtp has
// no per-dial context support.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Addr) == "" || strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("smtp mailer is not configured")
	}

	var payload strings.Builder
	fmt.Fprintf(&payload, "From: %s\r\n", m.From)
	fmt.Fprintf(&payload, "To: %s\r\n", msg.To)
	fmt.Fprintf(&payload, "Subject: %s\r\n", msg.Subject)
	payload.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	payload.WriteString(msg.Body)

	if err := smtp.SendMail(m.Addr, m.Auth, m.From, []string{msg.To}, []byte(payload.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It backs
// local development and any deployment without an SMTP relay.
type LogMailer struct {
	Logger *log.Logger
}

// Send logs the message and reports success.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("notify: would send %q to %s", msg.Subject, msg.To)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/parishlabs/lifelines/internal/storage"
)

// RecordEmailAttempt persists one outbound notification attempt.
func (s *Store) RecordEmailAttempt(ctx context.Context, record storage.EmailAttemptRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("email attempt id is required")
	}
	if strings.TrimSpace(record.Recipient) == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(record.Kind) == "" {
		return fmt.Errorf("kind is required")
	}
	if strings.TrimSpace(record.Outcome) == "" {
		return fmt.Errorf("outcome is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO email_attempts (id, recipient, kind, subject, outcome, last_error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.Recipient,
		record.Kind,
		strings.TrimSpace(record.Subject),
		record.Outcome,
		strings.TrimSpace(record.LastError),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record email attempt: %w", err)
	}
	return nil
}

// ListEmailAttempts lists newest-first attempt records.
func (s *Store) ListEmailAttempts(ctx context.Context, limit int) ([]storage.EmailAttemptRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, recipient, kind, subject, outcome, last_error, created_at
FROM email_attempts
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list email attempts: %w", err)
	}
	defer rows.Close()

	records := make([]storage.EmailAttemptRecord, 0, limit)
	for rows.Next() {
		var record storage.EmailAttemptRecord
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.Recipient,
			&record.Kind,
			&record.Subject,
			&record.Outcome,
			&record.LastError,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan email attempt: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email attempts: %w", err)
	}
	return records, nil
}

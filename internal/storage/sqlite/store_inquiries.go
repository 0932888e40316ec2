package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/parishlabs/lifelines/internal/storage"
)

// PutInquiry appends one visitor inquiry row.
func (s *Store) PutInquiry(ctx context.Context, record storage.InquiryRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("inquiry id is required")
	}
	if strings.TrimSpace(record.LifeLineID) == "" {
		return fmt.Errorf("lifeline id is required")
	}
	if strings.TrimSpace(record.Email) == "" {
		return fmt.Errorf("email is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO inquiries (id, life_line_id, name, email, message, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.LifeLineID,
		strings.TrimSpace(record.Name),
		record.Email,
		strings.TrimSpace(record.Message),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put inquiry: %w", err)
	}
	return nil
}

// ListInquiriesByLifeLine lists inquiries for one group, newest first.
func (s *Store) ListInquiriesByLifeLine(ctx context.Context, lifeLineID string) ([]storage.InquiryRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	lifeLineID = strings.TrimSpace(lifeLineID)
	if lifeLineID == "" {
		return nil, fmt.Errorf("lifeline id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, life_line_id, name, email, message, created_at
FROM inquiries
WHERE life_line_id = ?
ORDER BY created_at DESC, id DESC
`, lifeLineID)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var records []storage.InquiryRecord
	for rows.Next() {
		var record storage.InquiryRecord
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.LifeLineID,
			&record.Name,
			&record.Email,
			&record.Message,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inquiries: %w", err)
	}
	return records, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/parishlabs/lifelines/internal/storage"
)

const lifeLineColumns = `
id, title, description, frequency, meeting_day, meeting_time,
group_type, target_stage, status, leader_id, formation_request_id,
created_at, updated_at`

// PutLifeLine inserts or fully replaces one group row.
func (s *Store) PutLifeLine(ctx context.Context, record storage.LifeLineRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("lifeline id is required")
	}
	if strings.TrimSpace(record.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(record.LeaderID) == "" {
		return fmt.Errorf("leader id is required")
	}
	if strings.TrimSpace(record.Status) == "" {
		return fmt.Errorf("status is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO lifelines (
	id, title, description, frequency, meeting_day, meeting_time,
	group_type, target_stage, status, leader_id, formation_request_id,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	description = excluded.description,
	frequency = excluded.frequency,
	meeting_day = excluded.meeting_day,
	meeting_time = excluded.meeting_time,
	group_type = excluded.group_type,
	target_stage = excluded.target_stage,
	status = excluded.status,
	leader_id = excluded.leader_id,
	formation_request_id = excluded.formation_request_id,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Title,
		strings.TrimSpace(record.Description),
		record.Frequency,
		record.MeetingDay,
		record.MeetingTime,
		record.GroupType,
		record.TargetStage,
		record.Status,
		record.LeaderID,
		strings.TrimSpace(record.FormationRequestID),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put lifeline: %w", err)
	}
	return nil
}

// GetLifeLine fetches one group by ID.
func (s *Store) GetLifeLine(ctx context.Context, lifeLineID string) (storage.LifeLineRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.LifeLineRecord{}, err
	}
	lifeLineID = strings.TrimSpace(lifeLineID)
	if lifeLineID == "" {
		return storage.LifeLineRecord{}, fmt.Errorf("lifeline id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+lifeLineColumns+`
FROM lifelines
WHERE id = ?
`, lifeLineID)
	return scanLifeLine(row, "get lifeline")
}

// GetLifeLineByFormationRequest fetches the group materialized from one request.
func (s *Store) GetLifeLineByFormationRequest(ctx context.Context, requestID string) (storage.LifeLineRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.LifeLineRecord{}, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.LifeLineRecord{}, fmt.Errorf("formation request id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+lifeLineColumns+`
FROM lifelines
WHERE formation_request_id = ?
`, requestID)
	return scanLifeLine(row, "get lifeline by formation request")
}

// ListPublishedLifeLines lists published groups matching the filter.
func (s *Store) ListPublishedLifeLines(ctx context.Context, filter storage.LifeLineFilter) ([]storage.LifeLineRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	query := `
SELECT ` + lifeLineColumns + `
FROM lifelines
WHERE status = 'published'`
	args := []any{}
	if day := strings.TrimSpace(filter.MeetingDay); day != "" {
		query += " AND meeting_day = ?"
		args = append(args, day)
	}
	if freq := strings.TrimSpace(filter.Frequency); freq != "" {
		query += " AND frequency = ?"
		args = append(args, freq)
	}
	if groupType := strings.TrimSpace(filter.GroupType); groupType != "" {
		query += " AND group_type = ?"
		args = append(args, groupType)
	}
	query += "\nORDER BY title, id"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list published lifelines: %w", err)
	}
	defer rows.Close()

	var records []storage.LifeLineRecord
	for rows.Next() {
		record, err := scanLifeLine(rows, "scan lifeline")
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lifelines: %w", err)
	}
	return records, nil
}

func scanLifeLine(row rowScanner, op string) (storage.LifeLineRecord, error) {
	var record storage.LifeLineRecord
	var createdAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.Title,
		&record.Description,
		&record.Frequency,
		&record.MeetingDay,
		&record.MeetingTime,
		&record.GroupType,
		&record.TargetStage,
		&record.Status,
		&record.LeaderID,
		&record.FormationRequestID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.LifeLineRecord{}, storage.ErrNotFound
		}
		return storage.LifeLineRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/parishlabs/lifelines/internal/storage"
)

const formationRequestColumns = `
id, title, leader_name, leader_email, leader_phone, description,
frequency, meeting_day, meeting_time, group_type, target_stage,
status, life_line_created, admin_note, auto_approval_scheduled,
created_at, updated_at, resolved_at`

// PutFormationRequest inserts or fully replaces one formation request row.
func (s *Store) PutFormationRequest(ctx context.Context, record storage.FormationRequestRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("formation request id is required")
	}
	if strings.TrimSpace(record.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(record.LeaderEmail) == "" {
		return fmt.Errorf("leader email is required")
	}
	if strings.TrimSpace(record.Status) == "" {
		return fmt.Errorf("status is required")
	}

	var autoApproval sql.NullInt64
	if record.AutoApprovalScheduled != nil {
		autoApproval = sql.NullInt64{Int64: toMillis(*record.AutoApprovalScheduled), Valid: true}
	}
	var resolvedAt sql.NullInt64
	if record.ResolvedAt != nil {
		resolvedAt = sql.NullInt64{Int64: toMillis(*record.ResolvedAt), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO formation_requests (
	id, title, leader_name, leader_email, leader_phone, description,
	frequency, meeting_day, meeting_time, group_type, target_stage,
	status, life_line_created, admin_note, auto_approval_scheduled,
	created_at, updated_at, resolved_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	leader_name = excluded.leader_name,
	leader_email = excluded.leader_email,
	leader_phone = excluded.leader_phone,
	description = excluded.description,
	frequency = excluded.frequency,
	meeting_day = excluded.meeting_day,
	meeting_time = excluded.meeting_time,
	group_type = excluded.group_type,
	target_stage = excluded.target_stage,
	status = excluded.status,
	life_line_created = excluded.life_line_created,
	admin_note = excluded.admin_note,
	auto_approval_scheduled = excluded.auto_approval_scheduled,
	updated_at = excluded.updated_at,
	resolved_at = excluded.resolved_at
`,
		record.ID,
		record.Title,
		strings.TrimSpace(record.LeaderName),
		record.LeaderEmail,
		strings.TrimSpace(record.LeaderPhone),
		strings.TrimSpace(record.Description),
		record.Frequency,
		record.MeetingDay,
		record.MeetingTime,
		record.GroupType,
		record.TargetStage,
		record.Status,
		boolToInt(record.LifeLineCreated),
		strings.TrimSpace(record.AdminNote),
		autoApproval,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("put formation request: %w", err)
	}
	return nil
}

// GetFormationRequest fetches one formation request by ID.
func (s *Store) GetFormationRequest(ctx context.Context, requestID string) (storage.FormationRequestRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.FormationRequestRecord{}, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.FormationRequestRecord{}, fmt.Errorf("formation request id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+formationRequestColumns+`
FROM formation_requests
WHERE id = ?
`, requestID)

	record, err := scanFormationRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.FormationRequestRecord{}, storage.ErrNotFound
		}
		return storage.FormationRequestRecord{}, fmt.Errorf("get formation request: %w", err)
	}
	return record, nil
}

// ListFormationRequestsByStatus lists requests in one status, oldest first.
func (s *Store) ListFormationRequestsByStatus(ctx context.Context, status string) ([]storage.FormationRequestRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("status is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+formationRequestColumns+`
FROM formation_requests
WHERE status = ?
ORDER BY created_at, id
`, status)
	if err != nil {
		return nil, fmt.Errorf("list formation requests: %w", err)
	}
	defer rows.Close()

	var records []storage.FormationRequestRecord
	for rows.Next() {
		record, err := scanFormationRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan formation request: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formation requests: %w", err)
	}
	return records, nil
}

// ResolveFormationRequest conditionally moves one request between statuses.
func (s *Store) ResolveFormationRequest(ctx context.Context, requestID string, fromStatus string, toStatus string, adminNote string, resolvedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return fmt.Errorf("formation request id is required")
	}
	if strings.TrimSpace(fromStatus) == "" || strings.TrimSpace(toStatus) == "" {
		return fmt.Errorf("from and to statuses are required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE formation_requests
SET status = ?, admin_note = CASE WHEN ? <> '' THEN ? ELSE admin_note END,
	resolved_at = ?, updated_at = ?
WHERE id = ? AND status = ?
`, toStatus, strings.TrimSpace(adminNote), strings.TrimSpace(adminNote),
		toMillis(resolvedAt), toMillis(resolvedAt), requestID, fromStatus)
	if err != nil {
		return fmt.Errorf("resolve formation request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve formation request rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetFormationRequest(ctx, requestID); errors.Is(getErr, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return storage.ErrConflict
	}
	return nil
}

// ApproveFormationRequest commits the approval unit of work: status CAS,
// LifeLine insert, and the life_line_created flag, in one transaction.
func (s *Store) ApproveFormationRequest(ctx context.Context, requestID string, lifeline storage.LifeLineRecord, resolvedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return fmt.Errorf("formation request id is required")
	}
	if strings.TrimSpace(lifeline.ID) == "" {
		return fmt.Errorf("lifeline id is required")
	}
	if strings.TrimSpace(lifeline.LeaderID) == "" {
		return fmt.Errorf("lifeline leader id is required")
	}
	if strings.TrimSpace(lifeline.FormationRequestID) != requestID {
		return fmt.Errorf("lifeline formation request id must match request id")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE formation_requests
SET status = 'approved', life_line_created = 1, resolved_at = ?, updated_at = ?
WHERE id = ? AND status = 'submitted'
`, toMillis(resolvedAt), toMillis(resolvedAt), requestID)
	if err != nil {
		return fmt.Errorf("approve formation request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve formation request rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetFormationRequest(ctx, requestID); errors.Is(getErr, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return storage.ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO lifelines (
	id, title, description, frequency, meeting_day, meeting_time,
	group_type, target_stage, status, leader_id, formation_request_id,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		lifeline.ID,
		lifeline.Title,
		strings.TrimSpace(lifeline.Description),
		lifeline.Frequency,
		lifeline.MeetingDay,
		lifeline.MeetingTime,
		lifeline.GroupType,
		lifeline.TargetStage,
		lifeline.Status,
		lifeline.LeaderID,
		lifeline.FormationRequestID,
		toMillis(lifeline.CreatedAt),
		toMillis(lifeline.UpdatedAt),
	); err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert lifeline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFormationRequest(row rowScanner) (storage.FormationRequestRecord, error) {
	var record storage.FormationRequestRecord
	var lifeLineCreated int
	var autoApproval, resolvedAt sql.NullInt64
	var createdAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.Title,
		&record.LeaderName,
		&record.LeaderEmail,
		&record.LeaderPhone,
		&record.Description,
		&record.Frequency,
		&record.MeetingDay,
		&record.MeetingTime,
		&record.GroupType,
		&record.TargetStage,
		&record.Status,
		&lifeLineCreated,
		&record.AdminNote,
		&autoApproval,
		&createdAt,
		&updatedAt,
		&resolvedAt,
	); err != nil {
		return storage.FormationRequestRecord{}, err
	}
	record.LifeLineCreated = lifeLineCreated != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if autoApproval.Valid {
		at := fromMillis(autoApproval.Int64)
		record.AutoApprovalScheduled = &at
	}
	if resolvedAt.Valid {
		at := fromMillis(resolvedAt.Int64)
		record.ResolvedAt = &at
	}
	return record, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

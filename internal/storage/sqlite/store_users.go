package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/parishlabs/lifelines/internal/storage"
)

const userColumns = `id, email, display_name, role, password_hash, active, created_at, updated_at`

// PutUser inserts or fully replaces one user row.
func (s *Store) PutUser(ctx context.Context, record storage.UserRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(record.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(record.Role) == "" {
		return fmt.Errorf("role is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, display_name, role, password_hash, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	email = excluded.email,
	display_name = excluded.display_name,
	role = excluded.role,
	password_hash = excluded.password_hash,
	active = excluded.active,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Email,
		strings.TrimSpace(record.DisplayName),
		record.Role,
		record.PasswordHash,
		boolToInt(record.Active),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches one user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (storage.UserRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.UserRecord{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.UserRecord{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = ?
`, userID)
	return scanUser(row, "get user")
}

// GetUserByEmail fetches one user by the unique email key.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.UserRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.UserRecord{}, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return storage.UserRecord{}, fmt.Errorf("email is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = ?
`, email)
	return scanUser(row, "get user by email")
}

// UpsertLeaderByEmail provisions or upgrades the leader account in one
// statement. An existing account keeps its id, display name, and password
// hash; only role and active are upgraded.
func (s *Store) UpsertLeaderByEmail(ctx context.Context, candidate storage.UserRecord) (storage.UserRecord, bool, error) {
	if err := s.ready(ctx); err != nil {
		return storage.UserRecord{}, false, err
	}
	if strings.TrimSpace(candidate.ID) == "" {
		return storage.UserRecord{}, false, fmt.Errorf("candidate user id is required")
	}
	if strings.TrimSpace(candidate.Email) == "" {
		return storage.UserRecord{}, false, fmt.Errorf("candidate email is required")
	}
	if strings.TrimSpace(candidate.Role) == "" {
		return storage.UserRecord{}, false, fmt.Errorf("candidate role is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, email, display_name, role, password_hash, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT(email) DO UPDATE SET
	role = excluded.role,
	active = 1,
	updated_at = excluded.updated_at
`,
		candidate.ID,
		candidate.Email,
		strings.TrimSpace(candidate.DisplayName),
		candidate.Role,
		candidate.PasswordHash,
		toMillis(candidate.CreatedAt),
		toMillis(candidate.UpdatedAt),
	)
	if err != nil {
		return storage.UserRecord{}, false, fmt.Errorf("upsert leader by email: %w", err)
	}

	resolved, err := s.GetUserByEmail(ctx, candidate.Email)
	if err != nil {
		return storage.UserRecord{}, false, err
	}
	return resolved, resolved.ID == candidate.ID, nil
}

func scanUser(row rowScanner, op string) (storage.UserRecord, error) {
	var record storage.UserRecord
	var active int
	var createdAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.Email,
		&record.DisplayName,
		&record.Role,
		&record.PasswordHash,
		&active,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	record.Active = active != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/parishlabs/lifelines/internal/storage"
)

// UpsertVote writes one vote per (request, voter); re-votes overwrite.
func (s *Store) UpsertVote(ctx context.Context, record storage.VoteRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.RequestID) == "" {
		return fmt.Errorf("request id is required")
	}
	if strings.TrimSpace(record.VoterID) == "" {
		return fmt.Errorf("voter id is required")
	}
	if strings.TrimSpace(record.Value) == "" {
		return fmt.Errorf("vote value is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO formation_votes (request_id, voter_id, value, comment, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(request_id, voter_id) DO UPDATE SET
	value = excluded.value,
	comment = excluded.comment,
	updated_at = excluded.updated_at
`,
		record.RequestID,
		record.VoterID,
		record.Value,
		strings.TrimSpace(record.Comment),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	return nil
}

// TallyVotes aggregates current votes for one request, one row per voter.
func (s *Store) TallyVotes(ctx context.Context, requestID string) (storage.TallyRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TallyRecord{}, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.TallyRecord{}, fmt.Errorf("request id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT voter_id, value
FROM formation_votes
WHERE request_id = ?
ORDER BY voter_id
`, requestID)
	if err != nil {
		return storage.TallyRecord{}, fmt.Errorf("tally votes: %w", err)
	}
	defer rows.Close()

	var tally storage.TallyRecord
	for rows.Next() {
		var voterID, value string
		if err := rows.Scan(&voterID, &value); err != nil {
			return storage.TallyRecord{}, fmt.Errorf("scan vote: %w", err)
		}
		tally.Voters = append(tally.Voters, voterID)
		switch value {
		case "approve":
			tally.Approve++
		case "object":
			tally.Object++
		case "discuss":
			tally.Discuss++
		case "pass":
			tally.Pass++
		}
	}
	if err := rows.Err(); err != nil {
		return storage.TallyRecord{}, fmt.Errorf("iterate votes: %w", err)
	}
	return tally, nil
}

// ListVotesByRequest lists the current ledger entries for one request.
func (s *Store) ListVotesByRequest(ctx context.Context, requestID string) ([]storage.VoteRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, fmt.Errorf("request id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT request_id, voter_id, value, comment, created_at, updated_at
FROM formation_votes
WHERE request_id = ?
ORDER BY updated_at, voter_id
`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var records []storage.VoteRecord
	for rows.Next() {
		var record storage.VoteRecord
		var createdAt, updatedAt int64
		if err := rows.Scan(
			&record.RequestID,
			&record.VoterID,
			&record.Value,
			&record.Comment,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vote row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vote rows: %w", err)
	}
	return records, nil
}

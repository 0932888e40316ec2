// Package storage defines the persistence boundary for LifeLines records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates a requested state transition is invalid.
var ErrConflict = errors.New("record conflict")

// FormationRequestRecord stores a persisted group formation request.
type FormationRequestRecord struct {
	ID          string
	Title       string
	LeaderName  string
	LeaderEmail string
	LeaderPhone string
	Description string

	Frequency   string
	MeetingDay  string
	MeetingTime string
	GroupType   string
	TargetStage string

	Status          string
	LifeLineCreated bool
	AdminNote       string

	AutoApprovalScheduled *time.Time

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// VoteRecord stores one support-team vote. At most one row exists per
// (request, voter) pair; writes are upserts.
type VoteRecord struct {
	RequestID string
	VoterID   string
	Value     string
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TallyRecord aggregates current votes for one formation request.
type TallyRecord struct {
	Approve int
	Object  int
	Discuss int
	Pass    int
	Voters  []string
}

// UserRecord stores a persisted user identity.
type UserRecord struct {
	ID           string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LifeLineRecord stores a persisted small group.
type LifeLineRecord struct {
	ID          string
	Title       string
	Description string

	Frequency   string
	MeetingDay  string
	MeetingTime string
	GroupType   string
	TargetStage string

	Status             string
	LeaderID           string
	FormationRequestID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LifeLineFilter narrows published group listings.
type LifeLineFilter struct {
	MeetingDay string
	Frequency  string
	GroupType  string
}

// InquiryRecord stores one visitor interest inquiry for a group.
type InquiryRecord struct {
	ID         string
	LifeLineID string
	Name       string
	Email      string
	Message    string
	CreatedAt  time.Time
}

// EmailAttemptRecord stores one outbound notification attempt for support
// visibility. Dispatch outcomes are recorded whether or not the send worked.
type EmailAttemptRecord struct {
	ID        string
	Recipient string
	Kind      string
	Subject   string
	Outcome   string
	LastError string
	CreatedAt time.Time
}

// RequestStore persists formation requests and owns the status transitions.
type RequestStore interface {
	PutFormationRequest(ctx context.Context, record FormationRequestRecord) error
	GetFormationRequest(ctx context.Context, requestID string) (FormationRequestRecord, error)
	ListFormationRequestsByStatus(ctx context.Context, status string) ([]FormationRequestRecord, error)

	// ResolveFormationRequest moves one request from fromStatus to toStatus
	// with a single conditional update. It returns ErrConflict when the
	// request is no longer in fromStatus (another evaluation won the race).
	ResolveFormationRequest(ctx context.Context, requestID string, fromStatus string, toStatus string, adminNote string, resolvedAt time.Time) error

	// ApproveFormationRequest atomically transitions one SUBMITTED request to
	// APPROVED, inserts its LifeLine, and flags life_line_created, all in one
	// transaction. A lost status race or an existing LifeLine for the request
	// returns ErrConflict with nothing written.
	ApproveFormationRequest(ctx context.Context, requestID string, lifeline LifeLineRecord, resolvedAt time.Time) error
}

// VoteStore persists the vote ledger.
type VoteStore interface {
	UpsertVote(ctx context.Context, record VoteRecord) error
	TallyVotes(ctx context.Context, requestID string) (TallyRecord, error)
	ListVotesByRequest(ctx context.Context, requestID string) ([]VoteRecord, error)
}

// UserStore persists user identities keyed by email.
type UserStore interface {
	PutUser(ctx context.Context, record UserRecord) error
	GetUser(ctx context.Context, userID string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)

	// UpsertLeaderByEmail resolves the leader account for candidate.Email in
	// one atomic statement: a missing account is created from candidate, an
	// existing one keeps its identity and credentials and only has its role
	// and active flag upgraded. The final row is returned along with whether
	// a new account was created.
	UpsertLeaderByEmail(ctx context.Context, candidate UserRecord) (UserRecord, bool, error)
}

// LifeLineStore persists small groups.
type LifeLineStore interface {
	PutLifeLine(ctx context.Context, record LifeLineRecord) error
	GetLifeLine(ctx context.Context, lifeLineID string) (LifeLineRecord, error)
	GetLifeLineByFormationRequest(ctx context.Context, requestID string) (LifeLineRecord, error)
	ListPublishedLifeLines(ctx context.Context, filter LifeLineFilter) ([]LifeLineRecord, error)
}

// InquiryStore persists visitor interest inquiries.
type InquiryStore interface {
	PutInquiry(ctx context.Context, record InquiryRecord) error
	ListInquiriesByLifeLine(ctx context.Context, lifeLineID string) ([]InquiryRecord, error)
}

// EmailAttemptStore records outbound notification attempts.
type EmailAttemptStore interface {
	RecordEmailAttempt(ctx context.Context, record EmailAttemptRecord) error
	ListEmailAttempts(ctx context.Context, limit int) ([]EmailAttemptRecord, error)
}

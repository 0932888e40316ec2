package formation

import (
	"strings"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
)

// VoteValue is one support-team member's position on a formation request.
type VoteValue string

const (
	// VoteApprove counts toward the approval threshold.
	VoteApprove VoteValue = "approve"
	// VoteObject blocks approval and rejects the request.
	VoteObject VoteValue = "object"
	// VoteDiscuss holds approval until the concern is withdrawn.
	VoteDiscuss VoteValue = "discuss"
	// VotePass is an abstention and never counts either way.
	VotePass VoteValue = "pass"
)

var (
	// ErrVoteEmptyRequestID indicates a vote without a target request.
	ErrVoteEmptyRequestID = apperrors.New(apperrors.CodeVoteEmptyRequestID, "vote request id is required")
	// ErrVoteEmptyVoterID indicates a vote without a voter.
	ErrVoteEmptyVoterID = apperrors.New(apperrors.CodeVoteEmptyVoterID, "vote voter id is required")
	// ErrVoteInvalidValue indicates a vote value outside the closed set.
	ErrVoteInvalidValue = apperrors.New(apperrors.CodeVoteInvalidValue, "vote value is invalid")
)

// Vote is one (request, voter) row in the vote ledger. Re-votes replace it.
type Vote struct {
	RequestID string
	VoterID   string
	Value     VoteValue
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParseVoteValue validates a vote value against the closed set.
func ParseVoteValue(value string) (VoteValue, error) {
	switch VoteValue(strings.ToLower(strings.TrimSpace(value))) {
	case VoteApprove:
		return VoteApprove, nil
	case VoteObject:
		return VoteObject, nil
	case VoteDiscuss:
		return VoteDiscuss, nil
	case VotePass:
		return VotePass, nil
	default:
		return "", ErrVoteInvalidValue
	}
}

// CastVoteInput is the raw payload for one vote.
type CastVoteInput struct {
	RequestID string
	VoterID   string
	Value     string
	Comment   string
}

// NormalizeCastVoteInput trims and validates a vote payload.
func NormalizeCastVoteInput(input CastVoteInput) (CastVoteInput, VoteValue, error) {
	input.RequestID = strings.TrimSpace(input.RequestID)
	if input.RequestID == "" {
		return CastVoteInput{}, "", ErrVoteEmptyRequestID
	}
	input.VoterID = strings.TrimSpace(input.VoterID)
	if input.VoterID == "" {
		return CastVoteInput{}, "", ErrVoteEmptyVoterID
	}
	value, err := ParseVoteValue(input.Value)
	if err != nil {
		return CastVoteInput{}, "", err
	}
	input.Value = string(value)
	input.Comment = strings.TrimSpace(input.Comment)
	return input, value, nil
}

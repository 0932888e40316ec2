// Package formation implements the LifeLine formation-request workflow:
// submission, support-team voting, the auto-approval policy, and the
// approval executor that materializes a new group.
package formation

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/platform/id"
	"github.com/parishlabs/lifelines/internal/user"
)

// Status represents the lifecycle state of a formation request.
type Status string

const (
	// StatusSubmitted is the initial state; the request is open for votes.
	StatusSubmitted Status = "submitted"
	// StatusApproved is terminal; a LifeLine was materialized.
	StatusApproved Status = "approved"
	// StatusRejected is terminal; an objection was raised.
	StatusRejected Status = "rejected"
	// StatusArchived is terminal; an admin withdrew the request.
	StatusArchived Status = "archived"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusArchived
}

// ParseStatus validates a stored status string.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusSubmitted:
		return StatusSubmitted, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusArchived:
		return StatusArchived, nil
	default:
		return "", apperrors.New(apperrors.CodeRequestInvalidStatus, fmt.Sprintf("invalid request status %q", value))
	}
}

var (
	// ErrTitleEmpty indicates a missing group title.
	ErrTitleEmpty = apperrors.New(apperrors.CodeRequestTitleEmpty, "title is required")
	// ErrLeaderNameEmpty indicates a missing proposed leader name.
	ErrLeaderNameEmpty = apperrors.New(apperrors.CodeRequestLeaderNameEmpty, "leader name is required")
	// ErrLeaderEmailEmpty indicates a missing leader email.
	ErrLeaderEmailEmpty = apperrors.New(apperrors.CodeRequestLeaderEmailEmpty, "leader email is required")
	// ErrNotSubmitted indicates the request already left the submitted state.
	ErrNotSubmitted = apperrors.New(apperrors.CodeRequestNotSubmitted, "request is no longer open")
	// ErrAlreadyResolved indicates a terminal request cannot transition again.
	ErrAlreadyResolved = apperrors.New(apperrors.CodeRequestAlreadyResolved, "request is already resolved")
)

// FormationRequest is a proposal for a new LifeLine awaiting review.
type FormationRequest struct {
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

	Status          Status
	LifeLineCreated bool
	AdminNote       string

	AutoApprovalScheduled *time.Time

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// SubmitInput is the raw payload for a new formation request.
type SubmitInput struct {
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

	// AutoApprovalScheduled is informational; the policy only counts votes.
	AutoApprovalScheduled *time.Time
}

// NormalizeSubmitInput trims and validates a submission payload.
func NormalizeSubmitInput(input SubmitInput) (SubmitInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return SubmitInput{}, ErrTitleEmpty
	}
	input.LeaderName = strings.TrimSpace(input.LeaderName)
	if input.LeaderName == "" {
		return SubmitInput{}, ErrLeaderNameEmpty
	}
	email, err := user.NormalizeEmail(input.LeaderEmail)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUserEmptyEmail {
			return SubmitInput{}, ErrLeaderEmailEmpty
		}
		return SubmitInput{}, apperrors.Wrap(apperrors.CodeRequestInvalidEmail, "leader email is not valid", err)
	}
	input.LeaderEmail = email
	input.LeaderPhone = strings.TrimSpace(input.LeaderPhone)
	input.Description = strings.TrimSpace(input.Description)
	input.Frequency = strings.ToLower(strings.TrimSpace(input.Frequency))
	input.MeetingDay = strings.ToLower(strings.TrimSpace(input.MeetingDay))
	input.MeetingTime = strings.TrimSpace(input.MeetingTime)
	input.GroupType = strings.ToLower(strings.TrimSpace(input.GroupType))
	input.TargetStage = strings.ToLower(strings.TrimSpace(input.TargetStage))
	return input, nil
}

// Create builds a new submitted formation request from a normalized input.
func Create(input SubmitInput, now func() time.Time, idGenerator func() (string, error)) (FormationRequest, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input, err := NormalizeSubmitInput(input)
	if err != nil {
		return FormationRequest{}, err
	}
	requestID, err := idGenerator()
	if err != nil {
		return FormationRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	createdAt := now().UTC()
	return FormationRequest{
		ID:                    requestID,
		Title:                 input.Title,
		LeaderName:            input.LeaderName,
		LeaderEmail:           input.LeaderEmail,
		LeaderPhone:           input.LeaderPhone,
		Description:           input.Description,
		Frequency:             input.Frequency,
		MeetingDay:            input.MeetingDay,
		MeetingTime:           input.MeetingTime,
		GroupType:             input.GroupType,
		TargetStage:           input.TargetStage,
		Status:                StatusSubmitted,
		AutoApprovalScheduled: input.AutoApprovalScheduled,
		CreatedAt:             createdAt,
		UpdatedAt:             createdAt,
	}, nil
}

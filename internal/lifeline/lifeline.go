// Package lifeline manages parish small groups: the records materialized
// from approved formation requests, the public browse surface, and visitor
// inquiries.
package lifeline

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/platform/id"
)

// Status represents a group's visibility state.
type Status string

const (
	// StatusDraft is the initial state for a newly materialized group.
	StatusDraft Status = "draft"
	// StatusPublished makes the group visible in the public directory.
	StatusPublished Status = "published"
	// StatusArchived hides a retired group.
	StatusArchived Status = "archived"
)

var (
	// ErrTitleEmpty indicates a missing group title.
	ErrTitleEmpty = apperrors.New(apperrors.CodeLifeLineTitleEmpty, "title is required")
	// ErrLeaderIDEmpty indicates a missing leader reference.
	ErrLeaderIDEmpty = apperrors.New(apperrors.CodeLifeLineEmptyLeaderID, "leader id is required")
	// ErrNotPublished indicates an operation that requires a published group.
	ErrNotPublished = apperrors.New(apperrors.CodeLifeLineNotPublished, "lifeline is not published")
)

// LifeLine is one parish small group.
type LifeLine struct {
	ID          string
	Title       string
	Description string

	Frequency   string
	MeetingDay  string
	MeetingTime string
	GroupType   string
	TargetStage string

	Status             Status
	LeaderID           string
	FormationRequestID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDraft builds a draft group owned by a leader. FormationRequestID links
// the group back to the request it was materialized from and may be empty
// for groups created directly by an admin.
func NewDraft(title string, leaderID string, formationRequestID string, now func() time.Time, idGenerator func() (string, error)) (LifeLine, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return LifeLine{}, ErrTitleEmpty
	}
	leaderID = strings.TrimSpace(leaderID)
	if leaderID == "" {
		return LifeLine{}, ErrLeaderIDEmpty
	}

	lifeLineID, err := idGenerator()
	if err != nil {
		return LifeLine{}, fmt.Errorf("generate lifeline id: %w", err)
	}

	createdAt := now().UTC()
	return LifeLine{
		ID:                 lifeLineID,
		Title:              title,
		Status:             StatusDraft,
		LeaderID:           leaderID,
		FormationRequestID: strings.TrimSpace(formationRequestID),
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}, nil
}

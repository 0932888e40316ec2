package formation

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDs(prefix string) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	request, err := Create(SubmitInput{
		Title:       "  Young Families  ",
		LeaderName:  " Marta Reis ",
		LeaderEmail: " Marta@Example.ORG ",
		Frequency:   "Weekly",
		MeetingDay:  "Tuesday",
		MeetingTime: "19:30",
		GroupType:   "Family",
		TargetStage: "Growing",
	}, fixedClock(now), sequentialIDs("req"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if request.ID != "req-1" {
		t.Fatalf("expected generated id, got %q", request.ID)
	}
	if request.Title != "Young Families" || request.LeaderEmail != "marta@example.org" {
		t.Fatalf("expected normalized fields, got %+v", request)
	}
	if request.Frequency != "weekly" || request.MeetingDay != "tuesday" || request.GroupType != "family" {
		t.Fatalf("expected lowercased schedule fields, got %+v", request)
	}
	if request.Status != StatusSubmitted {
		t.Fatalf("expected submitted status, got %q", request.Status)
	}
	if request.LifeLineCreated {
		t.Fatal("expected no lifeline yet")
	}
	if !request.CreatedAt.Equal(now) {
		t.Fatalf("expected fixed creation time, got %v", request.CreatedAt)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	if _, err := Create(SubmitInput{LeaderName: "Marta", LeaderEmail: "m@example.org"}, nil, nil); !errors.Is(err, ErrTitleEmpty) {
		t.Fatalf("expected title error, got %v", err)
	}
	if _, err := Create(SubmitInput{Title: "Group", LeaderEmail: "m@example.org"}, nil, nil); !errors.Is(err, ErrLeaderNameEmpty) {
		t.Fatalf("expected leader name error, got %v", err)
	}
	if _, err := Create(SubmitInput{Title: "Group", LeaderName: "Marta"}, nil, nil); !errors.Is(err, ErrLeaderEmailEmpty) {
		t.Fatalf("expected leader email error, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"submitted", "approved", "rejected", "archived"} {
		status, err := ParseStatus(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if string(status) != value {
			t.Fatalf("expected %q, got %q", value, status)
		}
	}
	if _, err := ParseStatus("reviewing"); err == nil {
		t.Fatal("expected an error for an unknown status")
	}

	if StatusSubmitted.Terminal() {
		t.Fatal("submitted must not be terminal")
	}
	for _, status := range []Status{StatusApproved, StatusRejected, StatusArchived} {
		if !status.Terminal() {
			t.Fatalf("expected %q to be terminal", status)
		}
	}
}

func TestNormalizeCastVoteInput(t *testing.T) {
	t.Parallel()

	input, value, err := NormalizeCastVoteInput(CastVoteInput{
		RequestID: " req-1 ",
		VoterID:   " voter-1 ",
		Value:     " APPROVE ",
		Comment:   " looks solid ",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if input.RequestID != "req-1" || input.VoterID != "voter-1" {
		t.Fatalf("expected trimmed ids, got %+v", input)
	}
	if value != VoteApprove || input.Comment != "looks solid" {
		t.Fatalf("expected normalized vote, got %q %q", value, input.Comment)
	}

	if _, _, err := NormalizeCastVoteInput(CastVoteInput{VoterID: "v", Value: "approve"}); !errors.Is(err, ErrVoteEmptyRequestID) {
		t.Fatalf("expected empty request id error, got %v", err)
	}
	if _, _, err := NormalizeCastVoteInput(CastVoteInput{RequestID: "r", Value: "approve"}); !errors.Is(err, ErrVoteEmptyVoterID) {
		t.Fatalf("expected empty voter id error, got %v", err)
	}
	if _, _, err := NormalizeCastVoteInput(CastVoteInput{RequestID: "r", VoterID: "v", Value: "veto"}); !errors.Is(err, ErrVoteInvalidValue) {
		t.Fatalf("expected invalid value error, got %v", err)
	}
}

package lifeline

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/storage"
)

type fakeStore struct {
	lifelines map[string]storage.LifeLineRecord
	inquiries []storage.InquiryRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{lifelines: make(map[string]storage.LifeLineRecord)}
}

func (f *fakeStore) PutLifeLine(_ context.Context, record storage.LifeLineRecord) error {
	f.lifelines[record.ID] = record
	return nil
}

func (f *fakeStore) GetLifeLine(_ context.Context, lifeLineID string) (storage.LifeLineRecord, error) {
	record, ok := f.lifelines[lifeLineID]
	if !ok {
		return storage.LifeLineRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) GetLifeLineByFormationRequest(_ context.Context, requestID string) (storage.LifeLineRecord, error) {
	for _, record := range f.lifelines {
		if record.FormationRequestID == requestID {
			return record, nil
		}
	}
	return storage.LifeLineRecord{}, storage.ErrNotFound
}

func (f *fakeStore) ListPublishedLifeLines(_ context.Context, filter storage.LifeLineFilter) ([]storage.LifeLineRecord, error) {
	var records []storage.LifeLineRecord
	for _, record := range f.lifelines {
		if record.Status != "published" {
			continue
		}
		if filter.MeetingDay != "" && record.MeetingDay != filter.MeetingDay {
			continue
		}
		if filter.Frequency != "" && record.Frequency != filter.Frequency {
			continue
		}
		if filter.GroupType != "" && record.GroupType != filter.GroupType {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (f *fakeStore) PutInquiry(_ context.Context, record storage.InquiryRecord) error {
	f.inquiries = append(f.inquiries, record)
	return nil
}

func (f *fakeStore) ListInquiriesByLifeLine(_ context.Context, lifeLineID string) ([]storage.InquiryRecord, error) {
	var records []storage.InquiryRecord
	for _, record := range f.inquiries {
		if record.LifeLineID == lifeLineID {
			records = append(records, record)
		}
	}
	return records, nil
}

func newTestService(store *fakeStore) *Service {
	service := NewService(store, store)
	service.clock = func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }
	n := 0
	service.newID = func() (string, error) {
		n++
		return "id-" + string(rune('0'+n)), nil
	}
	return service
}

func seedGroup(store *fakeStore, id string, status Status) {
	store.lifelines[id] = storage.LifeLineRecord{
		ID:         id,
		Title:      "Young Families",
		Status:     string(status),
		LeaderID:   "user-1",
		MeetingDay: "tuesday",
		Frequency:  "weekly",
		GroupType:  "family",
	}
}

func TestNewDraft(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	group, err := NewDraft(" Young Families ", "user-1", "req-1", func() time.Time { return now }, func() (string, error) {
		return "ll-1", nil
	})
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}
	if group.ID != "ll-1" || group.Title != "Young Families" {
		t.Fatalf("unexpected group: %+v", group)
	}
	if group.Status != StatusDraft {
		t.Fatalf("expected draft status, got %q", group.Status)
	}
	if group.FormationRequestID != "req-1" {
		t.Fatalf("expected request link, got %q", group.FormationRequestID)
	}

	if _, err := NewDraft("", "user-1", "", nil, nil); !errors.Is(err, ErrTitleEmpty) {
		t.Fatalf("expected title error, got %v", err)
	}
	if _, err := NewDraft("Group", "", "", nil, nil); !errors.Is(err, ErrLeaderIDEmpty) {
		t.Fatalf("expected leader error, got %v", err)
	}
}

func TestListPublishedFilters(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(store)
	seedGroup(store, "ll-1", StatusPublished)
	seedGroup(store, "ll-2", StatusDraft)

	groups, err := service.ListPublished(context.Background(), Filter{MeetingDay: "tuesday"})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != "ll-1" {
		t.Fatalf("expected only the published group, got %+v", groups)
	}
}

func TestPublishAndArchive(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(store)
	seedGroup(store, "ll-1", StatusDraft)
	ctx := context.Background()

	group, err := service.Publish(ctx, "ll-1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if group.Status != StatusPublished {
		t.Fatalf("expected published, got %q", group.Status)
	}

	group, err = service.Archive(ctx, "ll-1")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if group.Status != StatusArchived {
		t.Fatalf("expected archived, got %q", group.Status)
	}

	if _, err := service.Publish(ctx, "missing"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitInquiry(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(store)
	seedGroup(store, "ll-1", StatusPublished)
	seedGroup(store, "ll-2", StatusDraft)
	ctx := context.Background()

	inquiry, err := service.SubmitInquiry(ctx, InquiryInput{
		LifeLineID: "ll-1",
		Name:       "Visitor",
		Email:      "Visitor@Example.org",
		Message:    "When do you meet?",
	})
	if err != nil {
		t.Fatalf("submit inquiry: %v", err)
	}
	if inquiry.Email != "visitor@example.org" || inquiry.LifeLineID != "ll-1" {
		t.Fatalf("unexpected inquiry: %+v", inquiry)
	}

	listed, err := service.ListInquiries(ctx, "ll-1")
	if err != nil {
		t.Fatalf("list inquiries: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one inquiry, got %d", len(listed))
	}

	// Draft groups are not open for inquiries.
	if _, err := service.SubmitInquiry(ctx, InquiryInput{
		LifeLineID: "ll-2",
		Name:       "Visitor",
		Email:      "visitor@example.org",
		Message:    "Hello",
	}); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected not published error, got %v", err)
	}

	if _, err := service.SubmitInquiry(ctx, InquiryInput{
		LifeLineID: "ll-1",
		Email:      "visitor@example.org",
		Message:    "Hello",
	}); !errors.Is(err, ErrInquiryNameEmpty) {
		t.Fatalf("expected name error, got %v", err)
	}
}

package lifeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/platform/id"
	"github.com/parishlabs/lifelines/internal/storage"
)

// Filter narrows the public group directory.
type Filter struct {
	MeetingDay string
	Frequency  string
	GroupType  string
}

// Service exposes the group directory and inquiry intake.
type Service struct {
	lifelines storage.LifeLineStore
	inquiries storage.InquiryStore

	clock func() time.Time
	newID func() (string, error)
}

// NewService builds the lifeline service.
func NewService(lifelines storage.LifeLineStore, inquiries storage.InquiryStore) *Service {
	return &Service{
		lifelines: lifelines,
		inquiries: inquiries,
		clock:     time.Now,
		newID:     id.NewID,
	}
}

// Get fetches one group by ID.
func (s *Service) Get(ctx context.Context, lifeLineID string) (LifeLine, error) {
	record, err := s.lifelines.GetLifeLine(ctx, lifeLineID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LifeLine{}, apperrors.New(apperrors.CodeNotFound, "lifeline not found")
		}
		return LifeLine{}, fmt.Errorf("get lifeline: %w", err)
	}
	return fromRecord(record), nil
}

// ListPublished lists the public directory, optionally filtered by schedule
// and category attributes.
func (s *Service) ListPublished(ctx context.Context, filter Filter) ([]LifeLine, error) {
	records, err := s.lifelines.ListPublishedLifeLines(ctx, storage.LifeLineFilter{
		MeetingDay: filter.MeetingDay,
		Frequency:  filter.Frequency,
		GroupType:  filter.GroupType,
	})
	if err != nil {
		return nil, fmt.Errorf("list published lifelines: %w", err)
	}
	lifelines := make([]LifeLine, 0, len(records))
	for _, record := range records {
		lifelines = append(lifelines, fromRecord(record))
	}
	return lifelines, nil
}

// Publish moves a draft group into the public directory.
func (s *Service) Publish(ctx context.Context, lifeLineID string) (LifeLine, error) {
	return s.setStatus(ctx, lifeLineID, StatusPublished)
}

// Archive retires a group from the public directory.
func (s *Service) Archive(ctx context.Context, lifeLineID string) (LifeLine, error) {
	return s.setStatus(ctx, lifeLineID, StatusArchived)
}

func (s *Service) setStatus(ctx context.Context, lifeLineID string, status Status) (LifeLine, error) {
	group, err := s.Get(ctx, lifeLineID)
	if err != nil {
		return LifeLine{}, err
	}
	group.Status = status
	group.UpdatedAt = s.clock().UTC()
	if err := s.lifelines.PutLifeLine(ctx, toRecord(group)); err != nil {
		return LifeLine{}, fmt.Errorf("update lifeline status: %w", err)
	}
	return group, nil
}

// SubmitInquiry records a visitor inquiry for a published group.
func (s *Service) SubmitInquiry(ctx context.Context, input InquiryInput) (Inquiry, error) {
	group, err := s.Get(ctx, input.LifeLineID)
	if err != nil {
		return Inquiry{}, err
	}
	if group.Status != StatusPublished {
		return Inquiry{}, ErrNotPublished
	}

	inquiry, err := NewInquiry(input, s.clock, s.newID)
	if err != nil {
		return Inquiry{}, err
	}
	inquiry.LifeLineID = group.ID
	if err := s.inquiries.PutInquiry(ctx, storage.InquiryRecord{
		ID:         inquiry.ID,
		LifeLineID: inquiry.LifeLineID,
		Name:       inquiry.Name,
		Email:      inquiry.Email,
		Message:    inquiry.Message,
		CreatedAt:  inquiry.CreatedAt,
	}); err != nil {
		return Inquiry{}, fmt.Errorf("store inquiry: %w", err)
	}
	return inquiry, nil
}

// ListInquiries lists inquiries for one group, newest first.
func (s *Service) ListInquiries(ctx context.Context, lifeLineID string) ([]Inquiry, error) {
	records, err := s.inquiries.ListInquiriesByLifeLine(ctx, lifeLineID)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	inquiries := make([]Inquiry, 0, len(records))
	for _, record := range records {
		inquiries = append(inquiries, Inquiry{
			ID:         record.ID,
			LifeLineID: record.LifeLineID,
			Name:       record.Name,
			Email:      record.Email,
			Message:    record.Message,
			CreatedAt:  record.CreatedAt,
		})
	}
	return inquiries, nil
}

func fromRecord(record storage.LifeLineRecord) LifeLine {
	return LifeLine{
		ID:                 record.ID,
		Title:              record.Title,
		Description:        record.Description,
		Frequency:          record.Frequency,
		MeetingDay:         record.MeetingDay,
		MeetingTime:        record.MeetingTime,
		GroupType:          record.GroupType,
		TargetStage:        record.TargetStage,
		Status:             Status(record.Status),
		LeaderID:           record.LeaderID,
		FormationRequestID: record.FormationRequestID,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

func toRecord(group LifeLine) storage.LifeLineRecord {
	return storage.LifeLineRecord{
		ID:                 group.ID,
		Title:              group.Title,
		Description:        group.Description,
		Frequency:          group.Frequency,
		MeetingDay:         group.MeetingDay,
		MeetingTime:        group.MeetingTime,
		GroupType:          group.GroupType,
		TargetStage:        group.TargetStage,
		Status:             string(group.Status),
		LeaderID:           group.LeaderID,
		FormationRequestID: group.FormationRequestID,
		CreatedAt:          group.CreatedAt,
		UpdatedAt:          group.UpdatedAt,
	}
}

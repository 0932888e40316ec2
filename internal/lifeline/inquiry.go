package lifeline

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/platform/id"
	"github.com/parishlabs/lifelines/internal/user"
)

var (
	// ErrInquiryNameEmpty indicates a missing visitor name.
	ErrInquiryNameEmpty = apperrors.New(apperrors.CodeInquiryEmptyName, "name is required")
	// ErrInquiryEmailEmpty indicates a missing visitor email.
	ErrInquiryEmailEmpty = apperrors.New(apperrors.CodeInquiryEmptyEmail, "email is required")
	// ErrInquiryMessageEmpty indicates a missing inquiry message.
	ErrInquiryMessageEmpty = apperrors.New(apperrors.CodeInquiryEmptyMessage, "message is required")
)

// Inquiry is a visitor's interest message for one published group.
type Inquiry struct {
	ID         string
	LifeLineID string
	Name       string
	Email      string
	Message    string
	CreatedAt  time.Time
}

// InquiryInput is the raw payload for a visitor inquiry.
type InquiryInput struct {
	LifeLineID string
	Name       string
	Email      string
	Message    string
}

// NewInquiry validates and builds one inquiry.
func NewInquiry(input InquiryInput, now func() time.Time, idGenerator func() (string, error)) (Inquiry, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Inquiry{}, ErrInquiryNameEmpty
	}
	email, err := user.NormalizeEmail(input.Email)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUserEmptyEmail {
			return Inquiry{}, ErrInquiryEmailEmpty
		}
		return Inquiry{}, err
	}
	input.Message = strings.TrimSpace(input.Message)
	if input.Message == "" {
		return Inquiry{}, ErrInquiryMessageEmpty
	}

	inquiryID, err := idGenerator()
	if err != nil {
		return Inquiry{}, fmt.Errorf("generate inquiry id: %w", err)
	}
	return Inquiry{
		ID:         inquiryID,
		LifeLineID: strings.TrimSpace(input.LifeLineID),
		Name:       input.Name,
		Email:      email,
		Message:    input.Message,
		CreatedAt:  now().UTC(),
	}, nil
}

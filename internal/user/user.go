// Package user provides parish user identity management.
package user

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/platform/id"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's access level.
type Role string

const (
	// RoleMember is the default role for parish members.
	RoleMember Role = "member"
	// RoleLifeLineLeader marks users who own at least one LifeLine.
	RoleLifeLineLeader Role = "lifeline_leader"
	// RoleFormationSupport marks formation-support staff who review requests.
	RoleFormationSupport Role = "formation_support"
	// RoleAdmin marks administrators.
	RoleAdmin Role = "admin"
)

var (
	// ErrEmptyEmail indicates a missing email.
	ErrEmptyEmail = apperrors.New(apperrors.CodeUserEmptyEmail, "email is required")
	// ErrInvalidEmail indicates an email that does not match the required format.
	ErrInvalidEmail = apperrors.New(apperrors.CodeUserInvalidEmail, "email is not valid")
	// ErrEmptyDisplayName indicates a missing display name.
	ErrEmptyDisplayName = apperrors.New(apperrors.CodeUserEmptyDisplayName, "display name is required")
	// ErrInvalidRole indicates a role outside the closed set.
	ErrInvalidRole = apperrors.New(apperrors.CodeUserInvalidRole, "role is invalid")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User represents a parish identity record.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Role         Role
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ParseRole validates a stored role string against the closed set.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleMember:
		return RoleMember, nil
	case RoleLifeLineLeader:
		return RoleLifeLineLeader, nil
	case RoleFormationSupport:
		return RoleFormationSupport, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// CanReviewFormation reports whether this role may cast formation votes.
func (r Role) CanReviewFormation() bool {
	return r == RoleFormationSupport || r == RoleAdmin
}

// NormalizeEmail canonicalizes and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmptyEmail
	}
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NewLeaderCandidate builds a fresh leader account for an email with no
// existing user. The returned one-time password is only ever held in memory
// for the welcome notification; storage sees the bcrypt hash.
func NewLeaderCandidate(email string, displayName string, now func() time.Time, idGenerator func() (string, error)) (User, string, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalizedEmail, err := NormalizeEmail(email)
	if err != nil {
		return User{}, "", err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return User{}, "", ErrEmptyDisplayName
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, "", fmt.Errorf("generate user id: %w", err)
	}

	oneTimePassword, err := GenerateOneTimePassword()
	if err != nil {
		return User{}, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(oneTimePassword), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash one-time password: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:           userID,
		Email:        normalizedEmail,
		DisplayName:  displayName,
		Role:         RoleLifeLineLeader,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, oneTimePassword, nil
}

// GenerateOneTimePassword returns a random 16-character lowercase base32 secret.
func GenerateOneTimePassword() (string, error) {
	var raw [10]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:])
	return strings.ToLower(encoded), nil
}

// VerifyPassword checks a login password against the stored hash.
func VerifyPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

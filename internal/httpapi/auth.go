package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
	"github.com/parishlabs/lifelines/internal/user"
)

// AccessClaims captures a validated access token.
type AccessClaims struct {
	UserID string
	Role   user.Role
}

// accessClaims is the internal claims type used for JWT parsing.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// TokenVerifier validates HS256 access tokens issued by the parish identity
// provider.
type TokenVerifier struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

// IssueAccessToken mints a signed token for a user. It backs local tooling
// and tests; production tokens come from the identity provider with the same
// shape.
func (v *TokenVerifier) IssueAccessToken(userID string, role user.Role, ttl time.Duration) (string, error) {
	now := v.now()()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   string(role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}

// VerifyRequest extracts and validates the bearer token on a request.
func (v *TokenVerifier) VerifyRequest(r *http.Request) (AccessClaims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return AccessClaims{}, apperrors.New(apperrors.CodeAuthUnauthorized, "bearer token is required")
	}
	return v.Verify(strings.TrimSpace(token))
}

// Verify validates a raw token string.
func (v *TokenVerifier) Verify(token string) (AccessClaims, error) {
	if len(v.Secret) == 0 {
		return AccessClaims{}, apperrors.New(apperrors.CodeAuthUnauthorized, "token verifier is not configured")
	}

	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(_ *jwt.Token) (any, error) {
		return v.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(v.now()),
	)
	if err != nil {
		return AccessClaims{}, apperrors.Wrap(apperrors.CodeAuthUnauthorized, "invalid access token", err)
	}
	if v.Issuer != "" && parsed.Issuer != v.Issuer {
		return AccessClaims{}, apperrors.New(apperrors.CodeAuthUnauthorized, "access token issuer mismatch")
	}
	role, err := user.ParseRole(parsed.Role)
	if err != nil {
		return AccessClaims{}, apperrors.Wrap(apperrors.CodeAuthUnauthorized, "access token role is invalid", err)
	}
	userID := strings.TrimSpace(parsed.UserID)
	if userID == "" {
		userID = strings.TrimSpace(parsed.Subject)
	}
	if userID == "" {
		return AccessClaims{}, apperrors.New(apperrors.CodeAuthUnauthorized, "access token user is missing")
	}
	return AccessClaims{UserID: userID, Role: role}, nil
}

func (v *TokenVerifier) now() func() time.Time {
	if v.Now != nil {
		return v.Now
	}
	return time.Now
}

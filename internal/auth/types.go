package auth

import (
	"errors"
	"regexp"
	"time"
)

// emailPattern is the minimal shape check applied at registration.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// Session is the persisted record behind a refresh token.
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	RefreshToken string     `json:"-"` // never serialised
	Revoked      bool       `json:"revoked"`
	CreatedAt    time.Time  `json:"created_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"-"`
	SessionID    string    `json:"-"`
	UserID       string    `json:"-"`
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID string
	Email  string
}

// Validation errors. Each wraps ErrInvalidInput.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrCredentialsRequired  = errors.New("email and password are required")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
)

// Domain errors.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailExists         = errors.New("email exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrSessionNotFound     = errors.New("session not found or already revoked")
)

// Access token errors. Each specific error is wrapped with ErrTokenInvalid,
// so callers that do not care about the cause can test for the umbrella.
var (
	ErrTokenInvalid          = errors.New("invalid or expired access token")
	ErrTokenMalformed        = errors.New("malformed token")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
)

package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned when login fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User represents a registered user
// swagger:model User
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"time_zone"`
	Locale   string `json:"locale"`
	// Metadata holds loosely-typed profile settings such as the default
	// conferencing app.
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	PasswordHash string          `json:"-"`
	PasswordSalt string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Credential is a stored third-party authorization for a user.
type Credential struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`
	Type   string          `json:"type"`
	Key    json.RawMessage `json:"-"`
}

// DestinationCalendar is the calendar a user designated as the sync target
// for their events.
type DestinationCalendar struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Integration string `json:"integration"`
	ExternalID  string `json:"external_id"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// CredentialRepository defines storage operations for user credentials.
type CredentialRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]*Credential, error)
}

// DestinationCalendarRepository looks up a user's destination calendar.
// GetByUserID returns ErrNotFound when the user has none configured.
type DestinationCalendarRepository interface {
	GetByUserID(ctx context.Context, userID string) (*DestinationCalendar, error)
}

// AuthService authenticates API callers.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

package session

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")
)

// Session is the long-lived credential a user holds after login. The
// short-lived access credential is derived from it and never persisted.
// Only a one-way fingerprint of the raw session token is stored.
type Session struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	AcademyID   *string    `json:"academy_id,omitempty"` // denormalized from the user
	Fingerprint string     `json:"-"`
	IPAddress   string     `json:"ip_address,omitempty"`
	UserAgent   string     `json:"user_agent,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// AcademyRef implements scope.Owned.
func (s *Session) AcademyRef() *string { return s.AcademyID }

// BindAcademy implements scope.Owned.
func (s *Session) BindAcademy(id string) { s.AcademyID = &id }

// Revoked reports whether the session has been explicitly revoked.
// Revocation is terminal; a revoked session is permanently inert.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Expired reports whether the session's lifetime has elapsed. Expiry is
// computed, not stored; there is no third persisted state.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Usable reports whether the session may still mint access credentials.
func (s *Session) Usable(now time.Time) bool {
	return !s.Revoked() && !s.Expired(now)
}

// Repository defines the interface for session persistence.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*Session, error)
	ListByUser(ctx context.Context, userID string) ([]*Session, error)

	// Revoke sets revoked_at if it is not already set. Revoking an
	// already-revoked session keeps the original timestamp; the call
	// reports ErrSessionNotFound only when no row exists.
	Revoke(ctx context.Context, id string, at time.Time) error

	// DeleteExpired removes sessions whose expiry passed before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

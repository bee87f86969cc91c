// Package session models the identity collaborator: server-side sessions
// that resolve an opaque bearer token to a pre-validated user identifier.
package session

import (
	"context"
	"time"
)

// Session binds a hashed token to the user it authenticates.
type Session struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Repository provides lookup and creation of sessions by token hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*Session, error)
	Create(ctx context.Context, s *Session) error
}

package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/endulzarte/patisserie-api/internal/domain/session"
)

const (
	getSessionByHashSQL = `SELECT token_hash, user_id, created_at, expires_at
		FROM sessions WHERE token_hash = $1`

	insertSessionSQL = `INSERT INTO sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE
		SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at`
)

// ErrSessionNotFound is returned when no session matches the token hash.
var ErrSessionNotFound = errors.New("session not found")

var _ session.Repository = (*SessionRepository)(nil)

// SessionRepository provides session lookups backed by PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// FindByHash looks up a session by its HMAC-SHA256 token hash. Expiry is the
// caller's concern; stored expired sessions are still returned.
func (r *SessionRepository) FindByHash(ctx context.Context, hash string) (*session.Session, error) {
	var s session.Session
	err := r.pool.QueryRow(ctx, getSessionByHashSQL, hash).Scan(
		&s.TokenHash, &s.UserID, &s.CreatedAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("finding session by hash: %w", err)
	}
	return &s, nil
}

// Create inserts a session, replacing any existing row for the same hash.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := r.pool.Exec(ctx, insertSessionSQL, s.TokenHash, s.UserID, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("creating session for user %q: %w", s.UserID, err)
	}
	return nil
}

package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/endulzarte/patisserie-api/internal/domain/session"
)

// SessionCookie is the cookie carrying the session token. A bearer token in
// the Authorization header is accepted as an alternative for non-browser
// clients.
const SessionCookie = "session"

// userIDKey is the context key for the authenticated user identifier.
type userIDKey struct{}

// UserIDFromContext extracts the authenticated user id from the context.
// It returns an empty string when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

// SessionAuth authenticates requests against stored sessions. Tokens are
// HMAC-SHA256-hashed with a server pepper before lookup, so raw tokens never
// reach the database.
type SessionAuth struct {
	sessions session.Repository
	pepper   []byte
	now      func() time.Time
}

// NewSessionAuth creates a SessionAuth with the given session repository and
// HMAC pepper.
func NewSessionAuth(sessions session.Repository, pepper []byte) *SessionAuth {
	return &SessionAuth{
		sessions: sessions,
		pepper:   pepper,
		now:      time.Now,
	}
}

// HashToken computes the HMAC-SHA256 hex digest of a raw session token.
// cmd/seed-db uses the same function when installing demo sessions.
func HashToken(pepper []byte, token string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Middleware resolves the session token, rejects the request with 401 when
// no valid session exists, and stores the user id in the request context.
// Both order endpoints sit behind this middleware; there is deliberately no
// anonymous fallback.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		s, err := a.sessions.FindByHash(r.Context(), HashToken(a.pepper, token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		if s.Expired(a.now()) {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, s.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest reads the session token from the session cookie, falling
// back to an Authorization bearer token.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

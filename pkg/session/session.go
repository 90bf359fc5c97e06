// Package session provides opaque bearer-token sessions for authenticated
// users.
//
// A session is created at login and identified by a random token that the
// client sends as "Authorization: Bearer <token>". Storage backends:
//   - [MemoryStore]: process-local map for development and tests
//   - [RedisStore]: shared store for multi-instance servers, with native expiry
//   - [FileStore]: JSON files for the CLI, holding the credentials of a
//     remote server
//
// # Usage
//
//	sess, err := session.New(user.ID, user.Username, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, token)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // unknown or expired token
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session stores an authenticated user's login.
type Session struct {
	// ID is the bearer token.
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	// Server is the API base URL the token was issued by. Only CLI
	// credentials set it.
	Server string `json:"server,omitempty"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, zero once expired.
func (s *Session) TTL() time.Duration {
	d := time.Until(s.ExpiresAt)
	if d < 0 {
		return 0
	}
	return d
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by token.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session until its expiry.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op where the backend
	// expires entries itself).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 7 * 24 * time.Hour

// GenerateID creates a cryptographically secure random session token.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session for the given user.
func New(userID, username string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		UserID:    userID,
		Username:  username,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

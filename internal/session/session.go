// Package session keeps the portal's authenticated state: the bearer token
// issued by the Auth API and the username remembered for the login form.
//
// A session is created on login success and torn down on logout. Sessions
// opened with "remember me" go to the durable store; the others live only in
// process memory.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Session is one logged-in browser.
type Session struct {
	ID        string
	Token     string
	Username  string
	Remember  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session or its token has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return true
	}
	if exp, ok := TokenExpiry(s.Token); ok && !now.Before(exp) {
		return true
	}
	return false
}

// Store persists sessions by ID.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// ErrNoSession is returned when no live session matches the ID.
var ErrNoSession = errors.New("no session")

type tokenClaims struct {
	Exp int64 `json:"exp"`
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the Auth API remains the judge of validity. ok is false for opaque tokens
// or tokens without exp.
func TokenExpiry(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}, false
	}
	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.Exp, 0).UTC(), true
}

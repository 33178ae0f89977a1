package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"careerpage/portal-service/internal/jobstore"
)

// Authenticator is the Auth API.
type Authenticator interface {
	Login(ctx context.Context, creds jobstore.Credentials) (jobstore.AuthResult, error)
	Register(ctx context.Context, creds jobstore.Credentials) (jobstore.AuthResult, error)
}

// Manager owns the session lifecycle.
type Manager struct {
	auth     Authenticator
	volatile Store
	durable  Store
	ttl      time.Duration
	now      func() time.Time
}

// NewManager wires the two stores. A nil durable store keeps remembered
// sessions in memory as well.
func NewManager(auth Authenticator, volatile, durable Store, ttl time.Duration) *Manager {
	if volatile == nil {
		volatile = NewMemoryStore()
	}
	if durable == nil {
		durable = volatile
	}
	return &Manager{auth: auth, volatile: volatile, durable: durable, ttl: ttl, now: time.Now}
}

// LoginResult is the outcome of a login attempt. Session is nil when the
// Auth API answered without a token.
type LoginResult struct {
	Message string
	Session *Session
}

// Login forwards credentials and opens a session when a token comes back.
func (m *Manager) Login(ctx context.Context, username, password string, remember bool) (*LoginResult, error) {
	res, err := m.auth.Login(ctx, jobstore.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	out := &LoginResult{Message: res.Message}
	if res.Token == "" {
		return out, nil
	}

	now := m.now().UTC()
	s := Session{
		ID:        uuid.NewString(),
		Token:     res.Token,
		Username:  username,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if exp, ok := TokenExpiry(res.Token); ok && exp.Before(s.ExpiresAt) {
		s.ExpiresAt = exp
	}
	if err := m.storeFor(remember).Save(ctx, s); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	out.Session = &s
	return out, nil
}

// Register creates an account and returns the Auth API message.
func (m *Manager) Register(ctx context.Context, username, password string) (string, error) {
	res, err := m.auth.Register(ctx, jobstore.Credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// Current returns the live session for id. Lapsed sessions are removed and
// reported as ErrNoSession.
func (m *Manager) Current(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNoSession
	}
	s, err := m.volatile.Get(ctx, id)
	if errors.Is(err, ErrNoSession) && m.durable != m.volatile {
		s, err = m.durable.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.storeFor(s.Remember).Delete(ctx, id); err != nil {
			slog.Warn("drop expired session failed", "err", err)
		}
		return nil, ErrNoSession
	}
	return s, nil
}

// RememberedUsername is the username to pre-fill on the login form.
func (m *Manager) RememberedUsername(ctx context.Context, id string) string {
	s, err := m.Current(ctx, id)
	if err != nil || !s.Remember {
		return ""
	}
	return s.Username
}

// Logout clears the token and remembered username.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if err := m.volatile.Delete(ctx, id); err != nil {
		return err
	}
	if m.durable != m.volatile {
		return m.durable.Delete(ctx, id)
	}
	return nil
}

// Purge drops expired sessions from both stores.
func (m *Manager) Purge(ctx context.Context) (int64, error) {
	now := m.now()
	n, err := m.volatile.PurgeExpired(ctx, now)
	if err != nil {
		return n, err
	}
	if m.durable == m.volatile {
		return n, nil
	}
	d, err := m.durable.PurgeExpired(ctx, now)
	return n + d, err
}

func (m *Manager) storeFor(remember bool) Store {
	if remember {
		return m.durable
	}
	return m.volatile
}

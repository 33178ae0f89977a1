package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpage/portal-service/internal/jobstore"
)

type fakeAuth struct {
	result jobstore.AuthResult
	err    error
	creds  jobstore.Credentials
}

func (f *fakeAuth) Login(_ context.Context, c jobstore.Credentials) (jobstore.AuthResult, error) {
	f.creds = c
	return f.result, f.err
}

func (f *fakeAuth) Register(_ context.Context, c jobstore.Credentials) (jobstore.AuthResult, error) {
	f.creds = c
	return jobstore.AuthResult{Message: f.result.Message}, f.err
}

func jwtWithExp(exp time.Time) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := enc.EncodeToString([]byte(fmt.Sprintf(`{"id":"u1","exp":%d}`, exp.Unix())))
	return header + "." + payload + ".sig"
}

func newTestManager(auth Authenticator) (*Manager, *MemoryStore, *MemoryStore) {
	volatile, durable := NewMemoryStore(), NewMemoryStore()
	return NewManager(auth, volatile, durable, time.Hour), volatile, durable
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	got, ok := TokenExpiry(jwtWithExp(exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	for _, opaque := range []string{"", "opaque-token", "a.b", "a.!!!.c"} {
		_, ok := TokenExpiry(opaque)
		assert.False(t, ok, opaque)
	}
}

func TestLogin_RememberGoesToDurableStore(t *testing.T) {
	auth := &fakeAuth{result: jobstore.AuthResult{Message: "Login successful", Token: "opaque"}}
	m, volatile, durable := newTestManager(auth)
	ctx := context.Background()

	res, err := m.Login(ctx, "alice", "pw", true)
	require.NoError(t, err)
	assert.Equal(t, "Login successful", res.Message)
	require.NotNil(t, res.Session)
	assert.Equal(t, "alice", auth.creds.Username)

	_, err = durable.Get(ctx, res.Session.ID)
	assert.NoError(t, err)
	_, err = volatile.Get(ctx, res.Session.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, "alice", m.RememberedUsername(ctx, res.Session.ID))
}

func TestLogin_WithoutRememberStaysInMemory(t *testing.T) {
	auth := &fakeAuth{result: jobstore.AuthResult{Token: "opaque"}}
	m, volatile, durable := newTestManager(auth)
	ctx := context.Background()

	res, err := m.Login(ctx, "bob", "pw", false)
	require.NoError(t, err)
	_, err = volatile.Get(ctx, res.Session.ID)
	assert.NoError(t, err)
	_, err = durable.Get(ctx, res.Session.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	s, err := m.Current(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "opaque", s.Token)
	assert.Empty(t, m.RememberedUsername(ctx, res.Session.ID), "username is only remembered with remember me")
}

func TestLogin_NoTokenOpensNoSession(t *testing.T) {
	m, _, _ := newTestManager(&fakeAuth{result: jobstore.AuthResult{Message: "Invalid credentials"}})

	res, err := m.Login(context.Background(), "alice", "bad", true)
	require.NoError(t, err)
	assert.Nil(t, res.Session)
	assert.Equal(t, "Invalid credentials", res.Message)
}

func TestLogin_AuthFailure(t *testing.T) {
	m, _, _ := newTestManager(&fakeAuth{err: jobstore.ErrUnauthorized})

	_, err := m.Login(context.Background(), "alice", "bad", false)
	assert.True(t, errors.Is(err, jobstore.ErrUnauthorized))
}

func TestLogin_SessionExpiryCappedByToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenExp := now.Add(10 * time.Minute)
	m, _, _ := newTestManager(&fakeAuth{result: jobstore.AuthResult{Token: jwtWithExp(tokenExp)}})
	m.now = func() time.Time { return now }

	res, err := m.Login(context.Background(), "alice", "pw", false)
	require.NoError(t, err)
	assert.True(t, res.Session.ExpiresAt.Equal(tokenExp))
}

func TestCurrent_ExpiredTokenIsTreatedAsMissing(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m, volatile, _ := newTestManager(&fakeAuth{result: jobstore.AuthResult{Token: jwtWithExp(now.Add(time.Minute))}})
	m.now = func() time.Time { return now }
	ctx := context.Background()

	res, err := m.Login(ctx, "alice", "pw", false)
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = m.Current(ctx, res.Session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = volatile.Get(ctx, res.Session.ID)
	assert.ErrorIs(t, err, ErrNoSession, "expired session must be dropped")
}

func TestCurrent_UnknownOrMalformedID(t *testing.T) {
	m, _, _ := newTestManager(&fakeAuth{})
	ctx := context.Background()

	_, err := m.Current(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.Current(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.Current(ctx, "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogout_ClearsBothStores(t *testing.T) {
	m, _, _ := newTestManager(&fakeAuth{result: jobstore.AuthResult{Token: "opaque"}})
	ctx := context.Background()

	res, err := m.Login(ctx, "alice", "pw", true)
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, res.Session.ID))

	_, err = m.Current(ctx, res.Session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Empty(t, m.RememberedUsername(ctx, res.Session.ID))
	assert.NoError(t, m.Logout(ctx, "garbage"))
}

func TestRegister(t *testing.T) {
	auth := &fakeAuth{result: jobstore.AuthResult{Message: "User registered"}}
	m, volatile, durable := newTestManager(auth)

	msg, err := m.Register(context.Background(), "carol", "pw")
	require.NoError(t, err)
	assert.Equal(t, "User registered", msg)
	assert.Equal(t, "carol", auth.creds.Username)
	assert.Empty(t, volatile.sessions)
	assert.Empty(t, durable.sessions)
}

func TestPurge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m, volatile, durable := newTestManager(&fakeAuth{})
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, volatile.Save(ctx, Session{ID: "v-old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, volatile.Save(ctx, Session{ID: "v-new", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, durable.Save(ctx, Session{ID: "d-old", ExpiresAt: now}))

	n, err := m.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, volatile.sessions, 1)
	assert.Empty(t, durable.sessions)
}

func TestNewManager_SharedStoreWhenNoDurable(t *testing.T) {
	auth := &fakeAuth{result: jobstore.AuthResult{Token: "opaque"}}
	m := NewManager(auth, nil, nil, time.Hour)
	ctx := context.Background()

	res, err := m.Login(ctx, "alice", "pw", true)
	require.NoError(t, err)
	s, err := m.Current(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.True(t, s.Remember)

	n, err := m.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

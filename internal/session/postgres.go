package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS remembered_sessions (
	id         UUID PRIMARY KEY,
	token      TEXT        NOT NULL,
	username   TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps remembered sessions across portal restarts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the remembered_sessions table if missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create remembered_sessions: %w", err)
	}
	return nil
}

func (p *PostgresStore) Save(ctx context.Context, s Session) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO remembered_sessions (id, token, username, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET token      = EXCLUDED.token,
		     username   = EXCLUDED.username,
		     expires_at = EXCLUDED.expires_at`,
		s.ID, s.Token, s.Username, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	s := Session{Remember: true}
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, token, username, created_at, expires_at
		 FROM remembered_sessions
		 WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Token, &s.Username, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM remembered_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired drops rows past expires_at. Tokens whose own exp claim has
// lapsed are caught on read by Manager.Current.
func (p *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM remembered_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

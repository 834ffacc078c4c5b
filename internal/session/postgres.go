package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coldsend/coldsend/internal/crypto"
)

// PostgresStore is a pgx-backed Store for deployments that need sessions to
// survive process restarts. Schema lives in the embedded migrations.
// When an Encryptor is provided, OAuth tokens are encrypted at rest.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	enc  crypto.Encryptor
}

// NewPostgresStore creates a postgres-backed session store. enc may be nil,
// in which case tokens are stored as-is.
func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration, enc crypto.Encryptor) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostgresStore{pool: pool, ttl: ttl, enc: enc}
}

// Get returns the session for id, or ErrNotFound if missing or expired.
func (s *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		SELECT email, name, access_token, refresh_token, token_expiry, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&sess.Email, &sess.Name, &sess.AccessToken, &sess.RefreshToken, &sess.TokenExpiry, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session lookup failed: %w", err)
	}

	if s.enc != nil {
		if sess.AccessToken, err = s.decrypt(sess.AccessToken); err != nil {
			return Session{}, fmt.Errorf("access token decrypt failed: %w", err)
		}
		if sess.RefreshToken, err = s.decrypt(sess.RefreshToken); err != nil {
			return Session{}, fmt.Errorf("refresh token decrypt failed: %w", err)
		}
	}

	return sess, nil
}

// Put creates or replaces the session for id.
func (s *PostgresStore) Put(ctx context.Context, id string, sess Session) error {
	accessToken, refreshToken := sess.AccessToken, sess.RefreshToken
	if s.enc != nil {
		var err error
		if accessToken, err = s.encrypt(accessToken); err != nil {
			return fmt.Errorf("access token encrypt failed: %w", err)
		}
		if refreshToken, err = s.encrypt(refreshToken); err != nil {
			return fmt.Errorf("refresh token encrypt failed: %w", err)
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, email, name, access_token, refresh_token, token_expiry, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			expires_at = EXCLUDED.expires_at`,
		id, sess.Email, sess.Name, accessToken, refreshToken,
		sess.TokenExpiry, sess.CreatedAt, time.Now().Add(s.ttl),
	)
	if err != nil {
		return fmt.Errorf("session upsert failed: %w", err)
	}
	return nil
}

// Delete removes the session for id. Deleting a missing session is not an
// error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many
// rows went away. Called periodically by the cleanup job.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("expired session cleanup failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) encrypt(value string) (string, error) {
	out, err := s.enc.Encrypt([]byte(value))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *PostgresStore) decrypt(value string) (string, error) {
	out, err := s.enc.Decrypt([]byte(value))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

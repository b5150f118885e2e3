package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrTokenNotFound = errors.New("refresh token not found")

// RefreshToken is an opaque, single-use session renewal token.
type RefreshToken struct {
	Token     string     `db:"refresh_token"`
	UserID    string     `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

type TokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	Consume(ctx context.Context, token string) (*RefreshToken, error)
	RevokeAll(ctx context.Context, userID string) error
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	query := `INSERT INTO sessions (refresh_token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt)
	return err
}

// Consume atomically revokes the token and returns it. Only the first of
// two concurrent callers succeeds; the second gets ErrTokenNotFound.
func (r *tokenRepository) Consume(ctx context.Context, token string) (*RefreshToken, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = $1
		WHERE refresh_token = $2 AND revoked_at IS NULL AND expires_at > $3
	`, now, token, now)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTokenNotFound
	}

	var t RefreshToken
	err = r.db.GetContext(ctx, &t, `SELECT refresh_token, user_id, expires_at, revoked_at FROM sessions WHERE refresh_token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) RevokeAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`, time.Now().UTC(), userID)
	return err
}

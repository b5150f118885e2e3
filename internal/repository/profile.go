package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/craftfolio/craftfolio/internal/model"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type ProfileRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	ByUsername(ctx context.Context, username string) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) ByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE username = $1`, username)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Upsert creates or replaces the profile row keyed by user_id.
func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, name, bio, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			name = excluded.name,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.Username, profile.Name, profile.Bio, profile.AvatarURL, profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}

	return nil
}

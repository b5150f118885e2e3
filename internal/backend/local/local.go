// Package local is a self-hosted stand-in for the hosted backend: SQL
// rows, bcrypt credentials, HS256 access tokens and S3 objects. It
// enforces the same owner scoping the hosted row-level policies do.
package local

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/repository"
	"github.com/craftfolio/craftfolio/internal/storage"
)

var _ backend.Backend = (*Local)(nil)

// Mailer sends the sign-up welcome mail. Failures never block sign-up.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
}

type Local struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	profiles repository.ProfileRepository
	items    repository.ItemRepository
	storage  storage.Storage
	mailer   Mailer

	jwtSecret     []byte
	jwtExpiry     time.Duration
	refreshExpiry time.Duration
}

type Config struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	RefreshExpiry time.Duration
}

func New(db *sqlx.DB, store storage.Storage, mailer Mailer, cfg Config) *Local {
	if store == nil {
		store = storage.Disabled{}
	}
	if cfg.RefreshExpiry == 0 {
		cfg.RefreshExpiry = 30 * 24 * time.Hour
	}

	slog.Info("initializing local backend", "jwt_expiry", cfg.JWTExpiry)

	return &Local{
		users:         repository.NewUserRepository(db),
		tokens:        repository.NewTokenRepository(db),
		profiles:      repository.NewProfileRepository(db),
		items:         repository.NewItemRepository(db),
		storage:       store,
		mailer:        mailer,
		jwtSecret:     []byte(cfg.JWTSecret),
		jwtExpiry:     cfg.JWTExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

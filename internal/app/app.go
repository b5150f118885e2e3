package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/backend/local"
	"github.com/craftfolio/craftfolio/internal/backend/supabase"
	"github.com/craftfolio/craftfolio/internal/config"
	"github.com/craftfolio/craftfolio/internal/db"
	"github.com/craftfolio/craftfolio/internal/markdown"
	"github.com/craftfolio/craftfolio/internal/middleware"
	"github.com/craftfolio/craftfolio/internal/service"
	"github.com/craftfolio/craftfolio/internal/storage"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB // nil with the supabase backend
	Backend          backend.Backend
	SessionService   *service.SessionService
	ProfileService   *service.ProfileService
	PortfolioService *service.PortfolioService
	InFlight         *service.InFlight
	Markdown         *markdown.Parser
	AuthLimiter      middleware.Limiter

	unsubscribe func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	switch cfg.Backend {
	case config.BackendLocal:
		err := a.initLocal(ctx)
		if err != nil {
			return nil, err
		}
	default:
		a.Backend = supabase.New(supabase.Config{
			URL:     cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
			Bucket:  cfg.SupabaseStorageBucket,
			Timeout: cfg.BackendTimeout,
		})
	}

	// Services
	a.InFlight = service.NewInFlight()
	a.SessionService = service.NewSessionService(a.Backend, cfg.SecureCookies(), cfg.SessionCookieTTL)
	a.ProfileService = service.NewProfileService(a.Backend, a.Backend, a.InFlight)
	a.PortfolioService = service.NewPortfolioService(a.Backend, a.InFlight)
	a.Markdown = markdown.NewParser()
	a.AuthLimiter = middleware.NewLimiter(ctx, cfg.RedisURL, authRateLimit, authRateWindow)

	a.unsubscribe = a.SessionService.Subscribe(func(event service.SessionEvent) {
		slog.Info("session event", "kind", event.Kind, "user_id", event.UserID)
	})

	return a, nil
}

// initLocal wires the self-hosted backend: database, object storage and
// welcome mail.
func (a *App) initLocal(ctx context.Context) error {
	cfg := a.Cfg

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = database

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var objects storage.Storage = storage.Disabled{}
	if cfg.S3Bucket != "" {
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			_ = database.Close()
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		objects = s3Storage
	} else {
		slog.Info("no S3_BUCKET configured, avatar uploads disabled")
	}

	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	a.Backend = local.New(database, objects, emailService, local.Config{
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
	})
	return nil
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}

	var errs []error
	if closer, ok := a.AuthLimiter.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

package local

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/repository"
)

func (l *Local) Profile(ctx context.Context, accessToken, userID string) (*model.Profile, error) {
	err := l.authorize(accessToken, userID)
	if err != nil {
		return nil, err
	}

	profile, err := l.profiles.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (l *Local) ProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	profile, err := l.profiles.ByUsername(ctx, username)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (l *Local) UpsertProfile(ctx context.Context, accessToken string, profile *model.Profile) error {
	err := l.authorize(accessToken, profile.UserID)
	if err != nil {
		return err
	}

	err = l.profiles.Upsert(ctx, profile)
	if errors.Is(err, repository.ErrUsernameTaken) {
		return &backend.APIError{Status: http.StatusConflict, Code: "23505", Message: "username already taken"}
	}
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (l *Local) Items(ctx context.Context, accessToken, userID string) ([]*model.PortfolioItem, error) {
	err := l.authorize(accessToken, userID)
	if err != nil {
		return nil, err
	}

	items, err := l.items.ByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (l *Local) PublicItems(ctx context.Context, userID string) ([]*model.PortfolioItem, error) {
	items, err := l.items.ByUserIDUnordered(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (l *Local) CreateItem(ctx context.Context, accessToken string, item *model.PortfolioItem) error {
	err := l.authorize(accessToken, item.UserID)
	if err != nil {
		return err
	}

	// Server-assigned fields.
	item.ID = ""
	item.CreatedAt = time.Time{}

	err = l.items.Create(ctx, item)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (l *Local) DeleteItem(ctx context.Context, accessToken, id, userID string) error {
	err := l.authorize(accessToken, userID)
	if err != nil {
		return err
	}

	err = l.items.DeleteOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

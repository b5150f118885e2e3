package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/validation"
)

type PortfolioService struct {
	rows     backend.Rows
	inflight *InFlight
}

func NewPortfolioService(rows backend.Rows, inflight *InFlight) *PortfolioService {
	return &PortfolioService{
		rows:     rows,
		inflight: inflight,
	}
}

// Items lists the session owner's items, newest first.
func (s *PortfolioService) Items(ctx context.Context, sess *model.Session) ([]*model.PortfolioItem, error) {
	userID, err := requireUser(sess)
	if err != nil {
		return nil, err
	}

	items, err := s.rows.Items(ctx, sess.AccessToken, userID)
	if err != nil {
		return nil, fromBackend(err, "Could not load your items", "user_id", userID)
	}
	return items, nil
}

// PublicItems lists the items of username without authentication. An
// unknown username has no items.
func (s *PortfolioService) PublicItems(ctx context.Context, username string) ([]*model.PortfolioItem, error) {
	_, items, err := s.PublicPortfolio(ctx, username)
	return items, err
}

// PublicPortfolio returns the profile behind username (nil if there is
// none) together with its items.
func (s *PortfolioService) PublicPortfolio(ctx context.Context, username string) (*model.Profile, []*model.PortfolioItem, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return nil, []*model.PortfolioItem{}, nil
	}

	profile, err := s.rows.ProfileByUsername(ctx, username)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, []*model.PortfolioItem{}, nil
	}
	if err != nil {
		return nil, nil, fromBackend(err, "Could not load this portfolio", "username", username)
	}

	items, err := s.rows.PublicItems(ctx, profile.UserID)
	if err != nil {
		return profile, nil, fromBackend(err, "Could not load this portfolio", "username", username)
	}
	return profile, items, nil
}

// CreateItem validates before any network call. The backend assigns the
// id and creation time.
func (s *PortfolioService) CreateItem(ctx context.Context, sess *model.Session, title, link, description string) (*model.PortfolioItem, error) {
	userID, err := requireUser(sess)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	link = strings.TrimSpace(link)
	description = strings.TrimSpace(description)

	err = validation.ValidateItemTitle(title)
	if err != nil {
		return nil, apperror.ValidationFailed("title", err.Error())
	}
	err = validation.ValidateItemLink(link)
	if err != nil {
		return nil, apperror.ValidationFailed("link", err.Error())
	}

	release, err := s.inflight.Acquire(userID, "item:create")
	if err != nil {
		return nil, err
	}
	defer release()

	item := &model.PortfolioItem{
		UserID:       userID,
		Title:        title,
		ExternalLink: link,
		Description:  description,
	}
	err = s.rows.CreateItem(ctx, sess.AccessToken, item)
	if err != nil {
		return nil, fromBackend(err, "Could not add item", "user_id", userID)
	}

	slog.Info("item created", "user_id", userID, "item_id", item.ID)
	return item, nil
}

// DeleteItem removes the item only if the session owns it. Deleting an
// id that no longer exists succeeds.
func (s *PortfolioService) DeleteItem(ctx context.Context, sess *model.Session, id string) error {
	userID, err := requireUser(sess)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "Missing item id")
	}

	release, err := s.inflight.Acquire(userID, "item:"+id)
	if err != nil {
		return err
	}
	defer release()

	err = s.rows.DeleteItem(ctx, sess.AccessToken, id, userID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fromBackend(err, "Could not delete item", "user_id", userID, "item_id", id)
	}

	slog.Info("item deleted", "user_id", userID, "item_id", id)
	return nil
}

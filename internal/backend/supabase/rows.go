package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
)

const (
	profilesPath = "/rest/v1/profiles"
	itemsPath    = "/rest/v1/portfolio_items"
)

func eq(v string) string {
	return "eq." + v
}

func (c *Client) Profile(ctx context.Context, accessToken, userID string) (*model.Profile, error) {
	return c.oneProfile(ctx, accessToken, url.Values{
		"select":  {"*"},
		"user_id": {eq(userID)},
	})
}

func (c *Client) ProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return c.oneProfile(ctx, "", url.Values{
		"select":   {"*"},
		"username": {eq(username)},
	})
}

func (c *Client) oneProfile(ctx context.Context, token string, query url.Values) (*model.Profile, error) {
	var rows []*model.Profile
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    profilesPath,
		query:   query,
		token:   token,
		jsonOut: &rows,
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, backend.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) UpsertProfile(ctx context.Context, accessToken string, profile *model.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   profilesPath,
		query:  url.Values{"on_conflict": {"user_id"}},
		token:  accessToken,
		header: http.Header{"Prefer": {"resolution=merge-duplicates,return=minimal"}},
		jsonIn: profile,
	})
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (c *Client) Items(ctx context.Context, accessToken, userID string) ([]*model.PortfolioItem, error) {
	return c.listItems(ctx, accessToken, url.Values{
		"select":  {"*"},
		"user_id": {eq(userID)},
		"order":   {"created_at.desc"},
	})
}

func (c *Client) PublicItems(ctx context.Context, userID string) ([]*model.PortfolioItem, error) {
	return c.listItems(ctx, "", url.Values{
		"select":  {"*"},
		"user_id": {eq(userID)},
	})
}

func (c *Client) listItems(ctx context.Context, token string, query url.Values) ([]*model.PortfolioItem, error) {
	items := []*model.PortfolioItem{}
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    itemsPath,
		query:   query,
		token:   token,
		jsonOut: &items,
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, accessToken string, item *model.PortfolioItem) error {
	var rows []*model.PortfolioItem
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    itemsPath,
		token:   accessToken,
		header:  http.Header{"Prefer": {"return=representation"}},
		jsonIn:  item,
		jsonOut: &rows,
	})
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("create item: %w: no row returned", backend.ErrUnavailable)
	}

	item.ID = rows[0].ID
	item.CreatedAt = rows[0].CreatedAt
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, accessToken, id, userID string) error {
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   itemsPath,
		query: url.Values{
			"id":      {eq(id)},
			"user_id": {eq(userID)},
		},
		token: accessToken,
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

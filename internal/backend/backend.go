// Package backend defines the request/response contract with the
// backend-as-a-service that owns users, rows and objects. Drivers live
// in subpackages: supabase (hosted) and local (self-hosted stand-in).
package backend

import (
	"context"
	"io"

	"github.com/craftfolio/craftfolio/internal/model"
)

// Auth issues and checks sessions.
type Auth interface {
	// SignUp creates an account. The returned session has an empty
	// AccessToken when the service requires email confirmation first.
	SignUp(ctx context.Context, email, password, fullName string) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	// User resolves the owner of an access token.
	User(ctx context.Context, accessToken string) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Rows is the owner-filtered row store. Calls made on behalf of a user
// carry that user's access token; public reads carry none.
type Rows interface {
	Profile(ctx context.Context, accessToken, userID string) (*model.Profile, error)
	ProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	// UpsertProfile creates or replaces the row keyed by profile.UserID.
	UpsertProfile(ctx context.Context, accessToken string, profile *model.Profile) error

	// Items lists the owner's items, newest first.
	Items(ctx context.Context, accessToken, userID string) ([]*model.PortfolioItem, error)
	// PublicItems lists a user's items without authentication, in the
	// store's default order.
	PublicItems(ctx context.Context, userID string) ([]*model.PortfolioItem, error)
	// CreateItem inserts item and fills the server-assigned ID and CreatedAt.
	CreateItem(ctx context.Context, accessToken string, item *model.PortfolioItem) error
	// DeleteItem removes the item only if it belongs to userID. A missing
	// row is not an error.
	DeleteItem(ctx context.Context, accessToken, id, userID string) error
}

// Objects stores binary assets and hands back a public URL.
type Objects interface {
	Upload(ctx context.Context, accessToken, path, contentType string, body io.Reader) (publicURL string, err error)
	// Remove deletes the object at path. A missing object is not an error.
	Remove(ctx context.Context, accessToken, path string) error
}

type Backend interface {
	Auth
	Rows
	Objects
}

package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
)

// authResponse is a GoTrue session, or a bare user when sign-up awaits
// email confirmation.
type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *model.User `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r *authResponse) session() *model.Session {
	user := r.User
	if user == nil && r.ID != "" {
		user = &model.User{ID: r.ID, Email: r.Email}
	}

	sess := &model.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		User:         user,
	}

	switch {
	case r.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		sess.ExpiresAt = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	case r.AccessToken != "":
		sess.ExpiresAt = TokenExpiry(r.AccessToken)
	}

	return sess
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*model.Session, error) {
	in := credentials{Email: email, Password: password}
	if fullName != "" {
		in.Data = map[string]any{"full_name": fullName}
	}

	var out authResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/v1/signup",
		jsonIn:  in,
		jsonOut: &out,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	sess := out.session()
	if sess.User == nil {
		return nil, fmt.Errorf("sign up: %w: response carried no user", backend.ErrUnavailable)
	}
	return sess, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	var out authResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/v1/token",
		query:   url.Values{"grant_type": {"password"}},
		jsonIn:  credentials{Email: email, Password: password},
		jsonOut: &out,
	})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return out.session(), nil
}

func (c *Client) User(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, backend.ErrUnauthorized
	}

	var user model.User
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/auth/v1/user",
		token:   accessToken,
		jsonOut: &user,
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	var out authResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/v1/token",
		query:   url.Values{"grant_type": {"refresh_token"}},
		jsonIn:  map[string]string{"refresh_token": refreshToken},
		jsonOut: &out,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return out.session(), nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	})
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// TokenExpiry reads the exp claim without verifying the signature. The
// service verifies tokens on every call; this only decides when to refresh.
func TokenExpiry(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

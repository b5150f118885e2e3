package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/craftfolio/craftfolio/internal/backend"
)

func (c *Client) Upload(ctx context.Context, accessToken, path, contentType string, body io.Reader) (string, error) {
	path = strings.TrimPrefix(path, "/")

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/storage/v1/object/%s/%s", c.bucket, path),
		token:  accessToken,
		header: http.Header{
			"Content-Type":  {contentType},
			"Cache-Control": {"max-age=3600"},
			"X-Upsert":      {"true"},
		},
		body: body,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	return c.PublicURL(path), nil
}

func (c *Client) Remove(ctx context.Context, accessToken, path string) error {
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/storage/v1/object/%s/%s", c.bucket, strings.TrimPrefix(path, "/")),
		token:  accessToken,
	})
	if errors.Is(err, backend.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, strings.TrimPrefix(path, "/"))
}

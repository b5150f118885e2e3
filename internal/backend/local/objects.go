package local

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/storage"
)

func (l *Local) Upload(ctx context.Context, accessToken, path, contentType string, body io.Reader) (string, error) {
	_, err := l.verify(accessToken)
	if err != nil {
		return "", err
	}

	err = l.storage.Save(ctx, path, contentType, body)
	if errors.Is(err, storage.ErrNotConfigured) {
		return "", backend.Rejected("File uploads are not enabled on this server")
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}

	return l.storage.PublicURL(path), nil
}

func (l *Local) Remove(ctx context.Context, accessToken, path string) error {
	_, err := l.verify(accessToken)
	if err != nil {
		return err
	}

	err = l.storage.Delete(ctx, path)
	if errors.Is(err, storage.ErrNotConfigured) {
		return backend.Rejected("File uploads are not enabled on this server")
	}
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}
	return nil
}

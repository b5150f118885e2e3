package service

import (
	"errors"
	"log/slog"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
)

const msgSessionExpired = "Your session has expired. Please log in again."

// requireUser returns the session owner. Nothing is fetched before the
// user id is known.
func requireUser(sess *model.Session) (string, error) {
	userID := sess.UserID()
	if userID == "" || sess.AccessToken == "" {
		return "", apperror.Auth(msgSessionExpired, nil)
	}
	return userID, nil
}

// fromBackend turns a driver error into the app taxonomy. failure is
// the message shown for transport errors, e.g. "Could not load profile".
func fromBackend(err error, failure string, attrs ...any) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return apperror.Auth(msgSessionExpired, err)
	case errors.Is(err, backend.ErrNotFound):
		return &apperror.AppError{Err: apperror.ErrNotFound, Message: "Not found", Cause: err}
	}

	if msg, ok := backend.RejectedMessage(err); ok {
		return &apperror.AppError{Err: apperror.ErrValidation, Message: msg, Cause: err}
	}

	slog.Error(failure, append(attrs, "error", err)...)
	return apperror.Transport(failure+". Please try again.", err)
}

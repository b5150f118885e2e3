package handler

import (
	"errors"
	"net/http"

	"github.com/craftfolio/craftfolio/internal/apperror"
)

// statusFor picks the status a page re-rendered after err is sent with.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageKind(err error) string {
	if err != nil {
		return "error"
	}
	return ""
}

func fieldOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

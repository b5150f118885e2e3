package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("backend: not found")
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrConflict     = errors.New("backend: conflict")
	ErrRejected     = errors.New("backend: request rejected")
	ErrUnavailable  = errors.New("backend: unavailable")
)

// APIError is a non-2xx answer from the service. Message is the
// service's own explanation and is safe to show for ErrRejected.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// Is maps the HTTP status onto the package sentinels.
func (e *APIError) Is(target error) bool {
	return target == kindOf(e.Status)
}

func kindOf(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 400 && status < 500:
		return ErrRejected
	default:
		return ErrUnavailable
	}
}

// Rejected builds an ErrRejected with a user-safe message.
func Rejected(message string) error {
	return &APIError{Status: http.StatusUnprocessableEntity, Message: message}
}

// RejectedMessage returns the service message of an ErrRejected error.
func RejectedMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && errors.Is(apiErr, ErrRejected) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

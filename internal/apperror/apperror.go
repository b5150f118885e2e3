package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrAuth       = errors.New("auth error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrTransport  = errors.New("transport error")
	ErrBusy       = errors.New("already in progress")
)

// genericMessage is shown for errors that carry no user-facing text.
const genericMessage = "Something went wrong. Please try again."

type AppError struct {
	Err     error  // sentinel kind
	Message string // user-facing message
	Field   string // optional: form field causing the error
	Cause   error  // optional: underlying error, for logs only
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func Auth(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrAuth,
		Message: message,
		Cause:   cause,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Transport wraps a network or service failure. The message is what the
// user sees; cause is only logged.
func Transport(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: message,
		Cause:   cause,
	}
}

func Busy(message string) *AppError {
	return &AppError{
		Err:     ErrBusy,
		Message: message,
	}
}

// UserMessage returns the short text to show for err. Errors outside the
// taxonomy never leak their details.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return genericMessage
}

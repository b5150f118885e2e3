package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{name: "NotFound wraps ErrNotFound", err: NotFound("profile", "u1"), target: ErrNotFound, wantMatch: true},
		{name: "ValidationFailed wraps ErrValidation", err: ValidationFailed("title", "title is required"), target: ErrValidation, wantMatch: true},
		{name: "Auth wraps ErrAuth", err: Auth("invalid login", nil), target: ErrAuth, wantMatch: true},
		{name: "Transport wraps ErrTransport", err: Transport("could not load", cause), target: ErrTransport, wantMatch: true},
		{name: "Transport exposes its cause", err: Transport("could not load", cause), target: cause, wantMatch: true},
		{name: "Busy wraps ErrBusy", err: Busy("saving"), target: ErrBusy, wantMatch: true},
		{name: "NotFound does not match ErrValidation", err: NotFound("item", "i1"), target: ErrValidation, wantMatch: false},
		{name: "wrapped with fmt.Errorf still matches", err: fmt.Errorf("create item: %w", ValidationFailed("link", "link is required")), target: ErrValidation, wantMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "item not found with id abc", NotFound("item", "abc").Error())
	assert.Equal(t, "title is required", ValidationFailed("title", "title is required").Error())
	assert.Equal(t, "could not load: boom", Transport("could not load", errors.New("boom")).Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error hides cause", err: Transport("Could not load your items.", errors.New("sql: secret")), want: "Could not load your items."},
		{name: "wrapped app error", err: fmt.Errorf("x: %w", Busy("Already saving.")), want: "Already saving."},
		{name: "foreign error is generic", err: errors.New("pq: relation does not exist"), want: genericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")
	assert.Equal(t, "email", err.Field)
}

package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required")
	}

	// RFC 5321: 254 characters total
	if len(email) > 254 {
		return errors.New("Email address is too long")
	}

	if !strings.Contains(email, "@") {
		return errors.New("Please enter a valid email address")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("Please enter a valid email address")
	}

	return nil
}

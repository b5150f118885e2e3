package validation

import "errors"

const MinPasswordLength = 6

// ValidatePassword enforces the auth service's own limits so a bad
// password never costs a round trip.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("Password must be at least 6 characters")
	}

	// bcrypt silently truncates passwords longer than 72 bytes
	if len(password) > 72 {
		return errors.New("Password must not exceed 72 characters")
	}

	return nil
}

func ValidatePasswordConfirm(password, confirm string) error {
	if password != confirm {
		return errors.New("Passwords do not match")
	}
	return nil
}

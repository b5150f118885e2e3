package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName validates the optional display name.
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 100 {
		return errors.New("Name is too long (max 100 characters)")
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > 2000 {
		return errors.New("Bio is too long (max 2000 characters)")
	}
	return nil
}

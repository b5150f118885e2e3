package validation

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

func ValidateItemTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("Title is required")
	}
	if utf8.RuneCountInString(title) > 200 {
		return errors.New("Title is too long (max 200 characters)")
	}
	return nil
}

// ValidateItemLink accepts absolute http(s) URLs only.
func ValidateItemLink(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return errors.New("Link is required")
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("Link must be a full http(s) URL")
	}
	return nil
}

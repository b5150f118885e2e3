package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,32}$`)

// Paths served at the root that a username would shadow.
var reservedUsernames = map[string]bool{
	"login":     true,
	"signup":    true,
	"logout":    true,
	"dashboard": true,
	"healthz":   true,
	"assets":    true,
	"api":       true,
}

// NormalizeUsername folds input into a lower-case ASCII slug:
// "Zoë Smith" becomes "zoe-smith".
func NormalizeUsername(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case r == '-' || r == '.' || unicode.IsSpace(r):
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// ValidateUsername expects an already normalized username.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return errors.New("Username must be 3-32 characters: letters, numbers, - or _")
	}
	if reservedUsernames[username] {
		return errors.New("This username is not available")
	}
	return nil
}

package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	UsernameMinLength    = 5
	UsernameMaxLength    = 50
	PasswordMinLength    = 8
	PasswordMaxLength    = 70
	DisplayNameMinLength = 5
	DisplayNameMaxLength = 50
)

var handleCharset = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NormalizeUsername lower-cases a username before any check runs. Whitespace
// is kept so the charset check rejects it.
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}

// ValidateNewUsername runs every account check in order, starting with the
// duplicate check. The username must already be normalized.
func ValidateNewUsername(username, password string, exists func(string) (bool, error)) error {
	taken, err := exists(username)
	if err != nil {
		return err
	}
	if taken {
		return fail(Duplicate, "Username already exists")
	}
	return ValidateAccount(username, password)
}

// ValidateAccount runs the post-duplicate checks for a new account in order:
// username length, password length, username charset.
func ValidateAccount(username, password string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength {
		return fail(TooShort, "Username too short; minimum length = 5")
	}
	if n > UsernameMaxLength {
		return fail(TooLong, "Username too long; maximum length = 50")
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if !handleCharset.MatchString(username) {
		return fail(InvalidCharacters, "Username invalid; alphanumeric characters only")
	}
	return nil
}

// ValidatePassword checks length only; there are no complexity rules.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return fail(TooShort, "Password too short; minimum length = 8")
	}
	if n > PasswordMaxLength {
		return fail(TooLong, "Password too long; maximum length = 70")
	}
	return nil
}

// ValidateDisplayName checks a profile display name.
func ValidateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < DisplayNameMinLength {
		return fail(TooShort, "Display name invalid; minimum length = 5")
	}
	if n > DisplayNameMaxLength {
		return fail(TooLong, "Display name invalid; maximum length = 50")
	}
	if !handleCharset.MatchString(name) {
		return fail(InvalidCharacters, "Display name invalid; alphanumeric characters only")
	}
	return nil
}

package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	TitleMinLength = 1
	TitleMaxLength = 100
	TagMaxLength   = 64
)

// ValidateTitle checks a scrap title on create and on update.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < TitleMinLength {
		return fail(TooShort, "Invalid; Title too short; minimum length = 1")
	}
	if n > TitleMaxLength {
		return fail(TooLong, "Invalid; Title too long; maximum length = 100")
	}
	return nil
}

// NormalizeTag truncates to 64 characters and replaces every rune that is not
// an ASCII letter or digit with an underscore. It never fails and is idempotent.
func NormalizeTag(name string) string {
	var b strings.Builder
	count := 0
	for _, r := range name {
		if count == TagMaxLength {
			break
		}
		if isASCIIAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		count++
	}
	return b.String()
}

// NormalizeTags normalizes names, dropping empty inputs and repeats while keeping order.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		if raw == "" {
			continue
		}
		name := NormalizeTag(raw)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

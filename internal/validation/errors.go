// Package validation provides input validation utilities
package validation

// Kind classifies a validation failure.
type Kind string

const (
	Duplicate         Kind = "duplicate"
	TooShort          Kind = "too_short"
	TooLong           Kind = "too_long"
	InvalidCharacters Kind = "invalid_characters"
	UnsupportedType   Kind = "unsupported_type"
	CorruptImage      Kind = "corrupt_image"
)

// Error is a failed check with the message shown to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// layoutIDRegex matches layout identifiers: a uuid4 rendered as 32 lowercase hex digits.
var layoutIDRegex = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidateLayoutID validates a stored layout identifier.
// IDs are used as file names and database keys, so anything other than
// 32 lowercase hex characters is rejected.
func ValidateLayoutID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidLayoutID, "layout id cannot be empty")
	}
	if !layoutIDRegex.MatchString(id) {
		return New(ErrCodeInvalidLayoutID, "invalid layout id: %q", id)
	}
	return nil
}

// ValidatePath validates a document path given on the command line or in config.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateColor validates a border or fill color.
// Accepted forms are #rgb, #rrggbb and plain CSS color keywords.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if colorRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidInput, "invalid color: %q", color)
}

var colorRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]+)$`)

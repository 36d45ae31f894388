package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// viewNameRegex matches names usable in anchor references ("name.kind").
var viewNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidateViewName validates a view or guide name from a layout document.
// Names are referenced as "name.kind", so dots and whitespace are rejected.
func ValidateViewName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDocument, "view name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidDocument, "view name too long (max 128 characters)")
	}

	if !viewNameRegex.MatchString(name) {
		return New(ErrCodeInvalidDocument, "invalid view name: %q", name)
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateSessionID validates a session identifier taken from a URL.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "session id too long")
	}
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return New(ErrCodeInvalidInput, "session id contains invalid characters")
		}
	}
	return nil
}

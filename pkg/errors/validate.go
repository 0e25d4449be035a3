package errors

import (
	"strings"
	"unicode"
)

// ValidateStyleName validates an output style name from user input.
// The accepted names are the style identifiers understood by the encoder
// ("flow", "tagged", "prefixed"); parsing into the concrete style type is
// done separately by the encode package.
func ValidateStyleName(name string) error {
	switch name {
	case "flow", "tagged", "prefixed":
		return nil
	case "":
		return New(ErrCodeInvalidStyle, "style cannot be empty")
	default:
		return New(ErrCodeInvalidStyle, "unknown style %q (want flow, tagged, or prefixed)", name)
	}
}

// ValidateOutputDir validates a user-supplied output directory path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output directory too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output directory contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "output directory cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateMaterialFilter validates a --material filter argument.
// Filters match against material display names, which may contain almost
// anything; only clearly broken input is rejected.
func ValidateMaterialFilter(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "material filter cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "material filter too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "material filter contains control characters")
		}
	}
	return nil
}

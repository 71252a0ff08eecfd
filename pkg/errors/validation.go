package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateScale checks the post-crop padding multiplier.
// Values below 1 are allowed and shrink the box below the content bounds;
// only values that would produce a non-finite or empty viewBox are rejected.
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return New(ErrCodeConfiguration, "scale must be a finite number, got: %v", scale)
	}
	if scale <= 0 {
		return New(ErrCodeConfiguration, "scale must be positive, got: %v", scale)
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateControlURL validates a browser DevTools endpoint.
// It ensures the URL uses a websocket or http scheme.
func ValidateControlURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "control URL cannot be empty")
	}

	for _, scheme := range []string{"ws://", "wss://", "http://", "https://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "control URL must use ws, wss, http or https scheme")
}

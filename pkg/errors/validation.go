package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateFileName checks an uploaded file name before it is echoed into
// logs, cache keys, or rendered output. Only a base name is accepted.
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "file name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains control characters")
		}
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name cannot contain path components: %q", name)
	}
	return nil
}

// ValidateDimensions rejects render sizes that cannot produce a chart.
// Zero is allowed and means "use the default".
func ValidateDimensions(width, height, fontSize float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}, {"font size", fontSize}} {
		if d.v < 0 {
			return New(ErrCodeInvalidInput, "%s must not be negative (got %g)", d.name, d.v)
		}
		if d.v > 20000 {
			return New(ErrCodeInvalidInput, "%s too large (got %g, max 20000)", d.name, d.v)
		}
	}
	return nil
}

// BaseName returns the final element of path for display purposes.
func BaseName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}

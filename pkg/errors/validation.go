package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds resource names, chart IDs and series keys.
const maxNameLength = 256

// ValidateResourceName validates a dataset resource name for safety.
// Resource names are simple basenames such as "q1_offence_category.json";
// they are joined onto a data directory, a base URL or used as a document ID,
// so anything that could escape those roots is rejected:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden files
//   - Maximum length of 256 characters
func ValidateResourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidResource, "resource name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidResource, "resource name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidResource, "resource name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidResource, "resource name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidResource, "resource name cannot be a hidden file")
	}

	return nil
}

// chartIDRegex matches catalog chart identifiers (q1, q10, ...).
var chartIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// ValidateChartID validates a chart identifier.
func ValidateChartID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidChart, "chart id cannot be empty")
	}
	if !chartIDRegex.MatchString(id) {
		return New(ErrCodeInvalidChart, "invalid chart id: %q", id)
	}
	return nil
}

// ValidateKey validates a series key received from a UI control.
// Keys come from dataset column names, so only length and control
// characters are checked.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "series key cannot be empty")
	}
	if len(key) > maxNameLength {
		return New(ErrCodeInvalidInput, "series key too long (max %d characters)", maxNameLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "series key contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

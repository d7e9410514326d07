package memory

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field limits in characters, shared with the original wire contract.
const (
	MaxContentLength = 10000
	MaxContextLength = 1000
	MaxTagLength     = 50
)

// ValidationError reports a rejected input. It always names the offending
// field so callers can produce a precise message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// validateContent trims and bounds memory content.
func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("content", "cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", invalid("content", "too long (max %d characters)", MaxContentLength)
	}
	return content, nil
}

// validateContext trims and bounds the optional context string. An empty
// result means absent.
func validateContext(context string) (string, error) {
	context = strings.TrimSpace(context)
	if utf8.RuneCountInString(context) > MaxContextLength {
		return "", invalid("context", "too long (max %d characters)", MaxContextLength)
	}
	return context, nil
}

// normalizeTags trims, lower-cases and deduplicates tag names, preserving
// first-occurrence order. Empty entries are dropped; an empty result
// normalizes to nil.
func normalizeTags(tags []string) ([]string, error) {
	var cleaned []string
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, invalid("tags", "tag too long (max %d characters): %q", MaxTagLength, tag)
		}
		if !seen[tag] {
			seen[tag] = true
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned, nil
}

func validateID(id int64) error {
	if id <= 0 {
		return invalid("id", "must be positive")
	}
	return nil
}

// validateLimit accepts zero as the "no limit" sentinel; only negative
// values are rejected.
func validateLimit(limit int) error {
	if limit < 0 {
		return invalid("limit", "must be non-negative")
	}
	return nil
}

func validateOffset(offset int) error {
	if offset < 0 {
		return invalid("offset", "must be non-negative")
	}
	return nil
}

// Package security neutralises untrusted resume and job description input.
package security

import (
	"html"
	"strings"
	"unicode"

	apperrors "nexus-talent/internal/common/errors"
)

// SanitizeInput HTML-escapes text, drops non-printable runes and collapses
// whitespace runs into a single space.
func SanitizeInput(text string) string {
	if text == "" {
		return ""
	}
	escaped := html.EscapeString(text)

	var b strings.Builder
	b.Grow(len(escaped))
	pendingSpace := false
	for _, r := range escaped {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case !unicode.IsPrint(r):
			// dropped
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// ValidateFileSize rejects uploads larger than maxMB megabytes.
func ValidateFileSize(size int64, maxMB int) error {
	if size > int64(maxMB)*1024*1024 {
		return apperrors.NewResumeTooLargeError(size, maxMB)
	}
	return nil
}

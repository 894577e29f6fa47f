// Package sanitizer provides pure string normalization helpers used at the
// input boundary. Every function is total: no side effects, no failure
// conditions.
package sanitizer

import (
	"html"
	"strings"
)

// Trim removes leading and trailing whitespace from a string.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// EscapeHTML escapes HTML special characters so user-supplied content cannot
// inject markup when stored or embedded in notifications. Escaping is not
// idempotent: applying it to already-escaped text double-encodes entities,
// so it must run exactly once per pipeline pass.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Field normalizes a single submitted form value: whitespace trimmed, HTML
// escaped.
func Field(s string) string {
	return EscapeHTML(strings.TrimSpace(s))
}

// SingleLine collapses CR and LF into spaces. Values that end up in email
// headers must never carry line breaks (header injection).
func SingleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// MaxLength truncates a string to the specified maximum length in bytes.
func MaxLength(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

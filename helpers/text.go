// Package helpers holds small text utilities shared by the importer and CLI.
package helpers

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)

// CleanLabel prepares a free-text name from an ORCID record for use as a
// vocabulary key: markup is removed, entities are decoded and whitespace
// runs collapse to one space.
func CleanLabel(s string) string {
	if s == "" {
		return ""
	}
	if IsHTML(s) {
		s = htmlTagRegex.ReplaceAllString(s, " ")
	}
	s = html.UnescapeString(s)
	return NormalizeWhitespace(s)
}

// IsHTML checks if a string appears to contain HTML markup.
func IsHTML(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// NormalizeWhitespace normalizes all whitespace to single spaces and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// TruncateText truncates text to a maximum length, adding ellipsis if needed.
func TruncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}

	// Try to truncate at a word boundary
	truncated := s[:maxLen-3]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

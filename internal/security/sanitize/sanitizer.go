// Package sanitize neutralizes prompt-injection attempts and unsafe
// characters in inquiry text and metadata before they reach the
// classification pipeline. Sanitization is best-effort and never fails:
// malicious content is stripped, not rejected.
package sanitize

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	maxTextLength     = 5000
	maxMetadataBytes  = 1024
	maxStringValueLen = 256
	maxListItems      = 10
	maxListItemLen    = 100
)

// Patterns that read as attempts to steer the model. Matches are removed
// from the text; classification proceeds on whatever remains.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+all\s+previous`),
	regexp.MustCompile(`(?i)disregard\s+instructions`),
	regexp.MustCompile(`(?i)system\s*:\s*`),
	regexp.MustCompile(`(?i)assistant\s*:\s*`),
	regexp.MustCompile(`(?i)###\s*instruction`),
	regexp.MustCompile(`(?i)<\|.*?\|>`),
	regexp.MustCompile(`(?i)\[INST\].*?\[/INST\]`),
}

// Control characters other than newline and tab.
var controlCharPattern = regexp.MustCompile(`[\x{0000}-\x{0008}\x{000B}\x{000C}\x{000E}-\x{001F}\x{007F}-\x{009F}]`)

var whitespacePattern = regexp.MustCompile(`\s+`)

var metadataKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Text returns a safe derivative of raw inquiry text.
func Text(text string) string {
	if text == "" {
		return ""
	}

	text = truncateRunes(text, maxTextLength)

	for _, pattern := range injectionPatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	text = html.EscapeString(text)
	text = controlCharPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Metadata keeps only well-formed keys and simple values. An oversized
// metadata object is rejected wholesale rather than trimmed field by field.
func Metadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}

	if serialized, err := json.Marshal(metadata); err != nil || len(serialized) > maxMetadataBytes {
		return map[string]any{}
	}

	sanitized := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if !metadataKeyPattern.MatchString(key) {
			continue
		}
		switch v := value.(type) {
		case string:
			sanitized[key] = truncateRunes(html.EscapeString(v), maxStringValueLen)
		case bool, int, int32, int64, float32, float64, json.Number:
			sanitized[key] = v
		case []any:
			items := v
			if len(items) > maxListItems {
				items = items[:maxListItems]
			}
			cleaned := make([]string, 0, len(items))
			for _, item := range items {
				cleaned = append(cleaned, truncateRunes(html.EscapeString(fmt.Sprint(item)), maxListItemLen))
			}
			sanitized[key] = cleaned
		default:
			// Nested objects and anything else are dropped silently.
		}
	}
	return sanitized
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

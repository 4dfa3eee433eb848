package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all HTML tags and attributes.
	StrictPolicy = bluemonday.StrictPolicy()

	// UGCPolicy keeps safe formatting (paragraphs, emphasis, lists, links).
	UGCPolicy = bluemonday.UGCPolicy()
)

// maxDecodePasses bounds nested entity decoding in Text.
const maxDecodePasses = 4

// Text strips all HTML and trims surrounding space. Entities the policy
// escapes are decoded again since the output is served as JSON, not HTML,
// and the decoded text is stripped once more so encoded markup stays out.
// Use for titles, company names, locations and other plain fields.
func Text(input string) string {
	out := input
	for range maxDecodePasses {
		next := html.UnescapeString(StrictPolicy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(StrictPolicy.Sanitize(out))
}

// HTML sanitizes posting descriptions, allowing safe formatting tags.
func HTML(input string) string {
	return strings.TrimSpace(UGCPolicy.Sanitize(input))
}

// TextSlice sanitizes each entry and drops the ones left empty.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if clean := Text(input); clean != "" {
			sanitized = append(sanitized, clean)
		}
	}
	return sanitized
}

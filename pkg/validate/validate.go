// Package validate rejects malformed URLs before any network I/O happens.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationError reports a URL that failed validation. It always fails
// fast; no network call is attempted for an invalid URL.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.Input, e.Reason)
}

// urlPattern requires an explicit http(s) scheme and a plausible domain.
var urlPattern = regexp.MustCompile(`^https?://[a-zA-Z0-9][-a-zA-Z0-9.]*[a-zA-Z0-9](:[0-9]+)?(/[^\s]*)?$`)

// markdownLinkPattern extracts the target from "[text](url)".
var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// Sanitize performs basic cleanup on URLs to handle common copy-paste
// issues: surrounding whitespace, trailing punctuation, and markdown
// link syntax.
func Sanitize(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// Validate sanitizes and validates a URL, returning the cleaned absolute
// URL. Pure function: no I/O, no side effects.
func Validate(input string) (string, error) {
	cleaned := Sanitize(input)

	if cleaned == "" {
		return "", &ValidationError{Input: input, Reason: "empty after cleanup"}
	}
	if strings.Contains(cleaned, " ") {
		return "", &ValidationError{Input: input, Reason: "contains unencoded spaces"}
	}
	if !urlPattern.MatchString(cleaned) {
		return "", &ValidationError{Input: input, Reason: "must be an absolute http(s) URL"}
	}

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return "", &ValidationError{Input: input, Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &ValidationError{Input: input, Reason: "scheme must be http or https"}
	}
	if parsed.Host == "" {
		return "", &ValidationError{Input: input, Reason: "missing host"}
	}
	if strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return "", &ValidationError{Input: input, Reason: "malformed host"}
	}

	return cleaned, nil
}

package analyzer

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/scrapekeeper/models"
)

// categoryRules is an ordered rule table evaluated deterministically
// against the lowercased title and description; the first matching
// pattern wins.
var categoryRules = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`news|article|breaking|report`), "news"},
	{regexp.MustCompile(`blog|post|author`), "blog"},
	{regexp.MustCompile(`docs|documentation|api|guide|tutorial`), "documentation"},
	{regexp.MustCompile(`shop|buy|cart|product|price`), "e-commerce"},
	{regexp.MustCompile(`social|profile|follow|share`), "social"},
	{regexp.MustCompile(`learn|course|education|school|university`), "educational"},
	{regexp.MustCompile(`video|movie|music|game|entertainment`), "entertainment"},
	{regexp.MustCompile(`business|company|service|enterprise`), "business"},
	{regexp.MustCompile(`tech|software|code|developer|programming`), "technology"},
}

// DetectCategory classifies a document by keyword heuristics.
func DetectCategory(doc *models.StructuredDocument) string {
	text := strings.ToLower(doc.Title + " " + doc.Description)
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			return rule.label
		}
	}
	return "other"
}

package analyzer

import (
	"strings"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

// Fallback builds a deterministic analysis purely from the structured
// document, with no network dependency. It is substituted whenever the
// AI collaborator fails, and tagged so consumers can tell the analysis
// is degraded.
func Fallback(doc *models.StructuredDocument) *models.Analysis {
	summary := doc.Description
	if summary == "" && len(doc.Paragraphs) > 0 {
		summary = doc.Paragraphs[0]
	}
	if summary == "" {
		summary = "This webpage contains information about " + doc.Title
	}
	summary = truncate(summary, 300)

	keyPoints := make([]string, 0, 5)
	for _, h := range doc.Headings {
		keyPoints = append(keyPoints, h.Text)
		if len(keyPoints) == 5 {
			break
		}
	}
	if len(keyPoints) == 0 {
		keyPoints = []string{"Content analysis available"}
	}

	return &models.Analysis{
		Summary:    summary,
		KeyPoints:  keyPoints,
		Category:   DetectCategory(doc),
		Sentiment:  "neutral",
		Purpose:    "General web content",
		Topics:     extractTopics(doc),
		Provider:   models.ProviderFallback,
		Confidence: "low",
		Note:       "AI analysis unavailable - using basic analysis",
		AnalyzedAt: time.Now().UTC(),
	}
}

// extractTopics pulls up to five topic candidates from the keyword
// metadata and the leading headings.
func extractTopics(doc *models.StructuredDocument) []string {
	topics := []string{}
	seen := map[string]struct{}{}

	add := func(topic string) {
		topic = strings.TrimSpace(topic)
		if topic == "" || len(topics) >= 5 {
			return
		}
		if _, dup := seen[topic]; dup {
			return
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}

	if doc.Metadata.Keywords != "" {
		for _, keyword := range strings.Split(doc.Metadata.Keywords, ",") {
			add(keyword)
		}
	}

	headings := doc.Headings
	if len(headings) > 3 {
		headings = headings[:3]
	}
	for _, h := range headings {
		count := 0
		for _, word := range strings.Fields(h.Text) {
			if len(word) > 4 {
				add(word)
				count++
				if count == 2 {
					break
				}
			}
		}
	}

	return topics
}

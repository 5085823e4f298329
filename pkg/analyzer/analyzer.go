// Package analyzer produces content analysis for structured documents.
// The AI-backed client is best-effort by policy: callers absorb its
// failures and fall back to a deterministic analysis derived purely
// from the document.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/scrapekeeper/models"
)

// Analyzer is the contract an analysis backend satisfies. GeminiClient
// is the only implementation today.
type Analyzer interface {
	Analyze(ctx context.Context, doc *models.StructuredDocument, customPrompt string) (*models.Analysis, error)
}

// PrepareContent flattens a structured document into the text block
// submitted for analysis: title, description, metadata highlights,
// content stats, heading hierarchy, leading paragraphs, and image alt
// text.
func PrepareContent(doc *models.StructuredDocument) string {
	var parts []string

	if doc.Title != "" {
		parts = append(parts, "Title: "+doc.Title)
	}
	if doc.URL != "" {
		parts = append(parts, "URL: "+doc.URL)
	}
	if doc.Description != "" {
		parts = append(parts, "Description: "+doc.Description)
	}

	if doc.Metadata.Author != "" {
		parts = append(parts, "Author: "+doc.Metadata.Author)
	}
	if doc.Metadata.Keywords != "" {
		parts = append(parts, "Keywords: "+doc.Metadata.Keywords)
	}
	if doc.Metadata.OGType != "" {
		parts = append(parts, "Type: "+doc.Metadata.OGType)
	}

	var stats []string
	if doc.ContentStats.WordCount > 0 {
		stats = append(stats, fmt.Sprintf("%d words", doc.ContentStats.WordCount))
	}
	if doc.ContentStats.ReadingTime > 0 {
		stats = append(stats, fmt.Sprintf("%d min read", doc.ContentStats.ReadingTime))
	}
	if doc.ContentStats.HasVideo {
		stats = append(stats, "contains video")
	}
	if doc.ContentStats.HasForm {
		stats = append(stats, "has forms")
	}
	if len(stats) > 0 {
		parts = append(parts, "Stats: "+strings.Join(stats, ", "))
	}

	var mains, subs []string
	for _, h := range doc.Headings {
		switch h.Level {
		case 1:
			mains = append(mains, h.Text)
		case 2:
			if len(subs) < 5 {
				subs = append(subs, h.Text)
			}
		}
	}
	if len(mains) > 0 {
		parts = append(parts, "Main Heading: "+strings.Join(mains, ", "))
	}
	if len(subs) > 0 {
		parts = append(parts, "Subheadings: "+strings.Join(subs, ", "))
	}

	if len(doc.Paragraphs) > 0 {
		n := len(doc.Paragraphs)
		if n > 5 {
			n = 5
		}
		main := truncate(strings.Join(doc.Paragraphs[:n], " "), 3000)
		parts = append(parts, "Main Content:\n"+main)
	}

	var alts []string
	for _, img := range doc.Images {
		if img.Alt != "" {
			alts = append(alts, img.Alt)
			if len(alts) == 5 {
				break
			}
		}
	}
	if len(alts) > 0 {
		parts = append(parts, "Image descriptions: "+strings.Join(alts, ", "))
	}

	return strings.Join(parts, "\n\n")
}

// truncate cuts a string to at most n runes without splitting a
// multi-byte character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/scrapekeeper/models"
	readability "github.com/go-shiori/go-readability"
)

// ExtractAuto runs the static extraction and, when it yields no
// paragraphs at all, retries with readability content distillation.
// Pages built entirely from divs or heavy templating often defeat the
// paragraph selectors while readability still finds the article body.
func (e *Extractor) ExtractAuto(body, sourceURL string, selectors map[string]string) *models.StructuredDocument {
	scraped := e.Extract(body, sourceURL, selectors)
	if len(scraped.Paragraphs) > 0 {
		return scraped
	}
	e.applyReadability(scraped, body, sourceURL)
	return scraped
}

// applyReadability fills the paragraph, title, and author gaps of a
// near-empty document from the readability-distilled article. The
// document keeps its static fields; only missing ones are supplied.
func (e *Extractor) applyReadability(scraped *models.StructuredDocument, body, sourceURL string) {
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(body), parsedURL)
	if err != nil {
		return
	}

	paragraphs := []string{}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); err == nil {
		paragraphs = extractParagraphs(doc)
	}
	if len(paragraphs) == 0 {
		// Distilled content without <p> structure: keep the flat text
		// as a single bounded paragraph.
		text := strings.Join(strings.Fields(article.TextContent), " ")
		if len(text) > minParagraphLen {
			paragraphs = []string{truncate(text, maxParagraphLen)}
		}
	}
	if len(paragraphs) == 0 {
		return
	}

	scraped.Paragraphs = paragraphs
	scraped.Method = models.MethodReadabilityFallback

	if scraped.Title == "No title" && strings.TrimSpace(article.Title) != "" {
		scraped.Title = strings.TrimSpace(article.Title)
	}
	if scraped.Description == "" && strings.TrimSpace(article.Excerpt) != "" {
		scraped.Description = truncate(strings.TrimSpace(article.Excerpt), descriptionLen)
	}
	if scraped.Metadata.Author == "" {
		scraped.Metadata.Author = strings.TrimSpace(article.Byline)
	}
	if scraped.ContentStats.WordCount == 0 {
		if words := len(strings.Fields(article.TextContent)); words > 0 {
			scraped.ContentStats.WordCount = words
			scraped.ContentStats.ReadingTime = (words + 199) / 200
		}
	}
	if scraped.Metadata.Language == "en" {
		scraped.Metadata.Language = detectLanguage(strings.Join(paragraphs, " "))
	}
}

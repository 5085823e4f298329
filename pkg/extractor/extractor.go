// Package extractor turns raw markup into a bounded, deduplicated
// structured document. It is tolerant of malformed markup: extraction
// never fails, the worst case is near-empty fields.
package extractor

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/scrapekeeper/models"
)

// Caps and truncation limits for the bounded document. One canonical
// set of constants; capped sequences never exceed them.
const (
	maxHeadings   = 50
	maxParagraphs = 20
	maxLinks      = 50
	maxImages     = 30

	maxHeadingLen   = 300
	maxParagraphLen = 800
	maxLinkTextLen  = 150
	maxAltLen       = 250
	descriptionLen  = 200

	minParagraphLen = 30
	minHeadingLen   = 2
)

// mainContentSelector locates the primary content container for word
// count and reading time. Only the first match counts.
const mainContentSelector = "article, main, .content, .post-content, .entry-content"

// boilerplatePattern filters navigation and consent noise out of the
// paragraph list.
var boilerplatePattern = regexp.MustCompile(`(?i)^(cookie|accept|deny|close|menu|nav)`)

type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract parses markup into a structured document. sourceURL should be
// the redirect-resolved address so link externality is classified
// against the host that actually served the page. The optional
// selectors map populates the document's custom field, iterated in
// stable (sorted key) order.
func (e *Extractor) Extract(body, sourceURL string, selectors map[string]string) *models.StructuredDocument {
	scraped := &models.StructuredDocument{
		URL:        sourceURL,
		Headings:   []models.Heading{},
		Paragraphs: []string{},
		Links:      []models.Link{},
		Images:     []models.Image{},
		ScrapedAt:  e.now(),
		Method:     models.MethodStatic,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		scraped.Title = "No title"
		scraped.Metadata.Language = "en"
		return scraped
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}

	// Media flags come from the full document: embedded frames are
	// stripped below, but an embed host is still a video signal.
	scraped.ContentStats = models.ContentStats{
		HasVideo: doc.Find(`video, iframe[src*="youtube"], iframe[src*="vimeo"]`).Length() > 0,
		HasAudio: doc.Find("audio").Length() > 0,
		HasForm:  doc.Find("form").Length() > 0,
	}

	// Strip non-content elements so they cannot pollute text extraction.
	doc.Find("script, style, noscript, iframe").Remove()

	scraped.Title = extractTitle(doc)
	scraped.Metadata = extractMetadata(doc)

	scraped.Headings = extractHeadings(doc)
	scraped.Paragraphs = extractParagraphs(doc)
	scraped.Description = extractDescription(doc, scraped.Metadata)

	if scraped.Metadata.Language == "" {
		scraped.Metadata.Language = detectLanguage(strings.Join(scraped.Paragraphs, " "))
	}

	if words := mainContentWords(doc); words > 0 {
		scraped.ContentStats.WordCount = words
		scraped.ContentStats.ReadingTime = (words + 199) / 200
	}

	scraped.Links = extractLinks(doc, base)
	scraped.Images = extractImages(doc, base)

	if len(selectors) > 0 {
		scraped.Custom = extractCustom(doc, selectors)
	}

	return scraped
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "No title"
}

func extractDescription(doc *goquery.Document, meta models.Metadata) string {
	if desc, _ := doc.Find(`meta[name="description"]`).Attr("content"); strings.TrimSpace(desc) != "" {
		return strings.TrimSpace(desc)
	}
	if meta.OGDescription != "" {
		return meta.OGDescription
	}
	if first := strings.TrimSpace(doc.Find("p").First().Text()); first != "" {
		return truncate(first, descriptionLen)
	}
	return ""
}

func extractMetadata(doc *goquery.Document) models.Metadata {
	metaContent := func(selector string) string {
		value, _ := doc.Find(selector).Attr("content")
		return strings.TrimSpace(value)
	}

	lang, _ := doc.Find("html").Attr("lang")
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")

	return models.Metadata{
		Author:        metaContent(`meta[name="author"]`),
		Keywords:      metaContent(`meta[name="keywords"]`),
		OGTitle:       metaContent(`meta[property="og:title"]`),
		OGDescription: metaContent(`meta[property="og:description"]`),
		OGImage:       metaContent(`meta[property="og:image"]`),
		OGType:        metaContent(`meta[property="og:type"]`),
		OGURL:         metaContent(`meta[property="og:url"]`),
		TwitterCard:   metaContent(`meta[name="twitter:card"]`),
		TwitterTitle:  metaContent(`meta[name="twitter:title"]`),
		Canonical:     strings.TrimSpace(canonical),
		Language:      strings.TrimSpace(lang),
	}
}

func extractHeadings(doc *goquery.Document) []models.Heading {
	headings := []models.Heading{}
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		if len(headings) >= maxHeadings {
			return
		}
		text := strings.TrimSpace(s.Text())
		if len(text) <= minHeadingLen {
			return
		}
		tag := goquery.NodeName(s)
		headings = append(headings, models.Heading{
			Level: int(tag[1] - '0'),
			Tag:   tag,
			Text:  truncate(text, maxHeadingLen),
		})
	})
	return headings
}

func extractParagraphs(doc *goquery.Document) []string {
	paragraphs := []string{}
	doc.Find("p, article p, main p, .content p").Each(func(i int, s *goquery.Selection) {
		if len(paragraphs) >= maxParagraphs {
			return
		}
		text := strings.TrimSpace(s.Text())
		if len(text) <= minParagraphLen || boilerplatePattern.MatchString(text) {
			return
		}
		paragraphs = append(paragraphs, truncate(text, maxParagraphLen))
	})
	return paragraphs
}

func mainContentWords(doc *goquery.Document) int {
	content := strings.TrimSpace(doc.Find(mainContentSelector).First().Text())
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}

func extractLinks(doc *goquery.Document, base *url.URL) []models.Link {
	links := []models.Link{}
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		if len(links) >= maxLinks {
			return
		}
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if href == "" || text == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		absolute := resolveURL(base, href)
		if absolute == "" {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}

		external := false
		if resolved, err := url.Parse(absolute); err == nil && base != nil {
			external = resolved.Hostname() != base.Hostname()
		}
		links = append(links, models.Link{
			URL:        absolute,
			Text:       truncate(text, maxLinkTextLen),
			IsExternal: external,
		})
	})
	return links
}

func extractImages(doc *goquery.Document, base *url.URL) []models.Image {
	images := []models.Image{}
	seen := map[string]struct{}{}

	doc.Find("img[src], picture img, figure img").Each(func(i int, s *goquery.Selection) {
		if len(images) >= maxImages {
			return
		}
		src, _ := s.Attr("src")
		if src == "" || strings.HasSuffix(src, ".svg") || strings.Contains(src, "data:image") {
			return
		}
		absolute := resolveURL(base, src)
		if absolute == "" {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}

		alt, _ := s.Attr("alt")
		width, _ := s.Attr("width")
		height, _ := s.Attr("height")
		images = append(images, models.Image{
			Src:    absolute,
			Alt:    truncate(strings.TrimSpace(alt), maxAltLen),
			Width:  width,
			Height: height,
		})
	})
	return images
}

// extractCustom evaluates user-supplied selectors in sorted key order so
// the resulting map is populated deterministically.
func extractCustom(doc *goquery.Document, selectors map[string]string) map[string]string {
	keys := make([]string, 0, len(selectors))
	for key := range selectors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	custom := make(map[string]string, len(keys))
	for _, key := range keys {
		custom[key] = strings.TrimSpace(doc.Find(selectors[key]).First().Text())
	}
	return custom
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if !parsed.IsAbs() {
		return ""
	}
	return parsed.String()
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

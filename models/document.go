// Package models defines the data structures exchanged between the
// acquisition engine, the store, and the analysis collaborator.
package models

import "time"

// Acquisition method tags recorded on every document.
const (
	MethodStatic              = "static"
	MethodReadabilityFallback = "readability-fallback"
)

// StructuredDocument is the normalized, bounded representation of a web
// page produced by extraction. Field names are part of the external wire
// contract and must stay stable for store/API compatibility.
type StructuredDocument struct {
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Headings     []Heading         `json:"headings"`
	Paragraphs   []string          `json:"paragraphs"`
	Links        []Link            `json:"links"`
	Images       []Image           `json:"images"`
	Metadata     Metadata          `json:"metadata"`
	ContentStats ContentStats      `json:"contentStats"`
	Custom       map[string]string `json:"custom,omitempty"`

	AIAnalysis     *Analysis `json:"aiAnalysis,omitempty"`
	AIAnalysisNote string    `json:"aiAnalysisNote,omitempty"`

	ScrapedAt time.Time `json:"scrapedAt"`
	Method    string    `json:"method"`
}

// Heading is a single document heading in document order.
type Heading struct {
	Level int    `json:"level"` // 1-6
	Tag   string `json:"tag"`   // h1..h6
	Text  string `json:"text"`
}

// Link is a hyperlink resolved to an absolute URL. Links are unique by
// resolved URL within a document.
type Link struct {
	URL        string `json:"url"`
	Text       string `json:"text"`
	IsExternal bool   `json:"isExternal"`
}

// Image is an image reference resolved to an absolute URL. Images are
// unique by resolved URL within a document.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

// Metadata holds the fixed set of page metadata keys. Absent values are
// empty strings, never null.
type Metadata struct {
	Author        string `json:"author"`
	Keywords      string `json:"keywords"`
	OGTitle       string `json:"og_title"`
	OGDescription string `json:"og_description"`
	OGImage       string `json:"og_image"`
	OGType        string `json:"og_type"`
	OGURL         string `json:"og_url"`
	TwitterCard   string `json:"twitter_card"`
	TwitterTitle  string `json:"twitter_title"`
	Canonical     string `json:"canonical"`
	Language      string `json:"language"`
}

// ContentStats summarizes the main content of a page. WordCount and
// ReadingTime stay zero when no main-content container exists.
type ContentStats struct {
	WordCount   int  `json:"wordCount"`
	ReadingTime int  `json:"readingTime"` // minutes, ceil(words/200)
	HasVideo    bool `json:"hasVideo"`
	HasAudio    bool `json:"hasAudio"`
	HasForm     bool `json:"hasForm"`
}

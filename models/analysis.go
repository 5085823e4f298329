package models

import "time"

// Analysis providers. ProviderFallback marks a deterministic analysis
// derived purely from the structured document, produced when the AI
// collaborator is unavailable.
const (
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
)

// Analysis is the result of analyzing a structured document, either by
// the AI collaborator or by the deterministic fallback.
type Analysis struct {
	Summary    string    `json:"summary"`
	KeyPoints  []string  `json:"keyPoints"`
	Category   string    `json:"category"`
	Sentiment  string    `json:"sentiment"`
	Purpose    string    `json:"purpose,omitempty"`
	Topics     []string  `json:"topics,omitempty"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model,omitempty"`
	Confidence string    `json:"confidence,omitempty"` // high | low
	Note       string    `json:"note,omitempty"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

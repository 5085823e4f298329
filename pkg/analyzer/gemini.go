package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	defaultGeminiBase  = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiTimeout      = 45 * time.Second
)

// defaultPrompt asks for the structured five-point analysis the engine
// stores alongside each document.
const defaultPrompt = `Analyze this web page content and provide:
1. A concise summary (2-3 sentences)
2. 5 key points or main topics
3. Category (news, blog, documentation, e-commerce, social, educational, entertainment, business, technology, other)
4. Sentiment (positive, negative, neutral, mixed)
5. Main purpose of the page

Respond with ONLY valid JSON in this shape:
{"summary": "...", "keyPoints": ["..."], "category": "...", "sentiment": "...", "purpose": "...", "topics": ["..."]}`

// GeminiClient analyzes documents with the Gemini generateContent API.
// Construct one explicitly and inject it; there is no process-wide
// client state.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

var _ Analyzer = (*GeminiClient)(nil)

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBase,
		client:  &http.Client{Timeout: geminiTimeout},
		now:     time.Now,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Config   geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the prepared document content to Gemini and parses the
// JSON analysis out of the model's reply. Any failure (missing key,
// transport, bad status, unparseable reply) is returned to the caller,
// which is expected to substitute the deterministic fallback.
func (c *GeminiClient) Analyze(ctx context.Context, doc *models.StructuredDocument, customPrompt string) (*models.Analysis, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	prompt := buildPrompt(PrepareContent(doc), customPrompt)

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Config: geminiGenConfig{
			Temperature:     0.8,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 4096,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	analysis := &models.Analysis{}
	text := extractJSON(geminiResp.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), analysis); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}

	analysis.Provider = models.ProviderGemini
	analysis.Model = c.model
	analysis.Confidence = "high"
	analysis.AnalyzedAt = c.now()
	return analysis, nil
}

func buildPrompt(content, customPrompt string) string {
	instructions := defaultPrompt
	if strings.TrimSpace(customPrompt) != "" {
		instructions = strings.TrimSpace(customPrompt) +
			"\n\nIMPORTANT: Respond with valid JSON format containing your analysis."
	}
	return instructions + "\n\nContent:\n" + content
}

// extractJSON strips markdown code fences and trailing prose from a
// model reply, keeping everything up to the last closing brace.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if end := strings.LastIndex(text, "}"); end != -1 {
		text = text[:end+1]
	}
	return text
}

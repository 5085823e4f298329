// Package engine composes fetching, extraction, analysis, and storage
// into the acquisition and refresh pipelines.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
	"github.com/dtnitsch/scrapekeeper/pkg/analyzer"
	"github.com/dtnitsch/scrapekeeper/pkg/fetcher"
	"github.com/dtnitsch/scrapekeeper/pkg/refresh"
	"github.com/dtnitsch/scrapekeeper/pkg/validate"
)

// Fetcher retrieves a page body under identity rotation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Result, error)
}

// Extractor turns a fetched body into a structured document.
type Extractor interface {
	ExtractAuto(body, sourceURL string, selectors map[string]string) *models.StructuredDocument
}

// Analyzer produces an AI analysis for a document. Failures are
// tolerated; the engine substitutes a deterministic fallback.
type Analyzer interface {
	Analyze(ctx context.Context, doc *models.StructuredDocument, customPrompt string) (*models.Analysis, error)
}

// Store persists documents and answers staleness queries.
type Store interface {
	Insert(doc *models.StructuredDocument) (int64, error)
	UpdateByURL(url string, doc *models.StructuredDocument) error
	FindOlderThan(cutoff time.Time, limit int) ([]models.RefreshCandidate, error)
}

// Engine runs the acquisition pipeline. All collaborators are injected;
// the engine holds no global state.
type Engine struct {
	fetcher   Fetcher
	extractor Extractor
	analyzer  Analyzer
	store     Store
	logger    *slog.Logger
}

func New(f Fetcher, e Extractor, a Analyzer, s Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher:   f,
		extractor: e,
		analyzer:  a,
		store:     s,
		logger:    logger,
	}
}

// AcquireOptions tunes a single acquisition.
type AcquireOptions struct {
	// Selectors maps custom field names to CSS selectors, extracted
	// alongside the standard fields.
	Selectors map[string]string

	// CustomPrompt overrides the default analysis instructions.
	CustomPrompt string

	// Analyze requests an AI analysis of the document.
	Analyze bool

	// Preview skips persistence.
	Preview bool
}

// AcquireResult is one completed acquisition.
type AcquireResult struct {
	Document *models.StructuredDocument
	RecordID int64
}

// Acquire validates the input, fetches the page, extracts a structured
// document, optionally analyzes it, and persists it. Analysis failures
// degrade to the deterministic fallback instead of failing the
// acquisition.
func (e *Engine) Acquire(ctx context.Context, input string, opts AcquireOptions) (*AcquireResult, error) {
	url, err := validate.Validate(input)
	if err != nil {
		return nil, err
	}

	e.logger.Info("acquiring", "url", url)

	fetched, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	doc := e.extractor.ExtractAuto(fetched.Body, fetched.FinalURL, opts.Selectors)

	if opts.Analyze {
		e.analyze(ctx, doc, opts.CustomPrompt)
	}

	result := &AcquireResult{Document: doc}
	if !opts.Preview {
		id, err := e.store.Insert(doc)
		if err != nil {
			return nil, fmt.Errorf("persist %s: %w", url, err)
		}
		result.RecordID = id
	}

	e.logger.Info("acquired",
		"url", doc.URL,
		"title", doc.Title,
		"method", doc.Method,
		"paragraphs", len(doc.Paragraphs))

	return result, nil
}

// Refresh re-acquires up to limit documents whose latest scrape is
// older than maxAge, concurrently, and reports the outcome counts.
func (e *Engine) Refresh(ctx context.Context, maxAge time.Duration, limit int) (models.RefreshReport, error) {
	detector := refresh.NewDetector(e.store)
	candidates, err := detector.FindStale(maxAge, limit)
	if err != nil {
		return models.RefreshReport{}, err
	}

	e.logger.Info("stale documents detected", "count", len(candidates), "max_age", maxAge)

	scheduler := refresh.NewScheduler(e.rescrape, e.logger)
	return scheduler.Run(ctx, candidates), nil
}

// rescrape re-runs the acquisition chain for one URL and updates its
// newest stored record in place.
func (e *Engine) rescrape(ctx context.Context, url string) error {
	fetched, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}

	doc := e.extractor.ExtractAuto(fetched.Body, fetched.FinalURL, nil)
	e.analyze(ctx, doc, "")

	if err := e.store.UpdateByURL(url, doc); err != nil {
		return fmt.Errorf("persist %s: %w", url, err)
	}
	return nil
}

// analyze attaches an analysis to the document, degrading to the
// deterministic fallback when the AI collaborator is missing or fails.
func (e *Engine) analyze(ctx context.Context, doc *models.StructuredDocument, customPrompt string) {
	if e.analyzer == nil {
		fb := analyzer.Fallback(doc)
		doc.AIAnalysis = fb
		doc.AIAnalysisNote = fb.Note
		return
	}

	analysis, err := e.analyzer.Analyze(ctx, doc, customPrompt)
	if err != nil {
		e.logger.Warn("analysis failed, using fallback", "url", doc.URL, "error", err)
		fb := analyzer.Fallback(doc)
		doc.AIAnalysis = fb
		doc.AIAnalysisNote = fb.Note
		return
	}

	doc.AIAnalysis = analysis
}

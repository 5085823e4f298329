package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

// RescrapeFunc re-acquires a single URL end to end. It must be safe for
// concurrent use.
type RescrapeFunc func(ctx context.Context, url string) error

// Scheduler fans a refresh cycle out across one goroutine per
// candidate, joins the results, and folds them into a report. A failed
// candidate never aborts the cycle.
type Scheduler struct {
	rescrape RescrapeFunc
	logger   *slog.Logger
}

func NewScheduler(rescrape RescrapeFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		rescrape: rescrape,
		logger:   logger,
	}
}

// Run refreshes every candidate concurrently and reports how many
// succeeded and failed. Refreshed+Failed always equals len(candidates).
func (s *Scheduler) Run(ctx context.Context, candidates []models.RefreshCandidate) models.RefreshReport {
	if len(candidates) == 0 {
		return models.RefreshReport{}
	}

	results := make(chan models.RefreshOutcome, len(candidates))
	var wg sync.WaitGroup

	for _, candidate := range candidates {
		wg.Add(1)
		go func(c models.RefreshCandidate) {
			defer wg.Done()
			results <- s.refreshOne(ctx, c)
		}(candidate)
	}

	wg.Wait()
	close(results)

	report := models.RefreshReport{}
	for outcome := range results {
		if outcome.Success {
			report.Refreshed++
		} else {
			report.Failed++
		}
	}

	s.logger.Info("refresh cycle complete",
		"candidates", len(candidates),
		"refreshed", report.Refreshed,
		"failed", report.Failed)

	return report
}

func (s *Scheduler) refreshOne(ctx context.Context, candidate models.RefreshCandidate) models.RefreshOutcome {
	outcome := models.RefreshOutcome{
		URL:       candidate.URL,
		Timestamp: time.Now().UTC(),
	}

	if err := s.rescrape(ctx, candidate.URL); err != nil {
		s.logger.Warn("refresh failed", "url", candidate.URL, "error", err)
		outcome.Error = err.Error()
		return outcome
	}

	s.logger.Info("refreshed", "url", candidate.URL, "last_scraped_at", candidate.LastScrapedAt)
	outcome.Success = true
	return outcome
}

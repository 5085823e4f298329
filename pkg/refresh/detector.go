// Package refresh detects stale documents and re-acquires them
// concurrently.
package refresh

import (
	"fmt"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

// CandidateSource yields URLs whose latest acquisition predates a
// cutoff, oldest first.
type CandidateSource interface {
	FindOlderThan(cutoff time.Time, limit int) ([]models.RefreshCandidate, error)
}

// Detector selects stale documents for re-acquisition.
type Detector struct {
	source CandidateSource
	now    func() time.Time
}

func NewDetector(source CandidateSource) *Detector {
	return &Detector{
		source: source,
		now:    time.Now,
	}
}

// FindStale returns up to limit URLs whose latest scrape is older than
// maxAge, oldest first. A non-positive limit falls back to the default
// cap so a single cycle stays bounded.
func (d *Detector) FindStale(maxAge time.Duration, limit int) ([]models.RefreshCandidate, error) {
	if limit <= 0 {
		limit = models.DefaultRefreshLimit
	}

	cutoff := d.now().Add(-maxAge)
	candidates, err := d.source.FindOlderThan(cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale documents: %w", err)
	}
	return candidates, nil
}

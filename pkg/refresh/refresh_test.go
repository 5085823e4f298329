package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dtnitsch/scrapekeeper/models"
)

type fakeSource struct {
	candidates []models.RefreshCandidate
	err        error

	gotCutoff time.Time
	gotLimit  int
}

func (f *fakeSource) FindOlderThan(cutoff time.Time, limit int) ([]models.RefreshCandidate, error) {
	f.gotCutoff = cutoff
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.candidates) {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFindStaleCutoff(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	detector := NewDetector(source)
	detector.now = func() time.Time { return now }

	if _, err := detector.FindStale(time.Minute, 10); err != nil {
		t.Fatalf("FindStale failed: %v", err)
	}

	want := now.Add(-time.Minute)
	if !source.gotCutoff.Equal(want) {
		t.Errorf("Expected cutoff %v, got %v", want, source.gotCutoff)
	}
	if source.gotLimit != 10 {
		t.Errorf("Expected limit 10, got %d", source.gotLimit)
	}
}

func TestFindStaleDefaultLimit(t *testing.T) {
	source := &fakeSource{}
	detector := NewDetector(source)

	if _, err := detector.FindStale(time.Minute, 0); err != nil {
		t.Fatalf("FindStale failed: %v", err)
	}
	if source.gotLimit != models.DefaultRefreshLimit {
		t.Errorf("Expected default limit %d, got %d", models.DefaultRefreshLimit, source.gotLimit)
	}
}

func TestFindStaleSourceError(t *testing.T) {
	detector := NewDetector(&fakeSource{err: errors.New("db locked")})

	if _, err := detector.FindStale(time.Minute, 10); err == nil {
		t.Error("Expected error from failing source")
	}
}

func TestRunEmptyCycle(t *testing.T) {
	scheduler := NewScheduler(func(ctx context.Context, url string) error {
		t.Error("rescrape should not run with no candidates")
		return nil
	}, quietLogger())

	report := scheduler.Run(context.Background(), nil)
	if report.Refreshed != 0 || report.Failed != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestRunCountsOutcomes(t *testing.T) {
	candidates := []models.RefreshCandidate{
		{URL: "https://example.com/ok-1"},
		{URL: "https://example.com/bad"},
		{URL: "https://example.com/ok-2"},
	}

	scheduler := NewScheduler(func(ctx context.Context, url string) error {
		if strings.Contains(url, "bad") {
			return errors.New("fetch failed")
		}
		return nil
	}, quietLogger())

	report := scheduler.Run(context.Background(), candidates)
	if report.Refreshed != 2 {
		t.Errorf("Expected 2 refreshed, got %d", report.Refreshed)
	}
	if report.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", report.Failed)
	}
	if report.Refreshed+report.Failed != len(candidates) {
		t.Errorf("Expected outcomes to cover all %d candidates", len(candidates))
	}
}

func TestRunVisitsEveryCandidate(t *testing.T) {
	var mu sync.Mutex
	visited := map[string]int{}

	candidates := make([]models.RefreshCandidate, 8)
	for i := range candidates {
		candidates[i] = models.RefreshCandidate{URL: fmt.Sprintf("https://example.com/p%d", i)}
	}

	scheduler := NewScheduler(func(ctx context.Context, url string) error {
		mu.Lock()
		visited[url]++
		mu.Unlock()
		return nil
	}, quietLogger())

	report := scheduler.Run(context.Background(), candidates)
	if report.Refreshed != len(candidates) {
		t.Errorf("Expected all %d refreshed, got %d", len(candidates), report.Refreshed)
	}
	for _, c := range candidates {
		if visited[c.URL] != 1 {
			t.Errorf("Expected %q visited exactly once, got %d", c.URL, visited[c.URL])
		}
	}
}

func TestRunFailureDoesNotAbortCycle(t *testing.T) {
	candidates := []models.RefreshCandidate{
		{URL: "https://example.com/fails"},
		{URL: "https://example.com/slow-ok"},
	}

	scheduler := NewScheduler(func(ctx context.Context, url string) error {
		if strings.Contains(url, "fails") {
			return errors.New("boom")
		}
		time.Sleep(10 * time.Millisecond)
		return nil
	}, quietLogger())

	report := scheduler.Run(context.Background(), candidates)
	if report.Refreshed != 1 || report.Failed != 1 {
		t.Errorf("Expected one success and one failure, got %+v", report)
	}
}

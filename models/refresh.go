package models

import "time"

// RefreshCandidate is a URL selected for re-acquisition because its last
// scrape is older than the staleness threshold. Read-only, consumed once
// per refresh cycle.
type RefreshCandidate struct {
	URL           string
	LastScrapedAt time.Time
}

// RefreshOutcome is the terminal success/failure record of one refresh
// task. Immutable once produced.
type RefreshOutcome struct {
	URL       string    `json:"url"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RefreshReport aggregates the outcomes of one refresh cycle.
// Refreshed+Failed always equals the number of candidates in the cycle.
type RefreshReport struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

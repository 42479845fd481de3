package model

import "time"

// SourceOutcome is how a source fared in a run.
type SourceOutcome string

const (
	OutcomeSucceeded SourceOutcome = "succeeded"
	OutcomeFailed    SourceOutcome = "failed"
	OutcomeSkipped   SourceOutcome = "skipped" // breaker open or budget spent before the first attempt
)

// SourceStats describes one source's part in a run.
type SourceStats struct {
	Name      string        `json:"name"`
	Outcome   SourceOutcome `json:"outcome"`
	Attempts  int           `json:"attempts"`
	Retries   int           `json:"retries"`
	Latency   time.Duration `json:"latency"`
	Records   int           `json:"records"`
	Blocked   bool          `json:"blocked,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// RunStats are the counters of a single search run. A run owns its stats
// exclusively.
type RunStats struct {
	RunID     string        `json:"run_id,omitempty"`
	Query     string        `json:"query,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	SourcesAttempted int           `json:"sources_attempted"`
	SourcesSucceeded int           `json:"sources_succeeded"`
	SourcesUsed      []string      `json:"sources_used"`
	Sources          []SourceStats `json:"sources"`

	RecordsFetched     int     `json:"records_fetched"`
	UniqueRecords      int     `json:"unique_records"`
	DuplicatesMerged   int     `json:"duplicates_merged"`
	Returned           int     `json:"returned"`
	Efficiency         float64 `json:"efficiency"`
	AlternativeQueries int     `json:"alternative_queries,omitempty"`
	BudgetExceeded     bool    `json:"budget_exceeded,omitempty"`
}

// NewRunStats returns zeroed stats with non-nil slices.
func NewRunStats() RunStats {
	return RunStats{
		SourcesUsed: []string{},
		Sources:     []SourceStats{},
	}
}

// Source returns the stats entry for name, if the run touched it.
func (s *RunStats) Source(name string) (SourceStats, bool) {
	for _, ss := range s.Sources {
		if ss.Name == name {
			return ss, true
		}
	}
	return SourceStats{}, false
}

// Clone returns a copy that shares no slices with s.
func (s RunStats) Clone() RunStats {
	c := s
	c.SourcesUsed = append([]string{}, s.SourcesUsed...)
	c.Sources = append([]SourceStats{}, s.Sources...)
	return c
}

// Package source defines the business-listing sources a search run queries
// and their adapters: Google Places, OpenStreetMap, HTML directories and a
// static fixture file.
package source

import (
	"context"

	"github.com/sells-group/leadscout/internal/model"
)

// Adapter fetches listings for a query from one external source. Fetch
// returns an empty slice and nil error when the source has no results.
// Failures are reported as *resilience.SourceError so the caller can decide
// whether to retry. Adapters hold no per-run state.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q model.SearchQuery) ([]model.RawRecord, error)
}

// Lifecycle is implemented by adapters that need setup before the first
// Fetch and teardown after the last.
type Lifecycle interface {
	Open(ctx context.Context) error
	Close() error
}

// Info describes a configured source.
type Info struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Enabled    bool    `json:"enabled"`
	Confidence float64 `json:"confidence"`
	// Reason explains why an enabled-by-config source was not built.
	Reason string `json:"reason,omitempty"`
}

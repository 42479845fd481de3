//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/monitoring"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/internal/source"
)

// newTestEnv builds a search environment over the offline listings file.
func newTestEnv(t *testing.T, mon config.MonitoringConfig) *searchEnv {
	t.Helper()

	c := config.Config{
		Retry:  config.RetryConfig{MaxRetries: 1, BaseDelayMs: 1, MaxDelayMs: 2, BackoffFactor: 1},
		Search: config.SearchConfig{RequireMinResults: 1, TargetVerticals: []string{"real estate"}},
		Scoring: config.ScoringConfig{
			Quality: config.DefaultQualityWeights(),
			Lead:    config.DefaultLeadWeights(),
		},
	}
	reg := source.NewRegistry()
	reg.Register(source.NewFixture("fixture", "../testdata/listings.yaml", 0.5))

	m := metrics.New()
	engine, err := search.New(c, reg, search.Deps{Metrics: m})
	require.NoError(t, err)

	env := &searchEnv{Engine: engine, Metrics: m, Alerter: monitoring.NewAlerter(mon)}
	t.Cleanup(env.Close)
	return env
}

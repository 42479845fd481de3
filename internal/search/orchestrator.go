// Package search runs a query across the configured sources with retry and
// fallback, merges what they return, and ranks the result.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/dedup"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/internal/scorer"
	"github.com/sells-group/leadscout/internal/source"
)

// ErrBudgetExceeded is returned when the run budget expires before any
// record was merged. With partial results the run succeeds instead and
// RunStats.BudgetExceeded is set.
var ErrBudgetExceeded = eris.New("search: run budget exceeded")

// Options configures an Orchestrator. It is read-only once the
// orchestrator is built.
type Options struct {
	Retry              resilience.RetryConfig
	BlockedPolicy      resilience.BlockedPolicy
	BlockedRetryBudget int

	// RequireMinResults is used when a query does not set its own. Zero
	// means 1.
	RequireMinResults int
	// MaxResults is used when a query does not set its own. Zero means
	// uncapped.
	MaxResults int
	// RunBudget bounds the whole run. Zero leaves only the caller's
	// deadline.
	RunBudget          time.Duration
	AlternativeQueries bool

	Bounds  source.Bounds
	Dedup   dedup.Options
	Quality config.QualityWeights
	Metrics *metrics.Metrics
}

// OptionsFromConfig derives orchestrator options from the application
// config.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	policy, err := resilience.ParseBlockedPolicy(cfg.Retry.BlockedPolicy)
	if err != nil {
		return Options{}, err
	}
	r := cfg.Retry
	return Options{
		Retry:              resilience.FromRetryConfig(r.MaxRetries, r.BaseDelayMs, r.MaxDelayMs, r.BackoffFactor, r.Jitter, r.AttemptTimeoutMs),
		BlockedPolicy:      policy,
		BlockedRetryBudget: r.BlockedRetryBudget,
		RequireMinResults:  cfg.Search.RequireMinResults,
		MaxResults:         cfg.Search.MaxResults,
		RunBudget:          time.Duration(cfg.Search.RunBudgetSecs) * time.Second,
		AlternativeQueries: cfg.Search.AlternativeQueries,
		Bounds:             source.NewBounds(cfg.Search.RegionBounds),
		Dedup:              dedup.Options{NameOnlyFallback: cfg.Dedup.NameOnlyFallback},
		Quality:            cfg.Scoring.Quality,
	}, nil
}

// Orchestrator drives the retry policy over each source in priority order
// until enough unique records exist. It holds no per-run state; every
// Search call owns its deduplicator, stats and circuit breakers, so one
// Orchestrator may serve concurrent runs.
type Orchestrator struct {
	registry *source.Registry
	opts     Options
	quality  *scorer.QualityScorer
}

// NewOrchestrator creates an Orchestrator over the adapters in reg.
func NewOrchestrator(reg *source.Registry, opts Options) *Orchestrator {
	return &Orchestrator{
		registry: reg,
		opts:     opts,
		quality:  scorer.NewQualityScorer(opts.Quality),
	}
}

// run is the state of a single Search call.
type run struct {
	o        *Orchestrator
	dedup    *dedup.Deduplicator
	stats    *model.RunStats
	breakers *resilience.ServiceBreakers
	log      *zap.Logger

	budgetHit bool
}

// Search runs q against the enabled sources. Source failures never escape:
// the error is non-nil only for an invalid query or a budget that expired
// with nothing merged. Returned records carry quality scores, in the order
// their identities were first seen.
func (o *Orchestrator) Search(ctx context.Context, q model.SearchQuery) ([]model.BusinessRecord, model.RunStats, error) {
	stats := model.NewRunStats()
	if err := q.Validate(); err != nil {
		return nil, stats, err
	}
	adapters, err := o.registry.Select(q.Options.Sources)
	if err != nil {
		return nil, stats, eris.Wrap(model.ErrInvalidQuery, err.Error())
	}

	stats.RunID = uuid.NewString()
	stats.Query = q.Text()
	stats.StartedAt = time.Now().UTC()

	r := &run{
		o:     o,
		dedup: dedup.New(o.opts.Dedup),
		stats: &stats,
		log: zap.L().With(
			zap.String("component", "search.orchestrator"),
			zap.String("run_id", stats.RunID),
			zap.String("query", stats.Query),
		),
	}
	if cfg, ok := resilience.BlockedBreakerConfig(o.opts.BlockedPolicy, o.opts.BlockedRetryBudget); ok {
		r.breakers = resilience.NewServiceBreakers(cfg)
	}

	runCtx := ctx
	if o.opts.RunBudget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.opts.RunBudget)
		defer cancel()
	}

	minResults := firstPositive(q.RequireMinResults, o.opts.RequireMinResults, 1)
	maxResults := firstPositive(q.MaxResults, o.opts.MaxResults, 0)
	enough := func() bool {
		n := r.dedup.Len()
		return n >= minResults || (maxResults > 0 && n >= maxResults)
	}

	for i, a := range adapters {
		if enough() {
			break
		}
		if runCtx.Err() != nil {
			r.budgetHit = true
			for _, rest := range adapters[i:] {
				r.sourceStats(rest.Name()).Outcome = model.OutcomeSkipped
			}
			break
		}
		r.fetch(runCtx, a, q, true)
	}

	if r.dedup.Len() == 0 && o.opts.AlternativeQueries && !r.budgetHit && runCtx.Err() == nil {
		r.alternatives(runCtx, adapters, q, enough)
	}

	records := r.dedup.Records()
	for i := range records {
		records[i].QualityScore = o.quality.Score(records[i])
	}

	fetched, merged, _ := r.dedup.Counts()
	stats.RecordsFetched = fetched
	stats.DuplicatesMerged = merged
	stats.UniqueRecords = len(records)
	stats.Returned = len(records)
	if fetched > 0 {
		stats.Efficiency = float64(len(records)) / float64(fetched)
	}
	stats.Duration = time.Since(stats.StartedAt)

	if r.budgetHit {
		stats.BudgetExceeded = true
		if len(records) == 0 {
			cause := runCtx.Err()
			if cause == nil {
				cause = context.DeadlineExceeded
			}
			return nil, stats, fmt.Errorf("%w: %w", ErrBudgetExceeded, cause)
		}
		r.log.Warn("run budget exceeded, returning partial results", zap.Int("records", len(records)))
	}

	r.log.Info("search complete",
		zap.Int("sources_attempted", stats.SourcesAttempted),
		zap.Int("sources_succeeded", stats.SourcesSucceeded),
		zap.Strings("sources_used", stats.SourcesUsed),
		zap.Int("records", len(records)),
		zap.Duration("duration", stats.Duration),
	)
	return records, stats, nil
}

// fetch runs one source under the retry policy and merges what it returns.
// primary is false for the alternative-query pass, which does not count
// toward SourcesAttempted.
func (r *run) fetch(ctx context.Context, a source.Adapter, q model.SearchQuery, primary bool) bool {
	name := a.Name()
	ss := r.sourceStats(name)
	log := r.log.With(zap.String("source", name))

	if r.breakers != nil && r.breakers.Open(name) {
		if ss.Outcome == "" {
			ss.Outcome = model.OutcomeSkipped
		}
		log.Debug("source breaker open, skipping")
		return false
	}

	cfg := r.o.opts.Retry
	if r.breakers != nil {
		cfg.Breaker = r.breakers.Get(name)
	}
	logRetry := resilience.RetryLogger(name, "fetch")
	cfg.OnRetry = func(attempt int, err error) {
		ss.Retries++
		logRetry(attempt, err)
	}

	start := time.Now()
	recs, err := resilience.Execute(ctx, cfg, func(ctx context.Context) ([]model.RawRecord, error) {
		ss.Attempts++
		recs, err := a.Fetch(ctx, q)
		if err != nil {
			kind := resilience.KindOf(err)
			if kind == resilience.KindBlocked {
				ss.Blocked = true
			}
			r.o.opts.Metrics.IncSourceFailure(name, kind.String())
		}
		return recs, err
	})
	ss.Latency += time.Since(start)
	if primary {
		r.stats.SourcesAttempted++
	}

	if err != nil {
		if ctx.Err() != nil {
			r.budgetHit = true
		}
		if ss.Outcome != model.OutcomeSucceeded {
			ss.Outcome = model.OutcomeFailed
		}
		ss.LastError = err.Error()
		var ff *resilience.FinalFailure
		log.Warn("source failed, falling back",
			zap.Int("attempts", ss.Attempts),
			zap.Bool("retries_exhausted", errors.As(err, &ff)),
			zap.String("kind", resilience.KindOf(err).String()),
			zap.Error(err),
		)
		return false
	}

	if primary {
		r.stats.SourcesSucceeded++
	}
	ss.Outcome = model.OutcomeSucceeded
	ss.Records += len(recs)
	if !contains(r.stats.SourcesUsed, name) {
		r.stats.SourcesUsed = append(r.stats.SourcesUsed, name)
	}

	added := r.dedup.Merge(r.admit(name, recs))
	log.Info("source succeeded",
		zap.Int("records", len(recs)),
		zap.Int("new_identities", added),
		zap.Int("unique", r.dedup.Len()),
	)
	return true
}

// admit stamps the source name on records that lack one and clears
// coordinates outside the region bounds. Nameless records are dropped by
// the deduplicator.
func (r *run) admit(name string, recs []model.RawRecord) []model.RawRecord {
	out := make([]model.RawRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Source == "" {
			rec.Source = name
		}
		if r.o.opts.Bounds.Admit(&rec) {
			r.log.Debug("coordinates outside region bounds cleared",
				zap.String("source", name),
				zap.String("name", rec.Name),
			)
		}
		out = append(out, rec)
	}
	return out
}

// alternatives retries the first source whose breaker is still closed with
// derived queries until enough records exist.
func (r *run) alternatives(ctx context.Context, adapters []source.Adapter, q model.SearchQuery, enough func() bool) {
	var first source.Adapter
	for _, a := range adapters {
		if r.breakers == nil || !r.breakers.Open(a.Name()) {
			first = a
			break
		}
	}
	if first == nil {
		return
	}

	for _, alt := range AlternativeQueries(q) {
		if enough() {
			return
		}
		if ctx.Err() != nil {
			r.budgetHit = true
			return
		}
		r.stats.AlternativeQueries++
		r.log.Info("trying alternative query",
			zap.String("source", first.Name()),
			zap.String("alternative", alt.Text()),
		)
		r.fetch(ctx, first, alt, false)
	}
}

// sourceStats returns the run's entry for name, creating it on first use.
func (r *run) sourceStats(name string) *model.SourceStats {
	for i := range r.stats.Sources {
		if r.stats.Sources[i].Name == name {
			return &r.stats.Sources[i]
		}
	}
	r.stats.Sources = append(r.stats.Sources, model.SourceStats{Name: name})
	return &r.stats.Sources[len(r.stats.Sources)-1]
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

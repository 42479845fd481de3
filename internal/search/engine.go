package search

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scorer"
	"github.com/sells-group/leadscout/internal/source"
)

const defaultEnrichConcurrency = 4

// Deps are the optional collaborators of an Engine. Leave an enricher nil
// when it is not configured; queries asking for it then skip the step.
type Deps struct {
	Website    enrich.Enricher
	Classifier enrich.Enricher
	Metrics    *metrics.Metrics
}

// Engine is the entry point for business searches. It owns the source
// registry's lifecycle and keeps the stats of the latest completed run.
type Engine struct {
	registry     *source.Registry
	orchestrator *Orchestrator
	quality      *scorer.QualityScorer
	lead         *scorer.LeadScorer
	verticals    []string
	concurrency  int
	deps         Deps

	initMu      sync.Mutex
	initialized bool
	closed      bool

	statsMu sync.Mutex
	last    *model.RunStats
}

// New builds an Engine over reg from cfg. Sources are not opened until
// Initialize or the first search.
func New(cfg config.Config, reg *source.Registry, deps Deps) (*Engine, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Metrics = deps.Metrics

	if err := scorer.ValidateQualityWeights(cfg.Scoring.Quality); err != nil {
		return nil, err
	}
	leadWeights := cfg.Scoring.Lead
	if cfg.Scoring.LeadFile != "" {
		leadWeights, err = scorer.LoadLeadWeights(cfg.Scoring.LeadFile)
		if err != nil {
			return nil, err
		}
	}
	if err := scorer.ValidateLeadWeights(leadWeights); err != nil {
		return nil, err
	}

	concurrency := cfg.Enrich.Concurrency
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}

	return &Engine{
		registry:     reg,
		orchestrator: NewOrchestrator(reg, opts),
		quality:      scorer.NewQualityScorer(cfg.Scoring.Quality),
		lead:         scorer.NewLeadScorer(leadWeights),
		verticals:    cfg.Search.TargetVerticals,
		concurrency:  concurrency,
		deps:         deps,
	}, nil
}

// Initialize opens every source that needs it. It is idempotent. If a
// source fails to open, the ones already opened are closed again.
func (e *Engine) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.closed {
		return eris.New("search: engine is closed")
	}
	if e.initialized {
		return nil
	}

	var opened []source.Lifecycle
	for _, a := range e.registry.All() {
		lc, ok := a.(source.Lifecycle)
		if !ok {
			continue
		}
		if err := lc.Open(ctx); err != nil {
			for i := len(opened) - 1; i >= 0; i-- {
				_ = opened[i].Close()
			}
			return eris.Wrapf(err, "search: open source %s", a.Name())
		}
		opened = append(opened, lc)
	}

	e.initialized = true
	zap.L().Info("search engine initialized",
		zap.Strings("sources", e.registry.Names()),
		zap.Bool("website_enrichment", e.deps.Website != nil),
		zap.Bool("ai_classification", e.deps.Classifier != nil),
	)
	return nil
}

// Close releases source resources. Calling it more than once is safe.
func (e *Engine) Close() error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if !e.initialized {
		return nil
	}

	var errs []error
	for _, a := range e.registry.All() {
		if lc, ok := a.(source.Lifecycle); ok {
			if err := lc.Close(); err != nil {
				errs = append(errs, eris.Wrapf(err, "search: close source %s", a.Name()))
			}
		}
	}
	return errors.Join(errs...)
}

// SearchBusinesses runs q end to end: source fallback, merge, optional
// enrichment, scoring, filtering and ranking. Source failures are absorbed;
// the error is non-nil only for an invalid query, an engine that cannot be
// initialized, or a run budget that expired with nothing merged.
func (e *Engine) SearchBusinesses(ctx context.Context, q model.SearchQuery) ([]model.BusinessRecord, error) {
	records, _, err := e.Search(ctx, q)
	return records, err
}

// Search is SearchBusinesses that also returns the stats of this run, which
// GetStats cannot guarantee when runs overlap.
func (e *Engine) Search(ctx context.Context, q model.SearchQuery) ([]model.BusinessRecord, model.RunStats, error) {
	if err := q.Validate(); err != nil {
		e.deps.Metrics.IncSearch(metrics.OutcomeInvalid)
		return nil, model.NewRunStats(), err
	}
	if err := e.Initialize(ctx); err != nil {
		e.deps.Metrics.IncSearch(metrics.OutcomeError)
		return nil, model.NewRunStats(), err
	}

	// The budget spans source fallback and enrichment alike.
	runCtx := ctx
	if budget := e.orchestrator.opts.RunBudget; budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	records, stats, err := e.orchestrator.Search(runCtx, q)
	if err != nil {
		switch {
		case errors.Is(err, ErrBudgetExceeded):
			e.storeStats(stats)
			e.deps.Metrics.ObserveRun(stats, metrics.OutcomeBudgetExceeded)
		case errors.Is(err, model.ErrInvalidQuery):
			e.deps.Metrics.IncSearch(metrics.OutcomeInvalid)
		default:
			e.deps.Metrics.IncSearch(metrics.OutcomeError)
		}
		return nil, stats, err
	}

	records = e.enrich(runCtx, q, records)
	if runCtx.Err() != nil && !stats.BudgetExceeded {
		stats.BudgetExceeded = true
		zap.L().Warn("run budget exceeded during enrichment, returning records as they stand",
			zap.String("run_id", stats.RunID),
			zap.Int("records", len(records)),
		)
	}

	lc := scorer.LeadContext{TargetVerticals: e.verticals}
	for i := range records {
		records[i].QualityScore = e.quality.Score(records[i])
		ls := e.lead.Score(records[i], lc)
		records[i].LeadScore = &ls
	}

	records = Filter(records, q.Options)
	SortRecords(records)
	if maxResults := firstPositive(q.MaxResults, e.orchestrator.opts.MaxResults); maxResults > 0 && len(records) > maxResults {
		records = records[:maxResults]
	}

	stats.Returned = len(records)
	stats.Duration = time.Since(stats.StartedAt)
	e.storeStats(stats)

	outcome := metrics.OutcomeOK
	switch {
	case len(records) == 0:
		outcome = metrics.OutcomeEmpty
		zap.L().Warn("search returned no results",
			zap.String("run_id", stats.RunID),
			zap.String("query", stats.Query),
			zap.Int("sources_attempted", stats.SourcesAttempted),
		)
	case stats.BudgetExceeded:
		outcome = metrics.OutcomeBudgetExceeded
	}
	e.deps.Metrics.ObserveRun(stats, outcome)
	e.deps.Metrics.ObserveLeads(records)

	return records, stats, nil
}

// enrich applies the enrichments q asks for, a bounded number of records at
// a time. It never fails; a record whose enrichment fails, or is still
// running when ctx is done, keeps its pre-enrichment value.
func (e *Engine) enrich(ctx context.Context, q model.SearchQuery, records []model.BusinessRecord) []model.BusinessRecord {
	var enrichers []enrich.Enricher
	if q.Options.EnhanceWithWebsite {
		if e.deps.Website == nil {
			zap.L().Warn("website enrichment requested but not configured")
		} else {
			enrichers = append(enrichers, e.deps.Website)
		}
	}
	if q.Options.EnhancedAI {
		if e.deps.Classifier == nil {
			zap.L().Warn("ai classification requested but not configured")
		} else {
			enrichers = append(enrichers, e.deps.Classifier)
		}
	}
	if len(enrichers) == 0 || len(records) == 0 {
		return records
	}

	var (
		mu  sync.Mutex
		cut bool
	)
	out := slices.Clone(records)
	done := make(chan struct{})
	go func() {
		defer close(done)
		g := new(errgroup.Group)
		g.SetLimit(e.concurrency)
		for i := range records {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				rec, failed := enrich.Apply(ctx, records[i], enrichers...)
				for _, name := range failed {
					e.deps.Metrics.IncEnrichFailure(name)
				}
				mu.Lock()
				defer mu.Unlock()
				if !cut {
					out[i] = rec
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	// Enrichers that ignore ctx are abandoned once it is done; their
	// records keep the value they had before enrichment.
	select {
	case <-done:
	case <-ctx.Done():
	}
	mu.Lock()
	defer mu.Unlock()
	cut = true
	return slices.Clone(out)
}

func (e *Engine) storeStats(stats model.RunStats) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	s := stats.Clone()
	e.last = &s
}

// GetStats returns a copy of the most recent run's stats, or zeroed stats
// if no run has completed.
func (e *Engine) GetStats() model.RunStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	if e.last == nil {
		return model.NewRunStats()
	}
	return e.last.Clone()
}

// Sources describes the configured sources.
func (e *Engine) Sources() []source.Info {
	return e.registry.Infos()
}

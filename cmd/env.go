package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/monitoring"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/internal/source"
	anthropicpkg "github.com/sells-group/leadscout/pkg/anthropic"
)

// searchEnv holds the engine and its collaborators for the search, batch
// and serve commands.
type searchEnv struct {
	Engine  *search.Engine
	Metrics *metrics.Metrics
	Alerter *monitoring.Alerter
}

// Close releases source resources.
func (se *searchEnv) Close() {
	if se.Engine == nil {
		return
	}
	if err := se.Engine.Close(); err != nil {
		zap.L().Warn("close search engine", zap.Error(err))
	}
}

// run executes q and sends any alerts the run raises.
func (se *searchEnv) run(ctx context.Context, q model.SearchQuery) ([]model.BusinessRecord, model.RunStats, error) {
	records, stats, err := se.Engine.Search(ctx, q)
	if err == nil || stats.RunID != "" {
		se.Alerter.Notify(ctx, stats, records)
	}
	return records, stats, err
}

// initEngine builds the source registry, optional enrichers and the search
// engine from the loaded config. Callers should defer env.Close().
func initEngine(ctx context.Context, c *config.Config, mode string) (*searchEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	reg, err := source.Build(*c, source.Deps{})
	if err != nil {
		return nil, eris.Wrap(err, "build sources")
	}
	for _, info := range reg.Infos() {
		if !info.Enabled && info.Reason != "" {
			zap.L().Info("source disabled", zap.String("source", info.Name), zap.String("reason", info.Reason))
		}
	}
	if len(reg.Names()) == 0 {
		return nil, eris.New("no sources enabled; check the sources section of the config")
	}

	website, err := enrich.NewWebsiteAnalyzer(c.Enrich.Website, nil, c.Sources.UserAgent)
	if err != nil {
		return nil, err
	}
	deps := search.Deps{
		Website: website,
		Metrics: metrics.New(),
	}

	if c.Anthropic.Key != "" {
		deps.Classifier = enrich.NewClassifier(anthropicpkg.NewClient(c.Anthropic.Key), c.Anthropic.Model, c.Enrich.AI.MaxTokens)
		zap.L().Info("ai classification enabled", zap.String("model", c.Anthropic.Model))
	} else {
		zap.L().Debug("LEADSCOUT_ANTHROPIC_KEY not set, ai classification disabled")
	}

	engine, err := search.New(*c, reg, deps)
	if err != nil {
		return nil, err
	}
	if err := engine.Initialize(ctx); err != nil {
		return nil, err
	}

	return &searchEnv{
		Engine:  engine,
		Metrics: deps.Metrics,
		Alerter: monitoring.NewAlerter(c.Monitoring),
	}, nil
}

package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	batchFile   string
	batchOutput string
	batchLimit  int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many searches from a YAML query file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queries, err := loadQueries(batchFile)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		results := processBatch(ctx, queries, batchLimit, cfg.Batch.Concurrency, env.run)

		var w io.Writer = os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "batch: create output file %s", batchOutput)
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "batch: encode results")
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "queries.yaml", "YAML file with a list of queries")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output file path (default: stdout)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "process at most this many queries (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// queryFile is the on-disk layout of a batch query file.
type queryFile struct {
	Queries []model.SearchQuery `yaml:"queries"`
}

// batchResult is the outcome of one query in a batch.
type batchResult struct {
	Query   model.SearchQuery      `json:"query"`
	Records []model.BusinessRecord `json:"records"`
	Stats   model.RunStats         `json:"stats"`
	Error   string                 `json:"error,omitempty"`
}

func loadQueries(path string) ([]model.SearchQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}
	var qf queryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, eris.Wrapf(err, "batch: parse %s", path)
	}
	if len(qf.Queries) == 0 {
		return nil, eris.Errorf("batch: %s contains no queries", path)
	}
	return qf.Queries, nil
}

// searchFunc runs one query.
type searchFunc func(ctx context.Context, q model.SearchQuery) ([]model.BusinessRecord, model.RunStats, error)

// processBatch applies limit, then runs queries concurrently. A failing
// query is reported in its result and never aborts the batch. Results keep
// the order of queries.
func processBatch(ctx context.Context, queries []model.SearchQuery, limit, concurrency int, run searchFunc) []batchResult {
	if limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("queries", len(queries)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]batchResult, len(queries))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, q := range queries {
		g.Go(func() error {
			log := zap.L().With(zap.String("query", q.Text()))

			records, stats, err := run(gctx, q)
			results[i] = batchResult{Query: q, Records: records, Stats: stats}
			if results[i].Records == nil {
				results[i].Records = []model.BusinessRecord{}
			}
			if err != nil {
				failed.Add(1)
				results[i].Error = err.Error()
				log.Error("search failed", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			log.Info("search complete", zap.Int("records", len(records)))
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results
}

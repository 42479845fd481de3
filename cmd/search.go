package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

var searchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Search business listings and rank them as leads",
	Long: `Search the configured sources for businesses matching a term.

Sources are tried in priority order with retry; a failing source falls back
to the next until enough unique businesses are found.

Examples:
  # Real estate agencies in Dubai, printed as a table
  search real estate agencies --region Dubai --format table

  # Analyse websites and keep only high-priority leads
  search dental clinics --region Dubai --website --min-priority high

  # Only query two sources and write CSV
  search law firms --sources google_maps,yellow_pages --format csv --output leads.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		q, err := queryFromFlags(cmd, args)
		if err != nil {
			return err
		}
		if err := q.Validate(); err != nil {
			return err
		}

		if budget, _ := cmd.Flags().GetInt("budget"); budget > 0 {
			cfg.Search.RunBudgetSecs = budget
		}

		env, err := initEngine(ctx, cfg, "search")
		if err != nil {
			return err
		}
		defer env.Close()

		records, stats, err := env.run(ctx, q)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		if len(records) == 0 {
			zap.L().Warn("no businesses found",
				zap.String("query", stats.Query),
				zap.Strings("sources_used", stats.SourcesUsed),
			)
		}

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if err := outputRecords(records, format, output); err != nil {
			return err
		}

		if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
			return writeStats(os.Stderr, stats)
		}
		return nil
	},
}

func init() {
	addSearchFlags(searchCmd.Flags())
	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(f *pflag.FlagSet) {
	f.String("region", "", "region appended to the term, e.g. Dubai")
	f.Int("max-results", 0, "maximum records returned (0 = config default)")
	f.Int("min-results", 0, "stop falling back once this many unique records exist (0 = config default)")
	f.Bool("website", false, "analyse each business website")
	f.Bool("ai", false, "classify each business with the AI model")
	f.String("sources", "", "comma-separated subset of sources to query")
	f.Int("min-score", 0, "drop records below this quality score")
	f.String("min-priority", "", "drop leads below this priority: low, medium, high or urgent")
	f.Int("budget", 0, "run budget in seconds (0 = config default)")
	f.String("format", "json", "output format: json, table or csv")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("stats", false, "print run stats to stderr")
}

// queryFromFlags builds a SearchQuery from the search command's arguments
// and flags. It does not validate the query.
func queryFromFlags(cmd *cobra.Command, args []string) (model.SearchQuery, error) {
	return queryFromFlagSet(cmd.Flags(), args)
}

func queryFromFlagSet(f *pflag.FlagSet, args []string) (model.SearchQuery, error) {
	region, _ := f.GetString("region")
	maxResults, _ := f.GetInt("max-results")
	minResults, _ := f.GetInt("min-results")
	website, _ := f.GetBool("website")
	ai, _ := f.GetBool("ai")
	sources, _ := f.GetString("sources")
	minScore, _ := f.GetInt("min-score")
	minPriority, _ := f.GetString("min-priority")

	prio, err := model.ParsePriority(minPriority)
	if err != nil {
		return model.SearchQuery{}, fmt.Errorf("%w: %w", model.ErrInvalidQuery, err)
	}

	return model.SearchQuery{
		Term:              strings.Join(args, " "),
		Region:            region,
		MaxResults:        maxResults,
		RequireMinResults: minResults,
		Options: model.SearchOptions{
			EnhanceWithWebsite: website,
			EnhancedAI:         ai,
			MinScore:           minScore,
			MinPriority:        prio,
			Sources:            splitAndTrim(sources),
		},
	}, nil
}

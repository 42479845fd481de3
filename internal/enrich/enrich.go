// Package enrich adds optional, slower signals to merged business records:
// a homepage analysis and an AI classification. Enrichers never fail a
// search; a failed enrichment leaves the record as it was.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// Enricher adds information to a business record. On error the returned
// record must be ignored by the caller.
type Enricher interface {
	Name() string
	Enhance(ctx context.Context, rec model.BusinessRecord) (model.BusinessRecord, error)
}

// Apply runs each enricher in turn over rec. A failing enricher is logged
// and skipped, so rec keeps the value it had before that enricher ran. It
// returns the names of the enrichers that failed.
func Apply(ctx context.Context, rec model.BusinessRecord, enrichers ...Enricher) (model.BusinessRecord, []string) {
	var failed []string
	for _, e := range enrichers {
		if e == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		out, err := e.Enhance(ctx, rec.Clone())
		if err != nil {
			zap.L().Warn("enrichment failed",
				zap.String("enricher", e.Name()),
				zap.String("record", rec.ID),
				zap.Error(err),
			)
			failed = append(failed, e.Name())
			continue
		}
		rec = out
	}
	return rec, failed
}

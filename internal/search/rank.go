package search

import (
	"cmp"
	"slices"

	"github.com/sells-group/leadscout/internal/model"
)

// SortRecords orders records best first: lead score, then quality score,
// both descending, then name and ID ascending. Records without a lead score
// rank below every scored record.
func SortRecords(records []model.BusinessRecord) {
	slices.SortStableFunc(records, func(a, b model.BusinessRecord) int {
		if c := cmp.Compare(b.LeadTotal(), a.LeadTotal()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.QualityScore, a.QualityScore); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Filter drops records below the query's minimum quality score or lead
// priority. It filters in place.
func Filter(records []model.BusinessRecord, opts model.SearchOptions) []model.BusinessRecord {
	if opts.MinScore <= 0 && opts.MinPriority == model.PriorityLow {
		return records
	}
	out := records[:0]
	for _, rec := range records {
		if rec.QualityScore < opts.MinScore {
			continue
		}
		if opts.MinPriority > model.PriorityLow && (rec.LeadScore == nil || rec.LeadScore.Priority < opts.MinPriority) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/dedup"
	"github.com/sells-group/leadscout/internal/model"
)

// LeadContext carries the campaign-level inputs of lead scoring.
type LeadContext struct {
	// TargetVerticals are the industries the campaign is after. A record
	// whose category, name or classified industry mentions one earns the
	// category match points.
	TargetVerticals []string
}

// LeadScorer layers outreach heuristics on top of the quality score.
type LeadScorer struct {
	w      config.LeadWeights
	urgent map[string]bool
}

// NewLeadScorer creates a LeadScorer with the given weight table.
func NewLeadScorer(w config.LeadWeights) *LeadScorer {
	urgent := make(map[string]bool, len(w.UrgentSecurity))
	for _, lvl := range w.UrgentSecurity {
		urgent[lvl] = true
	}
	return &LeadScorer{w: w, urgent: urgent}
}

// Score computes the lead score of rec. rec.QualityScore must already be
// set.
func (s *LeadScorer) Score(rec model.BusinessRecord, lc LeadContext) model.LeadScore {
	breakdown := make(map[string]int)
	var reasons []string

	breakdown["quality"] = int(math.Round(float64(rec.QualityScore) * s.w.QualityFactor))

	if v, ok := matchVertical(rec, lc.TargetVerticals); ok {
		breakdown["category_match"] = s.w.CategoryMatch
		reasons = append(reasons, fmt.Sprintf("matches target vertical %q", v))
	}

	if wa := rec.WebsiteAnalysis; wa != nil {
		if pts := s.w.DigitalMaturity[wa.DigitalMaturity]; pts > 0 {
			breakdown["digital_maturity"] = pts
			reasons = append(reasons, "digital maturity "+wa.DigitalMaturity)
		}
		if pts := s.w.Security[wa.SecurityLevel]; pts > 0 {
			breakdown["security"] = pts
			reasons = append(reasons, "security posture "+wa.SecurityLevel)
		}
	}

	if c := rec.Classification; c != nil && c.BusinessSize != "" {
		if pts := s.w.BusinessSize[c.BusinessSize]; pts > 0 {
			breakdown["business_size"] = pts
			reasons = append(reasons, "business size "+c.BusinessSize)
		}
	}

	rep := s.w.Reputation
	if rec.Rating != nil && rec.ReviewCount != nil &&
		*rec.Rating >= rep.MinRating && *rec.ReviewCount >= rep.MinReviews && rep.Points > 0 {
		breakdown["reputation"] = rep.Points
		reasons = append(reasons, fmt.Sprintf("rated %.1f from %d reviews", *rec.Rating, *rec.ReviewCount))
	}

	total := 0
	for _, v := range breakdown {
		total += v
	}
	total = clamp(total)

	return model.LeadScore{
		Total:     total,
		Priority:  s.priority(rec, total, &reasons),
		Breakdown: breakdown,
		Reasons:   reasons,
	}
}

func (s *LeadScorer) priority(rec model.BusinessRecord, total int, reasons *[]string) model.Priority {
	if s.w.RequirePhone && rec.Phone == "" {
		*reasons = append(*reasons, "no phone number")
		return model.PriorityLow
	}

	switch {
	case total >= s.w.Thresholds.High:
		if s.immediateNeed(rec) {
			*reasons = append(*reasons, "immediate need")
			return model.PriorityUrgent
		}
		return model.PriorityHigh
	case total >= s.w.Thresholds.Medium:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func (s *LeadScorer) immediateNeed(rec model.BusinessRecord) bool {
	if rec.Classification != nil && rec.Classification.ImmediateNeed {
		return true
	}
	return rec.WebsiteAnalysis != nil && s.urgent[rec.WebsiteAnalysis.SecurityLevel]
}

func matchVertical(rec model.BusinessRecord, verticals []string) (string, bool) {
	var haystack []string
	for _, s := range []string{rec.Category, rec.Name} {
		if n := dedup.Normalize(s); n != "" {
			haystack = append(haystack, n)
		}
	}
	if rec.Classification != nil {
		if n := dedup.Normalize(rec.Classification.Industry); n != "" {
			haystack = append(haystack, n)
		}
	}

	for _, v := range verticals {
		nv := dedup.Normalize(v)
		if nv == "" {
			continue
		}
		for _, h := range haystack {
			if containsWord(h, nv) {
				return v, true
			}
		}
	}
	return "", false
}

// containsWord is a substring test on normalised text. Normalisation drops
// spaces, so "real estate" matches "realestateagency".
func containsWord(haystack, needle string) bool {
	return len(needle) >= 3 && strings.Contains(haystack, needle)
}

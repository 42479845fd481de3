package scorer

import (
	"strings"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

// QualityScorer rates how complete and trustworthy a record's data is.
type QualityScorer struct {
	w config.QualityWeights
}

// NewQualityScorer creates a QualityScorer with the given weight table.
func NewQualityScorer(w config.QualityWeights) *QualityScorer {
	return &QualityScorer{w: w}
}

// Score returns the 0-100 quality score of rec. It reads rec only. A record
// without a name scores 0.
func (s *QualityScorer) Score(rec model.BusinessRecord) int {
	if strings.TrimSpace(rec.Name) == "" {
		return 0
	}

	score := s.w.Base
	add := func(present bool, points int) {
		if present {
			score += points
		}
	}

	add(rec.Phone != "", s.w.Phone)
	add(rec.Email != "", s.w.Email)
	add(rec.Website != "", s.w.Website)
	add(rec.HasFullAddress(), s.w.FullAddress)
	add(rec.Rating != nil, s.w.Rating)
	add(rec.ReviewCount != nil && *rec.ReviewCount > 0, s.w.Reviews)
	add(rec.Coordinates != nil, s.w.Coordinates)
	add(len(rec.Hours) > 0, s.w.Hours)
	add(len(rec.ContactPersons) > 0, s.w.ContactPerson)
	add(hasAdditionalEmail(rec), s.w.AdditionalEmail)
	add(len(rec.SocialProfiles) > 0, s.w.Social)
	add(strings.TrimSpace(rec.Description) != "", s.w.Description)

	return clamp(score)
}

func hasAdditionalEmail(rec model.BusinessRecord) bool {
	for _, e := range rec.AdditionalEmails {
		if !strings.EqualFold(e, rec.Email) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

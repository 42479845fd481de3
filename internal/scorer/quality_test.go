package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

func ptr[T any](v T) *T { return &v }

func fullRecord() model.BusinessRecord {
	return model.BusinessRecord{
		Name:             "ABC Consulting",
		Phone:            "+971501234567",
		Email:            "info@abc.ae",
		Website:          "https://abc.ae",
		Address:          "Office 1204, Bay Square",
		Area:             "Business Bay",
		Emirate:          "Dubai",
		Rating:           ptr(4.6),
		ReviewCount:      ptr(88),
		Coordinates:      &model.Coordinates{Lat: 25.18, Lng: 55.27},
		Hours:            []string{"Mon-Fri 9:00-18:00"},
		ContactPersons:   []model.ContactPerson{{Name: "Sara Ali", Title: "Managing Partner"}},
		AdditionalEmails: []string{"sales@abc.ae"},
		SocialProfiles:   []string{"https://linkedin.com/company/abc"},
		Description:      "Management consultancy",
	}
}

func TestQualityScore_NamePlusPhone(t *testing.T) {
	t.Parallel()
	s := NewQualityScorer(config.DefaultQualityWeights())

	rec := model.BusinessRecord{Name: "ABC Consulting", Phone: "+971501234567"}
	assert.Equal(t, 15, s.Score(rec))

	rec.Website = "abc.com"
	assert.Equal(t, 25, s.Score(rec))
}

func TestQualityScore_FullRecord(t *testing.T) {
	t.Parallel()
	s := NewQualityScorer(config.DefaultQualityWeights())
	assert.Equal(t, 95, s.Score(fullRecord()))
}

func TestQualityScore_NameRequired(t *testing.T) {
	t.Parallel()
	s := NewQualityScorer(config.DefaultQualityWeights())
	rec := fullRecord()
	rec.Name = "  "
	assert.Zero(t, s.Score(rec))
}

func TestQualityScore_PartialSignals(t *testing.T) {
	t.Parallel()
	s := NewQualityScorer(config.DefaultQualityWeights())

	tests := []struct {
		name string
		rec  model.BusinessRecord
		want int
	}{
		{"name only", model.BusinessRecord{Name: "X"}, 0},
		{"address without emirate", model.BusinessRecord{Name: "X", Address: "Street 1", Area: "Deira"}, 0},
		{"zero reviews", model.BusinessRecord{Name: "X", ReviewCount: ptr(0), Rating: ptr(3.0)}, 5},
		{"additional equals primary", model.BusinessRecord{Name: "X", Email: "a@x.ae", AdditionalEmails: []string{"A@x.ae"}}, 15},
		{"blank description", model.BusinessRecord{Name: "X", Description: "   "}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.rec))
		})
	}
}

func TestQualityScore_Deterministic(t *testing.T) {
	t.Parallel()
	s := NewQualityScorer(config.DefaultQualityWeights())
	rec := fullRecord()
	before := rec.Clone()

	first := s.Score(rec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score(rec))
	}
	assert.Equal(t, before, rec, "scoring must not modify the record")
}

func TestQualityScore_MonotonicInFields(t *testing.T) {
	t.Parallel()
	s := NewQualityScorer(config.DefaultQualityWeights())
	full := fullRecord()

	adders := []func(*model.BusinessRecord){
		func(r *model.BusinessRecord) { r.Phone = full.Phone },
		func(r *model.BusinessRecord) { r.Email = full.Email },
		func(r *model.BusinessRecord) { r.Website = full.Website },
		func(r *model.BusinessRecord) { r.Address, r.Area, r.Emirate = full.Address, full.Area, full.Emirate },
		func(r *model.BusinessRecord) { r.Rating = full.Rating },
		func(r *model.BusinessRecord) { r.ReviewCount = full.ReviewCount },
		func(r *model.BusinessRecord) { r.Coordinates = full.Coordinates },
		func(r *model.BusinessRecord) { r.Hours = full.Hours },
		func(r *model.BusinessRecord) { r.ContactPersons = full.ContactPersons },
		func(r *model.BusinessRecord) { r.AdditionalEmails = full.AdditionalEmails },
		func(r *model.BusinessRecord) { r.SocialProfiles = full.SocialProfiles },
		func(r *model.BusinessRecord) { r.Description = full.Description },
	}

	// Add fields one at a time in several rotations; the score never drops.
	for start := range adders {
		rec := model.BusinessRecord{Name: full.Name}
		prev := s.Score(rec)
		for i := range adders {
			adders[(start+i)%len(adders)](&rec)
			next := s.Score(rec)
			assert.GreaterOrEqual(t, next, prev)
			prev = next
		}
		assert.Equal(t, 95, prev)
	}
}

func TestQualityScore_ClampedTo100(t *testing.T) {
	t.Parallel()
	w := config.DefaultQualityWeights()
	w.Base = 50
	w.Phone = 60
	s := NewQualityScorer(w)
	assert.Equal(t, 100, s.Score(fullRecord()))
}

func TestValidateQualityWeights(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateQualityWeights(config.DefaultQualityWeights()))

	w := config.DefaultQualityWeights()
	w.Phone = -1
	assert.ErrorContains(t, ValidateQualityWeights(w), "phone must be >= 0")

	assert.ErrorContains(t, ValidateQualityWeights(config.QualityWeights{}), "weight sum")
}

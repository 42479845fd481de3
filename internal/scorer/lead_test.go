package scorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

func scoredRecord(quality int) model.BusinessRecord {
	return model.BusinessRecord{
		Name:         "Prime Realty",
		Category:     "Real Estate Agency",
		Phone:        "+97143334444",
		QualityScore: quality,
	}
}

func TestLeadScore_Bands(t *testing.T) {
	t.Parallel()
	s := NewLeadScorer(config.DefaultLeadWeights())

	tests := []struct {
		name    string
		quality int
		want    model.Priority
		total   int
	}{
		// 0.6 * quality, no vertical match in this context.
		{"low", 50, model.PriorityLow, 30},
		{"medium floor", 84, model.PriorityMedium, 50},
		{"medium ceiling", 115, model.PriorityMedium, 69},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := s.Score(scoredRecord(tt.quality), LeadContext{})
			assert.Equal(t, tt.total, ls.Total)
			assert.Equal(t, tt.want, ls.Priority)
		})
	}
}

func TestLeadScore_HighWithVerticalAndReputation(t *testing.T) {
	t.Parallel()
	s := NewLeadScorer(config.DefaultLeadWeights())

	rec := scoredRecord(85) // 51
	rec.Rating = ptr(4.5)
	rec.ReviewCount = ptr(40)
	ls := s.Score(rec, LeadContext{TargetVerticals: []string{"real estate"}})

	assert.Equal(t, 51, ls.Breakdown["quality"])
	assert.Equal(t, 15, ls.Breakdown["category_match"])
	assert.Equal(t, 5, ls.Breakdown["reputation"])
	assert.Equal(t, 71, ls.Total)
	assert.Equal(t, model.PriorityHigh, ls.Priority)
}

func TestLeadScore_UrgentNeedsImmediateSignal(t *testing.T) {
	t.Parallel()
	s := NewLeadScorer(config.DefaultLeadWeights())

	rec := scoredRecord(85) // 51
	rec.WebsiteAnalysis = &model.WebsiteAnalysis{
		SecurityLevel:   model.SecurityLow,
		DigitalMaturity: model.MaturityOutdated,
	}
	ls := s.Score(rec, LeadContext{})
	// 51 + 12 maturity + 10 security
	assert.Equal(t, 73, ls.Total)
	assert.Equal(t, model.PriorityUrgent, ls.Priority)

	rec.WebsiteAnalysis.SecurityLevel = model.SecurityGood
	rec.WebsiteAnalysis.DigitalMaturity = model.MaturityOutdated
	rec.Classification = &model.Classification{BusinessSize: model.SizeSME}
	ls = s.Score(rec, LeadContext{TargetVerticals: []string{"realty"}})
	// 51 + 12 maturity + 8 size + 15 match
	assert.Equal(t, 86, ls.Total)
	assert.Equal(t, model.PriorityHigh, ls.Priority)

	rec.Classification.ImmediateNeed = true
	ls = s.Score(rec, LeadContext{TargetVerticals: []string{"realty"}})
	assert.Equal(t, model.PriorityUrgent, ls.Priority)
}

func TestLeadScore_ImmediateNeedBelowHighIsNotUrgent(t *testing.T) {
	t.Parallel()
	s := NewLeadScorer(config.DefaultLeadWeights())

	rec := scoredRecord(50)
	rec.Classification = &model.Classification{ImmediateNeed: true}
	ls := s.Score(rec, LeadContext{})
	assert.Equal(t, model.PriorityLow, ls.Priority)
}

func TestLeadScore_PhoneRequired(t *testing.T) {
	t.Parallel()
	s := NewLeadScorer(config.DefaultLeadWeights())

	rec := scoredRecord(100)
	rec.Phone = ""
	rec.WebsiteAnalysis = &model.WebsiteAnalysis{SecurityLevel: model.SecurityLow, DigitalMaturity: model.MaturityOutdated}
	ls := s.Score(rec, LeadContext{TargetVerticals: []string{"real estate"}})

	assert.GreaterOrEqual(t, ls.Total, 70)
	assert.Equal(t, model.PriorityLow, ls.Priority)
	assert.Contains(t, ls.Reasons, "no phone number")

	w := config.DefaultLeadWeights()
	w.RequirePhone = false
	ls = NewLeadScorer(w).Score(rec, LeadContext{TargetVerticals: []string{"real estate"}})
	assert.Equal(t, model.PriorityUrgent, ls.Priority)
}

func TestLeadScore_ClampedAndPure(t *testing.T) {
	t.Parallel()
	w := config.DefaultLeadWeights()
	w.CategoryMatch = 90
	s := NewLeadScorer(w)

	rec := scoredRecord(95)
	before := rec.Clone()
	ls := s.Score(rec, LeadContext{TargetVerticals: []string{"real estate"}})
	assert.Equal(t, 100, ls.Total)
	assert.Equal(t, before, rec)
}

func TestLeadScore_ShortVerticalIgnored(t *testing.T) {
	t.Parallel()
	s := NewLeadScorer(config.DefaultLeadWeights())
	ls := s.Score(scoredRecord(50), LeadContext{TargetVerticals: []string{"re", ""}})
	assert.NotContains(t, ls.Breakdown, "category_match")
}

func TestValidateLeadWeights(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateLeadWeights(config.DefaultLeadWeights()))

	w := config.DefaultLeadWeights()
	w.QualityFactor = 1.5
	w.Thresholds = config.Thresholds{High: 50, Medium: 60}
	w.Security["low"] = -3
	w.UrgentSecurity = []string{"terrible"}

	err := ValidateLeadWeights(w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality_factor")
	assert.Contains(t, err.Error(), "thresholds")
	assert.Contains(t, err.Error(), "security.low")
	assert.Contains(t, err.Error(), "terrible")
}

func TestLoadLeadWeights(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "lead.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lead:
  category_match: 25
  thresholds:
    high: 80
  security:
    low: 12
`), 0o644))

	w, err := LoadLeadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 25, w.CategoryMatch)
	assert.Equal(t, 80, w.Thresholds.High)
	assert.Equal(t, 50, w.Thresholds.Medium, "unset keys keep defaults")
	assert.Equal(t, 12, w.Security["low"])
	assert.InDelta(t, 0.6, w.QualityFactor, 0.001)
}

func TestLoadLeadWeights_Errors(t *testing.T) {
	t.Parallel()
	_, err := LoadLeadWeights(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read lead weights")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lead:\n  thresholds:\n    medium: 90\n"), 0o644))
	_, err = LoadLeadWeights(path)
	assert.ErrorContains(t, err, "thresholds")
}

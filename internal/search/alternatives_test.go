package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadscout/internal/model"
)

func TestAlternativeQueries(t *testing.T) {
	tests := []struct {
		name  string
		query model.SearchQuery
		want  []string
	}{
		{
			name:  "companies in dubai",
			query: model.SearchQuery{Term: "real estate companies", Region: "Dubai"},
			want: []string{
				"real estate companies UAE",
				"real estate services Dubai",
				"real estate Dubai",
				"real business Dubai",
			},
		},
		{
			name:  "region inside term",
			query: model.SearchQuery{Term: "law firms dubai"},
			want: []string{
				"law firms UAE",
				"law services dubai",
				"law firms",
				"law business",
			},
		},
		{
			name:  "single word",
			query: model.SearchQuery{Term: "dentists"},
			want:  []string{"dentists business"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, alt := range AlternativeQueries(tt.query) {
				got = append(got, alt.Text())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlternativeQueriesKeepOptions(t *testing.T) {
	q := model.SearchQuery{
		Term:       "real estate companies",
		MaxResults: 5,
		Options:    model.SearchOptions{Sources: []string{"google_maps"}},
	}
	for _, alt := range AlternativeQueries(q) {
		assert.Equal(t, 5, alt.MaxResults)
		assert.Equal(t, []string{"google_maps"}, alt.Options.Sources)
	}
}

package model

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// MaxTermLength bounds the free-text search term in runes.
const MaxTermLength = 256

// ErrInvalidQuery marks a malformed SearchQuery. It is a caller error and is
// never retried.
var ErrInvalidQuery = eris.New("invalid query")

// SearchOptions selects enrichments and result filters for one query.
// Sources, when set, restricts the configured source list.
type SearchOptions struct {
	EnhanceWithWebsite bool     `json:"enhance_with_website,omitempty" yaml:"enhance_with_website"`
	EnhancedAI         bool     `json:"enhanced_ai,omitempty" yaml:"enhanced_ai"`
	MinScore           int      `json:"min_score,omitempty" yaml:"min_score"`
	MinPriority        Priority `json:"min_priority,omitempty" yaml:"min_priority"`
	Sources            []string `json:"sources,omitempty" yaml:"sources"`
}

// SearchQuery is one request against the aggregation engine. It is passed by
// value and never mutated once issued. MaxResults 0 means uncapped and
// RequireMinResults 0 means the engine default.
type SearchQuery struct {
	Term              string        `json:"term" yaml:"term"`
	Region            string        `json:"region,omitempty" yaml:"region"`
	MaxResults        int           `json:"max_results,omitempty" yaml:"max_results"`
	RequireMinResults int           `json:"require_min_results,omitempty" yaml:"require_min_results"`
	Options           SearchOptions `json:"options" yaml:"options"`
}

// Validate reports a malformed query. Every returned error wraps ErrInvalidQuery.
func (q SearchQuery) Validate() error {
	var problems []string

	term := strings.TrimSpace(q.Term)
	switch {
	case term == "":
		problems = append(problems, "term is required")
	case utf8.RuneCountInString(term) > MaxTermLength:
		problems = append(problems, "term exceeds 256 characters")
	}
	if q.MaxResults < 0 {
		problems = append(problems, "max_results must not be negative")
	}
	if q.RequireMinResults < 0 {
		problems = append(problems, "require_min_results must not be negative")
	}
	if q.Options.MinScore < 0 || q.Options.MinScore > 100 {
		problems = append(problems, "min_score must be within 0..100")
	}

	if len(problems) > 0 {
		return eris.Wrap(ErrInvalidQuery, strings.Join(problems, "; "))
	}
	return nil
}

// Text returns the term and region joined the way sources expect a free-text
// query.
func (q SearchQuery) Text() string {
	term := strings.TrimSpace(q.Term)
	region := strings.TrimSpace(q.Region)
	if region == "" || strings.Contains(strings.ToLower(term), strings.ToLower(region)) {
		return term
	}
	return term + " " + region
}

// WithTerm returns a copy of q searching for term instead.
func (q SearchQuery) WithTerm(term string) SearchQuery {
	q.Term = term
	if q.Options.Sources != nil {
		q.Options.Sources = append([]string(nil), q.Options.Sources...)
	}
	return q
}

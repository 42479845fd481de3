package search

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	reDubai   = regexp.MustCompile(`(?i)\bdubai\b`)
	reCompany = regexp.MustCompile(`(?i)\b(companies|firms)\b`)
)

// AlternativeQueries derives broader queries to try when a run finds
// nothing. Variants that reduce to the original query text, or repeat an
// earlier variant, are omitted.
func AlternativeQueries(q model.SearchQuery) []model.SearchQuery {
	term := strings.TrimSpace(q.Term)
	words := strings.Fields(term)
	if len(words) == 0 {
		return nil
	}

	var candidates []model.SearchQuery

	uae := q.WithTerm(reDubai.ReplaceAllString(term, "UAE"))
	uae.Region = reDubai.ReplaceAllString(q.Region, "UAE")
	candidates = append(candidates, uae)

	candidates = append(candidates, q.WithTerm(reCompany.ReplaceAllString(term, "services")))

	if len(words) > 2 {
		candidates = append(candidates, q.WithTerm(strings.Join(words[:2], " ")))
	}
	if len(words) > 1 || !strings.EqualFold(words[0], "business") {
		candidates = append(candidates, q.WithTerm(words[0]+" business"))
	}

	seen := map[string]bool{strings.ToLower(q.Text()): true}
	var out []model.SearchQuery
	for _, c := range candidates {
		key := strings.ToLower(c.Text())
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

package source

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadscout/internal/dedup"
	"github.com/sells-group/leadscout/internal/model"
)

// fixtureFile is the on-disk layout of a fixture source.
type fixtureFile struct {
	Listings []model.RawRecord `yaml:"listings"`
}

// Fixture serves listings from a YAML file. It is useful offline and in
// tests. A listing matches when every word of the term appears in its name,
// category, description or address fields, and the region, if any, appears
// in its address fields.
type Fixture struct {
	name       string
	path       string
	confidence float64

	mu       sync.RWMutex
	listings []model.RawRecord
	opened   bool
}

// NewFixture creates a fixture adapter reading path on Open.
func NewFixture(name, path string, confidence float64) *Fixture {
	if name == "" {
		name = "fixture"
	}
	return &Fixture{name: name, path: path, confidence: confidence}
}

// Name implements Adapter.
func (f *Fixture) Name() string { return f.name }

// Open loads the listings file.
func (f *Fixture) Open(_ context.Context) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return eris.Wrapf(err, "%s: read %s", f.name, f.path)
	}
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return eris.Wrapf(err, "%s: parse %s", f.name, f.path)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings = file.Listings
	f.opened = true
	return nil
}

// Close releases the loaded listings.
func (f *Fixture) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings = nil
	f.opened = false
	return nil
}

// Fetch implements Adapter.
func (f *Fixture) Fetch(_ context.Context, q model.SearchQuery) ([]model.RawRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.opened {
		return nil, eris.Errorf("%s: fetch before open", f.name)
	}

	words := strings.Fields(q.Term)
	region := dedup.Normalize(q.Region)

	var out []model.RawRecord
	for _, l := range f.listings {
		if !matchesTerm(l, words) {
			continue
		}
		if region != "" && !strings.Contains(dedup.Normalize(l.Address+l.Area+l.Emirate), region) {
			continue
		}
		rec := l
		rec.Source = f.name
		if rec.Confidence == 0 {
			rec.Confidence = f.confidence
		}
		out = append(out, rec)
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			break
		}
	}
	return out, nil
}

func matchesTerm(l model.RawRecord, words []string) bool {
	hay := dedup.Normalize(strings.Join([]string{
		l.Name, l.Category, l.Description, l.Address, l.Area, l.Emirate,
	}, " "))
	for _, w := range words {
		n := dedup.Normalize(w)
		if n == "" {
			continue
		}
		if !strings.Contains(hay, stem(n)) {
			return false
		}
	}
	return true
}

// stem drops a plural suffix so "agencies" matches "agency".
func stem(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "s") && len(w) > 3:
		return w[:len(w)-1]
	default:
		return w
	}
}

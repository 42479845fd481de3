package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessRecord_Clone_IsDeep(t *testing.T) {
	t.Parallel()

	rating := 4.5
	orig := BusinessRecord{
		Name:             "ABC Consulting",
		Rating:           &rating,
		Coordinates:      &Coordinates{Lat: 25.2, Lng: 55.3},
		AdditionalEmails: []string{"a@abc.ae"},
		Provenance:       map[Field]Provenance{FieldName: {Source: "google_maps", Weight: 0.9}},
		DataSources:      []string{"google_maps"},
		LeadScore:        &LeadScore{Total: 40, Breakdown: map[string]int{"quality": 40}},
		WebsiteAnalysis:  &WebsiteAnalysis{Technologies: []string{"wordpress"}},
	}

	c := orig.Clone()
	*c.Rating = 1
	c.Coordinates.Lat = 0
	c.AdditionalEmails[0] = "changed"
	c.Provenance[FieldName] = Provenance{Source: "osm"}
	c.DataSources[0] = "osm"
	c.LeadScore.Breakdown["quality"] = 0
	c.WebsiteAnalysis.Technologies[0] = "wix"

	assert.InDelta(t, 4.5, *orig.Rating, 0.0001)
	assert.InDelta(t, 25.2, orig.Coordinates.Lat, 0.0001)
	assert.Equal(t, "a@abc.ae", orig.AdditionalEmails[0])
	assert.Equal(t, "google_maps", orig.Provenance[FieldName].Source)
	assert.Equal(t, "google_maps", orig.DataSources[0])
	assert.Equal(t, 40, orig.LeadScore.Breakdown["quality"])
	assert.Equal(t, "wordpress", orig.WebsiteAnalysis.Technologies[0])
}

func TestBusinessRecord_LeadTotal(t *testing.T) {
	t.Parallel()
	var r BusinessRecord
	assert.Equal(t, -1, r.LeadTotal())
	r.LeadScore = &LeadScore{Total: 0}
	assert.Equal(t, 0, r.LeadTotal())
}

func TestBusinessRecord_HasFullAddress(t *testing.T) {
	t.Parallel()
	r := BusinessRecord{Address: "Office 12, Bay Square", Area: "Business Bay"}
	assert.False(t, r.HasFullAddress())
	r.Emirate = "Dubai"
	assert.True(t, r.HasFullAddress())
}

func TestRunStats_ZeroValueHelpers(t *testing.T) {
	t.Parallel()

	s := NewRunStats()
	assert.NotNil(t, s.SourcesUsed)
	assert.NotNil(t, s.Sources)
	_, ok := s.Source("google_maps")
	assert.False(t, ok)

	s.Sources = append(s.Sources, SourceStats{Name: "osm", Attempts: 2})
	s.SourcesUsed = append(s.SourcesUsed, "osm")
	c := s.Clone()
	c.SourcesUsed[0] = "other"
	c.Sources[0].Attempts = 9

	ss, ok := s.Source("osm")
	assert.True(t, ok)
	assert.Equal(t, 2, ss.Attempts)
	assert.Equal(t, "osm", s.SourcesUsed[0])
}

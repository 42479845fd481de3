package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/google/mocks"
)

func baseConfig() config.Config {
	return config.Config{
		Sources: config.SourcesConfig{
			Order: config.DefaultSourceOrder,
			GoogleMaps: config.GoogleMapsConfig{
				Enabled:    true,
				Confidence: 0.9,
			},
			OpenStreetMap: config.OSMConfig{Enabled: true, Confidence: 0.6},
			Directories: []config.DirectoryConfig{
				{Name: "yelp", Enabled: false, Confidence: 0.8},
				{Name: "yellow_pages", Enabled: true, Confidence: 0.5, SearchURL: "https://yp.test/?q={term}"},
				{Name: "business_directory", Enabled: true, Confidence: 0.7, SearchURL: "https://bd.test/?q={term}"},
			},
			Fixture: config.FixtureConfig{Enabled: true, Name: "fixture", Path: "listings.yaml", Confidence: 0.5},
		},
		Search: config.SearchConfig{RegionBounds: dubaiBounds},
	}
}

func TestBuild_OrderAndDisabled(t *testing.T) {
	cfg := baseConfig()
	reg, err := Build(cfg, Deps{Google: mocks.NewMockClient(t)})
	require.NoError(t, err)

	assert.Equal(t, []string{"google_maps", "yellow_pages", "open_street_map", "business_directory", "fixture"}, reg.Names())

	infos := reg.Infos()
	require.Len(t, infos, 6)
	assert.Equal(t, "yelp", infos[1].Name)
	assert.False(t, infos[1].Enabled)
}

func TestBuild_GoogleWithoutKeyIsSkipped(t *testing.T) {
	cfg := baseConfig()
	reg, err := Build(cfg, Deps{})
	require.NoError(t, err)

	assert.NotContains(t, reg.Names(), "google_maps")
	info := reg.Infos()[0]
	assert.Equal(t, "google_maps", info.Name)
	assert.False(t, info.Enabled)
	assert.Contains(t, info.Reason, "key")
}

func TestBuild_CustomOrder(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.Order = []string{"fixture", "open_street_map", "unknown_source"}
	cfg.Sources.GoogleMaps.Key = "k"

	reg, err := Build(cfg, Deps{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fixture", "open_street_map", "google_maps", "yellow_pages", "business_directory"}, reg.Names())

	a, err := reg.Get("fixture")
	require.NoError(t, err)
	_, ok := a.(Lifecycle)
	assert.True(t, ok)
}

func TestBuild_DuplicateNames(t *testing.T) {
	cfg := baseConfig()
	cfg.Sources.Directories = append(cfg.Sources.Directories, config.DirectoryConfig{Name: "open_street_map"})
	_, err := Build(cfg, Deps{})
	assert.ErrorContains(t, err, "duplicate source name")
}

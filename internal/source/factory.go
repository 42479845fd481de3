package source

import (
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/google"
	"github.com/sells-group/leadscout/pkg/nominatim"
)

// Deps overrides the clients adapters are built with. Zero values build
// real clients from config.
type Deps struct {
	HTTPClient *http.Client
	Google     google.Client
	Nominatim  nominatim.Client
}

type candidate struct {
	info  Info
	build func() Adapter
}

// Build creates a registry of the enabled sources in configured priority
// order. Sources listed in sources.order come first; the rest follow in
// the order they are configured.
func Build(cfg config.Config, deps Deps) (*Registry, error) {
	bounds := NewBounds(cfg.Search.RegionBounds)
	sc := cfg.Sources
	ua := sc.UserAgent

	var cands []candidate

	gm := sc.GoogleMaps
	googleInfo := Info{Name: GooglePlacesName, Kind: "google_places", Enabled: gm.Enabled, Confidence: gm.Confidence}
	if gm.Enabled && gm.Key == "" && deps.Google == nil {
		googleInfo.Enabled = false
		googleInfo.Reason = "sources.google_maps.key not set"
	}
	cands = append(cands, candidate{info: googleInfo, build: func() Adapter {
		client := deps.Google
		if client == nil {
			opts := []google.Option{}
			if gm.BaseURL != "" {
				opts = append(opts, google.WithBaseURL(gm.BaseURL))
			}
			if deps.HTTPClient != nil {
				opts = append(opts, google.WithHTTPClient(deps.HTTPClient))
			}
			client = google.NewClient(gm.Key, opts...)
		}
		return NewGooglePlaces(client, gm.Confidence, gm.PageSize, gm.RatePerSec, bounds)
	}})

	osm := sc.OpenStreetMap
	cands = append(cands, candidate{
		info: Info{Name: OpenStreetMapName, Kind: "nominatim", Enabled: osm.Enabled, Confidence: osm.Confidence},
		build: func() Adapter {
			client := deps.Nominatim
			if client == nil {
				agent := ua
				if osm.Email != "" {
					agent += " " + osm.Email
				}
				opts := []nominatim.Option{
					nominatim.WithUserAgent(agent),
					nominatim.WithRateLimit(osm.RatePerSec),
				}
				if osm.BaseURL != "" {
					opts = append(opts, nominatim.WithBaseURL(osm.BaseURL))
				}
				if deps.HTTPClient != nil {
					opts = append(opts, nominatim.WithHTTPClient(deps.HTTPClient))
				}
				client = nominatim.NewClient(opts...)
			}
			return NewOpenStreetMap(client, osm.Confidence, osm.Limit, bounds)
		},
	})

	for _, d := range sc.Directories {
		cands = append(cands, candidate{
			info:  Info{Name: d.Name, Kind: "directory", Enabled: d.Enabled, Confidence: d.Confidence},
			build: func() Adapter { return NewDirectory(d, deps.HTTPClient, ua) },
		})
	}

	fx := sc.Fixture
	fixtureName := fx.Name
	if fixtureName == "" {
		fixtureName = "fixture"
	}
	cands = append(cands, candidate{
		info:  Info{Name: fixtureName, Kind: "fixture", Enabled: fx.Enabled, Confidence: fx.Confidence},
		build: func() Adapter { return NewFixture(fixtureName, fx.Path, fx.Confidence) },
	})

	ordered, err := orderCandidates(cands, sc.Order)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, c := range ordered {
		reg.describe(c.info)
		if !c.info.Enabled {
			if c.info.Reason != "" {
				zap.L().Warn("source disabled", zap.String("source", c.info.Name), zap.String("reason", c.info.Reason))
			}
			continue
		}
		reg.Register(c.build())
	}
	return reg, nil
}

func orderCandidates(cands []candidate, order []string) ([]candidate, error) {
	byName := make(map[string]int, len(cands))
	for i, c := range cands {
		if _, dup := byName[c.info.Name]; dup {
			return nil, eris.Errorf("source: duplicate source name %q", c.info.Name)
		}
		byName[c.info.Name] = i
	}

	out := make([]candidate, 0, len(cands))
	used := make(map[string]bool, len(cands))
	for _, name := range order {
		i, ok := byName[name]
		if !ok {
			// Order may name catalogue sources that are not configured.
			zap.L().Debug("source order names unconfigured source", zap.String("source", name))
			continue
		}
		if used[name] {
			continue
		}
		used[name] = true
		out = append(out, cands[i])
	}
	for _, c := range cands {
		if !used[c.info.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

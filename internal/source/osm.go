package source

import (
	"context"
	"errors"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/nominatim"
)

// OpenStreetMapName is the registry name of the Nominatim source.
const OpenStreetMapName = "open_street_map"

// OpenStreetMap searches OSM through Nominatim. It carries names,
// coordinates and sometimes contact tags.
type OpenStreetMap struct {
	client     nominatim.Client
	confidence float64
	limit      int
	bounds     Bounds
}

// NewOpenStreetMap creates the OpenStreetMap adapter.
func NewOpenStreetMap(client nominatim.Client, confidence float64, limit int, bounds Bounds) *OpenStreetMap {
	if limit <= 0 {
		limit = 10
	}
	return &OpenStreetMap{client: client, confidence: confidence, limit: limit, bounds: bounds}
}

// Name implements Adapter.
func (o *OpenStreetMap) Name() string { return OpenStreetMapName }

// Fetch implements Adapter.
func (o *OpenStreetMap) Fetch(ctx context.Context, q model.SearchQuery) ([]model.RawRecord, error) {
	req := nominatim.SearchRequest{Query: q.Text(), Limit: o.limit}
	if q.MaxResults > 0 && q.MaxResults < req.Limit {
		req.Limit = q.MaxResults
	}
	if minLat, minLng, maxLat, maxLng, ok := o.bounds.Box(); ok {
		req.ViewBox = &nominatim.ViewBox{MinLon: minLng, MinLat: minLat, MaxLon: maxLng, MaxLat: maxLat}
	}

	places, err := o.client.Search(ctx, req)
	if err != nil {
		var apiErr *nominatim.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.NewHTTPError(o.Name(), apiErr.StatusCode, err)
		}
		return nil, resilience.NewSourceError(o.Name(), resilience.KindOf(err), err)
	}

	out := make([]model.RawRecord, 0, len(places))
	for _, p := range places {
		out = append(out, o.toRecord(p))
	}
	return out, nil
}

func (o *OpenStreetMap) toRecord(p nominatim.Place) model.RawRecord {
	rec := model.RawRecord{
		Source:     o.Name(),
		Confidence: o.confidence,
		Name:       p.Title(),
		Category:   osmCategory(p),
		Address:    p.DisplayName,
		Area:       firstNonEmpty(ParseArea(p.DisplayName), p.Address.Suburb, p.Address.Neighbourhood),
		Emirate:    firstNonEmpty(ParseEmirate(p.DisplayName), p.Address.State, p.Address.City),
		Phone:      firstNonEmpty(p.ExtraTags["phone"], p.ExtraTags["contact:phone"]),
		Email:      firstNonEmpty(p.ExtraTags["email"], p.ExtraTags["contact:email"]),
		Website:    firstNonEmpty(p.ExtraTags["website"], p.ExtraTags["contact:website"]),
	}
	if h := p.ExtraTags["opening_hours"]; h != "" {
		rec.Hours = []string{h}
	}
	if lat, lon, ok := p.Coordinates(); ok {
		rec.Coordinates = &model.Coordinates{Lat: lat, Lng: lon}
	}
	return rec
}

// osmCategory turns an OSM type tag like "real_estate_agent" into
// "Real Estate Agent". Generic types fall back to "Business".
func osmCategory(p nominatim.Place) string {
	t := p.Type
	if t == "" || t == "yes" || t == "building" {
		return "Business"
	}
	words := strings.Fields(strings.ReplaceAll(t, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

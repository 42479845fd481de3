package source

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/google"
)

// GooglePlacesName is the registry name of the Google Places source.
const GooglePlacesName = "google_maps"

// maxGooglePageSize is the Places API page size ceiling.
const maxGooglePageSize = 20

// GooglePlaces queries the Places Text Search API.
type GooglePlaces struct {
	client     google.Client
	confidence float64
	pageSize   int
	bounds     Bounds
	limiter    *rate.Limiter
}

// NewGooglePlaces creates the Google Places adapter.
func NewGooglePlaces(client google.Client, confidence float64, pageSize int, ratePerSec float64, bounds Bounds) *GooglePlaces {
	if pageSize <= 0 || pageSize > maxGooglePageSize {
		pageSize = maxGooglePageSize
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &GooglePlaces{
		client:     client,
		confidence: confidence,
		pageSize:   pageSize,
		bounds:     bounds,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Name implements Adapter.
func (g *GooglePlaces) Name() string { return GooglePlacesName }

// Fetch implements Adapter.
func (g *GooglePlaces) Fetch(ctx context.Context, q model.SearchQuery) ([]model.RawRecord, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, resilience.NewSourceError(g.Name(), resilience.KindOf(err), eris.Wrap(err, "rate limit wait"))
	}

	req := google.TextSearchRequest{
		TextQuery: q.Text(),
		PageSize:  g.pageSize,
	}
	if q.MaxResults > 0 && q.MaxResults < req.PageSize {
		req.PageSize = q.MaxResults
	}
	if minLat, minLng, maxLat, maxLng, ok := g.bounds.Box(); ok {
		req.LocationBias = &google.LocationBias{Rectangle: google.Rectangle{
			Low:  google.LatLng{Latitude: minLat, Longitude: minLng},
			High: google.LatLng{Latitude: maxLat, Longitude: maxLng},
		}}
	}

	resp, err := g.client.TextSearch(ctx, req)
	if err != nil {
		var apiErr *google.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.NewHTTPError(g.Name(), apiErr.StatusCode, err)
		}
		return nil, resilience.NewSourceError(g.Name(), resilience.KindOf(err), err)
	}

	out := make([]model.RawRecord, 0, len(resp.Places))
	for _, p := range resp.Places {
		out = append(out, g.toRecord(p))
	}
	return out, nil
}

func (g *GooglePlaces) toRecord(p google.Place) model.RawRecord {
	rec := model.RawRecord{
		Source:      g.Name(),
		Confidence:  g.confidence,
		Name:        strings.TrimSpace(p.DisplayName.Text),
		Category:    p.PrimaryTypeDisplayName.Text,
		Address:     p.FormattedAddress,
		Area:        ParseArea(p.FormattedAddress),
		Emirate:     ParseEmirate(p.FormattedAddress),
		Website:     p.WebsiteURI,
		Description: p.EditorialSummary.Text,
	}

	rec.Phone = p.InternationalPhoneNumber
	if rec.Phone == "" {
		rec.Phone = p.NationalPhoneNumber
	}
	if p.UserRatingCount > 0 {
		rating, count := p.Rating, p.UserRatingCount
		rec.Rating = &rating
		rec.ReviewCount = &count
	}
	if p.Location != nil {
		rec.Coordinates = &model.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	if p.RegularOpeningHours != nil && len(p.RegularOpeningHours.WeekdayDescriptions) > 0 {
		rec.Hours = append([]string(nil), p.RegularOpeningHours.WeekdayDescriptions...)
	}
	return rec
}

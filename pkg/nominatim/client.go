// Package nominatim is a minimal client for the OpenStreetMap Nominatim
// search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "leadscout/1.0"
)

// Client searches OpenStreetMap for named places.
type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]Place, error)
}

// SearchRequest is a free-form place search.
type SearchRequest struct {
	Query        string
	Limit        int
	CountryCodes []string
	// ViewBox biases results toward a bounding box. Bounded restricts
	// results to it.
	ViewBox *ViewBox
	Bounded bool
}

// ViewBox is a lon/lat bounding box.
type ViewBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Place is one search hit.
type Place struct {
	PlaceID     int64             `json:"place_id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Address     Address           `json:"address"`
	ExtraTags   map[string]string `json:"extratags"`
}

// Address is the structured address returned with addressdetails=1.
type Address struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

// Coordinates parses the place's string coordinates.
func (p Place) Coordinates() (lat, lon float64, ok bool) {
	lat, err1 := strconv.ParseFloat(p.Lat, 64)
	lon, err2 := strconv.ParseFloat(p.Lon, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// Title returns the place's own name, falling back to the first component of
// its display name.
func (p Place) Title() string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	first, _, _ := strings.Cut(p.DisplayName, ",")
	return strings.TrimSpace(first)
}

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nominatim: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header. The public instance rejects
// requests without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit caps requests per second. The public instance allows 1.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Nominatim client limited to one request per second.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		http:      &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, in SearchRequest) ([]Place, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, eris.New("nominatim: empty query")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit")
	}

	params := url.Values{
		"q":              {in.Query},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"extratags":      {"1"},
	}
	if in.Limit > 0 {
		params.Set("limit", strconv.Itoa(in.Limit))
	}
	if len(in.CountryCodes) > 0 {
		params.Set("countrycodes", strings.Join(in.CountryCodes, ","))
	}
	if vb := in.ViewBox; vb != nil {
		params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g", vb.MinLon, vb.MaxLat, vb.MaxLon, vb.MinLat))
		if in.Bounded {
			params.Set("bounded", "1")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse response")
	}
	return places, nil
}

package source

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/resilience"
)

const defaultMaxBody = 2 << 20

// httpFetcher is the HTTP plumbing shared by scraping adapters: one client,
// a per-source rate limiter, a fixed User-Agent, block detection and status
// classification.
type httpFetcher struct {
	source    string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBody   int64
}

func newHTTPFetcher(source string, client *http.Client, ratePerSec float64, userAgent string) *httpFetcher {
	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &httpFetcher{
		source:    source,
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
		maxBody:   defaultMaxBody,
	}
}

// get fetches url and returns the body of a 2xx response. Every failure is
// a classified *resilience.SourceError.
func (f *httpFetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, f.classify(eris.Wrap(err, "rate limit wait"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: create request", f.source)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(eris.Wrap(err, "fetch"))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, f.classify(eris.Wrap(err, "read body"))
	}

	if serr := checkResponse(f.source, resp, body); serr != nil {
		return nil, serr
	}

	return body, nil
}

// classify turns a transport error into a SourceError. Unclassifiable
// errors become Unknown and are not retried.
func (f *httpFetcher) classify(err error) error {
	return resilience.NewSourceError(f.source, resilience.KindOf(err), err)
}

package source

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/resilience"
)

func TestHTTPFetcher_Get(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://dir.test/ok",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "agent/1.0", req.Header.Get("User-Agent"))
			return httpmock.NewStringResponse(http.StatusOK, "<html><body>listings</body></html>"), nil
		})
	transport.RegisterResponder(http.MethodGet, "https://dir.test/busy",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "try later"))
	transport.RegisterResponder(http.MethodGet, "https://dir.test/slow",
		httpmock.NewStringResponder(http.StatusGatewayTimeout, ""))

	f := newHTTPFetcher("dir", &http.Client{Transport: transport}, 0, "agent/1.0")

	body, err := f.get(context.Background(), "https://dir.test/ok")
	require.NoError(t, err)
	assert.Contains(t, string(body), "<html>")

	_, err = f.get(context.Background(), "https://dir.test/busy")
	assert.Equal(t, resilience.KindUnavailable, resilience.KindOf(err))

	_, err = f.get(context.Background(), "https://dir.test/slow")
	assert.Equal(t, resilience.KindTimeout, resilience.KindOf(err))

	_, err = f.get(context.Background(), "https://dir.test/unregistered")
	require.Error(t, err, "httpmock rejects unregistered routes")
}

func TestHTTPFetcher_RateLimit(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://dir.test/ok", httpmock.NewStringResponder(http.StatusOK, "ok"))

	f := newHTTPFetcher("dir", &http.Client{Transport: transport}, 0.01, "")
	_, err := f.get(context.Background(), "https://dir.test/ok")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = f.get(ctx, "https://dir.test/ok")
	require.Error(t, err)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

package source

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/resilience"
)

// Guard names the anti-bot layer a blocked page came from.
type Guard string

// Guards recognised by detectGuard.
const (
	GuardNone       Guard = ""
	GuardCloudflare Guard = "cloudflare"
	GuardPerimeterX Guard = "perimeterx"
	GuardDataDome   Guard = "datadome"
	GuardImperva    Guard = "imperva"
	GuardAkamai     Guard = "akamai"
	GuardCaptcha    Guard = "captcha"
	GuardInterstit  Guard = "interstitial"
)

// guardRule matches a guard by response header or by any of its lowercased
// body markers.
type guardRule struct {
	guard   Guard
	header  string
	markers []string
}

// Vendor rules come before the generic ones; directory sites front their
// listings with one of these, and the vendor name is what shows up in the
// failure stats.
var guardRules = []guardRule{
	{guard: GuardCloudflare, header: "Cf-Mitigated", markers: []string{"cf-browser-verification", "cf-challenge", "checking your browser"}},
	{guard: GuardPerimeterX, markers: []string{"px-captcha", "_pxhd", "perimeterx"}},
	{guard: GuardDataDome, header: "X-Datadome", markers: []string{"captcha-delivery.com", "datadome"}},
	{guard: GuardImperva, markers: []string{"_incapsula_resource", "incapsula incident"}},
	{guard: GuardAkamai, markers: []string{"errors.edgesuite.net"}},
	{guard: GuardCaptcha, markers: []string{"g-recaptcha", "h-captcha", "captcha", "are you a robot", "verify you are human"}},
	{guard: GuardInterstit, markers: []string{"unusual traffic", "access denied", "request unsuccessful"}},
}

// shellLimit is the body size under which a page that only asks for
// JavaScript is treated as a challenge rather than a listing page.
const shellLimit = 2000

// checkResponse classifies a fetched page. It returns nil for a usable 2xx
// page, a KindBlocked error when an anti-bot guard answered, and otherwise
// the status-derived kind.
func checkResponse(source string, resp *http.Response, body []byte) *resilience.SourceError {
	if guard := detectGuard(resp, body); guard != GuardNone {
		return &resilience.SourceError{
			Kind:       resilience.KindBlocked,
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        eris.Errorf("blocked by %s", guard),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resilience.NewHTTPError(source, resp.StatusCode, eris.New(http.StatusText(resp.StatusCode)))
	}
	return nil
}

// detectGuard reports which anti-bot layer, if any, produced resp.
func detectGuard(resp *http.Response, body []byte) Guard {
	if resp == nil {
		return GuardNone
	}

	// Protected sites send vendor headers on every response; only a 403 or
	// 503 makes them a challenge. A 429 stays a rate limit.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("Cf-Ray") != "" || strings.EqualFold(resp.Header.Get("Server"), "cloudflare") {
			return GuardCloudflare
		}
		for _, r := range guardRules {
			if r.header != "" && resp.Header.Get(r.header) != "" {
				return r.guard
			}
		}
	}

	lower := bytes.ToLower(body)
	for _, r := range guardRules {
		for _, m := range r.markers {
			if bytes.Contains(lower, []byte(m)) {
				return r.guard
			}
		}
	}

	if len(body) < shellLimit {
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("javascript")) {
			return GuardInterstit
		}
		if bytes.Contains(lower, []byte(`http-equiv="refresh"`)) {
			return GuardInterstit
		}
	}
	return GuardNone
}

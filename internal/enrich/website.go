package enrich

import (
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/dedup"
	"github.com/sells-group/leadscout/internal/model"
)

// WebsiteName is the provenance source of fields filled from a homepage.
const WebsiteName = "website"

const (
	defaultCacheSize = 256
	defaultMaxBody   = 1 << 20
	maxEmails        = 5
)

type fingerprint struct {
	name     string
	score    int
	patterns []string
}

// fingerprints are matched case-insensitively against the homepage HTML.
var fingerprints = []fingerprint{
	{"WordPress", 30, []string{"/wp-content/", "/wp-includes/", "wp-json"}},
	{"WooCommerce", 40, []string{"/plugins/woocommerce/", "woocommerce-"}},
	{"Magento", 50, []string{"/skin/frontend/", "mage.cookies", "magento"}},
	{"Wix", 40, []string{"wixstatic.com", "static.wix.com"}},
	{"Shopify", 70, []string{"cdn.shopify.com", "myshopify.com"}},
	{"React", 80, []string{"react-dom", "data-reactroot", "__next_data__"}},
	{"Angular", 80, []string{"ng-version", "@angular"}},
	{"Vue", 80, []string{"__vue__", "data-v-app", "vue.min.js"}},
	{"Google Analytics", 60, []string{"google-analytics.com", "googletagmanager.com", "gtag("}},
	{"Facebook Pixel", 60, []string{"connect.facebook.net", "fbq("}},
}

const cloudflareScore = 70

var securityHeaders = []struct {
	header string
	points int
}{
	{"Content-Security-Policy", 15},
	{"Strict-Transport-Security", 15},
	{"X-Frame-Options", 10},
	{"X-Content-Type-Options", 10},
	{"X-XSS-Protection", 10},
}

const (
	httpsPoints = 20
	cdnPoints   = 10
)

var socialHosts = []string{
	"facebook.com", "instagram.com", "linkedin.com", "twitter.com",
	"x.com", "youtube.com", "tiktok.com",
}

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// pageResult is what one homepage fetch yields. It is cached per canonical
// website and must be treated as read-only.
type pageResult struct {
	analysis    model.WebsiteAnalysis
	emails      []string
	phones      []string
	social      []string
	description string
}

// WebsiteAnalyzer fetches a business homepage and reads its security
// posture, technology footprint and contact details. It is safe for
// concurrent use; results are cached by canonical website.
type WebsiteAnalyzer struct {
	client     *http.Client
	limiter    *rate.Limiter
	cache      *lru.Cache[string, pageResult]
	userAgent  string
	maxBody    int64
	confidence float64
}

// NewWebsiteAnalyzer creates a WebsiteAnalyzer. A nil client gets one with
// the configured timeout.
func NewWebsiteAnalyzer(cfg config.WebsiteEnrichConfig, client *http.Client, userAgent string) (*WebsiteAnalyzer, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, pageResult](size)
	if err != nil {
		return nil, eris.Wrap(err, "website: create cache")
	}

	if client == nil {
		timeout := time.Duration(cfg.TimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	confidence := cfg.Confidence
	if confidence <= 0 {
		confidence = 0.4
	}

	return &WebsiteAnalyzer{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      cache,
		userAgent:  userAgent,
		maxBody:    maxBody,
		confidence: confidence,
	}, nil
}

// Name implements Enricher.
func (w *WebsiteAnalyzer) Name() string { return WebsiteName }

// Enhance implements Enricher. A record without a website is marked with a
// missing security level. An unreachable website is a finding, not an
// error; only an invalid URL, a cancelled context or unparseable HTML fail.
func (w *WebsiteAnalyzer) Enhance(ctx context.Context, rec model.BusinessRecord) (model.BusinessRecord, error) {
	if strings.TrimSpace(rec.Website) == "" {
		rec.WebsiteAnalysis = &model.WebsiteAnalysis{
			SecurityLevel:   model.SecurityMissing,
			DigitalMaturity: model.MaturityUnknown,
		}
		return rec, nil
	}

	target, err := homepageURL(rec.Website)
	if err != nil {
		return rec, err
	}

	key := cacheKey(target)
	if res, ok := w.cache.Get(key); ok {
		return w.apply(rec, res), nil
	}

	res, err := w.analyze(ctx, target)
	if err != nil {
		return rec, err
	}
	w.cache.Add(key, res)
	return w.apply(rec, res), nil
}

func (w *WebsiteAnalyzer) analyze(ctx context.Context, target string) (pageResult, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return pageResult{}, eris.Wrap(err, "website: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pageResult{}, eris.Wrap(err, "website: create request")
	}
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return pageResult{}, eris.Wrap(err, "website: fetch")
		}
		return unreachable(target, 0), nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, w.maxBody))
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return pageResult{}, eris.Wrap(err, "website: read body")
		}
		return unreachable(target, resp.StatusCode), nil
	}
	if resp.StatusCode >= 400 {
		return unreachable(target, resp.StatusCode), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageResult{}, eris.Wrap(err, "website: parse html")
	}

	final := target
	https := strings.HasPrefix(target, "https://")
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
		https = resp.Request.URL.Scheme == "https"
	}

	a := model.WebsiteAnalysis{
		URL:            final,
		Reachable:      true,
		HTTPS:          https,
		StatusCode:     resp.StatusCode,
		ResponseMillis: elapsed.Milliseconds(),
	}

	if https {
		a.SecurityScore += httpsPoints
	}
	for _, h := range securityHeaders {
		if resp.Header.Get(h.header) != "" {
			a.SecurityHeaders = append(a.SecurityHeaders, h.header)
			a.SecurityScore += h.points
		}
	}
	cdn := resp.Header.Get("Cf-Ray") != "" || strings.EqualFold(resp.Header.Get("Server"), "cloudflare")
	if cdn || resp.Header.Get("X-Served-By") != "" || resp.Header.Get("X-Cache") != "" {
		a.SecurityScore += cdnPoints
	}
	a.SecurityLevel = securityLevel(a.SecurityScore)

	techs, techScores := detectTechnologies(strings.ToLower(string(body)))
	if cdn {
		techs = append(techs, "Cloudflare")
		techScores = append(techScores, cloudflareScore)
	}
	a.Technologies = techs
	a.MaturityScore = maturityScore(technologyScore(techScores), a.SecurityScore, performanceScore(elapsed))
	a.DigitalMaturity = maturityLevel(a.MaturityScore)

	base, _ := url.Parse(final)
	return pageResult{
		analysis:    a,
		emails:      extractEmails(doc),
		phones:      extractPhones(doc),
		social:      extractSocial(doc, base),
		description: metaDescription(doc),
	}, nil
}

// apply copies a page result onto rec. Contact fields are only filled when
// empty; lists are unioned.
func (w *WebsiteAnalyzer) apply(rec model.BusinessRecord, res pageResult) model.BusinessRecord {
	a := res.analysis
	a.SecurityHeaders = append([]string(nil), a.SecurityHeaders...)
	a.Technologies = append([]string(nil), a.Technologies...)
	rec.WebsiteAnalysis = &a

	if rec.Provenance == nil {
		rec.Provenance = make(map[model.Field]model.Provenance)
	}
	prov := model.Provenance{Source: WebsiteName, Weight: w.confidence}
	fill := func(f model.Field, dst *string, v string) {
		if *dst != "" || v == "" {
			return
		}
		*dst = v
		rec.Provenance[f] = prov
	}

	if len(res.emails) > 0 {
		fill(model.FieldEmail, &rec.Email, res.emails[0])
	}
	for _, e := range res.emails {
		if e != rec.Email && !contains(rec.AdditionalEmails, e) {
			rec.AdditionalEmails = append(rec.AdditionalEmails, e)
		}
	}
	if len(res.phones) > 0 {
		fill(model.FieldPhone, &rec.Phone, res.phones[0])
	}
	fill(model.FieldDescription, &rec.Description, res.description)
	for _, s := range res.social {
		if !contains(rec.SocialProfiles, s) {
			rec.SocialProfiles = append(rec.SocialProfiles, s)
		}
	}
	return rec
}

func unreachable(target string, status int) pageResult {
	return pageResult{analysis: model.WebsiteAnalysis{
		URL:             target,
		StatusCode:      status,
		SecurityLevel:   model.SecurityMissing,
		DigitalMaturity: model.MaturityUnknown,
	}}
}

func homepageURL(website string) (string, error) {
	website = strings.TrimSpace(website)
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil {
		return "", eris.Wrapf(err, "website: invalid url %q", website)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", eris.Errorf("website: invalid url %q", website)
	}
	return u.String(), nil
}

// cacheKey identifies a homepage by host, port and path, ignoring scheme
// and a leading "www.".
func cacheKey(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.") + strings.TrimSuffix(u.Path, "/")
}

func detectTechnologies(lowerHTML string) ([]string, []int) {
	var names []string
	var scores []int
	for _, fp := range fingerprints {
		for _, p := range fp.patterns {
			if strings.Contains(lowerHTML, p) {
				names = append(names, fp.name)
				scores = append(scores, fp.score)
				break
			}
		}
	}
	return names, scores
}

// technologyScore sums fingerprint scores with a bonus for a broad stack.
// A site with no recognisable technology scores 20.
func technologyScore(scores []int) int {
	if len(scores) == 0 {
		return 20
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	if len(scores) >= 3 {
		total += 10
	}
	if len(scores) >= 5 {
		total += 10
	}
	return min(total, 100)
}

func performanceScore(elapsed time.Duration) int {
	switch {
	case elapsed < 2*time.Second:
		return 80
	case elapsed < 4*time.Second:
		return 70
	case elapsed < 6*time.Second:
		return 60
	default:
		return 40
	}
}

func maturityScore(tech, security, perf int) int {
	return int(math.Round(0.4*float64(tech) + 0.35*float64(security) + 0.25*float64(perf)))
}

func securityLevel(score int) string {
	switch {
	case score >= 60:
		return model.SecurityGood
	case score >= 40:
		return model.SecurityBasic
	default:
		return model.SecurityLow
	}
}

func maturityLevel(score int) string {
	switch {
	case score >= 70:
		return model.MaturityMature
	case score >= 55:
		return model.MaturityDeveloping
	case score >= 40:
		return model.MaturityBasic
	default:
		return model.MaturityOutdated
	}
}

func metaDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.Join(strings.Fields(v), " "); v != "" {
				return v
			}
		}
	}
	return ""
}

func extractEmails(doc *goquery.Document) []string {
	var out []string
	add := func(e string) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || len(out) >= maxEmails || contains(out, e) || !plausibleEmail(e) {
			return
		}
		out = append(out, e)
	}

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if dec, err := url.PathUnescape(addr); err == nil {
			addr = dec
		}
		add(addr)
	})
	for _, m := range emailRe.FindAllString(doc.Find("body").Text(), -1) {
		add(m)
	}
	return out
}

func plausibleEmail(e string) bool {
	if !emailRe.MatchString(e) {
		return false
	}
	for _, suffix := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(e, suffix) {
			return false
		}
	}
	return !strings.HasSuffix(e, "@example.com")
}

func extractPhones(doc *goquery.Document) []string {
	var out []string
	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if p := dedup.CleanPhone(strings.TrimPrefix(href, "tel:")); p != "" && !contains(out, p) {
			out = append(out, p)
		}
	})
	return out
}

func extractSocial(doc *goquery.Document, base *url.URL) []string {
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if !isSocialHost(host) {
			return
		}
		path := strings.ToLower(u.Path)
		if path == "" || path == "/" || strings.Contains(path, "share") || strings.Contains(path, "intent") {
			return
		}
		link := "https://" + host + strings.TrimSuffix(u.Path, "/")
		if !contains(out, link) {
			out = append(out, link)
		}
	})
	return out
}

func isSocialHost(host string) bool {
	for _, h := range socialHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

package source

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resilience"
)

var (
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	digitsRe = regexp.MustCompile(`\d[\d,]*`)
)

// Directory scrapes an HTML business directory search page with CSS
// selectors from config.
type Directory struct {
	cfg     config.DirectoryConfig
	fetcher *httpFetcher
}

// NewDirectory creates a directory adapter. client may be nil.
func NewDirectory(cfg config.DirectoryConfig, client *http.Client, userAgent string) *Directory {
	return &Directory{
		cfg:     cfg,
		fetcher: newHTTPFetcher(cfg.Name, client, cfg.RatePerSec, userAgent),
	}
}

// Name implements Adapter.
func (d *Directory) Name() string { return d.cfg.Name }

// SearchURL expands the configured URL template for q.
func (d *Directory) SearchURL(q model.SearchQuery) string {
	r := strings.NewReplacer(
		"{term}", url.QueryEscape(strings.TrimSpace(q.Term)),
		"{region}", url.QueryEscape(strings.TrimSpace(q.Region)),
		"{query}", url.QueryEscape(q.Text()),
	)
	return r.Replace(d.cfg.SearchURL)
}

// Fetch implements Adapter.
func (d *Directory) Fetch(ctx context.Context, q model.SearchQuery) ([]model.RawRecord, error) {
	pageURL := d.SearchURL(q)
	body, err := d.fetcher.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, resilience.NewSourceError(d.Name(), resilience.KindUnknown, eris.Wrap(err, "parse html"))
	}
	base, _ := url.Parse(pageURL)

	var out []model.RawRecord
	sel := d.cfg.Selectors
	doc.Find(sel.Listing).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rec := d.parseListing(s, base)
		if rec.Name == "" {
			zap.L().Debug("directory listing without name", zap.String("source", d.Name()))
			return true
		}
		out = append(out, rec)
		return q.MaxResults <= 0 || len(out) < q.MaxResults
	})
	return out, nil
}

func (d *Directory) parseListing(s *goquery.Selection, base *url.URL) model.RawRecord {
	sel := d.cfg.Selectors
	rec := model.RawRecord{
		Source:     d.Name(),
		Confidence: d.cfg.Confidence,
		Name:       text(s, sel.Name),
		Category:   text(s, sel.Category),
		Address:    text(s, sel.Address),
	}
	rec.Area = ParseArea(rec.Address)
	rec.Emirate = ParseEmirate(rec.Address)

	rec.Phone = hrefValue(s, sel.Phone, "tel:")
	if rec.Phone == "" {
		rec.Phone = text(s, sel.Phone)
	}
	rec.Email = hrefValue(s, sel.Email, "mailto:")
	if rec.Email == "" {
		rec.Email = text(s, sel.Email)
	}
	if href := attr(s, sel.Website, "href"); href != "" {
		rec.Website = resolve(base, href)
	}

	if raw := firstNonEmpty(attr(s, sel.Rating, "aria-label"), text(s, sel.Rating)); raw != "" {
		if m := numberRe.FindString(raw); m != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64); err == nil && v >= 0 && v <= 5 {
				rec.Rating = &v
			}
		}
	}
	if raw := text(s, sel.Reviews); raw != "" {
		if m := digitsRe.FindString(raw); m != "" {
			if v, err := strconv.Atoi(strings.ReplaceAll(m, ",", "")); err == nil {
				rec.ReviewCount = &v
			}
		}
	}
	return rec
}

func text(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

func attr(s *goquery.Selection, selector, name string) string {
	if selector == "" {
		return ""
	}
	v, _ := s.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func hrefValue(s *goquery.Selection, selector, scheme string) string {
	href := attr(s, selector, "href")
	if !strings.HasPrefix(strings.ToLower(href), scheme) {
		return ""
	}
	v := href[len(scheme):]
	if i := strings.IndexByte(v, '?'); i >= 0 {
		v = v[:i]
	}
	if dec, err := url.PathUnescape(v); err == nil {
		v = dec
	}
	return strings.TrimSpace(v)
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil || ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

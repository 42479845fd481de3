// Package metrics exposes Prometheus collectors for search runs. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/leadscout/internal/model"
)

// Search outcomes used as the "outcome" label of leadscout_searches_total.
const (
	OutcomeOK             = "ok"
	OutcomeEmpty          = "empty"
	OutcomeBudgetExceeded = "budget_exceeded"
	OutcomeInvalid        = "invalid"
	OutcomeError          = "error"
)

// Metrics bundles the collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	SearchesTotal      *prometheus.CounterVec
	SearchDuration     prometheus.Histogram
	SourceCallsTotal   *prometheus.CounterVec
	SourceLatency      *prometheus.HistogramVec
	SourceRetriesTotal *prometheus.CounterVec
	SourceFailures     *prometheus.CounterVec
	RecordsTotal       *prometheus.CounterVec
	LeadsTotal         *prometheus.CounterVec
	EnrichFailures     *prometheus.CounterVec
}

// New constructs and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_searches_total",
			Help: "Search runs by outcome.",
		},
		[]string{"outcome"},
	)
	searchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadscout_search_duration_seconds",
			Help:    "Wall time of a search run.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	sourceCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_source_calls_total",
			Help: "Source invocations per run by final outcome.",
		},
		[]string{"source", "outcome"},
	)
	sourceLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadscout_source_latency_seconds",
			Help:    "Time spent on one source in a run, retries included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	sourceRetries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_source_retries_total",
			Help: "Retry attempts scheduled per source.",
		},
		[]string{"source"},
	)
	sourceFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_source_failures_total",
			Help: "Failed source attempts by failure kind.",
		},
		[]string{"source", "kind"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_records_total",
			Help: "Records by stage: fetched, merged, returned.",
		},
		[]string{"stage"},
	)
	leads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_leads_total",
			Help: "Returned records by lead priority.",
		},
		[]string{"priority"},
	)
	enrichFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_enrichment_failures_total",
			Help: "Enrichment failures by enricher.",
		},
		[]string{"enricher"},
	)

	registry.MustRegister(searches, searchDuration, sourceCalls, sourceLatency,
		sourceRetries, sourceFailures, records, leads, enrichFailures)

	return &Metrics{
		Registry:           registry,
		SearchesTotal:      searches,
		SearchDuration:     searchDuration,
		SourceCallsTotal:   sourceCalls,
		SourceLatency:      sourceLatency,
		SourceRetriesTotal: sourceRetries,
		SourceFailures:     sourceFailures,
		RecordsTotal:       records,
		LeadsTotal:         leads,
		EnrichFailures:     enrichFailures,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRun records a finished run and the sources it touched.
func (m *Metrics) ObserveRun(stats model.RunStats, outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(stats.Duration.Seconds())

	for _, ss := range stats.Sources {
		m.SourceCallsTotal.WithLabelValues(ss.Name, string(ss.Outcome)).Inc()
		if ss.Outcome != model.OutcomeSkipped {
			m.SourceLatency.WithLabelValues(ss.Name).Observe(ss.Latency.Seconds())
		}
		if ss.Retries > 0 {
			m.SourceRetriesTotal.WithLabelValues(ss.Name).Add(float64(ss.Retries))
		}
	}

	m.RecordsTotal.WithLabelValues("fetched").Add(float64(stats.RecordsFetched))
	m.RecordsTotal.WithLabelValues("merged").Add(float64(stats.DuplicatesMerged))
	m.RecordsTotal.WithLabelValues("returned").Add(float64(stats.Returned))
}

// IncSearch counts a run that ended before producing stats, such as an
// invalid query.
func (m *Metrics) IncSearch(outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
}

// IncSourceFailure counts one failed attempt against source.
func (m *Metrics) IncSourceFailure(source, kind string) {
	if m == nil {
		return
	}
	m.SourceFailures.WithLabelValues(source, kind).Inc()
}

// ObserveLeads counts returned records by priority. Records without a lead
// score are not counted.
func (m *Metrics) ObserveLeads(records []model.BusinessRecord) {
	if m == nil {
		return
	}
	for _, r := range records {
		if r.LeadScore != nil {
			m.LeadsTotal.WithLabelValues(r.LeadScore.Priority.String()).Inc()
		}
	}
}

// IncEnrichFailure counts a failed enrichment.
func (m *Metrics) IncEnrichFailure(enricher string) {
	if m == nil {
		return
	}
	m.EnrichFailures.WithLabelValues(enricher).Inc()
}

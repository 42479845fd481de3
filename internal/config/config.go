package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourcesConfig lists the data sources and their fallback order.
type SourcesConfig struct {
	// Order is the priority order. Sources missing from it run after the
	// listed ones in the order below.
	Order         []string          `yaml:"order" mapstructure:"order"`
	UserAgent     string            `yaml:"user_agent" mapstructure:"user_agent"`
	GoogleMaps    GoogleMapsConfig  `yaml:"google_maps" mapstructure:"google_maps"`
	OpenStreetMap OSMConfig         `yaml:"open_street_map" mapstructure:"open_street_map"`
	Directories   []DirectoryConfig `yaml:"directories" mapstructure:"directories"`
	Fixture       FixtureConfig     `yaml:"fixture" mapstructure:"fixture"`
}

// GoogleMapsConfig configures the Google Places text search source.
type GoogleMapsConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	PageSize   int     `yaml:"page_size" mapstructure:"page_size"`
}

// OSMConfig configures the Nominatim (OpenStreetMap) source.
type OSMConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Email      string  `yaml:"email" mapstructure:"email"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Limit      int     `yaml:"limit" mapstructure:"limit"`
}

// DirectoryConfig configures one HTML business directory.
type DirectoryConfig struct {
	Name       string             `yaml:"name" mapstructure:"name"`
	Enabled    bool               `yaml:"enabled" mapstructure:"enabled"`
	SearchURL  string             `yaml:"search_url" mapstructure:"search_url"` // {term} and {region} are substituted
	Confidence float64            `yaml:"confidence" mapstructure:"confidence"`
	RatePerSec float64            `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Selectors  DirectorySelectors `yaml:"selectors" mapstructure:"selectors"`
}

// DirectorySelectors are CSS selectors applied to a directory result page.
type DirectorySelectors struct {
	Listing  string `yaml:"listing" mapstructure:"listing"`
	Name     string `yaml:"name" mapstructure:"name"`
	Category string `yaml:"category" mapstructure:"category"`
	Address  string `yaml:"address" mapstructure:"address"`
	Phone    string `yaml:"phone" mapstructure:"phone"`
	Website  string `yaml:"website" mapstructure:"website"`
	Email    string `yaml:"email" mapstructure:"email"`
	Rating   string `yaml:"rating" mapstructure:"rating"`
	Reviews  string `yaml:"reviews" mapstructure:"reviews"`
}

// FixtureConfig configures the static YAML listing source.
type FixtureConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Name       string  `yaml:"name" mapstructure:"name"`
	Path       string  `yaml:"path" mapstructure:"path"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
}

// RetryConfig configures the per-source retry policy.
type RetryConfig struct {
	MaxRetries         int     `yaml:"max_retries" mapstructure:"max_retries"`
	BaseDelayMs        int     `yaml:"base_delay_ms" mapstructure:"base_delay_ms"`
	MaxDelayMs         int     `yaml:"max_delay_ms" mapstructure:"max_delay_ms"`
	BackoffFactor      float64 `yaml:"backoff_factor" mapstructure:"backoff_factor"`
	Jitter             bool    `yaml:"jitter" mapstructure:"jitter"`
	AttemptTimeoutMs   int     `yaml:"attempt_timeout_ms" mapstructure:"attempt_timeout_ms"`
	BlockedPolicy      string  `yaml:"blocked_policy" mapstructure:"blocked_policy"`
	BlockedRetryBudget int     `yaml:"blocked_retry_budget" mapstructure:"blocked_retry_budget"`
}

// SearchConfig configures orchestration defaults.
type SearchConfig struct {
	RequireMinResults  int          `yaml:"require_min_results" mapstructure:"require_min_results"`
	MaxResults         int          `yaml:"max_results" mapstructure:"max_results"`
	RunBudgetSecs      int          `yaml:"run_budget_secs" mapstructure:"run_budget_secs"`
	AlternativeQueries bool         `yaml:"alternative_queries" mapstructure:"alternative_queries"`
	TargetVerticals    []string     `yaml:"target_verticals" mapstructure:"target_verticals"`
	RegionBounds       RegionBounds `yaml:"region_bounds" mapstructure:"region_bounds"`
}

// RegionBounds is the lat/lng box coordinates must fall within. An all-zero
// box disables the check.
type RegionBounds struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// DedupConfig configures identity resolution.
type DedupConfig struct {
	NameOnlyFallback bool `yaml:"name_only_fallback" mapstructure:"name_only_fallback"`
}

// ScoringConfig holds the quality and lead weight tables.
type ScoringConfig struct {
	Quality QualityWeights `yaml:"quality" mapstructure:"quality"`
	Lead    LeadWeights    `yaml:"lead" mapstructure:"lead"`
	// LeadFile optionally replaces Lead with a YAML weight table.
	LeadFile string `yaml:"lead_file" mapstructure:"lead_file"`
}

// QualityWeights are the points each populated field contributes to the
// 0-100 data quality score.
type QualityWeights struct {
	Base            int `yaml:"base" mapstructure:"base"`
	Phone           int `yaml:"phone" mapstructure:"phone"`
	Email           int `yaml:"email" mapstructure:"email"`
	Website         int `yaml:"website" mapstructure:"website"`
	FullAddress     int `yaml:"full_address" mapstructure:"full_address"`
	Rating          int `yaml:"rating" mapstructure:"rating"`
	Reviews         int `yaml:"reviews" mapstructure:"reviews"`
	Coordinates     int `yaml:"coordinates" mapstructure:"coordinates"`
	Hours           int `yaml:"hours" mapstructure:"hours"`
	ContactPerson   int `yaml:"contact_person" mapstructure:"contact_person"`
	AdditionalEmail int `yaml:"additional_email" mapstructure:"additional_email"`
	Social          int `yaml:"social" mapstructure:"social"`
	Description     int `yaml:"description" mapstructure:"description"`
}

// LeadWeights is the lead scoring weight table.
type LeadWeights struct {
	QualityFactor   float64        `yaml:"quality_factor" mapstructure:"quality_factor"`
	CategoryMatch   int            `yaml:"category_match" mapstructure:"category_match"`
	DigitalMaturity map[string]int `yaml:"digital_maturity" mapstructure:"digital_maturity"`
	Security        map[string]int `yaml:"security" mapstructure:"security"`
	BusinessSize    map[string]int `yaml:"business_size" mapstructure:"business_size"`
	Reputation      Reputation     `yaml:"reputation" mapstructure:"reputation"`
	Thresholds      Thresholds     `yaml:"thresholds" mapstructure:"thresholds"`
	RequirePhone    bool           `yaml:"require_phone" mapstructure:"require_phone"`
	// UrgentSecurity lists security levels that count as an immediate need.
	UrgentSecurity []string `yaml:"urgent_security" mapstructure:"urgent_security"`
}

// Reputation awards points to well-reviewed businesses.
type Reputation struct {
	MinRating  float64 `yaml:"min_rating" mapstructure:"min_rating"`
	MinReviews int     `yaml:"min_reviews" mapstructure:"min_reviews"`
	Points     int     `yaml:"points" mapstructure:"points"`
}

// Thresholds are the lower bounds of the High and Medium priority bands.
type Thresholds struct {
	High   int `yaml:"high" mapstructure:"high"`
	Medium int `yaml:"medium" mapstructure:"medium"`
}

// EnrichConfig configures the optional enrichment collaborators.
type EnrichConfig struct {
	// Concurrency bounds how many records are enriched at once.
	Concurrency int                 `yaml:"concurrency" mapstructure:"concurrency"`
	Website     WebsiteEnrichConfig `yaml:"website" mapstructure:"website"`
	AI          AIEnrichConfig      `yaml:"ai" mapstructure:"ai"`
}

// WebsiteEnrichConfig configures homepage analysis.
type WebsiteEnrichConfig struct {
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheSize    int     `yaml:"cache_size" mapstructure:"cache_size"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Confidence   float64 `yaml:"confidence" mapstructure:"confidence"`
	MaxBodyBytes int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// AIEnrichConfig configures AI classification.
type AIEnrichConfig struct {
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// MonitoringConfig configures run alerts delivered to a webhook.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	// NotifyPriority is the lowest lead priority announced on the webhook.
	// Empty disables lead notifications.
	NotifyPriority string `yaml:"notify_priority" mapstructure:"notify_priority"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultSourceOrder is the fallback order used when sources.order is empty.
var DefaultSourceOrder = []string{
	"google_maps",
	"yelp",
	"yellow_pages",
	"open_street_map",
	"business_directory",
}

// Load reads configuration from ./config.yaml, if present, and the
// environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. Unlike the default
// ./config.yaml, a named file that does not exist is an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("batch.concurrency", 3)

	v.SetDefault("sources.order", DefaultSourceOrder)
	v.SetDefault("sources.user_agent", "leadscout/1.0 (+https://github.com/sells-group/leadscout)")
	v.SetDefault("sources.google_maps.enabled", true)
	v.SetDefault("sources.google_maps.key", "")
	v.SetDefault("sources.google_maps.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("sources.google_maps.confidence", 0.9)
	v.SetDefault("sources.google_maps.rate_per_sec", 5)
	v.SetDefault("sources.google_maps.page_size", 20)
	v.SetDefault("sources.open_street_map.enabled", true)
	v.SetDefault("sources.open_street_map.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("sources.open_street_map.email", "")
	v.SetDefault("sources.open_street_map.confidence", 0.6)
	v.SetDefault("sources.open_street_map.rate_per_sec", 1)
	v.SetDefault("sources.open_street_map.limit", 10)
	v.SetDefault("sources.directories", defaultDirectories())
	v.SetDefault("sources.fixture.enabled", false)
	v.SetDefault("sources.fixture.name", "fixture")
	v.SetDefault("sources.fixture.path", "testdata/listings.yaml")
	v.SetDefault("sources.fixture.confidence", 0.5)

	v.SetDefault("retry.max_retries", 2)
	v.SetDefault("retry.base_delay_ms", 1000)
	v.SetDefault("retry.max_delay_ms", 5000)
	v.SetDefault("retry.backoff_factor", 2.0)
	v.SetDefault("retry.jitter", true)
	v.SetDefault("retry.attempt_timeout_ms", 15000)
	v.SetDefault("retry.blocked_policy", "shorten")
	v.SetDefault("retry.blocked_retry_budget", 1)

	v.SetDefault("search.require_min_results", 1)
	v.SetDefault("search.max_results", 0)
	v.SetDefault("search.run_budget_secs", 120)
	v.SetDefault("search.alternative_queries", false)
	v.SetDefault("search.target_verticals", []string{})
	v.SetDefault("search.region_bounds.min_lat", 24.5)
	v.SetDefault("search.region_bounds.max_lat", 26.0)
	v.SetDefault("search.region_bounds.min_lng", 54.5)
	v.SetDefault("search.region_bounds.max_lng", 56.0)

	v.SetDefault("dedup.name_only_fallback", false)

	q := DefaultQualityWeights()
	v.SetDefault("scoring.quality.base", q.Base)
	v.SetDefault("scoring.quality.phone", q.Phone)
	v.SetDefault("scoring.quality.email", q.Email)
	v.SetDefault("scoring.quality.website", q.Website)
	v.SetDefault("scoring.quality.full_address", q.FullAddress)
	v.SetDefault("scoring.quality.rating", q.Rating)
	v.SetDefault("scoring.quality.reviews", q.Reviews)
	v.SetDefault("scoring.quality.coordinates", q.Coordinates)
	v.SetDefault("scoring.quality.hours", q.Hours)
	v.SetDefault("scoring.quality.contact_person", q.ContactPerson)
	v.SetDefault("scoring.quality.additional_email", q.AdditionalEmail)
	v.SetDefault("scoring.quality.social", q.Social)
	v.SetDefault("scoring.quality.description", q.Description)

	l := DefaultLeadWeights()
	v.SetDefault("scoring.lead.quality_factor", l.QualityFactor)
	v.SetDefault("scoring.lead.category_match", l.CategoryMatch)
	v.SetDefault("scoring.lead.digital_maturity", l.DigitalMaturity)
	v.SetDefault("scoring.lead.security", l.Security)
	v.SetDefault("scoring.lead.business_size", l.BusinessSize)
	v.SetDefault("scoring.lead.reputation.min_rating", l.Reputation.MinRating)
	v.SetDefault("scoring.lead.reputation.min_reviews", l.Reputation.MinReviews)
	v.SetDefault("scoring.lead.reputation.points", l.Reputation.Points)
	v.SetDefault("scoring.lead.thresholds.high", l.Thresholds.High)
	v.SetDefault("scoring.lead.thresholds.medium", l.Thresholds.Medium)
	v.SetDefault("scoring.lead.require_phone", l.RequirePhone)
	v.SetDefault("scoring.lead.urgent_security", l.UrgentSecurity)
	v.SetDefault("scoring.lead_file", "")

	v.SetDefault("enrich.concurrency", 4)
	v.SetDefault("enrich.website.timeout_secs", 10)
	v.SetDefault("enrich.website.cache_size", 256)
	v.SetDefault("enrich.website.rate_per_sec", 2)
	v.SetDefault("enrich.website.confidence", 0.4)
	v.SetDefault("enrich.website.max_body_bytes", 1<<20)
	v.SetDefault("enrich.ai.max_tokens", 512)

	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.notify_priority", "urgent")
	v.SetDefault("monitoring.timeout_secs", 10)

	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
}

// DefaultQualityWeights returns the data quality weight table. A record
// carrying every signal scores 95.
func DefaultQualityWeights() QualityWeights {
	return QualityWeights{
		Base:            0,
		Phone:           15,
		Email:           15,
		Website:         10,
		FullAddress:     10,
		Rating:          5,
		Reviews:         5,
		Coordinates:     5,
		Hours:           5,
		ContactPerson:   10,
		AdditionalEmail: 5,
		Social:          5,
		Description:     5,
	}
}

// DefaultLeadWeights returns the lead scoring weight table.
func DefaultLeadWeights() LeadWeights {
	return LeadWeights{
		QualityFactor: 0.6,
		CategoryMatch: 15,
		DigitalMaturity: map[string]int{
			"unknown":    3,
			"outdated":   12,
			"basic":      10,
			"developing": 6,
			"mature":     2,
		},
		Security: map[string]int{
			"missing": 8,
			"low":     10,
			"basic":   5,
			"good":    0,
		},
		BusinessSize: map[string]int{
			"startup":    6,
			"sme":        8,
			"enterprise": 0,
		},
		Reputation: Reputation{
			MinRating:  4.0,
			MinReviews: 10,
			Points:     5,
		},
		Thresholds:     Thresholds{High: 70, Medium: 50},
		RequirePhone:   true,
		UrgentSecurity: []string{"missing", "low"},
	}
}

func defaultDirectories() []map[string]any {
	return []map[string]any{
		{
			"name":         "yelp",
			"enabled":      false,
			"search_url":   "https://www.yelp.com/search?find_desc={term}&find_loc={region}",
			"confidence":   0.8,
			"rate_per_sec": 0.5,
			"selectors": map[string]any{
				"listing": "[data-testid='serp-ia-card']",
				"name":    "h3 a",
				"address": "address",
				"phone":   "[data-testid='phone']",
				"rating":  "[aria-label*='star rating']",
				"reviews": "[data-testid='review-count']",
			},
		},
		{
			"name":         "yellow_pages",
			"enabled":      false,
			"search_url":   "https://www.yellowpages.ae/search?q={term}&location={region}",
			"confidence":   0.5,
			"rate_per_sec": 0.5,
			"selectors": map[string]any{
				"listing":  ".listing, .search-result",
				"name":     ".listing-name, h2",
				"category": ".listing-category",
				"address":  ".listing-address, address",
				"phone":    ".listing-phone, a[href^='tel:']",
				"website":  "a.listing-website",
				"email":    "a[href^='mailto:']",
			},
		},
		{
			"name":         "business_directory",
			"enabled":      false,
			"search_url":   "https://www.dubaibusinessdirectory.ae/search?keyword={term}&city={region}",
			"confidence":   0.7,
			"rate_per_sec": 0.5,
			"selectors": map[string]any{
				"listing":  ".company-listing, .business-item",
				"name":     ".company-name, h3",
				"category": ".company-category",
				"address":  ".company-address",
				"phone":    ".company-phone, a[href^='tel:']",
				"website":  "a.company-website",
				"email":    "a[href^='mailto:']",
			},
		},
	}
}

// Validate checks that the configuration is internally consistent for the
// given command mode: "search", "batch" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "search":
	case "batch":
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
			errs = append(errs, "batch.concurrency must be between 1 and 50")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, "retry.max_retries must be >= 0")
	}
	if c.Retry.BackoffFactor < 1 {
		errs = append(errs, "retry.backoff_factor must be >= 1")
	}
	if c.Retry.MaxDelayMs > 0 && c.Retry.MaxDelayMs < c.Retry.BaseDelayMs {
		errs = append(errs, "retry.max_delay_ms must be >= retry.base_delay_ms")
	}
	switch strings.ToLower(c.Retry.BlockedPolicy) {
	case "", "retry", "shorten", "disable":
	default:
		errs = append(errs, fmt.Sprintf("retry.blocked_policy %q must be retry, shorten or disable", c.Retry.BlockedPolicy))
	}

	if c.Search.RequireMinResults < 0 {
		errs = append(errs, "search.require_min_results must be >= 0")
	}
	if c.Search.MaxResults < 0 {
		errs = append(errs, "search.max_results must be >= 0")
	}
	b := c.Search.RegionBounds
	if b != (RegionBounds{}) && (b.MinLat >= b.MaxLat || b.MinLng >= b.MaxLng) {
		errs = append(errs, "search.region_bounds must have min < max")
	}

	seen := make(map[string]bool)
	for i, d := range c.Sources.Directories {
		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("sources.directories[%d].name is required", i))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Sprintf("sources.directories: duplicate name %q", d.Name))
		}
		seen[d.Name] = true
		if d.Enabled && (d.SearchURL == "" || d.Selectors.Listing == "" || d.Selectors.Name == "") {
			errs = append(errs, fmt.Sprintf("sources.directories[%s] needs search_url, selectors.listing and selectors.name", d.Name))
		}
	}
	if t := c.Monitoring.FailureRateThreshold; t < 0 || t > 1 {
		errs = append(errs, "monitoring.failure_rate_threshold must be within 0..1")
	}
	switch strings.ToLower(c.Monitoring.NotifyPriority) {
	case "", "low", "medium", "high", "urgent":
	default:
		errs = append(errs, fmt.Sprintf("monitoring.notify_priority %q must be low, medium, high or urgent", c.Monitoring.NotifyPriority))
	}
	if c.Sources.Fixture.Enabled && c.Sources.Fixture.Path == "" {
		errs = append(errs, "sources.fixture.path is required when the fixture source is enabled")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

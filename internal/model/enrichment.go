package model

// Security levels derived from a website's transport and header posture.
const (
	SecurityMissing = "missing" // no reachable website
	SecurityLow     = "low"
	SecurityBasic   = "basic"
	SecurityGood    = "good"
)

// Digital maturity levels derived from a website's technology footprint.
const (
	MaturityUnknown    = "unknown"
	MaturityOutdated   = "outdated"
	MaturityBasic      = "basic"
	MaturityDeveloping = "developing"
	MaturityMature     = "mature"
)

// Business sizes reported by classification.
const (
	SizeStartup    = "startup"
	SizeSME        = "sme"
	SizeEnterprise = "enterprise"
)

// WebsiteAnalysis is what a homepage fetch revealed about a business.
type WebsiteAnalysis struct {
	URL             string   `json:"url"`
	Reachable       bool     `json:"reachable"`
	HTTPS           bool     `json:"https"`
	StatusCode      int      `json:"status_code,omitempty"`
	SecurityHeaders []string `json:"security_headers,omitempty"`
	SecurityScore   int      `json:"security_score"`
	SecurityLevel   string   `json:"security_level"`
	Technologies    []string `json:"technologies,omitempty"`
	MaturityScore   int      `json:"maturity_score"`
	DigitalMaturity string   `json:"digital_maturity"`
	ResponseMillis  int64    `json:"response_ms,omitempty"`
}

func (w WebsiteAnalysis) clone() WebsiteAnalysis {
	c := w
	c.SecurityHeaders = cloneStrings(w.SecurityHeaders)
	c.Technologies = cloneStrings(w.Technologies)
	return c
}

// Classification is the AI-assisted reading of a business.
type Classification struct {
	Industry      string `json:"industry,omitempty"`
	BusinessSize  string `json:"business_size,omitempty"`
	ImmediateNeed bool   `json:"immediate_need"`
	Summary       string `json:"summary,omitempty"`
}

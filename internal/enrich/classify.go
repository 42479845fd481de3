package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

// ClassifierName identifies the AI classification enricher.
const ClassifierName = "ai_classifier"

const classifyPrompt = `You classify businesses in the United Arab Emirates for B2B outreach. From the listing provided, determine:
- industry: a short industry label, for example "Real Estate", "Dental Clinic", "Restaurant"
- business_size: one of "startup", "sme", "enterprise"
- immediate_need: true only if the listing shows a pressing need for digital, web or security services (no website, an insecure or broken website, an outdated online presence)
- summary: one sentence describing the business

Respond with ONLY valid JSON, no other text:
{"industry": "", "business_size": "sme", "immediate_need": false, "summary": ""}`

type classifyResponse struct {
	Industry      string `json:"industry"`
	BusinessSize  string `json:"business_size"`
	ImmediateNeed bool   `json:"immediate_need"`
	Summary       string `json:"summary"`
}

// Classifier asks Claude to label a business with an industry, a size band
// and whether it has an immediate need for outreach.
type Classifier struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewClassifier creates a Classifier using model on ai.
func NewClassifier(ai anthropic.Client, model string, maxTokens int) *Classifier {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Classifier{ai: ai, model: model, maxTokens: int64(maxTokens)}
}

// Name implements Enricher.
func (c *Classifier) Name() string { return ClassifierName }

// Enhance implements Enricher.
func (c *Classifier) Enhance(ctx context.Context, rec model.BusinessRecord) (model.BusinessRecord, error) {
	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.SystemBlock{{Text: classifyPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}}},
		Messages:  []anthropic.Message{{Role: "user", Content: describe(rec)}},
	})
	if err != nil {
		return rec, eris.Wrap(err, "classify: claude request")
	}
	resp.Usage.LogCost(c.model, "classify")

	cls, err := parseClassification(resp.Text())
	if err != nil {
		return rec, err
	}
	rec.Classification = &cls
	return rec, nil
}

func parseClassification(text string) (model.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return model.Classification{}, eris.New("classify: empty claude response")
	}

	// The JSON may be wrapped in prose or a code fence.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return model.Classification{}, eris.Errorf("classify: no JSON in response: %s", text)
	}

	var r classifyResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return model.Classification{}, eris.Wrap(err, "classify: parse response JSON")
	}

	size := strings.ToLower(strings.TrimSpace(r.BusinessSize))
	switch size {
	case model.SizeStartup, model.SizeSME, model.SizeEnterprise:
	case "small", "medium", "small business":
		size = model.SizeSME
	case "large":
		size = model.SizeEnterprise
	default:
		size = ""
	}

	return model.Classification{
		Industry:      strings.TrimSpace(r.Industry),
		BusinessSize:  size,
		ImmediateNeed: r.ImmediateNeed,
		Summary:       strings.TrimSpace(r.Summary),
	}, nil
}

// describe renders the facts the classifier sees about rec.
func describe(rec model.BusinessRecord) string {
	var b strings.Builder
	line := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, v)
		}
	}

	line("Business name", rec.Name)
	line("Category", rec.Category)
	line("Address", strings.Join(nonEmpty(rec.Address, rec.Area, rec.Emirate), ", "))
	line("Website", rec.Website)
	if rec.Phone != "" {
		line("Phone", "listed")
	}
	if rec.Rating != nil && rec.ReviewCount != nil {
		line("Rating", fmt.Sprintf("%.1f from %d reviews", *rec.Rating, *rec.ReviewCount))
	}
	line("Description", rec.Description)

	if wa := rec.WebsiteAnalysis; wa != nil {
		if !wa.Reachable {
			line("Website status", "no reachable website")
		} else {
			line("Website security", wa.SecurityLevel)
			line("Digital maturity", wa.DigitalMaturity)
			line("Technologies", strings.Join(wa.Technologies, ", "))
		}
	}
	return b.String()
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

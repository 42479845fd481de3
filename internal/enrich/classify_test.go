package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/anthropic"
	"github.com/sells-group/leadscout/pkg/anthropic/mocks"
)

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 120, OutputTokens: 40},
	}
}

func TestClassifier_Enhance(t *testing.T) {
	ai := mocks.NewMockClient(t)
	rating, reviews := 4.6, 212
	rec := model.BusinessRecord{
		ID:          "prime",
		Name:        "Prime Realty",
		Category:    "Real Estate Agency",
		Area:        "Dubai Marina",
		Emirate:     "Dubai",
		Phone:       "+97143334444",
		Rating:      &rating,
		ReviewCount: &reviews,
		WebsiteAnalysis: &model.WebsiteAnalysis{
			Reachable:       true,
			SecurityLevel:   model.SecurityLow,
			DigitalMaturity: model.MaturityOutdated,
			Technologies:    []string{"WordPress"},
		},
	}

	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		msg := req.Messages[0].Content
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 256 &&
			strings.Contains(msg, "Business name: Prime Realty") &&
			strings.Contains(msg, "Address: Dubai Marina, Dubai") &&
			strings.Contains(msg, "Rating: 4.6 from 212 reviews") &&
			strings.Contains(msg, "Website security: low") &&
			strings.Contains(msg, "Technologies: WordPress")
	})).Return(textResponse("```json\n{\"industry\": \"Real Estate\", \"business_size\": \"SME\", \"immediate_need\": true, \"summary\": \" Residential brokerage. \"}\n```"), nil)

	c := NewClassifier(ai, "claude-haiku-4-5-20251001", 256)
	assert.Equal(t, ClassifierName, c.Name())

	out, err := c.Enhance(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, out.Classification)
	assert.Equal(t, model.Classification{
		Industry:      "Real Estate",
		BusinessSize:  model.SizeSME,
		ImmediateNeed: true,
		Summary:       "Residential brokerage.",
	}, *out.Classification)
}

func TestClassifier_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp *anthropic.MessageResponse
		err  error
		want string
	}{
		{"api error", nil, errors.New("overloaded"), "claude request"},
		{"empty", textResponse("  "), nil, "empty claude response"},
		{"no json", textResponse("I cannot tell."), nil, "no JSON"},
		{"bad json", textResponse(`{"industry": }`), nil, "parse response JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := mocks.NewMockClient(t)
			ai.On("CreateMessage", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			rec := model.BusinessRecord{Name: "Prime Realty"}
			out, err := NewClassifier(ai, "m", 0).Enhance(context.Background(), rec)
			assert.ErrorContains(t, err, tt.want)
			assert.Nil(t, out.Classification)
		})
	}
}

func TestParseClassification_Sizes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"startup", model.SizeStartup},
		{"Enterprise", model.SizeEnterprise},
		{"small", model.SizeSME},
		{"large", model.SizeEnterprise},
		{"huge", ""},
	}
	for _, tt := range tests {
		c, err := parseClassification(`{"business_size": "` + tt.in + `"}`)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.BusinessSize, tt.in)
	}
}

func TestDescribe_Unreachable(t *testing.T) {
	got := describe(model.BusinessRecord{
		Name:            "Offline Co",
		WebsiteAnalysis: &model.WebsiteAnalysis{SecurityLevel: model.SecurityMissing},
	})
	assert.Contains(t, got, "Website status: no reachable website")
	assert.NotContains(t, got, "Phone")
}

package orchestrator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/leadscope/lead-cli/internal/config"
	"github.com/leadscope/lead-cli/internal/cost"
	"github.com/leadscope/lead-cli/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResponse wraps a JSON payload in a MessageResponse the stage runners
// can consume.
func textResponse(payload string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:    "msg_test",
		Model: "test-model",
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: payload},
		},
		StopReason: "end_turn",
		Usage: anthropic.TokenUsage{
			InputTokens:  1000,
			OutputTokens: 200,
		},
	}
}

// forModel matches a CreateMessage request by its model ID. The test config
// assigns a distinct model per stage so expectations can target one stage.
func forModel(model string) any {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == model
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Key:               "test-key",
			TriageModel:       "model-triage",
			PreprocessorModel: "model-preprocessor",
			LightModel:        "model-light",
			DeepModel:         "model-deep",
			XRayModel:         "model-xray",
			ContextModel:      "model-context",
		},
		Pricing: cost.DefaultRates(),
	}
}

func testCalculator() *cost.Calculator {
	return cost.NewCalculator(cost.DefaultRates())
}

const validTriageJSON = `{"lead_score": 62, "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["content themes", "audience quality"]}`

const validPreprocessorJSON = `{"posting_cadence": "daily, mornings", "content_themes": ["fitness", "nutrition"], "audience_signals": ["mostly 25-34"], "brand_mentions": "none visible", "engagement_patterns": "comment-heavy", "collaboration_history": "two brand posts", "contact_readiness": "email in bio", "content_quality": "polished"}`

const validLightAnalysisJSON = `{"score": 71, "niche_fit": 64, "engagement_score": 58, "confidence_level": 0.75, "quick_summary": "Promising fit with an active audience."}`

const validDeepAnalysisJSON = `{"score": 71, "niche_fit": 64, "engagement_score": 58, "confidence_level": 0.75, "quick_summary": "Promising fit.", "audience_quality": "engaged, low bot share", "selling_points": ["consistent posting"], "reasons": ["niche overlap"], "deep_summary": "Detailed assessment.", "outreach_message": "Hi there"}`

const validContextJSON = `{"business_one_liner": "Coaching for busy founders", "business_context_pack": {"niche": "executive coaching", "value_prop": "time-efficient coaching", "must_avoid": ["students", "job seekers", "competitors"], "priority_signals": ["founder title", "team mentions", "funding news", "hiring posts"], "tone_words": ["direct", "warm", "credible"]}}`

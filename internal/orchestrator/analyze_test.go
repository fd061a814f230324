package orchestrator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadscope/lead-cli/internal/model"
)

func testBusiness() model.Business {
	return model.Business{
		ID:       "biz_1",
		Name:     "FounderFit",
		OneLiner: "Coaching for busy founders",
		ContextPack: &model.ContextPack{
			Niche:           "executive coaching",
			ValueProp:       "time-efficient coaching",
			MustAvoid:       []string{"students", "job seekers", "competitors"},
			PrioritySignals: []string{"founder title", "team mentions", "funding news", "hiring posts"},
			ToneWords:       []string{"direct", "warm", "credible"},
		},
	}
}

func TestRunAnalysisLight(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, forModel("model-light")).
		Return(textResponse(validLightAnalysisJSON), nil)

	triage := model.TriageOutcome{LeadScore: 62, DataRichness: 40, Confidence: 0.8, FocusPoints: []string{"a", "b"}}
	res, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "fit_jane"}, testBusiness(), model.TierLight, triage, nil)
	require.NoError(t, err)

	assert.Equal(t, 71, res.Payload.Score)
	assert.Equal(t, "light", res.Cost.Stage)
	client.AssertExpectations(t)
}

func TestRunAnalysisLightStripsHigherTierFields(t *testing.T) {
	// A light result must not leak deep or xray content the caller did
	// not pay for, even when the model volunteers it.
	leaky := `{"score": 71, "niche_fit": 64, "engagement_score": 58, "confidence_level": 0.75,
		"quick_summary": "ok", "deep_summary": "leaked", "outreach_message": "leaked",
		"audience_quality": "leaked", "selling_points": ["leaked"], "reasons": ["leaked"],
		"copywriter_profile": {"demographics": "x", "pain_points": ["y"], "dreams": ["z"], "objections": ["w"]}}`
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(leaky), nil)

	triage := model.TriageOutcome{FocusPoints: []string{"a", "b"}}
	res, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "u"}, testBusiness(), model.TierLight, triage, nil)
	require.NoError(t, err)

	assert.Equal(t, 71, res.Payload.Score)
	assert.Empty(t, res.Payload.DeepSummary)
	assert.Empty(t, res.Payload.OutreachMessage)
	assert.Empty(t, res.Payload.AudienceQuality)
	assert.Nil(t, res.Payload.SellingPoints)
	assert.Nil(t, res.Payload.Reasons)
	assert.Nil(t, res.Payload.CopywriterProfile)
}

func TestRunAnalysisDeepStripsXRayFields(t *testing.T) {
	leaky := validDeepAnalysisJSON[:len(validDeepAnalysisJSON)-1] +
		`, "persuasion_strategy": {"primary_angle": "x", "hook_style": "y", "proof_elements": ["z"], "communication_style": "w"}}`
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, forModel("model-deep")).
		Return(textResponse(leaky), nil)

	triage := model.TriageOutcome{FocusPoints: []string{"a", "b"}}
	res, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "u"}, testBusiness(), model.TierDeep, triage, nil)
	require.NoError(t, err)

	assert.Equal(t, "engaged, low bot share", res.Payload.AudienceQuality)
	assert.Nil(t, res.Payload.PersuasionStrategy)
	assert.Equal(t, "deep", res.Cost.Stage)
}

func TestRunAnalysisDeepMissingRequiredFields(t *testing.T) {
	// A deep payload that only carries the light fields fails the deep
	// schema after shaping.
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(validLightAnalysisJSON), nil)

	triage := model.TriageOutcome{FocusPoints: []string{"a", "b"}}
	_, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "u"}, testBusiness(), model.TierDeep, triage, nil)
	require.Error(t, err)
}

func TestRunAnalysisXRay(t *testing.T) {
	xray := validDeepAnalysisJSON[:len(validDeepAnalysisJSON)-1] + `,
		"copywriter_profile": {"demographics": "25-34 professionals", "pain_points": ["time"], "dreams": ["freedom"], "objections": ["price"]},
		"commercial_intelligence": {"budget_tier": "mid", "decision_role": "owner", "buying_stage": "aware", "payment_signals": ["premium gear"]},
		"persuasion_strategy": {"primary_angle": "authority", "hook_style": "question", "proof_elements": ["case study"], "communication_style": "direct"}}`
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, forModel("model-xray")).
		Return(textResponse(xray), nil)

	triage := model.TriageOutcome{FocusPoints: []string{"a", "b"}}
	pre := &model.PreprocessorOutcome{PostingCadence: "daily"}
	res, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "u"}, testBusiness(), model.TierXRay, triage, pre)
	require.NoError(t, err)

	require.NotNil(t, res.Payload.CopywriterProfile)
	require.NotNil(t, res.Payload.CommercialIntelligence)
	require.NotNil(t, res.Payload.PersuasionStrategy)
	assert.Equal(t, "25-34 professionals", res.Payload.CopywriterProfile.Demographics)
	assert.Equal(t, "xray", res.Cost.Stage)
}

func TestRunAnalysisXRayMissingSubBlocks(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(validDeepAnalysisJSON), nil)

	triage := model.TriageOutcome{FocusPoints: []string{"a", "b"}}
	_, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "u"}, testBusiness(), model.TierXRay, triage, nil)
	require.Error(t, err)
}

func TestRunAnalysisDeepKeepsEmptyListFields(t *testing.T) {
	// An empty selling_points list is schema-conforming; it must survive
	// shaping instead of being mistaken for a missing field.
	payload := `{"score": 55, "niche_fit": 40, "engagement_score": 35, "confidence_level": 0.6,
		"quick_summary": "ok", "audience_quality": "mixed", "selling_points": [],
		"reasons": ["slow growth"], "deep_summary": "d", "outreach_message": "m"}`
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, forModel("model-deep")).
		Return(textResponse(payload), nil)

	triage := model.TriageOutcome{FocusPoints: []string{"a", "b"}}
	res, err := RunAnalysis(context.Background(), client, testConfig().Anthropic, testCalculator(),
		model.Profile{Username: "u"}, testBusiness(), model.TierDeep, triage, nil)
	require.NoError(t, err)

	assert.Equal(t, 55, res.Payload.Score)
	assert.NotNil(t, res.Payload.SellingPoints)
	assert.Empty(t, res.Payload.SellingPoints)
	assert.Equal(t, []string{"slow growth"}, res.Payload.Reasons)
}

func TestShapeForTier(t *testing.T) {
	full := map[string]json.RawMessage{
		"score":               json.RawMessage(`80`),
		"quick_summary":       json.RawMessage(`"ok"`),
		"deep_summary":        json.RawMessage(`"deep"`),
		"selling_points":      json.RawMessage(`[]`),
		"copywriter_profile":  json.RawMessage(`{"demographics": "x"}`),
		"persuasion_strategy": json.RawMessage(`{"primary_angle": "authority"}`),
		"unknown_field":       json.RawMessage(`true`),
	}

	light := shapeForTier(full, model.TierLight)
	assert.Contains(t, light, "score")
	assert.NotContains(t, light, "deep_summary")
	assert.NotContains(t, light, "selling_points")
	assert.NotContains(t, light, "copywriter_profile")
	assert.NotContains(t, light, "unknown_field")

	deep := shapeForTier(full, model.TierDeep)
	assert.Contains(t, deep, "deep_summary")
	assert.Equal(t, json.RawMessage(`[]`), deep["selling_points"])
	assert.NotContains(t, deep, "copywriter_profile")
	assert.NotContains(t, deep, "persuasion_strategy")

	xray := shapeForTier(full, model.TierXRay)
	assert.Contains(t, xray, "copywriter_profile")
	assert.Contains(t, xray, "persuasion_strategy")
	assert.NotContains(t, xray, "unknown_field")
}

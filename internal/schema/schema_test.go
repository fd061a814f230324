package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTriageAccepts(t *testing.T) {
	payload := []byte(`{"lead_score": 62, "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["a", "b", "c"]}`)
	assert.NoError(t, Validate(Triage, payload))
}

func TestValidateTriageRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"score above range", `{"lead_score": 101, "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["a", "b"]}`},
		{"negative richness", `{"lead_score": 50, "data_richness": -1, "confidence": 0.8, "early_exit": false, "focus_points": ["a", "b"]}`},
		{"confidence above one", `{"lead_score": 50, "data_richness": 80, "confidence": 1.5, "early_exit": false, "focus_points": ["a", "b"]}`},
		{"one focus point", `{"lead_score": 50, "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["a"]}`},
		{"five focus points", `{"lead_score": 50, "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["a", "b", "c", "d", "e"]}`},
		{"missing early_exit", `{"lead_score": 50, "data_richness": 80, "confidence": 0.8, "focus_points": ["a", "b"]}`},
		{"unknown field", `{"lead_score": 50, "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["a", "b"], "extra": 1}`},
		{"string score", `{"lead_score": "high", "data_richness": 80, "confidence": 0.8, "early_exit": false, "focus_points": ["a", "b"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(Triage, []byte(tt.payload)))
		})
	}
}

func TestValidateAnalysisLight(t *testing.T) {
	valid := []byte(`{"score": 71, "niche_fit": 64, "engagement_score": 58, "confidence_level": 0.75, "quick_summary": "ok"}`)
	require.NoError(t, Validate(AnalysisLight, valid))

	// The light schema is strict: deep fields are unknown properties.
	withDeep := []byte(`{"score": 71, "niche_fit": 64, "engagement_score": 58, "confidence_level": 0.75, "quick_summary": "ok", "deep_summary": "x"}`)
	assert.Error(t, Validate(AnalysisLight, withDeep))
}

func TestValidateAnalysisDeepRequiresDeepFields(t *testing.T) {
	lightOnly := []byte(`{"score": 71, "niche_fit": 64, "engagement_score": 58, "confidence_level": 0.75, "quick_summary": "ok"}`)
	assert.Error(t, Validate(AnalysisDeep, lightOnly))
}

func TestValidateBusinessContext(t *testing.T) {
	valid := []byte(`{"business_one_liner": "Coaching for busy founders", "business_context_pack": {"niche": "n", "value_prop": "v", "must_avoid": ["a", "b", "c"], "priority_signals": ["a", "b", "c", "d"], "tone_words": ["a", "b", "c"]}}`)
	require.NoError(t, Validate(BusinessContext, valid))

	// Cardinalities are exact.
	twoAvoid := []byte(`{"business_one_liner": "x", "business_context_pack": {"niche": "n", "value_prop": "v", "must_avoid": ["a", "b"], "priority_signals": ["a", "b", "c", "d"], "tone_words": ["a", "b", "c"]}}`)
	assert.Error(t, Validate(BusinessContext, twoAvoid))
}

func TestValidateMalformedJSON(t *testing.T) {
	assert.Error(t, Validate(Triage, []byte(`{not json`)))
}

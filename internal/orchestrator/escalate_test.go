package orchestrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadscope/lead-cli/internal/model"
)

func TestShouldRunPreprocessor(t *testing.T) {
	// The decision must be a pure function of tier and data richness:
	// light never escalates, xray always does, deep escalates at the
	// richness threshold.
	for richness := 0; richness <= 100; richness++ {
		triage := model.TriageOutcome{DataRichness: richness}

		t.Run(fmt.Sprintf("richness_%d", richness), func(t *testing.T) {
			assert.False(t, ShouldRunPreprocessor(model.TierLight, triage))
			assert.True(t, ShouldRunPreprocessor(model.TierXRay, triage))
			assert.Equal(t, richness >= 70, ShouldRunPreprocessor(model.TierDeep, triage))
		})
	}
}

func TestShouldRunPreprocessorUnknownTierFailsClosed(t *testing.T) {
	triage := model.TriageOutcome{DataRichness: 100}

	assert.False(t, ShouldRunPreprocessor(model.Tier("premium"), triage))
	assert.False(t, ShouldRunPreprocessor(model.Tier(""), triage))
}

func TestShouldRunPreprocessorIgnoresOtherTriageFields(t *testing.T) {
	// Only data_richness matters; lead score and confidence must not
	// influence the decision.
	low := model.TriageOutcome{LeadScore: 0, DataRichness: 70, Confidence: 0.0}
	high := model.TriageOutcome{LeadScore: 100, DataRichness: 70, Confidence: 1.0}

	assert.True(t, ShouldRunPreprocessor(model.TierDeep, low))
	assert.True(t, ShouldRunPreprocessor(model.TierDeep, high))
}

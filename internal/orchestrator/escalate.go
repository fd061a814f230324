package orchestrator

import "github.com/leadscope/lead-cli/internal/model"

// richnessEscalationThreshold is the minimum triage data richness at which
// a deep-tier request escalates into the preprocessor stage.
const richnessEscalationThreshold = 70

// ShouldRunPreprocessor decides whether the optional preprocessor stage
// runs. Pure function of tier and triage outcome: light never escalates,
// deep escalates on rich data only, xray always runs the preprocessor.
// Unknown tiers fail closed toward cheaper execution.
func ShouldRunPreprocessor(tier model.Tier, triage model.TriageOutcome) bool {
	switch tier {
	case model.TierLight:
		return false
	case model.TierDeep:
		return triage.DataRichness >= richnessEscalationThreshold
	case model.TierXRay:
		return true
	}
	return false
}

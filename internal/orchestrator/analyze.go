package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/config"
	"github.com/leadscope/lead-cli/internal/cost"
	"github.com/leadscope/lead-cli/internal/model"
	"github.com/leadscope/lead-cli/internal/schema"
	"github.com/leadscope/lead-cli/pkg/anthropic"
)

const analysisSystemText = "You are a senior lead analyst producing the final scored assessment of a social profile for a business. Return only valid JSON matching the requested schema."

const analysisPrompt = `Business: %s

Business context pack:
%s

Full profile record:
%s

Triage assessment:
%s

Content signals:
%s

Produce the %s-tier analysis of this lead. Return a JSON object with these fields:
%s`

const analysisFieldsLight = `{"score": <0-100>, "niche_fit": <0-100>, "engagement_score": <0-100>, "confidence_level": <0.0-1.0>, "quick_summary": "<one-paragraph verdict>"}`

const analysisFieldsDeep = `{"score": <0-100>, "niche_fit": <0-100>, "engagement_score": <0-100>, "confidence_level": <0.0-1.0>, "quick_summary": "<one-paragraph verdict>", "audience_quality": "<assessment of follower quality>", "selling_points": [<strings>], "reasons": [<strings>], "deep_summary": "<detailed assessment>", "outreach_message": "<ready-to-send first message>"}`

const analysisFieldsXRay = analysisFieldsDeep + `
plus "copywriter_profile": {"demographics": "<string>", "pain_points": [<strings>], "dreams": [<strings>], "objections": [<strings>]}, "commercial_intelligence": {"budget_tier": "<string>", "decision_role": "<string>", "buying_stage": "<string>", "payment_signals": [<strings>]}, "persuasion_strategy": {"primary_angle": "<string>", "hook_style": "<string>", "proof_elements": [<strings>], "communication_style": "<string>"}`

// RunAnalysis executes the main analysis stage, the only stage whose result
// is user-facing and billable. It always runs after triage — triage informs
// but never gates it. The returned outcome is shaped to the tier: fields
// outside the tier's contract are stripped even when the model returns them.
func RunAnalysis(ctx context.Context, client anthropic.Client, aiCfg config.AnthropicConfig, calc *cost.Calculator, profile model.Profile, business model.Business, tier model.Tier, triage model.TriageOutcome, pre *model.PreprocessorOutcome) (*model.StageResult[model.AnalysisOutcome], error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: marshal profile")
	}
	packJSON, err := json.Marshal(business.ContextPack)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: marshal context pack")
	}
	triageJSON, err := json.Marshal(triage)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: marshal triage")
	}

	preContext := "none"
	if pre != nil {
		preJSON, preErr := json.Marshal(pre)
		if preErr != nil {
			return nil, eris.Wrap(preErr, "analysis: marshal preprocessor outcome")
		}
		preContext = string(preJSON)
	}

	payload, usage, err := callStage(ctx, client, anthropic.MessageRequest{
		Model:     analysisModel(aiCfg, tier),
		MaxTokens: analysisMaxTokens(tier),
		System:    anthropic.BuildCachedSystemBlocks(analysisSystemText),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(analysisPrompt,
				business.OneLiner, packJSON, profileJSON, triageJSON, preContext,
				tier, analysisFields(tier),
			)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "analysis: call")
	}

	outcome, err := parseAnalysisOutcome(payload, tier)
	if err != nil {
		return nil, err
	}

	rec := costRecord(string(tier), analysisModel(aiCfg, tier), calc, usage)
	zap.L().Debug("analysis: complete",
		zap.String("username", profile.Username),
		zap.String("tier", string(tier)),
		zap.Int("score", outcome.Score),
		zap.Float64("cost_usd", rec.ActualCost),
	)

	return &model.StageResult[model.AnalysisOutcome]{Payload: *outcome, Cost: rec}, nil
}

// parseAnalysisOutcome parses, shapes, and validates an analysis payload.
// Unknown and out-of-tier fields are dropped; the shaped result must then
// satisfy the tier's strict schema or the stage fails.
func parseAnalysisOutcome(payload []byte, tier model.Tier) (*model.AnalysisOutcome, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, eris.Wrap(err, "analysis: parse response")
	}

	shaped := shapeForTier(fields, tier)

	shapedJSON, err := json.Marshal(shaped)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: marshal shaped outcome")
	}
	if err := schema.Validate(analysisSchema(tier), shapedJSON); err != nil {
		return nil, eris.Wrap(err, "analysis: response")
	}

	var outcome model.AnalysisOutcome
	if err := json.Unmarshal(shapedJSON, &outcome); err != nil {
		return nil, eris.Wrap(err, "analysis: parse shaped response")
	}
	return &outcome, nil
}

var (
	analysisBaseKeys = []string{"score", "niche_fit", "engagement_score", "confidence_level", "quick_summary"}
	analysisDeepKeys = []string{"audience_quality", "selling_points", "reasons", "deep_summary", "outreach_message"}
	analysisXRayKeys = []string{"copywriter_profile", "commercial_intelligence", "persuasion_strategy"}
)

// shapeForTier strips keys outside the tier's output contract. Deliberate
// exclusion, not pass-through: a light result must not leak deep or xray
// content the caller did not pay for. Shaping works on the raw payload keys
// so validation sees the model's own values, including legitimately empty
// lists.
func shapeForTier(fields map[string]json.RawMessage, tier model.Tier) map[string]json.RawMessage {
	allowed := make([]string, 0, len(analysisBaseKeys)+len(analysisDeepKeys)+len(analysisXRayKeys))
	allowed = append(allowed, analysisBaseKeys...)
	switch tier {
	case model.TierDeep:
		allowed = append(allowed, analysisDeepKeys...)
	case model.TierXRay:
		allowed = append(allowed, analysisDeepKeys...)
		allowed = append(allowed, analysisXRayKeys...)
	}

	shaped := make(map[string]json.RawMessage, len(allowed))
	for _, k := range allowed {
		if v, ok := fields[k]; ok {
			shaped[k] = v
		}
	}
	return shaped
}

func analysisModel(aiCfg config.AnthropicConfig, tier model.Tier) string {
	switch tier {
	case model.TierDeep:
		return aiCfg.DeepModel
	case model.TierXRay:
		return aiCfg.XRayModel
	}
	return aiCfg.LightModel
}

func analysisMaxTokens(tier model.Tier) int64 {
	switch tier {
	case model.TierDeep:
		return 2048
	case model.TierXRay:
		return 4096
	}
	return 1024
}

func analysisFields(tier model.Tier) string {
	switch tier {
	case model.TierDeep:
		return analysisFieldsDeep
	case model.TierXRay:
		return analysisFieldsXRay
	}
	return analysisFieldsLight
}

func analysisSchema(tier model.Tier) string {
	switch tier {
	case model.TierDeep:
		return schema.AnalysisDeep
	case model.TierXRay:
		return schema.AnalysisXRay
	}
	return schema.AnalysisLight
}

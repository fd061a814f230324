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

const triageSystemText = "You are a lead qualification analyst. Score social profiles against a business description. Return only valid JSON matching the requested schema."

const triagePrompt = `Business: %s

Profile snapshot:
%s

Assess this profile as a potential lead for the business. Return a JSON object:
{"lead_score": <0-100 fit estimate>, "data_richness": <0-100 how much analyzable signal the profile carries>, "confidence": <0.0-1.0>, "early_exit": false, "focus_points": [<2-4 short strings naming what deeper analysis should examine>]}`

// RunTriage executes the always-run cheapest stage: a coarse fit/richness
// estimate over the profile snapshot. The escalation policy trusts
// data_richness, so a payload violating the schema's range or cardinality
// constraints is a stage failure, never clamped.
func RunTriage(ctx context.Context, client anthropic.Client, aiCfg config.AnthropicConfig, calc *cost.Calculator, snap model.ProfileSnapshot, oneLiner string) (*model.StageResult[model.TriageOutcome], error) {
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return nil, eris.Wrap(err, "triage: marshal snapshot")
	}

	payload, usage, err := callStage(ctx, client, anthropic.MessageRequest{
		Model:     aiCfg.TriageModel,
		MaxTokens: 512,
		System:    anthropic.BuildCachedSystemBlocks(triageSystemText),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(triagePrompt, oneLiner, snapJSON)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "triage: call")
	}

	if err := schema.Validate(schema.Triage, payload); err != nil {
		return nil, eris.Wrap(err, "triage: response")
	}

	var outcome model.TriageOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return nil, eris.Wrap(err, "triage: parse response")
	}

	rec := costRecord(model.StageTriage, aiCfg.TriageModel, calc, usage)
	zap.L().Debug("triage: complete",
		zap.String("username", snap.Username),
		zap.Int("lead_score", outcome.LeadScore),
		zap.Int("data_richness", outcome.DataRichness),
		zap.Float64("cost_usd", rec.ActualCost),
	)

	return &model.StageResult[model.TriageOutcome]{Payload: outcome, Cost: rec}, nil
}

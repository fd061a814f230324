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

const preprocessSystemText = "You are a content analyst extracting structured facts from social profiles. Return only valid JSON matching the requested schema. Use short plain-language phrases."

const preprocessPrompt = `Business: %s

Full profile record:
%s

Extract normalized content signals from this profile. Return a JSON object:
{"posting_cadence": "<how often and when they post>", "content_themes": [<up to 5 recurring themes>], "audience_signals": [<up to 4 observations about who follows them>], "brand_mentions": "<brands or products referenced>", "engagement_patterns": "<how their audience engages>", "collaboration_history": "<evidence of past partnerships>", "contact_readiness": "<how reachable they appear>", "content_quality": "<production quality assessment>"}`

// RunPreprocessor executes the conditional structured-fact extractor over
// the full profile record. This stage is advisory: list fields beyond their
// caps are truncated rather than rejected, and the caller absorbs any
// failure by proceeding without preprocessor context.
func RunPreprocessor(ctx context.Context, client anthropic.Client, aiCfg config.AnthropicConfig, calc *cost.Calculator, profile model.Profile, oneLiner string) (*model.StageResult[model.PreprocessorOutcome], error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "preprocessor: marshal profile")
	}

	payload, usage, err := callStage(ctx, client, anthropic.MessageRequest{
		Model:     aiCfg.PreprocessorModel,
		MaxTokens: 1024,
		System:    anthropic.BuildCachedSystemBlocks(preprocessSystemText),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(preprocessPrompt, oneLiner, profileJSON)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "preprocessor: call")
	}

	if err := schema.Validate(schema.Preprocessor, payload); err != nil {
		return nil, eris.Wrap(err, "preprocessor: response")
	}

	var outcome model.PreprocessorOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return nil, eris.Wrap(err, "preprocessor: parse response")
	}

	if len(outcome.ContentThemes) > model.MaxContentThemes {
		outcome.ContentThemes = outcome.ContentThemes[:model.MaxContentThemes]
	}
	if len(outcome.AudienceSignals) > model.MaxAudienceSignals {
		outcome.AudienceSignals = outcome.AudienceSignals[:model.MaxAudienceSignals]
	}

	rec := costRecord(model.StagePreprocessor, aiCfg.PreprocessorModel, calc, usage)
	zap.L().Debug("preprocessor: complete",
		zap.String("username", profile.Username),
		zap.Int("content_themes", len(outcome.ContentThemes)),
		zap.Float64("cost_usd", rec.ActualCost),
	)

	return &model.StageResult[model.PreprocessorOutcome]{Payload: outcome, Cost: rec}, nil
}

package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/config"
	"github.com/leadscope/lead-cli/internal/model"
	"github.com/leadscope/lead-cli/internal/schema"
	"github.com/leadscope/lead-cli/pkg/anthropic"
)

const contextSystemText = "You are a positioning strategist. Distill a business into a one-line positioning statement and a structured context pack for lead qualification. Return only valid JSON matching the requested schema."

const contextPrompt = `Business name: %s
What we know about it:
%s

Produce the positioning context for this business. Return a JSON object:
{"business_one_liner": "<at most 140 characters>", "business_context_pack": {"niche": "<string>", "value_prop": "<string>", "must_avoid": [<exactly 3 profile archetypes to avoid>], "priority_signals": [<exactly 4 signals marking a priority fit>], "tone_words": [<exactly 3 tone descriptors>]}}`

// contextSynthesis mirrors the synthesis payload schema.
type contextSynthesis struct {
	BusinessOneLiner    string            `json:"business_one_liner"`
	BusinessContextPack model.ContextPack `json:"business_context_pack"`
}

// ContextResolver ensures the business side of the comparison exists. When
// both context fields are already present they pass through unchanged, with
// no AI call and no cost. Otherwise one call synthesizes both, and the
// result is merged into the in-memory business for the rest of the request.
//
// The synthesis call is deliberately absent from the request's per-stage
// cost aggregation: it is an amortized one-time cost of business setup, not
// of lead analysis.
type ContextResolver struct {
	client anthropic.Client
	aiCfg  config.AnthropicConfig
}

// NewContextResolver creates a resolver over the given AI client.
func NewContextResolver(client anthropic.Client, aiCfg config.AnthropicConfig) *ContextResolver {
	return &ContextResolver{client: client, aiCfg: aiCfg}
}

// Resolve returns the business with complete context, and whether a
// synthesis call was made. The caller owns persisting a synthesized context.
func (r *ContextResolver) Resolve(ctx context.Context, business model.Business) (model.Business, bool, error) {
	if business.ContextComplete() {
		return business, false, nil
	}

	known := business.OneLiner
	if known == "" {
		known = "(no positioning statement on record)"
	}

	payload, usage, err := callStage(ctx, r.client, anthropic.MessageRequest{
		Model:     r.aiCfg.ContextModel,
		MaxTokens: 1024,
		System:    anthropic.BuildCachedSystemBlocks(contextSystemText),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(contextPrompt, business.Name, known)},
		},
	})
	if err != nil {
		return business, false, eris.Wrap(err, "context: synthesis call")
	}

	if err := schema.Validate(schema.BusinessContext, payload); err != nil {
		return business, false, eris.Wrap(err, "context: synthesis response")
	}

	var synth contextSynthesis
	if err := json.Unmarshal(payload, &synth); err != nil {
		return business, false, eris.Wrap(err, "context: parse synthesis")
	}

	business.OneLiner = synth.BusinessOneLiner
	pack := synth.BusinessContextPack
	business.ContextPack = &pack

	zap.L().Info("context: synthesized business context",
		zap.String("business", business.ID),
		zap.Int64("input_tokens", usage.InputTokens),
		zap.Int64("output_tokens", usage.OutputTokens),
	)

	return business, true, nil
}

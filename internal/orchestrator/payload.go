package orchestrator

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/leadscope/lead-cli/internal/cost"
	"github.com/leadscope/lead-cli/internal/model"
	"github.com/leadscope/lead-cli/pkg/anthropic"
)

// callStage issues one model call and returns the cleaned JSON payload with
// the token usage of the call. Stage runners validate the payload against
// their schema before trusting any field of it.
func callStage(ctx context.Context, client anthropic.Client, req anthropic.MessageRequest) ([]byte, anthropic.TokenUsage, error) {
	resp, err := client.CreateMessage(ctx, req)
	if err != nil {
		return nil, anthropic.TokenUsage{}, err
	}

	cleaned := cleanJSON(resp.Text())
	if cleaned == "" {
		return nil, resp.Usage, eris.New("empty response payload")
	}
	return []byte(cleaned), resp.Usage, nil
}

// cleanJSON strips markdown fences and surrounding prose from a model
// response, leaving the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// costRecord builds the single CostRecord a successful stage execution
// emits. Input-side tokens include cache writes and reads so the token
// audit matches what the provider metered.
func costRecord(stage, modelID string, calc *cost.Calculator, usage anthropic.TokenUsage) model.CostRecord {
	return model.CostRecord{
		Stage:      stage,
		ActualCost: calc.Claude(modelID, usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens),
		TokensIn:   int(usage.InputTokens + usage.CacheCreationInputTokens + usage.CacheReadInputTokens),
		TokensOut:  int(usage.OutputTokens),
	}
}

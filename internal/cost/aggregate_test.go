package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadscope/lead-cli/internal/model"
)

func TestAggregate(t *testing.T) {
	records := []model.CostRecord{
		{Stage: "triage", ActualCost: 0.001, TokensIn: 900, TokensOut: 120},
		{Stage: "preprocessor", ActualCost: 0.004, TokensIn: 2500, TokensOut: 400},
		{Stage: "deep", ActualCost: 0.03, TokensIn: 4100, TokensOut: 900},
	}

	summary := Aggregate(records)

	assert.InDelta(t, 0.035, summary.ActualCost, 1e-9)
	assert.Equal(t, 7500, summary.TokensIn)
	assert.Equal(t, 1420, summary.TokensOut)
	assert.Equal(t, []string{"triage", "preprocessor", "deep"}, summary.Stages)
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)

	assert.Zero(t, summary.ActualCost)
	assert.Zero(t, summary.TokensIn)
	assert.Zero(t, summary.TokensOut)
	assert.Empty(t, summary.Stages)
}

func TestAggregatePreservesExecutionOrder(t *testing.T) {
	records := []model.CostRecord{
		{Stage: "triage"},
		{Stage: "xray"},
	}
	assert.Equal(t, []string{"triage", "xray"}, Aggregate(records).Stages)
}

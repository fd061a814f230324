package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadscope/lead-cli/internal/model"
)

func TestResolvePassThrough(t *testing.T) {
	// A business with complete context must pass through byte-for-byte
	// with no AI call.
	client := &mockAnthropicClient{}
	resolver := NewContextResolver(client, testConfig().Anthropic)

	in := testBusiness()
	out, synthesized, err := resolver.Resolve(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, synthesized)
	assert.Equal(t, in, out)
	client.AssertNotCalled(t, "CreateMessage")
}

func TestResolveSynthesizes(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, forModel("model-context")).
		Return(textResponse(validContextJSON), nil).Once()
	resolver := NewContextResolver(client, testConfig().Anthropic)

	out, synthesized, err := resolver.Resolve(context.Background(), model.Business{ID: "biz_1", Name: "FounderFit"})
	require.NoError(t, err)

	assert.True(t, synthesized)
	assert.Equal(t, "Coaching for busy founders", out.OneLiner)
	require.NotNil(t, out.ContextPack)
	assert.Equal(t, "executive coaching", out.ContextPack.Niche)
	assert.Len(t, out.ContextPack.MustAvoid, 3)
	assert.Len(t, out.ContextPack.PrioritySignals, 4)
	assert.Len(t, out.ContextPack.ToneWords, 3)
	client.AssertExpectations(t)
}

func TestResolveSynthesizesWhenOnlyOneLinerPresent(t *testing.T) {
	// One present field is not enough; both must exist or one call
	// synthesizes both.
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(validContextJSON), nil).Once()
	resolver := NewContextResolver(client, testConfig().Anthropic)

	out, synthesized, err := resolver.Resolve(context.Background(), model.Business{
		ID:       "biz_1",
		Name:     "FounderFit",
		OneLiner: "Old positioning",
	})
	require.NoError(t, err)

	assert.True(t, synthesized)
	assert.Equal(t, "Coaching for busy founders", out.OneLiner)
	assert.NotNil(t, out.ContextPack)
}

func TestResolveSchemaViolation(t *testing.T) {
	// must_avoid requires exactly 3 entries.
	bad := `{"business_one_liner": "x", "business_context_pack": {"niche": "n", "value_prop": "v", "must_avoid": ["one"], "priority_signals": ["a", "b", "c", "d"], "tone_words": ["a", "b", "c"]}}`
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(bad), nil)
	resolver := NewContextResolver(client, testConfig().Anthropic)

	_, _, err := resolver.Resolve(context.Background(), model.Business{ID: "biz_1", Name: "FounderFit"})
	require.Error(t, err)
}

func TestResolveCallError(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	resolver := NewContextResolver(client, testConfig().Anthropic)

	_, synthesized, err := resolver.Resolve(context.Background(), model.Business{ID: "biz_1", Name: "FounderFit"})
	require.Error(t, err)
	assert.False(t, synthesized)
}

package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageResponseText(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "hello "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "world"},
		},
	}
	assert.Equal(t, "hello world", resp.Text())
}

func TestMessageResponseTextEmpty(t *testing.T) {
	assert.Empty(t, (&MessageResponse{}).Text())
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("system prompt")

	assert.Len(t, blocks, 1)
	assert.Equal(t, "system prompt", blocks[0].Text)
	assert.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestToSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	})

	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}

func TestToSDKSystemBlocks(t *testing.T) {
	blocks := toSDKSystemBlocks([]SystemBlock{
		{Text: "plain"},
		{Text: "cached", CacheControl: &CacheControl{TTL: "1h"}},
	})

	assert.Len(t, blocks, 2)
	assert.Equal(t, "plain", blocks[0].Text)
	assert.Equal(t, "cached", blocks[1].Text)
	assert.Equal(t, "1h", string(blocks[1].CacheControl.TTL))
}

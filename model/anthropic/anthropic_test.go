package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	"github.com/colincmac/openai-plugins-serverless/model"
)

var _ model.CompletionBackend = (*Backend)(nil)

func TestNewFromClientAppliesModelOption(t *testing.T) {
	client := anthropic.NewClient()

	b := NewFromClient(&client, func(o *Options) { o.Model = "claude-sonnet-4-0" })
	assert.Equal(t, "claude-sonnet-4-0", b.opts.Model)
}

func TestNewFromClientDefaultModel(t *testing.T) {
	client := anthropic.NewClient()

	b := NewFromClient(&client)
	assert.Equal(t, string(anthropic.ModelClaude3_5Sonnet20241022), b.opts.Model)
}

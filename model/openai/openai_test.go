package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"

	"github.com/colincmac/openai-plugins-serverless/model"
)

var _ model.CompletionBackend = (*Backend)(nil)

func TestNewFromClientAppliesModelOption(t *testing.T) {
	client := openai.NewClient()

	b := NewFromClient(&client, func(o *Options) { o.Model = "gpt-4o" })
	assert.Equal(t, "gpt-4o", b.opts.Model)
}

func TestNewFromClientDefaultModel(t *testing.T) {
	client := openai.NewClient()

	b := NewFromClient(&client)
	assert.Equal(t, openai.ChatModelGPT4oMini, b.opts.Model)
}

// Package openai implements model.CompletionBackend using the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/colincmac/openai-plugins-serverless/model"
)

// Options configure the OpenAI backend adapter.
type Options struct {
	Model string
}

// Backend wraps the OpenAI client behind the generic CompletionBackend
// interface. Sampling parameters are supplied per call by the pipeline.
type Backend struct {
	client *openai.Client
	opts   Options
}

// New creates a Backend using the default client (API key from environment).
func New(optFns ...func(o *Options)) *Backend {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a Backend from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model: openai.ChatModelGPT4oMini,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements model.CompletionBackend.
func (b *Backend) Complete(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:            b.opts.Model,
		Temperature:      openai.Float(cfg.Temperature),
		TopP:             openai.Float(cfg.TopP),
		FrequencyPenalty: openai.Float(cfg.FrequencyPenalty),
		PresencePenalty:  openai.Float(cfg.PresencePenalty),
	}
	if cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(cfg.MaxTokens))
	}
	if len(cfg.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: cfg.StopSequences}
	}

	completion, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &model.BackendError{
				Message: apiErr.Message,
				Detail:  fmt.Sprintf("type=%s code=%v", apiErr.Type, apiErr.Code),
			}
		}
		return "", &model.BackendError{Message: err.Error()}
	}
	if len(completion.Choices) == 0 {
		return "", &model.BackendError{Message: "no completion choices returned"}
	}
	return completion.Choices[0].Message.Content, nil
}

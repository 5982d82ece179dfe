// Package anthropic implements model.CompletionBackend using the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/colincmac/openai-plugins-serverless/model"
)

// Options configure the Anthropic backend adapter.
type Options struct {
	Model  string
	APIKey string
}

// Backend wraps the Anthropic client behind the generic CompletionBackend
// interface. Sampling parameters are supplied per call by the pipeline.
type Backend struct {
	client *anthropic.Client
	opts   Options
}

// New creates a Backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model: string(anthropic.ModelClaude3_5Sonnet20241022),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Backend{client: &client, opts: opts}
}

// NewFromClient creates a Backend from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model: string(anthropic.ModelClaude3_5Sonnet20241022),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements model.CompletionBackend.
func (b *Backend) Complete(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model: anthropic.Model(b.opts.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(cfg.Temperature),
		TopP:        anthropic.Float(cfg.TopP),
	}
	if len(cfg.StopSequences) > 0 {
		params.StopSequences = cfg.StopSequences
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &model.BackendError{
				Message: err.Error(),
				Detail:  fmt.Sprintf("status=%d", apiErr.StatusCode),
			}
		}
		return "", &model.BackendError{Message: err.Error()}
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/internal/testutil"
	"github.com/colincmac/openai-plugins-serverless/model"
	"github.com/colincmac/openai-plugins-serverless/store"
)

func extractorDeps(t *testing.T) (*model.MockBackend, *HistoryAssembler) {
	t.Helper()
	messages := store.NewInMemoryMessageStore()
	require.NoError(t, messages.Create(context.Background(),
		testutil.NewMessageBuilder("chat-1").User("alice").Content("can you deploy it?").Build()))
	return model.NewMockBackend(), NewHistoryAssembler(messages, nil)
}

func TestIntentExtractor_LabelsResult(t *testing.T) {
	backend, history := extractorDeps(t)
	backend.SetFallback("  deploy the application to production  ")

	extractor := NewIntentExtractor(backend, history, DefaultOptions(), nil)
	vars := &core.ContextVariables{ChatID: "chat-1", Audience: "alice"}

	got := extractor.Extract(context.Background(), vars)
	require.False(t, vars.Failed())
	assert.Equal(t, "User intent: deploy the application to production", got)

	// The prompt carries the bounded history and the rendered continuation.
	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "can you deploy it?")
	assert.Contains(t, calls[0], "alice:")
	assert.NotContains(t, calls[0], "{{.KnowledgeCutoff}}")
}

func TestIntentExtractor_FailureMarksContext(t *testing.T) {
	backend, history := extractorDeps(t)
	backend.SetError(errors.New("backend down"))

	extractor := NewIntentExtractor(backend, history, DefaultOptions(), nil)
	vars := &core.ContextVariables{ChatID: "chat-1"}

	got := extractor.Extract(context.Background(), vars)
	assert.Empty(t, got)
	require.True(t, vars.Failed())
	assert.Contains(t, vars.FailureDescription(), "backend down")
}

func TestAudienceExtractor_LabelsResult(t *testing.T) {
	backend, history := extractorDeps(t)
	backend.SetFallback("alice, bob")

	extractor := NewAudienceExtractor(backend, history, DefaultOptions(), nil)
	vars := &core.ContextVariables{ChatID: "chat-1"}

	got := extractor.Extract(context.Background(), vars)
	require.False(t, vars.Failed())
	assert.Equal(t, "List of participants: alice, bob", got)
}

func TestAudienceExtractor_FailureMarksContext(t *testing.T) {
	backend, history := extractorDeps(t)
	backend.SetError(errors.New("backend down"))

	extractor := NewAudienceExtractor(backend, history, DefaultOptions(), nil)
	vars := &core.ContextVariables{ChatID: "chat-1"}

	assert.Empty(t, extractor.Extract(context.Background(), vars))
	assert.True(t, vars.Failed())
}

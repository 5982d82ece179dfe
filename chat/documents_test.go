package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/core"
)

func TestDocumentMemoryRetriever_QueriesChatAndGlobalCollections(t *testing.T) {
	opts := DefaultOptions()
	search := &fakeSearch{results: map[string][]core.MemoryQueryResult{
		opts.ChatDocumentCollectionPrefix + "chat-1": {
			{Text: "uploaded quarterly figures", Description: "report.pdf", Relevance: 0.9},
		},
		opts.GlobalDocumentCollectionName: {
			{Text: "company style guide", Description: "style.md", Relevance: 0.85},
		},
		// A different chat's documents must never leak in.
		opts.ChatDocumentCollectionPrefix + "chat-2": {
			{Text: "secret roadmap", Description: "roadmap.md", Relevance: 0.99},
		},
	}}

	retriever := NewDocumentMemoryRetriever(search, opts)
	text, err := retriever.Query(context.Background(), "figures", "chat-1", 1000)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "User has also shared some document snippets:"))
	assert.Contains(t, text, "Snippet from report.pdf: uploaded quarterly figures")
	assert.Contains(t, text, "Snippet from style.md: company style guide")
	assert.NotContains(t, text, "secret roadmap")
}

func TestDocumentMemoryRetriever_EmptyWhenNothingFits(t *testing.T) {
	opts := DefaultOptions()
	search := &fakeSearch{results: map[string][]core.MemoryQueryResult{
		opts.GlobalDocumentCollectionName: {
			{Text: "a snippet that is far too long for the budget given here", Description: "doc", Relevance: 0.9},
		},
	}}

	retriever := NewDocumentMemoryRetriever(search, opts)
	text, err := retriever.Query(context.Background(), "q", "chat-1", 1)
	require.NoError(t, err)
	assert.Empty(t, text)
}

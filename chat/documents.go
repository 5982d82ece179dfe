package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/colincmac/openai-plugins-serverless/core"
)

// DocumentMemoryRetriever ranks and truncates document snippets from the
// chat-scoped collection and the global collection. No other collections are
// ever mixed in.
type DocumentMemoryRetriever struct {
	search core.MemorySearch
	opts   *Options
}

// NewDocumentMemoryRetriever constructs a retriever over a memory search
// collaborator.
func NewDocumentMemoryRetriever(search core.MemorySearch, opts *Options) *DocumentMemoryRetriever {
	return &DocumentMemoryRetriever{search: search, opts: opts}
}

// Query searches the chat's document collection plus the global collection,
// merges and ranks the results, then greedily appends snippets while the
// token budget allows.
func (r *DocumentMemoryRetriever) Query(ctx context.Context, query, chatID string, tokenLimit int) (string, error) {
	collections := []string{
		r.opts.ChatDocumentCollectionPrefix + chatID,
		r.opts.GlobalDocumentCollectionName,
	}

	var relevant []core.MemoryQueryResult
	for _, collection := range collections {
		results, err := r.search.Search(ctx, collection, query, searchLimit, r.opts.DocumentMemoryMinRelevance)
		if err != nil {
			return "", &core.MemoryStoreError{Collection: collection, Err: err}
		}
		relevant = append(relevant, results...)
	}

	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].Relevance > relevant[j].Relevance })

	remaining := tokenLimit
	var documentsText string
	for _, memory := range relevant {
		cost := TokenCount(memory.Text)
		if remaining-cost <= 0 {
			break
		}
		documentsText += fmt.Sprintf("\n\nSnippet from %s: %s", memory.Description, memory.Text)
		remaining -= cost
	}

	if documentsText == "" {
		// No relevant documents found.
		return "", nil
	}
	return "User has also shared some document snippets:\n" + strings.TrimSpace(documentsText), nil
}

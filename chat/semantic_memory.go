package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/colincmac/openai-plugins-serverless/core"
)

// searchLimit is the per-collection result cap handed to the memory search
// collaborator. Budget truncation, not the cap, bounds the final output.
const searchLimit = 100

// SemanticMemoryRetriever ranks and truncates semantic memory snippets
// relevant to the extracted user intent.
type SemanticMemoryRetriever struct {
	search core.MemorySearch
	opts   *Options
}

// NewSemanticMemoryRetriever constructs a retriever over a memory search
// collaborator.
func NewSemanticMemoryRetriever(search core.MemorySearch, opts *Options) *SemanticMemoryRetriever {
	return &SemanticMemoryRetriever{search: search, opts: opts}
}

// Query searches every configured memory collection for the chat, merges and
// ranks the results, then greedily appends snippets while the token budget
// allows. An empty result means no relevant memory, not an error.
func (r *SemanticMemoryRetriever) Query(ctx context.Context, query, chatID string, tokenLimit int) (string, error) {
	var relevant []core.MemoryQueryResult
	for _, memoryName := range r.opts.MemoryNames {
		collection := MemoryCollectionName(chatID, memoryName)
		results, err := r.search.Search(ctx, collection, query, searchLimit, r.opts.SemanticMemoryMinRelevance)
		if err != nil {
			return "", &core.MemoryStoreError{Collection: collection, Err: err}
		}
		relevant = append(relevant, results...)
	}

	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].Relevance > relevant[j].Relevance })

	remaining := tokenLimit
	var memoryText string
	for _, memory := range relevant {
		cost := TokenCount(memory.Text)
		if remaining-cost <= 0 {
			break
		}
		memoryText += fmt.Sprintf("\n[%s] %s", memory.Description, memory.Text)
		remaining -= cost
	}

	if memoryText == "" {
		// No relevant memories found.
		return "", nil
	}
	return "Past memories (format: [memory type] <label>: <details>):\n" + strings.TrimSpace(memoryText), nil
}

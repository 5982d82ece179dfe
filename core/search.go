package core

import "context"

// MemoryQueryResult is a retrieved memory snippet with its relevance score.
// Results are ephemeral; the pipeline never persists them.
type MemoryQueryResult struct {
	Text        string
	Description string
	Relevance   float64 // in [0, 1]
	Embedding   []float32
}

// MemorySearch is the read-only retrieval contract consumed by the semantic
// and document memory stages. Collections are named; results are ranked by
// descending relevance before being returned.
type MemorySearch interface {
	Search(ctx context.Context, collection, query string, limit int, minRelevance float64) ([]MemoryQueryResult, error)
}

// MemoryStore extends MemorySearch with the write path used by the
// post-response memory distiller.
type MemoryStore interface {
	MemorySearch

	// Store persists a snippet into the named collection. The id keys
	// deduplication: storing an existing id replaces the entry.
	Store(ctx context.Context, collection, id, text, description string) error
}

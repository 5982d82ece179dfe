// Package memory provides a process-local implementation of the memory
// search and store contracts. Retrieval uses a term-overlap relevance score;
// swap in an embedding-backed implementation for production recall.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/colincmac/openai-plugins-serverless/core"
)

type record struct {
	id          string
	text        string
	description string
}

// VolatileStore is an in-process core.MemoryStore keyed by collection name.
// It is safe for concurrent use. Relevance is the fraction of query terms
// found in the snippet text or description, which keeps ranking deterministic
// for tests while honoring the minRelevance contract.
type VolatileStore struct {
	mu          sync.RWMutex
	collections map[string][]record
}

// NewVolatileStore constructs an empty volatile memory store.
func NewVolatileStore() *VolatileStore {
	return &VolatileStore{collections: make(map[string][]record)}
}

// Store implements core.MemoryStore. Storing an existing id replaces the
// entry in place.
func (s *VolatileStore) Store(_ context.Context, collection, id, text, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collections[collection]
	for i, r := range records {
		if r.id == id {
			records[i] = record{id: id, text: text, description: description}
			return nil
		}
	}
	s.collections[collection] = append(records, record{id: id, text: text, description: description})
	return nil
}

// Search implements core.MemorySearch. Results are ranked by descending
// relevance; ties keep insertion order.
func (s *VolatileStore) Search(_ context.Context, collection, query string, limit int, minRelevance float64) ([]core.MemoryQueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.collections[collection]
	if !ok || limit <= 0 {
		return []core.MemoryQueryResult{}, nil
	}

	results := make([]core.MemoryQueryResult, 0, len(records))
	for _, r := range records {
		score := relevance(query, r.text+" "+r.description)
		if score < minRelevance {
			continue
		}
		results = append(results, core.MemoryQueryResult{
			Text:        r.text,
			Description: r.description,
			Relevance:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// relevance scores how many query terms appear in the candidate text,
// normalized to [0, 1]. An empty query matches everything at full relevance.
func relevance(query, text string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 1.0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

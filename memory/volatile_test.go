package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/core"
)

// Interface compliance (compile-time assertion)
var _ core.MemoryStore = (*VolatileStore)(nil)

func TestVolatileStore_StoreAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewVolatileStore()

	require.NoError(t, s.Store(ctx, "facts", "1", "the user lives in Hamburg", "LongTermMemory"))
	require.NoError(t, s.Store(ctx, "facts", "2", "the user likes coffee", "LongTermMemory"))

	results, err := s.Search(ctx, "facts", "hamburg", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "the user lives in Hamburg", results[0].Text)
	assert.Equal(t, "LongTermMemory", results[0].Description)
}

func TestVolatileStore_ReplacesById(t *testing.T) {
	ctx := context.Background()
	s := NewVolatileStore()

	require.NoError(t, s.Store(ctx, "facts", "1", "old text", "d"))
	require.NoError(t, s.Store(ctx, "facts", "1", "new text", "d"))

	results, err := s.Search(ctx, "facts", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new text", results[0].Text)
}

func TestVolatileStore_RanksByTermOverlap(t *testing.T) {
	ctx := context.Background()
	s := NewVolatileStore()

	require.NoError(t, s.Store(ctx, "facts", "1", "coffee", "d"))
	require.NoError(t, s.Store(ctx, "facts", "2", "coffee in hamburg", "d"))

	results, err := s.Search(ctx, "facts", "coffee hamburg", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "coffee in hamburg", results[0].Text, "full match ranks first")
	assert.Equal(t, 1.0, results[0].Relevance)
	assert.Equal(t, 0.5, results[1].Relevance)
}

func TestVolatileStore_MinRelevanceFilters(t *testing.T) {
	ctx := context.Background()
	s := NewVolatileStore()

	require.NoError(t, s.Store(ctx, "facts", "1", "coffee", "d"))

	results, err := s.Search(ctx, "facts", "coffee hamburg", 10, 0.8)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVolatileStore_LimitAndUnknownCollection(t *testing.T) {
	ctx := context.Background()
	s := NewVolatileStore()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.Store(ctx, "facts", id, "text "+id, "d"))
	}

	results, err := s.Search(ctx, "facts", "", 2, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	empty, err := s.Search(ctx, "absent", "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

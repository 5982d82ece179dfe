package chat

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/memory"
	"github.com/colincmac/openai-plugins-serverless/model"
)

func TestMemoryExtractor_StoresNewItems(t *testing.T) {
	ctx := context.Background()
	backend := model.NewMockBackend()
	backend.AddResponse("items of "+LongTermMemoryName, `{"items":[{"label":"Home","details":"the user lives in Hamburg"}]}`)
	backend.AddResponse("items of "+WorkingMemoryName, `{"items":[{"label":"Task","details":"booking a flight"}]}`)
	mem := memory.NewVolatileStore()

	extractor := NewMemoryExtractor(backend, mem, DefaultOptions(), nil)
	require.NoError(t, extractor.Extract(ctx, "chat-1", "[ts] alice: I live in Hamburg\n[ts] bot: noted"))

	longTerm, err := mem.Search(ctx, MemoryCollectionName("chat-1", LongTermMemoryName), "", 10, 0)
	require.NoError(t, err)
	require.Len(t, longTerm, 1)
	assert.Equal(t, "Home: the user lives in Hamburg", longTerm[0].Text)
	assert.Equal(t, LongTermMemoryName, longTerm[0].Description)

	working, err := mem.Search(ctx, MemoryCollectionName("chat-1", WorkingMemoryName), "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, working, 1)
}

func TestMemoryExtractor_DeduplicatesExistingItems(t *testing.T) {
	ctx := context.Background()
	backend := model.NewMockBackend()
	backend.SetFallback(`{"items":[{"label":"Home","details":"the user lives in Hamburg"}]}`)
	mem := memory.NewVolatileStore()

	extractor := NewMemoryExtractor(backend, mem, DefaultOptions(), nil)
	require.NoError(t, extractor.Extract(ctx, "chat-1", "exchange one"))
	require.NoError(t, extractor.Extract(ctx, "chat-1", "exchange two"))

	stored, err := mem.Search(ctx, MemoryCollectionName("chat-1", LongTermMemoryName), "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "a re-extracted item must not be stored twice")
}

func TestMemoryExtractor_SkipsMalformedItems(t *testing.T) {
	ctx := context.Background()
	backend := model.NewMockBackend()
	backend.SetFallback(`{"items":[{"label":"","details":"no label"},{"label":"NoDetails","details":""}]}`)
	mem := memory.NewVolatileStore()

	extractor := NewMemoryExtractor(backend, mem, DefaultOptions(), nil)
	require.NoError(t, extractor.Extract(ctx, "chat-1", "exchange"))

	stored, err := mem.Search(ctx, MemoryCollectionName("chat-1", LongTermMemoryName), "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDistillQueue_RunsTasksAndDrainsOnClose(t *testing.T) {
	q := NewDistillQueue(2, 8, nil)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(func() { ran.Add(1) }))
	}
	q.Close()

	assert.Equal(t, int32(5), ran.Load())
	assert.False(t, q.Enqueue(func() {}), "enqueue after close must be rejected")
}

func TestDistillQueue_DropsWhenFull(t *testing.T) {
	q := NewDistillQueue(1, 1, nil)
	defer q.Close()

	block := make(chan struct{})
	q.Enqueue(func() { <-block })

	// Fill the single buffer slot, then overflow.
	accepted := 0
	for i := 0; i < 3; i++ {
		if q.Enqueue(func() {}) {
			accepted++
		}
	}
	close(block)
	assert.Less(t, accepted, 3, "a full queue must drop rather than block")
}

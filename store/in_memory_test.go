package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/internal/testutil"
)

// Interface compliance (compile-time assertions)
var (
	_ core.MessageStore = (*InMemoryMessageStore)(nil)
	_ core.SessionStore = (*InMemorySessionStore)(nil)
)

func TestInMemoryMessageStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryMessageStore()

	msg := testutil.NewMessageBuilder("chat-1").ID("m1").User("alice").Content("hello").Build()
	require.NoError(t, s.Create(ctx, msg))

	found, err := s.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Content)

	// Mutating the returned copy must not affect the stored message.
	found.Content = "tampered"
	again, err := s.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Content)
}

func TestInMemoryMessageStore_FindByChatIDKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryMessageStore()

	require.NoError(t, s.Create(ctx, testutil.NewMessageBuilder("chat-1").ID("m1").Content("first").Build()))
	require.NoError(t, s.Create(ctx, testutil.NewMessageBuilder("chat-1").ID("m2").Content("second").Build()))
	require.NoError(t, s.Create(ctx, testutil.NewMessageBuilder("chat-2").ID("m3").Content("other chat").Build()))

	msgs, err := s.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestInMemoryMessageStore_FindByIDNotFound(t *testing.T) {
	s := NewInMemoryMessageStore()
	_, err := s.FindByID(context.Background(), "absent")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInMemoryMessageStore_UpsertRewritesContent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryMessageStore()

	msg := testutil.NewMessageBuilder("chat-1").ID("m1").Content("proposed plan json").Build()
	require.NoError(t, s.Create(ctx, msg))

	msg.Content = "approved plan json"
	require.NoError(t, s.Upsert(ctx, msg))

	found, err := s.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "approved plan json", found.Content)

	// Upsert must not duplicate the chat index entry.
	msgs, err := s.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestInMemorySessionStore_TryFindByID(t *testing.T) {
	ctx := context.Background()
	s := NewInMemorySessionStore()

	_, ok, err := s.TryFindByID(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Create(ctx, testutil.NewSession("chat-1", "alice")))
	session, ok, err := s.TryFindByID(ctx, "chat-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", session.UserID)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/internal/testutil"
)

var _ core.MessageStore = (*SQLiteStore)(nil)

func newSQLiteFixture(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteMessageRoundTrip(t *testing.T) {
	s := newSQLiteFixture(t)
	ctx := context.Background()

	base := time.Date(2023, 4, 2, 10, 0, 0, 0, time.UTC)
	first := testutil.NewMessageBuilder("chat-1").ID("m-1").User("alice").
		Content("hello").At(base).Build()
	second := testutil.NewMessageBuilder("chat-1").ID("m-2").Bot().
		Content("hi alice").At(base.Add(time.Minute)).Build()
	other := testutil.NewMessageBuilder("chat-2").ID("m-3").User("bob").
		Content("elsewhere").At(base).Build()

	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))
	require.NoError(t, s.Create(ctx, other))

	history, err := s.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "m-1", history[0].ID)
	assert.Equal(t, "m-2", history[1].ID)
	assert.Equal(t, core.AuthorRoleBot, history[1].AuthorRole)

	got, err := s.FindByID(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "alice", got.UserName)
}

func TestSQLiteFindByIDNotFound(t *testing.T) {
	s := newSQLiteFixture(t)

	_, err := s.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteUpsertRewritesContent(t *testing.T) {
	s := newSQLiteFixture(t)
	ctx := context.Background()

	msg := testutil.NewMessageBuilder("chat-1").ID("m-1").Bot().
		Content(`{"proposedPlan":{}}`).Type(core.MessageTypePlan).Build()
	require.NoError(t, s.Create(ctx, msg))

	msg.Content = `{"proposedPlan":{},"state":1}`
	require.NoError(t, s.Upsert(ctx, msg))

	got, err := s.FindByID(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, `{"proposedPlan":{},"state":1}`, got.Content)

	history, err := s.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSQLiteSessions(t *testing.T) {
	s := newSQLiteFixture(t)
	ctx := context.Background()
	sessions := s.Sessions()

	require.NoError(t, sessions.Create(ctx, testutil.NewSession("chat-1", "user-1")))

	got, err := sessions.FindByID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	_, ok, err := sessions.TryFindByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = sessions.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

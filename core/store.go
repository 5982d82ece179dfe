package core

import "context"

// MessageStore persists chat messages. Implementations must support
// concurrent reads and last-write-wins upserts; no further coordination is
// assumed by the orchestration pipeline.
type MessageStore interface {
	// Create stores a new message.
	Create(ctx context.Context, msg *ChatMessage) error

	// FindByChatID returns all messages for a chat in unspecified order.
	FindByChatID(ctx context.Context, chatID string) ([]*ChatMessage, error)

	// FindByID returns the message with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*ChatMessage, error)

	// Upsert creates or replaces a message keyed by its id.
	Upsert(ctx context.Context, msg *ChatMessage) error
}

// SessionStore persists chat sessions.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *ChatSession) error

	// FindByID returns the session with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*ChatSession, error)

	// TryFindByID reports whether the session exists without treating
	// absence as an error.
	TryFindByID(ctx context.Context, id string) (*ChatSession, bool, error)
}

// Package store provides MessageStore and SessionStore implementations: a
// volatile in-process variant for tests and demos, and a SQLite-backed
// variant for persistent deployments.
package store

import (
	"context"
	"sync"

	"github.com/colincmac/openai-plugins-serverless/core"
)

// InMemoryMessageStore is a volatile core.MessageStore backed by a process
// local map. It is safe for concurrent access; stored messages are copied on
// the way in and out to prevent external mutation.
type InMemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[string]*core.ChatMessage
	byChat   map[string][]string
}

// NewInMemoryMessageStore constructs an empty in-memory message store.
func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		messages: make(map[string]*core.ChatMessage),
		byChat:   make(map[string][]string),
	}
}

// Create implements core.MessageStore.
func (s *InMemoryMessageStore) Create(_ context.Context, msg *core.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *msg
	if _, exists := s.messages[msg.ID]; !exists {
		s.byChat[msg.ChatID] = append(s.byChat[msg.ChatID], msg.ID)
	}
	s.messages[msg.ID] = &clone
	return nil
}

// FindByChatID implements core.MessageStore.
func (s *InMemoryMessageStore) FindByChatID(_ context.Context, chatID string) ([]*core.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byChat[chatID]
	out := make([]*core.ChatMessage, 0, len(ids))
	for _, id := range ids {
		if msg, ok := s.messages[id]; ok {
			clone := *msg
			out = append(out, &clone)
		}
	}
	return out, nil
}

// FindByID implements core.MessageStore.
func (s *InMemoryMessageStore) FindByID(_ context.Context, id string) (*core.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *msg
	return &clone, nil
}

// Upsert implements core.MessageStore. Last write wins.
func (s *InMemoryMessageStore) Upsert(_ context.Context, msg *core.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *msg
	if _, exists := s.messages[msg.ID]; !exists {
		s.byChat[msg.ChatID] = append(s.byChat[msg.ChatID], msg.ID)
	}
	s.messages[msg.ID] = &clone
	return nil
}

// InMemorySessionStore is a volatile core.SessionStore backed by a process
// local map. It is safe for concurrent access.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.ChatSession
}

// NewInMemorySessionStore constructs an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*core.ChatSession)}
}

// Create implements core.SessionStore.
func (s *InMemorySessionStore) Create(_ context.Context, session *core.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

// FindByID implements core.SessionStore.
func (s *InMemorySessionStore) FindByID(_ context.Context, id string) (*core.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

// TryFindByID implements core.SessionStore.
func (s *InMemorySessionStore) TryFindByID(ctx context.Context, id string) (*core.ChatSession, bool, error) {
	session, err := s.FindByID(ctx, id)
	if err == core.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

package testutil

import (
	"time"

	"github.com/colincmac/openai-plugins-serverless/core"
)

// MessageBuilder provides a fluent helper for constructing chat messages in
// tests. Example:
//
//	msg := NewMessageBuilder("chat-1").User("alice").Content("hi").At(t0).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	msg *core.ChatMessage
}

// NewMessageBuilder creates a builder for a user message in the given chat.
func NewMessageBuilder(chatID string) *MessageBuilder {
	return &MessageBuilder{msg: core.NewChatMessage("user-1", "user", chatID, "", core.MessageTypeMessage)}
}

// ID overrides the auto-generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.msg.ID = id; return b }

// User sets both the user id and display name (chainable).
func (b *MessageBuilder) User(name string) *MessageBuilder {
	b.msg.UserID = name
	b.msg.UserName = name
	return b
}

// Content sets the message content (chainable).
func (b *MessageBuilder) Content(content string) *MessageBuilder {
	b.msg.Content = content
	return b
}

// Bot marks the message as bot-authored (chainable).
func (b *MessageBuilder) Bot() *MessageBuilder {
	b.msg.UserID = "bot"
	b.msg.UserName = "bot"
	b.msg.AuthorRole = core.AuthorRoleBot
	return b
}

// Type sets the message type (chainable).
func (b *MessageBuilder) Type(t core.MessageType) *MessageBuilder { b.msg.Type = t; return b }

// At pins the message timestamp, which tests use to control history order
// (chainable).
func (b *MessageBuilder) At(ts time.Time) *MessageBuilder { b.msg.Timestamp = ts; return b }

// Build returns the constructed message.
func (b *MessageBuilder) Build() *core.ChatMessage { return b.msg }

// NewSession creates a chat session with a fixed id for deterministic tests.
func NewSession(id, userID string) *core.ChatSession {
	s := core.NewChatSession(userID, "test chat")
	s.ID = id
	return s
}

package core

import (
	"fmt"
	"time"
)

// AuthorRole identifies who authored a chat message.
type AuthorRole int

const (
	// AuthorRoleUser is a message written by the end user.
	AuthorRoleUser AuthorRole = iota
	// AuthorRoleBot is a message generated by the bot.
	AuthorRoleBot
	// AuthorRoleParticipant is a message written by another human participant.
	AuthorRoleParticipant
)

// MessageType categorizes the payload carried by a chat message.
type MessageType int

const (
	// MessageTypeMessage is a plain conversational message.
	MessageTypeMessage MessageType = iota
	// MessageTypePlan is a serialized proposed plan awaiting approval.
	MessageTypePlan
	// MessageTypeDocument is an imported document notification.
	MessageTypeDocument
)

// ParseMessageType maps the wire representation of a message type to its
// enum value. Unrecognized input defaults to MessageTypeMessage so callers
// with older clients keep working.
func ParseMessageType(s string) MessageType {
	switch s {
	case "1", "Plan", "plan":
		return MessageTypePlan
	case "2", "Document", "document":
		return MessageTypeDocument
	default:
		return MessageTypeMessage
	}
}

// ChatMessage is a single turn within a chat session. Messages are immutable
// once stored, except for Content which is rewritten when a proposed plan
// transitions to its executed result (keyed by message id).
type ChatMessage struct {
	ID         string      `json:"id"`
	ChatID     string      `json:"chatId"`
	UserID     string      `json:"userId"`
	UserName   string      `json:"userName"`
	Content    string      `json:"content"`
	Prompt     string      `json:"prompt"`
	AuthorRole AuthorRole  `json:"authorRole"`
	Type       MessageType `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewChatMessage creates a user-authored message bound to a chat session.
func NewChatMessage(userID, userName, chatID, content string, msgType MessageType) *ChatMessage {
	return &ChatMessage{
		ID:         NewID(),
		ChatID:     chatID,
		UserID:     userID,
		UserName:   userName,
		Content:    content,
		AuthorRole: AuthorRoleUser,
		Type:       msgType,
		Timestamp:  time.Now().UTC(),
	}
}

// NewBotMessage creates a bot response message carrying both the response
// text and the prompt used to generate it.
func NewBotMessage(chatID, response, prompt string) *ChatMessage {
	return &ChatMessage{
		ID:         NewID(),
		ChatID:     chatID,
		UserID:     "bot",
		UserName:   "bot",
		Content:    response,
		Prompt:     prompt,
		AuthorRole: AuthorRoleBot,
		Type:       MessageTypeMessage,
		Timestamp:  time.Now().UTC(),
	}
}

// ToFormattedString renders the message as a single prompt-ready line in the
// form "[<timestamp>] <sender>: <content>".
func (m *ChatMessage) ToFormattedString() string {
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("2 Jan 2006 15:04"), m.UserName, m.Content)
}

// ChatSession is a persistent conversation container owned by one user.
// Created on first interaction and read-mostly thereafter.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedOn time.Time `json:"createdOn"`
}

// NewChatSession creates a chat session for the given user.
func NewChatSession(userID, title string) *ChatSession {
	return &ChatSession{
		ID:        NewID(),
		UserID:    userID,
		Title:     title,
		CreatedOn: time.Now().UTC(),
	}
}

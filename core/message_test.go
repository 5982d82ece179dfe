package core

import (
	"strings"
	"testing"
	"time"
)

func TestChatMessage_ToFormattedString(t *testing.T) {
	msg := NewChatMessage("u1", "alice", "chat-1", "hello there", MessageTypeMessage)
	msg.Timestamp = time.Date(2023, 4, 2, 10, 5, 0, 0, time.UTC)

	got := msg.ToFormattedString()
	want := "[2 Apr 2023 10:05] alice: hello there"
	if got != want {
		t.Fatalf("formatted = %q, want %q", got, want)
	}
}

func TestNewBotMessage(t *testing.T) {
	msg := NewBotMessage("chat-1", "hi", "rendered prompt")
	if msg.AuthorRole != AuthorRoleBot || msg.UserName != "bot" {
		t.Fatalf("unexpected author: %v %q", msg.AuthorRole, msg.UserName)
	}
	if msg.Prompt != "rendered prompt" {
		t.Fatalf("prompt not carried: %q", msg.Prompt)
	}
	if msg.ID == "" || msg.Timestamp.IsZero() {
		t.Fatal("id and timestamp must be set")
	}
	if !strings.Contains(msg.ToFormattedString(), "bot: hi") {
		t.Fatalf("unexpected formatting: %q", msg.ToFormattedString())
	}
}

func TestParseMessageType(t *testing.T) {
	cases := map[string]MessageType{
		"":         MessageTypeMessage,
		"0":        MessageTypeMessage,
		"1":        MessageTypePlan,
		"Plan":     MessageTypePlan,
		"2":        MessageTypeDocument,
		"document": MessageTypeDocument,
		"garbage":  MessageTypeMessage,
	}
	for in, want := range cases {
		if got := ParseMessageType(in); got != want {
			t.Fatalf("ParseMessageType(%q) = %v, want %v", in, got, want)
		}
	}
}

// Package chat implements the chat-response orchestration engine: token
// budget allocation, intent and audience extraction, semantic and document
// memory retrieval, the external-information plan protocol, chat history
// assembly, and the orchestrator that sequences them into a single response.
package chat

import "unicode/utf8"

// TokenCount estimates the number of completion tokens a text consumes.
// The estimate is deterministic and intentionally conservative (about four
// characters per token for English text), which keeps budget math stable
// without shipping a full tokenizer.
func TokenCount(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

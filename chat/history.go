package chat

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/logging"
)

// planLinePattern pulls the timestamp and embedded user intent out of a
// formatted line carrying a serialized proposed plan.
var planLinePattern = regexp.MustCompile(`(\[.*?\]).*User intent: ([^"\\]*)`)

// HistoryAssembler fills leftover token budget with the most recent raw
// conversation turns. Messages are visited newest first and prepended, so
// the final text reads in ascending time order.
type HistoryAssembler struct {
	messages core.MessageStore
	logger   logging.Logger
}

// NewHistoryAssembler constructs a HistoryAssembler over a message store.
func NewHistoryAssembler(messages core.MessageStore, logger logging.Logger) *HistoryAssembler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &HistoryAssembler{messages: messages, logger: logger}
}

// Extract renders as much recent chat history as fits in tokenLimit. A
// message whose formatted line would overrun the remaining budget stops
// assembly; lines are never split.
func (h *HistoryAssembler) Extract(ctx context.Context, chatID string, tokenLimit int) (string, error) {
	messages, err := h.messages.FindByChatID(ctx, chatID)
	if err != nil {
		return "", err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})

	remaining := tokenLimit
	var history string
	for _, msg := range messages {
		line := msg.ToFormattedString()

		// A serialized plan is not meaningful response context; shorten it
		// to the embedded intent to save budget.
		if strings.Contains(line, `"proposedPlan"`) {
			if m := planLinePattern.FindStringSubmatch(line); m != nil {
				line = strings.TrimSpace(m[1]) + " Bot proposed plan to fulfill user intent: " + strings.TrimSpace(m[2])
			} else {
				line = "Bot proposed plan"
			}
		}

		cost := TokenCount(line)
		if remaining-cost < 0 {
			break
		}
		history = line + "\n" + history
		remaining -= cost
	}

	return "Chat history:\n" + strings.TrimSpace(history), nil
}

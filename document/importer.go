// Package document imports user-shared documents into the document memory
// collections queried by the chat pipeline. Content is chunked by token
// budget so retrieval can spend snippets piecemeal.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/colincmac/openai-plugins-serverless/chat"
	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/logging"
)

// Scope selects which collection an import targets.
type Scope int

const (
	// ScopeChat imports into the owning chat's document collection.
	ScopeChat Scope = iota
	// ScopeGlobal imports into the collection shared by all chats.
	ScopeGlobal
)

// Options configure an Importer.
type Options struct {
	// ChunkTokenLimit caps the token size of a stored snippet.
	ChunkTokenLimit int
	// ContentSizeLimit caps accepted document content, in bytes.
	ContentSizeLimit int
	// Collection naming, matching the retrieval side.
	ChatCollectionPrefix string
	GlobalCollectionName string
	// Logger receives import diagnostics.
	Logger logging.Logger
}

// ImportRequest describes one document to import.
type ImportRequest struct {
	Name    string
	Content string
	Scope   Scope
	// ChatID and UserName are required for chat-scoped imports.
	ChatID   string
	UserID   string
	UserName string
}

// ImportResult reports where the document's chunks were stored.
type ImportResult struct {
	Collection string
	Keys       []string
}

// Importer chunks documents and stores them into document memory. Chat
// scoped imports also record an upload notice in the chat history so later
// turns know the document exists.
type Importer struct {
	memory   core.MemoryStore
	sessions core.SessionStore
	messages core.MessageStore
	opts     Options
}

// NewImporter constructs an Importer.
func NewImporter(memory core.MemoryStore, sessions core.SessionStore, messages core.MessageStore, optFns ...func(o *Options)) *Importer {
	opts := Options{
		ChunkTokenLimit:      100,
		ContentSizeLimit:     4 << 20,
		ChatCollectionPrefix: "chat-documents-",
		GlobalCollectionName: "global-documents",
		Logger:               logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Importer{memory: memory, sessions: sessions, messages: messages, opts: opts}
}

// Import validates, chunks and stores one document.
func (i *Importer) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, core.NewValidationError("document name is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, core.NewValidationError("document %s is empty", req.Name)
	}
	if len(req.Content) > i.opts.ContentSizeLimit {
		return nil, core.NewValidationError("document %s exceeds the size limit", req.Name)
	}

	collection := i.opts.GlobalCollectionName
	if req.Scope == ScopeChat {
		if _, ok, err := i.sessions.TryFindByID(ctx, req.ChatID); err != nil {
			return nil, err
		} else if !ok {
			return nil, core.NewValidationError("chat session does not exist")
		}
		collection = i.opts.ChatCollectionPrefix + req.ChatID
	}

	result := &ImportResult{Collection: collection}
	for _, chunk := range SplitChunks(req.Content, i.opts.ChunkTokenLimit) {
		key := core.NewID()
		if err := i.memory.Store(ctx, collection, key, chunk, req.Name); err != nil {
			return nil, &core.MemoryStoreError{Collection: collection, Err: err}
		}
		result.Keys = append(result.Keys, key)
	}
	i.opts.Logger.Info("document imported", "name", req.Name, "collection", collection, "chunks", len(result.Keys))

	if req.Scope == ScopeChat {
		notice := core.NewChatMessage(req.UserID, req.UserName, req.ChatID,
			fmt.Sprintf("Uploaded document: %s", req.Name), core.MessageTypeDocument)
		if err := i.messages.Create(ctx, notice); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SplitChunks breaks content into snippets of at most maxTokens tokens.
// Paragraph boundaries are preferred; an oversized paragraph is split on
// word boundaries. Snippets are trimmed and never empty.
func SplitChunks(content string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = 100
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if chat.TokenCount(current.String())+chat.TokenCount(paragraph) > maxTokens {
			flush()
		}
		if chat.TokenCount(paragraph) > maxTokens {
			for _, word := range strings.Fields(paragraph) {
				if chat.TokenCount(current.String())+chat.TokenCount(word) > maxTokens {
					flush()
				}
				if current.Len() > 0 {
					current.WriteByte(' ')
				}
				current.WriteString(word)
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()
	return chunks
}

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/model"
)

// AudienceExtractor produces the list of distinct participants who have
// spoken in the chat. Only participants who have spoken are included; the
// bot is excluded.
type AudienceExtractor struct {
	backend model.CompletionBackend
	history *HistoryAssembler
	opts    *Options
	alloc   *BudgetAllocator
	logger  logging.Logger
}

// NewAudienceExtractor constructs an AudienceExtractor.
func NewAudienceExtractor(backend model.CompletionBackend, history *HistoryAssembler, opts *Options, logger logging.Logger) *AudienceExtractor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &AudienceExtractor{
		backend: backend,
		history: history,
		opts:    opts,
		alloc:   NewBudgetAllocator(opts),
		logger:  logger,
	}
}

// Extract renders the audience-extraction prompt over a bounded slice of
// chat history and invokes the backend. On failure the stage context is
// marked failed and an empty string is returned.
func (e *AudienceExtractor) Extract(ctx context.Context, vars *core.ContextVariables) string {
	historyBudget := e.alloc.AudienceHistoryBudget()
	history, err := e.history.Extract(ctx, vars.ChatID, historyBudget)
	if err != nil {
		vars.Fail(err.Error())
		return ""
	}

	prompt := strings.Join([]string{
		e.opts.SystemAudience,
		history,
		e.opts.SystemAudienceContinuation,
	}, "\n")

	start := time.Now()
	result, err := e.backend.Complete(ctx, prompt, e.opts.intentSampling())
	if err != nil {
		e.logger.Error("audience extraction failed", "error", err, "duration", time.Since(start))
		vars.Fail(err.Error())
		return ""
	}

	return "List of participants: " + strings.TrimSpace(result)
}

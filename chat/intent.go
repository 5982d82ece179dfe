package chat

import (
	"context"
	"strings"
	"time"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/model"

	"github.com/colincmac/openai-plugins-serverless/internal/util"
)

// IntentExtractor produces a short natural-language summary of the user's
// intent from recent chat history.
type IntentExtractor struct {
	backend model.CompletionBackend
	history *HistoryAssembler
	opts    *Options
	alloc   *BudgetAllocator
	logger  logging.Logger
}

// NewIntentExtractor constructs an IntentExtractor.
func NewIntentExtractor(backend model.CompletionBackend, history *HistoryAssembler, opts *Options, logger logging.Logger) *IntentExtractor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &IntentExtractor{
		backend: backend,
		history: history,
		opts:    opts,
		alloc:   NewBudgetAllocator(opts),
		logger:  logger,
	}
}

// Extract renders the intent-extraction prompt over a bounded slice of chat
// history and invokes the backend with deterministic low-temperature
// settings. On failure the stage context is marked failed and an empty
// string is returned; the caller must short-circuit the pipeline.
func (e *IntentExtractor) Extract(ctx context.Context, vars *core.ContextVariables) string {
	historyBudget := e.alloc.IntentHistoryBudget()
	history, err := e.history.Extract(ctx, vars.ChatID, historyBudget)
	if err != nil {
		vars.Fail(err.Error())
		return ""
	}

	prompt, err := util.RenderTemplate(
		strings.Join([]string{
			e.opts.SystemDescription,
			e.opts.SystemIntent,
			history,
			e.opts.SystemIntentContinuation,
		}, "\n"),
		map[string]any{
			"KnowledgeCutoff": e.opts.KnowledgeCutoffDate,
			"Audience":        vars.Audience,
		},
	)
	if err != nil {
		vars.Fail(err.Error())
		return ""
	}

	start := time.Now()
	result, err := e.backend.Complete(ctx, prompt, e.opts.intentSampling())
	if err != nil {
		e.logger.Error("intent extraction failed", "error", err, "duration", time.Since(start))
		vars.Fail(err.Error())
		return ""
	}

	return "User intent: " + strings.TrimSpace(result)
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/internal/util"
	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/model"
	"github.com/colincmac/openai-plugins-serverless/planner"
)

// planCancelledResponse is returned verbatim when the user declines a
// proposed plan; no completion call is made.
const planCancelledResponse = "I am sorry the plan did not meet your goals."

// Ask is one chat turn request. ProposedPlanJSON and MessageID round-trip a
// previously proposed plan back through the orchestrator once the client has
// resolved it.
type Ask struct {
	Message          string
	UserID           string
	UserName         string
	ChatID           string
	MessageType      string
	ProposedPlanJSON string
	MessageID        string
	// PlanUserIntent carries the intent embedded in a resolved plan so the
	// extraction stage can be skipped on the approval turn.
	PlanUserIntent    string
	UserCancelledPlan bool
}

// Result is the outcome of one chat turn. MessageID and MessageType identify
// the stored bot message so a client can resolve a proposed plan against it.
type Result struct {
	Response    string
	Prompt      string
	MessageID   string
	MessageType core.MessageType
}

// OrchestratorOptions configure an Orchestrator.
type OrchestratorOptions struct {
	// Options override the prompt and budget configuration.
	Options *Options
	// Logger receives pipeline diagnostics.
	Logger logging.Logger
	// Shapes narrows JSON plan results per skill.
	Shapes *ResultShapes
	// DistillWorkers and DistillCapacity size the background memory
	// distillation queue.
	DistillWorkers  int
	DistillCapacity int
}

// Orchestrator sequences the full response pipeline for a chat turn:
// persist the message, extract audience and intent, split the token budget,
// gather external information and memories, assemble history, render the
// prompt and invoke the completion backend, then distill the exchange into
// semantic memory in the background.
type Orchestrator struct {
	backend   model.CompletionBackend
	messages  core.MessageStore
	sessions  core.SessionStore
	opts      *Options
	alloc     *BudgetAllocator
	audience  *AudienceExtractor
	intent    *IntentExtractor
	history   *HistoryAssembler
	memories  *SemanticMemoryRetriever
	documents *DocumentMemoryRetriever
	external  *ExternalInformationProvider
	extractor *MemoryExtractor
	distill   *DistillQueue
	logger    logging.Logger
}

// NewOrchestrator wires the pipeline over the given backend, stores, memory
// and planner.
func NewOrchestrator(backend model.CompletionBackend, messages core.MessageStore, sessions core.SessionStore, memory core.MemoryStore, p planner.Planner, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	oo := OrchestratorOptions{
		Options:         DefaultOptions(),
		Logger:          logging.NoOpLogger{},
		DistillWorkers:  1,
		DistillCapacity: 16,
	}
	for _, fn := range optFns {
		fn(&oo)
	}
	opts := oo.Options
	logger := oo.Logger

	history := NewHistoryAssembler(messages, logger)
	return &Orchestrator{
		backend:   backend,
		messages:  messages,
		sessions:  sessions,
		opts:      opts,
		alloc:     NewBudgetAllocator(opts),
		audience:  NewAudienceExtractor(backend, history, opts, logger),
		intent:    NewIntentExtractor(backend, history, opts, logger),
		history:   history,
		memories:  NewSemanticMemoryRetriever(memory, opts),
		documents: NewDocumentMemoryRetriever(memory, opts),
		external:  NewExternalInformationProvider(p, oo.Shapes, logger),
		extractor: NewMemoryExtractor(backend, memory, opts, logger),
		distill:   NewDistillQueue(oo.DistillWorkers, oo.DistillCapacity, logger),
		logger:    logger,
	}
}

// Close drains the background distillation queue.
func (o *Orchestrator) Close() { o.distill.Close() }

// Respond handles one chat turn end to end. The incoming message is
// persisted before any stage runs; any stage failure aborts the remaining
// stages and surfaces the first failure as the returned error.
func (o *Orchestrator) Respond(ctx context.Context, ask *Ask) (*Result, error) {
	if _, ok, err := o.sessions.TryFindByID(ctx, ask.ChatID); err != nil {
		return nil, err
	} else if !ok {
		return nil, core.NewValidationError("chat session does not exist")
	}

	userMessage := core.NewChatMessage(ask.UserID, ask.UserName, ask.ChatID, ask.Message, core.ParseMessageType(ask.MessageType))
	if err := o.messages.Create(ctx, userMessage); err != nil {
		return nil, err
	}

	// A returned plan means the client resolved it; fold the resolution back
	// into the stored bot message before responding.
	if ask.ProposedPlanJSON != "" && ask.MessageID != "" {
		if err := o.updateResponse(ctx, ask.ProposedPlanJSON, ask.MessageID); err != nil {
			return nil, err
		}
	}

	vars := &core.ContextVariables{
		ChatID:            ask.ChatID,
		UserID:            ask.UserID,
		UserName:          ask.UserName,
		PlanUserIntent:    ask.PlanUserIntent,
		TokenLimit:        o.opts.CompletionTokenLimit,
		KnowledgeCutoff:   o.opts.KnowledgeCutoffDate,
		ProposedPlanJSON:  ask.ProposedPlanJSON,
		MessageID:         ask.MessageID,
		UserCancelledPlan: ask.UserCancelledPlan,
	}

	var response string
	var proposed bool
	if ask.UserCancelledPlan {
		response = planCancelledResponse
	} else {
		response, proposed = o.getResponse(ctx, vars)
	}
	if vars.Failed() {
		return nil, errors.New(vars.FailureDescription())
	}

	botMessage := core.NewBotMessage(ask.ChatID, response, vars.Prompt)
	if proposed {
		botMessage.Type = core.MessageTypePlan
	}
	if err := o.messages.Create(ctx, botMessage); err != nil {
		return nil, err
	}

	if !proposed && !ask.UserCancelledPlan {
		o.enqueueDistillation(ctx, ask.ChatID, userMessage.ToFormattedString(), botMessage.ToFormattedString())
	}

	return &Result{
		Response:    response,
		Prompt:      vars.Prompt,
		MessageID:   botMessage.ID,
		MessageType: botMessage.Type,
	}, nil
}

// getResponse runs the retrieval pipeline and the final completion call. A
// true second return means the response is a serialized plan proposal rather
// than chat text.
func (o *Orchestrator) getResponse(ctx context.Context, vars *core.ContextVariables) (string, bool) {
	audienceVars := vars.Clone()
	audience := o.audience.Extract(ctx, audienceVars)
	vars.PropagateFailure(audienceVars)
	if vars.Failed() {
		return "", false
	}
	vars.Audience = audience

	userIntent := o.getUserIntent(ctx, vars)
	if vars.Failed() {
		return "", false
	}
	vars.UserIntent = userIntent

	remaining := o.alloc.ChatContextBudget(userIntent)

	externalBudget := o.alloc.ExternalInformationBudget(remaining)
	planResult, proposal, err := o.external.Acquire(ctx, vars, userIntent, externalBudget)
	if err != nil {
		vars.Fail(err.Error())
		return "", false
	}

	// A drafted plan goes back to the user for approval before anything runs.
	if proposal != nil {
		data, err := json.Marshal(proposal)
		if err != nil {
			vars.Fail(err.Error())
			return "", false
		}
		return string(data), true
	}

	chatMemories, err := o.memories.Query(ctx, userIntent, vars.ChatID, o.alloc.MemoriesBudget(remaining))
	if err != nil {
		vars.Fail(err.Error())
		return "", false
	}

	documentMemories, err := o.documents.Query(ctx, userIntent, vars.ChatID, o.alloc.DocumentsBudget(remaining))
	if err != nil {
		vars.Fail(err.Error())
		return "", false
	}

	var components []string
	for _, c := range []string{chatMemories, documentMemories, planResult} {
		if c != "" {
			components = append(components, c)
		}
	}
	chatContext := strings.Join(components, "\n\n")
	o.logStage(vars, "context", TokenCount(chatContext), remaining-TokenCount(chatContext))

	// Whatever budget the weighted stages left over funds raw history.
	if historyBudget := remaining - TokenCount(chatContext); historyBudget > 0 {
		history, err := o.history.Extract(ctx, vars.ChatID, historyBudget)
		if err != nil {
			vars.Fail(err.Error())
			return "", false
		}
		chatContext = strings.TrimPrefix(chatContext+"\n"+history, "\n")
	}

	prompt, err := o.renderResponsePrompt(audience, userIntent, chatContext)
	if err != nil {
		vars.Fail(err.Error())
		return "", false
	}
	vars.Prompt = prompt

	start := time.Now()
	response, err := o.backend.Complete(ctx, prompt, o.opts.responseSampling())
	o.logCompletion(vars, "response", time.Since(start), err)
	if err != nil {
		vars.Fail(err.Error())
		return "", false
	}
	return response, false
}

// logCompletion records completion-backend latency. A ChatLogger gets the
// chat-scoped structured record; any other Logger gets plain fields.
func (o *Orchestrator) logCompletion(vars *core.ContextVariables, stage string, dur time.Duration, err error) {
	if cl, ok := o.logger.(*logging.ChatLogger); ok {
		cl.WithChat(vars.ChatID, vars.UserID).LogCompletionCall(stage, dur, err)
		return
	}
	if err != nil {
		o.logger.Error("completion call failed", "stage", stage, "error", err.Error(), "duration", dur)
		return
	}
	o.logger.Debug("completion call finished", "stage", stage, "duration", dur)
}

// logStage records the token consumption of an assembled pipeline stage.
func (o *Orchestrator) logStage(vars *core.ContextVariables, stage string, tokensUsed, tokensRemaining int) {
	if cl, ok := o.logger.(*logging.ChatLogger); ok {
		cl.WithChat(vars.ChatID, vars.UserID).LogStageExecution(stage, tokensUsed, tokensRemaining)
		return
	}
	o.logger.Debug("stage executed", "stage", stage, "tokens_used", tokensUsed, "tokens_remaining", tokensRemaining)
}

// getUserIntent extracts the user intent, or reuses the intent carried by a
// resolved plan so the approval turn skips the extraction call.
func (o *Orchestrator) getUserIntent(ctx context.Context, vars *core.ContextVariables) string {
	if vars.PlanUserIntent != "" {
		return "User intent: " + vars.PlanUserIntent
	}

	intentVars := vars.Clone()
	// The intent continuation line speaks as the current user.
	intentVars.Audience = vars.UserName
	userIntent := o.intent.Extract(ctx, intentVars)
	vars.PropagateFailure(intentVars)
	return userIntent
}

// renderResponsePrompt renders the knowledge-cutoff-bearing fragments first,
// then composes the final prompt from the stage outputs.
func (o *Orchestrator) renderResponsePrompt(audience, userIntent, chatContext string) (string, error) {
	cutoff := map[string]any{"KnowledgeCutoff": o.opts.KnowledgeCutoffDate}
	systemDescription, err := util.RenderTemplate(o.opts.SystemDescription, cutoff)
	if err != nil {
		return "", err
	}
	chatContinuation, err := util.RenderTemplate(o.opts.SystemChatContinuation, cutoff)
	if err != nil {
		return "", err
	}
	return util.RenderTemplate(o.opts.ResponsePromptTemplate, map[string]any{
		"SystemDescription":      systemDescription,
		"SystemResponse":         o.opts.SystemResponse,
		"Audience":               audience,
		"UserIntent":             userIntent,
		"ChatContext":            chatContext,
		"SystemChatContinuation": chatContinuation,
	})
}

// updateResponse rewrites a previously stored bot message with the resolved
// plan payload.
func (o *Orchestrator) updateResponse(ctx context.Context, updatedResponse, messageID string) error {
	msg, err := o.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	msg.Content = updatedResponse
	return o.messages.Upsert(ctx, msg)
}

// enqueueDistillation schedules background memory extraction for the
// finished exchange. The task is detached from the request's cancellation;
// a full queue drops the task rather than delaying the response.
func (o *Orchestrator) enqueueDistillation(ctx context.Context, chatID, userLine, botLine string) {
	exchange := userLine + "\n" + botLine
	detached := context.WithoutCancel(ctx)
	o.distill.Enqueue(func() {
		if err := o.extractor.Extract(detached, chatID, exchange); err != nil {
			o.logger.Warn("background memory distillation failed", "chat_id", chatID, "error", err.Error())
		}
	})
}

// ExtractChatHistory exposes bounded history assembly for callers outside
// the response pipeline.
func (o *Orchestrator) ExtractChatHistory(ctx context.Context, chatID string, tokenLimit int) (string, error) {
	return o.history.Extract(ctx, chatID, tokenLimit)
}

// QueryMemories exposes semantic memory retrieval for callers outside the
// response pipeline.
func (o *Orchestrator) QueryMemories(ctx context.Context, query, chatID string, tokenLimit int) (string, error) {
	return o.memories.Query(ctx, query, chatID, tokenLimit)
}

// QueryDocuments exposes document snippet retrieval for callers outside the
// response pipeline.
func (o *Orchestrator) QueryDocuments(ctx context.Context, query, chatID string, tokenLimit int) (string, error) {
	return o.documents.Query(ctx, query, chatID, tokenLimit)
}

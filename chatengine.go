// Package chatengine provides a high-level façade over the chat response
// pipeline (token budgeting, intent extraction, memory retrieval, plan
// proposal and approval) enabling rapid construction of chat copilots. Most
// applications interact with this package by:
//  1. Creating an Engine via New() (optionally overriding default in-memory stores)
//  2. Registering skills on the planner registry for external information
//  3. Creating chat sessions and calling Respond per user turn
//
// The façade delegates orchestration to chat.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply the SQLite store and a
// structured logger.
package chatengine

import (
	"context"

	"github.com/colincmac/openai-plugins-serverless/chat"
	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/memory"
	"github.com/colincmac/openai-plugins-serverless/model"
	"github.com/colincmac/openai-plugins-serverless/planner"
	"github.com/colincmac/openai-plugins-serverless/store"
)

// Options configures the Engine instance.
type Options struct {
	// Stores (default to in-memory implementations if not provided)
	MessageStore core.MessageStore
	SessionStore core.SessionStore
	MemoryStore  core.MemoryStore

	// Planner drafts external-information plans. Defaults to a model-backed
	// planner over an empty registry, which disables plan proposals until
	// skills are registered.
	Planner planner.Planner

	// ChatOptions override the prompt and budget configuration.
	ChatOptions *chat.Options

	// Shapes narrows JSON plan results per skill.
	Shapes *chat.ResultShapes

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Engine is the high-level façade aggregating the orchestrator and its
// stores.
type Engine struct {
	opts         Options
	orchestrator *chat.Orchestrator
	sessions     core.SessionStore
	registry     *planner.Registry
}

// New creates an Engine over the given completion backend. Any unset store
// is initialized with an in-memory implementation.
func New(backend model.CompletionBackend, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MessageStore: store.NewInMemoryMessageStore(),
		SessionStore: store.NewInMemorySessionStore(),
		MemoryStore:  memory.NewVolatileStore(),
		ChatOptions:  chat.DefaultOptions(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var registry *planner.Registry
	if opts.Planner == nil {
		registry = planner.NewRegistry()
		opts.Planner = planner.NewModelPlanner(backend, registry, func(o *planner.ModelPlannerOptions) {
			o.Logger = opts.Logger
		})
	} else {
		registry = opts.Planner.Registry()
	}

	orchestrator := chat.NewOrchestrator(backend, opts.MessageStore, opts.SessionStore, opts.MemoryStore, opts.Planner,
		func(o *chat.OrchestratorOptions) {
			o.Options = opts.ChatOptions
			o.Logger = opts.Logger
			o.Shapes = opts.Shapes
		})

	return &Engine{opts: opts, orchestrator: orchestrator, sessions: opts.SessionStore, registry: registry}
}

// RegisterSkill adds a skill function to the planner registry.
func (e *Engine) RegisterSkill(fn planner.SkillFunction) error { return e.registry.Register(fn) }

// NewChat creates and persists a chat session for the given user.
func (e *Engine) NewChat(ctx context.Context, userID, title string) (*core.ChatSession, error) {
	session := core.NewChatSession(userID, title)
	if err := e.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Respond handles one chat turn.
func (e *Engine) Respond(ctx context.Context, ask *chat.Ask) (*chat.Result, error) {
	return e.orchestrator.Respond(ctx, ask)
}

// Close drains background work. Call once when shutting down.
func (e *Engine) Close() { e.orchestrator.Close() }

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/internal/util"
	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/model"
)

// MemoryExtractor distills a finished chat exchange into the configured
// semantic memory collections. It runs after the response has been returned,
// so its failures are logged and reported but never surface to the user.
type MemoryExtractor struct {
	backend model.CompletionBackend
	memory  core.MemoryStore
	opts    *Options
	logger  logging.Logger
}

// NewMemoryExtractor constructs a MemoryExtractor.
func NewMemoryExtractor(backend model.CompletionBackend, memory core.MemoryStore, opts *Options, logger logging.Logger) *MemoryExtractor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &MemoryExtractor{backend: backend, memory: memory, opts: opts, logger: logger}
}

// Extract runs one distillation pass per configured memory name. Items the
// model proposes are deduplicated against what the collection already holds
// before being stored. Errors from individual memory kinds are collected;
// one kind failing does not stop the others.
func (e *MemoryExtractor) Extract(ctx context.Context, chatID, exchange string) error {
	var errs []error
	for _, memoryName := range e.opts.MemoryNames {
		if err := e.extractOne(ctx, chatID, memoryName, exchange); err != nil {
			e.logger.Warn("memory extraction failed", "memory", memoryName, "error", err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *MemoryExtractor) extractOne(ctx context.Context, chatID, memoryName, exchange string) error {
	prompt, err := util.RenderTemplate(e.opts.MemoryExtractionPrompt, map[string]any{
		"MemoryName":        memoryName,
		"MemoryDescription": memoryDescriptions[memoryName],
		"Exchange":          exchange,
	})
	if err != nil {
		return err
	}

	result, err := e.backend.Complete(ctx, prompt, model.SamplingConfig{
		MaxTokens:   e.opts.ResponseTokenLimit,
		Temperature: e.opts.IntentTemperature,
		TopP:        e.opts.IntentTopP,
	})
	if err != nil {
		return err
	}

	collection := MemoryCollectionName(chatID, memoryName)
	var storeErr error
	gjson.Get(result, "items").ForEach(func(_, item gjson.Result) bool {
		label := strings.TrimSpace(item.Get("label").String())
		details := strings.TrimSpace(item.Get("details").String())
		if label == "" || details == "" {
			return true
		}
		text := label + ": " + details

		// Skip items the collection already remembers.
		existing, err := e.memory.Search(ctx, collection, text, 1, e.opts.SemanticMemoryMinRelevance)
		if err != nil {
			storeErr = &core.MemoryStoreError{Collection: collection, Err: err}
			return false
		}
		if len(existing) > 0 {
			return true
		}

		if err := e.memory.Store(ctx, collection, core.NewID(), text, memoryName); err != nil {
			storeErr = &core.MemoryStoreError{Collection: collection, Err: err}
			return false
		}
		return true
	})
	return storeErr
}

// DistillQueue runs memory distillation off the response path on a small,
// bounded worker pool. Enqueue never blocks: when the queue is full the task
// is dropped with a warning, trading completeness for response latency.
type DistillQueue struct {
	tasks  chan func()
	wg     sync.WaitGroup
	logger logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewDistillQueue starts a queue with the given worker count and capacity.
// Non-positive values fall back to one worker and a capacity of 16.
func NewDistillQueue(workers, capacity int, logger logging.Logger) *DistillQueue {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 16
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	q := &DistillQueue{tasks: make(chan func(), capacity), logger: logger}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer q.wg.Done()
			for task := range q.tasks {
				task()
			}
		}()
	}
	return q
}

// Enqueue schedules a task and reports whether it was accepted. Tasks are
// rejected once the queue is closed or full.
func (q *DistillQueue) Enqueue(task func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.tasks <- task:
		return true
	default:
		q.logger.Warn("distill queue full, dropping task")
		return false
	}
}

// Close stops intake and waits for already queued tasks to finish.
func (q *DistillQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	q.wg.Wait()
}

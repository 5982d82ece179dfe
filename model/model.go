// Package model abstracts the language-completion backend invoked by the
// chat pipeline. Adapters for concrete providers live in subpackages
// (model/openai, model/anthropic); MockBackend supports deterministic tests.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SamplingConfig carries the sampling parameters for a single completion
// call. Each pipeline stage uses its own configuration (low temperature for
// extraction, response-tuned settings for the final answer).
type SamplingConfig struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	StopSequences    []string
}

// CompletionBackend generates a completion for a fully rendered prompt.
// Implementations must be safe for concurrent use and observe ctx
// cancellation at their I/O boundary.
type CompletionBackend interface {
	Complete(ctx context.Context, prompt string, cfg SamplingConfig) (string, error)
}

// BackendError wraps a failure reported by the completion backend, keeping
// any structured detail the provider returned so callers can surface it for
// prompt debugging.
type BackendError struct {
	Message string
	Detail  string
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("completion backend error: %s (%s)", e.Message, e.Detail)
	}
	return fmt.Sprintf("completion backend error: %s", e.Message)
}

// MockBackend is an in-memory CompletionBackend for tests and examples.
// Responses are matched by prompt substring in registration order; a
// scripted error takes precedence over any canned response.
type MockBackend struct {
	mu        sync.Mutex
	fragments []string
	responses map[string]string
	fallback  string
	err       error
	calls     []string
}

// NewMockBackend constructs a MockBackend with a generic fallback response.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		responses: make(map[string]string),
		fallback:  "mock completion",
	}
}

// AddResponse registers a canned completion returned when the prompt
// contains fragment.
func (m *MockBackend) AddResponse(fragment, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.responses[fragment]; !ok {
		m.fragments = append(m.fragments, fragment)
	}
	m.responses[fragment] = response
}

// SetFallback overrides the response used when no fragment matches.
func (m *MockBackend) SetFallback(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// SetError scripts a failure for every subsequent Complete call.
func (m *MockBackend) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the prompts received so far.
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete implements CompletionBackend.
func (m *MockBackend) Complete(ctx context.Context, prompt string, _ SamplingConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, prompt)
	if m.err != nil {
		return "", m.err
	}
	for _, frag := range m.fragments {
		if strings.Contains(prompt, frag) {
			return m.responses[frag], nil
		}
	}
	return m.fallback, nil
}

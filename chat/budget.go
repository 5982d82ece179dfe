package chat

import "strings"

// BudgetAllocator computes the token budget remaining at each pipeline
// stage. All methods are pure; a misconfigured budget (overhead exceeding
// the completion limit) yields a negative value that consumers must treat as
// "nothing fits" rather than an error.
type BudgetAllocator struct {
	opts *Options
}

// NewBudgetAllocator constructs an allocator over the given options.
func NewBudgetAllocator(opts *Options) *BudgetAllocator {
	return &BudgetAllocator{opts: opts}
}

// overhead counts the fixed token cost of the given prompt fragments.
func overhead(fragments ...string) int {
	return TokenCount(strings.Join(fragments, "\n"))
}

// IntentHistoryBudget is the history budget available while extracting user
// intent: the completion limit minus the response reserve and the intent
// prompt overhead.
func (a *BudgetAllocator) IntentHistoryBudget() int {
	return a.opts.CompletionTokenLimit -
		a.opts.ResponseTokenLimit -
		overhead(a.opts.SystemDescription, a.opts.SystemIntent, a.opts.SystemIntentContinuation)
}

// AudienceHistoryBudget is the history budget available while extracting the
// audience list.
func (a *BudgetAllocator) AudienceHistoryBudget() int {
	return a.opts.CompletionTokenLimit -
		a.opts.ResponseTokenLimit -
		overhead(a.opts.SystemAudience, a.opts.SystemAudienceContinuation)
}

// ChatContextBudget is the budget remaining for retrieval stages once the
// response reserve, the extracted user intent and the response prompt
// overhead are accounted for.
func (a *BudgetAllocator) ChatContextBudget(userIntent string) int {
	return a.opts.CompletionTokenLimit -
		TokenCount(userIntent) -
		a.opts.ResponseTokenLimit -
		overhead(a.opts.SystemDescription, a.opts.SystemResponse, a.opts.SystemChatContinuation)
}

// ExternalInformationBudget splits the remaining budget for the plan result.
func (a *BudgetAllocator) ExternalInformationBudget(remaining int) int {
	return int(float64(remaining) * a.opts.ExternalInformationContextWeight)
}

// MemoriesBudget splits the remaining budget for semantic memories.
func (a *BudgetAllocator) MemoriesBudget(remaining int) int {
	return int(float64(remaining) * a.opts.MemoriesResponseContextWeight)
}

// DocumentsBudget splits the remaining budget for document snippets.
func (a *BudgetAllocator) DocumentsBudget(remaining int) int {
	return int(float64(remaining) * a.opts.DocumentContextWeight)
}

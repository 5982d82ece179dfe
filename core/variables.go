package core

// ContextVariables is the typed state bag threaded through every
// orchestration stage. The key set is fixed: stages only read fields they
// declare and never drop fields set by an earlier stage. A stage that cannot
// produce its output calls Fail, which downstream callers must check before
// proceeding (fail-fast pipeline, see Orchestrator).
//
// ContextVariables is not safe for concurrent mutation; each stage receives
// its own Clone when isolation is needed.
type ContextVariables struct {
	ChatID            string
	UserID            string
	UserName          string
	UserIntent        string
	PlanUserIntent    string
	Audience          string
	TokenLimit        int
	KnowledgeCutoff   string
	ProposedPlanJSON  string
	Prompt            string
	MessageID         string
	MessageType       MessageType
	UserCancelledPlan bool

	failed      bool
	failureDesc string
}

// Clone returns an independent copy with a clean failure state.
func (v *ContextVariables) Clone() *ContextVariables {
	c := *v
	c.failed = false
	c.failureDesc = ""
	return &c
}

// Fail marks the context as failed with a description of the first failure.
// Subsequent calls keep the original description.
func (v *ContextVariables) Fail(desc string) {
	if v.failed {
		return
	}
	v.failed = true
	v.failureDesc = desc
}

// Failed reports whether any stage marked this context as failed.
func (v *ContextVariables) Failed() bool { return v.failed }

// FailureDescription returns the description of the first recorded failure.
func (v *ContextVariables) FailureDescription() string { return v.failureDesc }

// PropagateFailure copies a failure recorded on a stage-local clone back to
// the parent context.
func (v *ContextVariables) PropagateFailure(from *ContextVariables) {
	if from.Failed() {
		v.Fail(from.FailureDescription())
	}
}

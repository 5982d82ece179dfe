// Package planner implements the plan proposal and execution subsystem: a
// typed skill registry with schema-validated dispatch, the plan data model
// with its approval lifecycle, and a model-backed planner that drafts plans
// from a natural-language goal.
package planner

import (
	"encoding/json"
	"fmt"
)

// PlanState tracks the approval lifecycle of a proposed plan.
type PlanState int

const (
	// PlanStateNoOp is a freshly proposed plan awaiting a client decision.
	PlanStateNoOp PlanState = iota
	// PlanStateApproved marks a plan the client approved for execution.
	PlanStateApproved
	// PlanStateRejected marks a plan the client declined.
	PlanStateRejected
)

// PlanType indicates whether a plan is a single action or a sequence.
type PlanType int

const (
	// PlanTypeAction is a single-step plan.
	PlanTypeAction PlanType = iota
	// PlanTypeSequential is a multi-step plan executed in order.
	PlanTypeSequential
)

// PlanStep names one skill invocation with its declared parameters.
type PlanStep struct {
	Skill       string            `json:"skill"`
	Function    string            `json:"function"`
	Description string            `json:"description,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// Plan is an ordered sequence of skill invocations proposed to satisfy an
// external-information need. Parameters at the plan level seed every step.
type Plan struct {
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Steps       []PlanStep        `json:"steps"`
}

// NewPlan creates an empty plan described by the goal it addresses.
func NewPlan(description string) *Plan {
	return &Plan{Description: description, Parameters: map[string]string{}}
}

// ProposedPlan wraps a plan together with its approval state for the
// client round-trip. The serialized form is what travels to the caller and
// comes back on approval.
type ProposedPlan struct {
	Plan  Plan      `json:"proposedPlan"`
	Type  PlanType  `json:"type"`
	State PlanState `json:"state"`
}

// NewProposedPlan wraps a plan in the NoOp (awaiting approval) state.
func NewProposedPlan(plan *Plan, planType PlanType) *ProposedPlan {
	return &ProposedPlan{Plan: *plan, Type: planType, State: PlanStateNoOp}
}

// ParseProposedPlan deserializes a client-supplied proposed plan.
func ParseProposedPlan(data string) (*ProposedPlan, error) {
	var pp ProposedPlan
	if err := json.Unmarshal([]byte(data), &pp); err != nil {
		return nil, fmt.Errorf("parse proposed plan: %w", err)
	}
	return &pp, nil
}

// MarshalProposedPlan serializes a proposed plan for the client round-trip.
func MarshalProposedPlan(pp *ProposedPlan) (string, error) {
	data, err := json.Marshal(pp)
	if err != nil {
		return "", fmt.Errorf("marshal proposed plan: %w", err)
	}
	return string(data), nil
}

// PlanError reports a failure while creating or executing a plan.
type PlanError struct {
	Op  string // "create" or "execute"
	Err error
}

func (e *PlanError) Error() string { return fmt.Sprintf("plan %s failed: %v", e.Op, e.Err) }

func (e *PlanError) Unwrap() error { return e.Err }

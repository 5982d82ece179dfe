package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colincmac/openai-plugins-serverless/model"
)

func plannerRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(SkillFunction{
		Skill: "TimeSkill", Name: "Now", Description: "Current time.",
		Fn: func(context.Context, map[string]string) (string, error) { return "noon", nil },
	}))
	require.NoError(t, r.Register(SkillFunction{
		Skill: "MailSkill", Name: "Send", Description: "Send mail.",
		Fn: func(context.Context, map[string]string) (string, error) { return "sent", nil },
	}))
	return r
}

func TestModelPlanner_EmptyRegistrySkipsBackend(t *testing.T) {
	backend := model.NewMockBackend()
	p := NewModelPlanner(backend, NewRegistry())

	plan, err := p.CreatePlan(context.Background(), "do something")
	require.NoError(t, err)
	assert.Empty(t, plan.Steps)
	assert.Empty(t, backend.Calls(), "no completion without functions to plan over")
}

func TestModelPlanner_ParsesSteps(t *testing.T) {
	backend := model.NewMockBackend()
	backend.SetFallback(`[{"skill":"TimeSkill","function":"Now","parameters":{"tz":"UTC"}},{"skill":"MailSkill","function":"Send"}]`)

	p := NewModelPlanner(backend, plannerRegistry(t), func(o *ModelPlannerOptions) {
		o.Type = PlanTypeSequential
	})
	plan, err := p.CreatePlan(context.Background(), "mail the time")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "TimeSkill", plan.Steps[0].Skill)
	assert.Equal(t, "UTC", plan.Steps[0].Parameters["tz"])
	assert.Equal(t, "mail the time", plan.Description)

	// The manifest is part of the planning prompt.
	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "TimeSkill.Now: Current time.")
	assert.Contains(t, calls[0], "mail the time")
}

func TestModelPlanner_DropsUnknownSteps(t *testing.T) {
	backend := model.NewMockBackend()
	backend.SetFallback(`[{"skill":"GhostSkill","function":"Vanish"},{"skill":"TimeSkill","function":"Now"}]`)

	p := NewModelPlanner(backend, plannerRegistry(t), func(o *ModelPlannerOptions) {
		o.Type = PlanTypeSequential
	})
	plan, err := p.CreatePlan(context.Background(), "goal")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "TimeSkill", plan.Steps[0].Skill)
}

func TestModelPlanner_ActionTypeKeepsSingleStep(t *testing.T) {
	backend := model.NewMockBackend()
	backend.SetFallback(`[{"skill":"TimeSkill","function":"Now"},{"skill":"MailSkill","function":"Send"}]`)

	p := NewModelPlanner(backend, plannerRegistry(t))
	plan, err := p.CreatePlan(context.Background(), "goal")
	require.NoError(t, err)
	assert.Len(t, plan.Steps, 1)
}

func TestModelPlanner_ParsesFencedOutput(t *testing.T) {
	backend := model.NewMockBackend()
	backend.SetFallback("Here is the plan:\n```json\n[{\"skill\":\"TimeSkill\",\"function\":\"Now\"}]\n```")

	p := NewModelPlanner(backend, plannerRegistry(t))
	plan, err := p.CreatePlan(context.Background(), "goal")
	require.NoError(t, err)
	assert.Len(t, plan.Steps, 1)
}

func TestModelPlanner_BackendErrorWrapped(t *testing.T) {
	backend := model.NewMockBackend()
	backend.SetError(&model.BackendError{Message: "quota"})

	p := NewModelPlanner(backend, plannerRegistry(t))
	_, err := p.CreatePlan(context.Background(), "goal")

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, "create", planErr.Op)
}

func TestParsePlanSteps_SkipsMalformedEntries(t *testing.T) {
	steps := parsePlanSteps(`[{"skill":"A","function":"B"},{"function":"missing skill"},"not an object"]`)
	require.Len(t, steps, 1)
	assert.Equal(t, "A", steps[0].Skill)
	assert.NotNil(t, steps[0].Parameters)
}

func TestParsePlanSteps_NoArray(t *testing.T) {
	assert.Nil(t, parsePlanSteps("I could not produce a plan."))
}

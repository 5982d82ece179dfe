package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/model"
)

// Planner drafts a plan for a natural-language goal. Implementations expose
// their function registry so callers can sanitize and execute plans against
// the same set of skills that produced them.
type Planner interface {
	// CreatePlan returns a plan for the goal. An empty registry yields an
	// empty plan, never an error.
	CreatePlan(ctx context.Context, goal string) (*Plan, error)

	// Registry returns the planner's function registry.
	Registry() *Registry

	// Type reports whether created plans are single-action or sequential.
	Type() PlanType
}

const planPromptTemplate = `You are a planner. Given the available functions and a goal, produce a JSON
array of steps that accomplish the goal. Each step is an object with keys
"skill", "function" and "parameters" (a string-to-string object). Use only
the functions listed. Respond with the JSON array only, no prose.

Available functions:
%s
Goal:
%s`

// ModelPlanner drafts plans by prompting a completion backend with the
// registry manifest and parsing the returned step list. Steps referencing
// unknown functions are dropped rather than failing the whole plan.
type ModelPlanner struct {
	backend  model.CompletionBackend
	registry *Registry
	planType PlanType
	sampling model.SamplingConfig
	logger   logging.Logger
}

// ModelPlannerOptions configure a ModelPlanner.
type ModelPlannerOptions struct {
	// Type selects single-action or sequential plans.
	Type PlanType
	// Sampling overrides the low-temperature defaults used for planning.
	Sampling model.SamplingConfig
	// Logger receives planning diagnostics.
	Logger logging.Logger
}

// NewModelPlanner constructs a ModelPlanner over the given backend and registry.
func NewModelPlanner(backend model.CompletionBackend, registry *Registry, optFns ...func(o *ModelPlannerOptions)) *ModelPlanner {
	opts := ModelPlannerOptions{
		Type: PlanTypeAction,
		Sampling: model.SamplingConfig{
			MaxTokens:   1024,
			Temperature: 0,
			TopP:        1,
		},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelPlanner{
		backend:  backend,
		registry: registry,
		planType: opts.Type,
		sampling: opts.Sampling,
		logger:   opts.Logger,
	}
}

// Registry implements Planner.
func (p *ModelPlanner) Registry() *Registry { return p.registry }

// Type implements Planner.
func (p *ModelPlanner) Type() PlanType { return p.planType }

// CreatePlan implements Planner.
func (p *ModelPlanner) CreatePlan(ctx context.Context, goal string) (*Plan, error) {
	plan := NewPlan(goal)
	if p.registry.IsEmpty() {
		return plan, nil
	}

	prompt := fmt.Sprintf(planPromptTemplate, p.registry.Manifest(), goal)
	raw, err := p.backend.Complete(ctx, prompt, p.sampling)
	if err != nil {
		return nil, &PlanError{Op: "create", Err: err}
	}

	steps := parsePlanSteps(raw)
	for _, step := range steps {
		if _, ok := p.registry.Resolve(step.Skill, step.Function); !ok {
			p.logger.Warn("planner: dropping step with unknown function", "skill", step.Skill, "function", step.Function)
			continue
		}
		plan.Steps = append(plan.Steps, step)
	}
	if p.planType == PlanTypeAction && len(plan.Steps) > 1 {
		plan.Steps = plan.Steps[:1]
	}
	return plan, nil
}

// parsePlanSteps extracts the first JSON array from the model output and
// decodes it as plan steps. Malformed entries are skipped.
func parsePlanSteps(raw string) []PlanStep {
	arr := gjson.Parse(raw)
	if !arr.IsArray() {
		// Models occasionally wrap the array in prose or code fences;
		// scan for the first balanced bracket pair.
		if start := strings.IndexByte(raw, '['); start >= 0 {
			depth := 0
			for i := start; i < len(raw); i++ {
				switch raw[i] {
				case '[':
					depth++
				case ']':
					depth--
					if depth == 0 {
						arr = gjson.Parse(raw[start : i+1])
						i = len(raw)
					}
				}
			}
		}
	}
	if !arr.IsArray() {
		return nil
	}

	var steps []PlanStep
	arr.ForEach(func(_, value gjson.Result) bool {
		var step PlanStep
		if err := json.Unmarshal([]byte(value.Raw), &step); err != nil {
			return true
		}
		if step.Skill == "" || step.Function == "" {
			return true
		}
		if step.Parameters == nil {
			step.Parameters = map[string]string{}
		}
		steps = append(steps, step)
		return true
	})
	return steps
}

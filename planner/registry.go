package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// InputParameter is the implicit parameter that threads each step's output
// into the next step. Callers never override it.
const InputParameter = "INPUT"

// ParameterSpec declares one parameter accepted by a skill function.
type ParameterSpec struct {
	Name        string
	Description string
	Required    bool
}

// SkillFunction is a typed callable registered under a skill name. Dispatch
// happens by explicit lookup, never by reflection; arguments are validated
// against the declared parameter specs before invocation.
type SkillFunction struct {
	Skill       string
	Name        string
	Description string
	Parameters  []ParameterSpec
	Fn          func(ctx context.Context, args map[string]string) (string, error)
}

// Validate checks args against the declared parameter specs. Unknown
// arguments are allowed; missing required parameters are not. The implicit
// INPUT parameter is always accepted.
func (f SkillFunction) Validate(args map[string]string) error {
	for _, spec := range f.Parameters {
		if !spec.Required {
			continue
		}
		if v, ok := args[spec.Name]; !ok || v == "" {
			return fmt.Errorf("%s.%s: required parameter %q is missing", f.Skill, f.Name, spec.Name)
		}
	}
	return nil
}

func registryKey(skill, name string) string {
	return strings.ToLower(skill) + "." + strings.ToLower(name)
}

// Registry maps skill identifiers to typed callables. It is safe for
// concurrent use; registration order is preserved for manifest rendering.
type Registry struct {
	mu    sync.RWMutex
	fns   map[string]SkillFunction
	order []string
}

// NewRegistry constructs an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]SkillFunction)}
}

// Register adds a skill function. Registering an existing skill/function
// pair replaces the previous entry.
func (r *Registry) Register(fn SkillFunction) error {
	if fn.Skill == "" || fn.Name == "" {
		return fmt.Errorf("skill and function name are required")
	}
	if fn.Fn == nil {
		return fmt.Errorf("%s.%s: callable is required", fn.Skill, fn.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registryKey(fn.Skill, fn.Name)
	if _, exists := r.fns[key]; !exists {
		r.order = append(r.order, key)
	}
	r.fns[key] = fn
	return nil
}

// Resolve looks up a skill function by skill and function name.
func (r *Registry) Resolve(skill, name string) (SkillFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[registryKey(skill, name)]
	return fn, ok
}

// IsEmpty reports whether no functions are registered.
func (r *Registry) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns) == 0
}

// Manifest renders the registered functions as a prompt-ready listing for
// the planning model.
func (r *Registry) Manifest() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sb strings.Builder
	for _, key := range r.order {
		fn := r.fns[key]
		fmt.Fprintf(&sb, "%s.%s: %s\n", fn.Skill, fn.Name, fn.Description)
		params := append([]ParameterSpec(nil), fn.Parameters...)
		sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
		for _, p := range params {
			required := ""
			if p.Required {
				required = " (required)"
			}
			fmt.Fprintf(&sb, "  - %s%s: %s\n", p.Name, required, p.Description)
		}
	}
	return sb.String()
}

// ExecutePlan runs the plan's steps in order against a fresh execution
// scope seeded from the plan-level parameters. Each step's output becomes
// the INPUT of the next; the final step's output is the plan result.
func (r *Registry) ExecutePlan(ctx context.Context, plan *Plan) (string, error) {
	scope := make(map[string]string, len(plan.Parameters))
	for k, v := range plan.Parameters {
		scope[k] = v
	}

	input := scope[InputParameter]
	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fn, ok := r.Resolve(step.Skill, step.Function)
		if !ok {
			return "", &PlanError{Op: "execute", Err: fmt.Errorf("unknown function %s.%s", step.Skill, step.Function)}
		}

		args := make(map[string]string, len(scope)+len(step.Parameters)+1)
		for k, v := range scope {
			args[k] = v
		}
		for k, v := range step.Parameters {
			args[k] = v
		}
		args[InputParameter] = input

		if err := fn.Validate(args); err != nil {
			return "", &PlanError{Op: "execute", Err: err}
		}
		out, err := fn.Fn(ctx, args)
		if err != nil {
			return "", &PlanError{Op: "execute", Err: err}
		}
		input = out
	}
	return input, nil
}

package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/colincmac/openai-plugins-serverless/core"
	"github.com/colincmac/openai-plugins-serverless/logging"
	"github.com/colincmac/openai-plugins-serverless/planner"
)

const (
	// promptPreamble delimits externally sourced content in the final prompt.
	promptPreamble = "[RELATED START]"
	// promptPostamble closes the externally sourced block.
	promptPostamble = "[RELATED END]"
)

// ExternalInformationProvider gathers additional context for a chat turn by
// drafting plans over the registered skills. A drafted plan is never executed
// directly: it is handed back as a proposal, and only re-enters through the
// context variables once the client marks it approved.
type ExternalInformationProvider struct {
	planner planner.Planner
	shapes  *ResultShapes
	logger  logging.Logger
}

// NewExternalInformationProvider constructs a provider over a planner.
func NewExternalInformationProvider(p planner.Planner, shapes *ResultShapes, logger logging.Logger) *ExternalInformationProvider {
	if shapes == nil {
		shapes = NewResultShapes()
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ExternalInformationProvider{planner: p, shapes: shapes, logger: logger}
}

// Acquire returns either external information gathered by executing an
// approved plan, or a fresh plan proposal for client approval, never both.
// With no skills registered it returns empty results and no error. The
// provider executes whatever approved plan it is handed; callers own the
// run-at-most-once invariant by clearing the approval state after use.
func (p *ExternalInformationProvider) Acquire(ctx context.Context, vars *core.ContextVariables, userIntent string, tokenLimit int) (string, *planner.ProposedPlan, error) {
	if p.planner.Registry().IsEmpty() {
		return "", nil, nil
	}

	if vars.ProposedPlanJSON != "" {
		pp, err := planner.ParseProposedPlan(vars.ProposedPlanJSON)
		if err != nil {
			return "", nil, err
		}
		if pp.State == planner.PlanStateApproved {
			text, err := p.executePlan(ctx, &pp.Plan, tokenLimit)
			return text, nil, err
		}
	}

	proposal, err := p.proposePlan(ctx, vars, userIntent)
	return "", proposal, err
}

// proposePlan drafts a plan for the user intent, merges caller-supplied
// variables into its parameters and drops steps the registry cannot resolve.
func (p *ExternalInformationProvider) proposePlan(ctx context.Context, vars *core.ContextVariables, userIntent string) (*planner.ProposedPlan, error) {
	goal := fmt.Sprintf("Given the following context, accomplish the user intent.\nContext:\n%s\n%s", contextLines(vars), userIntent)
	plan, err := p.planner.CreatePlan(ctx, goal)
	if err != nil {
		return nil, err
	}
	if len(plan.Steps) == 0 {
		return nil, nil
	}

	callerValues := callerParameterValues(vars)
	mergeIntoParameters(callerValues, plan.Parameters)

	sanitized := planner.NewPlan(plan.Description)
	for k, v := range plan.Parameters {
		sanitized.Parameters[k] = v
	}
	for _, step := range plan.Steps {
		if _, ok := p.planner.Registry().Resolve(step.Skill, step.Function); !ok {
			p.logger.Warn("dropping plan step with unavailable function", "skill", step.Skill, "function", step.Function)
			continue
		}
		mergeIntoParameters(callerValues, step.Parameters)
		sanitized.Steps = append(sanitized.Steps, step)
	}
	if len(sanitized.Steps) == 0 {
		return nil, nil
	}
	return planner.NewProposedPlan(sanitized, p.planner.Type()), nil
}

// executePlan runs an approved plan against the planner's own registry and
// interprets the final result, framed by the preamble/postamble markers.
func (p *ExternalInformationProvider) executePlan(ctx context.Context, plan *planner.Plan, tokenLimit int) (string, error) {
	result, err := p.planner.Registry().ExecutePlan(ctx, plan)
	if err != nil {
		return "", err
	}

	budget := tokenLimit - TokenCount(promptPreamble) - TokenCount(promptPostamble)

	// Skill results that pass through an HTTP surface arrive as an envelope
	// with contentType and content keys; unwrap the JSON body when present.
	planResult := result
	if jsonContent, ok := extractJSONContent(result); ok {
		planResult = p.optimizeJSONResult(jsonContent, budget, plan)
	}

	return fmt.Sprintf("%s\n%s\n%s\n", promptPreamble, strings.TrimSpace(planResult), promptPostamble), nil
}

// extractJSONContent unwraps a {contentType, content} envelope when the
// declared content type is JSON.
func extractJSONContent(result string) (string, bool) {
	if !gjson.Valid(result) {
		return "", false
	}
	contentType := gjson.Get(result, "contentType").String()
	if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		return "", false
	}
	content := gjson.Get(result, "content").String()
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// optimizeJSONResult narrows and truncates a JSON payload to fit the token
// budget: narrow by the last invoked skill's registered shape, then drop
// trailing object properties or array elements until the rest fits. A
// single-keyed wrapper object contributes its key as a result descriptor.
func (p *ExternalInformationProvider) optimizeJSONResult(jsonContent string, budget int, plan *planner.Plan) string {
	jsonContent = strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(jsonContent))

	lastSkill := ""
	if len(plan.Steps) > 0 {
		lastSkill = plan.Steps[len(plan.Steps)-1].Skill
	}
	if shape, ok := p.shapes.Lookup(lastSkill); ok {
		narrowed, err := shape(jsonContent)
		if err != nil {
			p.logger.Warn("result shape failed, using full payload", "skill", lastSkill, "error", err.Error())
		} else if narrowed != "" {
			jsonContent = narrowed
		}
	}

	if TokenCount(jsonContent) < budget {
		return jsonContent
	}

	root := gjson.Parse(jsonContent)

	// A single-keyed object usually wraps the answer; keep the key as a
	// descriptor and truncate its value instead.
	resultsDescriptor := ""
	if root.IsObject() {
		var keys []string
		root.ForEach(func(key, _ gjson.Result) bool {
			keys = append(keys, key.String())
			return len(keys) <= 1
		})
		if len(keys) == 1 {
			budget -= TokenCount(keys[0])
			resultsDescriptor = keys[0] + ": "
			root = root.Get(escapeJSONPath(keys[0]))
		}
	}

	truncated, kept := truncateJSONValue(root, budget)
	if kept == 0 {
		return fmt.Sprintf("JSON response for %s is too large to be consumed at time.", lastSkill)
	}
	return resultsDescriptor + truncated
}

// truncateJSONValue greedily keeps leading object properties or array
// elements while the budget allows, returning the reassembled JSON and the
// number of items kept.
func truncateJSONValue(value gjson.Result, budget int) (string, int) {
	var sb strings.Builder
	kept := 0

	switch {
	case value.IsObject():
		sb.WriteByte('{')
		value.ForEach(func(key, v gjson.Result) bool {
			item := fmt.Sprintf("%q: %s", key.String(), v.Raw)
			cost := TokenCount(item)
			if budget-cost <= 0 {
				return false
			}
			if kept > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(item)
			budget -= cost
			kept++
			return true
		})
		sb.WriteByte('}')
	case value.IsArray():
		sb.WriteByte('[')
		value.ForEach(func(_, v gjson.Result) bool {
			cost := TokenCount(v.Raw)
			if budget-cost <= 0 {
				return false
			}
			if kept > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(v.Raw)
			budget -= cost
			kept++
			return true
		})
		sb.WriteByte(']')
	default:
		// Scalars are kept whole or not at all.
		if budget-TokenCount(value.Raw) > 0 {
			return value.Raw, 1
		}
		return "", 0
	}

	return sb.String(), kept
}

// contextLines renders the caller's variables for the planning goal.
func contextLines(vars *core.ContextVariables) string {
	var lines []string
	for k, v := range callerParameterValues(vars) {
		lines = append(lines, k+": "+v)
	}
	// Deterministic goal text keeps planner prompts reproducible.
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// callerParameterValues exposes the context variables a plan parameter may
// bind to, keyed by the parameter names planners emit.
func callerParameterValues(vars *core.ContextVariables) map[string]string {
	values := map[string]string{
		"chatId":   vars.ChatID,
		"userId":   vars.UserID,
		"userName": vars.UserName,
		"audience": vars.Audience,
	}
	for k, v := range values {
		if v == "" {
			delete(values, k)
		}
	}
	return values
}

// mergeIntoParameters overwrites declared parameters with caller-supplied
// values. Caller values win; the implicit INPUT parameter is never touched.
func mergeIntoParameters(callerValues map[string]string, params map[string]string) {
	for key := range params {
		if strings.EqualFold(key, planner.InputParameter) {
			continue
		}
		if v, ok := callerValues[key]; ok {
			params[key] = v
		}
	}
}

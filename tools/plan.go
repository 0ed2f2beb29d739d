package tools

import (
	"context"
	"sync"

	"github.com/forgecode/agentkit/agentloop"
)

// PlanTool holds the session's current high-level plan as free text.
// Per spec §3, this state is ephemeral to the session.
type PlanTool struct {
	agentloop.BaseTool
	mu   sync.Mutex
	text string
}

// NewPlanTool constructs an empty plan holder.
func NewPlanTool() *PlanTool {
	return &PlanTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindMemory}}
}

func (t *PlanTool) Name() string { return "plan" }
func (t *PlanTool) Description() string {
	return "Record the current plan for completing the task, replacing any previous plan."
}

func (t *PlanTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"plan": map[string]interface{}{"type": "string", "description": "The plan, as free-form text."},
		},
		"required": []string{"plan"},
	}
}

func (t *PlanTool) Validate(args map[string]interface{}) []string {
	if _, ok := agentloop.GetStringArg(args, "plan"); !ok {
		return []string{"plan is required"}
	}
	return nil
}

func (t *PlanTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	plan, _ := agentloop.GetStringArg(inv.Arguments, "plan")

	t.mu.Lock()
	t.text = plan
	t.mu.Unlock()

	return agentloop.ToolResult{Success: true, Output: "Plan recorded."}
}

// Current returns the last recorded plan text, for splicing into status
// output or a front-end's `/stats` rendering.
func (t *PlanTool) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

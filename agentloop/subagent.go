package agentloop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// SubagentSpawnFunc builds a fresh, independent Session for a sub-agent
// run: its own LLM client, registry restricted to allowedTools (when
// set), and its own context manager. The composition root supplies this
// so agentloop itself never constructs a Session's dependencies twice.
type SubagentSpawnFunc func(ctx context.Context, goal string, allowedTools []string, maxTurns int) (*Session, error)

// SubagentTool is a sub-agent exposed as an ordinary Tool, per 4.12: a
// bounded nested Session run invoked as if it were a tool call.
type SubagentTool struct {
	BaseTool
	Name_          string
	Description_   string
	GoalPrompt     string
	AllowedTools   []string
	MaxTurns       int
	TimeoutSeconds int
	Spawn          SubagentSpawnFunc
}

// NewSubagentTool constructs a SubagentTool with the spec defaults
// (maxTurns=20, timeoutSeconds=600) applied where unset.
func NewSubagentTool(name, description, goalPrompt string, allowedTools []string, maxTurns, timeoutSeconds int, spawn SubagentSpawnFunc) *SubagentTool {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 600
	}
	return &SubagentTool{
		BaseTool:       BaseTool{ToolKindValue: ToolKindMemory},
		Name_:          name,
		Description_:   description,
		GoalPrompt:     goalPrompt,
		AllowedTools:   allowedTools,
		MaxTurns:       maxTurns,
		TimeoutSeconds: timeoutSeconds,
		Spawn:          spawn,
	}
}

func (t *SubagentTool) Name() string        { return t.Name_ }
func (t *SubagentTool) Description() string { return t.Description_ }

func (t *SubagentTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"goal": map[string]interface{}{
				"type":        "string",
				"description": "The goal to delegate to the sub-agent.",
			},
		},
		"required": []string{"goal"},
	}
}

func (t *SubagentTool) Validate(args map[string]interface{}) []string {
	if goal, ok := GetStringArg(args, "goal"); !ok || goal == "" {
		return []string{"goal is required"}
	}
	return nil
}

func (t *SubagentTool) GetConfirmation(inv ToolInvocation) *ToolConfirmation {
	return &ToolConfirmation{
		ToolName:    t.Name_,
		Arguments:   inv.Arguments,
		Description: fmt.Sprintf("Delegate to sub-agent %q", t.Name_),
	}
}

// Execute runs the sub-agent to completion or deadline, per 4.12: a
// fresh Session is created, its event stream is drained to collect the
// names of every tool it invokes and the last TEXT_COMPLETE as the
// final response, and the sub-agent's Close always runs regardless of
// how the run ended.
func (t *SubagentTool) Execute(ctx context.Context, inv ToolInvocation) ToolResult {
	goal, _ := GetStringArg(inv.Arguments, "goal")
	if t.GoalPrompt != "" {
		goal = t.GoalPrompt + "\n\n" + goal
	}

	sub, err := t.Spawn(ctx, goal, t.AllowedTools, t.MaxTurns)
	if err != nil {
		return failureResult("Failed to start sub-agent %q: %s", t.Name_, err.Error())
	}

	cctx, cancel := context.WithTimeout(ctx, time.Duration(t.TimeoutSeconds)*time.Second)
	defer cancel()

	var mu sync.Mutex
	var toolNames []string
	var finalResponse string
	eventsDone := make(chan struct{})
	go func() {
		for ev := range sub.Events() {
			switch ev.Kind {
			case EventToolCallStart:
				if name, ok := ev.Data["name"].(string); ok {
					mu.Lock()
					toolNames = append(toolNames, name)
					mu.Unlock()
				}
			case EventAssistantTextEnd:
				if content, ok := ev.Data["content"].(string); ok {
					mu.Lock()
					finalResponse = content
					mu.Unlock()
				}
			}
		}
		close(eventsDone)
	}()

	runDone := make(chan error, 1)
	go func() {
		resp, runErr := sub.Run(cctx, goal)
		if resp != "" {
			mu.Lock()
			finalResponse = resp
			mu.Unlock()
		}
		runDone <- runErr
	}()

	termination := "goal"
	var runErr error
	select {
	case runErr = <-runDone:
		if runErr != nil {
			termination = "error"
		}
	case <-cctx.Done():
		termination = "timeout"
	}

	_ = sub.Close(context.Background())
	<-eventsDone

	mu.Lock()
	names := append([]string(nil), toolNames...)
	response := finalResponse
	mu.Unlock()

	success := termination == "goal"
	output := fmt.Sprintf(
		"Sub-agent %q finished (%s).\nTools invoked: %s\n\nFinal response:\n%s",
		t.Name_, termination, strings.Join(names, ", "), response,
	)
	if !success && runErr != nil {
		output += fmt.Sprintf("\n\nError: %s", runErr.Error())
	}
	return ToolResult{Success: success, Output: output}
}

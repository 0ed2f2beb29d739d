package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgecode/agentkit/agentloop"
)

const (
	defaultShellTimeoutMs = 30000
	maxShellTimeoutMs     = 600000
)

// ShellTool executes a shell command through the bound ExecutionEnvironment,
// capped to maxTimeoutMs.
type ShellTool struct {
	agentloop.BaseTool
	Env              agentloop.ExecutionEnvironment
	DefaultTimeoutMs int
	MaxTimeoutMs     int
}

// NewShellTool constructs a shell tool bound to env, using the spec's
// 30s default / 600s max timeouts when the caller passes zero.
func NewShellTool(env agentloop.ExecutionEnvironment, defaultTimeoutMs, maxTimeoutMs int) *ShellTool {
	if defaultTimeoutMs <= 0 {
		defaultTimeoutMs = defaultShellTimeoutMs
	}
	if maxTimeoutMs <= 0 {
		maxTimeoutMs = maxShellTimeoutMs
	}
	return &ShellTool{
		BaseTool:         agentloop.BaseTool{ToolKindValue: agentloop.ToolKindShell},
		Env:              env,
		DefaultTimeoutMs: defaultTimeoutMs,
		MaxTimeoutMs:     maxTimeoutMs,
	}
}

func (t *ShellTool) Name() string        { return "shell" }
func (t *ShellTool) Description() string { return "Execute a shell command. Returns stdout, stderr, and exit code." }

func (t *ShellTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command":     map[string]interface{}{"type": "string", "description": "The command to run."},
			"timeout_ms":  map[string]interface{}{"type": "integer", "description": "Override the default command timeout in milliseconds."},
			"description": map[string]interface{}{"type": "string", "description": "Human-readable description of what this command does."},
		},
		"required": []string{"command"},
	}
}

func (t *ShellTool) Validate(args map[string]interface{}) []string {
	if command, ok := agentloop.GetStringArg(args, "command"); !ok || command == "" {
		return []string{"command is required"}
	}
	return nil
}

func (t *ShellTool) GetConfirmation(inv agentloop.ToolInvocation) *agentloop.ToolConfirmation {
	command, _ := agentloop.GetStringArg(inv.Arguments, "command")
	return &agentloop.ToolConfirmation{
		ToolName:    "shell",
		Arguments:   inv.Arguments,
		Description: fmt.Sprintf("Run: %s", command),
		Command:     command,
	}
}

func (t *ShellTool) Execute(ctx context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	command, _ := agentloop.GetStringArg(inv.Arguments, "command")
	timeoutMs, _ := agentloop.GetIntArg(inv.Arguments, "timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = t.DefaultTimeoutMs
	}
	if timeoutMs > t.MaxTimeoutMs {
		timeoutMs = t.MaxTimeoutMs
	}

	result, err := t.Env.ExecCommand(ctx, command, timeoutMs, inv.WorkingDirectory, nil)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}

	var sb strings.Builder
	sb.WriteString(result.Output())
	if result.TimedOut {
		fmt.Fprintf(&sb, "\n\n[Command timed out after %dms. Partial output is shown above.]", timeoutMs)
	} else if result.ExitCode != 0 {
		fmt.Fprintf(&sb, "\n\n[Exit code: %d]", result.ExitCode)
	}

	exitCode := result.ExitCode
	return agentloop.ToolResult{
		Success:  true,
		Output:   sb.String(),
		ExitCode: &exitCode,
	}
}

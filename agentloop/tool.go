package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ToolKind classifies a tool's resource footprint. It drives the default
// mutating predicate and the approval engine's command/path checks.
type ToolKind string

const (
	ToolKindRead    ToolKind = "read"
	ToolKindWrite   ToolKind = "write"
	ToolKindShell   ToolKind = "shell"
	ToolKindNetwork ToolKind = "network"
	ToolKindMemory  ToolKind = "memory"
	ToolKindMCP     ToolKind = "mcp"
)

// DefaultMutating reports whether tools of this kind are mutating by
// default (write, shell, network, memory).
func (k ToolKind) DefaultMutating() bool {
	switch k {
	case ToolKindWrite, ToolKindShell, ToolKindNetwork, ToolKindMemory:
		return true
	default:
		return false
	}
}

// ToolInvocation is the material a Tool needs to execute: parsed
// arguments plus the working directory the call should run against.
type ToolInvocation struct {
	Arguments        map[string]interface{}
	RawArguments     json.RawMessage
	WorkingDirectory string
}

// FileDiff records a file edit so it can be rendered as a unified diff
// on demand, without forcing every tool to carry a diff library.
type FileDiff struct {
	Path       string
	OldContent string
	NewContent string
	IsNew      bool
	IsDeletion bool
}

// Render produces a minimal unified-diff rendering of the change.
func (d FileDiff) Render() string {
	if d.IsDeletion {
		return fmt.Sprintf("--- a/%s\n+++ /dev/null\n", d.Path)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", d.Path, d.Path)
	oldLines := strings.Split(d.OldContent, "\n")
	newLines := strings.Split(d.NewContent, "\n")
	if d.IsNew {
		oldLines = nil
	}
	for _, l := range oldLines {
		fmt.Fprintf(&sb, "-%s\n", l)
	}
	for _, l := range newLines {
		fmt.Fprintf(&sb, "+%s\n", l)
	}
	return sb.String()
}

// ToolConfirmation is surfaced to the approval engine and, when a
// decision resolves to needs-confirmation, to a front-end callback.
type ToolConfirmation struct {
	ToolName      string
	Arguments     map[string]interface{}
	Description   string
	Diff          *FileDiff
	AffectedPaths []string
	Command       string
	Dangerous     bool
}

// ToolResult is what every tool execution produces, success or failure.
// Failures never propagate as Go errors across the invocation pipeline;
// they are always normalized into a ToolResult.
type ToolResult struct {
	Success   bool
	Output    string
	Error     string
	Metadata  map[string]interface{}
	Truncated bool
	Diff      *FileDiff
	ExitCode  *int
	Blocked   bool
}

// ToModelOutput renders a ToolResult the way it is fed back to the LLM
// as the content of a tool message.
func (r ToolResult) ToModelOutput() string {
	if r.Success {
		return r.Output
	}
	if r.Output != "" {
		return fmt.Sprintf("Error: %s\n\nOutput:\n%s", r.Error, r.Output)
	}
	return fmt.Sprintf("Error: %s", r.Error)
}

func failureResult(format string, args ...interface{}) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Tool is the uniform invocation surface every tool exposes, regardless
// of whether it is built-in, discovered, MCP-sourced, or a sub-agent.
type Tool interface {
	Name() string
	Description() string
	Kind() ToolKind
	Schema() map[string]interface{}
	IsMutating(args map[string]interface{}) bool
	Validate(args map[string]interface{}) []string
	GetConfirmation(inv ToolInvocation) *ToolConfirmation
	Execute(ctx context.Context, inv ToolInvocation) ToolResult
}

// BaseTool provides the default policies of 4.1 (mutating iff kind is
// one of write/shell/network/memory; confirmation is a one-line
// description with no diff for mutating calls, nil otherwise) so
// concrete tools only need to embed it and implement Name, Description,
// Schema and Execute.
type BaseTool struct {
	ToolKindValue ToolKind
}

// Kind returns the tool's resource-footprint classification.
func (b BaseTool) Kind() ToolKind {
	return b.ToolKindValue
}

// IsMutating implements the default kind-based mutating predicate.
func (b BaseTool) IsMutating(map[string]interface{}) bool {
	return b.ToolKindValue.DefaultMutating()
}

// Validate is a no-op default; tools with required parameters override it.
func (b BaseTool) Validate(map[string]interface{}) []string {
	return nil
}

// GetConfirmation returns the default one-line confirmation for mutating
// tools, or nil for read-only ones. Concrete tools that need a richer
// confirmation (a diff, a command string, affected paths) override this.
func (b BaseTool) GetConfirmation(inv ToolInvocation) *ToolConfirmation {
	if !b.ToolKindValue.DefaultMutating() {
		return nil
	}
	return &ToolConfirmation{
		Arguments:   inv.Arguments,
		Description: "Run this tool",
	}
}

// ParseToolArguments unmarshals raw tool-call arguments into a map for
// validation and access.
func ParseToolArguments(raw json.RawMessage) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if len(raw) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

// GetStringArg extracts a string argument from parsed tool arguments.
func GetStringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetIntArg extracts an integer argument from parsed tool arguments.
func GetIntArg(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// GetBoolArg extracts a boolean argument from parsed tool arguments.
func GetBoolArg(args map[string]interface{}, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

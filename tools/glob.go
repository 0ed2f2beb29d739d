package tools

import (
	"context"
	"strings"

	"github.com/forgecode/agentkit/agentloop"
)

// GlobTool finds files by glob pattern through the bound ExecutionEnvironment.
type GlobTool struct {
	agentloop.BaseTool
	Env agentloop.ExecutionEnvironment
}

// NewGlobTool constructs a glob tool bound to env.
func NewGlobTool(env agentloop.ExecutionEnvironment) *GlobTool {
	return &GlobTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindRead}, Env: env}
}

func (t *GlobTool) Name() string { return "glob" }
func (t *GlobTool) Description() string {
	return "Find files matching a glob pattern. Returns matching file paths in lexical order."
}

func (t *GlobTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"pattern": map[string]interface{}{"type": "string", "description": "Glob pattern (e.g. \"*.go\" or \"cmd/*/*.go\"); \"**\" matches a single path segment, not any depth."},
			"path":    map[string]interface{}{"type": "string", "description": "Base directory. Default: working directory."},
		},
		"required": []string{"pattern"},
	}
}

func (t *GlobTool) Validate(args map[string]interface{}) []string {
	if pattern, ok := agentloop.GetStringArg(args, "pattern"); !ok || pattern == "" {
		return []string{"pattern is required"}
	}
	return nil
}

func (t *GlobTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	pattern, _ := agentloop.GetStringArg(inv.Arguments, "pattern")
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	if path == "" {
		path = inv.WorkingDirectory
	}

	matches, err := t.Env.Glob(pattern, path)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	if len(matches) == 0 {
		return agentloop.ToolResult{Success: true, Output: "No files matched the pattern."}
	}
	return agentloop.ToolResult{Success: true, Output: strings.Join(matches, "\n")}
}

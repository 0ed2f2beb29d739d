package tools

import (
	"context"

	"github.com/forgecode/agentkit/agentloop"
)

const defaultGrepMaxResults = 100

// GrepTool searches file contents by regex through the bound
// ExecutionEnvironment.
type GrepTool struct {
	agentloop.BaseTool
	Env agentloop.ExecutionEnvironment
}

// NewGrepTool constructs a grep tool bound to env.
func NewGrepTool(env agentloop.ExecutionEnvironment) *GrepTool {
	return &GrepTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindRead}, Env: env}
}

func (t *GrepTool) Name() string { return "grep" }
func (t *GrepTool) Description() string {
	return "Search file contents using regex patterns. Returns matching lines with file paths and line numbers."
}

func (t *GrepTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"pattern":          map[string]interface{}{"type": "string", "description": "Regex pattern to search for."},
			"path":             map[string]interface{}{"type": "string", "description": "Directory or file to search. Default: working directory."},
			"glob_filter":      map[string]interface{}{"type": "string", "description": "File pattern filter (e.g. \"*.go\")."},
			"case_insensitive": map[string]interface{}{"type": "boolean", "description": "Case insensitive search. Default: false."},
			"max_results":      map[string]interface{}{"type": "integer", "description": "Maximum number of results. Default: 100."},
		},
		"required": []string{"pattern"},
	}
}

func (t *GrepTool) Validate(args map[string]interface{}) []string {
	if pattern, ok := agentloop.GetStringArg(args, "pattern"); !ok || pattern == "" {
		return []string{"pattern is required"}
	}
	return nil
}

func (t *GrepTool) Execute(ctx context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	pattern, _ := agentloop.GetStringArg(inv.Arguments, "pattern")
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	globFilter, _ := agentloop.GetStringArg(inv.Arguments, "glob_filter")
	caseInsensitive, _ := agentloop.GetBoolArg(inv.Arguments, "case_insensitive")
	maxResults, _ := agentloop.GetIntArg(inv.Arguments, "max_results")
	if maxResults <= 0 {
		maxResults = defaultGrepMaxResults
	}
	if path == "" {
		path = inv.WorkingDirectory
	}

	out, err := t.Env.Grep(ctx, pattern, path, agentloop.GrepOptions{
		GlobFilter:      globFilter,
		CaseInsensitive: caseInsensitive,
		MaxResults:      maxResults,
	})
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	return agentloop.ToolResult{Success: true, Output: out}
}

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgecode/agentkit/agentloop"
)

// ReadFileTool reads a file, optionally offset/limited by line number.
type ReadFileTool struct {
	agentloop.BaseTool
	Env agentloop.ExecutionEnvironment
}

// NewReadFileTool constructs a read_file tool bound to env.
func NewReadFileTool(env agentloop.ExecutionEnvironment) *ReadFileTool {
	return &ReadFileTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindRead}, Env: env}
}

func (t *ReadFileTool) Name() string        { return "read_file" }
func (t *ReadFileTool) Description() string { return "Read a file's contents, with optional line offset and limit." }

func (t *ReadFileTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":   map[string]interface{}{"type": "string", "description": "File path, absolute or relative to the working directory."},
			"offset": map[string]interface{}{"type": "integer", "description": "1-based line number to start reading from."},
			"limit":  map[string]interface{}{"type": "integer", "description": "Maximum number of lines to return."},
		},
		"required": []string{"path"},
	}
}

func (t *ReadFileTool) Validate(args map[string]interface{}) []string {
	if path, ok := agentloop.GetStringArg(args, "path"); !ok || path == "" {
		return []string{"path is required"}
	}
	return nil
}

func (t *ReadFileTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	offset, _ := agentloop.GetIntArg(inv.Arguments, "offset")
	limit, _ := agentloop.GetIntArg(inv.Arguments, "limit")

	out, err := t.Env.ReadFile(path, offset, limit)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	return agentloop.ToolResult{Success: true, Output: out}
}

// WriteFileTool creates or overwrites a file wholesale.
type WriteFileTool struct {
	agentloop.BaseTool
	Env agentloop.ExecutionEnvironment
}

// NewWriteFileTool constructs a write_file tool bound to env.
func NewWriteFileTool(env agentloop.ExecutionEnvironment) *WriteFileTool {
	return &WriteFileTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindWrite}, Env: env}
}

func (t *WriteFileTool) Name() string        { return "write_file" }
func (t *WriteFileTool) Description() string { return "Write content to a file, creating or overwriting it." }

func (t *WriteFileTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":    map[string]interface{}{"type": "string", "description": "File path to write."},
			"content": map[string]interface{}{"type": "string", "description": "Full file content."},
		},
		"required": []string{"path", "content"},
	}
}

func (t *WriteFileTool) Validate(args map[string]interface{}) []string {
	var errs []string
	if path, ok := agentloop.GetStringArg(args, "path"); !ok || path == "" {
		errs = append(errs, "path is required")
	}
	if _, ok := agentloop.GetStringArg(args, "content"); !ok {
		errs = append(errs, "content is required")
	}
	return errs
}

func (t *WriteFileTool) GetConfirmation(inv agentloop.ToolInvocation) *agentloop.ToolConfirmation {
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	newContent, _ := agentloop.GetStringArg(inv.Arguments, "content")
	oldContent := ""
	isNew := !t.Env.FileExists(path)
	if !isNew {
		oldContent, _ = t.Env.ReadFile(path, 0, 0)
	}
	return &agentloop.ToolConfirmation{
		ToolName:      "write_file",
		Arguments:     inv.Arguments,
		Description:   fmt.Sprintf("Write %s", path),
		Diff:          &agentloop.FileDiff{Path: path, OldContent: oldContent, NewContent: newContent, IsNew: isNew},
		AffectedPaths: []string{path},
	}
}

func (t *WriteFileTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	content, _ := agentloop.GetStringArg(inv.Arguments, "content")
	isNew := !t.Env.FileExists(path)

	if err := t.Env.WriteFile(path, content); err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	return agentloop.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Wrote %d bytes to %s", len(content), path),
		Diff:    &agentloop.FileDiff{Path: path, NewContent: content, IsNew: isNew},
	}
}

// EditFileTool performs an exact-match old_string/new_string replacement.
type EditFileTool struct {
	agentloop.BaseTool
	Env agentloop.ExecutionEnvironment
}

// NewEditFileTool constructs an edit_file tool bound to env.
func NewEditFileTool(env agentloop.ExecutionEnvironment) *EditFileTool {
	return &EditFileTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindWrite}, Env: env}
}

func (t *EditFileTool) Name() string { return "edit_file" }
func (t *EditFileTool) Description() string {
	return "Replace an exact, unique occurrence of old_string with new_string in a file."
}

func (t *EditFileTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":        map[string]interface{}{"type": "string"},
			"old_string":  map[string]interface{}{"type": "string"},
			"new_string":  map[string]interface{}{"type": "string"},
			"replace_all": map[string]interface{}{"type": "boolean", "description": "Replace every occurrence instead of requiring uniqueness."},
		},
		"required": []string{"path", "old_string", "new_string"},
	}
}

func (t *EditFileTool) Validate(args map[string]interface{}) []string {
	var errs []string
	if path, ok := agentloop.GetStringArg(args, "path"); !ok || path == "" {
		errs = append(errs, "path is required")
	}
	if _, ok := agentloop.GetStringArg(args, "old_string"); !ok {
		errs = append(errs, "old_string is required")
	}
	if _, ok := agentloop.GetStringArg(args, "new_string"); !ok {
		errs = append(errs, "new_string is required")
	}
	return errs
}

func (t *EditFileTool) GetConfirmation(inv agentloop.ToolInvocation) *agentloop.ToolConfirmation {
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	return &agentloop.ToolConfirmation{
		ToolName:      "edit_file",
		Arguments:     inv.Arguments,
		Description:   fmt.Sprintf("Edit %s", path),
		AffectedPaths: []string{path},
	}
}

func (t *EditFileTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	path, _ := agentloop.GetStringArg(inv.Arguments, "path")
	oldString, _ := agentloop.GetStringArg(inv.Arguments, "old_string")
	newString, _ := agentloop.GetStringArg(inv.Arguments, "new_string")
	replaceAll, _ := agentloop.GetBoolArg(inv.Arguments, "replace_all")

	content, err := t.Env.ReadFile(path, 0, 0)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	raw := stripLineNumbers(content)

	count := strings.Count(raw, oldString)
	if count == 0 {
		return agentloop.ToolResult{Success: false, Error: "old_string not found in file"}
	}
	if count > 1 && !replaceAll {
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("old_string is not unique: %d occurrences found; add more context or set replace_all", count)}
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(raw, oldString, newString)
	} else {
		updated = strings.Replace(raw, oldString, newString, 1)
	}

	if err := t.Env.WriteFile(path, updated); err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	return agentloop.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Edited %s", path),
		Diff:    &agentloop.FileDiff{Path: path, OldContent: raw, NewContent: updated},
	}
}

// stripLineNumbers undoes the "N | " prefix LocalExecutionEnvironment.ReadFile
// adds for model consumption, since edit_file needs the raw bytes.
func stripLineNumbers(content string) string {
	// ReadFile ends every numbered line, the last one included, with "\n".
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if idx := strings.Index(l, " | "); idx >= 0 {
			prefix := l[:idx]
			if isDigits(prefix) {
				out = append(out, l[idx+3:])
				continue
			}
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

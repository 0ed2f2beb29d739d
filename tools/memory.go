package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/forgecode/agentkit/agentloop"
	"github.com/forgecode/agentkit/persistence"
)

// MemoryTool reads and writes the process-wide user_memory.json store,
// per spec §3's "Plan / Todos / Memory" built-in tool state: unlike
// plan/todo, memory survives across sessions and is injected into the
// next session's system prompt as a user-preferences block.
type MemoryTool struct {
	agentloop.BaseTool
	Store *persistence.MemoryStore
}

// NewMemoryTool constructs a memory tool bound to store.
func NewMemoryTool(store *persistence.MemoryStore) *MemoryTool {
	return &MemoryTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindMemory}, Store: store}
}

func (t *MemoryTool) Name() string { return "memory" }
func (t *MemoryTool) Description() string {
	return "Get, set, delete, or list entries in the persistent user-memory store."
}

func (t *MemoryTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{"type": "string", "enum": []string{"get", "set", "delete", "list"}},
			"key":    map[string]interface{}{"type": "string", "description": "Required for get/set/delete."},
			"value":  map[string]interface{}{"type": "string", "description": "Required for set."},
		},
		"required": []string{"action"},
	}
}

func (t *MemoryTool) Validate(args map[string]interface{}) []string {
	action, ok := agentloop.GetStringArg(args, "action")
	if !ok || action == "" {
		return []string{"action is required"}
	}
	switch action {
	case "get", "delete":
		if key, ok := agentloop.GetStringArg(args, "key"); !ok || key == "" {
			return []string{"key is required for " + action}
		}
	case "set":
		var errs []string
		if key, ok := agentloop.GetStringArg(args, "key"); !ok || key == "" {
			errs = append(errs, "key is required for set")
		}
		if _, ok := agentloop.GetStringArg(args, "value"); !ok {
			errs = append(errs, "value is required for set")
		}
		return errs
	case "list":
		// no required fields
	default:
		return []string{fmt.Sprintf("unknown action %q", action)}
	}
	return nil
}

func (t *MemoryTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	action, _ := agentloop.GetStringArg(inv.Arguments, "action")
	key, _ := agentloop.GetStringArg(inv.Arguments, "key")

	switch action {
	case "get":
		v, ok := t.Store.Get(key)
		if !ok {
			return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("no memory entry for %q", key)}
		}
		return agentloop.ToolResult{Success: true, Output: v}
	case "set":
		value, _ := agentloop.GetStringArg(inv.Arguments, "value")
		if err := t.Store.Set(key, value); err != nil {
			return agentloop.ToolResult{Success: false, Error: err.Error()}
		}
		return agentloop.ToolResult{Success: true, Output: fmt.Sprintf("Stored %q.", key)}
	case "delete":
		if err := t.Store.Delete(key); err != nil {
			return agentloop.ToolResult{Success: false, Error: err.Error()}
		}
		return agentloop.ToolResult{Success: true, Output: fmt.Sprintf("Deleted %q.", key)}
	case "list":
		all := t.Store.All()
		if len(all) == 0 {
			return agentloop.ToolResult{Success: true, Output: "No memory entries."}
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%s = %s\n", k, all[k])
		}
		return agentloop.ToolResult{Success: true, Output: strings.TrimRight(sb.String(), "\n")}
	default:
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("unknown action %q", action)}
	}
}

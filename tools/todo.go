package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/forgecode/agentkit/agentloop"
)

// TodoItem is one entry of the session's ephemeral todo list.
type TodoItem struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Status  string `json:"status"` // pending | in_progress | completed
}

// TodoTool holds the session's todo list in memory. Per spec §3, this
// state is ephemeral to the session: it is never persisted.
type TodoTool struct {
	agentloop.BaseTool
	mu    sync.Mutex
	items []TodoItem
}

// NewTodoTool constructs an empty todo list.
func NewTodoTool() *TodoTool {
	return &TodoTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindMemory}}
}

func (t *TodoTool) Name() string { return "todo" }
func (t *TodoTool) Description() string {
	return "Replace the session's todo list with the given items, and get back the rendered list."
}

func (t *TodoTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"items": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":      map[string]interface{}{"type": "string"},
						"content": map[string]interface{}{"type": "string"},
						"status":  map[string]interface{}{"type": "string", "enum": []string{"pending", "in_progress", "completed"}},
					},
					"required": []string{"id", "content", "status"},
				},
			},
		},
		"required": []string{"items"},
	}
}

func (t *TodoTool) Execute(_ context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	rawItems, ok := inv.Arguments["items"].([]interface{})
	if !ok {
		return agentloop.ToolResult{Success: false, Error: "items is required and must be an array"}
	}

	items := make([]TodoItem, 0, len(rawItems))
	for _, v := range rawItems {
		m, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := agentloop.GetStringArg(m, "id")
		content, _ := agentloop.GetStringArg(m, "content")
		status, _ := agentloop.GetStringArg(m, "status")
		if status == "" {
			status = "pending"
		}
		items = append(items, TodoItem{ID: id, Content: content, Status: status})
	}

	t.mu.Lock()
	t.items = items
	t.mu.Unlock()

	return agentloop.ToolResult{Success: true, Output: renderTodos(items)}
}

func renderTodos(items []TodoItem) string {
	if len(items) == 0 {
		return "Todo list is empty."
	}
	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, "[%s] %s (%s)\n", it.ID, it.Content, it.Status)
	}
	return strings.TrimRight(sb.String(), "\n")
}

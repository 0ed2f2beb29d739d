package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgecode/agentkit/agentloop"
)

// mcpTool adapts one MCP-advertised tool into an agentloop.Tool, namespaced
// <server>__<tool> per spec §3. It is always kind=mcp and mutating, since
// the supervisor has no visibility into what an external tool actually
// does to the filesystem or network.
type mcpTool struct {
	agentloop.BaseTool
	name        string
	description string
	schema      map[string]interface{}
	client      *Client
	toolName    string
}

func newMCPTool(serverName string, desc ToolDescriptor, client *Client) *mcpTool {
	schema := map[string]interface{}{"type": "object"}
	if len(desc.InputSchema) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(desc.InputSchema, &parsed); err == nil {
			schema = parsed
		}
	}
	return &mcpTool{
		BaseTool:    agentloop.BaseTool{ToolKindValue: agentloop.ToolKindMCP},
		name:        serverName + "__" + desc.Name,
		description: desc.Description,
		schema:      schema,
		client:      client,
		toolName:    desc.Name,
	}
}

func (t *mcpTool) Name() string                        { return t.name }
func (t *mcpTool) Description() string                 { return t.description }
func (t *mcpTool) Schema() map[string]interface{}       { return t.schema }
func (t *mcpTool) IsMutating(map[string]interface{}) bool { return true }

func (t *mcpTool) GetConfirmation(inv agentloop.ToolInvocation) *agentloop.ToolConfirmation {
	return &agentloop.ToolConfirmation{
		ToolName:    t.name,
		Arguments:   inv.Arguments,
		Description: fmt.Sprintf("Call external tool %s", t.name),
	}
}

func (t *mcpTool) Execute(ctx context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	text, isError, err := t.client.CallTool(ctx, t.toolName, inv.RawArguments)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}
	if isError {
		return agentloop.ToolResult{Success: false, Error: text}
	}
	return agentloop.ToolResult{Success: true, Output: text}
}

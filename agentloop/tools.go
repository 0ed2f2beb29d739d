package agentloop

import (
	"sort"
	"sync"

	"github.com/forgecode/agentkit/unifiedllm"
)

// ToolRegistry stores tools in three maps, per 4.2: built-in + discovered
// (the working set consulted first), MCP-sourced (consulted on a
// built-in miss), and a discovered subset mirrored out of the built-in
// map so a reload can unregister exactly what discovery added without
// touching anything else.
type ToolRegistry struct {
	mu         sync.RWMutex
	builtin    map[string]Tool
	mcp        map[string]Tool
	discovered map[string]bool // names present in builtin that came from discovery
	allowList  map[string]bool
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		builtin:    make(map[string]Tool),
		mcp:        make(map[string]Tool),
		discovered: make(map[string]bool),
	}
}

// RegisterBuiltin adds a built-in tool.
func (r *ToolRegistry) RegisterBuiltin(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtin[t.Name()] = t
}

// RegisterDiscovered adds a tool found by the discovery subsystem. It is
// held in both the built-in map (for lookup) and the discovered set (so
// UnregisterDiscovered can remove exactly these entries).
func (r *ToolRegistry) RegisterDiscovered(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtin[t.Name()] = t
	r.discovered[t.Name()] = true
}

// UnregisterDiscovered removes every tool previously added via
// RegisterDiscovered, used by the discovery subsystem's reload().
func (r *ToolRegistry) UnregisterDiscovered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.discovered {
		delete(r.builtin, name)
	}
	r.discovered = make(map[string]bool)
}

// RegisterMCP adds an MCP-sourced tool, already namespaced <server>__<tool>.
func (r *ToolRegistry) RegisterMCP(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mcp[t.Name()] = t
}

// UnregisterMCPServer removes every MCP tool namespaced under serverName,
// used by the MCP supervisor to clear a server's old tools before it
// registers the list from a fresh connect.
func (r *ToolRegistry) UnregisterMCPServer(serverName string) {
	prefix := serverName + "__"
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.mcp {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			delete(r.mcp, name)
		}
	}
}

// Get looks up a tool, searching built-in (including discovered) first,
// then MCP-sourced tools.
func (r *ToolRegistry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.builtin[name]; ok {
		return t
	}
	return r.mcp[name]
}

// SetAllowList restricts GetTools/Schemas to the given tool names. An
// empty or nil list means no restriction.
func (r *ToolRegistry) SetAllowList(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(names) == 0 {
		r.allowList = nil
		return
	}
	allow := make(map[string]bool, len(names))
	for _, n := range names {
		allow[n] = true
	}
	r.allowList = allow
}

// GetTools returns the union of built-in and MCP tools, filtered by the
// configured allow-list, if any.
func (r *ToolRegistry) GetTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tools []Tool
	for name, t := range r.builtin {
		if r.allowList != nil && !r.allowList[name] {
			continue
		}
		tools = append(tools, t)
	}
	for name, t := range r.mcp {
		if r.allowList != nil && !r.allowList[name] {
			continue
		}
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Names returns the sorted names of every currently registered tool,
// filtered by the allow-list.
func (r *ToolRegistry) Names() []string {
	tools := r.GetTools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

// Schemas converts the visible tool set into unifiedllm tool definitions
// for inclusion in the next LLM request.
func (r *ToolRegistry) Schemas() []unifiedllm.ToolDefinition {
	tools := r.GetTools()
	defs := make([]unifiedllm.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = unifiedllm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		}
	}
	return defs
}

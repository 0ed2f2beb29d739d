// Package agentloop implements the turn loop of an interactive coding
// agent: it pairs a large language model with developer tools and drives
// the loop that interleaves LLM calls, tool execution, context
// management, approvals, and loop detection into one bounded run.
//
// The loop is built directly on unifiedllm's Client.Stream, not a
// higher-level generate() helper, so it can interleave tool execution
// with truncation, steering, events, and loop detection itself.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - Session: the central orchestrator holding conversation state,
//     dispatching tool calls, managing events, and enforcing turn limits.
//   - ProviderProfile: provider-aligned tool and prompt configuration.
//   - ExecutionEnvironment: abstraction for where tools run (local
//     process today; the interface leaves room for a sandboxed runner).
//   - ToolRegistry: registration and dispatch of tool definitions,
//     including MCP-discovered and locally-discovered ones.
//   - EventEmitter: typed event stream for host application integration.
//
// Session itself does not construct its dependencies — the composition
// root (cmd/agentkit) builds the client, registry, context manager,
// approval manager, hook system, and compactor, then hands them to
// NewSession. This keeps agentloop free of import ties to unifiedllm's
// provider adapters, mcp, or discovery beyond the interfaces it needs.
//
// # Quick Start
//
//	env := agentloop.NewLocalExecutionEnvironment("/path/to/project")
//	if err := env.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//
//	registry := agentloop.NewAnthropicProfile("claude-sonnet-4-6").ToolRegistry()
//	// ... register built-in and discovered tools on registry ...
//
//	session := agentloop.NewSession(cwd, agentloop.DefaultSessionConfig(),
//	    client, registry, contextManager, approvalManager, hooks, compactor, confirm)
//	defer session.Close(ctx)
//
//	go func() {
//	    for event := range session.Events() {
//	        fmt.Printf("[%s] %v\n", event.Kind, event.Data)
//	    }
//	}()
//
//	response, err := session.Run(ctx, "Create a hello.py file")
//	if err != nil {
//	    log.Fatal(err)
//	}
package agentloop

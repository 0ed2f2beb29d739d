// Package unifiedllm is the LLM client layer agentloop's turn loop runs
// on: it wraps the gollm library (github.com/teilomillet/gollm) behind a
// provider-agnostic Client so the turn loop never imports a
// provider-specific SDK directly.
//
// # Architecture
//
// The package is layered:
//
//   - ProviderAdapter: the interface a backend (GollmAdapter today)
//     implements, plus the Request/Response/Message types shared by
//     every provider.
//   - Retry and error classification: provider errors are mapped onto a
//     small hierarchy so callers can ask IsRetryable without knowing
//     which provider produced the error.
//   - Client: routes a Request to the configured provider, applies
//     middleware, and exposes both Complete and Stream.
//   - Generate/StreamGenerate/GenerateObject: a higher-level tool-loop
//     API for one-shot callers. Nothing else in this repository calls
//     it: Session drives Client.Stream itself so it can interleave its
//     own truncation and loop detection, and Compactor calls
//     Client.Complete.
//
// # Quick Start
//
// Using the Client directly, the way cmd/agentkit's engine wires it:
//
//	adapter, _ := unifiedllm.NewGollmAdapter("anthropic", apiKey, unifiedllm.WithModel("claude-sonnet-4-6"))
//	client := unifiedllm.NewClient(
//	    unifiedllm.WithProvider("anthropic", adapter),
//	    unifiedllm.WithDefaultProvider("anthropic"),
//	)
//
//	resp, _ := client.Complete(ctx, unifiedllm.Request{
//	    Model:    "claude-sonnet-4-6",
//	    Messages: []unifiedllm.Message{unifiedllm.UserMessage("Hello")},
//	})
//	fmt.Println(resp.Text())
//
// # GollmAdapter
//
// GollmAdapter wraps gollm.LLM to implement ProviderAdapter, translating
// between the unified types here and gollm's native request/response
// shapes.
//
// # Tool Calling
//
// Tools can carry an optional Execute handler for automatic tool loops
// through Generate; agentloop's own turn loop instead dispatches tool
// calls itself through its ToolRegistry and reports results back as
// ToolResultMessage.
//
// # Model Catalog
//
//	info := unifiedllm.GetModelInfo("claude-sonnet-4-6")
//	models := unifiedllm.ListModels("anthropic")
//	latest := unifiedllm.GetLatestModel("anthropic", "reasoning")
package unifiedllm

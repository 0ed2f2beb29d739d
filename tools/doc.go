// Package tools implements the built-in Tool set: filesystem access,
// shell execution, search, network fetch, and the ephemeral
// plan/todo/memory tools, all against the agentloop.Tool contract.
package tools

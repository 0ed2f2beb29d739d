package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/forgecode/agentkit/agentloop"
)

// processTool is a discovered tool's runtime shape: every invocation
// spawns desc.Command with desc.Args, writes the call's JSON arguments
// to stdin, and reads a {"output": "...", "error": "..."} JSON object
// back from stdout. This is the declarative out-of-process tool-server
// model spec §9 Design Notes calls for in place of dynamic source
// loading.
type processTool struct {
	agentloop.BaseTool
	desc ToolDescriptorFile
}

func newProcessTool(desc ToolDescriptorFile, kind agentloop.ToolKind) *processTool {
	return &processTool{BaseTool: agentloop.BaseTool{ToolKindValue: kind}, desc: desc}
}

func (t *processTool) Name() string        { return t.desc.Name }
func (t *processTool) Description() string { return t.desc.Description }

func (t *processTool) Schema() map[string]interface{} {
	if t.desc.Schema != nil {
		return t.desc.Schema
	}
	return map[string]interface{}{"type": "object"}
}

func (t *processTool) IsMutating(map[string]interface{}) bool {
	return t.desc.Mutating
}

func (t *processTool) GetConfirmation(inv agentloop.ToolInvocation) *agentloop.ToolConfirmation {
	if !t.desc.Mutating {
		return nil
	}
	return &agentloop.ToolConfirmation{
		ToolName:    t.desc.Name,
		Arguments:   inv.Arguments,
		Description: fmt.Sprintf("Run discovered tool %s", t.desc.Name),
	}
}

type processToolOutput struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

func (t *processTool) Execute(ctx context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	timeout := 30 * time.Second
	if t.desc.TimeoutSec > 0 {
		timeout = time.Duration(t.desc.TimeoutSec) * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(inv.Arguments)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("marshal arguments: %v", err)}
	}

	cmd := exec.CommandContext(cctx, t.desc.Command, t.desc.Args...)
	cmd.Dir = inv.WorkingDirectory
	for k, v := range t.desc.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("discovered tool %s timed out", t.desc.Name)}
		}
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("%v: %s", err, stderr.String())}
	}

	var out processToolOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return agentloop.ToolResult{Success: true, Output: stdout.String()}
	}
	if out.Error != "" {
		return agentloop.ToolResult{Success: false, Error: out.Error, Output: out.Output}
	}
	return agentloop.ToolResult{Success: true, Output: out.Output}
}

package agentloop

import (
	"context"
	"encoding/json"
	"strings"
)

// ConfirmationCallback asks a front-end whether a NEEDS_CONFIRMATION
// invocation should proceed. A nil callback means headless automation:
// the pipeline defaults to approve so unattended runs never wedge.
type ConfirmationCallback func(ctx context.Context, confirmation ToolConfirmation) bool

// Invoke runs the full 4.2 sequential path: lookup, validation, hook
// dispatch, confirmation/approval, execute, and the unconditional
// afterTool hook. hooks and approval may be nil.
func (r *ToolRegistry) Invoke(
	ctx context.Context,
	name string,
	rawArgs json.RawMessage,
	cwd string,
	hooks *HookSystem,
	approval *ApprovalManager,
	confirm ConfirmationCallback,
) ToolResult {
	tool := r.Get(name)
	if tool == nil {
		result := failureResult("Unknown tool: %s", name)
		hooks.AfterTool(ctx, name, nil, result)
		return result
	}

	args, err := ParseToolArguments(rawArgs)
	if err != nil {
		result := failureResult("Invalid parameters: %s", err.Error())
		hooks.AfterTool(ctx, name, nil, result)
		return result
	}

	if errs := tool.Validate(args); len(errs) > 0 {
		result := failureResult("Invalid parameters: %s", strings.Join(errs, "; "))
		hooks.AfterTool(ctx, name, args, result)
		return result
	}

	hooks.BeforeTool(ctx, name, args)

	inv := ToolInvocation{Arguments: args, RawArguments: rawArgs, WorkingDirectory: cwd}
	mutating := tool.IsMutating(args)
	confirmation := tool.GetConfirmation(inv)

	if confirmation != nil && approval != nil {
		decision := approval.CheckApproval(ApprovalContext{
			ToolName:      name,
			Arguments:     args,
			IsMutating:    mutating,
			AffectedPaths: confirmation.AffectedPaths,
			Command:       confirmation.Command,
			IsDangerous:   confirmation.Dangerous,
			Cwd:           cwd,
		})

		switch decision {
		case Rejected:
			result := failureResult("Operation rejected by safety policy")
			hooks.AfterTool(ctx, name, args, result)
			return result
		case NeedsConfirmation:
			approved := confirm == nil
			if confirm != nil {
				approved = confirm(ctx, *confirmation)
			}
			if !approved {
				result := failureResult("User rejected the operation")
				hooks.AfterTool(ctx, name, args, result)
				return result
			}
		case Approved:
			// proceed
		}
	}

	result := executeWithRecover(ctx, tool, inv)
	hooks.AfterTool(ctx, name, args, result)
	return result
}

// executeWithRecover runs Tool.Execute, converting a panic into an
// internal-error ToolResult rather than letting it escape the pipeline.
func executeWithRecover(ctx context.Context, tool Tool, inv ToolInvocation) (result ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = failureResult("Internal error: %v", rec)
		}
	}()
	return tool.Execute(ctx, inv)
}

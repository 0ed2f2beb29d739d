package agentloop

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"
)

// HookTrigger identifies the lifecycle point a hook fires at.
type HookTrigger string

const (
	TriggerBeforeAgent HookTrigger = "before_agent"
	TriggerAfterAgent  HookTrigger = "after_agent"
	TriggerBeforeTool  HookTrigger = "before_tool"
	TriggerAfterTool   HookTrigger = "after_tool"
	TriggerOnError     HookTrigger = "on_error"
)

// HookConfig describes a single configured hook. Command and Script are
// mutually exclusive; both are passed to the shell the same way, and
// Command is used when both are set.
type HookConfig struct {
	Name           string
	Trigger        HookTrigger
	Command        string
	Script         string
	TimeoutSeconds int
	Enabled        bool
}

// HookSystem dispatches configured hooks as subprocesses carrying a
// fixed set of AI_AGENT_* environment variables. Hooks are only
// consulted when Enabled is true; failures are reported as warning
// events and never fail the host operation.
type HookSystem struct {
	Enabled bool
	Hooks   []HookConfig
	Cwd     string
	Emitter *EventEmitter
}

// NewHookSystem constructs a HookSystem.
func NewHookSystem(enabled bool, hooks []HookConfig, cwd string, emitter *EventEmitter) *HookSystem {
	return &HookSystem{Enabled: enabled, Hooks: hooks, Cwd: cwd, Emitter: emitter}
}

func (h *HookSystem) dispatch(ctx context.Context, trigger HookTrigger, vars map[string]string) {
	if h == nil || !h.Enabled {
		return
	}
	for _, hook := range h.Hooks {
		if !hook.Enabled || hook.Trigger != trigger {
			continue
		}
		h.run(ctx, hook, vars)
	}
}

func (h *HookSystem) run(ctx context.Context, hook HookConfig, vars map[string]string) {
	timeout := hook.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	cctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	script := hook.Command
	if script == "" {
		script = hook.Script
	}
	if script == "" {
		return
	}

	shell, shellArg := "/bin/bash", "-c"
	if runtime.GOOS == "windows" {
		shell, shellArg = "cmd.exe", "/c"
	}

	cmd := exec.CommandContext(cctx, shell, shellArg, script)
	cmd.Dir = h.Cwd
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	env := os.Environ()
	env = append(env, "AI_AGENT_TRIGGER="+string(hook.Trigger), "AI_AGENT_CWD="+h.Cwd)
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	err := cmd.Run()
	if cctx.Err() == context.DeadlineExceeded && cmd.Process != nil {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	if err != nil && h.Emitter != nil {
		h.Emitter.Emit(EventWarning, map[string]interface{}{
			"hook":    hook.Name,
			"trigger": string(hook.Trigger),
			"error":   err.Error(),
		})
	}
}

// BeforeAgent fires before_agent hooks with the user's input message.
func (h *HookSystem) BeforeAgent(ctx context.Context, userMessage string) {
	h.dispatch(ctx, TriggerBeforeAgent, map[string]string{"AI_AGENT_USER_MESSAGE": userMessage})
}

// AfterAgent fires after_agent hooks with the input and final response.
func (h *HookSystem) AfterAgent(ctx context.Context, userMessage, response string) {
	h.dispatch(ctx, TriggerAfterAgent, map[string]string{
		"AI_AGENT_USER_MESSAGE": userMessage,
		"AI_AGENT_RESPONSE":     response,
	})
}

// BeforeTool fires before_tool hooks; guaranteed to run iff lookup and
// validation succeeded for the invocation.
func (h *HookSystem) BeforeTool(ctx context.Context, name string, args map[string]interface{}) {
	params, _ := json.Marshal(args)
	h.dispatch(ctx, TriggerBeforeTool, map[string]string{
		"AI_AGENT_TOOL_NAME":   name,
		"AI_AGENT_TOOL_PARAMS": string(params),
	})
}

// AfterTool fires after_tool hooks; runs for every invocation regardless
// of outcome. Safe to call on a nil receiver.
func (h *HookSystem) AfterTool(ctx context.Context, name string, args map[string]interface{}, result ToolResult) {
	params, _ := json.Marshal(args)
	h.dispatch(ctx, TriggerAfterTool, map[string]string{
		"AI_AGENT_TOOL_NAME":   name,
		"AI_AGENT_TOOL_PARAMS": string(params),
		"AI_AGENT_TOOL_RESULT": result.ToModelOutput(),
	})
}

// OnError fires on_error hooks with the error text.
func (h *HookSystem) OnError(ctx context.Context, errText string) {
	h.dispatch(ctx, TriggerOnError, map[string]string{"AI_AGENT_ERROR": errText})
}

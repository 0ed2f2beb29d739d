package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/forgecode/agentkit/agentloop"
	"github.com/forgecode/agentkit/config"
	"github.com/forgecode/agentkit/discovery"
	"github.com/forgecode/agentkit/mcp"
	"github.com/forgecode/agentkit/persistence"
	"github.com/forgecode/agentkit/tools"
	"github.com/forgecode/agentkit/unifiedllm"
)

// runOptions collects the flags common to both single-shot and REPL mode.
type runOptions struct {
	cwd      string
	config   string
	model    string
	approval string
}

// engine holds the wired session plus anything main needs to report or
// clean up alongside it.
type engine struct {
	session  *agentloop.Session
	env      *agentloop.LocalExecutionEnvironment
	registry *agentloop.ToolRegistry
}

// buildEngine is the composition root: it loads configuration, wires the
// LLM client, tool registry, MCP supervisor, tool discovery, and every
// agentloop subsystem, and returns a ready-to-run Session. The caller is
// responsible for draining Events() and eventually calling Close.
func buildEngine(ctx context.Context, opts runOptions) (*engine, error) {
	absCwd, err := filepath.Abs(opts.cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve cwd: %w", err)
	}

	configPath := opts.config
	if configPath == "" {
		configPath = filepath.Join(absCwd, ".ai-agent", "config.toml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Cwd = absCwd

	model := cfg.Model.Name
	if opts.model != "" {
		model = opts.model
	}
	if model == "" {
		model = "claude-sonnet-4-6"
	}

	approvalPolicy := agentloop.ApprovalPolicy(cfg.Approval)
	if opts.approval != "" {
		approvalPolicy = agentloop.ApprovalPolicy(opts.approval)
	}

	env := agentloop.NewLocalExecutionEnvironment(absCwd)
	if err := env.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize execution environment: %w", err)
	}

	adapterOpts := []unifiedllm.GollmAdapterOption{
		unifiedllm.WithModel(model),
	}
	if cfg.Model.Temperature != 0 {
		adapterOpts = append(adapterOpts, unifiedllm.WithTemperature(cfg.Model.Temperature))
	}
	adapter, err := unifiedllm.NewGollmAdapter("anthropic", cfg.APIKey, adapterOpts...)
	if err != nil {
		return nil, fmt.Errorf("construct LLM adapter: %w", err)
	}
	client := unifiedllm.NewClient(
		unifiedllm.WithProvider("anthropic", adapter),
		unifiedllm.WithDefaultProvider("anthropic"),
	)

	profile := agentloop.NewAnthropicProfile(model)
	registry := profile.ToolRegistry()

	memStore, err := persistence.NewMemoryStore()
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	registerBuiltinTools(registry, env, memStore)

	emitter := agentloop.NewEventEmitter("mcp", 64)
	supervisor := mcp.NewSupervisor(registry, emitter)
	if len(cfg.MCPServers) > 0 {
		var serverConfigs []mcp.ServerConfig
		for name, sc := range cfg.MCPServers {
			if !sc.Enabled {
				continue
			}
			serverConfigs = append(serverConfigs, mcp.ServerConfig{
				Name:              name,
				Enabled:           sc.Enabled,
				Command:           sc.Command,
				Args:              sc.Args,
				Env:               sc.Env,
				URL:               sc.URL,
				StartupTimeoutSec: sc.StartupTimeoutSec,
				Cwd:               sc.Cwd,
			})
		}
		if len(serverConfigs) > 0 {
			if err := supervisor.StartAll(ctx, serverConfigs); err != nil {
				return nil, fmt.Errorf("start mcp servers: %w", err)
			}
		}
	}

	configDir, err := persistence.ConfigDir()
	if err != nil {
		configDir = ""
	}
	discoveryDirs := []string{filepath.Join(absCwd, ".ai-agent", "tools")}
	if configDir != "" {
		discoveryDirs = append(discoveryDirs, filepath.Join(configDir, ".ai-agent", "tools"))
	}
	loader := discovery.NewLoader(registry, discoveryDirs...)
	loader.DiscoverAll()

	projectDocs := agentloop.DiscoverProjectDocs(absCwd, profile.ID())
	profile.UserMemory = memStore.All()
	profile.UserInstructions = cfg.UserInstructions
	if profile.UserInstructions == "" {
		profile.UserInstructions = cfg.DeveloperInstructions
	}
	systemPrompt := profile.BuildSystemPrompt(env, projectDocs)

	contextWindow := cfg.Model.ContextWindow
	if contextWindow <= 0 {
		contextWindow = profile.ContextWindowSize()
	}
	counter := agentloop.NewTiktokenCounter(model)
	cm := agentloop.NewContextManager(systemPrompt, contextWindow, counter)

	approvalManager := agentloop.NewApprovalManager(approvalPolicy)

	var hookConfigs []agentloop.HookConfig
	for _, h := range cfg.Hooks {
		hookConfigs = append(hookConfigs, agentloop.HookConfig{
			Name:           h.Name,
			Trigger:        agentloop.HookTrigger(h.Trigger),
			Command:        h.Command,
			Script:         h.Script,
			TimeoutSeconds: h.TimeoutSeconds,
			Enabled:        h.Enabled,
		})
	}
	hookEmitter := agentloop.NewEventEmitter("hooks", 64)
	hookSystem := agentloop.NewHookSystem(cfg.HooksEnabled, hookConfigs, absCwd, hookEmitter)

	compactor := agentloop.NewCompactor(client, model)

	sessionConfig := agentloop.SessionConfig{
		MaxTurns:            cfg.MaxTurns,
		Model:               model,
		Provider:            "anthropic",
		ContextWindow:       contextWindow,
		EnableLoopDetection: true,
	}

	confirm := terminalConfirmationCallback()

	session := agentloop.NewSession(absCwd, sessionConfig, client, registry, cm, approvalManager, hookSystem, compactor, confirm)
	session.RegisterCloser(func(ctx context.Context) error {
		return supervisor.Shutdown(ctx)
	})
	session.RegisterCloser(func(context.Context) error {
		emitter.Close()
		hookEmitter.Close()
		return nil
	})
	session.RegisterCloser(func(context.Context) error {
		return env.Cleanup()
	})

	if len(cfg.AllowedTools) > 0 {
		registry.SetAllowList(cfg.AllowedTools)
	}

	return &engine{session: session, env: env, registry: registry}, nil
}

// registerBuiltinTools registers every built-in tool named in spec §3 on
// registry: file read/write/edit, shell, grep, glob, web_fetch, and the
// ephemeral todo/plan/memory tools.
func registerBuiltinTools(registry *agentloop.ToolRegistry, env agentloop.ExecutionEnvironment, memStore *persistence.MemoryStore) {
	registry.RegisterBuiltin(tools.NewReadFileTool(env))
	registry.RegisterBuiltin(tools.NewWriteFileTool(env))
	registry.RegisterBuiltin(tools.NewEditFileTool(env))
	registry.RegisterBuiltin(tools.NewShellTool(env, 0, 0))
	registry.RegisterBuiltin(tools.NewGrepTool(env))
	registry.RegisterBuiltin(tools.NewGlobTool(env))
	registry.RegisterBuiltin(tools.NewWebFetchTool(nil))
	registry.RegisterBuiltin(tools.NewTodoTool())
	registry.RegisterBuiltin(tools.NewPlanTool())
	registry.RegisterBuiltin(tools.NewMemoryTool(memStore))
}

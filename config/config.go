// Package config loads the TOML configuration file spec §6 names,
// accepting both snake_case and camelCase keys for every recognized
// option. Grounded on spec §6's configuration table; no pack repo
// parses TOML (jholhewres-goclaw and KumarDeepankar-wick_agent both use
// gopkg.in/yaml.v3 for their own config files), so this package
// introduces github.com/BurntSushi/toml purely to satisfy the spec's
// explicit external-interface contract — see DESIGN.md.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/forgecode/agentkit/agentloop"
)

// ModelConfig is the `[model]` table.
type ModelConfig struct {
	Name          string
	Temperature   float64
	ContextWindow int
}

// ShellEnvironmentConfig is the `[shellEnvironment]` table.
type ShellEnvironmentConfig struct {
	IgnoreDefaultExcludes bool
	ExcludePatterns       []string
	SetVars               map[string]string
}

// MCPServerConfig is one entry of the `[mcpServers.<name>]` table.
type MCPServerConfig struct {
	Enabled           bool
	Command           string
	Args              []string
	Env               map[string]string
	URL               string
	StartupTimeoutSec int
	Cwd               string
}

// SubagentConfig is one `[[subagents]]` entry.
type SubagentConfig struct {
	Name           string
	Description    string
	GoalPrompt     string
	AllowedTools   []string
	MaxTurns       int
	TimeoutSeconds int
}

// HookEntry is one `[[hooks]]` entry.
type HookEntry struct {
	Name           string
	Trigger        string
	Command        string
	Script         string
	TimeoutSeconds int
	Enabled        bool
}

// Config is the fully resolved configuration, defaults and environment
// fallbacks applied.
type Config struct {
	Model                 ModelConfig
	APIKey                string
	BaseURL               string
	Cwd                   string
	Approval              string
	MaxTurns              int
	ShellEnvironment      ShellEnvironmentConfig
	HooksEnabled          bool
	Hooks                 []HookEntry
	MCPServers            map[string]MCPServerConfig
	Subagents             []SubagentConfig
	AllowedTools          []string
	DeveloperInstructions string
	UserInstructions      string
	Debug                 bool
}

// Load reads and resolves the TOML file at path. A missing file is not
// an error: it resolves to the zero Config with defaults and env
// fallbacks applied, matching a fresh install with no config written
// yet.
func Load(path string) (*Config, error) {
	raw := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil {
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	cfg.applyRaw(raw)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyRaw(raw map[string]interface{}) {
	if m, ok := getTable(raw, "model"); ok {
		c.Model.Name, _ = getString(m, "name")
		c.Model.Temperature, _ = getFloat(m, "temperature")
		c.Model.ContextWindow, _ = getInt(m, "contextWindow", "context_window")
	}
	c.APIKey, _ = getString(raw, "apiKey", "api_key")
	c.BaseURL, _ = getString(raw, "baseUrl", "base_url")
	c.Cwd, _ = getString(raw, "cwd")
	c.Approval, _ = getString(raw, "approval")
	c.MaxTurns, _ = getInt(raw, "maxTurns", "max_turns")
	c.Debug, _ = getBool(raw, "debug")
	c.HooksEnabled, _ = getBool(raw, "hooksEnabled", "hooks_enabled")
	c.AllowedTools, _ = getStringSlice(raw, "allowedTools", "allowed_tools")
	c.DeveloperInstructions, _ = getString(raw, "developerInstructions", "developer_instructions")
	c.UserInstructions, _ = getString(raw, "userInstructions", "user_instructions")

	if m, ok := getTable(raw, "shellEnvironment", "shell_environment"); ok {
		c.ShellEnvironment.IgnoreDefaultExcludes, _ = getBool(m, "ignoreDefaultExcludes", "ignore_default_excludes")
		c.ShellEnvironment.ExcludePatterns, _ = getStringSlice(m, "excludePatterns", "exclude_patterns")
		c.ShellEnvironment.SetVars, _ = getStringMap(m, "setVars", "set_vars")
	}

	if list, ok := getTableList(raw, "hooks"); ok {
		for _, h := range list {
			entry := HookEntry{}
			entry.Name, _ = getString(h, "name")
			entry.Trigger, _ = getString(h, "trigger")
			entry.Command, _ = getString(h, "command")
			entry.Script, _ = getString(h, "script")
			entry.TimeoutSeconds, _ = getInt(h, "timeoutSeconds", "timeout_seconds")
			entry.Enabled, _ = getBool(h, "enabled")
			c.Hooks = append(c.Hooks, entry)
		}
	}

	if servers, ok := getTable(raw, "mcpServers", "mcp_servers"); ok {
		c.MCPServers = make(map[string]MCPServerConfig, len(servers))
		for name, v := range servers {
			m, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			srv := MCPServerConfig{}
			srv.Enabled, _ = getBool(m, "enabled")
			srv.Command, _ = getString(m, "command")
			srv.Args, _ = getStringSlice(m, "args")
			srv.Env, _ = getStringMap(m, "env")
			srv.URL, _ = getString(m, "url")
			srv.StartupTimeoutSec, _ = getInt(m, "startupTimeoutSec", "startup_timeout_sec")
			srv.Cwd, _ = getString(m, "cwd")
			c.MCPServers[name] = srv
		}
	}

	if list, ok := getTableList(raw, "subagents"); ok {
		for _, s := range list {
			sub := SubagentConfig{}
			sub.Name, _ = getString(s, "name")
			sub.Description, _ = getString(s, "description")
			sub.GoalPrompt, _ = getString(s, "goalPrompt", "goal_prompt")
			sub.AllowedTools, _ = getStringSlice(s, "allowedTools", "allowed_tools")
			sub.MaxTurns, _ = getInt(s, "maxTurns", "max_turns")
			sub.TimeoutSeconds, _ = getInt(s, "timeoutSeconds", "timeout_seconds")
			c.Subagents = append(c.Subagents, sub)
		}
	}
}

// applyDefaults fills in spec §6's stated defaults and the env-variable
// credential fallbacks (API_KEY/OPENAI_API_KEY, BASE_URL/OPENAI_API_BASE_URL).
func (c *Config) applyDefaults() {
	if c.MaxTurns <= 0 {
		c.MaxTurns = 100
	}
	if c.Approval == "" {
		c.Approval = string(agentloop.PolicyOnRequest)
	}
	if c.APIKey == "" {
		c.APIKey = firstEnv("API_KEY", "OPENAI_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = firstEnv("BASE_URL", "OPENAI_API_BASE_URL")
	}
	if c.Cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Cwd = wd
		}
	}
	if c.DeveloperInstructions == "" && c.UserInstructions == "" {
		if data, err := os.ReadFile(filepath.Join(c.Cwd, "AGENT.MD")); err == nil {
			c.DeveloperInstructions = string(data)
		}
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

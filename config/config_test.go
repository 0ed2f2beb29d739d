package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "agentkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAcceptsCamelCase(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
apiKey = "sk-camel"
maxTurns = 42

[model]
name = "claude-sonnet"
contextWindow = 200000

[shellEnvironment]
ignoreDefaultExcludes = true
excludePatterns = ["*_TOKEN"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-camel", cfg.APIKey)
	assert.Equal(t, 42, cfg.MaxTurns)
	assert.Equal(t, "claude-sonnet", cfg.Model.Name)
	assert.Equal(t, 200000, cfg.Model.ContextWindow)
	assert.True(t, cfg.ShellEnvironment.IgnoreDefaultExcludes)
	assert.Equal(t, []string{"*_TOKEN"}, cfg.ShellEnvironment.ExcludePatterns)
}

func TestLoadAcceptsSnakeCase(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
api_key = "sk-snake"
max_turns = 7

[model]
name = "gpt-5"
context_window = 128000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-snake", cfg.APIKey)
	assert.Equal(t, 7, cfg.MaxTurns)
	assert.Equal(t, 128000, cfg.Model.ContextWindow)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ``)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxTurns)
	assert.Equal(t, "on-request", cfg.Approval)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxTurns)
}

func TestLoadAPIKeyFallsBackToEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ``)

	t.Setenv("API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestLoadMCPServersDualKeyAndPreservesServerNames(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[mcp_servers.my_server]
command = "mcp-fs"
args = ["--root", "."]
startup_timeout_sec = 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, cfg.MCPServers, "my_server")
	srv := cfg.MCPServers["my_server"]
	assert.Equal(t, "mcp-fs", srv.Command)
	assert.Equal(t, 5, srv.StartupTimeoutSec)
}

func TestLoadSubagentsList(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[subagents]]
name = "reviewer"
goal_prompt = "Review the diff"
max_turns = 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Subagents, 1)
	assert.Equal(t, "reviewer", cfg.Subagents[0].Name)
	assert.Equal(t, "Review the diff", cfg.Subagents[0].GoalPrompt)
	assert.Equal(t, 5, cfg.Subagents[0].MaxTurns)
}

func TestLoadDeveloperInstructionsFallsBackToAgentMD(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AGENT.MD"), []byte("be terse"), 0644))
	path := writeConfig(t, dir, `cwd = "`+dir+`"`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "be terse", cfg.DeveloperInstructions)
}

package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/agentkit/agentloop"
)

func writeDescriptor(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestDiscoverAllLoadsValidDescriptor(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "echo.tool.toml", `
name = "echo_tool"
description = "echoes input"
command = "cat"
kind = "read"
`)

	registry := agentloop.NewToolRegistry()
	loader := NewLoader(registry, dir)
	loader.DiscoverAll()

	assert.Empty(t, loader.Errors())
	tool := registry.Get("echo_tool")
	require.NotNil(t, tool)
	assert.Equal(t, agentloop.ToolKindRead, tool.Kind())
}

func TestDiscoverAllRecordsParseError(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "broken.tool.toml", `this is not valid toml [[[`)

	registry := agentloop.NewToolRegistry()
	loader := NewLoader(registry, dir)
	loader.DiscoverAll()

	errs := loader.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, CategoryParse, errs[0].Category)
}

func TestDiscoverAllRecordsInstantiateError(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "nocmd.tool.toml", `
name = "bad_tool"
description = "missing command"
`)

	registry := agentloop.NewToolRegistry()
	loader := NewLoader(registry, dir)
	loader.DiscoverAll()

	errs := loader.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, CategoryInstantiate, errs[0].Category)
}

func TestDiscoverAllIgnoresUnderscorePrefixedAndOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "__skip.tool.toml", `name = "skip"`)
	writeDescriptor(t, dir, "notes.txt", `name = "skip2"`)

	registry := agentloop.NewToolRegistry()
	loader := NewLoader(registry, dir)
	loader.DiscoverAll()

	assert.Empty(t, loader.Errors())
	assert.Nil(t, registry.Get("skip"))
	assert.Nil(t, registry.Get("skip2"))
}

func TestReloadUnregistersPreviousDiscoveries(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "a.tool.toml", `
name = "tool_a"
description = "a"
command = "true"
`)

	registry := agentloop.NewToolRegistry()
	loader := NewLoader(registry, dir)
	loader.DiscoverAll()
	require.NotNil(t, registry.Get("tool_a"))

	require.NoError(t, os.Remove(filepath.Join(dir, "a.tool.toml")))
	writeDescriptor(t, dir, "b.tool.toml", `
name = "tool_b"
description = "b"
command = "true"
`)

	loader.Reload()
	assert.Nil(t, registry.Get("tool_a"))
	assert.NotNil(t, registry.Get("tool_b"))
}

func TestMissingDirectoryIsNotAnError(t *testing.T) {
	registry := agentloop.NewToolRegistry()
	loader := NewLoader(registry, filepath.Join(t.TempDir(), "does-not-exist"))
	loader.DiscoverAll()
	assert.Empty(t, loader.Errors())
}

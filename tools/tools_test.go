package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/agentkit/agentloop"
	"github.com/forgecode/agentkit/persistence"
)

func TestShellToolExecutesCommand(t *testing.T) {
	env := agentloop.NewLocalExecutionEnvironment(t.TempDir())
	tool := NewShellTool(env, 0, 0)

	result := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments:        map[string]interface{}{"command": "echo hello"},
		WorkingDirectory: env.WorkingDirectory(),
	})
	require.True(t, result.Success)
	assert.Contains(t, result.Output, "hello")
}

func TestShellToolConfirmationCarriesCommand(t *testing.T) {
	env := agentloop.NewLocalExecutionEnvironment(t.TempDir())
	tool := NewShellTool(env, 0, 0)

	conf := tool.GetConfirmation(agentloop.ToolInvocation{Arguments: map[string]interface{}{"command": "ls -la"}})
	require.NotNil(t, conf)
	assert.Equal(t, "ls -la", conf.Command)
}

func TestGrepToolFindsMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world\nneedle here\n"), 0644))

	env := agentloop.NewLocalExecutionEnvironment(dir)
	tool := NewGrepTool(env)

	result := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments:        map[string]interface{}{"pattern": "needle"},
		WorkingDirectory: dir,
	})
	require.True(t, result.Success)
	assert.Contains(t, result.Output, "needle here")
}

func TestGlobToolFindsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("not go"), 0644))

	env := agentloop.NewLocalExecutionEnvironment(dir)
	tool := NewGlobTool(env)

	result := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments:        map[string]interface{}{"pattern": "*.go"},
		WorkingDirectory: dir,
	})
	require.True(t, result.Success)
	assert.Contains(t, result.Output, "a.go")
	assert.NotContains(t, result.Output, "b.txt")
}

func TestWebFetchToolStripsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><style>.x{}</style></head><body><p>hello there</p></body></html>"))
	}))
	defer server.Close()

	tool := NewWebFetchTool(server.Client())
	result := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"url": server.URL},
	})
	require.True(t, result.Success)
	assert.Contains(t, result.Output, "hello there")
	assert.NotContains(t, result.Output, "<p>")
}

func TestWebFetchToolValidatesScheme(t *testing.T) {
	tool := NewWebFetchTool(nil)
	errs := tool.Validate(map[string]interface{}{"url": "ftp://example.com"})
	assert.NotEmpty(t, errs)
}

func TestTodoToolReplacesList(t *testing.T) {
	tool := NewTodoTool()
	result := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": "1", "content": "write tests", "status": "in_progress"},
			},
		},
	})
	require.True(t, result.Success)
	assert.Contains(t, result.Output, "write tests")
	assert.Contains(t, result.Output, "in_progress")
}

func TestPlanToolRecordsAndReturnsCurrent(t *testing.T) {
	tool := NewPlanTool()
	result := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"plan": "step 1, step 2"},
	})
	require.True(t, result.Success)
	assert.Equal(t, "step 1, step 2", tool.Current())
}

func TestMemoryToolSetGetDeleteList(t *testing.T) {
	store := persistence.NewMemoryStoreAt(t.TempDir())
	tool := NewMemoryTool(store)

	setResult := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"action": "set", "key": "name", "value": "ada"},
	})
	require.True(t, setResult.Success)

	getResult := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"action": "get", "key": "name"},
	})
	require.True(t, getResult.Success)
	assert.Equal(t, "ada", getResult.Output)

	listResult := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"action": "list"},
	})
	require.True(t, listResult.Success)
	assert.Contains(t, listResult.Output, "name = ada")

	deleteResult := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"action": "delete", "key": "name"},
	})
	require.True(t, deleteResult.Success)

	missing := tool.Execute(context.Background(), agentloop.ToolInvocation{
		Arguments: map[string]interface{}{"action": "get", "key": "name"},
	})
	assert.False(t, missing.Success)
}

func TestMemoryToolValidateRejectsUnknownAction(t *testing.T) {
	tool := NewMemoryTool(persistence.NewMemoryStoreAt(t.TempDir()))
	errs := tool.Validate(map[string]interface{}{"action": "frobnicate"})
	assert.NotEmpty(t, errs)
}

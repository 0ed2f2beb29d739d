package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/agentkit/agentloop"
)

// fakeMCPServer answers initialize/tools-list/tools-call for a single
// "echo" tool, enough to exercise Client/Supervisor end to end.
func fakeMCPServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req JSONRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "initialize":
			result = InitializeResult{ProtocolVersion: protocolVersion, ServerInfo: ServerInfo{Name: "fake", Version: "1"}}
		case "tools/list":
			result = ToolsListResult{Tools: []ToolDescriptor{
				{Name: "echo", Description: "echoes its input", InputSchema: json.RawMessage(`{"type":"object"}`)},
			}}
		case "tools/call":
			var params ToolsCallParams
			_ = json.Unmarshal(req.Params, &params)
			result = ToolsCallResult{Content: []ContentItem{{Type: "text", Text: "echo:" + string(params.Arguments)}}}
		default:
			http.Error(w, "unknown method", http.StatusBadRequest)
			return
		}

		data, err := json.Marshal(result)
		require.NoError(t, err)
		resp := JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: data}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestClientConnectListCall(t *testing.T) {
	srv := fakeMCPServer(t)
	defer srv.Close()

	client := NewClient(ServerConfig{Name: "good", URL: srv.URL})
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	tools, err := client.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)

	text, isError, err := client.CallTool(ctx, "echo", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	assert.False(t, isError)
	assert.Equal(t, `echo:{"x":1}`, text)
}

// TestSupervisorIsolatesFailures covers testable property #9: with two
// servers configured, one failing to connect, the other's tools are
// present and namespaced <server>__<tool>.
func TestSupervisorIsolatesFailures(t *testing.T) {
	good := fakeMCPServer(t)
	defer good.Close()

	registry := agentloop.NewToolRegistry()
	sup := NewSupervisor(registry, nil)

	configs := []ServerConfig{
		{Name: "goodServer", Enabled: true, URL: good.URL, StartupTimeoutSec: 2},
		{Name: "badServer", Enabled: true, URL: "http://127.0.0.1:1", StartupTimeoutSec: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sup.StartAll(ctx, configs))
	defer sup.Shutdown(context.Background())

	names := registry.Names()
	assert.Contains(t, names, "goodServer__echo")
	for _, n := range names {
		assert.NotContains(t, n, "badServer__")
	}

	states := sup.States()
	assert.Equal(t, StatusConnected, states["goodServer"].Status)
	assert.Equal(t, StatusError, states["badServer"].Status)
}

func TestServerConfigValidateXOR(t *testing.T) {
	assert.Error(t, ServerConfig{Name: "neither"}.Validate())
	assert.Error(t, ServerConfig{Name: "both", Command: "x", URL: "y"}.Validate())
	assert.NoError(t, ServerConfig{Name: "stdio-only", Command: "x"}.Validate())
	assert.NoError(t, ServerConfig{Name: "url-only", URL: "y"}.Validate())
}

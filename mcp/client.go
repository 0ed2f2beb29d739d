package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client owns one MCP server's transport and connection lifecycle:
// connect, list tools, call a tool, disconnect. Grounded on
// wick_gateway's DownstreamClient connect/list/call shape, generalized
// to the stdio/url transport duality spec §4.10 requires.
type Client struct {
	config ServerConfig
	t      transport
}

// NewClient constructs a disconnected Client for config.
func NewClient(config ServerConfig) *Client {
	return &Client{config: config}
}

// Connect starts the transport (subprocess for stdio, nothing to start
// for url beyond the HTTP client) and performs the MCP "initialize"
// handshake, bounded by ctx.
func (c *Client) Connect(ctx context.Context) error {
	if c.config.Command != "" {
		t, err := newStdioTransport(ctx, c.config.Command, c.config.Args, c.config.Env)
		if err != nil {
			return err
		}
		c.t = t
	} else {
		c.t = newURLTransport(c.config.URL)
	}

	params := InitializeParams{ProtocolVersion: protocolVersion, ClientInfo: clientInfo}
	resp, err := c.t.call(ctx, "initialize", params)
	if err != nil {
		_ = c.t.close()
		c.t = nil
		return fmt.Errorf("initialize: %w", err)
	}
	if resp != nil && resp.Error != nil {
		_ = c.t.close()
		c.t = nil
		return fmt.Errorf("initialize: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	return nil
}

// ListTools calls "tools/list" and returns the server's advertised tools.
func (c *Client) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	if c.t == nil {
		return nil, fmt.Errorf("mcp client %q: not connected", c.config.Name)
	}
	resp, err := c.t.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("tools/list: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	var result ToolsListResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("tools/list: unmarshal result: %w", err)
	}
	return result.Tools, nil
}

// CallTool calls "tools/call" for name with the given raw JSON arguments
// and flattens the text content items into a single string.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (string, bool, error) {
	if c.t == nil {
		return "", false, fmt.Errorf("mcp client %q: not connected", c.config.Name)
	}
	resp, err := c.t.call(ctx, "tools/call", ToolsCallParams{Name: name, Arguments: args})
	if err != nil {
		return "", false, fmt.Errorf("tools/call %s: %w", name, err)
	}
	if resp.Error != nil {
		return "", false, fmt.Errorf("tools/call %s: %s (code %d)", name, resp.Error.Message, resp.Error.Code)
	}
	var result ToolsCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return "", false, fmt.Errorf("tools/call %s: unmarshal result: %w", name, err)
	}
	text := ""
	for _, item := range result.Content {
		if item.Type == "text" {
			text += item.Text
		}
	}
	return text, result.IsError, nil
}

// Disconnect tears down the transport. Safe to call on an unconnected
// client.
func (c *Client) Disconnect() error {
	if c.t == nil {
		return nil
	}
	err := c.t.close()
	c.t = nil
	return err
}

// Connected reports whether the client currently owns a live transport.
func (c *Client) Connected() bool { return c.t != nil }

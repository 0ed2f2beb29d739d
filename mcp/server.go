package mcp

import "fmt"

// Status is an MCP server's connection lifecycle state, per spec §3.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// ServerConfig describes one configured MCP server. A stdio transport
// (Command/Args/Env) and a URL transport are mutually exclusive.
type ServerConfig struct {
	Name              string
	Enabled           bool
	Command           string
	Args              []string
	Env               map[string]string
	URL               string
	StartupTimeoutSec int
	Cwd               string
}

// Validate checks the stdio-XOR-url invariant.
func (c ServerConfig) Validate() error {
	hasStdio := c.Command != ""
	hasURL := c.URL != ""
	if hasStdio == hasURL {
		return fmt.Errorf("mcp server %q: exactly one of command or url must be set", c.Name)
	}
	return nil
}

// ServerState is the supervisor's live view of one configured server:
// its config plus the mutable status the health sweep updates.
type ServerState struct {
	Config ServerConfig
	Status Status
	Tools  []ToolDescriptor
	Error  string
}

package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/forgecode/agentkit/agentloop"
)

const defaultStartupTimeout = 10 * time.Second
const healthSweepInterval = 60 * time.Second

// Supervisor owns the lifecycle of every configured MCP server: parallel
// connect-with-timeout at startup, a single 60s health-sweep timer that
// retries disconnected/errored servers, and parallel suppressed-error
// shutdown. Grounded on the teacher's executeToolCallsParallel fan-out
// pattern (sync.WaitGroup) and wick_gateway's Registry connect/health
// lifecycle.
type Supervisor struct {
	mu       sync.Mutex
	registry *agentloop.ToolRegistry
	emitter  *agentloop.EventEmitter
	servers  map[string]*ServerState
	clients  map[string]*Client
	stop     chan struct{}
	stopped  bool
}

// NewSupervisor constructs a Supervisor that registers discovered tools
// into registry and reports connect/health failures through emitter
// (nil emitter means events are dropped).
func NewSupervisor(registry *agentloop.ToolRegistry, emitter *agentloop.EventEmitter) *Supervisor {
	return &Supervisor{
		registry: registry,
		emitter:  emitter,
		servers:  make(map[string]*ServerState),
		clients:  make(map[string]*Client),
	}
}

// StartAll connects every enabled server in parallel, each bounded by its
// own StartupTimeoutSec (default 10s), registers the tools of every
// server that connects successfully, then starts the health-sweep timer.
// Individual connect failures are isolated: StartAll always returns nil
// once every server has settled, per spec §4.10/§5.
func (s *Supervisor) StartAll(ctx context.Context, configs []ServerConfig) error {
	var wg sync.WaitGroup
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if err := cfg.Validate(); err != nil {
			s.warn(cfg.Name, err.Error())
			continue
		}
		state := &ServerState{Config: cfg, Status: StatusConnecting}
		client := NewClient(cfg)
		s.mu.Lock()
		s.servers[cfg.Name] = state
		s.clients[cfg.Name] = client
		s.mu.Unlock()

		wg.Add(1)
		go func(cfg ServerConfig, client *Client) {
			defer wg.Done()
			s.connectAndRegister(ctx, cfg, client)
		}(cfg, client)
	}
	wg.Wait()

	s.stop = make(chan struct{})
	go s.healthLoop()
	return nil
}

func (s *Supervisor) connectAndRegister(ctx context.Context, cfg ServerConfig, client *Client) {
	timeout := defaultStartupTimeout
	if cfg.StartupTimeoutSec > 0 {
		timeout = time.Duration(cfg.StartupTimeoutSec) * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Connect(cctx); err != nil {
		s.setStatus(cfg.Name, StatusError, nil, err.Error())
		s.warn(cfg.Name, err.Error())
		return
	}

	tools, err := client.ListTools(cctx)
	if err != nil {
		s.setStatus(cfg.Name, StatusError, nil, err.Error())
		s.warn(cfg.Name, err.Error())
		return
	}

	s.registry.UnregisterMCPServer(cfg.Name)
	for _, desc := range tools {
		s.registry.RegisterMCP(newMCPTool(cfg.Name, desc, client))
	}
	s.setStatus(cfg.Name, StatusConnected, tools, "")
}

func (s *Supervisor) setStatus(name string, status Status, tools []ToolDescriptor, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.servers[name]
	if !ok {
		return
	}
	state.Status = status
	state.Error = errText
	if tools != nil {
		state.Tools = tools
	}
}

func (s *Supervisor) warn(server, errText string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(agentloop.EventWarning, map[string]interface{}{
		"component": "mcp",
		"server":    server,
		"error":     errText,
	})
}

// healthLoop runs a single repeating 60s timer that attempts to
// reconnect every server whose status is not connected, until Shutdown
// stops it. Reconnection runs only from this one timer to avoid
// dog-piling, per spec §9 Design Notes.
func (s *Supervisor) healthLoop() {
	ticker := time.NewTicker(healthSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Supervisor) sweep() {
	s.mu.Lock()
	type entry struct {
		cfg    ServerConfig
		client *Client
	}
	var toRetry []entry
	for name, state := range s.servers {
		if state.Status != StatusConnected {
			toRetry = append(toRetry, entry{state.Config, s.clients[name]})
		}
	}
	s.mu.Unlock()

	ctx := context.Background()
	for _, e := range toRetry {
		func(e entry) {
			defer func() { _ = recover() }() // an individual reconnect failure never aborts the sweep
			s.connectAndRegister(ctx, e.cfg, e.client)
		}(e)
	}
}

// States returns a snapshot of every configured server's current state,
// for the /mcp and /mcp-health slash commands.
func (s *Supervisor) States() map[string]ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]ServerState, len(s.servers))
	for name, state := range s.servers {
		out[name] = *state
	}
	return out
}

// Shutdown cancels the health-sweep timer and disconnects every client in
// parallel, suppressing individual errors, per spec §5.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			_ = c.Disconnect()
		}(c)
	}
	wg.Wait()

	s.mu.Lock()
	s.servers = make(map[string]*ServerState)
	s.clients = make(map[string]*Client)
	s.mu.Unlock()
	return nil
}

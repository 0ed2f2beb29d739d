package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgecode/agentkit/unifiedllm"
)

// SessionConfig holds the per-session tunables of 4.9/5/6.
type SessionConfig struct {
	MaxTurns            int    // default 100, per §6
	ReasoningEffort     string // "low", "medium", "high", or ""
	Model               string
	Provider            string
	ContextWindow       int
	EnableLoopDetection bool
}

// DefaultSessionConfig returns the spec-default configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxTurns:            100,
		ContextWindow:       200000,
		EnableLoopDetection: true,
	}
}

// Session is the central orchestrator of 4.13: it owns the LLM client,
// tool registry, context manager, approval manager, loop detector, and
// hook system for the lifetime of one conversation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	updatedAt time.Time
	turnCount int
	cwd       string
	closers   []func(context.Context) error

	config   SessionConfig
	client   *unifiedllm.Client
	registry *ToolRegistry
	context  *ContextManager
	approval *ApprovalManager
	loop     *LoopDetector
	hooks    *HookSystem
	compactor *Compactor
	emitter  *EventEmitter
	confirm  ConfirmationCallback
}

// NewSession wires a Session from its already-constructed components.
// The caller (the composition root, typically cmd/agentkit) is
// responsible for building the system prompt, starting the MCP
// supervisor and tool discovery, and registering their tools on
// registry before calling NewSession.
func NewSession(
	cwd string,
	config SessionConfig,
	client *unifiedllm.Client,
	registry *ToolRegistry,
	cm *ContextManager,
	approval *ApprovalManager,
	hooks *HookSystem,
	compactor *Compactor,
	confirm ConfirmationCallback,
) *Session {
	now := time.Now()
	id := uuid.New().String()
	return &Session{
		ID:        id,
		CreatedAt: now,
		updatedAt: now,
		cwd:       cwd,
		config:    config,
		client:    client,
		registry:  registry,
		context:   cm,
		approval:  approval,
		loop:      NewLoopDetector(),
		hooks:     hooks,
		compactor: compactor,
		emitter:   NewEventEmitter(id, 256),
		confirm:   confirm,
	}
}

// Events returns the event stream for the host front-end.
func (s *Session) Events() <-chan SessionEvent { return s.emitter.Events() }

// TurnCount returns the number of turns started, counted at the top of
// each turn.
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

// UpdatedAt returns the timestamp of the most recent activity.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// RegisterCloser adds a cleanup action run by Close, in registration
// order. Used by the composition root to hand the session ownership of
// its MCP supervisor and discovery manager's shutdown, per 4.13,
// without agentloop importing those packages.
func (s *Session) RegisterCloser(f func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, f)
}

// Close runs every registered closer (MCP shutdown, discovery cleanup)
// and closes the LLM client.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	closers := append([]func(context.Context) error(nil), s.closers...)
	s.mu.Unlock()

	var firstErr error
	for _, c := range closers {
		if err := c(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.emitter.Close()
	return firstErr
}

// Snapshot captures the session's persistable state, per 4.13's
// Session snapshot data model.
type Snapshot struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	TurnCount  int                 `json:"turn_count"`
	Messages   []EngineMessage     `json:"messages"`
	TotalUsage unifiedllm.Usage    `json:"total_usage"`
}

// ToSnapshot renders the current session state for persistence.
func (s *Session) ToSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.updatedAt,
		TurnCount:  s.turnCount,
		Messages:   s.context.snapshotMessages(),
		TotalUsage: s.context.TotalUsage(),
	}
}

// RestoreFromSnapshot replays a snapshot's messages into the session's
// context manager, preserving roles and tool-call/tool-result pairing,
// per 4.13's resume contract.
func (s *Session) RestoreFromSnapshot(snap Snapshot) {
	s.mu.Lock()
	s.turnCount = snap.TurnCount
	s.updatedAt = snap.UpdatedAt
	s.mu.Unlock()
	s.context.restoreMessages(snap.Messages)
	s.context.AddUsage(snap.TotalUsage)
}

// Run implements the 4.9 onRun turn loop for a single user input.
func (s *Session) Run(ctx context.Context, userMessage string) (string, error) {
	s.hooks.BeforeAgent(ctx, userMessage)
	s.emitter.Emit(EventSessionStart, map[string]interface{}{"message": userMessage})
	s.context.AddUserMessage(userMessage)

	finalResponse := ""
	maxTurns := s.config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 100
	}

	for turn := 1; turn <= maxTurns; turn++ {
		s.mu.Lock()
		s.turnCount++
		s.updatedAt = time.Now()
		s.mu.Unlock()

		if s.context.NeedsCompression() && s.compactor != nil {
			if summary, usage, ok := s.compactor.Compress(ctx, s.context); ok {
				s.context.ReplaceWithSummary(summary)
				s.context.SetLatestUsage(usage)
				s.context.AddUsage(usage)
			}
		}

		req := unifiedllm.Request{
			Model:           s.config.Model,
			Provider:        s.config.Provider,
			Messages:        s.context.GetMessages(),
			ToolDefs:        s.registry.Schemas(),
			ToolChoice:      &unifiedllm.ToolChoice{Mode: "auto"},
			ReasoningEffort: s.config.ReasoningEffort,
		}

		events, err := s.client.Stream(ctx, req)
		if err != nil {
			s.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			s.hooks.OnError(ctx, err.Error())
			return finalResponse, err
		}

		var (
			responseText string
			toolCalls    []unifiedllm.ToolCall
			usage        unifiedllm.Usage
			streamErr    error
			pendingCalls = map[string]*unifiedllm.ToolCall{}
		)

		for ev := range events {
			switch ev.Type {
			case unifiedllm.TextDelta:
				responseText += ev.Delta
				s.emitter.Emit(EventAssistantTextDelta, map[string]interface{}{"content": ev.Delta})
			case unifiedllm.ToolCallStart:
				if ev.ToolCall != nil {
					call := *ev.ToolCall
					pendingCalls[call.ID] = &call
				}
			case unifiedllm.ToolCallDelta, unifiedllm.ToolCallEnd:
				if ev.ToolCall != nil {
					if call, ok := pendingCalls[ev.ToolCall.ID]; ok {
						call.Arguments = ev.ToolCall.Arguments
						if ev.Type == unifiedllm.ToolCallEnd {
							toolCalls = append(toolCalls, *call)
							delete(pendingCalls, ev.ToolCall.ID)
						}
					}
				}
			case unifiedllm.StreamFinish:
				if ev.Usage != nil {
					usage = *ev.Usage
				}
			case unifiedllm.StreamError:
				streamErr = ev.Error
				s.emitter.Emit(EventError, map[string]interface{}{"error": ev.Error.Error()})
			}
		}

		if streamErr != nil {
			s.hooks.OnError(ctx, streamErr.Error())
			return finalResponse, streamErr
		}

		toolCallData := make([]unifiedllm.ToolCallData, len(toolCalls))
		for i, tc := range toolCalls {
			toolCallData[i] = unifiedllm.ToolCallData{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments, Type: "function"}
		}
		s.context.AddAssistantMessage(responseText, toolCallData)

		if responseText != "" {
			finalResponse = responseText
			s.emitter.Emit(EventAssistantTextEnd, map[string]interface{}{"content": responseText})
			s.loop.RecordResponse(responseText)
		}

		if len(toolCalls) == 0 {
			s.context.SetLatestUsage(usage)
			s.context.AddUsage(usage)
			s.context.PruneToolOutputs()
			s.hooks.AfterAgent(ctx, userMessage, finalResponse)
			s.emitter.Emit(EventSessionEnd, map[string]interface{}{"response": finalResponse, "usage": usage})
			return finalResponse, nil
		}

		for _, tc := range toolCalls {
			args, _ := ParseToolArguments(tc.Arguments)
			s.emitter.Emit(EventToolCallStart, map[string]interface{}{
				"call_id": tc.ID, "name": tc.Name, "args": args,
			})
			s.loop.RecordToolCall(tc.Name, args)

			result := s.registry.Invoke(ctx, tc.Name, tc.Arguments, s.cwd, s.hooks, s.approval, s.confirm)

			s.emitter.Emit(EventToolCallEnd, map[string]interface{}{
				"call_id": tc.ID, "name": tc.Name, "success": result.Success,
				"output": result.Output, "error": result.Error, "metadata": result.Metadata,
				"truncated": result.Truncated, "exit_code": result.ExitCode, "diff": result.Diff,
			})
			s.context.AddToolResult(tc.ID, result.ToModelOutput())
		}

		if reason := s.loop.CheckForLoop(); reason != "" && s.config.EnableLoopDetection {
			s.context.AddUserMessage(LoopBreakerPrompt(reason))
			s.emitter.Emit(EventLoopDetection, map[string]interface{}{"reason": reason})
		}

		s.context.SetLatestUsage(usage)
		s.context.AddUsage(usage)
		s.context.PruneToolOutputs()
	}

	errText := fmt.Sprintf("Maximum turns (%d) reached", maxTurns)
	s.emitter.Emit(EventError, map[string]interface{}{"error": errText})
	s.hooks.AfterAgent(ctx, userMessage, finalResponse)
	s.emitter.Emit(EventSessionEnd, map[string]interface{}{"response": finalResponse})
	return finalResponse, fmt.Errorf(errText)
}

// marshalArgs is a small helper used by callers that need to re-wrap
// parsed arguments back into raw JSON (e.g. the sub-agent tool).
func marshalArgs(args map[string]interface{}) json.RawMessage {
	raw, _ := json.Marshal(args)
	return raw
}

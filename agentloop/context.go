package agentloop

import (
	"strings"
	"sync"
	"time"

	"github.com/forgecode/agentkit/unifiedllm"
)

// TokenCounter estimates the token count of a piece of text. A correct
// implementation uses the model's real tokenizer when one is available;
// CharEstimateCounter is the ~4-chars-per-token fallback.
type TokenCounter interface {
	Count(text string) int
}

// CharEstimateCounter implements the chars/4 fallback estimator.
type CharEstimateCounter struct{}

// Count returns roughly one token per four characters.
func (CharEstimateCounter) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// EngineMessage is the context manager's internal representation of a
// conversation entry: enough to reconstruct the wire-form message and
// to drive pruning/token accounting.
type EngineMessage struct {
	Role       unifiedllm.Role
	Content    string
	ToolCalls  []unifiedllm.ToolCallData
	ToolCallID string
	Tokens     int
	PrunedAt   *time.Time
}

const (
	prunedPlaceholder  = "[Old tool result content cleared]"
	pruneProtectTokens = 40000
	pruneMinimumTokens = 20000
)

const (
	summaryAck      = "Understood. I have the summary of our conversation so far."
	continuePrompt  = "Continue with the remaining work."
	summaryPrefix   = "Here is a summary of our conversation so far:\n\n"
)

// ContextManager holds the running conversation and the immutable
// system prompt, per 4.5.
type ContextManager struct {
	mu            sync.Mutex
	systemPrompt  string
	messages      []EngineMessage
	counter       TokenCounter
	contextWindow int
	latestUsage   unifiedllm.Usage
	totalUsage    unifiedllm.Usage
}

// NewContextManager constructs a ContextManager with the given immutable
// system prompt, context window size (in tokens), and token counter.
func NewContextManager(systemPrompt string, contextWindow int, counter TokenCounter) *ContextManager {
	if counter == nil {
		counter = CharEstimateCounter{}
	}
	return &ContextManager{
		systemPrompt:  systemPrompt,
		contextWindow: contextWindow,
		counter:       counter,
	}
}

// AddUserMessage appends a user message, counting its tokens.
func (c *ContextManager) AddUserMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, EngineMessage{
		Role:    unifiedllm.RoleUser,
		Content: text,
		Tokens:  c.counter.Count(text),
	})
}

// AddAssistantMessage appends an assistant message with optional tool
// calls, counting tokens for both the text and the call arguments.
func (c *ContextManager) AddAssistantMessage(text string, toolCalls []unifiedllm.ToolCallData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tokens := c.counter.Count(text)
	for _, tc := range toolCalls {
		tokens += c.counter.Count(tc.Name) + c.counter.Count(string(tc.Arguments))
	}
	c.messages = append(c.messages, EngineMessage{
		Role:      unifiedllm.RoleAssistant,
		Content:   text,
		ToolCalls: toolCalls,
		Tokens:    tokens,
	})
}

// AddToolResult appends a tool-result message for the given call id.
func (c *ContextManager) AddToolResult(callID string, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, EngineMessage{
		Role:       unifiedllm.RoleTool,
		Content:    content,
		ToolCallID: callID,
		Tokens:     c.counter.Count(content),
	})
}

// GetMessages yields [system, ...messages] in provider-neutral wire form.
func (c *ContextManager) GetMessages() []unifiedllm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]unifiedllm.Message, 0, len(c.messages)+1)
	out = append(out, unifiedllm.SystemMessage(c.systemPrompt))
	for _, m := range c.messages {
		switch m.Role {
		case unifiedllm.RoleUser:
			out = append(out, unifiedllm.UserMessage(m.Content))
		case unifiedllm.RoleAssistant:
			var parts []unifiedllm.ContentPart
			if m.Content != "" {
				parts = append(parts, unifiedllm.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, unifiedllm.ToolCallPart(tc.ID, tc.Name, tc.Arguments))
			}
			out = append(out, unifiedllm.Message{Role: unifiedllm.RoleAssistant, Content: parts})
		case unifiedllm.RoleTool:
			out = append(out, unifiedllm.ToolResultMessage(m.ToolCallID, m.Content, false))
		}
	}
	return out
}

// MessageCount returns the number of non-system messages held.
func (c *ContextManager) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// SystemPrompt returns the immutable system prompt.
func (c *ContextManager) SystemPrompt() string {
	return c.systemPrompt
}

// SetLatestUsage records the most recent completion's usage.
func (c *ContextManager) SetLatestUsage(u unifiedllm.Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latestUsage = u
}

// AddUsage accumulates u into the cumulative usage total.
func (c *ContextManager) AddUsage(u unifiedllm.Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalUsage = c.totalUsage.Add(u)
}

// LatestUsage returns the most recent completion's usage.
func (c *ContextManager) LatestUsage() unifiedllm.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latestUsage
}

// TotalUsage returns the cumulative usage across the run.
func (c *ContextManager) TotalUsage() unifiedllm.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalUsage
}

// NeedsCompression reports whether latestUsage.total exceeds 0.8 of the
// configured context window.
func (c *ContextManager) NeedsCompression() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.contextWindow <= 0 {
		return false
	}
	return float64(c.latestUsage.TotalTokens) > 0.8*float64(c.contextWindow)
}

// ReplaceWithSummary resets the message list to the fixed three-message
// stub: user(summary) / assistant(ack) / user(continue).
func (c *ContextManager) ReplaceWithSummary(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	preamble := summaryPrefix + text
	c.messages = []EngineMessage{
		{Role: unifiedllm.RoleUser, Content: preamble, Tokens: c.counter.Count(preamble)},
		{Role: unifiedllm.RoleAssistant, Content: summaryAck, Tokens: c.counter.Count(summaryAck)},
		{Role: unifiedllm.RoleUser, Content: continuePrompt, Tokens: c.counter.Count(continuePrompt)},
	}
}

// PruneToolOutputs walks tool messages newest-first, protecting the last
// 40,000 tokens' worth from clearing; anything older is a candidate, and
// candidates are only actually cleared if their combined size is at
// least 20,000 tokens. Clearing replaces content with a fixed
// placeholder and stamps PrunedAt.
func (c *ContextManager) PruneToolOutputs() {
	c.mu.Lock()
	defer c.mu.Unlock()

	tail := 0
	var candidates []int
	candidateTokens := 0
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := &c.messages[i]
		if m.Role != unifiedllm.RoleTool {
			continue
		}
		if m.PrunedAt != nil {
			break
		}
		tail += m.Tokens
		if tail > pruneProtectTokens {
			candidates = append(candidates, i)
			candidateTokens += m.Tokens
		}
	}

	if candidateTokens < pruneMinimumTokens {
		return
	}

	now := time.Now()
	for _, idx := range candidates {
		c.messages[idx].Content = prunedPlaceholder
		c.messages[idx].Tokens = c.counter.Count(prunedPlaceholder)
		c.messages[idx].PrunedAt = &now
	}
}

// Clear drops all messages, keeping the system prompt.
func (c *ContextManager) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// FlattenHistory renders the conversation as a single text blob for the
// compactor: tool outputs truncated to 2,000 chars, assistant text to
// 3,000, user text to 1,500, each entry joined by "\n\n---\n\n".
func (c *ContextManager) FlattenHistory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var parts []string
	for _, m := range c.messages {
		switch m.Role {
		case unifiedllm.RoleTool:
			parts = append(parts, TruncateOutput(m.Content, 2000, TruncateTail))
		case unifiedllm.RoleAssistant:
			if m.Content != "" {
				parts = append(parts, TruncateOutput(m.Content, 3000, TruncateTail))
			}
		case unifiedllm.RoleUser:
			parts = append(parts, TruncateOutput(m.Content, 1500, TruncateTail))
		}
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// snapshotMessages returns a copy of the internal message list, used by
// the persistence package to serialize a Session snapshot.
func (c *ContextManager) snapshotMessages() []EngineMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EngineMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// restoreMessages replaces the message list wholesale, used when
// resuming a session from a snapshot.
func (c *ContextManager) restoreMessages(msgs []EngineMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = msgs
}

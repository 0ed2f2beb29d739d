package agentloop

import (
	"context"

	"github.com/forgecode/agentkit/unifiedllm"
)

// compactionSystemPrompt is the fixed system prompt used to ask the
// model to summarise a flattened history.
const compactionSystemPrompt = `You are summarising a coding-agent conversation so it can continue ` +
	`within a smaller context window. Produce a concise but complete summary of what has happened ` +
	`so far: the user's goal, decisions made, files touched, and outstanding work. Do not include ` +
	`meta-commentary about the summarisation itself.`

// Compactor invokes the LLM non-streaming to summarise a near-full
// conversation, per 4.6.
type Compactor struct {
	client *unifiedllm.Client
	model  string
}

// NewCompactor constructs a Compactor bound to an LLM client and model.
func NewCompactor(client *unifiedllm.Client, model string) *Compactor {
	return &Compactor{client: client, model: model}
}

// Compress builds the two-message compaction prompt from the context
// manager's flattened history and asks the model for a summary. On any
// failure, or an empty completion, ok is false and the caller continues
// without compacting.
func (c *Compactor) Compress(ctx context.Context, cm *ContextManager) (summary string, usage unifiedllm.Usage, ok bool) {
	flattened := cm.FlattenHistory()
	if flattened == "" {
		return "", unifiedllm.Usage{}, false
	}

	req := unifiedllm.Request{
		Model: c.model,
		Messages: []unifiedllm.Message{
			unifiedllm.SystemMessage(compactionSystemPrompt),
			unifiedllm.UserMessage(flattened),
		},
	}

	resp, err := c.client.Complete(ctx, req)
	if err != nil {
		return "", unifiedllm.Usage{}, false
	}

	text := resp.Text()
	if text == "" {
		return "", unifiedllm.Usage{}, false
	}
	return text, resp.Usage, true
}

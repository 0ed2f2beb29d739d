package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forgecode/agentkit/agentloop"
)

const (
	defaultWebFetchTimeout = 30 * time.Second
	maxWebFetchTimeout     = 120 * time.Second
	maxWebFetchBytes       = 1 << 20 // 1 MiB read cap on the response body.
)

var (
	scriptTag = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlTag   = regexp.MustCompile(`(?s)<[^>]+>`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// WebFetchTool retrieves a URL over HTTP(S) and returns a plain-text
// rendering of its body, capped to spec §5's 30s default / 120s max
// fetch timeout.
type WebFetchTool struct {
	agentloop.BaseTool
	Client *http.Client
}

// NewWebFetchTool constructs a web_fetch tool. client defaults to a new
// http.Client, shared by every call, if nil.
func NewWebFetchTool(client *http.Client) *WebFetchTool {
	if client == nil {
		client = &http.Client{}
	}
	return &WebFetchTool{BaseTool: agentloop.BaseTool{ToolKindValue: agentloop.ToolKindNetwork}, Client: client}
}

func (t *WebFetchTool) Name() string { return "web_fetch" }
func (t *WebFetchTool) Description() string {
	return "Fetch a URL over HTTP(S) and return its content as plain text."
}

func (t *WebFetchTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url":        map[string]interface{}{"type": "string", "description": "The URL to fetch."},
			"timeout_ms": map[string]interface{}{"type": "integer", "description": "Override the default fetch timeout in milliseconds (max 120000)."},
		},
		"required": []string{"url"},
	}
}

func (t *WebFetchTool) Validate(args map[string]interface{}) []string {
	url, ok := agentloop.GetStringArg(args, "url")
	if !ok || url == "" {
		return []string{"url is required"}
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return []string{"url must be http:// or https://"}
	}
	return nil
}

func (t *WebFetchTool) GetConfirmation(inv agentloop.ToolInvocation) *agentloop.ToolConfirmation {
	url, _ := agentloop.GetStringArg(inv.Arguments, "url")
	return &agentloop.ToolConfirmation{
		ToolName:      "web_fetch",
		Arguments:     inv.Arguments,
		Description:   fmt.Sprintf("Fetch %s", url),
		AffectedPaths: nil,
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, inv agentloop.ToolInvocation) agentloop.ToolResult {
	url, _ := agentloop.GetStringArg(inv.Arguments, "url")
	timeoutMs, _ := agentloop.GetIntArg(inv.Arguments, "timeout_ms")
	timeout := defaultWebFetchTimeout
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if timeout > maxWebFetchTimeout {
		timeout = maxWebFetchTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: err.Error()}
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("fetch failed: %s", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebFetchBytes))
	if err != nil {
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("read body failed: %s", err)}
	}

	if resp.StatusCode >= 400 {
		return agentloop.ToolResult{Success: false, Error: fmt.Sprintf("HTTP %d", resp.StatusCode), Output: string(body)}
	}

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		text = htmlToText(text)
	}
	return agentloop.ToolResult{Success: true, Output: text}
}

// htmlToText strips script/style blocks and remaining tags, collapsing
// runs of blank lines. It is a best-effort text extraction, not an HTML
// parser; good enough for feeding a page's prose to a model.
func htmlToText(html string) string {
	stripped := scriptTag.ReplaceAllString(html, "")
	stripped = styleTag.ReplaceAllString(stripped, "")
	stripped = htmlTag.ReplaceAllString(stripped, "\n")
	stripped = blankRuns.ReplaceAllString(stripped, "\n\n")
	return strings.TrimSpace(stripped)
}

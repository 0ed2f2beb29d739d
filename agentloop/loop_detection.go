package agentloop

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// loopBufferSize is the size of the loop detector's ring buffer of
// recent action signatures.
const loopBufferSize = 20

// LoopDetector holds a bounded ring of recent action signatures and
// flags repetition, per 4.8. It never clears its history on its own:
// the corrective message injected after a detection is what's supposed
// to change future signatures.
type LoopDetector struct {
	mu     sync.Mutex
	buffer []string
}

// NewLoopDetector constructs an empty LoopDetector.
func NewLoopDetector() *LoopDetector {
	return &LoopDetector{}
}

// toolCallSignature renders a tool call as "tool_call|name|k1=v1|k2=v2…"
// with keys sorted for determinism.
func toolCallSignature(name string, args map[string]interface{}) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	sig := "tool_call|" + name
	if len(parts) > 0 {
		sig += "|" + strings.Join(parts, "|")
	}
	return sig
}

// RecordToolCall appends a tool-call signature to the ring buffer.
func (d *LoopDetector) RecordToolCall(name string, args map[string]interface{}) {
	d.record(toolCallSignature(name, args))
}

// RecordResponse appends a "response|text" signature to the ring buffer.
func (d *LoopDetector) RecordResponse(text string) {
	d.record("response|" + text)
}

func (d *LoopDetector) record(sig string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffer = append(d.buffer, sig)
	if len(d.buffer) > loopBufferSize {
		d.buffer = d.buffer[len(d.buffer)-loopBufferSize:]
	}
}

// CheckForLoop returns a non-empty reason when the last 3 signatures are
// identical, or when the last 2L signatures (L in {2,3}) form two
// identical halves.
func (d *LoopDetector) CheckForLoop() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.buffer)
	if n >= 3 {
		last3 := d.buffer[n-3:]
		if last3[0] == last3[1] && last3[1] == last3[2] {
			return "Same action repeated 3 times"
		}
	}

	for _, l := range []int{2, 3} {
		window := 2 * l
		if n < window {
			continue
		}
		a := d.buffer[n-window : n-l]
		b := d.buffer[n-l:]
		equal := true
		for i := range a {
			if a[i] != b[i] {
				equal = false
				break
			}
		}
		if equal {
			return fmt.Sprintf("Detected repeating cycle of length %d", l)
		}
	}

	return ""
}

// LoopBreakerPrompt renders a fixed rewrite of the detector's reason
// into a corrective user message instructing the model to change
// approach.
func LoopBreakerPrompt(reason string) string {
	return fmt.Sprintf(
		"It looks like you're repeating the same action (%s). "+
			"Stop and reconsider your approach: explain what you've learned so far, "+
			"and either try something different or explain why the current approach is correct "+
			"and what specifically you expect to change next.",
		reason,
	)
}

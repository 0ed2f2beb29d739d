package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/forgecode/agentkit/agentloop"
)

// runSingleShot builds one engine, runs a single turn against prompt, and
// streams the assistant's reply to stdout as it arrives.
//
// A single background goroutine drains the session's event stream for
// its whole lifetime: Session.Events() returns one long-lived channel
// that only closes when Close runs, so starting a fresh drain goroutine
// per turn (rather than once per session) would leave every prior one
// blocked forever inside its range loop.
func runSingleShot(ctx context.Context, opts runOptions, prompt string) error {
	eng, err := buildEngine(ctx, opts)
	if err != nil {
		return err
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		renderEvents(eng.session.Events())
	}()

	_, runErr := eng.session.Run(ctx, prompt)
	closeErr := eng.session.Close(ctx)
	<-drained
	fmt.Println()

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// runREPL builds one engine and runs it against successive lines of stdin
// until EOF or a /exit or /quit command, per spec §6.
func runREPL(ctx context.Context, opts runOptions) error {
	eng, err := buildEngine(ctx, opts)
	if err != nil {
		return err
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		renderEvents(eng.session.Events())
	}()
	defer func() {
		eng.session.Close(ctx)
		<-drained
	}()

	fmt.Println("agentkit REPL. Type /exit or /quit to leave, Ctrl-D also works.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/exit", "/quit":
			return nil
		case "/tools":
			fmt.Println(strings.Join(eng.registry.Names(), ", "))
			continue
		}

		if _, err := eng.session.Run(ctx, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		fmt.Println()
	}
}

// renderEvents drains a session's event stream to stdout until it
// closes, rendering each EventKind the way a thin terminal front-end
// would: streamed text deltas inline, tool calls as single lines,
// everything else as a bracketed status line.
func renderEvents(events <-chan agentloop.SessionEvent) {
	for ev := range events {
		switch ev.Kind {
		case agentloop.EventAssistantTextDelta:
			if text, ok := ev.Data["content"].(string); ok {
				fmt.Print(text)
			}
		case agentloop.EventToolCallStart:
			fmt.Printf("\n[tool] %v(%v)\n", ev.Data["name"], ev.Data["args"])
		case agentloop.EventToolCallEnd:
			if ok, _ := ev.Data["success"].(bool); ok {
				fmt.Printf("[tool] %v done\n", ev.Data["name"])
			} else {
				fmt.Printf("[tool] %v failed: %v\n", ev.Data["name"], ev.Data["error"])
			}
		case agentloop.EventLoopDetection:
			fmt.Printf("[loop detected] %v\n", ev.Data["reason"])
		case agentloop.EventWarning:
			fmt.Fprintf(os.Stderr, "[warning] %v\n", ev.Data["error"])
		case agentloop.EventError:
			fmt.Fprintf(os.Stderr, "[error] %v\n", ev.Data["error"])
		}
	}
}

// terminalConfirmationCallback prompts on stdin for every
// NEEDS_CONFIRMATION tool invocation. Approval is anything starting
// with 'y' or 'Y'; everything else rejects the operation.
func terminalConfirmationCallback() agentloop.ConfirmationCallback {
	reader := bufio.NewReader(os.Stdin)
	return func(_ context.Context, confirmation agentloop.ToolConfirmation) bool {
		fmt.Printf("\n%s\n", confirmation.Description)
		if confirmation.Command != "" {
			fmt.Printf("  command: %s\n", confirmation.Command)
		}
		for _, p := range confirmation.AffectedPaths {
			fmt.Printf("  affects: %s\n", p)
		}
		if confirmation.Diff != nil {
			fmt.Println(confirmation.Diff.Render())
		}
		fmt.Print("Proceed? [y/N] ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(strings.ToLower(line))
		return strings.HasPrefix(line, "y")
	}
}

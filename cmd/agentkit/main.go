// Package main is the agentkit CLI: a thin binary that wires the engine
// in agentloop, unifiedllm, mcp, discovery, and persistence to stdin/stdout
// for single-shot and REPL use, per spec §6's external interface contract.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "agentkit: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cwd string
	var configPath string
	var model string
	var approval string

	cmd := &cobra.Command{
		Use:     "agentkit [prompt]",
		Short:   "agentkit - an interactive AI coding agent",
		Version: version,
		Long: `agentkit runs a single turn against a prompt, or drops into an
interactive REPL when no prompt is given.

Examples:
  agentkit "summarize this repository"
  agentkit -c ./myproject
  agentkit --approval yolo "run the test suite and fix any failures"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := runOptions{
				cwd:      cwd,
				config:   configPath,
				model:    model,
				approval: approval,
			}
			if len(args) == 1 {
				return runSingleShot(cmd.Context(), opts, args[0])
			}
			return runREPL(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "working directory for the session")
	cmd.Flags().StringVar(&configPath, "config", "", "path to .ai-agent/config.toml (defaults to <cwd>/.ai-agent/config.toml)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "override the configured model")
	cmd.Flags().StringVar(&approval, "approval", "", "override the configured approval policy (on-request, on-failure, auto, auto-edit, never, yolo)")

	return cmd
}

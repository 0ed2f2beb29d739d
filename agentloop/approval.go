package agentloop

import (
	"path/filepath"
	"strings"
)

// ApprovalPolicy is the configured approval behaviour for mutating tool
// invocations.
type ApprovalPolicy string

const (
	PolicyOnRequest ApprovalPolicy = "on-request"
	PolicyOnFailure ApprovalPolicy = "on-failure"
	PolicyAuto      ApprovalPolicy = "auto"
	PolicyAutoEdit  ApprovalPolicy = "auto-edit"
	PolicyNever     ApprovalPolicy = "never"
	PolicyYolo      ApprovalPolicy = "yolo"
)

// ApprovalDecision is the outcome of classifying a tool invocation.
type ApprovalDecision string

const (
	Approved          ApprovalDecision = "approved"
	Rejected          ApprovalDecision = "rejected"
	NeedsConfirmation ApprovalDecision = "needs_confirmation"
)

// ApprovalContext carries everything the classifier needs to decide.
type ApprovalContext struct {
	ToolName      string
	Arguments     map[string]interface{}
	IsMutating    bool
	AffectedPaths []string
	Command       string
	IsDangerous   bool
	Cwd           string
}

// ApprovalManager is a deterministic, stateless classifier: the same
// ApprovalContext always yields the same decision.
type ApprovalManager struct {
	policy ApprovalPolicy
}

// NewApprovalManager constructs an ApprovalManager with the given policy.
func NewApprovalManager(policy ApprovalPolicy) *ApprovalManager {
	if policy == "" {
		policy = PolicyOnRequest
	}
	return &ApprovalManager{policy: policy}
}

// SetPolicy changes the active policy (e.g. from the /approval slash command).
func (m *ApprovalManager) SetPolicy(policy ApprovalPolicy) {
	m.policy = policy
}

// Policy returns the active policy.
func (m *ApprovalManager) Policy() ApprovalPolicy {
	return m.policy
}

// CheckApproval implements the 4.3 classification ladder.
func (m *ApprovalManager) CheckApproval(ctx ApprovalContext) ApprovalDecision {
	if !ctx.IsMutating {
		return Approved
	}

	decision := Approved

	if ctx.Command != "" {
		if matchesDangerousPattern(ctx.Command) {
			// Dangerous patterns block unconditionally, even under yolo.
			return Rejected
		}
		switch m.policy {
		case PolicyYolo:
			decision = Approved
		case PolicyNever:
			if matchesSafeAllowList(ctx.Command) {
				decision = Approved
			} else {
				return Rejected
			}
		case PolicyAuto, PolicyOnFailure:
			decision = Approved
		case PolicyAutoEdit:
			if matchesSafeAllowList(ctx.Command) {
				decision = Approved
			} else {
				decision = NeedsConfirmation
			}
		default: // on-request
			if matchesSafeAllowList(ctx.Command) {
				decision = Approved
			} else {
				decision = NeedsConfirmation
			}
		}
	}

	for _, p := range ctx.AffectedPaths {
		if pathEscapesCwd(ctx.Cwd, p) {
			decision = NeedsConfirmation
		}
	}

	if ctx.IsDangerous && m.policy != PolicyYolo {
		decision = NeedsConfirmation
	}

	return decision
}

// pathEscapesCwd reports whether path, made relative to cwd, climbs
// above it (i.e. the relative form begins with "..").
func pathEscapesCwd(cwd, path string) bool {
	if cwd == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return false
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// dangerousPatterns are command prefixes/substrings that block execution
// under every policy, including yolo.
var dangerousPatterns = []string{
	"rm -rf /",
	"rm -rf ~",
	"rm -rf *",
	"dd if=",
	"mkfs",
	":(){:|:&};:",
	"chmod 777 /",
	"chmod -r 777 /",
	"> /dev/sda",
}

func matchesDangerousPattern(command string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(command))
	for _, pattern := range dangerousPatterns {
		if strings.HasPrefix(trimmed, pattern) || strings.Contains(trimmed, pattern) {
			return true
		}
	}
	// "curl ... | sh" / "wget ... | bash" style pipe-to-shell.
	if (strings.Contains(trimmed, "curl") || strings.Contains(trimmed, "wget")) &&
		strings.Contains(trimmed, "|") &&
		(strings.Contains(trimmed, "sh") || strings.Contains(trimmed, "bash")) {
		return true
	}
	return false
}

// safeVerbs are read-only shell verbs allowed under policy=never and
// used as the "safe" branch under on-request/auto-edit.
var safeVerbs = map[string]bool{
	"ls": true, "pwd": true, "ps": true, "cat": true, "head": true,
	"tail": true, "wc": true, "echo": true, "whoami": true, "date": true,
	"env": true, "which": true, "find": true, "grep": true, "file": true,
	"stat": true, "diff": true, "printenv": true, "id": true, "uname": true,
}

// safeGitSubcommands are the read-only git subcommands allowed.
var safeGitSubcommands = map[string]bool{
	"status": true, "log": true, "diff": true, "show": true, "branch": true,
	"remote": true, "blame": true,
}

func matchesSafeAllowList(command string) bool {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return false
	}
	// Reject compound commands outright (chained/piped commands bypass
	// per-token classification and must go through confirmation).
	if strings.ContainsAny(command, ";&|") {
		return false
	}
	verb := fields[0]
	if verb == "git" {
		if len(fields) < 2 {
			return false
		}
		return safeGitSubcommands[fields[1]]
	}
	return safeVerbs[verb]
}

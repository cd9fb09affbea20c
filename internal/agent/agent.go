// Package agent implements the Agent Invoker: it builds per-CLI argv/env,
// spawns the coding-agent process through procrunner, and parses token
// usage and known error signatures out of its output.
package agent

import (
	"time"

	"github.com/red64llc/red64/pkg/models"
)

// Kind is the closed set of coding-agent CLIs the invoker knows how to drive.
type Kind string

const (
	Claude Kind = "claude"
	Gemini Kind = "gemini"
	Codex  Kind = "codex"
)

// Invocation is the transient request passed to Invoke.
type Invocation struct {
	Prompt           string
	WorkingDirectory string
	SkipPermissions  bool
	Tier             string
	Agent            Kind
	Model            string
	Sandbox          bool
	Timeout          time.Duration
}

// TokenUsage is an alias for the shared persisted token-accounting shape,
// so a Result's usage can be stored straight into a TaskEntry without
// conversion.
type TokenUsage = models.TokenUsage

// Result is the outcome of a single agent invocation.
type Result struct {
	Success     bool
	ExitCode    int
	Stdout      string
	Stderr      string
	TimedOut    bool
	TokenUsage  *TokenUsage
	ClaudeError *Error
}

// Caller is the narrow interface the Phase Executor and Task Runner
// depend on, so both can be driven with a fake in tests instead of
// spawning real child processes.
type Caller interface {
	Invoke(Invocation) Result
	Abort()
}

var _ Caller = (*Invoker)(nil)

// binaryName is the executable looked up on PATH for each agent kind.
func (k Kind) binaryName() string {
	return string(k)
}

// apiKeyEnvName is the environment variable the invoker forwards into a
// sandboxed (containerized) invocation.
func (k Kind) apiKeyEnvName() string {
	switch k {
	case Claude:
		return "ANTHROPIC_API_KEY"
	case Gemini:
		return "GEMINI_API_KEY"
	case Codex:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// InstallHint is surfaced in a CLI_NOT_FOUND error.
func (k Kind) InstallHint() string {
	switch k {
	case Claude:
		return "install with: npm install -g @anthropic-ai/claude-code"
	case Gemini:
		return "install with: npm install -g @google/gemini-cli"
	case Codex:
		return "install with: npm install -g @openai/codex"
	default:
		return "unknown agent"
	}
}

// Package phase implements the Phase Executor: it synthesizes
// the prompt for a "generating" phase and drives the Agent Invoker
// through a fixed 3-attempt linear-backoff retry loop. Non-generating
// phases (approval gates, the terminal phases, and mid-flow
// transitions handled elsewhere) return success immediately without
// invoking an agent.
package phase

import (
	"time"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/pkg/models"
)

const (
	maxAttempts = 3
	baseDelay   = 2 * time.Second
)

// Result is the outcome of executing a single phase.
type Result struct {
	Success bool
	Output  string
	Error   *agent.Error
}

// Executor drives the Agent Invoker for generating phases.
type Executor struct {
	invoker agent.Caller
	kind    agent.Kind
	model   string
	sandbox bool
	timeout time.Duration
	sleep   func(time.Duration)
}

// New creates an Executor. The delay between attempts uses time.Sleep,
// held in the unexported sleep field.
func New(invoker agent.Caller, kind agent.Kind, model string, sandbox bool, timeout time.Duration) *Executor {
	return &Executor{invoker: invoker, kind: kind, model: model, sandbox: sandbox, timeout: timeout, sleep: time.Sleep}
}

// Execute runs phaseType for feature (and, for PhaseInitializing,
// description) in workingDirectory. Non-generating phases succeed
// immediately with no output.
func (e *Executor) Execute(phaseType models.PhaseType, feature, description, workingDirectory string) Result {
	if !isGenerating(phaseType) {
		return Result{Success: true}
	}

	prompt := render(phaseType, feature, description)
	var lastErr *agent.Error
	var lastStderr string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res := e.invoker.Invoke(agent.Invocation{
			Prompt:           prompt,
			WorkingDirectory: workingDirectory,
			Agent:            e.kind,
			Model:            e.model,
			Sandbox:          e.sandbox,
			Timeout:          e.timeout,
		})

		if res.Success {
			return Result{Success: true, Output: res.Stdout}
		}

		lastErr = res.ClaudeError
		lastStderr = res.Stderr

		if lastErr != nil && !lastErr.Recoverable {
			break
		}
		if attempt < maxAttempts {
			e.sleep(baseDelay * time.Duration(attempt))
		}
	}

	if lastErr == nil {
		lastErr = &agent.Error{Code: agent.Unknown, Message: lastStderr, Recoverable: false}
	}
	return Result{Success: false, Error: lastErr}
}

// Package health implements the Health Checker: a single
// "Reply with exactly: OK" invocation used to confirm an agent CLI is
// installed, authenticated, and reachable before a feature run starts,
// folded into the same error catalogue the Agent Invoker uses.
package health

import (
	"time"

	"github.com/red64llc/red64/internal/agent"
)

const defaultTimeout = 30 * time.Second

// Params bundles a single health check's inputs.
type Params struct {
	Agent   agent.Kind
	Model   string
	Sandbox bool
	Timeout time.Duration
}

// Check invokes the agent with a minimal prompt and reports success iff
// it exits zero with no detected error pattern.
func Check(invoker agent.Caller, p Params) (ok bool, err *agent.Error) {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	res := invoker.Invoke(agent.Invocation{
		Prompt:  "Reply with exactly: OK",
		Agent:   p.Agent,
		Model:   p.Model,
		Sandbox: p.Sandbox,
		Timeout: timeout,
	})

	if res.Success {
		return true, nil
	}
	if res.ClaudeError != nil {
		return false, res.ClaudeError
	}
	if res.TimedOut {
		return false, &agent.Error{Code: agent.NetworkError, Message: "health check timed out", Recoverable: true}
	}
	return false, &agent.Error{Code: agent.Unknown, Message: res.Stderr, Recoverable: true}
}

package agent

import (
	"strings"

	"github.com/red64llc/red64/internal/procrunner"
)

// Invoker is the Agent Invoker: it builds argv/env for the
// requested agent kind, optionally wraps the call in a sandbox container,
// and parses token usage and claude-specific error signatures out of the
// finished process's output.
type Invoker struct {
	handle *procrunner.Handle
}

// NewInvoker creates an Invoker. A single Invoker drives at most one
// in-flight invocation at a time"exactly one child process
// runs at a time per orchestrator".
func NewInvoker() *Invoker {
	return &Invoker{handle: &procrunner.Handle{}}
}

// Abort terminates the in-flight invocation, if any, equivalent to an
// immediate timeout.
func (inv *Invoker) Abort() {
	inv.handle.Abort()
}

// Invoke runs a single agent call to completion and returns its result.
// It never returns a Go error: every failure mode is represented in Result.
func (inv *Invoker) Invoke(invocation Invocation) Result {
	args := buildArgv(invocation)
	command := invocation.Agent.binaryName()
	env := []string(nil)

	if invocation.Sandbox {
		command, args = sandboxCommand(invocation.Agent, invocation.WorkingDirectory, args)
	}

	res := procrunner.Run(command, args, procrunner.Options{
		Cwd:     invocation.WorkingDirectory,
		Env:     env,
		Timeout: invocation.Timeout,
	}, inv.handle)

	if res.SpawnError != nil {
		result := Result{Success: false, TimedOut: false}
		if procrunner.IsNotFound(res.SpawnError) {
			result.ClaudeError = cliNotFoundError(invocation.Agent)
		} else {
			result.ClaudeError = &Error{Code: Unknown, Message: res.SpawnError.Error(), Recoverable: true}
		}
		return result
	}

	stdout := string(res.Stdout)
	stderr := string(res.Stderr)

	result := Result{
		Success:  res.ExitCode == 0 && !res.TimedOut,
		ExitCode: res.ExitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		TimedOut: res.TimedOut,
	}

	if usage, text := extractTokenUsage(stdout); usage != nil {
		result.TokenUsage = usage
		if text != "" {
			result.Stdout = text
		}
	}

	if !result.Success && invocation.Agent == Claude {
		combined := strings.Join([]string{stdout, stderr}, "\n")
		result.ClaudeError = detectClaudeError(combined)
		if result.TimedOut {
			result.ClaudeError = &Error{Code: NetworkError, Message: "invocation timed out", Recoverable: true}
		}
	}

	return result
}

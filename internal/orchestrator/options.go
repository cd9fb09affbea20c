// Package orchestrator implements the Orchestrator Facade: the
// thin driver that composes the Flow Machine, Phase Executor, Task
// Runner, PR Gateway, Health Checker, Spec Initializer, and State Store
// into a single feature's start/approve/reject/abort lifecycle.
package orchestrator

import (
	"time"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/internal/git"
	"github.com/red64llc/red64/internal/history"
	"github.com/red64llc/red64/internal/logx"
	"github.com/red64llc/red64/internal/prgateway"
	"github.com/red64llc/red64/internal/state"
	"github.com/red64llc/red64/internal/taskrunner"
)

// RequiredConfig contains the minimal configuration needed to build a
// Facade. All fields are required and have no defaults.
type RequiredConfig struct {
	// WorkDir is the project root containing .red64/ and worktrees/.
	WorkDir string
	// Agent is the coding-agent CLI this Facade drives.
	Agent agent.Kind
	// Invoker spawns agent processes (or, in tests, a fake agent.Caller).
	Invoker agent.Caller
	// Git performs worktree/branch/commit operations against WorkDir.
	Git git.Runner
	// Store persists FlowState under WorkDir.
	Store *state.Store
}

// Option configures a Facade. Use With* functions to create Options.
type Option func(*facadeOptions)

// facadeOptions holds every optional knob a Facade can be configured with.
type facadeOptions struct {
	model        string
	sandbox      bool
	timeout      time.Duration
	baseBranch   string
	remote       string
	historyIndex *history.Index
	pr           *prgateway.Gateway
	logger       *logx.Logger
	now          func() string
	checkpoint   func(completed, total int) taskrunner.CheckpointDecision
}

// WithModel sets the model passed to every agent invocation.
func WithModel(m string) Option {
	return func(o *facadeOptions) { o.model = m }
}

// WithSandbox enables containerized agent invocations.
func WithSandbox(b bool) Option {
	return func(o *facadeOptions) { o.sandbox = b }
}

// WithTimeout overrides the default per-invocation timeout (10 minutes).
func WithTimeout(d time.Duration) Option {
	return func(o *facadeOptions) { o.timeout = d }
}

// WithBaseBranch sets the PR base branch (default "main").
func WithBaseBranch(b string) Option {
	return func(o *facadeOptions) { o.baseBranch = b }
}

// WithRemote sets the git remote pushed to before PR creation (default "origin").
func WithRemote(r string) Option {
	return func(o *facadeOptions) { o.remote = r }
}

// WithHistoryIndex wires the cross-feature SQLite index; terminal
// saves are best-effort upserted into it.
func WithHistoryIndex(idx *history.Index) Option {
	return func(o *facadeOptions) { o.historyIndex = idx }
}

// WithPRGateway sets the PR Gateway (defaults to prgateway.New()).
func WithPRGateway(g *prgateway.Gateway) Option {
	return func(o *facadeOptions) { o.pr = g }
}

// WithLogger sets the debug logger (defaults to a no-op).
func WithLogger(l *logx.Logger) Option {
	return func(o *facadeOptions) { o.logger = l }
}

// WithNow overrides the timestamp source (for deterministic tests).
func WithNow(fn func() string) Option {
	return func(o *facadeOptions) { o.now = fn }
}

// WithCheckpoint sets the decision callback invoked every N=3 completed
// tasks. The default always continues; a UI supplies this to
// pause for human review.
func WithCheckpoint(fn func(completed, total int) taskrunner.CheckpointDecision) Option {
	return func(o *facadeOptions) { o.checkpoint = fn }
}

package orchestrator

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/internal/flow"
	"github.com/red64llc/red64/internal/git"
	"github.com/red64llc/red64/internal/health"
	"github.com/red64llc/red64/internal/history"
	"github.com/red64llc/red64/internal/logx"
	"github.com/red64llc/red64/internal/phase"
	"github.com/red64llc/red64/internal/prgateway"
	"github.com/red64llc/red64/internal/specinit"
	"github.com/red64llc/red64/internal/state"
	"github.com/red64llc/red64/internal/taskrunner"
	"github.com/red64llc/red64/internal/tasks"
	"github.com/red64llc/red64/pkg/models"
)

const defaultInvocationTimeout = 10 * time.Minute

// gatePhases are the phases at which the Facade stops driving forward
// and returns control to the caller, awaiting Approve/Reject/Resume.
var gatePhases = map[models.PhaseType]bool{
	models.PhaseRequirementsApproval:   true,
	models.PhaseGapReview:              true,
	models.PhaseDesignApproval:         true,
	models.PhaseDesignValidationReview: true,
	models.PhaseTasksApproval:          true,
	models.PhasePaused:                 true,
	models.PhaseMergeDecision:          true,
}

// Result is the outcome surface returned by every Facade method:
// a success flag plus the resulting phase, never a thrown error.
type Result struct {
	Success bool
	Phase   models.Phase
	Error   string
}

// Facade is the Orchestrator Facade. One Facade drives exactly
// one feature. Every public method holds the Facade's mutex for its
// whole run, so calls into it are serialized.
type Facade struct {
	workDir    string
	agentKind  agent.Kind
	model      string
	sandbox    bool
	timeout    time.Duration
	baseBranch string
	remote     string

	invoker agent.Caller
	gitRun  git.Runner
	store   *state.Store
	pr      *prgateway.Gateway
	exec    *phase.Executor
	runner  *taskrunner.Runner
	logger  *logx.Logger
	now     func() string

	checkpoint func(completed, total int) taskrunner.CheckpointDecision

	mu      sync.Mutex
	machine *flow.Machine
	feature string
	desc    string
	st      models.FlowState
}

// New builds a Facade from RequiredConfig and any Options.
func New(req RequiredConfig, opts ...Option) *Facade {
	o := &facadeOptions{
		timeout:    defaultInvocationTimeout,
		baseBranch: "main",
		remote:     "origin",
		now:        flow.Now,
		logger:     logx.Nop(),
		pr:         prgateway.New(),
		checkpoint: func(int, int) taskrunner.CheckpointDecision { return taskrunner.Continue },
	}
	for _, opt := range opts {
		opt(o)
	}

	f := &Facade{
		workDir:    req.WorkDir,
		agentKind:  req.Agent,
		model:      o.model,
		sandbox:    o.sandbox,
		timeout:    o.timeout,
		baseBranch: o.baseBranch,
		remote:     o.remote,
		invoker:    req.Invoker,
		gitRun:     req.Git,
		store:      req.Store,
		pr:         o.pr,
		logger:     o.logger,
		now:        o.now,
		checkpoint: o.checkpoint,
		exec:       phase.New(req.Invoker, req.Agent, o.model, o.sandbox, o.timeout),
		runner:     taskrunner.New(req.Invoker, req.Git),
	}

	if o.historyIndex != nil {
		idx := o.historyIndex
		req.Store.OnTerminalSave(func(s models.FlowState) error {
			err := idx.Upsert(history.FromFlowState(s))
			if err != nil {
				f.logger.Log("history index upsert failed for %s: %v", s.Feature, err)
			}
			return err
		})
	}

	return f
}

// worktreeDir is where the feature's agent invocations and git
// operations run
func (f *Facade) worktreeDir() string {
	return filepath.Join(f.workDir, "worktrees", git.Sanitize(f.feature))
}

func (f *Facade) tasksPath() string {
	return filepath.Join(f.workDir, ".red64", "specs", f.feature, "tasks.md")
}

// Start runs the Health Checker and Spec Initializer, creates the
// feature's worktree, and drives the flow machine from idle through to
// the first approval gate.
func (f *Facade) Start(feature, description string, mode models.Mode) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.feature = git.Sanitize(feature)
	f.desc = description

	if ok, herr := health.Check(f.invoker, health.Params{Agent: f.agentKind, Model: f.model, Sandbox: f.sandbox}); !ok {
		f.logger.Log("health check failed for %s: %v", f.feature, herr)
		return Result{Success: false, Error: fmt.Sprintf("health check failed: %v", herr)}
	}

	if _, err := specinit.Init(f.workDir, f.feature, description, f.now()); err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	if !f.store.Exists(f.feature) {
		if err := f.gitRun.WorktreeCreate(f.feature); err != nil {
			return Result{Success: false, Error: err.Error()}
		}
	}

	f.machine = flow.NewMachine(f.now)
	f.st = models.FlowState{
		Feature:   f.feature,
		CreatedAt: f.now(),
		Metadata: map[string]string{
			"workingDirectory": f.worktreeDir(),
			"baseBranch":       f.baseBranch,
			"agent":            string(f.agentKind),
			"model":            f.model,
		},
	}

	f.machine.Send(flow.Event{Type: flow.EventStart, Feature: f.feature, Description: description, Mode: mode})
	return f.driveToGate()
}

// Resume reloads a previously persisted feature, rebuilding the Flow
// Machine from its saved phase/mode/history.
func (f *Facade) Resume(feature string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.feature = git.Sanitize(feature)
	loaded, err := f.store.Load(f.feature)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	f.st = loaded
	f.machine = flow.Restore(loaded.Phase, loaded.Mode, loaded.History, f.now)
	return Result{Success: true, Phase: loaded.Phase}
}

// Approve emits APPROVE for the current gate phase. Tasks-approval
// advances into implementing and delegates to the Task Runner;
// merge-decision additionally merges the open PR.
func (f *Facade) Approve() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur := f.machine.Phase()
	if cur.Type == models.PhaseMergeDecision {
		res := f.pr.MergePR(prgateway.MergePRParams{WorkDir: f.worktreeDir(), PrNumber: prNumberFromMetadata(f.st), Squash: true, DeleteBranch: true})
		if !res.Success {
			f.machine.Send(flow.Event{Type: flow.EventError, ErrorMessage: res.Error})
			return f.finishTransition()
		}
		f.machine.Send(flow.Event{Type: flow.EventMerge})
		return f.finishTransition()
	}

	f.machine.Send(flow.Event{Type: flow.EventApprove})
	if f.machine.Phase().Type == models.PhaseImplementing {
		return f.runImplementation()
	}
	return f.driveToGate()
}

// Reject emits REJECT, sending the flow back to the preceding
// generating phase. At merge-decision, REJECT skips the merge (the PR
// is left open) and the feature still completes.
func (f *Facade) Reject() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.machine.Phase().Type == models.PhaseMergeDecision {
		f.machine.Send(flow.Event{Type: flow.EventSkipMerge})
		return f.finishTransition()
	}

	f.machine.Send(flow.Event{Type: flow.EventReject})
	return f.driveToGate()
}

// ResumeImplementation continues a paused implementation run.
func (f *Facade) ResumeImplementation() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.machine.Send(flow.Event{Type: flow.EventResume})
	return f.runImplementation()
}

// Abort tears the feature down: aborts any in-flight agent call and
// task run, closes an open PR, deletes the feature branch (local and
// pushed remote), removes the worktree, and archives the state file
//. Every teardown step runs
// independently of the others' success.
func (f *Facade) Abort(reason string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runner.Abort()

	if prNum := prNumberFromMetadata(f.st); prNum != 0 {
		f.pr.ClosePR(f.worktreeDir(), prNum)
	}

	branch := "feature/" + f.feature
	if err := f.gitRun.DeleteLocalBranch(branch, true); err != nil {
		f.logger.Log("abort %s: delete local branch: %v", f.feature, err)
	}
	if err := f.gitRun.DeleteRemoteBranch(branch); err != nil {
		f.logger.Log("abort %s: delete remote branch: %v", f.feature, err)
	}
	if err := f.gitRun.WorktreeRemove(f.feature, true); err != nil {
		f.logger.Log("abort %s: remove worktree: %v", f.feature, err)
	}

	f.machine.Send(flow.Event{Type: flow.EventAbort, Reason: reason})
	f.persist()
	if err := f.store.Archive(f.feature); err != nil {
		f.logger.Log("abort %s: archive state: %v", f.feature, err)
	}

	return Result{Success: true, Phase: f.machine.Phase()}
}

// driveToGate repeatedly executes the current phase and advances the
// machine with PHASE_COMPLETE until it reaches a gate phase, a terminal
// phase, or an error.
func (f *Facade) driveToGate() Result {
	for {
		cur := f.machine.Phase()

		if cur.Type.Terminal() {
			f.persist()
			return Result{Success: cur.Type != models.PhaseError, Phase: cur}
		}
		if gatePhases[cur.Type] {
			f.persist()
			return Result{Success: true, Phase: cur}
		}
		if cur.Type == models.PhaseImplementing {
			return f.runImplementation()
		}
		if cur.Type == models.PhasePR {
			if r := f.createPR(); !r.Success {
				return r
			}
			continue
		}

		res := f.exec.Execute(cur.Type, f.feature, f.desc, f.worktreeDir())
		if !res.Success {
			msg := "phase failed"
			if res.Error != nil {
				msg = res.Error.Message
			}
			f.machine.Send(flow.Event{Type: flow.EventError, ErrorMessage: msg})
			f.persist()
			return Result{Success: false, Phase: f.machine.Phase(), Error: msg}
		}
		f.machine.Send(flow.Event{Type: flow.EventPhaseComplete})
		f.persist()
	}
}

// createPR pushes the branch and opens a pull request, advancing the
// machine to merge-decision on success.
func (f *Facade) createPR() Result {
	if res := f.pr.Push(f.worktreeDir(), f.remote); !res.Success {
		f.machine.Send(flow.Event{Type: flow.EventError, ErrorMessage: res.Error})
		f.persist()
		return Result{Success: false, Phase: f.machine.Phase(), Error: res.Error}
	}

	specDir := filepath.Join(f.workDir, ".red64", "specs", f.feature)
	out := f.pr.CreatePR(prgateway.CreatePRParams{WorkDir: f.worktreeDir(), Feature: f.feature, SpecDir: specDir, BaseBranch: f.baseBranch})
	if !out.Success {
		f.machine.Send(flow.Event{Type: flow.EventError, ErrorMessage: out.Error})
		f.persist()
		return Result{Success: false, Phase: f.machine.Phase(), Error: out.Error}
	}

	if f.st.Metadata == nil {
		f.st.Metadata = map[string]string{}
	}
	f.st.Metadata["prNumber"] = fmt.Sprintf("%d", out.PrNumber)

	f.machine.Send(flow.Event{Type: flow.EventPRCreated, PrURL: out.PrURL})
	f.persist()
	return Result{Success: true, Phase: f.machine.Phase()}
}

// runImplementation delegates to the Task Runner, persisting progress
// after every task and honoring the checkpoint callback's pause/abort
// decision.
func (f *Facade) runImplementation() Result {
	specDir := filepath.Join(f.workDir, ".red64", "specs", f.feature)
	start := startFromTaskProgress(f.st.TaskProgress)

	out := f.runner.Execute(taskrunner.Params{
		Feature:       f.feature,
		SpecDir:       specDir,
		WorkingDir:    f.worktreeDir(),
		StartFromTask: start,
		Agent:         f.agentKind,
		Model:         f.model,
		Sandbox:       f.sandbox,
		Timeout:       f.timeout,
		OnProgress:    f.recordTaskProgress,
		OnCheckpoint:  f.checkpoint,
	})

	if !out.Success {
		if out.PausedAt == 0 {
			f.machine.Send(flow.Event{Type: flow.EventError, ErrorMessage: out.Error})
			f.persist()
			return Result{Success: false, Phase: f.machine.Phase(), Error: out.Error}
		}
	}
	if out.PausedAt > 0 {
		f.machine.Send(flow.Event{Type: flow.EventPause})
		f.persist()
		return Result{Success: true, Phase: f.machine.Phase()}
	}

	f.machine.Send(flow.Event{Type: flow.EventPhaseComplete})
	f.persist()
	return f.driveToGate()
}

// recordTaskProgress is the Task Runner's OnProgress callback: it
// appends the completed task's TaskEntry, then re-derives group
// completion from the freshly rewritten tasks.md (the Task Runner
// marks the checkbox complete before calling OnProgress) so a group
// only lands in CompletedGroups once every sub-task in it is done.
func (f *Facade) recordTaskProgress(completed, total int, task models.Task) {
	if f.st.TaskProgress == nil {
		f.st.TaskProgress = &models.GroupedTaskProgress{}
	}
	tp := f.st.TaskProgress

	tp.TaskEntries = append(tp.TaskEntries, models.TaskEntry{
		ID:          task.ID,
		Title:       task.Title,
		CompletedAt: f.now(),
		Status:      models.TaskCompleted,
	})

	if all, err := tasks.Parse(f.tasksPath()); err == nil {
		groups := tasks.Group(all)
		tp.TotalGroups = len(groups)
		completedGroups := make([]int, 0, len(groups))
		for _, g := range groups {
			if g.Completed {
				completedGroups = append(completedGroups, g.Group)
			}
		}
		tp.CompletedGroups = completedGroups
	} else {
		f.logger.Log("recordTaskProgress: parse %s: %v", f.tasksPath(), err)
	}

	f.machine.Send(flow.Event{Type: flow.EventTaskComplete, TaskIndex: completed})
	f.persist()
}

func (f *Facade) finishTransition() Result {
	f.persist()
	return Result{Success: true, Phase: f.machine.Phase()}
}

// persist syncs the machine's phase/mode/history into the FlowState
// and writes it via the State Store.
func (f *Facade) persist() {
	f.st.Phase = f.machine.Phase()
	f.st.Mode = f.machine.Mode()
	f.st.History = f.machine.History()
	f.st.UpdatedAt = f.now()
	if f.st.CreatedAt == "" {
		f.st.CreatedAt = f.st.UpdatedAt
	}
	if err := f.store.Save(f.st); err != nil {
		f.logger.Log("persist %s: %v", f.feature, err)
	}
}

func startFromTaskProgress(tp *models.GroupedTaskProgress) int {
	if tp == nil {
		return 0
	}
	return len(tp.TaskEntries)
}

func prNumberFromMetadata(s models.FlowState) int {
	if s.Metadata == nil {
		return 0
	}
	var n int
	fmt.Sscanf(s.Metadata["prNumber"], "%d", &n)
	return n
}

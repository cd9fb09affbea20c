// Package taskrunner implements the Task Runner: sequential
// execution of a feature's pending tasks, one agent invocation and one
// git commit per task, with a checkpoint callback every N=3 successful
// tasks and cooperative abort wired through to the Agent Invoker.
package taskrunner

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/internal/git"
	"github.com/red64llc/red64/internal/tasks"
	"github.com/red64llc/red64/pkg/models"
)

// checkpointEvery is the fixed cadence at which onCheckpoint fires.
const checkpointEvery = 3

// CheckpointDecision is returned by the onCheckpoint callback.
type CheckpointDecision string

const (
	Continue CheckpointDecision = "continue"
	Pause    CheckpointDecision = "pause"
	Abort    CheckpointDecision = "abort"
)

// Params bundles a single Execute call's inputs.
type Params struct {
	Feature       string
	SpecDir       string
	WorkingDir    string
	StartFromTask int
	OnProgress    func(completed, total int, task models.Task)
	OnCheckpoint  func(completed, total int) CheckpointDecision
	Agent         agent.Kind
	Model         string
	Sandbox       bool
	Timeout       time.Duration
}

// Outcome is the result of a full Execute call.
type Outcome struct {
	Success        bool
	CompletedTasks int
	TotalTasks     int
	PausedAt       int
	Error          string
}

// Runner drives task execution. A single Runner instance is good for
// one in-flight Execute call; Abort is safe to call concurrently with
// Execute from another goroutine.
type Runner struct {
	invoker agent.Caller
	git     git.Runner
	aborted atomic.Bool
}

// New creates a Runner over the given Agent Invoker and Git Gateway.
func New(invoker agent.Caller, gitRunner git.Runner) *Runner {
	return &Runner{invoker: invoker, git: gitRunner}
}

// Abort sets the cooperative-cancellation flag and terminates any
// in-flight agent invocation immediately.
func (r *Runner) Abort() {
	r.aborted.Store(true)
	r.invoker.Abort()
}

// Execute parses tasks.md, slices to the pending set from
// StartFromTask, and runs each task to completion in order.
func (r *Runner) Execute(p Params) Outcome {
	tasksPath := p.SpecDir + "/tasks.md"
	all, err := tasks.Parse(tasksPath)
	if err != nil {
		return Outcome{Success: false, Error: fmt.Sprintf("parse tasks: %v", err)}
	}

	pending := make([]models.Task, 0, len(all))
	for _, t := range all {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	if p.StartFromTask > 0 && p.StartFromTask <= len(pending) {
		pending = pending[p.StartFromTask:]
	}

	total := len(all)
	completed := total - len(pending)

	for _, task := range pending {
		if r.aborted.Load() {
			return Outcome{Success: false, Error: "aborted by user", CompletedTasks: completed, TotalTasks: total}
		}

		res := r.invoker.Invoke(agent.Invocation{
			Prompt:           taskPrompt(p.Feature, task),
			WorkingDirectory: p.WorkingDir,
			Agent:            p.Agent,
			Model:            p.Model,
			Sandbox:          p.Sandbox,
			Timeout:          p.Timeout,
		})
		if !res.Success {
			return Outcome{Success: false, Error: res.Stderr, CompletedTasks: completed, TotalTasks: total}
		}

		if err := tasks.MarkTaskComplete(tasksPath, task.ID); err != nil {
			return Outcome{Success: false, Error: fmt.Sprintf("mark task %s complete: %v", task.ID, err), CompletedTasks: completed, TotalTasks: total}
		}

		if err := r.commitTask(p.WorkingDir, task); err != nil {
			return Outcome{Success: false, Error: err.Error(), CompletedTasks: completed, TotalTasks: total}
		}

		completed++
		if p.OnProgress != nil {
			p.OnProgress(completed, total, task)
		}

		if completed%checkpointEvery == 0 && p.OnCheckpoint != nil {
			switch p.OnCheckpoint(completed, total) {
			case Pause:
				return Outcome{Success: true, CompletedTasks: completed, TotalTasks: total, PausedAt: completed}
			case Abort:
				return Outcome{Success: false, Error: "aborted by user", CompletedTasks: completed, TotalTasks: total}
			}
		}
	}

	return Outcome{Success: true, CompletedTasks: completed, TotalTasks: total}
}

func (r *Runner) commitTask(workDir string, task models.Task) error {
	status, err := r.git.Status(workDir)
	if err != nil {
		return fmt.Errorf("status before task %s: %w", task.ID, err)
	}
	if !status.HasChanges {
		return nil
	}
	if err := r.git.StageAll(workDir); err != nil {
		return fmt.Errorf("stage task %s: %w", task.ID, err)
	}
	if _, err := r.git.Commit(workDir, commitMessage(task)); err != nil {
		return fmt.Errorf("commit task %s: %w", task.ID, err)
	}
	return nil
}

func commitMessage(task models.Task) string {
	return fmt.Sprintf("task %s: %s", task.ID, task.Title)
}

func taskPrompt(feature string, task models.Task) string {
	return fmt.Sprintf(
		"Implement task %s (%s) for feature %s.\n\n%s",
		task.ID, task.Title, feature, task.Description,
	)
}

package taskrunner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/internal/git"
)

type fakeCaller struct {
	calls   int
	fail    bool
	aborted bool
}

func (f *fakeCaller) Invoke(agent.Invocation) agent.Result {
	f.calls++
	if f.fail {
		return agent.Result{Success: false, Stderr: "boom"}
	}
	return agent.Result{Success: true, Stdout: "ok"}
}

func (f *fakeCaller) Abort() { f.aborted = true }

type fakeGit struct{}

func (fakeGit) WorktreeCreate(string) error                      { return nil }
func (fakeGit) WorktreeList() ([]git.WorktreeInfo, error)         { return nil, nil }
func (fakeGit) WorktreeRemove(string, bool) error                 { return nil }
func (fakeGit) DeleteLocalBranch(string, bool) error              { return nil }
func (fakeGit) DeleteRemoteBranch(string) error                   { return nil }
func (fakeGit) Status(string) (git.Status, error)                 { return git.Status{HasChanges: true}, nil }
func (fakeGit) StageAll(string) error                              { return nil }
func (fakeGit) Commit(string, string) (string, error)              { return "abc1234", nil }
func (fakeGit) CountFeatureCommits(string, string) (int, error)   { return 1, nil }

const tasksContent = `- [ ] 1. First task
  - do the thing
- [ ] 2. Second task
  - do another thing
- [ ] 3. Third task
`

func writeTasks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.md")
	if err := os.WriteFile(path, []byte(tasksContent), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestExecuteRunsAllPendingTasks(t *testing.T) {
	specDir := writeTasks(t)
	caller := &fakeCaller{}
	r := New(caller, fakeGit{})

	out := r.Execute(Params{
		Feature:    "widget",
		SpecDir:    specDir,
		WorkingDir: specDir,
	})
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.CompletedTasks != 3 || out.TotalTasks != 3 {
		t.Fatalf("expected 3/3 completed, got %+v", out)
	}
	if caller.calls != 3 {
		t.Fatalf("expected 3 invocations, got %d", caller.calls)
	}
}

func TestExecuteStopsOnAgentFailure(t *testing.T) {
	specDir := writeTasks(t)
	caller := &fakeCaller{fail: true}
	r := New(caller, fakeGit{})

	out := r.Execute(Params{Feature: "widget", SpecDir: specDir, WorkingDir: specDir})
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Error != "boom" {
		t.Fatalf("expected stderr propagated, got %q", out.Error)
	}
	if caller.calls != 1 {
		t.Fatalf("expected exactly 1 invocation before stopping, got %d", caller.calls)
	}
}

func TestAbortStopsBeforeNextTask(t *testing.T) {
	specDir := writeTasks(t)
	caller := &fakeCaller{}
	r := New(caller, fakeGit{})
	r.Abort()

	out := r.Execute(Params{Feature: "widget", SpecDir: specDir, WorkingDir: specDir})
	if out.Success {
		t.Fatal("expected abort to fail the run")
	}
	if caller.calls != 0 {
		t.Fatalf("expected no invocations after abort, got %d", caller.calls)
	}
	if !caller.aborted {
		t.Fatal("expected invoker Abort() to have been called")
	}
}

func TestCheckpointEveryThreeTasks(t *testing.T) {
	content := "- [ ] 1. a\n- [ ] 2. b\n- [ ] 3. c\n- [ ] 4. d\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	caller := &fakeCaller{}
	r := New(caller, fakeGit{})

	var checkpoints []int
	out := r.Execute(Params{
		Feature:    "widget",
		SpecDir:    dir,
		WorkingDir: dir,
		OnCheckpoint: func(completed, total int) CheckpointDecision {
			checkpoints = append(checkpoints, completed)
			if completed == 3 {
				return Pause
			}
			return Continue
		},
	})

	if !out.Success || out.PausedAt != 3 {
		t.Fatalf("expected pause at 3, got %+v", out)
	}
	if len(checkpoints) != 1 || checkpoints[0] != 3 {
		t.Fatalf("expected checkpoint only at 3, got %v", checkpoints)
	}
}

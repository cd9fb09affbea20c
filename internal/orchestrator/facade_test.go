package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/internal/flow"
	"github.com/red64llc/red64/internal/git"
	"github.com/red64llc/red64/internal/prgateway"
	"github.com/red64llc/red64/internal/state"
	"github.com/red64llc/red64/pkg/models"
)

type fakeCaller struct{}

func (fakeCaller) Invoke(agent.Invocation) agent.Result { return agent.Result{Success: true, Stdout: "OK"} }
func (fakeCaller) Abort()                                {}

type fakeGit struct{}

func (fakeGit) WorktreeCreate(string) error                    { return nil }
func (fakeGit) WorktreeList() ([]git.WorktreeInfo, error)       { return nil, nil }
func (fakeGit) WorktreeRemove(string, bool) error               { return nil }
func (fakeGit) DeleteLocalBranch(string, bool) error            { return nil }
func (fakeGit) DeleteRemoteBranch(string) error                 { return nil }
func (fakeGit) Status(string) (git.Status, error)               { return git.Status{HasChanges: true}, nil }
func (fakeGit) StageAll(string) error                            { return nil }
func (fakeGit) Commit(string, string) (string, error)            { return "abc1234", nil }
func (fakeGit) CountFeatureCommits(string, string) (int, error) { return 1, nil }

func fakeRun(dir, name string, args ...string) (string, error) {
	joined := strings.Join(args, " ")
	if name == "gh" && strings.Contains(joined, "pr create") {
		return "https://github.com/acme/widget/pull/42", nil
	}
	return "", nil
}

var tick int

func fakeNow() string {
	tick++
	return "2026-01-01T00:00:0" + string(rune('0'+tick)) + "Z"
}

func newTestFacade(t *testing.T) (*Facade, string) {
	t.Helper()
	workDir := t.TempDir()
	st := state.New(workDir)
	f := New(RequiredConfig{
		WorkDir: workDir,
		Agent:   agent.Claude,
		Invoker: fakeCaller{},
		Git:     fakeGit{},
		Store:   st,
	}, WithPRGateway(prgateway.NewWithRunner(fakeRun)), WithNow(fakeNow))
	return f, workDir
}

func TestStartDrivesToRequirementsApproval(t *testing.T) {
	f, _ := newTestFacade(t)
	res := f.Start("Widget Feature", "a widget", models.Greenfield)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Phase.Type != models.PhaseRequirementsApproval {
		t.Fatalf("expected requirements-approval, got %s", res.Phase.Type)
	}
}

func TestFullGreenfieldLifecycleReachesComplete(t *testing.T) {
	f, workDir := newTestFacade(t)

	res := f.Start("widget", "a widget", models.Greenfield)
	if res.Phase.Type != models.PhaseRequirementsApproval {
		t.Fatalf("expected requirements-approval, got %+v", res)
	}

	res = f.Approve()
	if res.Phase.Type != models.PhaseDesignApproval {
		t.Fatalf("expected design-approval, got %+v", res)
	}

	res = f.Approve()
	if res.Phase.Type != models.PhaseTasksApproval {
		t.Fatalf("expected tasks-approval, got %+v", res)
	}

	specDir := filepath.Join(workDir, ".red64", "specs", "widget")
	tasksPath := filepath.Join(specDir, "tasks.md")
	if err := os.WriteFile(tasksPath, []byte("- [ ] 1. only task\n  - do it\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res = f.Approve()
	if !res.Success {
		t.Fatalf("expected implementation to succeed, got %+v", res)
	}
	if res.Phase.Type != models.PhaseMergeDecision {
		t.Fatalf("expected merge-decision, got %+v", res)
	}
	if tp := f.st.TaskProgress; tp == nil || len(tp.CompletedGroups) != 1 || tp.CompletedGroups[0] != 1 || tp.TotalGroups != 1 {
		t.Fatalf("expected group 1 complete out of 1 total, got %+v", tp)
	}

	res = f.Approve()
	if !res.Success || res.Phase.Type != models.PhaseComplete {
		t.Fatalf("expected complete, got %+v", res)
	}
}

// TestRecordTaskProgressGroupCompletionRequiresAllSubtasks verifies a
// multi-sub-task group is only reported complete once every sub-task
// in it has status completed, not on the first sub-task seen.
func TestRecordTaskProgressGroupCompletionRequiresAllSubtasks(t *testing.T) {
	f, workDir := newTestFacade(t)
	f.feature = "widget"
	f.st = models.FlowState{Feature: "widget"}

	specDir := filepath.Join(workDir, ".red64", "specs", "widget")
	if err := os.MkdirAll(specDir, 0o755); err != nil {
		t.Fatal(err)
	}
	tasksPath := filepath.Join(specDir, "tasks.md")
	if err := os.WriteFile(tasksPath, []byte(
		"- [x] 1.1 first half\n  - done\n"+
			"- [ ] 1.2 second half\n  - not done\n",
	), 0o644); err != nil {
		t.Fatal(err)
	}

	f.machine = flow.NewMachine(f.now)
	f.recordTaskProgress(1, 2, models.Task{ID: "1.1", Title: "first half", Completed: true})

	tp := f.st.TaskProgress
	if tp == nil {
		t.Fatal("expected TaskProgress to be populated")
	}
	if tp.TotalGroups != 1 {
		t.Fatalf("expected 1 total group, got %d", tp.TotalGroups)
	}
	if len(tp.CompletedGroups) != 0 {
		t.Fatalf("expected group 1 not yet complete (1.2 still pending), got %+v", tp.CompletedGroups)
	}

	if err := os.WriteFile(tasksPath, []byte(
		"- [x] 1.1 first half\n  - done\n"+
			"- [x] 1.2 second half\n  - done\n",
	), 0o644); err != nil {
		t.Fatal(err)
	}
	f.recordTaskProgress(2, 2, models.Task{ID: "1.2", Title: "second half", Completed: true})

	tp = f.st.TaskProgress
	if len(tp.CompletedGroups) != 1 || tp.CompletedGroups[0] != 1 {
		t.Fatalf("expected group 1 complete once both sub-tasks are done, got %+v", tp.CompletedGroups)
	}
}

func TestAbortTearsDownAndArchives(t *testing.T) {
	f, workDir := newTestFacade(t)
	f.Start("widget", "a widget", models.Greenfield)

	res := f.Abort("user requested")
	if !res.Success || res.Phase.Type != models.PhaseAborted {
		t.Fatalf("expected aborted, got %+v", res)
	}

	archived := filepath.Join(workDir, ".red64", "flows", "widget", "state.archived.json")
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("expected archived state file, got %v", err)
	}
}

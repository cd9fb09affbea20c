package phase

import (
	"testing"
	"time"

	"github.com/red64llc/red64/internal/agent"
	"github.com/red64llc/red64/pkg/models"
)

func TestExecuteNonGeneratingPhaseSucceedsImmediately(t *testing.T) {
	e := New(agent.NewInvoker(), agent.Claude, "", false, time.Second)
	res := e.Execute(models.PhaseRequirementsApproval, "widget", "", "/tmp")
	if !res.Success {
		t.Fatalf("expected non-generating phase to succeed trivially, got %+v", res)
	}
}

func TestIsGeneratingCoversOnlyTemplatedPhases(t *testing.T) {
	for p := range templates {
		if !isGenerating(p) {
			t.Errorf("phase %s has a template but isGenerating returned false", p)
		}
	}
	if isGenerating(models.PhaseTasksApproval) {
		t.Error("tasks-approval should not be a generating phase")
	}
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	got := render(models.PhaseInitializing, "widget", "a thing")
	if got == templates[models.PhaseInitializing] {
		t.Fatal("expected placeholders to be substituted")
	}
	want := "Initialize the spec-driven workflow for feature widget. Project description: a thing"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

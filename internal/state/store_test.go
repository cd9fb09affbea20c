package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/red64llc/red64/pkg/models"
)

func sampleState(feature string) models.FlowState {
	return models.FlowState{
		Feature:   feature,
		Phase:     models.Phase{Type: models.PhaseInitializing, Feature: feature},
		Mode:      models.Greenfield,
		CreatedAt: "2026-07-30T00:00:00Z",
		UpdatedAt: "2026-07-30T00:00:00Z",
		History:   []models.HistoryEntry{{Phase: models.Phase{Type: models.PhaseIdle}, Timestamp: "2026-07-30T00:00:00Z"}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	in := sampleState("widget")
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load("widget")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Feature != in.Feature || out.Phase.Type != in.Phase.Type || out.Mode != in.Mode {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
	if out.Version != models.CurrentStateVersion {
		t.Fatalf("expected version %d, got %d", models.CurrentStateVersion, out.Version)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadMalformedIsNotFound(t *testing.T) {
	dir := t.TempDir()
	featDir := filepath.Join(dir, ".red64", "flows", "widget")
	if err := os.MkdirAll(featDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(featDir, stateFileName), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := New(dir)
	if _, err := store.Load("widget"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for malformed file, got %v", err)
	}
}

func TestArchiveThenExists(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	in := sampleState("widget")
	if err := store.Save(in); err != nil {
		t.Fatal(err)
	}

	if err := store.Archive("widget"); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !store.Exists("widget") {
		t.Fatal("expected archived feature to still Exist")
	}
	if _, err := store.Load("widget"); err != ErrNotFound {
		t.Fatalf("Load after archive should be not-found (renamed file), got %v", err)
	}

	// archiving a second time (no state.json left) is a no-op
	if err := store.Archive("widget"); err != nil {
		t.Fatalf("second Archive should be a no-op, got %v", err)
	}
}

func TestMigrateLegacyDocument(t *testing.T) {
	legacy := map[string]any{
		"feature":   "widget",
		"createdAt": "2026-01-01T00:00:00Z",
		"updatedAt": "2026-01-01T00:00:00Z",
		"phase":     map[string]any{"type": "requirements-review"},
		"history":   []any{"idle", "requirements-review"},
		"taskProgress": map[string]any{
			"completedTasks": []any{"1", "1.2", "2"},
			"totalTasks":     3,
		},
	}

	data, err := migrate(legacy)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var out models.FlowState
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal migrated: %v", err)
	}

	if out.Version != 2 {
		t.Fatalf("expected version 2, got %d", out.Version)
	}
	if out.Phase.Type != models.PhaseRequirementsApproval {
		t.Fatalf("expected renamed phase tag, got %s", out.Phase.Type)
	}
	if len(out.History) != 2 || out.History[1].Phase.Type != models.PhaseRequirementsApproval {
		t.Fatalf("expected history entries with renamed tags, got %+v", out.History)
	}
	if out.TaskProgress == nil || len(out.TaskProgress.TaskEntries) != 3 {
		t.Fatalf("expected 3 synthesized task entries, got %+v", out.TaskProgress)
	}
	for _, e := range out.TaskProgress.TaskEntries {
		if e.Title != "" {
			t.Fatalf("synthesized entries should have empty titles, got %q", e.Title)
		}
		if e.Status != models.TaskCompleted {
			t.Fatalf("synthesized entries should be completed, got %s", e.Status)
		}
	}
}

func TestAcquireLockRefusesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	if _, err := store.AcquireLock("widget"); err != nil {
		t.Fatalf("first AcquireLock: %v", err)
	}
	if _, err := store.AcquireLock("widget"); err == nil {
		t.Fatal("expected second AcquireLock to fail while first is live")
	}
	if err := store.ReleaseLock("widget"); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}
	if _, err := store.AcquireLock("widget"); err != nil {
		t.Fatalf("AcquireLock after release should succeed: %v", err)
	}
}

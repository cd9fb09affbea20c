// Package state implements the State Store: atomic JSON
// persistence of a feature's FlowState under
// <workDir>/.red64/flows/<feature>/state.json, with schema migration
// and an on-disk advisory lock as a defense-in-depth backstop against
// two processes writing the same feature concurrently.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/red64llc/red64/pkg/models"
)

// ErrNotFound is returned by Load when a feature has no state file, or
// the file exists but cannot be parsed as a FlowState. A missing or
// malformed file is "not found", never a hard error
var ErrNotFound = errors.New("state: not found")

const (
	stateFileName    = "state.json"
	archivedFileName = "state.archived.json"
	lockFileName     = ".lock"
)

// Store is the State Store. workDir is the project root containing the
// .red64/ tree.
type Store struct {
	workDir string

	// onTerminal, if set, is invoked after every Save that lands on a
	// terminal phase, to best-effort upsert the cross-feature history
	// index. Failures are the caller's responsibility
	// to log; the Store itself never fails Save because of this hook.
	onTerminal func(models.FlowState) error
}

// New creates a Store rooted at workDir.
func New(workDir string) *Store {
	return &Store{workDir: workDir}
}

// OnTerminalSave registers the best-effort history-index hook.
func (s *Store) OnTerminalSave(fn func(models.FlowState) error) {
	s.onTerminal = fn
}

func (s *Store) featureDir(feature string) string {
	return filepath.Join(s.workDir, ".red64", "flows", feature)
}

// Save atomically persists state, stamping the current schema version
// and creating the feature directory if needed.
func (s *Store) Save(state models.FlowState) error {
	dir := s.featureDir(state.Feature)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: mkdir %s: %w", dir, err)
	}

	state.Version = models.CurrentStateVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal %s: %w", state.Feature, err)
	}

	path := filepath.Join(dir, stateFileName)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("state: write %s: %w", path, err)
	}

	if state.Phase.Type.Terminal() && s.onTerminal != nil {
		_ = s.onTerminal(state)
	}
	return nil
}

// Load reads and migrates a feature's state. ErrNotFound is returned
// for both an absent file and a file that fails to parse.
func (s *Store) Load(feature string) (models.FlowState, error) {
	path := filepath.Join(s.featureDir(feature), stateFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return models.FlowState{}, ErrNotFound
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.FlowState{}, ErrNotFound
	}
	if !validShape(raw) {
		return models.FlowState{}, ErrNotFound
	}

	migrated, err := migrate(raw)
	if err != nil {
		return models.FlowState{}, fmt.Errorf("state: migrate %s: %w", feature, err)
	}

	var out models.FlowState
	if err := json.Unmarshal(migrated, &out); err != nil {
		return models.FlowState{}, fmt.Errorf("state: unmarshal %s after migration: %w", feature, err)
	}
	return out, nil
}

// validShape checks the minimal field set required of any version's
// document before migration is attempted.
func validShape(raw map[string]any) bool {
	if _, ok := raw["feature"].(string); !ok {
		return false
	}
	phase, ok := raw["phase"].(map[string]any)
	if !ok {
		return false
	}
	if _, ok := phase["type"].(string); !ok {
		return false
	}
	if _, ok := raw["createdAt"].(string); !ok {
		return false
	}
	if _, ok := raw["updatedAt"].(string); !ok {
		return false
	}
	return true
}

// Exists reports whether a (possibly archived) state file is present.
func (s *Store) Exists(feature string) bool {
	dir := s.featureDir(feature)
	if _, err := os.Stat(filepath.Join(dir, stateFileName)); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, archivedFileName)); err == nil {
		return true
	}
	return false
}

// Delete removes a feature's entire flow directory.
func (s *Store) Delete(feature string) error {
	if err := os.RemoveAll(s.featureDir(feature)); err != nil {
		return fmt.Errorf("state: delete %s: %w", feature, err)
	}
	return nil
}

// Archive renames state.json to state.archived.json. A missing file is
// a no-op, not an error.
func (s *Store) Archive(feature string) error {
	dir := s.featureDir(feature)
	src := filepath.Join(dir, stateFileName)
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	dst := filepath.Join(dir, archivedFileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("state: archive %s: %w", feature, err)
	}
	return nil
}

// List returns every feature with a live (non-archived) state file.
func (s *Store) List() ([]models.FlowState, error) {
	root := filepath.Join(s.workDir, ".red64", "flows")
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: list %s: %w", root, err)
	}

	var out []models.FlowState
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		st, err := s.Load(e.Name())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

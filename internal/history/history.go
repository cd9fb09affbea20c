// Package history implements the derived, best-effort cross-feature
// index: one row per terminal FlowState, stored in a pure-Go SQLite
// database at
// <workDir>/.red64/history.db so `red64 status --all` can report
// across features without re-reading every flow directory.
//
// This index is never authoritative. The State Store's JSON files
// remain the single source of truth; this database is rebuildable
// from them at any time and its failures are never propagated as
// State Store errors.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/red64llc/red64/pkg/models"
)

// Index wraps the SQLite-backed cross-feature history table.
type Index struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS feature_runs (
	feature         TEXT PRIMARY KEY,
	mode            TEXT NOT NULL,
	final_phase     TEXT NOT NULL,
	started_at      TEXT NOT NULL,
	finished_at     TEXT NOT NULL,
	total_tasks     INTEGER NOT NULL DEFAULT 0,
	completed_tasks INTEGER NOT NULL DEFAULT 0,
	cost_usd        REAL NOT NULL DEFAULT 0
);
`

// Open opens (creating if absent) the history database at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Upsert records or replaces a feature's terminal run, called by the
// State Store's best-effort hook whenever a Save lands on a terminal
// phase.
func (idx *Index) Upsert(row models.HistoryIndexRow) error {
	_, err := idx.db.Exec(`
		INSERT INTO feature_runs (feature, mode, final_phase, started_at, finished_at, total_tasks, completed_tasks, cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feature) DO UPDATE SET
			mode=excluded.mode, final_phase=excluded.final_phase, finished_at=excluded.finished_at,
			total_tasks=excluded.total_tasks, completed_tasks=excluded.completed_tasks, cost_usd=excluded.cost_usd
	`, row.Feature, string(row.Mode), string(row.FinalPhase), row.StartedAt, row.FinishedAt, row.TotalTasks, row.CompletedTasks, row.CostUsd)
	if err != nil {
		return fmt.Errorf("history: upsert %s: %w", row.Feature, err)
	}
	return nil
}

// List returns every recorded feature run, most recently finished first.
func (idx *Index) List() ([]models.HistoryIndexRow, error) {
	rows, err := idx.db.Query(`
		SELECT feature, mode, final_phase, started_at, finished_at, total_tasks, completed_tasks, cost_usd
		FROM feature_runs ORDER BY finished_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryIndexRow
	for rows.Next() {
		var r models.HistoryIndexRow
		var mode, phase string
		if err := rows.Scan(&r.Feature, &mode, &phase, &r.StartedAt, &r.FinishedAt, &r.TotalTasks, &r.CompletedTasks, &r.CostUsd); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		r.Mode = models.Mode(mode)
		r.FinalPhase = models.PhaseType(phase)
		out = append(out, r)
	}
	return out, rows.Err()
}

// FromFlowState derives a HistoryIndexRow from a terminal FlowState.
func FromFlowState(s models.FlowState) models.HistoryIndexRow {
	row := models.HistoryIndexRow{
		Feature:    s.Feature,
		Mode:       s.Mode,
		FinalPhase: s.Phase.Type,
		StartedAt:  s.CreatedAt,
		FinishedAt: s.UpdatedAt,
	}
	if s.TaskProgress != nil {
		row.TotalTasks = len(s.TaskProgress.TaskEntries)
		for _, e := range s.TaskProgress.TaskEntries {
			if e.Status == models.TaskCompleted {
				row.CompletedTasks++
			}
			if e.TokenUsage != nil {
				row.CostUsd += e.TokenUsage.CostUsd
			}
		}
	}
	return row
}

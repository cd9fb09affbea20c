package models

// HistoryIndexRow is one row of the derived, best-effort cross-feature
// SQLite index. Purely a read-path convenience for
// `red64 status --all`; never consulted for correctness.
type HistoryIndexRow struct {
	Feature        string
	Mode           Mode
	FinalPhase     PhaseType
	StartedAt      string
	FinishedAt     string
	TotalTasks     int
	CompletedTasks int
	CostUsd        float64
}

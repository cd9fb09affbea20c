// Package models holds the data types shared between the flow engine,
// the state store, and the CLI: phases, tasks, token accounting, and
// history rows.
package models

// PhaseType names a node in the flow state machine. Terminal
// phases are Complete, Aborted, and Error.
type PhaseType string

const (
	PhaseIdle                    PhaseType = "idle"
	PhaseInitializing            PhaseType = "initializing"
	PhaseRequirementsGenerating  PhaseType = "requirements-generating"
	PhaseRequirementsApproval    PhaseType = "requirements-approval"
	PhaseGapAnalysis             PhaseType = "gap-analysis"
	PhaseGapReview               PhaseType = "gap-review"
	PhaseDesignGenerating        PhaseType = "design-generating"
	PhaseDesignApproval          PhaseType = "design-approval"
	PhaseDesignValidation        PhaseType = "design-validation"
	PhaseDesignValidationReview  PhaseType = "design-validation-review"
	PhaseTasksGenerating         PhaseType = "tasks-generating"
	PhaseTasksApproval           PhaseType = "tasks-approval"
	PhaseImplementing            PhaseType = "implementing"
	PhasePaused                  PhaseType = "paused"
	PhaseValidation              PhaseType = "validation"
	PhasePR                      PhaseType = "pr"
	PhaseMergeDecision           PhaseType = "merge-decision"
	PhaseComplete                PhaseType = "complete"
	PhaseAborted                 PhaseType = "aborted"
	PhaseError                   PhaseType = "error"
)

// Terminal reports whether a phase accepts no further transitions other
// than the universal ABORT/ERROR no-ops.
func (p PhaseType) Terminal() bool {
	switch p {
	case PhaseComplete, PhaseAborted, PhaseError:
		return true
	default:
		return false
	}
}

// Mode selects which sub-flows the state machine traverses; it is
// locked in at START and never changes for the life of a FlowState.
type Mode string

const (
	Greenfield Mode = "greenfield"
	Brownfield Mode = "brownfield"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == Greenfield || m == Brownfield
}

// Phase is the tagged variant carrying phase-specific fields. Only the
// fields relevant to Type are populated; the rest are left zero.
type Phase struct {
	Type PhaseType `json:"type"`

	Feature     string `json:"feature,omitempty"`
	Description string `json:"description,omitempty"`

	CurrentTask int `json:"currentTask,omitempty"`
	TotalTasks  int `json:"totalTasks,omitempty"`

	PausedAt string `json:"pausedAt,omitempty"`

	PrURL string `json:"prUrl,omitempty"`

	Reason       string `json:"reason,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// HistoryEntry records one transition. Appended, never mutated.
type HistoryEntry struct {
	Phase     Phase             `json:"phase"`
	Timestamp string            `json:"timestamp"`
	Event     string            `json:"event,omitempty"`
	SubStep   string            `json:"subStep,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

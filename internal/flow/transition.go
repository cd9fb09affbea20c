package flow

import "github.com/red64llc/red64/pkg/models"

// Transition is the pure function at the heart of the flow engine: given the
// current phase, an incoming event, and the feature's locked mode, it
// returns the next phase. Any (phase, event) pair not named below is a
// no-op that returns phase unchanged. It never mutates its arguments.
func Transition(phase models.Phase, event Event, mode models.Mode) models.Phase {
	if phase.Type.Terminal() {
		return phase
	}

	if event.Type == EventAbort {
		return models.Phase{Type: models.PhaseAborted, Feature: phase.Feature, Reason: event.Reason}
	}
	if event.Type == EventError {
		return models.Phase{Type: models.PhaseError, Feature: phase.Feature, ErrorMessage: event.ErrorMessage}
	}

	feature := phase.Feature
	if event.Feature != "" {
		feature = event.Feature
	}

	switch phase.Type {
	case models.PhaseIdle:
		if event.Type == EventStart {
			return models.Phase{Type: models.PhaseInitializing, Feature: event.Feature, Description: event.Description}
		}

	case models.PhaseInitializing:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhaseRequirementsGenerating, Feature: feature}
		}

	case models.PhaseRequirementsGenerating:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhaseRequirementsApproval, Feature: feature}
		}

	case models.PhaseRequirementsApproval:
		switch event.Type {
		case EventApprove:
			if mode == models.Brownfield {
				return models.Phase{Type: models.PhaseGapAnalysis, Feature: feature}
			}
			return models.Phase{Type: models.PhaseDesignGenerating, Feature: feature}
		case EventReject:
			return models.Phase{Type: models.PhaseRequirementsGenerating, Feature: feature}
		}

	case models.PhaseGapAnalysis:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhaseGapReview, Feature: feature}
		}

	case models.PhaseGapReview:
		switch event.Type {
		case EventApprove:
			return models.Phase{Type: models.PhaseDesignGenerating, Feature: feature}
		case EventReject:
			return models.Phase{Type: models.PhaseRequirementsGenerating, Feature: feature}
		}

	case models.PhaseDesignGenerating:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhaseDesignApproval, Feature: feature}
		}

	case models.PhaseDesignApproval:
		switch event.Type {
		case EventApprove:
			if mode == models.Brownfield {
				return models.Phase{Type: models.PhaseDesignValidation, Feature: feature}
			}
			return models.Phase{Type: models.PhaseTasksGenerating, Feature: feature}
		case EventReject:
			return models.Phase{Type: models.PhaseDesignGenerating, Feature: feature}
		}

	case models.PhaseDesignValidation:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhaseDesignValidationReview, Feature: feature}
		}

	case models.PhaseDesignValidationReview:
		switch event.Type {
		case EventApprove:
			return models.Phase{Type: models.PhaseTasksGenerating, Feature: feature}
		case EventReject:
			return models.Phase{Type: models.PhaseDesignGenerating, Feature: feature}
		}

	case models.PhaseTasksGenerating:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhaseTasksApproval, Feature: feature}
		}

	case models.PhaseTasksApproval:
		switch event.Type {
		case EventApprove:
			return models.Phase{Type: models.PhaseImplementing, Feature: feature, CurrentTask: 1, TotalTasks: 0}
		case EventReject:
			return models.Phase{Type: models.PhaseTasksGenerating, Feature: feature}
		}

	case models.PhaseImplementing:
		switch event.Type {
		case EventTaskComplete:
			next := phase
			next.CurrentTask = event.TaskIndex
			return next
		case EventPause:
			return models.Phase{Type: models.PhasePaused, Feature: feature, PausedAt: phase.PausedAt, TotalTasks: phase.TotalTasks}
		case EventPhaseComplete:
			return models.Phase{Type: models.PhaseValidation, Feature: feature}
		}

	case models.PhasePaused:
		if event.Type == EventResume {
			return models.Phase{Type: models.PhaseImplementing, Feature: feature, TotalTasks: phase.TotalTasks}
		}

	case models.PhaseValidation:
		if event.Type == EventPhaseComplete {
			return models.Phase{Type: models.PhasePR, Feature: feature}
		}

	case models.PhasePR:
		if event.Type == EventPRCreated {
			return models.Phase{Type: models.PhaseMergeDecision, Feature: feature, PrURL: event.PrURL}
		}

	case models.PhaseMergeDecision:
		if event.Type == EventMerge || event.Type == EventSkipMerge {
			return models.Phase{Type: models.PhaseComplete, Feature: feature}
		}
	}

	return phase
}

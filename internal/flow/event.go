// Package flow implements the Flow State Machine: a pure
// transition function over the phase variant, plus a stateful wrapper
// that records history and notifies subscribers.
package flow

import "github.com/red64llc/red64/pkg/models"

// EventType is the closed set of events the flow machine accepts.
type EventType string

const (
	EventStart         EventType = "START"
	EventPhaseComplete EventType = "PHASE_COMPLETE"
	EventApprove       EventType = "APPROVE"
	EventReject        EventType = "REJECT"
	EventTaskComplete  EventType = "TASK_COMPLETE"
	EventPause         EventType = "PAUSE"
	EventResume        EventType = "RESUME"
	EventPRCreated     EventType = "PR_CREATED"
	EventMerge         EventType = "MERGE"
	EventSkipMerge     EventType = "SKIP_MERGE"
	EventAbort         EventType = "ABORT"
	EventError         EventType = "ERROR"
)

// Event carries an EventType plus whatever payload the transition table
// needs for that event.
type Event struct {
	Type EventType

	Feature     string
	Description string
	Mode        models.Mode

	TaskIndex int

	PrURL string

	Reason       string
	ErrorMessage string
}

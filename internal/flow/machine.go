package flow

import (
	"sync"
	"time"

	"github.com/red64llc/red64/pkg/models"
)

// Listener is notified after every transition, including no-ops, so a
// subscriber can decide for itself whether the phase actually changed.
type Listener func(prev, next models.Phase, event Event)

// Machine is the stateful wrapper around Transition: it owns the
// current phase and the feature's mode (fixed by the first START),
// records every mutation as a HistoryEntry, and fans transitions out to
// subscribers. Every method takes the Machine's own mutex, and
// listeners run while that mutex is held, so a listener must not call
// back into the same Machine.
type Machine struct {
	mu        sync.Mutex
	phase     models.Phase
	mode      models.Mode
	modeSet   bool
	history   []models.HistoryEntry
	listeners []Listener
	now       func() string
}

// NewMachine creates a Machine starting at PhaseIdle. nowFn supplies the
// timestamp stamped on each HistoryEntry (injected so callers can make
// it deterministic in tests).
func NewMachine(nowFn func() string) *Machine {
	return &Machine{
		phase: models.Phase{Type: models.PhaseIdle},
		now:   nowFn,
	}
}

// Restore seeds a Machine from a previously persisted FlowState, e.g.
// after the State Store loads a feature back into memory.
func Restore(phase models.Phase, mode models.Mode, history []models.HistoryEntry, nowFn func() string) *Machine {
	return &Machine{
		phase:   phase,
		mode:    mode,
		modeSet: mode.Valid(),
		history: append([]models.HistoryEntry(nil), history...),
		now:     nowFn,
	}
}

// Subscribe registers a Listener invoked synchronously after every
// Send, including no-op transitions.
func (m *Machine) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Phase returns the current phase.
func (m *Machine) Phase() models.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Mode returns the mode locked in at the first START; zero value until
// then.
func (m *Machine) Mode() models.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// History returns a copy of the recorded transitions.
func (m *Machine) History() []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.HistoryEntry(nil), m.history...)
}

// Send applies event to the current phase and returns the resulting
// phase. The first EventStart locks in mode for the remainder of the
// Machine's life; subsequent START events are ignored for mode
// purposes (the transition table itself only fires START from idle).
func (m *Machine) Send(event Event) models.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Type == EventStart && !m.modeSet && event.Mode.Valid() {
		m.mode = event.Mode
		m.modeSet = true
	}

	prev := m.phase
	next := Transition(m.phase, event, m.mode)
	m.phase = next

	m.history = append(m.history, models.HistoryEntry{
		Phase:     next,
		Timestamp: m.now(),
		Event:     string(event.Type),
	})

	for _, l := range m.listeners {
		l(prev, next, event)
	}

	return next
}

// Now is the default timestamp source: RFC3339 wall-clock time.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

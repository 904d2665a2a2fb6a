package resync

import (
	"errors"
	"time"
)

// ErrCoalesced reports a trigger dropped because a cycle was already in
// flight. Not a failure: the in-flight cycle observes the same record set a
// queued trigger eventually would.
var ErrCoalesced = errors.New("resync trigger coalesced")

// Phase is the scheduler's externally visible state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseSyncing Phase = "syncing"
)

// Outcome records how the most recent cycle ended.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// StatusSummary is a point-in-time view of the scheduler for status
// surfaces.
type StatusSummary struct {
	Phase       Phase     `json:"phase"`
	LastOutcome Outcome   `json:"last_outcome"`
	LastError   string    `json:"last_error,omitempty"`
	LastCycleAt time.Time `json:"last_cycle_at,omitempty"`
	People      int       `json:"people"`
	RecordCount int       `json:"record_count"`
	CycleID     string    `json:"cycle_id,omitempty"`
}

// Status reports the scheduler phase and the shape of the published view.
func (m *Manager) Status() StatusSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := StatusSummary{
		Phase:       PhaseIdle,
		LastOutcome: m.lastOutcome,
		LastCycleAt: m.lastCycleAt,
	}
	if summary.LastOutcome == "" {
		summary.LastOutcome = OutcomeNone
	}
	if m.syncing {
		summary.Phase = PhaseSyncing
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.snapshot != nil {
		summary.People = len(m.snapshot.People)
		summary.RecordCount = m.snapshot.RecordCount
		summary.CycleID = m.snapshot.CycleID
	}
	return summary
}

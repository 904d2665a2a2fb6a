package journal

import "time"

// Status tracks an append intent through its unconfirmed-delivery lifecycle.
// The append transport never confirms anything; an entry only becomes
// confirmed when a later resync observes the row in the authoritative set.
type Status string

const (
	// StatusPending marks an intent journaled before submission.
	StatusPending Status = "pending"
	// StatusSubmitted marks an intent whose append call returned without a
	// transport fault. Delivery is still unconfirmed.
	StatusSubmitted Status = "submitted"
	// StatusConfirmed marks an intent observed in a subsequent resync.
	StatusConfirmed Status = "confirmed"
	// StatusFailed marks an intent whose append call faulted.
	StatusFailed Status = "failed"
)

// Entry is one journaled append intent.
type Entry struct {
	ID           int64
	EntryID      string
	PersonKey    string
	RecordJSON   string
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ConfirmedAt  *time.Time
}

// Summary aggregates entry counts per lifecycle state.
type Summary struct {
	Pending   int
	Submitted int
	Confirmed int
	Failed    int
}

// Unconfirmed returns the number of entries still awaiting observation.
func (s Summary) Unconfirmed() int {
	return s.Pending + s.Submitted
}

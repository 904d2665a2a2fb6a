package writeback

import (
	"sync"

	"rollcall/internal/ledger"
)

// ActivityCapacity bounds the recent-activity buffer.
const ActivityCapacity = 10

// Activity is a bounded, most-recent-first echo of submitted records. It is
// presentation-facing only: entries are pushed optimistically at submission
// time and the next aggregation cycle supersedes whatever is shown here.
type Activity struct {
	mu      sync.Mutex
	entries []ledger.Record
}

// NewActivity returns an empty activity buffer.
func NewActivity() *Activity {
	return &Activity{}
}

// Push prepends a record, evicting the oldest entry once capacity is reached.
func (a *Activity) Push(record ledger.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries := make([]ledger.Record, 0, len(a.entries)+1)
	entries = append(entries, record)
	entries = append(entries, a.entries...)
	if len(entries) > ActivityCapacity {
		entries = entries[:ActivityCapacity]
	}
	a.entries = entries
}

// Recent returns a copy of the buffer, most recent first.
func (a *Activity) Recent() []ledger.Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ledger.Record, len(a.entries))
	copy(out, a.entries)
	return out
}

package api

import (
	"encoding/json"
	"time"

	"rollcall/internal/journal"
	"rollcall/internal/ledger"
	"rollcall/internal/resync"
)

// PersonView is the wire shape of one aggregate.
type PersonView struct {
	Name            string          `json:"name"`
	Key             string          `json:"key"`
	Rounds          []int           `json:"rounds"`
	AttendanceCount int             `json:"attendance_count"`
	Region          string          `json:"region,omitempty"`
	Spouse          string          `json:"spouse,omitempty"`
	PlacementGroup  string          `json:"placement_group,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Category        ledger.Category `json:"category"`
	Graduated       bool            `json:"graduated"`
}

// FromPerson converts one aggregate into its wire shape.
func FromPerson(person *ledger.Person) PersonView {
	return PersonView{
		Name:            person.Name,
		Key:             person.Key,
		Rounds:          person.Rounds,
		AttendanceCount: person.AttendanceCount,
		Region:          person.Region,
		Spouse:          person.Spouse,
		PlacementGroup:  person.PlacementGroup,
		Notes:           person.Notes,
		Category:        person.Category,
		Graduated:       person.Graduated,
	}
}

// PeopleResponse lists the published aggregates of one snapshot.
type PeopleResponse struct {
	People      []PersonView `json:"people"`
	RecordCount int          `json:"record_count"`
	CycleID     string       `json:"cycle_id,omitempty"`
	CompletedAt time.Time    `json:"completed_at,omitempty"`
}

// PersonResponse wraps a single aggregate lookup.
type PersonResponse struct {
	Person PersonView `json:"person"`
}

// EntryView is the wire shape of one journaled append intent.
type EntryView struct {
	ID          int64          `json:"id"`
	EntryID     string         `json:"entry_id"`
	PersonKey   string         `json:"person_key"`
	Status      journal.Status `json:"status"`
	Error       string         `json:"error,omitempty"`
	Record      ledger.Record  `json:"record"`
	CreatedAt   time.Time      `json:"created_at"`
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`
}

// FromEntry converts a journal entry into its wire shape.
func FromEntry(entry *journal.Entry) EntryView {
	view := EntryView{
		ID:          entry.ID,
		EntryID:     entry.EntryID,
		PersonKey:   entry.PersonKey,
		Status:      entry.Status,
		Error:       entry.ErrorMessage,
		CreatedAt:   entry.CreatedAt,
		ConfirmedAt: entry.ConfirmedAt,
	}
	_ = json.Unmarshal([]byte(entry.RecordJSON), &view.Record)
	return view
}

// EntryRequest is one manual attendance row as posted to the daemon.
type EntryRequest struct {
	Name        string `json:"name"`
	Spouse      string `json:"spouse,omitempty"`
	SessionDate string `json:"session_date,omitempty"`
	Round       int    `json:"round"`
	Residence   string `json:"residence,omitempty"`
	Preference  string `json:"preference,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Author      string `json:"author,omitempty"`
}

// Record converts the request into a ledger row.
func (r EntryRequest) Record() ledger.Record {
	return ledger.Record{
		Name:        r.Name,
		Spouse:      r.Spouse,
		SessionDate: r.SessionDate,
		Round:       r.Round,
		Residence:   r.Residence,
		Preference:  r.Preference,
		Notes:       r.Notes,
		Author:      r.Author,
	}
}

// PlacementRequest records a placement decision for one target.
type PlacementRequest struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Author string `json:"author,omitempty"`
}

// EntryResponse wraps the journaled result of a write.
type EntryResponse struct {
	Entry EntryView `json:"entry"`
}

// EntriesResponse lists journal entries.
type EntriesResponse struct {
	Entries []EntryView `json:"entries"`
}

// ActivityResponse lists the optimistic echo of recent submissions.
type ActivityResponse struct {
	Records []ledger.Record `json:"records"`
}

// JournalSummary mirrors journal.Summary on the wire.
type JournalSummary struct {
	Pending   int `json:"pending"`
	Submitted int `json:"submitted"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
}

// DaemonStatus describes daemon runtime state for status surfaces.
type DaemonStatus struct {
	Running       bool                 `json:"running"`
	PID           int                  `json:"pid,omitempty"`
	Sync          resync.StatusSummary `json:"sync"`
	Journal       JournalSummary       `json:"journal"`
	JournalDBPath string               `json:"journal_db_path,omitempty"`
	LockFilePath  string               `json:"lock_file_path,omitempty"`
}

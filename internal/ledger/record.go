package ledger

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Round bounds for real attendance sessions. Round 0 denotes an
// administrative row (an edit or a placement) rather than a session.
const (
	MinRound = 1
	MaxRound = 8
)

// Record is one immutable row in the append-only attendance log. Records are
// never edited or deleted; corrections are new records.
type Record struct {
	Name        string    `json:"name"`
	Spouse      string    `json:"spouse,omitempty"`
	SessionDate string    `json:"session_date,omitempty"`
	Round       int       `json:"round"`
	Residence   string    `json:"residence,omitempty"`
	Preference  string    `json:"preference,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Author      string    `json:"author,omitempty"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
}

// Administrative reports whether the record is an administrative row that
// contributes no attendance round.
func (r Record) Administrative() bool {
	return r.Round < MinRound || r.Round > MaxRound
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeName produces the canonical person key: trimmed, case-folded, with
// internal whitespace runs collapsed. Matching is otherwise exact; there is
// no fuzzy matching. The caser is built per call; cases.Caser carries state
// and must not be shared across goroutines.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return cases.Fold().String(whitespaceRun.ReplaceAllString(trimmed, " "))
}

// placementTagPattern matches the placement marker embedded in notes text,
// e.g. "[배치완료: 2조]". The captured group is the small-group name.
var placementTagPattern = regexp.MustCompile(`\[배치완료:\s*([^\]]+)\]`)

// PlacementTag returns the group name of the last placement marker in the
// notes text, or "" when none is present. Tags are additive and never
// retracted, so the most recently appended match wins.
func PlacementTag(notes string) string {
	matches := placementTagPattern.FindAllStringSubmatch(notes, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}

// PlacementNote builds the notes text for a placement row: the marker for
// the assigned group followed by the person's existing derived notes.
func PlacementNote(group, existingNotes string) string {
	note := "[배치완료: " + strings.TrimSpace(group) + "] "
	return note + existingNotes
}

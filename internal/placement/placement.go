package placement

import (
	"fmt"
	"strings"
	"time"

	"rollcall/internal/ledger"
	"rollcall/internal/services"
)

const component = "placement"

// Request validates a placement decision and constructs the administrative
// row that records it. This is the sole operator-driven path that changes a
// person's category besides attending more sessions.
//
// Precondition: the person is a placement target (four or more sessions
// attended, no placement recorded). Violations fail before any record is
// constructed or any network call is made.
func Request(person *ledger.Person, group, author string) (ledger.Record, error) {
	if person == nil {
		return ledger.Record{}, services.Wrap(services.ErrValidation, component, "request", "person is required", nil)
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return ledger.Record{}, services.Wrap(services.ErrValidation, component, "request", "group name is required", nil)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		return ledger.Record{}, services.Wrap(services.ErrValidation, component, "request", "author is required", nil)
	}
	if person.Category != ledger.CategoryTarget {
		return ledger.Record{}, services.Wrap(services.ErrValidation, component, "request",
			fmt.Sprintf("%s is not a placement target (category %s, %d sessions)",
				person.Name, person.Category, person.AttendanceCount), nil)
	}

	return ledger.Record{
		Name:        person.Name,
		Spouse:      person.Spouse,
		Round:       0,
		Residence:   person.Region,
		Notes:       ledger.PlacementNote(group, person.Notes),
		Author:      author,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

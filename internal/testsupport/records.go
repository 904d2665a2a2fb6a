package testsupport

import (
	"fmt"
	"strings"

	"rollcall/internal/ledger"
)

// RawLog renders records as the tab-separated text the record source serves,
// header included, so fetch/extract legs can be exercised end to end.
func RawLog(records ...ledger.Record) string {
	var sb strings.Builder
	sb.WriteString("name\tspouse\tdate\tround\tresidence\tpreference\tnotes\tauthor\tsubmitted_at\n")
	for _, record := range records {
		submitted := ""
		if !record.SubmittedAt.IsZero() {
			submitted = record.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			record.Name, record.Spouse, record.SessionDate, record.Round,
			record.Residence, record.Preference, record.Notes, record.Author, submitted)
	}
	return sb.String()
}

// Attendance builds simple session records for one person.
func Attendance(name string, rounds ...int) []ledger.Record {
	records := make([]ledger.Record, 0, len(rounds))
	for _, round := range rounds {
		records = append(records, ledger.Record{Name: name, Round: round})
	}
	return records
}

package extract

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rollcall/internal/ledger"
	"rollcall/internal/services"
)

const component = "extract"

// column identifies a logical field in the tabular log. Header labels are
// matched case-insensitively against the aliases below so both the Korean
// sheet headers and their English equivalents parse.
type column int

const (
	colName column = iota
	colSpouse
	colDate
	colRound
	colResidence
	colPreference
	colNotes
	colAuthor
	colSubmitted
)

var headerAliases = map[string]column{
	"name":         colName,
	"이름":           colName,
	"성명":           colName,
	"spouse":       colSpouse,
	"배우자":          colSpouse,
	"date":         colDate,
	"날짜":           colDate,
	"session_date": colDate,
	"round":        colRound,
	"회차":           colRound,
	"residence":    colResidence,
	"거주지":          colResidence,
	"거주지역":         colResidence,
	"region":       colResidence,
	"preference":   colPreference,
	"선호":           colPreference,
	"희망":           colPreference,
	"notes":        colNotes,
	"비고":           colNotes,
	"메모":           colNotes,
	"author":       colAuthor,
	"작성자":          colAuthor,
	"submitted_at": colSubmitted,
	"제출시각":         colSubmitted,
	"timestamp":    colSubmitted,
}

var submittedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006. 1. 2 15:04:05",
}

// Extract parses the raw tab-separated attendance log into typed records.
// The first non-empty line must be a header naming at least the name and
// round columns. Schema violations are tagged as extraction errors so a
// resync cycle ends in its error state without replacing the last-good view.
func Extract(raw string) ([]ledger.Record, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, component, "parse", "malformed tabular text", err)
	}

	headerIdx := -1
	var layout map[int]column
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		layout, err = mapHeader(row)
		if err != nil {
			return nil, err
		}
		headerIdx = i
		break
	}
	if headerIdx < 0 {
		return nil, services.Wrap(services.ErrExtraction, component, "header", "empty record log", nil)
	}

	records := make([]ledger.Record, 0, len(rows)-headerIdx-1)
	for i, row := range rows[headerIdx+1:] {
		if blankRow(row) {
			continue
		}
		record, err := mapRow(row, layout, headerIdx+2+i)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func mapHeader(row []string) (map[int]column, error) {
	layout := make(map[int]column, len(row))
	for i, label := range row {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" {
			continue
		}
		if col, ok := headerAliases[key]; ok {
			if _, dup := findColumn(layout, col); !dup {
				layout[i] = col
			}
		}
	}
	if _, ok := findColumn(layout, colName); !ok {
		return nil, services.Wrap(services.ErrExtraction, component, "header", "missing name column", nil)
	}
	if _, ok := findColumn(layout, colRound); !ok {
		return nil, services.Wrap(services.ErrExtraction, component, "header", "missing round column", nil)
	}
	return layout, nil
}

func findColumn(layout map[int]column, want column) (int, bool) {
	for idx, col := range layout {
		if col == want {
			return idx, true
		}
	}
	return 0, false
}

func mapRow(row []string, layout map[int]column, line int) (ledger.Record, error) {
	var record ledger.Record
	for idx, col := range layout {
		if idx >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[idx])
		switch col {
		case colName:
			record.Name = value
		case colSpouse:
			record.Spouse = value
		case colDate:
			record.SessionDate = value
		case colRound:
			round, err := parseRound(value)
			if err != nil {
				return ledger.Record{}, services.Wrap(services.ErrExtraction, component, "row",
					fmt.Sprintf("line %d: %v", line, err), nil)
			}
			record.Round = round
		case colResidence:
			record.Residence = value
		case colPreference:
			record.Preference = value
		case colNotes:
			record.Notes = value
		case colAuthor:
			record.Author = value
		case colSubmitted:
			record.SubmittedAt = parseSubmitted(value)
		}
	}
	return record, nil
}

func parseRound(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	round, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("round %q is not an integer", value)
	}
	return round, nil
}

// parseSubmitted is lenient: the timestamp is display data, not identity,
// so an unrecognized layout yields a zero time rather than a failed cycle.
func parseSubmitted(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range submittedLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

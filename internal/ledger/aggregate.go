package ledger

import (
	"sort"
	"strings"
)

// Person is the derived per-person summary. It is recomputed wholesale on
// every aggregation cycle and never patched incrementally; it has no
// identity across cycles beyond its normalized name key.
type Person struct {
	// Name is the display spelling from the person's first record.
	Name string `json:"name"`
	// Key is the normalized identity used for grouping and lookup.
	Key string `json:"key"`

	Rounds          []int    `json:"rounds"`
	AttendanceCount int      `json:"attendance_count"`
	Region          string   `json:"region,omitempty"`
	Spouse          string   `json:"spouse,omitempty"`
	PlacementGroup  string   `json:"placement_group,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Category        Category `json:"category"`
	// Graduated is set when all eight sessions have been attended. It is
	// orthogonal to Category: a graduate who was never placed still shows
	// as a placement target.
	Graduated bool `json:"graduated"`
}

// Placed reports whether a placement has been recorded for the person.
func (p *Person) Placed() bool {
	return p != nil && p.PlacementGroup != ""
}

// HasRound reports whether the given session round was attended.
func (p *Person) HasRound(round int) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Rounds {
		if r == round {
			return true
		}
	}
	return false
}

// Aggregate rebuilds the full per-person view from the complete record set.
// Pure and deterministic: no I/O, no hidden state, identical output for
// identical input. Blank names are dropped before grouping; rounds outside
// 1..8 contribute no attendance but their notes still feed the placement
// tag scan.
func Aggregate(records []Record) map[string]*Person {
	people := make(map[string]*Person)
	rounds := make(map[string]map[int]struct{})

	for _, record := range records {
		key := NormalizeName(record.Name)
		if key == "" {
			continue
		}

		person, ok := people[key]
		if !ok {
			person = &Person{Name: displayName(record.Name), Key: key}
			people[key] = person
			rounds[key] = make(map[int]struct{})
		}

		if !record.Administrative() {
			rounds[key][record.Round] = struct{}{}
		}
		if spouse := displayName(record.Spouse); spouse != "" {
			person.Spouse = spouse
		}
		if residence := displayName(record.Residence); residence != "" {
			person.Region = residence
		}
		if record.Notes != "" {
			person.Notes = record.Notes
		}
		if group := PlacementTag(record.Notes); group != "" {
			person.PlacementGroup = group
		}
	}

	for key, person := range people {
		attended := rounds[key]
		person.Rounds = sortedRounds(attended)
		person.AttendanceCount = len(person.Rounds)
		person.Category = Categorize(person.AttendanceCount, person.Placed())
		person.Graduated = person.AttendanceCount == MaxRound
	}

	linkCouples(people)
	return people
}

// linkCouples resolves the symmetric couple relation: when one side names a
// spouse that also has an aggregate, region is back-filled from whichever
// side has it (each side keeps its own when both do) and the spouse name is
// cross-set so either side can see the partner. Notes are never merged.
// Iteration follows sorted keys so that when several people name the same
// spouse, the same claimant wins on every run.
func linkCouples(people map[string]*Person) {
	for _, key := range SortedKeys(people) {
		person := people[key]
		spouseKey := NormalizeName(person.Spouse)
		if spouseKey == "" || spouseKey == person.Key {
			continue
		}
		partner, ok := people[spouseKey]
		if !ok {
			continue
		}
		if person.Region == "" {
			person.Region = partner.Region
		}
		if partner.Region == "" {
			partner.Region = person.Region
		}
		if partner.Spouse == "" {
			partner.Spouse = person.Name
		}
	}
}

// SortedKeys returns the aggregate keys in lexical order for deterministic
// iteration.
func SortedKeys(people map[string]*Person) []string {
	keys := make([]string, 0, len(people))
	for key := range people {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedRounds(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for round := range set {
		out = append(out, round)
	}
	sort.Ints(out)
	return out
}

func displayName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return whitespaceRun.ReplaceAllString(trimmed, " ")
}

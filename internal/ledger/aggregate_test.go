package ledger_test

import (
	"reflect"
	"testing"

	"rollcall/internal/ledger"
)

func attendance(name string, rounds ...int) []ledger.Record {
	records := make([]ledger.Record, 0, len(rounds))
	for _, round := range rounds {
		records = append(records, ledger.Record{Name: name, Round: round})
	}
	return records
}

func TestAggregateIsIdempotent(t *testing.T) {
	records := []ledger.Record{
		{Name: "Kim", Round: 1, Residence: "Mapo"},
		{Name: "Lee", Round: 2, Spouse: "Kim"},
		{Name: "kim ", Round: 3, Notes: "brought a friend"},
	}

	first := ledger.Aggregate(records)
	second := ledger.Aggregate(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not idempotent:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestAggregateDeduplicatesRounds(t *testing.T) {
	people := ledger.Aggregate(attendance("Kim", 1, 1, 1))
	kim := people["kim"]
	if kim == nil {
		t.Fatal("expected aggregate for kim")
	}
	if !reflect.DeepEqual(kim.Rounds, []int{1}) {
		t.Fatalf("expected rounds {1}, got %v", kim.Rounds)
	}
	if kim.AttendanceCount != 1 {
		t.Fatalf("expected count 1, got %d", kim.AttendanceCount)
	}
}

func TestAggregateCountMatchesRoundSet(t *testing.T) {
	records := append(attendance("Park", 1, 2, 3, 5, 5, 8), ledger.Record{Name: "Park", Round: 0, Notes: "edited residence"})
	people := ledger.Aggregate(records)
	park := people["park"]
	if park == nil {
		t.Fatal("expected aggregate for park")
	}
	if park.AttendanceCount != len(park.Rounds) {
		t.Fatalf("count %d does not match rounds %v", park.AttendanceCount, park.Rounds)
	}
	for _, round := range park.Rounds {
		if round < ledger.MinRound || round > ledger.MaxRound {
			t.Fatalf("round %d outside session range", round)
		}
	}
}

func TestAggregateIgnoresOutOfRangeRoundsButScansNotes(t *testing.T) {
	records := []ledger.Record{
		{Name: "Choi", Round: 9},
		{Name: "Choi", Round: -1, Notes: "[배치완료: 3조] moved from evening service"},
	}
	people := ledger.Aggregate(records)
	choi := people["choi"]
	if choi == nil {
		t.Fatal("expected aggregate for choi")
	}
	if choi.AttendanceCount != 0 {
		t.Fatalf("out-of-range rounds must not count, got %d", choi.AttendanceCount)
	}
	if choi.PlacementGroup != "3조" {
		t.Fatalf("expected placement tag from administrative notes, got %q", choi.PlacementGroup)
	}
}

func TestAggregateDropsBlankNames(t *testing.T) {
	people := ledger.Aggregate([]ledger.Record{
		{Name: "   ", Round: 1},
		{Name: "", Round: 2},
		{Name: "Jung", Round: 1},
	})
	if len(people) != 1 {
		t.Fatalf("expected a single aggregate, got %d", len(people))
	}
	if people["jung"] == nil {
		t.Fatal("expected aggregate for jung")
	}
}

func TestAggregateNameMatchingFoldsCaseAndWhitespace(t *testing.T) {
	people := ledger.Aggregate([]ledger.Record{
		{Name: "Kim Minji", Round: 1},
		{Name: "  kim   minji ", Round: 2},
		{Name: "KIM MINJI", Round: 3},
	})
	if len(people) != 1 {
		t.Fatalf("expected one aggregate, got %d keys: %v", len(people), ledger.SortedKeys(people))
	}
	person := people["kim minji"]
	if person == nil {
		t.Fatal("expected aggregate under folded key")
	}
	if person.AttendanceCount != 3 {
		t.Fatalf("expected 3 rounds merged, got %d", person.AttendanceCount)
	}
	if person.Name != "Kim Minji" {
		t.Fatalf("display name should keep first spelling, got %q", person.Name)
	}
}

func TestPlacementTagIsMonotonicUnderSuperset(t *testing.T) {
	base := append(attendance("Kim", 1, 2, 3, 4), ledger.Record{
		Name:  "Kim",
		Round: 0,
		Notes: "[배치완료: Group A] settled in well",
	})

	tagged := ledger.Aggregate(base)["kim"]
	if tagged.PlacementGroup != "Group A" {
		t.Fatalf("expected tag Group A, got %q", tagged.PlacementGroup)
	}

	superset := append(append([]ledger.Record{}, base...),
		ledger.Record{Name: "Kim", Round: 5},
		ledger.Record{Name: "Kim", Round: 0, Notes: "follow-up visit"},
	)
	after := ledger.Aggregate(superset)["kim"]
	if after.PlacementGroup != "Group A" {
		t.Fatalf("placement tag must survive supersets, got %q", after.PlacementGroup)
	}
	if after.Category != ledger.CategoryPlaced {
		t.Fatalf("expected placed category, got %s", after.Category)
	}
}

func TestLatestPlacementTagWins(t *testing.T) {
	records := append(attendance("Kim", 1, 2, 3, 4),
		ledger.Record{Name: "Kim", Round: 0, Notes: "[배치완료: 1조] first assignment"},
		ledger.Record{Name: "Kim", Round: 0, Notes: "[배치완료: 2조] reassigned"},
	)
	person := ledger.Aggregate(records)["kim"]
	if person.PlacementGroup != "2조" {
		t.Fatalf("expected most recent tag, got %q", person.PlacementGroup)
	}
}

func TestCoupleLinkBackfillsRegionAndSpouse(t *testing.T) {
	records := []ledger.Record{
		{Name: "A", Round: 1, Spouse: "B"},
		{Name: "B", Round: 1, Residence: "Seongdong"},
	}
	people := ledger.Aggregate(records)

	a, b := people["a"], people["b"]
	if a == nil || b == nil {
		t.Fatal("expected aggregates for both partners")
	}
	if a.Region != "Seongdong" {
		t.Fatalf("expected region back-filled from partner, got %q", a.Region)
	}
	if b.Spouse != "A" {
		t.Fatalf("expected spouse cross-set, got %q", b.Spouse)
	}
}

func TestCoupleLinkPrefersOwnRegion(t *testing.T) {
	records := []ledger.Record{
		{Name: "A", Round: 1, Spouse: "B", Residence: "Mapo"},
		{Name: "B", Round: 1, Residence: "Seongdong"},
	}
	people := ledger.Aggregate(records)
	if people["a"].Region != "Mapo" {
		t.Fatalf("own region must win, got %q", people["a"].Region)
	}
	if people["b"].Region != "Seongdong" {
		t.Fatalf("partner region must be untouched, got %q", people["b"].Region)
	}
}

func TestCoupleLinkIsDeterministicWithCompetingClaimants(t *testing.T) {
	// Two people name the same spouse from different regions. The winner
	// must not depend on map iteration order: the link pass walks sorted
	// keys, so the lexically first claimant back-fills the shared partner.
	records := []ledger.Record{
		{Name: "A", Round: 1, Spouse: "B", Residence: "Mapo"},
		{Name: "C", Round: 1, Spouse: "B", Residence: "Seongdong"},
		{Name: "B", Round: 1},
	}

	for i := 0; i < 100; i++ {
		people := ledger.Aggregate(records)
		b := people["b"]
		if b == nil {
			t.Fatal("expected aggregate for shared partner")
		}
		if b.Region != "Mapo" {
			t.Fatalf("run %d: partner region = %q, want %q from first claimant", i, b.Region, "Mapo")
		}
		if b.Spouse != "A" {
			t.Fatalf("run %d: partner spouse = %q, want %q from first claimant", i, b.Spouse, "A")
		}
	}
}

func TestCoupleLinkNeverMergesNotes(t *testing.T) {
	records := []ledger.Record{
		{Name: "A", Round: 1, Spouse: "B", Notes: "prefers morning service"},
		{Name: "B", Round: 1},
	}
	people := ledger.Aggregate(records)
	if people["b"].Notes != "" {
		t.Fatalf("notes must not propagate between partners, got %q", people["b"].Notes)
	}
}

func TestEndToEndPlacementScenario(t *testing.T) {
	records := attendance("Kim", 1, 2, 3, 4)

	kim := ledger.Aggregate(records)["kim"]
	if kim.AttendanceCount != 4 {
		t.Fatalf("expected count 4, got %d", kim.AttendanceCount)
	}
	if kim.Category != ledger.CategoryTarget {
		t.Fatalf("expected target, got %s", kim.Category)
	}

	superset := append(records, ledger.Record{
		Name:  "Kim",
		Round: 0,
		Notes: ledger.PlacementNote("Group A", kim.Notes),
	})
	after := ledger.Aggregate(superset)["kim"]
	if after.Category != ledger.CategoryPlaced {
		t.Fatalf("expected placed after placement row, got %s", after.Category)
	}
	if after.PlacementGroup != "Group A" {
		t.Fatalf("expected tag Group A, got %q", after.PlacementGroup)
	}
}

func TestGraduationIsOrthogonalToCategory(t *testing.T) {
	people := ledger.Aggregate(attendance("Kim", 1, 2, 3, 4, 5, 6, 7, 8))
	kim := people["kim"]
	if kim.Category != ledger.CategoryTarget {
		t.Fatalf("eligibility dominates graduation, got %s", kim.Category)
	}
	if !kim.Graduated {
		t.Fatal("expected graduated flag for all eight rounds")
	}

	partial := ledger.Aggregate(attendance("Lee", 1, 2, 3, 4, 5, 6, 7))["lee"]
	if partial.Graduated {
		t.Fatal("seven rounds is not graduation")
	}
}

func TestNotesLatestFragmentWins(t *testing.T) {
	records := []ledger.Record{
		{Name: "Kim", Round: 1, Notes: "first visit"},
		{Name: "Kim", Round: 2},
		{Name: "Kim", Round: 0, Notes: "moved to Mapo"},
	}
	person := ledger.Aggregate(records)["kim"]
	if person.Notes != "moved to Mapo" {
		t.Fatalf("expected latest notes fragment, got %q", person.Notes)
	}
}

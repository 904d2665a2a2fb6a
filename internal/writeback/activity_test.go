package writeback_test

import (
	"fmt"
	"testing"

	"rollcall/internal/ledger"
	"rollcall/internal/writeback"
)

func TestActivityMostRecentFirst(t *testing.T) {
	activity := writeback.NewActivity()
	activity.Push(ledger.Record{Name: "first"})
	activity.Push(ledger.Record{Name: "second"})

	recent := activity.Recent()
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Name != "second" || recent[1].Name != "first" {
		t.Fatalf("expected most-recent-first order, got %v", recent)
	}
}

func TestActivityBoundedCapacity(t *testing.T) {
	activity := writeback.NewActivity()
	for i := 0; i < writeback.ActivityCapacity+5; i++ {
		activity.Push(ledger.Record{Name: fmt.Sprintf("person-%d", i)})
	}

	recent := activity.Recent()
	if len(recent) != writeback.ActivityCapacity {
		t.Fatalf("expected capacity %d, got %d", writeback.ActivityCapacity, len(recent))
	}
	if recent[0].Name != fmt.Sprintf("person-%d", writeback.ActivityCapacity+4) {
		t.Fatalf("expected newest entry first, got %q", recent[0].Name)
	}
}

func TestActivityRecentReturnsCopy(t *testing.T) {
	activity := writeback.NewActivity()
	activity.Push(ledger.Record{Name: "kept"})

	recent := activity.Recent()
	recent[0].Name = "mutated"

	if activity.Recent()[0].Name != "kept" {
		t.Fatal("Recent must return a copy")
	}
}

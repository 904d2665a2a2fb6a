package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"rollcall/internal/journal"
	"rollcall/internal/ledger"
	"rollcall/internal/logging"
	"rollcall/internal/resync"
	"rollcall/internal/services"
	"rollcall/internal/testsupport"
	"rollcall/internal/writeback"
)

type staticFetcher struct {
	mu  sync.Mutex
	raw string
}

func (f *staticFetcher) Fetch(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw, nil
}

type appendRecorder struct {
	mu     sync.Mutex
	bodies [][]map[string]any
}

func (r *appendRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var rows []map[string]any
		if err := json.NewDecoder(req.Body).Decode(&rows); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.mu.Lock()
		r.bodies = append(r.bodies, rows)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (r *appendRecorder) rows(t *testing.T) []map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bodies) != 1 {
		t.Fatalf("expected one append call, got %d", len(r.bodies))
	}
	return r.bodies[0]
}

func newService(t *testing.T, appendURL string, fetcher resync.Fetcher) (*EntryService, *journal.Store, *resync.Manager) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAppendURL(appendURL))
	store := testsupport.MustOpenJournal(t, cfg)
	manager := resync.NewManager(fetcher, logging.NewNop(),
		resync.WithJournal(store),
		resync.WithResyncDelay(time.Hour),
	)
	svc := NewEntryService(store, writeback.NewClient(appendURL), manager, "tester", logging.NewNop())
	return svc, store, manager
}

func TestAddEntrySubmitsAndJournals(t *testing.T) {
	recorder := &appendRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	svc, store, _ := newService(t, server.URL, &staticFetcher{})

	entry, err := svc.AddEntry(context.Background(), ledger.Record{
		Name:        "김민준",
		SessionDate: "2026-03-01",
		Round:       3,
	})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if entry.Status != journal.StatusSubmitted {
		t.Fatalf("status = %q, want %q", entry.Status, journal.StatusSubmitted)
	}

	rows := recorder.rows(t)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0]["name"] != "김민준" {
		t.Errorf("appended name = %v", rows[0]["name"])
	}
	if rows[0]["author"] != "tester" {
		t.Errorf("default author not applied: %v", rows[0]["author"])
	}

	pending, err := store.Unconfirmed(context.Background())
	if err != nil {
		t.Fatalf("Unconfirmed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one unconfirmed entry, got %d", len(pending))
	}

	if activity := svc.Activity(); len(activity) != 1 {
		t.Fatalf("expected one activity record, got %d", len(activity))
	}
}

func TestAddEntryRejectsInvalidInput(t *testing.T) {
	server := httptest.NewServer((&appendRecorder{}).handler())
	defer server.Close()

	svc, store, _ := newService(t, server.URL, &staticFetcher{})

	cases := []ledger.Record{
		{Name: "  ", Round: 2},
		{Name: "김민준", Round: 9},
		{Name: "김민준", Round: -1},
	}
	for _, record := range cases {
		if _, err := svc.AddEntry(context.Background(), record); !errors.Is(err, services.ErrValidation) {
			t.Errorf("record %+v: err = %v, want validation error", record, err)
		}
	}

	summary, err := store.Summarize(context.Background())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Unconfirmed() != 0 || summary.Failed != 0 {
		t.Fatalf("rejected input reached the journal: %+v", summary)
	}
}

func TestAddEntryAppendFailureMarksFailed(t *testing.T) {
	server := httptest.NewServer((&appendRecorder{}).handler())
	endpoint := server.URL
	server.Close()

	svc, store, _ := newService(t, endpoint, &staticFetcher{})

	_, err := svc.AddEntry(context.Background(), ledger.Record{Name: "김민준", Round: 1})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("err = %v, want transport error", err)
	}

	summary, sumErr := store.Summarize(context.Background())
	if sumErr != nil {
		t.Fatalf("Summarize: %v", sumErr)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
}

func TestPlaceRequiresKnownPerson(t *testing.T) {
	server := httptest.NewServer((&appendRecorder{}).handler())
	defer server.Close()

	svc, _, _ := newService(t, server.URL, &staticFetcher{})

	if _, err := svc.Place(context.Background(), "김민준", "2조", "admin"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestPlaceSubmitsAdministrativeRow(t *testing.T) {
	recorder := &appendRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fetcher := &staticFetcher{raw: testsupport.RawLog(testsupport.Attendance("김민준", 1, 2, 3, 4)...)}
	svc, _, manager := newService(t, server.URL, fetcher)

	if err := manager.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	entry, err := svc.Place(context.Background(), "김민준", "2조", "admin")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if entry.Status != journal.StatusSubmitted {
		t.Fatalf("status = %q, want %q", entry.Status, journal.StatusSubmitted)
	}

	rows := recorder.rows(t)
	if got := rows[0]["round"]; got != float64(0) {
		t.Errorf("placement row round = %v, want 0", got)
	}
	notes, _ := rows[0]["notes"].(string)
	if !strings.Contains(notes, "[배치완료: 2조]") {
		t.Errorf("placement tag missing from notes: %q", notes)
	}
}

package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rollcall/internal/api"
	"rollcall/internal/journal"
	"rollcall/internal/ledger"
	"rollcall/internal/logging"
	"rollcall/internal/resync"
	"rollcall/internal/source"
	"rollcall/internal/testsupport"
	"rollcall/internal/writeback"
)

func newTestDaemon(t *testing.T, raw string) *Daemon {
	t.Helper()

	sourceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, raw)
	}))
	t.Cleanup(sourceSrv.Close)
	appendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(appendSrv.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithSourceURL(sourceSrv.URL),
		testsupport.WithAppendURL(appendSrv.URL),
	)
	store := testsupport.MustOpenJournal(t, cfg)
	logger := logging.NewNop()

	fetcher := source.NewClient(cfg.Source.URL, cfg.SourceTimeout())
	manager := resync.NewManager(fetcher, logger,
		resync.WithJournal(store),
		resync.WithResyncDelay(10*time.Millisecond),
		resync.WithPollInterval(time.Hour),
	)
	entries := api.NewEntryService(store, writeback.NewClient(cfg.Append.URL), manager, "tester", logger)

	d, err := New(cfg, store, manager, entries, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func startDaemon(t *testing.T, d *Daemon) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)
	return "http://" + d.APIAddr()
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, payload, out any) int {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

// waitForSnapshot polls until the initial cycle publishes a view.
func waitForSnapshot(t *testing.T, d *Daemon) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if d.manager.Snapshot() != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no snapshot published before deadline")
}

func TestDaemonServesStatusAndPeople(t *testing.T) {
	raw := testsupport.RawLog(testsupport.Attendance("김민준", 1, 2, 3, 4)...)
	d := newTestDaemon(t, raw)
	base := startDaemon(t, d)
	waitForSnapshot(t, d)

	var status api.DaemonStatus
	if code := getJSON(t, base+"/api/status", &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if !status.Running {
		t.Error("status.Running = false")
	}
	if status.Sync.People != 1 {
		t.Errorf("status.Sync.People = %d, want 1", status.Sync.People)
	}

	var people api.PeopleResponse
	if code := getJSON(t, base+"/api/people", &people); code != http.StatusOK {
		t.Fatalf("people code = %d", code)
	}
	if len(people.People) != 1 {
		t.Fatalf("people = %d, want 1", len(people.People))
	}
	if people.People[0].Category != ledger.CategoryTarget {
		t.Errorf("category = %q, want %q", people.People[0].Category, ledger.CategoryTarget)
	}

	var filtered api.PeopleResponse
	getJSON(t, base+"/api/people?category=placed", &filtered)
	if len(filtered.People) != 0 {
		t.Errorf("placed filter returned %d people", len(filtered.People))
	}
	if code := getJSON(t, base+"/api/people?category=bogus", nil); code != http.StatusBadRequest {
		t.Errorf("bogus category code = %d, want 400", code)
	}

	var person api.PersonResponse
	if code := getJSON(t, base+"/api/people/김민준", &person); code != http.StatusOK {
		t.Fatalf("person code = %d", code)
	}
	if person.Person.AttendanceCount != 4 {
		t.Errorf("attendance = %d, want 4", person.Person.AttendanceCount)
	}
	if code := getJSON(t, base+"/api/people/없는사람", nil); code != http.StatusNotFound {
		t.Errorf("unknown person code = %d, want 404", code)
	}
}

func TestDaemonEntryLifecycle(t *testing.T) {
	raw := testsupport.RawLog(testsupport.Attendance("김민준", 1, 2, 3, 4)...)
	d := newTestDaemon(t, raw)
	base := startDaemon(t, d)
	waitForSnapshot(t, d)

	var created api.EntryResponse
	code := postJSON(t, base+"/api/entries", api.EntryRequest{Name: "이서연", Round: 1}, &created)
	if code != http.StatusCreated {
		t.Fatalf("entries code = %d, want 201", code)
	}
	if created.Entry.Status != journal.StatusSubmitted {
		t.Errorf("entry status = %q", created.Entry.Status)
	}
	if created.Entry.Record.Author != "tester" {
		t.Errorf("author = %q, want default", created.Entry.Record.Author)
	}

	if code := postJSON(t, base+"/api/entries", api.EntryRequest{Name: "이서연", Round: 12}, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("invalid round code = %d, want 422", code)
	}

	var pending api.EntriesResponse
	if code := getJSON(t, base+"/api/entries", &pending); code != http.StatusOK {
		t.Fatalf("pending code = %d", code)
	}
	if len(pending.Entries) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending.Entries))
	}

	var activity api.ActivityResponse
	getJSON(t, base+"/api/activity", &activity)
	if len(activity.Records) != 1 {
		t.Errorf("activity = %d, want 1", len(activity.Records))
	}
}

func TestDaemonPlacementEndpoint(t *testing.T) {
	raw := testsupport.RawLog(testsupport.Attendance("김민준", 1, 2, 3, 4)...)
	d := newTestDaemon(t, raw)
	base := startDaemon(t, d)
	waitForSnapshot(t, d)

	var created api.EntryResponse
	code := postJSON(t, base+"/api/placements", api.PlacementRequest{Name: "김민준", Group: "2조"}, &created)
	if code != http.StatusCreated {
		t.Fatalf("placements code = %d, want 201", code)
	}
	if created.Entry.Record.Round != 0 {
		t.Errorf("placement round = %d, want 0", created.Entry.Record.Round)
	}

	code = postJSON(t, base+"/api/placements", api.PlacementRequest{Name: "모르는사람", Group: "2조"}, nil)
	if code != http.StatusUnprocessableEntity {
		t.Errorf("unknown person code = %d, want 422", code)
	}
}

func TestDaemonSyncEndpoint(t *testing.T) {
	raw := testsupport.RawLog(testsupport.Attendance("김민준", 1)...)
	d := newTestDaemon(t, raw)
	base := startDaemon(t, d)
	waitForSnapshot(t, d)

	var status resync.StatusSummary
	code := postJSON(t, base+"/api/sync", nil, &status)
	if code != http.StatusOK && code != http.StatusAccepted {
		t.Fatalf("sync code = %d", code)
	}

	if code := getJSON(t, base+"/api/sync", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("GET sync code = %d, want 405", code)
	}
}

func TestDaemonSecondInstanceRefused(t *testing.T) {
	raw := testsupport.RawLog(testsupport.Attendance("김민준", 1)...)
	d := newTestDaemon(t, raw)
	startDaemon(t, d)

	second, err := New(d.cfg, d.store, d.manager, d.entries, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second Start succeeded, want lock refusal")
	}
}

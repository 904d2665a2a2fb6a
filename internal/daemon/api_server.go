package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"rollcall/internal/api"
	"rollcall/internal/config"
	"rollcall/internal/ledger"
	"rollcall/internal/logging"
	"rollcall/internal/resync"
	"rollcall/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/people", srv.handlePeople)
	mux.HandleFunc("/api/people/", srv.handlePerson)
	mux.HandleFunc("/api/sync", srv.handleSync)
	mux.HandleFunc("/api/entries", srv.handleEntries)
	mux.HandleFunc("/api/placements", srv.handlePlacements)
	mux.HandleFunc("/api/activity", srv.handleActivity)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running: status.Running,
		PID:     status.PID,
		Sync:    status.Sync,
		Journal: api.JournalSummary{
			Pending:   status.Journal.Pending,
			Submitted: status.Journal.Submitted,
			Confirmed: status.Journal.Confirmed,
			Failed:    status.Journal.Failed,
		},
		JournalDBPath: status.JournalDBPath,
		LockFilePath:  status.LockFilePath,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handlePeople(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snapshot := s.daemon.manager.Snapshot()
	if snapshot == nil {
		s.writeJSON(w, http.StatusOK, api.PeopleResponse{People: []api.PersonView{}})
		return
	}

	category := ledger.Category(strings.TrimSpace(r.URL.Query().Get("category")))
	if category != "" && !ledger.ValidCategory(category) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", category))
		return
	}

	people := make([]api.PersonView, 0, len(snapshot.People))
	for _, key := range ledger.SortedKeys(snapshot.People) {
		person := snapshot.People[key]
		if category != "" && person.Category != category {
			continue
		}
		people = append(people, api.FromPerson(person))
	}
	s.writeJSON(w, http.StatusOK, api.PeopleResponse{
		People:      people,
		RecordCount: snapshot.RecordCount,
		CycleID:     snapshot.CycleID,
		CompletedAt: snapshot.CompletedAt,
	})
}

func (s *apiServer) handlePerson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/people/")
	if name == "" || strings.Contains(name, "/") {
		s.writeError(w, http.StatusNotFound, "person not found")
		return
	}
	person, ok := s.daemon.manager.Person(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "person not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.PersonResponse{Person: api.FromPerson(person)})
}

func (s *apiServer) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	err := s.daemon.manager.Trigger(r.Context())
	if errors.Is(err, resync.ErrCoalesced) {
		s.writeJSON(w, http.StatusAccepted, map[string]string{"result": "coalesced"})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.manager.Status())
}

func (s *apiServer) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.daemon.entries.Pending(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]api.EntryView, 0, len(entries))
		for _, entry := range entries {
			views = append(views, api.FromEntry(entry))
		}
		s.writeJSON(w, http.StatusOK, api.EntriesResponse{Entries: views})
	case http.MethodPost:
		var req api.EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid entry payload")
			return
		}
		entry, err := s.daemon.entries.AddEntry(r.Context(), req.Record())
		if err != nil {
			s.writeError(w, errorStatus(err), err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, api.EntryResponse{Entry: api.FromEntry(entry)})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handlePlacements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.PlacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid placement payload")
		return
	}
	entry, err := s.daemon.entries.Place(r.Context(), req.Name, req.Group, req.Author)
	if err != nil {
		s.writeError(w, errorStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.EntryResponse{Entry: api.FromEntry(entry)})
}

func (s *apiServer) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records := s.daemon.entries.Activity()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})
	s.writeJSON(w, http.StatusOK, api.ActivityResponse{Records: records})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}

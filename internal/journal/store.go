package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"rollcall/internal/config"
	"rollcall/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

// Store persists append intents in SQLite so unconfirmed writes stay visible
// across daemon restarts.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return tx.Commit()
}

// Add journals a new append intent as pending and returns the stored entry.
func (s *Store) Add(ctx context.Context, record ledger.Record) (*Entry, error) {
	key := ledger.NormalizeName(record.Name)
	if key == "" {
		return nil, errors.New("record has no person name")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	entryID := uuid.NewString()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (entry_id, person_key, record_json, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entryID, key, string(payload), StatusPending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a journal entry by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// MarkSubmitted moves a pending entry to submitted.
func (s *Store) MarkSubmitted(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusSubmitted, "")
}

// MarkFailed records the transport fault for an entry.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.setStatus(ctx, id, StatusFailed, message)
}

func (s *Store) setStatus(ctx context.Context, id int64, status Status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE journal_entries SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, nullableString(message), now, id,
	)
	if err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d not found", id)
	}
	return nil
}

// Unconfirmed returns pending and submitted entries, oldest first.
func (s *Store) Unconfirmed(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE status IN (?, ?) ORDER BY id`,
		StatusPending, StatusSubmitted,
	)
	if err != nil {
		return nil, fmt.Errorf("query unconfirmed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ConfirmObserved marks unconfirmed entries as confirmed when a matching row
// appears in the freshly fetched record set. A row matches on normalized
// name, round, and notes text; that triple is as much identity as the
// append-only log offers.
func (s *Store) ConfirmObserved(ctx context.Context, records []ledger.Record) (int, error) {
	entries, err := s.Unconfirmed(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	observed := make(map[string]struct{}, len(records))
	for _, record := range records {
		observed[matchKey(record)] = struct{}{}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	confirmed := 0
	for _, entry := range entries {
		var record ledger.Record
		if err := json.Unmarshal([]byte(entry.RecordJSON), &record); err != nil {
			continue
		}
		if _, ok := observed[matchKey(record)]; !ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE journal_entries SET status = ?, updated_at = ?, confirmed_at = ? WHERE id = ?`,
			StatusConfirmed, now, now, entry.ID,
		); err != nil {
			return confirmed, fmt.Errorf("confirm entry %d: %w", entry.ID, err)
		}
		confirmed++
	}
	return confirmed, nil
}

// Summarize counts entries per lifecycle state.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM journal_entries GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary: %w", err)
		}
		switch status {
		case StatusPending:
			summary.Pending = count
		case StatusSubmitted:
			summary.Submitted = count
		case StatusConfirmed:
			summary.Confirmed = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}

func matchKey(record ledger.Record) string {
	return fmt.Sprintf("%s\x00%d\x00%s", ledger.NormalizeName(record.Name), record.Round, record.Notes)
}

const entryColumns = "id, entry_id, person_key, record_json, status, error_message, created_at, updated_at, confirmed_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           int64
		entryID      string
		personKey    string
		recordJSON   string
		statusStr    string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
		confirmedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &entryID, &personKey, &recordJSON, &statusStr,
		&errorMessage, &createdRaw, &updatedRaw, &confirmedRaw); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		EntryID:      entryID,
		PersonKey:    personKey,
		RecordJSON:   recordJSON,
		Status:       Status(statusStr),
		ErrorMessage: errorMessage.String,
		CreatedAt:    parseTimestamp(createdRaw),
		UpdatedAt:    parseTimestamp(updatedRaw),
	}
	if confirmedRaw.Valid && confirmedRaw.String != "" {
		ts := parseTimestamp(confirmedRaw.String)
		entry.ConfirmedAt = &ts
	}
	return entry, nil
}

func parseTimestamp(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

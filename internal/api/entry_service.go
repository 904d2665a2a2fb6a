package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rollcall/internal/journal"
	"rollcall/internal/ledger"
	"rollcall/internal/logging"
	"rollcall/internal/placement"
	"rollcall/internal/resync"
	"rollcall/internal/services"
	"rollcall/internal/writeback"
)

// EntryService orchestrates the write path shared by the daemon API and the
// CLI: validate, journal the intent, hand the row to the write-back client,
// and arm the delayed resync. The aggregate view is never patched directly;
// the follow-up cycle is what makes a write visible.
type EntryService struct {
	journal       *journal.Store
	writeback     *writeback.Client
	manager       *resync.Manager
	defaultAuthor string
	logger        *slog.Logger
}

// NewEntryService wires the write path components together.
func NewEntryService(store *journal.Store, client *writeback.Client, manager *resync.Manager, defaultAuthor string, logger *slog.Logger) *EntryService {
	return &EntryService{
		journal:       store,
		writeback:     client,
		manager:       manager,
		defaultAuthor: strings.TrimSpace(defaultAuthor),
		logger:        logging.NewComponentLogger(logger, "entries"),
	}
}

// AddEntry validates and submits one manual attendance row.
func (s *EntryService) AddEntry(ctx context.Context, record ledger.Record) (*journal.Entry, error) {
	if strings.TrimSpace(record.Name) == "" {
		return nil, services.Wrap(services.ErrValidation, "entries", "add", "name is required", nil)
	}
	if record.Round < 0 || record.Round > ledger.MaxRound {
		return nil, services.Wrap(services.ErrValidation, "entries", "add",
			fmt.Sprintf("round %d outside 0..%d", record.Round, ledger.MaxRound), nil)
	}
	if strings.TrimSpace(record.Author) == "" {
		record.Author = s.defaultAuthor
	}
	if record.SubmittedAt.IsZero() {
		record.SubmittedAt = time.Now().UTC()
	}
	return s.submit(ctx, record)
}

// Place validates a placement decision against the published view and
// submits the administrative row recording it.
func (s *EntryService) Place(ctx context.Context, name, group, author string) (*journal.Entry, error) {
	person, ok := s.manager.Person(name)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "entries", "place",
			fmt.Sprintf("no aggregate for %q; run a sync first", name), nil)
	}
	if strings.TrimSpace(author) == "" {
		author = s.defaultAuthor
	}
	record, err := placement.Request(person, group, author)
	if err != nil {
		return nil, err
	}
	return s.submit(services.WithPerson(ctx, person.Key), record)
}

// Activity returns the most-recent-first optimistic echo of submitted rows.
func (s *EntryService) Activity() []ledger.Record {
	return s.writeback.Activity().Recent()
}

// Pending lists journal entries not yet observed by a resync.
func (s *EntryService) Pending(ctx context.Context) ([]*journal.Entry, error) {
	return s.journal.Unconfirmed(ctx)
}

func (s *EntryService) submit(ctx context.Context, record ledger.Record) (*journal.Entry, error) {
	entry, err := s.journal.Add(ctx, record)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "entries", "journal", "", err)
	}

	logger := logging.WithContext(ctx, s.logger)
	if err := s.writeback.Append(ctx, []ledger.Record{record}); err != nil {
		if markErr := s.journal.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			logger.Warn("journal update failed", logging.Error(markErr))
		}
		return nil, err
	}

	if err := s.journal.MarkSubmitted(ctx, entry.ID); err != nil {
		logger.Warn("journal update failed", logging.Error(err))
	}

	s.manager.ScheduleAfterAppend()
	logger.Info("entry submitted",
		logging.String("person", ledger.NormalizeName(record.Name)),
		logging.Int("round", record.Round),
	)
	return s.journal.GetByID(ctx, entry.ID)
}

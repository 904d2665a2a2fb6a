package resync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/extract"
	"rollcall/internal/journal"
	"rollcall/internal/ledger"
	"rollcall/internal/logging"
	"rollcall/internal/services"
)

// Fetcher yields the full raw attendance log on demand.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Extractor turns raw tabular text into typed records.
type Extractor func(raw string) ([]ledger.Record, error)

// Snapshot is one published aggregate view. It is replaced as a single unit
// and never mutated after publication, so readers never observe a
// half-updated view.
type Snapshot struct {
	People      map[string]*ledger.Person
	RecordCount int
	CycleID     string
	CompletedAt time.Time
}

// Manager drives the resync cycle: fetch, extract, aggregate, publish.
// At most one cycle is in flight; triggers received while syncing are
// coalesced rather than queued. Aggregation is idempotent over the full
// record set, so a later trigger observes every write a queued one would.
type Manager struct {
	fetcher      Fetcher
	extractor    Extractor
	journal      *journal.Store
	logger       *slog.Logger
	cycleTimeout time.Duration
	resyncDelay  time.Duration
	pollInterval time.Duration

	mu          sync.Mutex
	syncing     bool
	lastOutcome Outcome
	lastErr     error
	lastCycleAt time.Time
	snapshot    *Snapshot

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithExtractor overrides the default deterministic parser.
func WithExtractor(extractor Extractor) Option {
	return func(m *Manager) {
		if extractor != nil {
			m.extractor = extractor
		}
	}
}

// WithJournal connects an append journal so a successful cycle confirms
// observed writes.
func WithJournal(store *journal.Store) Option {
	return func(m *Manager) {
		m.journal = store
	}
}

// WithCycleTimeout bounds the fetch/extract leg of one cycle.
func WithCycleTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.cycleTimeout = timeout
		}
	}
}

// WithResyncDelay sets the delay between a successful append and the
// follow-up cycle.
func WithResyncDelay(delay time.Duration) Option {
	return func(m *Manager) {
		if delay > 0 {
			m.resyncDelay = delay
		}
	}
}

// WithPollInterval sets the periodic cycle interval used by Start.
func WithPollInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.pollInterval = interval
		}
	}
}

// NewManager constructs a resync manager around the given fetcher.
func NewManager(fetcher Fetcher, logger *slog.Logger, opts ...Option) *Manager {
	manager := &Manager{
		fetcher:      fetcher,
		extractor:    extract.Extract,
		logger:       logging.NewComponentLogger(logger, "resync"),
		cycleTimeout: 30 * time.Second,
		resyncDelay:  2500 * time.Millisecond,
		pollInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager
}

// Trigger runs one resync cycle. A trigger while another cycle is in flight
// is dropped and reports ErrCoalesced; the in-flight cycle's outcome stands.
func (m *Manager) Trigger(ctx context.Context) error {
	m.mu.Lock()
	if m.syncing {
		m.mu.Unlock()
		m.logger.Debug("trigger coalesced; cycle already in flight")
		return ErrCoalesced
	}
	m.syncing = true
	m.mu.Unlock()

	cycleID := uuid.NewString()[:8]
	ctx = services.WithCycleID(ctx, cycleID)
	logger := logging.WithContext(ctx, m.logger)

	snapshot, err := m.runCycle(ctx, cycleID)

	m.mu.Lock()
	m.syncing = false
	m.lastCycleAt = time.Now().UTC()
	if err != nil {
		m.lastOutcome = OutcomeError
		m.lastErr = err
		// The previously published view is retained untouched; a failed
		// cycle must never blank the last-good aggregate map.
	} else {
		m.lastOutcome = OutcomeSuccess
		m.lastErr = nil
		m.snapshot = snapshot
	}
	m.mu.Unlock()

	if err != nil {
		logger.Error("resync cycle failed", logging.Error(err))
		return err
	}
	logger.Info("resync cycle complete",
		logging.Int("people", len(snapshot.People)),
		logging.Int("records", snapshot.RecordCount),
	)
	return nil
}

func (m *Manager) runCycle(ctx context.Context, cycleID string) (*Snapshot, error) {
	cycleCtx, cancel := context.WithTimeout(ctx, m.cycleTimeout)
	defer cancel()

	raw, err := m.fetcher.Fetch(cycleCtx)
	if err != nil {
		return nil, err
	}

	records, err := m.extractor(raw)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		People:      ledger.Aggregate(records),
		RecordCount: len(records),
		CycleID:     cycleID,
		CompletedAt: time.Now().UTC(),
	}

	if m.journal != nil {
		confirmed, err := m.journal.ConfirmObserved(ctx, records)
		if err != nil {
			logging.WithContext(ctx, m.logger).Warn("journal confirmation failed", logging.Error(err))
		} else if confirmed > 0 {
			logging.WithContext(ctx, m.logger).Info("journal entries confirmed", logging.Int("count", confirmed))
		}
	}
	return snapshot, nil
}

// ScheduleAfterAppend arms exactly one delayed cycle following a successful
// append, giving the external log time to make the new row visible to
// reads. The delay is a heuristic, not a consistency guarantee; a cycle
// that races the row simply misses it until the next trigger.
func (m *Manager) ScheduleAfterAppend() {
	delay := m.resyncDelay
	time.AfterFunc(delay, func() {
		err := m.Trigger(context.Background())
		if err != nil && !errors.Is(err, ErrCoalesced) {
			m.logger.Warn("post-append resync failed", logging.Error(err))
		}
	})
}

// Snapshot returns the last successfully published view, or nil before the
// first successful cycle. The returned snapshot must be treated as
// immutable.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Person looks up one aggregate by display or normalized name.
func (m *Manager) Person(name string) (*ledger.Person, bool) {
	snapshot := m.Snapshot()
	if snapshot == nil {
		return nil, false
	}
	person, ok := snapshot.People[ledger.NormalizeName(name)]
	return person, ok
}

// Start begins periodic background cycles until Stop or context
// cancellation.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("resync manager already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	// Initial cycle so the daemon publishes a view shortly after boot.
	if err := m.Trigger(ctx); err != nil && !errors.Is(err, ErrCoalesced) {
		m.logger.Warn("initial resync failed; retaining empty view until next cycle", logging.Error(err))
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Trigger(ctx); err != nil && !errors.Is(err, ErrCoalesced) {
				m.logger.Warn("periodic resync failed", logging.Error(err))
			}
		}
	}
}

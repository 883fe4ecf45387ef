package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/metrics"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/repository"
	"github.com/UnknownOlympus/hazira/internal/roster"
)

// DefaultTimeFormat is the layout of the time stamp kept on present records.
const DefaultTimeFormat = "03:04 PM"

// ErrWorkerNotFound is returned when an operation names a worker that is not in the roster.
var ErrWorkerNotFound = errors.New("worker not found")

// BlobStore persists the whole tracker state as one opaque document.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// Entry is a worker together with its record of the day, if any.
type Entry struct {
	Worker models.Worker
	Record models.AttendanceRecord
	Marked bool // Record is set
}

// Tracker owns the roster and the attendance ledger, serializes access to them
// and writes the full state back to the store after every change.
type Tracker struct {
	mu         sync.Mutex
	roster     *roster.Roster
	ledger     *ledger.Ledger
	store      BlobStore
	log        *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	loc        *time.Location
	timeFormat string
	seedDemo   bool
	lastMarked *models.LastMarked
	rosterOpts []roster.Option
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLocation sets the time zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithTimeFormat sets the layout of the time stamp of present records.
func WithTimeFormat(layout string) Option {
	return func(t *Tracker) {
		if layout != "" {
			t.timeFormat = layout
		}
	}
}

// WithDemoSeed fills an empty tracker with demo workers when no saved state exists.
func WithDemoSeed(enabled bool) Option {
	return func(t *Tracker) {
		t.seedDemo = enabled
	}
}

// WithRosterOptions passes options to the underlying roster.
func WithRosterOptions(opts ...roster.Option) Option {
	return func(t *Tracker) {
		t.rosterOpts = append(t.rosterOpts, opts...)
	}
}

// New creates an empty Tracker. Call Load to restore the saved state.
func New(log *slog.Logger, store BlobStore, appMetrics *metrics.Metrics, opts ...Option) *Tracker {
	tracker := &Tracker{
		ledger:     ledger.New(),
		store:      store,
		log:        log,
		metrics:    appMetrics,
		now:        time.Now,
		loc:        time.Local,
		timeFormat: DefaultTimeFormat,
	}
	for _, opt := range opts {
		opt(tracker)
	}

	rosterOpts := append([]roster.Option{roster.WithClock(tracker.localNow)}, tracker.rosterOpts...)
	tracker.roster = roster.New(rosterOpts...)

	return tracker
}

// Load restores the saved state. A missing or unreadable document leaves the
// tracker empty, or seeded with demo workers when enabled. Only a failing
// store is reported as an error.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	startTime := time.Now()
	payload, err := t.store.Load(ctx)
	t.metrics.StoreDuration.WithLabelValues("load").Observe(time.Since(startTime).Seconds())

	switch {
	case errors.Is(err, repository.ErrStateNotFound):
		t.log.InfoContext(ctx, "No saved state found, starting fresh", "seed_demo", t.seedDemo)
		t.seedLocked(ctx)
		return nil
	case err != nil:
		t.metrics.StoreFailures.WithLabelValues("load").Inc()
		return fmt.Errorf("failed to load saved state: %w", err)
	}

	var snapshot models.Snapshot
	if err = json.Unmarshal(payload, &snapshot); err != nil {
		t.metrics.StoreFailures.WithLabelValues("decode").Inc()
		t.log.ErrorContext(ctx, "Saved state is unreadable, starting fresh", "error", err)
		t.seedLocked(ctx)
		return nil
	}

	droppedWorkers := t.roster.Restore(snapshot.Workers)
	droppedRecords := t.ledger.Restore(snapshot.Attendance)
	if droppedWorkers > 0 || droppedRecords > 0 {
		t.log.WarnContext(ctx, "Skipped malformed entries in saved state",
			"workers", droppedWorkers, "records", droppedRecords)
	}
	t.metrics.RosterSize.Set(float64(t.roster.Len()))

	t.log.InfoContext(ctx, "State restored", "workers", t.roster.Len(), "records", t.ledger.Len())
	return nil
}

// AddWorker validates the draft and appends a new worker to the roster.
func (t *Tracker) AddWorker(ctx context.Context, draft models.WorkerDraft) (models.Worker, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	worker, err := t.roster.Add(draft)
	if err != nil {
		return models.Worker{}, err
	}

	t.metrics.RosterChanges.WithLabelValues("add").Inc()
	t.metrics.RosterSize.Set(float64(t.roster.Len()))
	t.log.InfoContext(ctx, "Worker added", "worker", worker.ID)
	t.persistLocked(ctx)

	return worker, nil
}

// RemoveWorker deletes the worker together with all of its attendance records.
// Unknown ids are a no-op; it reports whether a worker was removed.
func (t *Tracker) RemoveWorker(ctx context.Context, workerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := t.ledger.RemoveForWorker(workerID)
	removed := t.roster.Remove(workerID)
	if !removed && records == 0 {
		return false
	}

	if removed {
		t.metrics.RosterChanges.WithLabelValues("remove").Inc()
		t.metrics.RosterSize.Set(float64(t.roster.Len()))
	}
	t.log.InfoContext(ctx, "Worker removed", "worker", workerID, "records", records)
	t.persistLocked(ctx)

	return removed
}

// MarkStatus sets the status of a worker for today.
func (t *Tracker) MarkStatus(
	ctx context.Context,
	workerID string,
	status models.Status,
) (models.AttendanceRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.markLocked(ctx, workerID, status)
}

// Toggle flips a worker between present and absent for today.
// A worker without a present record becomes present.
func (t *Tracker) Toggle(ctx context.Context, workerID string) (models.AttendanceRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := models.StatusPresent
	if record, ok := t.ledger.Get(workerID, t.today()); ok && record.Status == models.StatusPresent {
		next = models.StatusAbsent
	}

	return t.markLocked(ctx, workerID, next)
}

func (t *Tracker) markLocked(
	ctx context.Context,
	workerID string,
	status models.Status,
) (models.AttendanceRecord, error) {
	worker, ok := t.roster.Find(workerID)
	if !ok {
		return models.AttendanceRecord{}, fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}

	now := t.localNow()
	stamp := now.Format(t.timeFormat)
	record, err := t.ledger.MarkStatus(workerID, models.DateOf(now), status, stamp)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	if status == models.StatusPresent {
		t.lastMarked = &models.LastMarked{Name: worker.Name, Time: stamp}
	}

	t.metrics.AttendanceMarks.WithLabelValues(string(status)).Inc()
	t.log.DebugContext(ctx, "Attendance marked", "worker", workerID, "status", status, "date", record.Date)
	t.persistLocked(ctx)

	return record, nil
}

// Today returns the current calendar date in the tracker's time zone.
func (t *Tracker) Today() models.Date {
	return t.today()
}

// Summary returns the counters of today.
func (t *Tracker) Summary() ledger.DaySummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ledger.Summarize(t.roster.List(), t.ledger.RecordsForDate(t.today()))
}

// SummaryFor returns the counters of the given day.
func (t *Tracker) SummaryFor(date models.Date) ledger.DaySummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ledger.Summarize(t.roster.List(), t.ledger.RecordsForDate(date))
}

// Roll returns today's roster filtered by mode, each worker with its record of the day.
func (t *Tracker) Roll(mode ledger.FilterMode) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.rollLocked(t.today(), mode)
}

// RollFor is Roll for an arbitrary day.
func (t *Tracker) RollFor(date models.Date, mode ledger.FilterMode) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.rollLocked(date, mode)
}

func (t *Tracker) rollLocked(date models.Date, mode ledger.FilterMode) []Entry {
	dayRecords := t.ledger.RecordsForDate(date)
	workers := ledger.FilterWorkers(t.roster.List(), dayRecords, mode)

	entries := make([]Entry, 0, len(workers))
	for _, worker := range workers {
		record, ok := t.ledger.Get(worker.ID, date)
		entries = append(entries, Entry{Worker: worker, Record: record, Marked: ok})
	}
	return entries
}

// Workers returns the roster in insertion order.
func (t *Tracker) Workers() []models.Worker {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.roster.List()
}

// Search returns the workers whose name contains query, case-insensitively.
func (t *Tracker) Search(query string) []models.Worker {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.roster.Search(query)
}

// Worker returns the worker with the given id.
func (t *Tracker) Worker(workerID string) (models.Worker, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.roster.Find(workerID)
}

// Recent returns the last n attendance records together with the roster,
// copied so callers can hand them to background work.
func (t *Tracker) Recent(n int) ([]models.Worker, []models.AttendanceRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.roster.List(), t.ledger.Recent(n)
}

// LastMarked returns the most recent worker marked present since startup.
func (t *Tracker) LastMarked() (models.LastMarked, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastMarked == nil {
		return models.LastMarked{}, false
	}
	return *t.lastMarked, true
}

// Snapshot returns a copy of the whole state.
func (t *Tracker) Snapshot() models.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() models.Snapshot {
	return models.Snapshot{Workers: t.roster.List(), Attendance: t.ledger.All()}
}

// persistLocked writes the whole state to the store. Failures are logged and
// counted; the in-memory state is kept.
func (t *Tracker) persistLocked(ctx context.Context) {
	payload, err := json.Marshal(t.snapshotLocked())
	if err != nil {
		t.metrics.StoreFailures.WithLabelValues("encode").Inc()
		t.log.ErrorContext(ctx, "Failed to encode state", "error", err)
		return
	}

	startTime := time.Now()
	err = t.store.Save(ctx, payload)
	t.metrics.StoreDuration.WithLabelValues("save").Observe(time.Since(startTime).Seconds())
	if err != nil {
		t.metrics.StoreFailures.WithLabelValues("save").Inc()
		t.log.ErrorContext(ctx, "Failed to save state", "error", err)
	}
}

func (t *Tracker) seedLocked(ctx context.Context) {
	if !t.seedDemo {
		return
	}

	t.roster.Restore(demoWorkers())
	t.metrics.RosterSize.Set(float64(t.roster.Len()))
	t.log.InfoContext(ctx, "Seeded demo roster", "workers", t.roster.Len())
	t.persistLocked(ctx)
}

func (t *Tracker) localNow() time.Time {
	return t.now().In(t.loc)
}

func (t *Tracker) today() models.Date {
	return models.DateOf(t.localNow())
}

func demoWorkers() []models.Worker {
	return []models.Worker{
		{
			ID: "demo-1", WorkerIDNum: "১০০১", Name: "রহিম মোল্লা", Phone: "01712345678",
			Designation: models.DesignationMason, JoinDate: "2024-01-01",
		},
		{
			ID: "demo-2", WorkerIDNum: "১০০২", Name: "করিম শেখ", Phone: "01812345678",
			Designation: models.DesignationHelper, JoinDate: "2024-01-05",
		},
		{
			ID: "demo-3", WorkerIDNum: "১০০৩", Name: "আলি আহমেদ", Phone: "01912345678",
			Designation: models.DesignationMason, JoinDate: "2024-01-10",
		},
	}
}

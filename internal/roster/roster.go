package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidWorker is returned when a worker draft does not pass validation,
// e.g. when its name is empty.
var ErrInvalidWorker = errors.New("invalid worker")

// maxIDAttempts bounds the retries when a generated id collides with an issued one.
const maxIDAttempts = 8

// Roster owns the authoritative set of workers in insertion order.
// It is not safe for concurrent use; callers serialize access.
type Roster struct {
	workers  []models.Worker
	issued   map[string]struct{} // every id handed out or restored, removed ones included
	validate *validator.Validate
	newID    func() string
	now      func() time.Time
}

// Option configures a Roster.
type Option func(*Roster)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Roster) {
		r.newID = gen
	}
}

// WithClock sets the clock used to stamp join dates.
func WithClock(now func() time.Time) Option {
	return func(r *Roster) {
		r.now = now
	}
}

// New creates an empty roster.
func New(opts ...Option) *Roster {
	roster := &Roster{
		issued:   make(map[string]struct{}),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(roster)
	}

	return roster
}

// Restore replaces the roster content with previously persisted workers.
// Workers with an empty or duplicated id are dropped, the first occurrence wins.
// It returns the number of dropped workers.
func (r *Roster) Restore(workers []models.Worker) int {
	r.workers = make([]models.Worker, 0, len(workers))
	seen := make(map[string]struct{}, len(workers))
	dropped := 0

	for _, worker := range workers {
		if worker.ID == "" {
			dropped++
			continue
		}
		if _, dup := seen[worker.ID]; dup {
			dropped++
			continue
		}
		seen[worker.ID] = struct{}{}
		r.issued[worker.ID] = struct{}{}
		r.workers = append(r.workers, worker)
	}

	return dropped
}

// Add validates the draft, assigns a fresh identifier and today's join date,
// and appends the worker to the roster.
func (r *Roster) Add(draft models.WorkerDraft) (models.Worker, error) {
	draft = normalizeDraft(draft)
	if err := r.validate.Struct(draft); err != nil {
		return models.Worker{}, fmt.Errorf("%w: %w", ErrInvalidWorker, err)
	}

	id, err := r.freshID()
	if err != nil {
		return models.Worker{}, err
	}

	worker := models.Worker{
		ID:          id,
		WorkerIDNum: draft.WorkerIDNum,
		Name:        draft.Name,
		Phone:       draft.Phone,
		Designation: draft.Designation,
		JoinDate:    models.DateOf(r.now()),
		Photo:       draft.Photo,
	}
	r.issued[id] = struct{}{}
	r.workers = append(r.workers, worker)

	return worker, nil
}

// Remove deletes the worker with the given id. Unknown ids are a no-op.
// It reports whether a worker was removed.
func (r *Roster) Remove(id string) bool {
	for idx, worker := range r.workers {
		if worker.ID == id {
			r.workers = append(r.workers[:idx], r.workers[idx+1:]...)
			return true
		}
	}
	return false
}

// Find returns the worker with the given id.
func (r *Roster) Find(id string) (models.Worker, bool) {
	for _, worker := range r.workers {
		if worker.ID == id {
			return worker, true
		}
	}
	return models.Worker{}, false
}

// List returns a copy of all workers in insertion order.
func (r *Roster) List() []models.Worker {
	workers := make([]models.Worker, len(r.workers))
	copy(workers, r.workers)
	return workers
}

// Search returns the workers whose name contains query, ignoring case.
// An empty query matches everyone.
func (r *Roster) Search(query string) []models.Worker {
	needle := strings.ToLower(strings.TrimSpace(query))
	matches := make([]models.Worker, 0, len(r.workers))

	for _, worker := range r.workers {
		if strings.Contains(strings.ToLower(worker.Name), needle) {
			matches = append(matches, worker)
		}
	}

	return matches
}

// Len returns the number of workers.
func (r *Roster) Len() int {
	return len(r.workers)
}

func (r *Roster) freshID() (string, error) {
	for range maxIDAttempts {
		id := r.newID()
		if id == "" {
			continue
		}
		if _, used := r.issued[id]; !used {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique worker id after %d attempts", maxIDAttempts)
}

func normalizeDraft(draft models.WorkerDraft) models.WorkerDraft {
	draft.WorkerIDNum = strings.TrimSpace(draft.WorkerIDNum)
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Phone = strings.TrimSpace(draft.Phone)
	draft.Designation = strings.TrimSpace(draft.Designation)
	if draft.Designation == "" {
		draft.Designation = models.DefaultDesignation
	}
	return draft
}

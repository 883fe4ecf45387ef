package ledger

import (
	"errors"
	"fmt"

	"github.com/UnknownOlympus/hazira/internal/models"
)

// ErrInvalidStatus is returned when a status outside present/absent/late/none is written.
var ErrInvalidStatus = errors.New("invalid attendance status")

type recordKey struct {
	workerID string
	date     models.Date
}

// Ledger is a sparse map of (worker, date) to attendance record that keeps
// the storage order of first insertion. It is not safe for concurrent use.
type Ledger struct {
	records []models.AttendanceRecord
	index   map[recordKey]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{index: make(map[recordKey]int)}
}

// Restore replaces the ledger content with persisted records. A later record for
// an already seen (worker, date) pair overwrites the earlier one in its position.
// Records with an invalid status are dropped. It returns the number of records
// that were collapsed or dropped.
func (l *Ledger) Restore(records []models.AttendanceRecord) int {
	l.records = make([]models.AttendanceRecord, 0, len(records))
	l.index = make(map[recordKey]int, len(records))
	skipped := 0

	for _, record := range records {
		if !record.Status.Valid() {
			skipped++
			continue
		}
		key := recordKey{workerID: record.WorkerID, date: record.Date}
		if pos, ok := l.index[key]; ok {
			l.records[pos] = record
			skipped++
			continue
		}
		l.index[key] = len(l.records)
		l.records = append(l.records, record)
	}

	return skipped
}

// MarkStatus upserts the record of workerID on date. The time stamp now is kept
// only for the present status and cleared for every other one.
func (l *Ledger) MarkStatus(
	workerID string,
	date models.Date,
	status models.Status,
	now string,
) (models.AttendanceRecord, error) {
	if !status.Valid() {
		return models.AttendanceRecord{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	record := models.AttendanceRecord{Date: date, WorkerID: workerID, Status: status}
	if status == models.StatusPresent {
		record.Time = now
	}

	key := recordKey{workerID: workerID, date: date}
	if pos, ok := l.index[key]; ok {
		l.records[pos] = record
		return record, nil
	}

	l.index[key] = len(l.records)
	l.records = append(l.records, record)

	return record, nil
}

// Get returns the record of workerID on date.
func (l *Ledger) Get(workerID string, date models.Date) (models.AttendanceRecord, bool) {
	pos, ok := l.index[recordKey{workerID: workerID, date: date}]
	if !ok {
		return models.AttendanceRecord{}, false
	}
	return l.records[pos], true
}

// RecordsForDate returns every record of the given day in storage order.
func (l *Ledger) RecordsForDate(date models.Date) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0)
	for _, record := range l.records {
		if record.Date == date {
			records = append(records, record)
		}
	}
	return records
}

// RemoveForWorker deletes all records of workerID across all dates
// and returns how many were deleted.
func (l *Ledger) RemoveForWorker(workerID string) int {
	kept := l.records[:0]
	removed := 0

	for _, record := range l.records {
		if record.WorkerID == workerID {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	if removed == 0 {
		return 0
	}

	l.records = kept
	l.reindex()

	return removed
}

// Recent returns up to n last records in storage order.
func (l *Ledger) Recent(n int) []models.AttendanceRecord {
	if n <= 0 {
		return []models.AttendanceRecord{}
	}
	start := max(len(l.records)-n, 0)
	records := make([]models.AttendanceRecord, len(l.records)-start)
	copy(records, l.records[start:])
	return records
}

// All returns a copy of every record in storage order.
func (l *Ledger) All() []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, len(l.records))
	copy(records, l.records)
	return records
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) reindex() {
	l.index = make(map[recordKey]int, len(l.records))
	for pos, record := range l.records {
		l.index[recordKey{workerID: record.WorkerID, date: record.Date}] = pos
	}
}

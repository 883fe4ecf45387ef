package ledger

import (
	"fmt"

	"github.com/UnknownOlympus/hazira/internal/models"
)

// FilterMode selects which workers a roster view shows for a day.
type FilterMode string

const (
	// FilterAll shows every worker.
	FilterAll FilterMode = "all"
	// FilterPresent shows workers marked present.
	FilterPresent FilterMode = "present"
	// FilterPending shows workers without a record or with a non-present record.
	FilterPending FilterMode = "pending"
)

// ParseFilterMode converts s into a FilterMode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch mode := FilterMode(s); mode {
	case FilterAll, FilterPresent, FilterPending:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

// DaySummary holds the derived counters of a single day.
type DaySummary struct {
	Total     int // Workers in the roster
	Present   int // Records with status present
	Absent    int // Records with status absent
	Late      int // Records with status late
	Remaining int // Workers without any record for the day
}

// PresentCount counts the records with status present.
func PresentCount(dayRecords []models.AttendanceRecord) int {
	count := 0
	for _, record := range dayRecords {
		if record.Status == models.StatusPresent {
			count++
		}
	}
	return count
}

// RemainingCount counts the workers that have no record at all in dayRecords.
// A worker explicitly marked absent is processed and therefore not remaining.
func RemainingCount(workers []models.Worker, dayRecords []models.AttendanceRecord) int {
	byWorker := indexByWorker(dayRecords)
	remaining := 0
	for _, worker := range workers {
		if _, ok := byWorker[worker.ID]; !ok {
			remaining++
		}
	}
	return remaining
}

// FilterWorkers returns the workers matching mode, in roster order.
// The present and pending views partition the roster.
func FilterWorkers(
	workers []models.Worker,
	dayRecords []models.AttendanceRecord,
	mode FilterMode,
) []models.Worker {
	byWorker := indexByWorker(dayRecords)
	filtered := make([]models.Worker, 0, len(workers))

	for _, worker := range workers {
		record, ok := byWorker[worker.ID]
		isPresent := ok && record.Status == models.StatusPresent

		switch mode {
		case FilterPresent:
			if isPresent {
				filtered = append(filtered, worker)
			}
		case FilterPending:
			if !isPresent {
				filtered = append(filtered, worker)
			}
		default:
			filtered = append(filtered, worker)
		}
	}

	return filtered
}

// Summarize computes every counter of a day at once.
func Summarize(workers []models.Worker, dayRecords []models.AttendanceRecord) DaySummary {
	summary := DaySummary{
		Total:     len(workers),
		Present:   PresentCount(dayRecords),
		Remaining: RemainingCount(workers, dayRecords),
	}
	for _, record := range dayRecords {
		switch record.Status {
		case models.StatusAbsent:
			summary.Absent++
		case models.StatusLate:
			summary.Late++
		case models.StatusPresent, models.StatusNone:
		}
	}
	return summary
}

func indexByWorker(dayRecords []models.AttendanceRecord) map[string]models.AttendanceRecord {
	byWorker := make(map[string]models.AttendanceRecord, len(dayRecords))
	for _, record := range dayRecords {
		byWorker[record.WorkerID] = record
	}
	return byWorker
}

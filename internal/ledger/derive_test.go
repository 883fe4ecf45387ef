package ledger_test

import (
	"testing"

	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crew() []models.Worker {
	return []models.Worker{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}
}

func ids(workers []models.Worker) []string {
	out := make([]string, 0, len(workers))
	for _, worker := range workers {
		out = append(out, worker.ID)
	}
	return out
}

func TestRemainingIsNotAbsent(t *testing.T) {
	t.Parallel()
	book := ledger.New()

	_, _ = book.MarkStatus("a", monday, models.StatusPresent, "09:00")
	_, _ = book.MarkStatus("b", monday, models.StatusAbsent, "")

	day := book.RecordsForDate(monday)

	assert.Equal(t, 1, ledger.RemainingCount(crew(), day))
	assert.Equal(t, 1, ledger.PresentCount(day))
}

func TestRemainingIgnoresOrphanRecords(t *testing.T) {
	t.Parallel()
	day := []models.AttendanceRecord{
		{Date: monday, WorkerID: "gone", Status: models.StatusPresent},
		{Date: monday, WorkerID: "a", Status: models.StatusPresent},
	}

	assert.Equal(t, 2, ledger.RemainingCount(crew(), day))
}

func TestFilterWorkers(t *testing.T) {
	t.Parallel()
	book := ledger.New()

	_, _ = book.MarkStatus("a", monday, models.StatusPresent, "09:00")
	_, _ = book.MarkStatus("b", monday, models.StatusLate, "")
	day := book.RecordsForDate(monday)

	assert.Equal(t, []string{"a", "b", "c"}, ids(ledger.FilterWorkers(crew(), day, ledger.FilterAll)))
	assert.Equal(t, []string{"a"}, ids(ledger.FilterWorkers(crew(), day, ledger.FilterPresent)))
	assert.Equal(t, []string{"b", "c"}, ids(ledger.FilterWorkers(crew(), day, ledger.FilterPending)))
}

func TestFilterPartition(t *testing.T) {
	t.Parallel()
	statuses := []models.Status{
		"", models.StatusPresent, models.StatusAbsent, models.StatusLate, models.StatusNone,
	}

	// every combination of statuses for the three workers, "" meaning no record
	for _, sa := range statuses {
		for _, sb := range statuses {
			for _, sc := range statuses {
				book := ledger.New()
				for worker, status := range map[string]models.Status{"a": sa, "b": sb, "c": sc} {
					if status != "" {
						_, err := book.MarkStatus(worker, monday, status, "09:00")
						require.NoError(t, err)
					}
				}
				day := book.RecordsForDate(monday)

				present := ids(ledger.FilterWorkers(crew(), day, ledger.FilterPresent))
				pending := ids(ledger.FilterWorkers(crew(), day, ledger.FilterPending))

				assert.Len(t, append(present, pending...), 3)
				assert.ElementsMatch(t, []string{"a", "b", "c"}, append(present, pending...))
				for _, id := range present {
					assert.NotContains(t, pending, id)
				}
			}
		}
	}
}

func TestDayScenario(t *testing.T) {
	t.Parallel()
	book := ledger.New()
	workers := crew()

	day := book.RecordsForDate(monday)
	assert.Equal(t, 0, ledger.PresentCount(day))
	assert.Equal(t, 3, ledger.RemainingCount(workers, day))

	_, err := book.MarkStatus("a", monday, models.StatusPresent, "10:00")
	require.NoError(t, err)
	day = book.RecordsForDate(monday)
	assert.Equal(t, 1, ledger.PresentCount(day))
	assert.Equal(t, 2, ledger.RemainingCount(workers, day))
	record, _ := book.Get("a", monday)
	assert.Equal(t, "10:00", record.Time)

	_, err = book.MarkStatus("a", monday, models.StatusAbsent, "10:10")
	require.NoError(t, err)
	day = book.RecordsForDate(monday)
	assert.Equal(t, 0, ledger.PresentCount(day))
	record, _ = book.Get("a", monday)
	assert.Equal(t, models.StatusAbsent, record.Status)
	assert.Empty(t, record.Time)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	day := []models.AttendanceRecord{
		{Date: monday, WorkerID: "a", Status: models.StatusPresent, Time: "09:00"},
		{Date: monday, WorkerID: "b", Status: models.StatusLate},
	}

	assert.Equal(t, ledger.DaySummary{Total: 3, Present: 1, Late: 1, Remaining: 1},
		ledger.Summarize(crew(), day))
}

func TestParseFilterMode(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"all", "present", "pending"} {
		mode, err := ledger.ParseFilterMode(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, string(mode))
	}

	_, err := ledger.ParseFilterMode("absent")
	require.Error(t, err)
}

package insight

import (
	"context"
	"slices"

	"github.com/UnknownOlympus/hazira/internal/models"
)

// Task is a one-shot summary computation over a snapshot taken at launch time.
// Its only observable effect is the result slot, filled once.
type Task struct {
	done   chan struct{}
	result string
}

// Launch starts summarizing copies of workers and records in the background.
// Later changes to the caller's slices do not affect the result.
// A panic while summarizing yields FallbackMessage.
func Launch(
	ctx context.Context,
	summarizer *Summarizer,
	workers []models.Worker,
	records []models.AttendanceRecord,
) *Task {
	workers = slices.Clone(workers)
	records = slices.Clone(records)

	task := &Task{done: make(chan struct{})}
	go func() {
		defer close(task.done)
		defer func() {
			if r := recover(); r != nil {
				summarizer.log.ErrorContext(ctx, "Summary task panicked", "panic", r)
				task.result = FallbackMessage
			}
		}()
		task.result = summarizer.Summarize(ctx, workers, records)
	}()

	return task
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the summary if the task has finished.
func (t *Task) Result() (string, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return "", false
	}
}

// Wait blocks until the task finishes or ctx is done, in which case it returns FallbackMessage.
func (t *Task) Wait(ctx context.Context) string {
	select {
	case <-t.done:
		return t.result
	case <-ctx.Done():
		return FallbackMessage
	}
}

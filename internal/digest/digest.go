package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 2 * time.Minute

// Notifier delivers the end-of-day digest.
type Notifier interface {
	SendDigest(ctx context.Context) error
}

// Scheduler runs the digest on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	log      *slog.Logger
	notifier Notifier
	loc      *time.Location
	timeout  time.Duration
}

// New creates a Scheduler that calls notifier on schedule, a standard
// five-field cron expression or descriptor, evaluated in loc.
func New(log *slog.Logger, loc *time.Location, schedule string, notifier Notifier) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelWarn))

	scheduler := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		log:      log,
		notifier: notifier,
		loc:      loc,
		timeout:  defaultRunTimeout,
	}

	if _, err := scheduler.cron.AddFunc(schedule, scheduler.Run); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}

	return scheduler, nil
}

// Run sends one digest immediately.
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.log.InfoContext(ctx, "Sending daily digest")
	if err := s.notifier.SendDigest(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to send daily digest", "error", err)
		return
	}
	s.log.DebugContext(ctx, "Daily digest sent")
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.log.Info("Digest scheduler started", "next", s.Next())
	s.cron.Start()
}

// Stop halts the schedule and waits for a running digest until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Digest scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Digest scheduler stop timed out", "error", ctx.Err())
	}
}

// Next returns the next scheduled run. Before Start the run is computed from
// the current time in the schedule location.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}

package digest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/hazira/internal/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	calls atomic.Int32
	err   error
}

func (n *countingNotifier) SendDigest(_ context.Context) error {
	n.calls.Add(1)
	return n.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidSchedule(t *testing.T) {
	t.Parallel()

	scheduler, err := digest.New(discardLogger(), time.UTC, "not a schedule", &countingNotifier{})

	require.Error(t, err)
	assert.Nil(t, scheduler)
	assert.ErrorContains(t, err, "invalid digest schedule")
}

func TestRun(t *testing.T) {
	t.Parallel()

	notifier := &countingNotifier{}
	scheduler, err := digest.New(discardLogger(), time.UTC, "0 20 * * *", notifier)
	require.NoError(t, err)

	scheduler.Run()
	assert.Equal(t, int32(1), notifier.calls.Load())

	notifier.err = errors.New("telegram is down")
	scheduler.Run()
	assert.Equal(t, int32(2), notifier.calls.Load())
}

func TestNext(t *testing.T) {
	t.Parallel()

	zones := []*time.Location{
		time.FixedZone("BDT", 6*60*60),
		time.FixedZone("EST", -5*60*60),
		time.FixedZone("NZST", 12*60*60),
		time.UTC,
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			t.Parallel()
			scheduler, err := digest.New(discardLogger(), loc, "0 20 * * *", &countingNotifier{})
			require.NoError(t, err)

			next := scheduler.Next()
			assert.Equal(t, loc, next.Location(), "next run is reported in the schedule location")
			assert.Equal(t, 20, next.Hour())
			assert.Equal(t, 0, next.Minute())
			assert.True(t, next.After(time.Now()))
			assert.True(t, next.Before(time.Now().Add(24*time.Hour+time.Minute)))
		})
	}
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping scheduler timing test in short mode.")
	}

	notifier := &countingNotifier{}
	scheduler, err := digest.New(discardLogger(), time.UTC, "@every 1s", notifier)
	require.NoError(t, err)

	scheduler.Start()
	assert.Eventually(t, func() bool {
		return notifier.calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}

package insight_test

import (
	"context"
	"testing"
	"time"

	"github.com/UnknownOlympus/hazira/internal/insight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunch_UsesSnapshot(t *testing.T) {
	gen := &fakeGenerator{text: "ok", block: make(chan struct{})}
	summarizer, _ := newTestSummarizer(gen)
	workers, records := sampleCrew()

	task := insight.Launch(t.Context(), summarizer, workers, records)

	_, finished := task.Result()
	assert.False(t, finished)

	// Changes after launch must not leak into the running task.
	workers[0].Name = "Changed"
	records[0].Status = "late"

	close(gen.block)

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}

	result, finished := task.Result()
	require.True(t, finished)
	assert.Equal(t, "ok", result)

	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], `"name":"Karim"`)
	assert.NotContains(t, gen.prompts[0], "Changed")
	assert.NotContains(t, gen.prompts[0], `"status":"late"`)
}

func TestTask_Wait(t *testing.T) {
	gen := &fakeGenerator{text: "done"}
	summarizer, _ := newTestSummarizer(gen)
	workers, records := sampleCrew()

	task := insight.Launch(t.Context(), summarizer, workers, records)

	assert.Equal(t, "done", task.Wait(t.Context()))
}

func TestTask_WaitCanceled(t *testing.T) {
	gen := &fakeGenerator{text: "never", block: make(chan struct{})}
	defer close(gen.block)
	summarizer, _ := newTestSummarizer(gen)
	workers, records := sampleCrew()

	task := insight.Launch(t.Context(), summarizer, workers, records)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.Equal(t, insight.FallbackMessage, task.Wait(ctx))
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string, string) (string, error) {
	panic("generator exploded")
}

func TestLaunch_RecoversFromPanic(t *testing.T) {
	summarizer, _ := newTestSummarizer(panickingGenerator{})
	workers, records := sampleCrew()

	task := insight.Launch(t.Context(), summarizer, workers, records)

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}

	result, finished := task.Result()
	require.True(t, finished)
	assert.Equal(t, insight.FallbackMessage, result)
	assert.Equal(t, insight.FallbackMessage, task.Wait(t.Context()))
}

package insight_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/hazira/internal/insight"
	"github.com/UnknownOlympus/hazira/internal/metrics"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   chan struct{}
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	value, ok := c.values[key]
	if !ok {
		return "", insight.ErrCacheMiss
	}
	return value, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func newTestSummarizer(gen insight.Generator, opts ...insight.Option) (*insight.Summarizer, *metrics.Metrics) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	return insight.NewSummarizer(logger, gen, appMetrics, opts...), appMetrics
}

func sampleCrew() ([]models.Worker, []models.AttendanceRecord) {
	workers := []models.Worker{
		{ID: "w1", Name: "Karim", Designation: "মিস্ত্রি", JoinDate: "2024-01-01", Photo: "photo-file-id"},
		{ID: "w2", Name: "Rahim", Designation: "হেল্পার", JoinDate: "2024-02-01"},
	}
	records := []models.AttendanceRecord{
		{Date: "2024-03-01", WorkerID: "w1", Status: models.StatusPresent, Time: "09:00 AM"},
		{Date: "2024-03-01", WorkerID: "w2", Status: models.StatusAbsent},
	}
	return workers, records
}

func TestSummarize_Generated(t *testing.T) {
	gen := &fakeGenerator{text: "  দল ভালো কাজ করছে।  "}
	summarizer, appMetrics := newTestSummarizer(gen)
	workers, records := sampleCrew()

	got := summarizer.Summarize(t.Context(), workers, records)

	assert.Equal(t, "দল ভালো কাজ করছে।", got)
	assert.Equal(t, 1, gen.calls())
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.InsightRequests.WithLabelValues("generated")), 0)
}

func TestSummarize_Fallbacks(t *testing.T) {
	workers, records := sampleCrew()

	testCases := []struct {
		name string
		gen  insight.Generator
	}{
		{name: "not configured", gen: nil},
		{name: "generator error", gen: &fakeGenerator{err: errors.New("quota exceeded")}},
		{name: "empty response", gen: &fakeGenerator{text: "   "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			summarizer, appMetrics := newTestSummarizer(tc.gen)

			got := summarizer.Summarize(t.Context(), workers, records)

			assert.Equal(t, insight.FallbackMessage, got)
			assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.InsightRequests.WithLabelValues("fallback")), 0)
		})
	}
}

func TestSummarize_Timeout(t *testing.T) {
	gen := &fakeGenerator{text: "late", block: make(chan struct{})}
	defer close(gen.block)
	summarizer, _ := newTestSummarizer(gen, insight.WithTimeout(20*time.Millisecond))
	workers, records := sampleCrew()

	got := summarizer.Summarize(t.Context(), workers, records)

	assert.Equal(t, insight.FallbackMessage, got)
}

func TestSummarize_Cache(t *testing.T) {
	gen := &fakeGenerator{text: "summary"}
	cache := newFakeCache()
	summarizer, appMetrics := newTestSummarizer(gen, insight.WithCache(cache))
	workers, records := sampleCrew()

	first := summarizer.Summarize(t.Context(), workers, records)
	second := summarizer.Summarize(t.Context(), workers, records)

	assert.Equal(t, "summary", first)
	assert.Equal(t, "summary", second)
	assert.Equal(t, 1, gen.calls(), "second call is served from cache")
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.CacheOps.WithLabelValues("get", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.CacheOps.WithLabelValues("get", "miss")), 0)

	records = append(records, models.AttendanceRecord{Date: "2024-03-02", WorkerID: "w1", Status: models.StatusLate})
	summarizer.Summarize(t.Context(), workers, records)
	assert.Equal(t, 2, gen.calls(), "different input is generated again")
}

func TestSummarize_CacheErrorIsIgnored(t *testing.T) {
	gen := &fakeGenerator{text: "summary"}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	summarizer, appMetrics := newTestSummarizer(gen, insight.WithCache(cache))
	workers, records := sampleCrew()

	assert.Equal(t, "summary", summarizer.Summarize(t.Context(), workers, records))
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.CacheOps.WithLabelValues("get", "error")), 0)
}

func TestBuildPrompt(t *testing.T) {
	workers, _ := sampleCrew()

	records := make([]models.AttendanceRecord, 0, 25)
	for day := 1; day <= 25; day++ {
		records = append(records, models.AttendanceRecord{
			Date:     models.Date(fmt.Sprintf("2024-01-%02d", day)),
			WorkerID: "w1",
			Status:   models.StatusAbsent,
		})
	}

	prompt, err := insight.BuildPrompt(workers, records)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Bengali")
	assert.Contains(t, prompt, "max 3 sentences")
	assert.Contains(t, prompt, `"name":"Karim"`)
	assert.Contains(t, prompt, `"name":"Rahim"`)
	assert.NotContains(t, prompt, "photo-file-id")
	assert.NotContains(t, prompt, "2024-01-05", "only the latest entries are included")
	assert.Contains(t, prompt, "2024-01-06")
	assert.Contains(t, prompt, "2024-01-25")
	assert.Equal(t, insight.RecentLimit, strings.Count(prompt, `"workerId":"w1"`))
}

func TestBuildPrompt_Empty(t *testing.T) {
	prompt, err := insight.BuildPrompt(nil, nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Workers: []")
	assert.Contains(t, prompt, "Recent Attendance: []")
}

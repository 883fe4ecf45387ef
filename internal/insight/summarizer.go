package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hazira/internal/metrics"
	"github.com/UnknownOlympus/hazira/internal/models"
)

const (
	// FallbackMessage is returned whenever a summary cannot be produced.
	FallbackMessage = "এআই ইনসাইট বর্তমানে পাওয়া যাচ্ছে না।"
	// RecentLimit is the number of latest ledger entries a summary looks at.
	RecentLimit = 20

	systemInstruction = "You are a professional business assistant. Speak in polite Bengali."
	defaultTimeout    = 20 * time.Second
)

// Generator produces text for a prompt. Implementations talk to a text generation API.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Cache keeps generated summaries for identical prompts.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Summarizer turns a roster and its recent attendance into a short summary.
// It never fails: every error is logged and replaced by FallbackMessage.
type Summarizer struct {
	gen     Generator
	cache   Cache
	log     *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithCache enables caching of generated summaries.
func WithCache(cache Cache) Option {
	return func(s *Summarizer) {
		s.cache = cache
	}
}

// WithTimeout bounds a single generation call.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Summarizer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewSummarizer creates a Summarizer. A nil generator disables generation,
// so every call resolves to FallbackMessage.
func NewSummarizer(log *slog.Logger, gen Generator, appMetrics *metrics.Metrics, opts ...Option) *Summarizer {
	summarizer := &Summarizer{
		gen:     gen,
		log:     log,
		metrics: appMetrics,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(summarizer)
	}
	return summarizer
}

// Summarize returns a short natural language summary of workers and the last
// RecentLimit entries of records, or FallbackMessage on any failure.
func (s *Summarizer) Summarize(
	ctx context.Context,
	workers []models.Worker,
	records []models.AttendanceRecord,
) string {
	if s.gen == nil {
		s.log.DebugContext(ctx, "Text generation is not configured, using fallback")
		s.metrics.InsightRequests.WithLabelValues("fallback").Inc()
		return FallbackMessage
	}

	prompt, err := BuildPrompt(workers, records)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to build summary prompt", "error", err)
		s.metrics.InsightRequests.WithLabelValues("fallback").Inc()
		return FallbackMessage
	}

	key := promptKey(prompt)
	if cached, ok := s.fromCache(ctx, key); ok {
		s.metrics.InsightRequests.WithLabelValues("cached").Inc()
		return cached
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	text, err := s.gen.Generate(genCtx, systemInstruction, prompt)
	s.metrics.InsightDuration.Observe(time.Since(startTime).Seconds())
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		s.log.WarnContext(ctx, "Failed to generate summary", "error", err)
		s.metrics.InsightRequests.WithLabelValues("fallback").Inc()
		return FallbackMessage
	}

	s.toCache(ctx, key, text)
	s.metrics.InsightRequests.WithLabelValues("generated").Inc()

	return text
}

func (s *Summarizer) fromCache(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.WarnContext(ctx, "Failed to read summary from cache", "error", err)
			s.metrics.CacheOps.WithLabelValues("get", "error").Inc()
			return "", false
		}
		s.metrics.CacheOps.WithLabelValues("get", "miss").Inc()
		return "", false
	}

	s.metrics.CacheOps.WithLabelValues("get", "hit").Inc()
	return cached, true
}

func (s *Summarizer) toCache(ctx context.Context, key, text string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, text); err != nil {
		s.log.WarnContext(ctx, "Failed to save summary to cache", "error", err)
		s.metrics.CacheOps.WithLabelValues("set", "error").Inc()
		return
	}
	s.metrics.CacheOps.WithLabelValues("set", "success").Inc()
}

// promptWorker is the part of a worker that is sent to the text generation API.
// The photo is left out.
type promptWorker struct {
	ID          string      `json:"id"`
	WorkerIDNum string      `json:"workerIdNum,omitempty"`
	Name        string      `json:"name"`
	Designation string      `json:"designation"`
	JoinDate    models.Date `json:"joinDate"`
}

// BuildPrompt renders the summary prompt from the roster and the last RecentLimit records.
func BuildPrompt(workers []models.Worker, records []models.AttendanceRecord) (string, error) {
	crew := make([]promptWorker, 0, len(workers))
	for _, worker := range workers {
		crew = append(crew, promptWorker{
			ID:          worker.ID,
			WorkerIDNum: worker.WorkerIDNum,
			Name:        worker.Name,
			Designation: worker.Designation,
			JoinDate:    worker.JoinDate,
		})
	}

	recent := records
	if len(recent) > RecentLimit {
		recent = recent[len(recent)-RecentLimit:]
	}
	if recent == nil {
		recent = []models.AttendanceRecord{}
	}

	crewJSON, err := json.Marshal(crew)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workers: %w", err)
	}
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		return "", fmt.Errorf("failed to marshal attendance: %w", err)
	}

	var builder strings.Builder
	builder.WriteString("Based on the following worker data and attendance records, ")
	builder.WriteString("provide a summary in Bengali (max 3 sentences).\n")
	builder.WriteString("Workers: ")
	builder.Write(crewJSON)
	builder.WriteString("\nRecent Attendance: ")
	builder.Write(recentJSON)
	builder.WriteString("\nHighlight any worker with poor attendance or give a general encouragement message for the team.")

	return builder.String(), nil
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

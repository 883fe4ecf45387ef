package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker answers /healthz with the state of the state store and,
// when configured, the summary cache.
type HealthChecker struct {
	storage Pinger
	cache   Pinger
	log     *slog.Logger
	timeout time.Duration
}

// NewHealthChecker creates a HealthChecker. A nil cache is reported as disabled.
func NewHealthChecker(log *slog.Logger, storage, cache Pinger) *HealthChecker {
	return &HealthChecker{
		storage: storage,
		cache:   cache,
		log:     log,
		timeout: 2 * time.Second,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.storage.Ping(ctx); err != nil {
		status["storage"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(ctx, "Health check failed: storage ping", "error", err)
	} else {
		status["storage"] = "ok"
	}

	// A cache failure is reported but keeps the overall status.
	switch {
	case h.cache == nil:
		status["cache"] = "disabled"
	case h.cache.Ping(ctx) != nil:
		status["cache"] = "degraded"
		h.log.WarnContext(ctx, "Health check: cache is unreachable")
	default:
		status["cache"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}

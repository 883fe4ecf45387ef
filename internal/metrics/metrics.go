package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It includes counters for bot traffic, attendance marks and roster changes,
// histograms for storage and report durations, and counters for the summary client.
type Metrics struct {
	CommandReceived  *prometheus.CounterVec   // Counter for received commands
	SentMessages     *prometheus.CounterVec   // Counter for sent messages
	AttendanceMarks  *prometheus.CounterVec   // Counter for attendance marks by status
	RosterChanges    *prometheus.CounterVec   // Counter for added and removed workers
	RosterSize       prometheus.Gauge         // Gauge for the current number of workers
	StoreDuration    *prometheus.HistogramVec // Histogram for state store operations
	StoreFailures    *prometheus.CounterVec   // Counter for failed state store operations
	InsightRequests  *prometheus.CounterVec   // Counter for summary requests by outcome
	InsightDuration  prometheus.Histogram     // Histogram for text generation calls
	CacheOps         *prometheus.CounterVec   // Counter for summary cache operations
	ReportGeneration *prometheus.HistogramVec // Histogram for report generation durations
}

// NewMetrics creates a new Metrics instance with the provided Prometheus Registerer.
//
// Parameters:
//   - reg: A Prometheus Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CommandReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_commands_received_total",
			Help: "Total number of used commands",
		}, []string{"command"}), // command: start, dashboard, attendance, workers, search, add_worker, report, insight, language
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_messages_sent_total",
			Help: "Output bot activity",
		}, []string{"type"}), // type: text, edit, respond, file, photo, error
		AttendanceMarks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_attendance_marks_total",
			Help: "Total number of attendance status writes",
		}, []string{"status"}), // status: present, absent, late, none
		RosterChanges: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_roster_changes_total",
			Help: "Total number of roster mutations",
		}, []string{"op"}), // op: add, remove
		RosterSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hazira_roster_size",
			Help: "Current number of workers in the roster",
		}),
		StoreDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hazira_store_duration_seconds",
			Help:    "Duration of state store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}), // op: load, save
		StoreFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_store_failures_total",
			Help: "Total number of failed state store operations",
		}, []string{"op"}), // op: load, decode, encode, save
		InsightRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_insight_requests_total",
			Help: "Total number of summary requests by outcome",
		}, []string{"result"}), // result: generated, cached, fallback
		InsightDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "hazira_insight_duration_seconds",
			Help:    "Duration of text generation calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		CacheOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hazira_cache_operations_total",
			Help: "Summary cache operations",
		}, []string{"op", "result"}), // op: get, set; result: hit, miss, success, error
		ReportGeneration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "hazira_report_generation_duration_seconds",
			Help: "Duration of report excel generation.",
		}, []string{"trigger"}), // trigger: command, digest
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes solver observability counters. A nil Recorder is a no-op,
// so callers can leave metrics unwired in tests.
type Recorder struct {
	solves   *prometheus.CounterVec
	duration prometheus.Histogram
	fallback *prometheus.CounterVec
}

// NewRecorder registers the solver collectors on the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		solves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_solve_total",
			Help: "Solve invocations by terminal status.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_solve_duration_seconds",
			Help:    "Wall-clock duration of solve invocations.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		fallback: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_fallback_attempts_total",
			Help: "Fallback ladder attempts by level.",
		}, []string{"level"}),
	}
}

// ObserveSolve records one finished solve invocation.
func (r *Recorder) ObserveSolve(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.solves.WithLabelValues(status).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveFallback records one fallback ladder attempt.
func (r *Recorder) ObserveFallback(level string) {
	if r == nil {
		return
	}
	r.fallback.WithLabelValues(level).Inc()
}

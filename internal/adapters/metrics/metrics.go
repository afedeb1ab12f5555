package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for plan generation.
const (
	GenerationSuccess   = "success"
	GenerationMalformed = "malformed"
	GenerationFailed    = "failed"
)

// Metrics holds the Prometheus collectors for the server.
// Every method is safe to call on a nil *Metrics, which records nothing.
//
// Metrics:
//   - grindset_http_request_duration_seconds{method,route,status}
//   - grindset_db_query_duration_seconds{op}
//   - grindset_streak_increments_total
//   - grindset_exercise_toggles_total{action}
//   - grindset_plan_generations_total{outcome}
//   - grindset_publishes_total{kind}
//   - grindset_active_dashboards
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	QueryDuration    *prometheus.HistogramVec
	StreakIncrements prometheus.Counter
	Toggles          *prometheus.CounterVec
	Generations      *prometheus.CounterVec
	Publishes        *prometheus.CounterVec
	ActiveDashboards prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grindset_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		QueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grindset_db_query_duration_seconds",
				Help:    "Duration of database calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"op"},
		),
		StreakIncrements: f.NewCounter(prometheus.CounterOpts{
			Name: "grindset_streak_increments_total",
			Help: "Total number of persisted daily streak increments",
		}),
		Toggles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grindset_exercise_toggles_total",
				Help: "Total number of exercise completion toggles",
			},
			[]string{"action"}, // "complete" or "uncomplete"
		),
		Generations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grindset_plan_generations_total",
				Help: "Total number of AI plan generations by outcome",
			},
			[]string{"outcome"},
		),
		Publishes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grindset_publishes_total",
				Help: "Total number of daily records published by kind",
			},
			[]string{"kind"},
		),
		ActiveDashboards: f.NewGauge(prometheus.GaugeOpts{
			Name: "grindset_active_dashboards",
			Help: "Number of dashboard sessions currently held in memory",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// ObserveQuery records one database call. It satisfies storage.QueryObserver.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// StreakIncremented records a persisted streak increment.
func (m *Metrics) StreakIncremented() {
	if m == nil {
		return
	}
	m.StreakIncrements.Inc()
}

// Toggled records an exercise toggle.
func (m *Metrics) Toggled(completed bool) {
	if m == nil {
		return
	}
	action := "uncomplete"
	if completed {
		action = "complete"
	}
	m.Toggles.WithLabelValues(action).Inc()
}

// Generated records a plan generation outcome.
func (m *Metrics) Generated(outcome string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(outcome).Inc()
}

// Published records a published daily record of kind.
func (m *Metrics) Published(kind string) {
	if m == nil {
		return
	}
	m.Publishes.WithLabelValues(kind).Inc()
}

// SetActiveDashboards sets the number of live dashboard sessions.
func (m *Metrics) SetActiveDashboards(n int) {
	if m == nil {
		return
	}
	m.ActiveDashboards.Set(float64(n))
}

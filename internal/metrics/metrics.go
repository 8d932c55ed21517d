package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()

	// SolvesTotal counts daily solves by outcome (solved, infeasible,
	// missing_location, empty).
	SolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fieldroute_solves_total", Help: "Daily solves by outcome."},
		[]string{"outcome"},
	)
	// SolveDuration records daily solve durations in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "fieldroute_solve_duration_seconds", Help: "Daily solve duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10}},
	)
	// VisitsAssigned counts visits placed onto routes.
	VisitsAssigned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fieldroute_visits_assigned_total", Help: "Visits assigned to a route."},
	)
	// VisitsDropped counts visits left unassigned.
	VisitsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fieldroute_visits_dropped_total", Help: "Visits left unassigned."},
	)

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the package registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SolvesTotal)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(VisitsAssigned)
		Registry.MustRegister(VisitsDropped)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

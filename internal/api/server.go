// Package api exposes the planner over HTTP: plan submission and
// retrieval plus health and metrics endpoints.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"fieldroute/internal/api/dto"
	"fieldroute/internal/config"
	"fieldroute/internal/metrics"
	"fieldroute/internal/planner"
	"fieldroute/internal/routing"
	"fieldroute/internal/store"
)

type Server struct {
	Store   store.Store
	Log     *slog.Logger
	cfg     config.Config
	limiter *rate.Limiter
}

// NewServer wires an in-memory plan store and the middleware stack.
func NewServer(cfg config.Config, log *slog.Logger) *Server {
	metrics.RegisterDefault()
	return &Server{
		Store:   store.NewMemory(),
		Log:     log,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	}
}

// newPlanner builds a planner for one request, applying any per-request
// solver overrides on top of the configured defaults.
func (s *Server) newPlanner(opts *dto.SolverOptions) *planner.Planner {
	rc := routing.Config{
		AvgSpeedKmh:         s.cfg.Solver.AvgSpeedKmh,
		VisitBufferMinutes:  s.cfg.Solver.VisitBufferMinutes,
		DropPenalty:         s.cfg.Solver.DropPenalty,
		SpanCostCoefficient: s.cfg.Solver.SpanCostCoefficient,
		SolveTimeout:        s.cfg.SolveTimeout(),
		MaxIterations:       s.cfg.Solver.MaxIterations,
		Seed:                s.cfg.Solver.Seed,
	}
	if opts != nil {
		if opts.AvgSpeedKmh > 0 {
			rc.AvgSpeedKmh = opts.AvgSpeedKmh
		}
		if opts.VisitBufferMinutes > 0 {
			rc.VisitBufferMinutes = opts.VisitBufferMinutes
		}
		if opts.TimeLimitSeconds > 0 {
			rc.SolveTimeout = time.Duration(opts.TimeLimitSeconds) * time.Second
		}
		if opts.MaxIterations > 0 {
			rc.MaxIterations = opts.MaxIterations
		}
		if opts.Seed != 0 {
			rc.Seed = opts.Seed
		}
	}
	return planner.New(planner.Config{Routing: rc}, s.Log)
}

// Handler returns the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/plans", s.PlansHandler)
	mux.HandleFunc("/v1/plans/", s.PlanByIDHandler)

	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return s.withMiddleware(mux)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fieldroute/internal/api/dto"
	"fieldroute/internal/geo"
	"fieldroute/internal/store"
)

// PlansHandler handles POST/GET /v1/plans.
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req dto.PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validatePlanRequest(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid plan request", err.Error(), r.URL.Path)
			return
		}
		start, techs, visits, err := req.ToModel()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid plan request", err.Error(), r.URL.Path)
			return
		}

		matrix := geo.BuildMatrix(techs, visits)
		schedule := s.newPlanner(req.Solver).Run(r.Context(), techs, visits, matrix, start, req.HorizonWeeks)

		plan, err := s.Store.SavePlan(r.Context(), schedule, len(techs), len(visits))
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save plan failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	case http.MethodGet:
		items, err := s.Store.ListPlans(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PlanByIDHandler handles GET /v1/plans/{id} and /v1/plans/{id}/unassigned.
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	plan, err := s.Store.GetPlan(r.Context(), parts[0])
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Plan not found", parts[0], r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get plan failed", err.Error(), r.URL.Path)
		return
	}

	switch {
	case len(parts) == 1:
		writeJSON(w, http.StatusOK, plan)
	case len(parts) == 2 && parts[1] == "unassigned":
		writeJSON(w, http.StatusOK, map[string]any{"planId": plan.ID, "unassignedVisitIds": plan.Schedule.UnassignedVisitIDs})
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Store.ListPlans(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Package store holds solved plans for the API. Plans live for the
// lifetime of the process only; durable persistence is out of scope.
package store

import (
	"context"
	"errors"
	"time"

	"fieldroute/internal/model"
)

var ErrNotFound = errors.New("store: plan not found")

// PlanSummary is the list view of a stored plan.
type PlanSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	StartDate    time.Time `json:"startDate"`
	HorizonWeeks int       `json:"horizonWeeks"`
	Technicians  int       `json:"technicians"`
	Visits       int       `json:"visits"`
	Assigned     int       `json:"assigned"`
	Unassigned   int       `json:"unassigned"`
}

// Plan is a stored schedule with its summary.
type Plan struct {
	PlanSummary
	Schedule model.Schedule `json:"schedule"`
}

// Store is the plan repository interface used by the API server.
type Store interface {
	SavePlan(ctx context.Context, schedule model.Schedule, technicians, visits int) (Plan, error)
	GetPlan(ctx context.Context, id string) (Plan, error)
	ListPlans(ctx context.Context) ([]PlanSummary, error)
}

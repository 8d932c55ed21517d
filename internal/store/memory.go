package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fieldroute/internal/model"
)

// Memory is the in-process plan store.
type Memory struct {
	mu    sync.Mutex
	plans map[string]Plan
	order []string // insertion order for listing
}

func NewMemory() *Memory {
	return &Memory{plans: map[string]Plan{}}
}

func (m *Memory) SavePlan(_ context.Context, schedule model.Schedule, technicians, visits int) (Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	assigned := 0
	for _, r := range schedule.Routes {
		assigned += len(r.Stops)
	}
	p := Plan{
		PlanSummary: PlanSummary{
			ID:           uuid.New().String(),
			CreatedAt:    time.Now().UTC(),
			StartDate:    schedule.StartDate,
			HorizonWeeks: schedule.HorizonWeeks,
			Technicians:  technicians,
			Visits:       visits,
			Assigned:     assigned,
			Unassigned:   len(schedule.UnassignedVisitIDs),
		},
		Schedule: schedule,
	}
	m.plans[p.ID] = p
	m.order = append(m.order, p.ID)
	return p, nil
}

func (m *Memory) GetPlan(_ context.Context, id string) (Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListPlans(_ context.Context) ([]PlanSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlanSummary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.plans[id].PlanSummary)
	}
	return out, nil
}

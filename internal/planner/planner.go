// Package planner iterates the daily routing solve across the planning
// horizon, carrying each technician's consumed minutes within the current
// 7-day window and deriving a per-day effective work cap from the
// remaining weekly budget.
package planner

import (
	"context"
	"log/slog"
	"time"

	"fieldroute/internal/geo"
	"fieldroute/internal/model"
	"fieldroute/internal/routing"
)

// EffectiveDailyCap derives a technician's work-minute ceiling for one day
// from the configured daily cap and the minutes already consumed this
// week. Zero means uncapped: a technician without a daily cap is never
// capped, matching the long-standing behavior that the weekly budget only
// binds through the daily one.
//
// Rounding policy: the remaining budget is truncated to whole hours
// (floor), so a 3h40m remainder yields a 3h cap. A budget that floors all
// the way to zero returns routing.CapNoWork: the technician sits the day
// out rather than working it uncapped.
func EffectiveDailyCap(t model.Technician, weeklyConsumedMinutes int) int {
	if t.MaxHoursPerDay <= 0 {
		return 0
	}
	capMin := t.MaxHoursPerDay * 60
	if t.MaxHoursPerWeek > 0 {
		remaining := t.MaxHoursPerWeek*60 - weeklyConsumedMinutes
		if remaining < 0 {
			remaining = 0
		}
		if remaining < capMin {
			capMin = remaining
		}
	}
	capMin = capMin / 60 * 60
	if capMin == 0 {
		return routing.CapNoWork
	}
	return capMin
}

// Planner runs the multi-day orchestration. Days are solved strictly in
// sequence: each day's caps depend on the minutes consumed before it.
type Planner struct {
	cfg Config
	log *slog.Logger
}

// Config wraps the daily routing configuration.
type Config struct {
	Routing routing.Config
}

func New(cfg Config, log *slog.Logger) *Planner {
	return &Planner{cfg: cfg, log: log}
}

// Run solves every day in [start, start + horizonWeeks*7) and merges the
// results. Failed days contribute their visits to the unassigned list; the
// accumulated schedule is never discarded.
func (p *Planner) Run(ctx context.Context, technicians []model.Technician, visits []model.VisitInstance, matrix *geo.Matrix, start time.Time, horizonWeeks int) model.Schedule {
	start = midnight(start)
	schedule := model.Schedule{
		StartDate:          start,
		HorizonWeeks:       horizonWeeks,
		UnassignedVisitIDs: []string{},
		Assignments:        map[string]model.VisitAssignment{},
	}

	day := routing.NewDayPlanner(p.cfg.Routing, matrix, p.log)

	consumed := make(map[string]int, len(technicians))
	for _, t := range technicians {
		consumed[t.ID] = 0
	}
	weekStart := start

	horizonDays := horizonWeeks * 7
	for d := 0; d < horizonDays; d++ {
		current := start.AddDate(0, 0, d)

		if current.Sub(weekStart) >= 7*24*time.Hour {
			weekStart = current
			for id := range consumed {
				consumed[id] = 0
			}
		}

		caps := make(map[string]int, len(technicians))
		for _, t := range technicians {
			caps[t.ID] = EffectiveDailyCap(t, consumed[t.ID])
		}

		dayVisits := visitsOn(visits, current)
		ds := day.SolveDay(ctx, current, dayVisits, technicians, caps)

		for _, r := range ds.Routes {
			if r.TotalDurationMinutes > 0 {
				consumed[r.TechnicianID] += r.TotalDurationMinutes
			}
		}

		schedule.Routes = append(schedule.Routes, ds.Routes...)
		schedule.UnassignedVisitIDs = append(schedule.UnassignedVisitIDs, ds.UnassignedVisitIDs...)
		for id, a := range ds.Assignments {
			schedule.Assignments[id] = a
		}
	}

	p.log.Info("horizon solved",
		"start", start.Format("2006-01-02"),
		"weeks", horizonWeeks,
		"routes", len(schedule.Routes),
		"unassigned", len(schedule.UnassignedVisitIDs),
	)
	return schedule
}

func visitsOn(visits []model.VisitInstance, day time.Time) []model.VisitInstance {
	out := []model.VisitInstance{}
	for _, v := range visits {
		if model.SameDay(v.ScheduledDate, day) {
			out = append(out, v)
		}
	}
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

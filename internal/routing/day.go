// Package routing turns one day's technicians and visit instances into a
// routing model (node graph, time dimension, compatibility exclusions and
// drop disjunctions), hands it to the solver and decodes the result into a
// day schedule.
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"fieldroute/internal/compat"
	"fieldroute/internal/geo"
	"fieldroute/internal/metrics"
	"fieldroute/internal/model"
	"fieldroute/internal/solver"
)

const (
	dayMinutes    = 24 * 60
	breakIDPrefix = "BREAK-"
)

// CapNoWork marks a technician whose effective daily cap leaves no working
// time at all. SolveDay schedules neither visits nor a break for them that
// day; their route comes back empty.
const CapNoWork = -1

// reasonNoBudget supplements the compatibility reasons for the per-visit
// diagnostics; it never comes out of the evaluator itself.
const reasonNoBudget = compat.Reason("WEEKLY_BUDGET_EXHAUSTED")

// Config holds the routing-model parameters.
type Config struct {
	// AvgSpeedKmh converts kilometers to travel minutes.
	AvgSpeedKmh float64
	// VisitBufferMinutes is added between two consecutive visit nodes.
	VisitBufferMinutes int
	// DropPenalty is charged for leaving a visit unassigned.
	DropPenalty int64
	// SpanCostCoefficient weights the longest-route span in the objective.
	SpanCostCoefficient int64
	// SolveTimeout bounds each daily solve.
	SolveTimeout time.Duration
	// MaxIterations and Seed are passed through to the solver; both are
	// primarily for deterministic tests.
	MaxIterations int
	Seed          int64
}

// DefaultConfig mirrors the production defaults: 30 km/h average speed,
// a 20 minute inter-visit buffer, a 1,000,000 drop penalty and a 5 second
// search budget.
func DefaultConfig() Config {
	return Config{
		AvgSpeedKmh:         30,
		VisitBufferMinutes:  20,
		DropPenalty:         1_000_000,
		SpanCostCoefficient: 1,
		SolveTimeout:        5 * time.Second,
	}
}

// DayPlanner builds and solves single-day routing models against a shared
// distance matrix.
type DayPlanner struct {
	cfg    Config
	matrix *geo.Matrix
	log    *slog.Logger
}

func NewDayPlanner(cfg Config, matrix *geo.Matrix, log *slog.Logger) *DayPlanner {
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = 30
	}
	return &DayPlanner{cfg: cfg, matrix: matrix, log: log}
}

// SolveDay assigns the day's visits to technicians. caps maps technician
// id to that day's effective cap in minutes; zero or absent means
// uncapped, negative (CapNoWork) means the technician may not work at
// all. Inputs are never mutated: the solved outcome lives in the returned
// DaySchedule, including a visit id to assignment map.
func (p *DayPlanner) SolveDay(ctx context.Context, day time.Time, visits []model.VisitInstance, technicians []model.Technician, caps map[string]int) model.DaySchedule {
	day = midnight(day)
	out := model.DaySchedule{
		Date:               day,
		UnassignedVisitIDs: []string{},
		Assignments:        map[string]model.VisitAssignment{},
	}

	if len(visits) == 0 {
		p.log.Info("no visits scheduled", "day", day.Format("2006-01-02"))
		metrics.SolvesTotal.WithLabelValues("empty").Inc()
		return out
	}

	techs := append([]model.Technician(nil), technicians...)
	sort.Slice(techs, func(i, j int) bool { return techs[i].ID < techs[j].ID })
	if len(techs) == 0 {
		p.log.Warn("no technicians available", "day", day.Format("2006-01-02"))
		for _, v := range visits {
			out.UnassignedVisitIDs = append(out.UnassignedVisitIDs, v.ID)
		}
		metrics.SolvesTotal.WithLabelValues("empty").Inc()
		return out
	}

	all := append(append([]model.VisitInstance(nil), visits...), p.breakVisits(day, techs, caps)...)
	realCount := len(visits)

	if missing := p.missingSites(all); len(missing) > 0 {
		p.log.Error("distance matrix missing visit sites", "day", day.Format("2006-01-02"), "sites", missing)
		for _, v := range all {
			out.UnassignedVisitIDs = append(out.UnassignedVisitIDs, v.ID)
		}
		metrics.SolvesTotal.WithLabelValues("missing_location").Inc()
		return out
	}

	prob, nodeLoc := p.buildProblem(day, all, realCount, techs, caps)

	limit := p.cfg.SolveTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if rem := time.Until(deadline); rem < limit {
			limit = rem
		}
	}

	started := time.Now()
	asg, err := solver.Solve(prob, solver.Options{
		TimeLimit:     limit,
		MaxIterations: p.cfg.MaxIterations,
		Seed:          p.cfg.Seed,
	})
	metrics.SolveDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		p.log.Warn("day is infeasible, dropping all visits", "day", day.Format("2006-01-02"), "err", err)
		for _, v := range all {
			out.UnassignedVisitIDs = append(out.UnassignedVisitIDs, v.ID)
		}
		metrics.SolvesTotal.WithLabelValues("infeasible").Inc()
		return out
	}

	p.decode(&out, day, all, realCount, techs, nodeLoc, asg)

	assigned := 0
	for _, r := range out.Routes {
		assigned += len(r.Stops)
	}
	metrics.SolvesTotal.WithLabelValues("solved").Inc()
	metrics.VisitsAssigned.Add(float64(assigned))
	metrics.VisitsDropped.Add(float64(len(out.UnassignedVisitIDs)))
	p.log.Info("day solved",
		"day", day.Format("2006-01-02"),
		"visits", realCount,
		"assigned", assigned,
		"unassigned", len(out.UnassignedVisitIDs),
	)
	return out
}

// breakVisits synthesizes one mandatory pseudo-visit per technician with a
// positive break requirement and a shift on this day. The break window is
// clamped to the shift; an empty result skips the break entirely, as does
// a technician barred from working today.
func (p *DayPlanner) breakVisits(day time.Time, techs []model.Technician, caps map[string]int) []model.VisitInstance {
	out := []model.VisitInstance{}
	for _, t := range techs {
		if t.Break.MinMinutes <= 0 || caps[t.ID] < 0 {
			continue
		}
		shift, ok := t.ScheduleFor(day.Weekday())
		if !ok {
			continue
		}
		start := t.Break.WindowStart
		if start == 0 {
			start = shift.Start
		}
		end := t.Break.WindowEnd
		if end == 0 {
			end = shift.End
		}
		if end <= start {
			end = shift.End
		}
		if start < shift.Start {
			start = shift.Start
		}
		if end > shift.End {
			end = shift.End
		}
		if end <= start {
			continue
		}
		out = append(out, model.VisitInstance{
			ID:                   fmt.Sprintf("%s%s-%s", breakIDPrefix, t.ID, day.Format("20060102")),
			ServiceID:            "BREAK",
			SiteID:               t.StartLocationID(),
			Location:             t.StartLocation(),
			ScheduledDate:        day,
			DurationMinutes:      t.Break.MinMinutes,
			TimeWindows:          []model.TimeWindow{{Weekday: day.Weekday(), Start: start, End: end}},
			AllowedTechnicianIDs: []string{t.ID},
			SiteName:             "BREAK",
		})
	}
	return out
}

func (p *DayPlanner) missingSites(all []model.VisitInstance) []string {
	seen := map[string]bool{}
	missing := []string{}
	for _, v := range all {
		if seen[v.SiteID] {
			continue
		}
		seen[v.SiteID] = true
		if !p.matrix.Has(v.SiteID) {
			missing = append(missing, v.SiteID)
		}
	}
	return missing
}

// buildProblem assembles the node graph: visits occupy 0..V-1 and each
// technician v owns a start node V+2v and an end node V+2v+1. Returns the
// problem and the node-to-matrix-index map.
func (p *DayPlanner) buildProblem(day time.Time, all []model.VisitInstance, realCount int, techs []model.Technician, caps map[string]int) (solver.Problem, []int) {
	visitCount := len(all)
	totalNodes := visitCount + 2*len(techs)
	weekday := day.Weekday()

	nodeLoc := make([]int, totalNodes)
	for i, v := range all {
		idx, err := p.matrix.Index(v.SiteID)
		if err != nil {
			// Coverage was verified before model construction.
			panic(err)
		}
		nodeLoc[i] = idx
	}
	for vi, t := range techs {
		si, err := p.matrix.Index(t.StartLocationID())
		if err != nil {
			panic(err)
		}
		ei, err := p.matrix.Index(t.EndLocationID())
		if err != nil {
			panic(err)
		}
		nodeLoc[visitCount+2*vi] = si
		nodeLoc[visitCount+2*vi+1] = ei
	}

	travel := func(from, to int) int64 {
		return p.travelMinutes(p.matrix.At(nodeLoc[from], nodeLoc[to]))
	}
	isVisit := func(n int) bool { return n < visitCount }

	transit := func(from, to int) int64 {
		t := travel(from, to)
		if isVisit(from) {
			t += int64(all[from].DurationMinutes)
			if isVisit(to) {
				t += int64(p.cfg.VisitBufferMinutes)
			}
		}
		return t
	}

	bounds := make([]solver.Interval, totalNodes)
	for i, v := range all {
		start, end := v.WindowFor(weekday)
		bounds[i] = solver.Interval{Min: int64(start), Max: int64(end)}
	}

	vehicles := make([]solver.Vehicle, len(techs))
	for vi, t := range techs {
		startNode := visitCount + 2*vi
		endNode := visitCount + 2*vi + 1
		veh := solver.Vehicle{Start: startNode, End: endNode}
		shift, ok := t.ScheduleFor(weekday)
		if !ok {
			// No shift today: no bounds, and the compatibility exclusions
			// keep every visit off this vehicle.
			bounds[startNode] = solver.Interval{Min: 0, Max: dayMinutes}
			bounds[endNode] = solver.Interval{Min: 0, Max: dayMinutes}
			vehicles[vi] = veh
			continue
		}
		startMin := int64(shift.Start)
		latestEnd := int64(shift.End)
		if caps[t.ID] < 0 {
			// Weekly budget exhausted: every visit is excluded from this
			// vehicle below, so the route stays empty.
			bounds[startNode] = solver.Interval{Min: startMin, Max: startMin}
			bounds[endNode] = solver.Interval{Min: startMin, Max: latestEnd}
			vehicles[vi] = veh
			continue
		}
		if capMin := caps[t.ID]; capMin > 0 {
			if capped := startMin + int64(capMin); capped < latestEnd {
				latestEnd = capped
			}
			veh.EndCumulMax = startMin + int64(capMin)
		}
		bounds[startNode] = solver.Interval{Min: startMin, Max: startMin}
		bounds[endNode] = solver.Interval{Min: startMin, Max: latestEnd}
		vehicles[vi] = veh
	}

	forbidden := []solver.Exclusion{}
	for i, v := range all {
		allowed := 0
		reasons := map[compat.Reason]int{}
		for vi, t := range techs {
			if caps[t.ID] < 0 {
				reasons[reasonNoBudget]++
				forbidden = append(forbidden, solver.Exclusion{Node: i, Vehicle: vi})
				continue
			}
			d := compat.Evaluate(v, t, weekday)
			if d.Allowed {
				allowed++
				continue
			}
			reasons[d.Reason]++
			forbidden = append(forbidden, solver.Exclusion{Node: i, Vehicle: vi})
		}
		if allowed == 0 {
			// Diagnostic only: the visit still enters the model and is
			// expected to drop through its disjunction.
			p.log.Warn("visit matches no technician",
				"day", day.Format("2006-01-02"),
				"visit", v.ID,
				"reasons", reasonCounts(reasons),
			)
		}
	}

	optional := make([]solver.Disjunction, 0, realCount)
	for i := 0; i < realCount; i++ {
		optional = append(optional, solver.Disjunction{Node: i, Penalty: p.cfg.DropPenalty})
	}

	return solver.Problem{
		Nodes:    totalNodes,
		Vehicles: vehicles,
		ArcCost:  travel,
		Time: solver.Dimension{
			Transit:             transit,
			Capacity:            dayMinutes,
			SlackMax:            dayMinutes,
			SpanCostCoefficient: p.cfg.SpanCostCoefficient,
			Bounds:              bounds,
		},
		Forbidden: forbidden,
		Optional:  optional,
	}, nodeLoc
}

// decode walks every vehicle's solved route. Break nodes are traversed,
// advancing the previous-location pointer, but never emitted as stops.
func (p *DayPlanner) decode(out *model.DaySchedule, day time.Time, all []model.VisitInstance, realCount int, techs []model.Technician, nodeLoc []int, asg *solver.Assignment) {
	visitCount := len(all)
	for vi, t := range techs {
		route := model.Route{
			ID:           fmt.Sprintf("route-%s-%s", t.ID, day.Format("20060102")),
			TechnicianID: t.ID,
			Date:         day,
		}
		prevLoc := nodeLoc[visitCount+2*vi]
		seq := 1
		for _, node := range asg.Routes[vi] {
			if node >= realCount {
				prevLoc = nodeLoc[node]
				continue
			}
			v := all[node]
			arrival := day.Add(time.Duration(asg.Cumul[node]) * time.Minute)
			km := p.matrix.At(prevLoc, nodeLoc[node])
			route.Stops = append(route.Stops, model.RouteStop{
				Sequence:           seq,
				VisitID:            v.ID,
				SiteID:             v.SiteID,
				Arrival:            arrival,
				Departure:          arrival.Add(time.Duration(v.DurationMinutes) * time.Minute),
				DistanceFromPrevKm: km,
				DriveMinutes:       int(p.travelMinutes(km)),
			})
			out.Assignments[v.ID] = model.VisitAssignment{TechnicianID: t.ID, RouteID: route.ID}
			seq++
			prevLoc = nodeLoc[node]
		}

		for _, s := range route.Stops {
			route.TotalDistanceKm += s.DistanceFromPrevKm
			route.TotalDriveMinutes += s.DriveMinutes
		}
		if n := len(route.Stops); n > 0 {
			route.TotalDurationMinutes = int(route.Stops[n-1].Departure.Sub(route.Stops[0].Arrival).Minutes())
		}
		out.Routes = append(out.Routes, route)
	}

	for i := 0; i < visitCount; i++ {
		if !asg.Active[i] {
			out.UnassignedVisitIDs = append(out.UnassignedVisitIDs, all[i].ID)
		}
	}
}

// travelMinutes converts kilometers to driving minutes at the configured
// average speed, rounded, never negative.
func (p *DayPlanner) travelMinutes(km float64) int64 {
	minutes := km / p.cfg.AvgSpeedKmh * 60
	if minutes < 0 {
		minutes = 0
	}
	return int64(math.Round(minutes))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func reasonCounts(reasons map[compat.Reason]int) []string {
	out := make([]string, 0, len(reasons))
	for r, n := range reasons {
		out = append(out, fmt.Sprintf("%s=%d", r, n))
	}
	sort.Strings(out)
	return out
}

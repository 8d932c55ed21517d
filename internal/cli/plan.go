package cli

import (
	"context"
	"fmt"

	"fieldroute/internal/geo"
	"fieldroute/internal/planner"
	"fieldroute/internal/routing"
)

type PlanCmd struct {
	Input  string `arg:"" help:"Plan request JSON file." type:"existingfile"`
	Output string `short:"o" help:"Write the solved schedule to this file instead of stdout."`
	Weeks  int    `help:"Override the request's horizonWeeks."`
}

func (c *PlanCmd) Run(ctx *Context) error {
	req, err := readPlanRequest(c.Input)
	if err != nil {
		return err
	}
	if c.Weeks > 0 {
		req.HorizonWeeks = c.Weeks
	}
	if req.HorizonWeeks <= 0 {
		req.HorizonWeeks = 1
	}

	start, techs, visits, err := req.ToModel()
	if err != nil {
		return err
	}

	matrix := geo.BuildMatrix(techs, visits)
	p := planner.New(planner.Config{Routing: routing.Config{
		AvgSpeedKmh:         ctx.Cfg.Solver.AvgSpeedKmh,
		VisitBufferMinutes:  ctx.Cfg.Solver.VisitBufferMinutes,
		DropPenalty:         ctx.Cfg.Solver.DropPenalty,
		SpanCostCoefficient: ctx.Cfg.Solver.SpanCostCoefficient,
		SolveTimeout:        ctx.Cfg.SolveTimeout(),
		MaxIterations:       ctx.Cfg.Solver.MaxIterations,
		Seed:                ctx.Cfg.Solver.Seed,
	}}, ctx.Log)

	schedule := p.Run(context.Background(), techs, visits, matrix, start, req.HorizonWeeks)

	assigned := 0
	for _, r := range schedule.Routes {
		assigned += len(r.Stops)
	}
	ctx.Log.Info("plan complete",
		"technicians", len(techs),
		"visits", len(visits),
		"assigned", assigned,
		"unassigned", len(schedule.UnassignedVisitIDs),
		"distanceKm", fmt.Sprintf("%.1f", schedule.TotalDistanceKm()),
	)
	return writeOutput(c.Output, schedule)
}

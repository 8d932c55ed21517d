package api

import (
	"fmt"

	"fieldroute/internal/api/dto"
)

func validatePlanRequest(req *dto.PlanRequest) error {
	if req.StartDate == "" {
		return fmt.Errorf("startDate is required")
	}
	if req.HorizonWeeks < 1 || req.HorizonWeeks > 52 {
		return fmt.Errorf("horizonWeeks must be in [1,52]")
	}
	if len(req.Technicians) == 0 {
		return fmt.Errorf("at least one technician is required")
	}
	techIDs := map[string]struct{}{}
	for _, t := range req.Technicians {
		if t.ID == "" {
			return fmt.Errorf("technician id is required")
		}
		if _, dup := techIDs[t.ID]; dup {
			return fmt.Errorf("duplicate technician id: %s", t.ID)
		}
		techIDs[t.ID] = struct{}{}
		if err := validateCoordinates(t.Home); err != nil {
			return fmt.Errorf("technician %s home: %w", t.ID, err)
		}
		if t.Office != nil {
			if err := validateCoordinates(*t.Office); err != nil {
				return fmt.Errorf("technician %s office: %w", t.ID, err)
			}
		}
		if t.MaxHoursPerDay < 0 || t.MaxHoursPerDay > 24 {
			return fmt.Errorf("technician %s: maxHoursPerDay must be in [0,24]", t.ID)
		}
		if t.MaxHoursPerWeek < 0 {
			return fmt.Errorf("technician %s: maxHoursPerWeek must be >= 0", t.ID)
		}
	}
	if o := req.Solver; o != nil {
		if o.AvgSpeedKmh < 0 {
			return fmt.Errorf("solver: avgSpeedKmh must be >= 0")
		}
		if o.VisitBufferMinutes < 0 {
			return fmt.Errorf("solver: visitBufferMinutes must be >= 0")
		}
		if o.TimeLimitSeconds < 0 || o.TimeLimitSeconds > 300 {
			return fmt.Errorf("solver: timeLimitSeconds must be in [0,300]")
		}
		if o.MaxIterations < 0 {
			return fmt.Errorf("solver: maxIterations must be >= 0")
		}
	}
	visitIDs := map[string]struct{}{}
	for _, v := range req.Visits {
		if v.ID == "" {
			return fmt.Errorf("visit id is required")
		}
		if _, dup := visitIDs[v.ID]; dup {
			return fmt.Errorf("duplicate visit id: %s", v.ID)
		}
		visitIDs[v.ID] = struct{}{}
		if v.SiteID == "" {
			return fmt.Errorf("visit %s: siteId is required", v.ID)
		}
		if v.DurationMinutes <= 0 {
			return fmt.Errorf("visit %s: durationMinutes must be > 0", v.ID)
		}
		if err := validateCoordinates(v.Location); err != nil {
			return fmt.Errorf("visit %s location: %w", v.ID, err)
		}
	}
	return nil
}

func validateCoordinates(c dto.Coordinates) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", c.Lon)
	}
	return nil
}

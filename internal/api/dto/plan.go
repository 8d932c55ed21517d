// Package dto defines the JSON wire shapes for plan requests. Times cross
// the boundary as "HH:MM" strings and dates as "YYYY-MM-DD"; the core
// works in minutes of day only.
package dto

import (
	"fmt"
	"strings"
	"time"

	"fieldroute/internal/model"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Shift struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Break struct {
	MinMinutes int    `json:"minMinutes"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
}

type ServiceSkill struct {
	ServiceType string `json:"serviceType"`
	Level       string `json:"level"`
}

type Skills struct {
	ServiceSkills       []ServiceSkill `json:"serviceSkills"`
	PhysicallyDemanding bool           `json:"physicallyDemanding"`
	LivingWalls         bool           `json:"livingWalls"`
	Heights             bool           `json:"heights"`
	LiftCertification   bool           `json:"liftCertification"`
	PesticideCert       bool           `json:"pesticideCertification"`
	Citizen             bool           `json:"citizen"`
}

type Technician struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Home            Coordinates      `json:"home"`
	Office          *Coordinates     `json:"office,omitempty"`
	StartsFrom      string           `json:"startsFrom,omitempty"`
	FinishesAt      string           `json:"finishesAt,omitempty"`
	Skills          Skills           `json:"skills"`
	WorkingDays     []string         `json:"workingDays"`
	DailySchedule   map[string]Shift `json:"dailySchedule"`
	MaxHoursPerDay  int              `json:"maxHoursPerDay"`
	MaxHoursPerWeek int              `json:"maxHoursPerWeek"`
	Break           *Break           `json:"break,omitempty"`
	HasVehicle      bool             `json:"hasVehicle"`
}

type Window struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Requirement struct {
	ServiceType         string `json:"serviceType"`
	MinimumLevel        string `json:"minimumLevel"`
	PhysicallyDemanding bool   `json:"physicallyDemanding"`
	LivingWalls         bool   `json:"livingWalls"`
	HeightWork          bool   `json:"heightWork"`
	Lift                bool   `json:"lift"`
	PesticideCert       bool   `json:"pesticideCertification"`
	Citizenship         bool   `json:"citizenship"`
	PreferredTransport  string `json:"preferredTransport,omitempty"`
}

type Visit struct {
	ID                     string       `json:"id"`
	ServiceID              string       `json:"serviceId"`
	SiteID                 string       `json:"siteId"`
	Location               Coordinates  `json:"location"`
	Date                   string       `json:"date"`
	DurationMinutes        int          `json:"durationMinutes"`
	TimeWindows            []Window     `json:"timeWindows,omitempty"`
	Requirement            *Requirement `json:"requirement,omitempty"`
	AllowedTechnicianIDs   []string     `json:"allowedTechnicianIds,omitempty"`
	ForbiddenTechnicianIDs []string     `json:"forbiddenTechnicianIds,omitempty"`
	ClearanceTechnicianIDs []string     `json:"clearanceTechnicianIds,omitempty"`
	SiteName               string       `json:"siteName,omitempty"`
	SiteAddress            string       `json:"siteAddress,omitempty"`
}

// SolverOptions optionally overrides the configured solver parameters for
// one request. Zero values keep the server defaults.
type SolverOptions struct {
	AvgSpeedKmh        float64 `json:"avgSpeedKmh,omitempty"`
	VisitBufferMinutes int     `json:"visitBufferMinutes,omitempty"`
	TimeLimitSeconds   int     `json:"timeLimitSeconds,omitempty"`
	MaxIterations      int     `json:"maxIterations,omitempty"`
	Seed               int64   `json:"seed,omitempty"`
}

type PlanRequest struct {
	StartDate    string         `json:"startDate"`
	HorizonWeeks int            `json:"horizonWeeks"`
	Technicians  []Technician   `json:"technicians"`
	Visits       []Visit        `json:"visits"`
	Solver       *SolverOptions `json:"solver,omitempty"`
}

// ToModel converts the request into domain types, enforcing the
// working-day / daily-schedule consistency invariant.
func (r PlanRequest) ToModel() (time.Time, []model.Technician, []model.VisitInstance, error) {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return time.Time{}, nil, nil, fmt.Errorf("startDate: %w", err)
	}

	techs := make([]model.Technician, 0, len(r.Technicians))
	for _, t := range r.Technicians {
		mt, err := t.toModel()
		if err != nil {
			return time.Time{}, nil, nil, fmt.Errorf("technician %s: %w", t.ID, err)
		}
		techs = append(techs, mt)
	}

	visits := make([]model.VisitInstance, 0, len(r.Visits))
	for _, v := range r.Visits {
		mv, err := v.toModel()
		if err != nil {
			return time.Time{}, nil, nil, fmt.Errorf("visit %s: %w", v.ID, err)
		}
		visits = append(visits, mv)
	}
	return start, techs, visits, nil
}

func (t Technician) toModel() (model.Technician, error) {
	startsFrom, err := parseWorkLocation(t.StartsFrom)
	if err != nil {
		return model.Technician{}, err
	}
	finishesAt, err := parseWorkLocation(t.FinishesAt)
	if err != nil {
		return model.Technician{}, err
	}

	days := make([]time.Weekday, 0, len(t.WorkingDays))
	for _, d := range t.WorkingDays {
		wd, err := parseWeekday(d)
		if err != nil {
			return model.Technician{}, err
		}
		days = append(days, wd)
	}

	sched := make(map[time.Weekday]model.ShiftWindow, len(t.DailySchedule))
	for d, s := range t.DailySchedule {
		wd, err := parseWeekday(d)
		if err != nil {
			return model.Technician{}, err
		}
		start, err := parseClock(s.Start)
		if err != nil {
			return model.Technician{}, fmt.Errorf("schedule %s: %w", d, err)
		}
		end, err := parseClock(s.End)
		if err != nil {
			return model.Technician{}, fmt.Errorf("schedule %s: %w", d, err)
		}
		sched[wd] = model.ShiftWindow{Start: start, End: end}
	}

	// A day present in either the working-day set or the schedule map must
	// be present in the other.
	for _, d := range days {
		if _, ok := sched[d]; !ok {
			return model.Technician{}, fmt.Errorf("working day %s has no schedule window", d)
		}
	}
	for d := range sched {
		if !containsDay(days, d) {
			return model.Technician{}, fmt.Errorf("schedule window for %s is not a working day", d)
		}
	}

	skills, err := t.Skills.toModel()
	if err != nil {
		return model.Technician{}, err
	}

	mt := model.Technician{
		ID:              t.ID,
		Name:            t.Name,
		Home:            model.Coordinates(t.Home),
		StartsFrom:      startsFrom,
		FinishesAt:      finishesAt,
		Skills:          skills,
		WorkingDays:     days,
		DailySchedule:   sched,
		MaxHoursPerDay:  t.MaxHoursPerDay,
		MaxHoursPerWeek: t.MaxHoursPerWeek,
		HasVehicle:      t.HasVehicle,
	}
	if t.Office != nil {
		o := model.Coordinates(*t.Office)
		mt.Office = &o
	}
	if t.Break != nil {
		br := model.BreakRequirement{MinMinutes: t.Break.MinMinutes}
		if t.Break.Start != "" {
			if br.WindowStart, err = parseClock(t.Break.Start); err != nil {
				return model.Technician{}, fmt.Errorf("break: %w", err)
			}
		}
		if t.Break.End != "" {
			if br.WindowEnd, err = parseClock(t.Break.End); err != nil {
				return model.Technician{}, fmt.Errorf("break: %w", err)
			}
		}
		mt.Break = br
	}
	return mt, nil
}

func (s Skills) toModel() (model.TechnicianSkills, error) {
	out := model.TechnicianSkills{
		PhysicallyDemanding: s.PhysicallyDemanding,
		LivingWalls:         s.LivingWalls,
		Heights:             s.Heights,
		LiftCertification:   s.LiftCertification,
		PesticideCert:       s.PesticideCert,
		Citizen:             s.Citizen,
	}
	for _, sk := range s.ServiceSkills {
		st, err := parseServiceType(sk.ServiceType)
		if err != nil {
			return out, err
		}
		lvl, err := parseSkillLevel(sk.Level)
		if err != nil {
			return out, err
		}
		out.ServiceSkills = append(out.ServiceSkills, model.ServiceSkill{ServiceType: st, Level: lvl})
	}
	return out, nil
}

func (v Visit) toModel() (model.VisitInstance, error) {
	date, err := time.Parse("2006-01-02", v.Date)
	if err != nil {
		return model.VisitInstance{}, fmt.Errorf("date: %w", err)
	}

	windows := make([]model.TimeWindow, 0, len(v.TimeWindows))
	for _, w := range v.TimeWindows {
		wd, err := parseWeekday(w.Day)
		if err != nil {
			return model.VisitInstance{}, err
		}
		start, err := parseClock(w.Start)
		if err != nil {
			return model.VisitInstance{}, fmt.Errorf("window: %w", err)
		}
		end, err := parseClock(w.End)
		if err != nil {
			return model.VisitInstance{}, fmt.Errorf("window: %w", err)
		}
		windows = append(windows, model.TimeWindow{Weekday: wd, Start: start, End: end})
	}

	mv := model.VisitInstance{
		ID:                     v.ID,
		ServiceID:              v.ServiceID,
		SiteID:                 v.SiteID,
		Location:               model.Coordinates(v.Location),
		ScheduledDate:          date,
		DurationMinutes:        v.DurationMinutes,
		TimeWindows:            windows,
		AllowedTechnicianIDs:   v.AllowedTechnicianIDs,
		ForbiddenTechnicianIDs: v.ForbiddenTechnicianIDs,
		ClearanceTechnicianIDs: v.ClearanceTechnicianIDs,
		SiteName:               v.SiteName,
		SiteAddress:            v.SiteAddress,
	}

	if v.Requirement != nil {
		st, err := parseServiceType(v.Requirement.ServiceType)
		if err != nil {
			return model.VisitInstance{}, err
		}
		lvl, err := parseSkillLevel(v.Requirement.MinimumLevel)
		if err != nil {
			return model.VisitInstance{}, err
		}
		tr, err := parseTransport(v.Requirement.PreferredTransport)
		if err != nil {
			return model.VisitInstance{}, err
		}
		mv.Requirement = &model.SkillRequirement{
			ServiceType:         st,
			MinimumLevel:        lvl,
			PhysicallyDemanding: v.Requirement.PhysicallyDemanding,
			LivingWalls:         v.Requirement.LivingWalls,
			HeightWork:          v.Requirement.HeightWork,
			Lift:                v.Requirement.Lift,
			PesticideCert:       v.Requirement.PesticideCert,
			Citizenship:         v.Requirement.Citizenship,
			PreferredTransport:  tr,
		}
	}
	return mv, nil
}

// parseClock converts "HH:MM" to minutes of day.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m > 0) {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func parseServiceType(s string) (model.ServiceType, error) {
	switch model.ServiceType(strings.ToLower(s)) {
	case model.ServiceInterior, model.ServiceExterior, model.ServiceFloral:
		return model.ServiceType(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid service type %q", s)
}

func parseSkillLevel(s string) (model.SkillLevel, error) {
	switch strings.ToLower(s) {
	case "junior":
		return model.SkillJunior, nil
	case "medior":
		return model.SkillMedior, nil
	case "senior":
		return model.SkillSenior, nil
	}
	return 0, fmt.Errorf("invalid skill level %q", s)
}

func parseTransport(s string) (model.TransportType, error) {
	if s == "" {
		return model.TransportEither, nil
	}
	switch model.TransportType(strings.ToLower(s)) {
	case model.TransportCarOrVan, model.TransportPublicTransport,
		model.TransportDriveToHubAndWalk, model.TransportEither:
		return model.TransportType(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid transport type %q", s)
}

func parseWorkLocation(s string) (model.WorkLocation, error) {
	if s == "" {
		return model.WorkLocationHome, nil
	}
	switch model.WorkLocation(strings.ToLower(s)) {
	case model.WorkLocationHome, model.WorkLocationOffice, model.WorkLocationEither:
		return model.WorkLocation(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid work location %q", s)
}

func containsDay(days []time.Weekday, d time.Weekday) bool {
	for _, v := range days {
		if v == d {
			return true
		}
	}
	return false
}

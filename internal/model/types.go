package model

import "time"

// Core domain types for field-service route planning.

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ServiceType identifies the kind of service a visit performs.
type ServiceType string

const (
	ServiceInterior ServiceType = "interior"
	ServiceExterior ServiceType = "exterior"
	ServiceFloral   ServiceType = "floral"
)

// SkillLevel orders technician proficiency. Higher satisfies lower.
type SkillLevel int

const (
	SkillJunior SkillLevel = iota
	SkillMedior
	SkillSenior
)

// TransportType is the transport mode preferred for reaching a site.
type TransportType string

const (
	TransportCarOrVan          TransportType = "car_or_van"
	TransportPublicTransport   TransportType = "public_transport"
	TransportDriveToHubAndWalk TransportType = "drive_to_hub_and_walk"
	TransportEither            TransportType = "either"
)

// RequiresVehicle reports whether the mode needs the technician to own a vehicle.
func (t TransportType) RequiresVehicle() bool {
	return t == TransportCarOrVan || t == TransportDriveToHubAndWalk
}

// WorkLocation says where a technician's day starts or ends.
type WorkLocation string

const (
	WorkLocationHome   WorkLocation = "home"
	WorkLocationOffice WorkLocation = "office"
	WorkLocationEither WorkLocation = "either"
)

type ServiceSkill struct {
	ServiceType ServiceType `json:"serviceType"`
	Level       SkillLevel  `json:"level"`
}

type TechnicianSkills struct {
	ServiceSkills       []ServiceSkill `json:"serviceSkills"`
	PhysicallyDemanding bool           `json:"physicallyDemanding"`
	LivingWalls         bool           `json:"livingWalls"`
	Heights             bool           `json:"heights"`
	LiftCertification   bool           `json:"liftCertification"`
	PesticideCert       bool           `json:"pesticideCertification"`
	Citizen             bool           `json:"citizen"`
}

// Has reports whether the technician holds the service skill at or above min.
func (s TechnicianSkills) Has(st ServiceType, min SkillLevel) bool {
	for _, sk := range s.ServiceSkills {
		if sk.ServiceType == st && sk.Level >= min {
			return true
		}
	}
	return false
}

// SkillRequirement is the skill/capability profile a visit demands.
type SkillRequirement struct {
	ServiceType         ServiceType   `json:"serviceType"`
	MinimumLevel        SkillLevel    `json:"minimumLevel"`
	PhysicallyDemanding bool          `json:"physicallyDemanding"`
	LivingWalls         bool          `json:"livingWalls"`
	HeightWork          bool          `json:"heightWork"`
	Lift                bool          `json:"lift"`
	PesticideCert       bool          `json:"pesticideCertification"`
	Citizenship         bool          `json:"citizenship"`
	PreferredTransport  TransportType `json:"preferredTransport"`
}

// ShiftWindow is a working window in minutes of day.
type ShiftWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TimeWindow is a weekday-bound service window in minutes of day.
type TimeWindow struct {
	Weekday time.Weekday `json:"weekday"`
	Start   int          `json:"start"`
	End     int          `json:"end"`
}

type BreakRequirement struct {
	MinMinutes  int `json:"minMinutes"`
	WindowStart int `json:"windowStart"`
	WindowEnd   int `json:"windowEnd"`
}

type Technician struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Home   Coordinates  `json:"home"`
	Office *Coordinates `json:"office,omitempty"`

	StartsFrom WorkLocation `json:"startsFrom"`
	FinishesAt WorkLocation `json:"finishesAt"`

	Skills TechnicianSkills `json:"skills"`

	WorkingDays   []time.Weekday               `json:"workingDays"`
	DailySchedule map[time.Weekday]ShiftWindow `json:"dailySchedule"`

	MaxHoursPerDay  int `json:"maxHoursPerDay"`
	MaxHoursPerWeek int `json:"maxHoursPerWeek"`

	Break BreakRequirement `json:"break"`

	HasVehicle bool `json:"hasVehicle"`
}

// WorksOn reports whether the technician works on the given weekday.
func (t Technician) WorksOn(day time.Weekday) bool {
	for _, d := range t.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// ScheduleFor returns the shift window for the weekday, if any.
func (t Technician) ScheduleFor(day time.Weekday) (ShiftWindow, bool) {
	w, ok := t.DailySchedule[day]
	return w, ok
}

// StartLocation resolves where the technician's day begins.
func (t Technician) StartLocation() Coordinates {
	if t.StartsFrom == WorkLocationOffice && t.Office != nil {
		return *t.Office
	}
	return t.Home
}

// EndLocation resolves where the technician's day ends.
func (t Technician) EndLocation() Coordinates {
	if t.FinishesAt == WorkLocationOffice && t.Office != nil {
		return *t.Office
	}
	return t.Home
}

// StartLocationID is the distance-matrix id of the start location.
func (t Technician) StartLocationID() string {
	return "tech_" + t.ID + "_start"
}

// EndLocationID is the distance-matrix id of the end location. Technicians
// that finish where they start share a single matrix entry.
func (t Technician) EndLocationID() string {
	if t.StartsFrom == t.FinishesAt {
		return t.StartLocationID()
	}
	return "tech_" + t.ID + "_end"
}

type VisitInstance struct {
	ID        string `json:"id"`
	ServiceID string `json:"serviceId"`
	SiteID    string `json:"siteId"`

	Location Coordinates `json:"location"`

	ScheduledDate   time.Time `json:"scheduledDate"`
	DurationMinutes int       `json:"durationMinutes"`

	TimeWindows []TimeWindow `json:"timeWindows"`

	Requirement *SkillRequirement `json:"requirement,omitempty"`

	AllowedTechnicianIDs   []string `json:"allowedTechnicianIds,omitempty"`
	ForbiddenTechnicianIDs []string `json:"forbiddenTechnicianIds,omitempty"`
	ClearanceTechnicianIDs []string `json:"clearanceTechnicianIds,omitempty"`

	SiteName    string `json:"siteName,omitempty"`
	SiteAddress string `json:"siteAddress,omitempty"`
}

// WindowFor returns the visit's time window for the weekday in minutes of
// day. Missing or inverted windows fall back to the full day.
func (v VisitInstance) WindowFor(day time.Weekday) (start, end int) {
	for _, w := range v.TimeWindows {
		if w.Weekday != day {
			continue
		}
		if w.End < w.Start {
			return w.Start, 24 * 60
		}
		return w.Start, w.End
	}
	return 0, 24 * 60
}

type RouteStop struct {
	Sequence int    `json:"sequence"`
	VisitID  string `json:"visitId"`
	SiteID   string `json:"siteId"`

	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`

	DistanceFromPrevKm float64 `json:"distanceFromPrevKm"`
	DriveMinutes       int     `json:"driveMinutes"`
}

type Route struct {
	ID           string      `json:"id"`
	TechnicianID string      `json:"technicianId"`
	Date         time.Time   `json:"date"`
	Stops        []RouteStop `json:"stops"`

	TotalDistanceKm      float64 `json:"totalDistanceKm"`
	TotalDriveMinutes    int     `json:"totalDriveMinutes"`
	TotalDurationMinutes int     `json:"totalDurationMinutes"`
}

// VisitAssignment records the solved outcome for one visit. Kept separate
// from VisitInstance so solving never mutates input data.
type VisitAssignment struct {
	TechnicianID string `json:"technicianId"`
	RouteID      string `json:"routeId"`
}

// DaySchedule is the result of solving a single day.
type DaySchedule struct {
	Date               time.Time                  `json:"date"`
	Routes             []Route                    `json:"routes"`
	UnassignedVisitIDs []string                   `json:"unassignedVisitIds"`
	Assignments        map[string]VisitAssignment `json:"assignments"`
}

// Schedule is the merged multi-day plan.
type Schedule struct {
	StartDate          time.Time                  `json:"startDate"`
	HorizonWeeks       int                        `json:"horizonWeeks"`
	Routes             []Route                    `json:"routes"`
	UnassignedVisitIDs []string                   `json:"unassignedVisitIds"`
	Assignments        map[string]VisitAssignment `json:"assignments"`
}

// TotalDistanceKm sums route distances across the schedule.
func (s Schedule) TotalDistanceKm() float64 {
	total := 0.0
	for _, r := range s.Routes {
		total += r.TotalDistanceKm
	}
	return total
}

// TotalDriveMinutes sums route driving minutes across the schedule.
func (s Schedule) TotalDriveMinutes() int {
	total := 0
	for _, r := range s.Routes {
		total += r.TotalDriveMinutes
	}
	return total
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

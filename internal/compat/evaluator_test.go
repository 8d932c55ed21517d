package compat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldroute/internal/model"
)

func baseTechnician() model.Technician {
	return model.Technician{
		ID: "t1",
		Skills: model.TechnicianSkills{
			ServiceSkills: []model.ServiceSkill{
				{ServiceType: model.ServiceInterior, Level: model.SkillMedior},
			},
			PhysicallyDemanding: true,
			LivingWalls:         true,
			Heights:             true,
			LiftCertification:   true,
			PesticideCert:       true,
			Citizen:             true,
		},
		WorkingDays: []time.Weekday{time.Monday},
		DailySchedule: map[time.Weekday]model.ShiftWindow{
			time.Monday: {Start: 480, End: 1020},
		},
		HasVehicle: true,
	}
}

func baseVisit() model.VisitInstance {
	return model.VisitInstance{
		ID:     "v1",
		SiteID: "site_a",
		Requirement: &model.SkillRequirement{
			ServiceType:  model.ServiceInterior,
			MinimumLevel: model.SkillJunior,
		},
	}
}

func TestEvaluateCascade(t *testing.T) {
	cases := []struct {
		name   string
		visit  func(v *model.VisitInstance)
		tech   func(tc *model.Technician)
		day    time.Weekday
		reason Reason
	}{
		{name: "allowed", day: time.Monday, reason: ReasonOK},
		{
			name: "not working today",
			day:  time.Tuesday, reason: ReasonNotWorkingToday,
		},
		{
			name: "working day without schedule window",
			tech: func(tc *model.Technician) { delete(tc.DailySchedule, time.Monday) },
			day:  time.Monday, reason: ReasonNotWorkingToday,
		},
		{
			name:  "skill level too low",
			visit: func(v *model.VisitInstance) { v.Requirement.MinimumLevel = model.SkillSenior },
			day:   time.Monday, reason: ReasonSkillsMismatch,
		},
		{
			name:  "wrong service type",
			visit: func(v *model.VisitInstance) { v.Requirement.ServiceType = model.ServiceFloral },
			day:   time.Monday, reason: ReasonSkillsMismatch,
		},
		{
			name:  "physically demanding",
			visit: func(v *model.VisitInstance) { v.Requirement.PhysicallyDemanding = true },
			tech:  func(tc *model.Technician) { tc.Skills.PhysicallyDemanding = false },
			day:   time.Monday, reason: ReasonPhysicalMismatch,
		},
		{
			name:  "living walls",
			visit: func(v *model.VisitInstance) { v.Requirement.LivingWalls = true },
			tech:  func(tc *model.Technician) { tc.Skills.LivingWalls = false },
			day:   time.Monday, reason: ReasonLivingWallsRequired,
		},
		{
			name:  "height work",
			visit: func(v *model.VisitInstance) { v.Requirement.HeightWork = true },
			tech:  func(tc *model.Technician) { tc.Skills.Heights = false },
			day:   time.Monday, reason: ReasonHeightWorkRequired,
		},
		{
			name:  "lift certification",
			visit: func(v *model.VisitInstance) { v.Requirement.Lift = true },
			tech:  func(tc *model.Technician) { tc.Skills.LiftCertification = false },
			day:   time.Monday, reason: ReasonLiftCertRequired,
		},
		{
			name:  "pesticide certification",
			visit: func(v *model.VisitInstance) { v.Requirement.PesticideCert = true },
			tech:  func(tc *model.Technician) { tc.Skills.PesticideCert = false },
			day:   time.Monday, reason: ReasonPesticideRequired,
		},
		{
			name:  "citizenship",
			visit: func(v *model.VisitInstance) { v.Requirement.Citizenship = true },
			tech:  func(tc *model.Technician) { tc.Skills.Citizen = false },
			day:   time.Monday, reason: ReasonCitizenshipRequired,
		},
		{
			name:  "vehicle required",
			visit: func(v *model.VisitInstance) { v.Requirement.PreferredTransport = model.TransportCarOrVan },
			tech:  func(tc *model.Technician) { tc.HasVehicle = false },
			day:   time.Monday, reason: ReasonVehicleRequired,
		},
		{
			name:  "hub and walk needs a vehicle too",
			visit: func(v *model.VisitInstance) { v.Requirement.PreferredTransport = model.TransportDriveToHubAndWalk },
			tech:  func(tc *model.Technician) { tc.HasVehicle = false },
			day:   time.Monday, reason: ReasonVehicleRequired,
		},
		{
			name:  "public transport never needs one",
			visit: func(v *model.VisitInstance) { v.Requirement.PreferredTransport = model.TransportPublicTransport },
			tech:  func(tc *model.Technician) { tc.HasVehicle = false },
			day:   time.Monday, reason: ReasonOK,
		},
		{
			name:  "not in allowed list",
			visit: func(v *model.VisitInstance) { v.AllowedTechnicianIDs = []string{"t9"} },
			day:   time.Monday, reason: ReasonNotInAllowedList,
		},
		{
			name:  "in forbidden list",
			visit: func(v *model.VisitInstance) { v.ForbiddenTechnicianIDs = []string{"t1"} },
			day:   time.Monday, reason: ReasonInForbiddenList,
		},
		{
			name:  "no clearance",
			visit: func(v *model.VisitInstance) { v.ClearanceTechnicianIDs = []string{"t9"} },
			day:   time.Monday, reason: ReasonNoClearance,
		},
		{
			name:  "no requirement skips skill rules",
			visit: func(v *model.VisitInstance) { v.Requirement = nil },
			tech:  func(tc *model.Technician) { tc.Skills = model.TechnicianSkills{} },
			day:   time.Monday, reason: ReasonOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := baseVisit()
			tech := baseTechnician()
			if tc.visit != nil {
				tc.visit(&v)
			}
			if tc.tech != nil {
				tc.tech(&tech)
			}
			d := Evaluate(v, tech, tc.day)
			assert.Equal(t, tc.reason, d.Reason)
			assert.Equal(t, tc.reason == ReasonOK, d.Allowed)
		})
	}
}

func TestEvaluateFirstFailureWins(t *testing.T) {
	v := baseVisit()
	v.Requirement.MinimumLevel = model.SkillSenior
	v.ForbiddenTechnicianIDs = []string{"t1"}

	d := Evaluate(v, baseTechnician(), time.Monday)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonSkillsMismatch, d.Reason)
}

package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldroute/internal/model"
)

func validRequest() PlanRequest {
	return PlanRequest{
		StartDate:    "2026-01-05",
		HorizonWeeks: 1,
		Technicians: []Technician{{
			ID:   "t1",
			Name: "Alex",
			Home: Coordinates{Lat: 52.0, Lon: 4.0},
			Skills: Skills{
				ServiceSkills: []ServiceSkill{{ServiceType: "interior", Level: "medior"}},
			},
			WorkingDays: []string{"monday"},
			DailySchedule: map[string]Shift{
				"monday": {Start: "08:00", End: "17:00"},
			},
			MaxHoursPerDay: 8,
			Break:          &Break{MinMinutes: 30, Start: "12:00", End: "14:00"},
		}},
		Visits: []Visit{{
			ID:              "v1",
			SiteID:          "site_a",
			Location:        Coordinates{Lat: 52.01, Lon: 4.0},
			Date:            "2026-01-05",
			DurationMinutes: 60,
			TimeWindows:     []Window{{Day: "monday", Start: "09:00", End: "12:00"}},
			Requirement:     &Requirement{ServiceType: "interior", MinimumLevel: "junior"},
		}},
	}
}

func TestToModel(t *testing.T) {
	start, techs, visits, err := validRequest().ToModel()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), start)

	require.Len(t, techs, 1)
	tech := techs[0]
	assert.Equal(t, []time.Weekday{time.Monday}, tech.WorkingDays)
	assert.Equal(t, model.ShiftWindow{Start: 480, End: 1020}, tech.DailySchedule[time.Monday])
	assert.Equal(t, model.BreakRequirement{MinMinutes: 30, WindowStart: 720, WindowEnd: 840}, tech.Break)
	assert.True(t, tech.Skills.Has(model.ServiceInterior, model.SkillJunior))
	assert.Equal(t, model.WorkLocationHome, tech.StartsFrom)

	require.Len(t, visits, 1)
	v := visits[0]
	assert.Equal(t, 60, v.DurationMinutes)
	require.NotNil(t, v.Requirement)
	assert.Equal(t, model.TransportEither, v.Requirement.PreferredTransport)
	start2, end2 := v.WindowFor(time.Monday)
	assert.Equal(t, 540, start2)
	assert.Equal(t, 720, end2)
}

func TestToModelRejectsScheduleMismatch(t *testing.T) {
	req := validRequest()
	req.Technicians[0].WorkingDays = []string{"monday", "tuesday"}
	_, _, _, err := req.ToModel()
	require.ErrorContains(t, err, "no schedule window")

	req = validRequest()
	req.Technicians[0].DailySchedule["friday"] = Shift{Start: "08:00", End: "12:00"}
	_, _, _, err = req.ToModel()
	require.ErrorContains(t, err, "not a working day")
}

func TestToModelRejectsBadValues(t *testing.T) {
	req := validRequest()
	req.StartDate = "05-01-2026"
	_, _, _, err := req.ToModel()
	require.ErrorContains(t, err, "startDate")

	req = validRequest()
	req.Technicians[0].DailySchedule["monday"] = Shift{Start: "25:61", End: "17:00"}
	_, _, _, err = req.ToModel()
	require.ErrorContains(t, err, "invalid clock time")

	// Past end of day: 24:00 is the last valid instant.
	req = validRequest()
	req.Technicians[0].DailySchedule["monday"] = Shift{Start: "08:00", End: "24:30"}
	_, _, _, err = req.ToModel()
	require.ErrorContains(t, err, "invalid clock time")

	req = validRequest()
	req.Technicians[0].DailySchedule["monday"] = Shift{Start: "08:00", End: "24:00"}
	_, _, _, err = req.ToModel()
	require.NoError(t, err)

	req = validRequest()
	req.Visits[0].TimeWindows[0].Day = "someday"
	_, _, _, err = req.ToModel()
	require.ErrorContains(t, err, "invalid weekday")

	req = validRequest()
	req.Visits[0].Requirement.MinimumLevel = "wizard"
	_, _, _, err = req.ToModel()
	require.ErrorContains(t, err, "invalid skill level")
}

package compat

import (
	"time"

	"fieldroute/internal/model"
)

// Reason is the first rule that rejected a pairing. Informational only:
// every failing rule excludes the pairing regardless of which one is
// reported.
type Reason string

const (
	ReasonOK                  Reason = "OK"
	ReasonNotWorkingToday     Reason = "NOT_WORKING_TODAY"
	ReasonSkillsMismatch      Reason = "SKILLS_MISMATCH"
	ReasonPhysicalMismatch    Reason = "PHYSICAL_MISMATCH"
	ReasonLivingWallsRequired Reason = "LIVING_WALLS_REQUIRED"
	ReasonHeightWorkRequired  Reason = "HEIGHT_WORK_REQUIRED"
	ReasonLiftCertRequired    Reason = "LIFT_CERT_REQUIRED"
	ReasonPesticideRequired   Reason = "PESTICIDE_CERT_REQUIRED"
	ReasonCitizenshipRequired Reason = "CITIZENSHIP_REQUIRED"
	ReasonVehicleRequired     Reason = "VEHICLE_REQUIRED"
	ReasonNotInAllowedList    Reason = "NOT_IN_ALLOWED_LIST"
	ReasonInForbiddenList     Reason = "IN_FORBIDDEN_LIST"
	ReasonNoClearance         Reason = "NO_CLEARANCE"
)

// Decision is the outcome of evaluating one (visit, technician, day) triple.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true, Reason: ReasonOK} }
func deny(r Reason) Decision { return Decision{Allowed: false, Reason: r} }

// Evaluate decides whether the technician may serve the visit on the given
// weekday. Rules run as a short-circuit cascade; the first failure wins.
func Evaluate(v model.VisitInstance, t model.Technician, day time.Weekday) Decision {
	if _, ok := t.ScheduleFor(day); !t.WorksOn(day) || !ok {
		return deny(ReasonNotWorkingToday)
	}

	if req := v.Requirement; req != nil {
		if !t.Skills.Has(req.ServiceType, req.MinimumLevel) {
			return deny(ReasonSkillsMismatch)
		}
		if req.PhysicallyDemanding && !t.Skills.PhysicallyDemanding {
			return deny(ReasonPhysicalMismatch)
		}
		if req.LivingWalls && !t.Skills.LivingWalls {
			return deny(ReasonLivingWallsRequired)
		}
		if req.HeightWork && !t.Skills.Heights {
			return deny(ReasonHeightWorkRequired)
		}
		if req.Lift && !t.Skills.LiftCertification {
			return deny(ReasonLiftCertRequired)
		}
		if req.PesticideCert && !t.Skills.PesticideCert {
			return deny(ReasonPesticideRequired)
		}
		if req.Citizenship && !t.Skills.Citizen {
			return deny(ReasonCitizenshipRequired)
		}
		if req.PreferredTransport.RequiresVehicle() && !t.HasVehicle {
			return deny(ReasonVehicleRequired)
		}
	}

	if len(v.AllowedTechnicianIDs) > 0 && !contains(v.AllowedTechnicianIDs, t.ID) {
		return deny(ReasonNotInAllowedList)
	}
	if len(v.ForbiddenTechnicianIDs) > 0 && contains(v.ForbiddenTechnicianIDs, t.ID) {
		return deny(ReasonInForbiddenList)
	}
	if len(v.ClearanceTechnicianIDs) > 0 && !contains(v.ClearanceTechnicianIDs, t.ID) {
		return deny(ReasonNoClearance)
	}

	return allow()
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package normalize

import (
	"strings"

	"viksitkanpur/internal/models/records"
)

func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Priority maps a backend priority, defaulting to medium.
func Priority(s string) records.Priority {
	switch enumKey(s) {
	case "high", "urgent", "critical":
		return records.PriorityHigh
	case "low":
		return records.PriorityLow
	default:
		return records.PriorityMedium
	}
}

// Status maps a backend complaint status, defaulting to pending.
func Status(s string) records.Status {
	switch enumKey(s) {
	case "in_progress", "inprogress", "assigned", "ongoing":
		return records.StatusInProgress
	case "completed", "resolved", "closed", "done":
		return records.StatusCompleted
	default:
		return records.StatusPending
	}
}

// WorkerStatus maps a worker availability, defaulting to offline.
func WorkerStatus(s string) records.WorkerStatus {
	switch enumKey(s) {
	case "available", "active", "online", "free":
		return records.WorkerAvailable
	case "busy", "on_duty", "assigned":
		return records.WorkerBusy
	default:
		return records.WorkerOffline
	}
}

// Role maps a user role, defaulting to general.
func Role(s string) records.Role {
	switch enumKey(s) {
	case "citizen":
		return records.RoleCitizen
	case "field_worker", "worker", "fieldworker":
		return records.RoleFieldWorker
	case "department_head", "departmenthead", "hod":
		return records.RoleDepartmentHead
	case "district_magistrate", "districtmagistrate", "dm", "admin":
		return records.RoleDistrictMagistrate
	default:
		return records.RoleGeneral
	}
}

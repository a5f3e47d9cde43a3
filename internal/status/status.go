package status

import (
	"math"
	"time"
)

// Warranty is the derived coverage classification of an appliance.
type Warranty string

const (
	WarrantyActive       Warranty = "Active"
	WarrantyExpiringSoon Warranty = "Expiring Soon"
	WarrantyExpired      Warranty = "Expired"
)

// Maintenance is the classification of a scheduled maintenance task.
type Maintenance string

const (
	MaintenanceUpcoming  Maintenance = "Upcoming"
	MaintenanceCompleted Maintenance = "Completed"
	MaintenanceOverdue   Maintenance = "Overdue"
)

// ExpiringSoonDays is the inclusive window in which a warranty counts as expiring.
const ExpiringSoonDays = 30

// ParseWarranty reports whether s names a known warranty status.
func ParseWarranty(s string) (Warranty, bool) {
	switch w := Warranty(s); w {
	case WarrantyActive, WarrantyExpiringSoon, WarrantyExpired:
		return w, true
	}
	return "", false
}

// ParseMaintenance reports whether s names a known maintenance status.
func ParseMaintenance(s string) (Maintenance, bool) {
	switch m := Maintenance(s); m {
	case MaintenanceUpcoming, MaintenanceCompleted, MaintenanceOverdue:
		return m, true
	}
	return "", false
}

// WarrantyEndDate adds durationMonths calendar months to purchaseDate.
//
// Month overflow follows time.AddDate normalisation: Jan 31 + 1 month is
// Mar 3 (Mar 2 in a leap year), never clamped to the last day of February.
func WarrantyEndDate(purchaseDate time.Time, durationMonths int) time.Time {
	return purchaseDate.AddDate(0, durationMonths, 0)
}

// DaysUntilExpiry returns ceil((end - now) / 24h). Negative once the warranty has lapsed.
func DaysUntilExpiry(purchaseDate time.Time, durationMonths int, now time.Time) int {
	remaining := WarrantyEndDate(purchaseDate, durationMonths).Sub(now)
	return int(math.Ceil(remaining.Hours() / 24))
}

// WarrantyStatus classifies the warranty relative to now.
func WarrantyStatus(purchaseDate time.Time, durationMonths int, now time.Time) Warranty {
	days := DaysUntilExpiry(purchaseDate, durationMonths, now)
	switch {
	case days < 0:
		return WarrantyExpired
	case days <= ExpiringSoonDays:
		return WarrantyExpiringSoon
	default:
		return WarrantyActive
	}
}

// MaintenanceStatus classifies a task. Any completion date wins over the schedule.
func MaintenanceStatus(scheduledDate time.Time, completedDate *time.Time, now time.Time) Maintenance {
	if completedDate != nil {
		return MaintenanceCompleted
	}
	if scheduledDate.Before(now) {
		return MaintenanceOverdue
	}
	return MaintenanceUpcoming
}

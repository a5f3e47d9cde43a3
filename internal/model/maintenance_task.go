package model

import (
	"time"

	"appliance-buddy-backend/internal/status"
)

// Frequency is informational only; no recurrence is generated from it.
type Frequency string

const (
	FrequencyOneTime Frequency = "One-time"
	FrequencyMonthly Frequency = "Monthly"
	FrequencyYearly  Frequency = "Yearly"
	FrequencyCustom  Frequency = "Custom"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// ServiceProvider is stored as a JSON column on the task.
type ServiceProvider struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// MaintenanceTask is a scheduled maintenance job for an appliance.
type MaintenanceTask struct {
	ID              string             `gorm:"primaryKey;size:36" json:"id"`
	ApplianceID     string             `gorm:"size:36;not null;index" json:"applianceId"`
	TaskName        string             `gorm:"size:255;not null" json:"taskName"`
	ScheduledDate   time.Time          `gorm:"not null;index" json:"scheduledDate"`
	Frequency       Frequency          `gorm:"size:50;not null" json:"frequency"`
	ServiceProvider *ServiceProvider   `gorm:"serializer:json" json:"serviceProvider,omitempty"`
	Notes           *string            `gorm:"type:text" json:"notes,omitempty"`
	Status          status.Maintenance `gorm:"size:50;not null;index" json:"status"`
	CompletedDate   *time.Time         `json:"completedDate,omitempty"`
	CreatedAt       time.Time          `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updatedAt"`

	Appliance *Appliance `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

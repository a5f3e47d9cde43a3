package model

import "time"

// LinkedDocument is a titled link (manual, receipt, ...) attached to an appliance.
type LinkedDocument struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ApplianceID string    `gorm:"size:36;not null;index" json:"applianceId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	URL         string    `gorm:"column:url;size:1000;not null" json:"url"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`

	Appliance *Appliance `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

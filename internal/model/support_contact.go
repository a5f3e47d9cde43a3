package model

import "time"

// SupportContact is a support channel for one appliance.
type SupportContact struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	ApplianceID string  `gorm:"size:36;not null;index" json:"applianceId"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Company     *string `gorm:"size:255" json:"company,omitempty"`
	Phone       *string `gorm:"size:50" json:"phone,omitempty"`
	Email       *string `gorm:"size:255" json:"email,omitempty"`
	Website     *string `gorm:"size:500" json:"website,omitempty"`
	Notes       *string `gorm:"type:text" json:"notes,omitempty"`
	// Not exposed; orders contacts by insertion.
	CreatedAt time.Time `gorm:"not null" json:"-"`

	Appliance *Appliance `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

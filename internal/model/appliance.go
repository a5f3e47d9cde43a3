package model

import "time"

// Appliance is a tracked household appliance.
type Appliance struct {
	ID                     string    `gorm:"primaryKey;size:36" json:"id"`
	Name                   string    `gorm:"size:255;not null" json:"name"`
	Brand                  string    `gorm:"size:100;not null;index" json:"brand"`
	Model                  string    `gorm:"size:100;not null" json:"model"`
	PurchaseDate           time.Time `gorm:"not null" json:"purchaseDate"`
	WarrantyDurationMonths int       `gorm:"not null" json:"warrantyDurationMonths"`
	SerialNumber           *string   `gorm:"size:100" json:"serialNumber,omitempty"`
	PurchaseLocation       *string   `gorm:"size:255" json:"purchaseLocation,omitempty"`
	Notes                  *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt              time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt              time.Time `gorm:"not null" json:"updatedAt"`
}

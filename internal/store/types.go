package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
)

// ErrNotFound is returned when the targeted record does not exist.
var ErrNotFound = errors.New("record not found")

// Nullable carries an update to a nullable column. Set reports whether the
// caller supplied a value at all; a nil Value clears the column.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable that assigns v.
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Clear returns a Nullable that sets the column to NULL.
func Clear[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// ApplianceUpdate lists the appliance columns to change. Nil/unset fields are left untouched.
type ApplianceUpdate struct {
	Name                   *string
	Brand                  *string
	Model                  *string
	PurchaseDate           *time.Time
	WarrantyDurationMonths *int
	SerialNumber           Nullable[string]
	PurchaseLocation       Nullable[string]
	Notes                  Nullable[string]
	UpdatedAt              time.Time
}

// ContactUpdate lists the support contact columns to change.
type ContactUpdate struct {
	Name    *string
	Company Nullable[string]
	Phone   Nullable[string]
	Email   Nullable[string]
	Website Nullable[string]
	Notes   Nullable[string]
}

// DocumentUpdate lists the linked document columns to change.
type DocumentUpdate struct {
	Title *string
	URL   *string
}

// TaskUpdate lists the maintenance task columns to change.
type TaskUpdate struct {
	TaskName        *string
	ScheduledDate   *time.Time
	Frequency       *model.Frequency
	ServiceProvider Nullable[model.ServiceProvider]
	Notes           Nullable[string]
	Status          *status.Maintenance
	CompletedDate   Nullable[time.Time]
	UpdatedAt       time.Time
}

func (u ApplianceUpdate) apply(a *model.Appliance) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Brand != nil {
		a.Brand = *u.Brand
	}
	if u.Model != nil {
		a.Model = *u.Model
	}
	if u.PurchaseDate != nil {
		a.PurchaseDate = *u.PurchaseDate
	}
	if u.WarrantyDurationMonths != nil {
		a.WarrantyDurationMonths = *u.WarrantyDurationMonths
	}
	applyNullable(&a.SerialNumber, u.SerialNumber)
	applyNullable(&a.PurchaseLocation, u.PurchaseLocation)
	applyNullable(&a.Notes, u.Notes)
	a.UpdatedAt = u.UpdatedAt
}

func (u ApplianceUpdate) columns() map[string]any {
	cols := map[string]any{"updated_at": u.UpdatedAt}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Brand != nil {
		cols["brand"] = *u.Brand
	}
	if u.Model != nil {
		cols["model"] = *u.Model
	}
	if u.PurchaseDate != nil {
		cols["purchase_date"] = *u.PurchaseDate
	}
	if u.WarrantyDurationMonths != nil {
		cols["warranty_duration_months"] = *u.WarrantyDurationMonths
	}
	setNullableColumn(cols, "serial_number", u.SerialNumber)
	setNullableColumn(cols, "purchase_location", u.PurchaseLocation)
	setNullableColumn(cols, "notes", u.Notes)
	return cols
}

func (u ContactUpdate) apply(c *model.SupportContact) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	applyNullable(&c.Company, u.Company)
	applyNullable(&c.Phone, u.Phone)
	applyNullable(&c.Email, u.Email)
	applyNullable(&c.Website, u.Website)
	applyNullable(&c.Notes, u.Notes)
}

func (u ContactUpdate) columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	setNullableColumn(cols, "company", u.Company)
	setNullableColumn(cols, "phone", u.Phone)
	setNullableColumn(cols, "email", u.Email)
	setNullableColumn(cols, "website", u.Website)
	setNullableColumn(cols, "notes", u.Notes)
	return cols
}

func (u DocumentUpdate) apply(d *model.LinkedDocument) {
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.URL != nil {
		d.URL = *u.URL
	}
}

func (u DocumentUpdate) columns() map[string]any {
	cols := map[string]any{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.URL != nil {
		cols["url"] = *u.URL
	}
	return cols
}

func (u TaskUpdate) apply(t *model.MaintenanceTask) {
	if u.TaskName != nil {
		t.TaskName = *u.TaskName
	}
	if u.ScheduledDate != nil {
		t.ScheduledDate = *u.ScheduledDate
	}
	if u.Frequency != nil {
		t.Frequency = *u.Frequency
	}
	applyNullable(&t.ServiceProvider, u.ServiceProvider)
	applyNullable(&t.Notes, u.Notes)
	if u.Status != nil {
		t.Status = *u.Status
	}
	applyNullable(&t.CompletedDate, u.CompletedDate)
	t.UpdatedAt = u.UpdatedAt
}

// columns encodes service_provider by hand: map updates bypass the
// serializer declared on the model field.
func (u TaskUpdate) columns() (map[string]any, error) {
	cols := map[string]any{"updated_at": u.UpdatedAt}
	if u.TaskName != nil {
		cols["task_name"] = *u.TaskName
	}
	if u.ScheduledDate != nil {
		cols["scheduled_date"] = *u.ScheduledDate
	}
	if u.Frequency != nil {
		cols["frequency"] = string(*u.Frequency)
	}
	if u.ServiceProvider.Set {
		if u.ServiceProvider.Value == nil {
			cols["service_provider"] = nil
		} else {
			raw, err := json.Marshal(u.ServiceProvider.Value)
			if err != nil {
				return nil, fmt.Errorf("encode service provider: %w", err)
			}
			cols["service_provider"] = string(raw)
		}
	}
	setNullableColumn(cols, "notes", u.Notes)
	if u.Status != nil {
		cols["status"] = string(*u.Status)
	}
	setNullableColumn(cols, "completed_date", u.CompletedDate)
	return cols, nil
}

func applyNullable[T any](dst **T, n Nullable[T]) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}

func setNullableColumn[T any](cols map[string]any, name string, n Nullable[T]) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		cols[name] = nil
		return
	}
	cols[name] = *n.Value
}

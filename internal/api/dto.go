package api

import (
	"encoding/json"
	"fmt"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/parse"
	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/status"
	"appliance-buddy-backend/internal/store"
)

// Date accepts "2023-01-15" as well as RFC 3339 timestamps.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string")
	}
	t, err := parse.ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// Optional distinguishes an absent field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) nullable() store.Nullable[T] {
	return store.Nullable[T]{Set: o.Set, Value: o.Value}
}

func optionalDate(o Optional[Date]) store.Nullable[time.Time] {
	if !o.Set || o.Value == nil {
		return store.Nullable[time.Time]{Set: o.Set}
	}
	return store.SetTo(o.Value.Time)
}

// --- Appliances ---

type createApplianceRequest struct {
	Name                   string  `json:"name" binding:"required"`
	Brand                  string  `json:"brand" binding:"required"`
	Model                  string  `json:"model" binding:"required"`
	PurchaseDate           *Date   `json:"purchaseDate" binding:"required"`
	WarrantyDurationMonths *int    `json:"warrantyDurationMonths" binding:"required,min=0"`
	SerialNumber           *string `json:"serialNumber"`
	PurchaseLocation       *string `json:"purchaseLocation"`
	Notes                  *string `json:"notes"`
}

func (r createApplianceRequest) input() service.ApplianceInput {
	return service.ApplianceInput{
		Name:                   r.Name,
		Brand:                  r.Brand,
		Model:                  r.Model,
		PurchaseDate:           r.PurchaseDate.Time,
		WarrantyDurationMonths: *r.WarrantyDurationMonths,
		SerialNumber:           r.SerialNumber,
		PurchaseLocation:       r.PurchaseLocation,
		Notes:                  r.Notes,
	}
}

type updateApplianceRequest struct {
	Name                   *string          `json:"name"`
	Brand                  *string          `json:"brand"`
	Model                  *string          `json:"model"`
	PurchaseDate           *Date            `json:"purchaseDate"`
	WarrantyDurationMonths *int             `json:"warrantyDurationMonths"`
	SerialNumber           Optional[string] `json:"serialNumber"`
	PurchaseLocation       Optional[string] `json:"purchaseLocation"`
	Notes                  Optional[string] `json:"notes"`
}

func (r updateApplianceRequest) update() store.ApplianceUpdate {
	return store.ApplianceUpdate{
		Name:                   r.Name,
		Brand:                  r.Brand,
		Model:                  r.Model,
		PurchaseDate:           r.PurchaseDate.ptr(),
		WarrantyDurationMonths: r.WarrantyDurationMonths,
		SerialNumber:           r.SerialNumber.nullable(),
		PurchaseLocation:       r.PurchaseLocation.nullable(),
		Notes:                  r.Notes.nullable(),
	}
}

// --- Maintenance ---

type createTaskRequest struct {
	TaskName        string                 `json:"taskName" binding:"required"`
	ScheduledDate   *Date                  `json:"scheduledDate" binding:"required"`
	Frequency       string                 `json:"frequency" binding:"required"`
	ServiceProvider *model.ServiceProvider `json:"serviceProvider"`
	Notes           *string                `json:"notes"`
}

func (r createTaskRequest) input() service.TaskInput {
	return service.TaskInput{
		TaskName:        r.TaskName,
		ScheduledDate:   r.ScheduledDate.Time,
		Frequency:       model.Frequency(r.Frequency),
		ServiceProvider: r.ServiceProvider,
		Notes:           r.Notes,
	}
}

type updateTaskRequest struct {
	TaskName        *string                         `json:"taskName"`
	ScheduledDate   *Date                           `json:"scheduledDate"`
	Frequency       *string                         `json:"frequency"`
	ServiceProvider Optional[model.ServiceProvider] `json:"serviceProvider"`
	Notes           Optional[string]                `json:"notes"`
	Status          *string                         `json:"status"`
	CompletedDate   Optional[Date]                  `json:"completedDate"`
}

func (r updateTaskRequest) update() store.TaskUpdate {
	u := store.TaskUpdate{
		TaskName:        r.TaskName,
		ScheduledDate:   r.ScheduledDate.ptr(),
		ServiceProvider: r.ServiceProvider.nullable(),
		Notes:           r.Notes.nullable(),
		CompletedDate:   optionalDate(r.CompletedDate),
	}
	if r.Frequency != nil {
		f := model.Frequency(*r.Frequency)
		u.Frequency = &f
	}
	if r.Status != nil {
		st := status.Maintenance(*r.Status)
		u.Status = &st
	}
	return u
}

type completeTaskRequest struct {
	CompletedDate *Date `json:"completedDate"`
}

// refreshResponse reports the tasks moved to Overdue.
type refreshResponse struct {
	Updated int                     `json:"updated"`
	Tasks   []model.MaintenanceTask `json:"tasks"`
}

// --- Contacts ---

type createContactRequest struct {
	Name    string  `json:"name" binding:"required"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	Notes   *string `json:"notes"`
}

func (r createContactRequest) input() service.ContactInput {
	return service.ContactInput{
		Name:    r.Name,
		Company: r.Company,
		Phone:   r.Phone,
		Email:   r.Email,
		Website: r.Website,
		Notes:   r.Notes,
	}
}

type updateContactRequest struct {
	Name    *string          `json:"name"`
	Company Optional[string] `json:"company"`
	Phone   Optional[string] `json:"phone"`
	Email   Optional[string] `json:"email"`
	Website Optional[string] `json:"website"`
	Notes   Optional[string] `json:"notes"`
}

func (r updateContactRequest) update() store.ContactUpdate {
	return store.ContactUpdate{
		Name:    r.Name,
		Company: r.Company.nullable(),
		Phone:   r.Phone.nullable(),
		Email:   r.Email.nullable(),
		Website: r.Website.nullable(),
		Notes:   r.Notes.nullable(),
	}
}

// --- Documents ---

type createDocumentRequest struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"url" binding:"required"`
}

type updateDocumentRequest struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
}

func (r updateDocumentRequest) update() store.DocumentUpdate {
	return store.DocumentUpdate{Title: r.Title, URL: r.URL}
}

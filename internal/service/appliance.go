package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
	"appliance-buddy-backend/internal/store"
)

// ApplianceView is an appliance with derived warranty fields and its relations.
type ApplianceView struct {
	model.Appliance
	WarrantyStatus   status.Warranty         `json:"warrantyStatus"`
	WarrantyEndDate  time.Time               `json:"warrantyEndDate"`
	SupportContacts  []model.SupportContact  `json:"supportContacts"`
	MaintenanceTasks []model.MaintenanceTask `json:"maintenanceTasks"`
	LinkedDocuments  []model.LinkedDocument  `json:"linkedDocuments"`
}

// Filters narrows a listing. Zero values disable the corresponding filter;
// a Limit of 0 means no limit.
type Filters struct {
	Search         string
	Brand          string
	WarrantyStatus status.Warranty
	Limit          int
	Offset         int
}

// Stats buckets every appliance by its current warranty status.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}

// ApplianceInput carries the fields of a new appliance.
type ApplianceInput struct {
	Name                   string
	Brand                  string
	Model                  string
	PurchaseDate           time.Time
	WarrantyDurationMonths int
	SerialNumber           *string
	PurchaseLocation       *string
	Notes                  *string
}

// ApplianceService aggregates appliances with their related records.
type ApplianceService struct {
	store store.Store
	now   func() time.Time
}

// NewApplianceService creates the service. A nil clock defaults to time.Now.
func NewApplianceService(s store.Store, now func() time.Time) *ApplianceService {
	if now == nil {
		now = time.Now
	}
	return &ApplianceService{store: s, now: now}
}

// List returns appliances newest first, filtered by search, then brand, then
// warranty status, and finally sliced by offset and limit.
func (s *ApplianceService) List(ctx context.Context, f Filters) ([]ApplianceView, error) {
	appliances, err := s.store.ListAppliances(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]model.Appliance, 0, len(appliances))
	for _, a := range appliances {
		if search != "" && !matchesSearch(a, search) {
			continue
		}
		if f.Brand != "" && a.Brand != f.Brand {
			continue
		}
		if f.WarrantyStatus != "" && status.WarrantyStatus(a.PurchaseDate, a.WarrantyDurationMonths, now) != f.WarrantyStatus {
			continue
		}
		matched = append(matched, a)
	}

	page := paginate(matched, f.Offset, f.Limit)
	views := make([]ApplianceView, 0, len(page))
	for _, a := range page {
		v, err := s.withRelations(ctx, a, now)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func matchesSearch(a model.Appliance, term string) bool {
	return strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.Brand), term) ||
		strings.Contains(strings.ToLower(a.Model), term)
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Get returns one appliance with relations, or store.ErrNotFound.
func (s *ApplianceService) Get(ctx context.Context, id string) (ApplianceView, error) {
	a, err := s.store.GetAppliance(ctx, id)
	if err != nil {
		return ApplianceView{}, err
	}
	return s.withRelations(ctx, a, s.now())
}

// withRelations fetches the three relation sets concurrently. Any failure aborts.
func (s *ApplianceService) withRelations(ctx context.Context, a model.Appliance, now time.Time) (ApplianceView, error) {
	v := ApplianceView{
		Appliance:       a,
		WarrantyStatus:  status.WarrantyStatus(a.PurchaseDate, a.WarrantyDurationMonths, now),
		WarrantyEndDate: status.WarrantyEndDate(a.PurchaseDate, a.WarrantyDurationMonths),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contacts, err := s.store.ListContacts(gctx, a.ID)
		v.SupportContacts = contacts
		return err
	})
	g.Go(func() error {
		tasks, err := s.store.ListTasks(gctx, a.ID)
		v.MaintenanceTasks = deriveStatuses(tasks, now)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.ListDocuments(gctx, a.ID)
		v.LinkedDocuments = docs
		return err
	})
	if err := g.Wait(); err != nil {
		return ApplianceView{}, fmt.Errorf("failed to load relations of appliance %s: %w", a.ID, err)
	}

	if v.SupportContacts == nil {
		v.SupportContacts = []model.SupportContact{}
	}
	if v.LinkedDocuments == nil {
		v.LinkedDocuments = []model.LinkedDocument{}
	}
	return v, nil
}

// Create validates and persists a new appliance.
func (s *ApplianceService) Create(ctx context.Context, in ApplianceInput) (model.Appliance, error) {
	if err := validateAppliance(in); err != nil {
		return model.Appliance{}, err
	}
	now := s.now().UTC()
	a := model.Appliance{
		Name:                   strings.TrimSpace(in.Name),
		Brand:                  strings.TrimSpace(in.Brand),
		Model:                  strings.TrimSpace(in.Model),
		PurchaseDate:           in.PurchaseDate.UTC(),
		WarrantyDurationMonths: in.WarrantyDurationMonths,
		SerialNumber:           blankToNil(in.SerialNumber),
		PurchaseLocation:       blankToNil(in.PurchaseLocation),
		Notes:                  blankToNil(in.Notes),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.store.CreateAppliance(ctx, &a); err != nil {
		return model.Appliance{}, err
	}
	return a, nil
}

func validateAppliance(in ApplianceInput) error {
	if err := requireText("name", in.Name); err != nil {
		return err
	}
	if err := requireText("brand", in.Brand); err != nil {
		return err
	}
	if err := requireText("model", in.Model); err != nil {
		return err
	}
	if in.PurchaseDate.IsZero() {
		return invalid("purchaseDate", "is required")
	}
	if in.WarrantyDurationMonths < 0 {
		return invalid("warrantyDurationMonths", "must be zero or greater, got %d", in.WarrantyDurationMonths)
	}
	return nil
}

// Update applies only the provided fields and always bumps updatedAt.
func (s *ApplianceService) Update(ctx context.Context, id string, u store.ApplianceUpdate) (model.Appliance, error) {
	var err error
	if u.Name, err = trimRequired("name", u.Name); err != nil {
		return model.Appliance{}, err
	}
	if u.Brand, err = trimRequired("brand", u.Brand); err != nil {
		return model.Appliance{}, err
	}
	if u.Model, err = trimRequired("model", u.Model); err != nil {
		return model.Appliance{}, err
	}
	if u.PurchaseDate != nil {
		if u.PurchaseDate.IsZero() {
			return model.Appliance{}, invalid("purchaseDate", "must be a valid date")
		}
		utc := u.PurchaseDate.UTC()
		u.PurchaseDate = &utc
	}
	if u.WarrantyDurationMonths != nil && *u.WarrantyDurationMonths < 0 {
		return model.Appliance{}, invalid("warrantyDurationMonths", "must be zero or greater, got %d", *u.WarrantyDurationMonths)
	}
	u.SerialNumber = normalizeText(u.SerialNumber)
	u.PurchaseLocation = normalizeText(u.PurchaseLocation)
	u.Notes = normalizeText(u.Notes)
	u.UpdatedAt = s.now().UTC()
	return s.store.UpdateAppliance(ctx, id, u)
}

// Delete removes the appliance with its contacts, tasks and documents.
func (s *ApplianceService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteAppliance(ctx, id)
}

// Stats counts appliances per warranty status in a single pass.
func (s *ApplianceService) Stats(ctx context.Context) (Stats, error) {
	appliances, err := s.store.ListAppliances(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := s.now()
	var st Stats
	for _, a := range appliances {
		st.Total++
		switch status.WarrantyStatus(a.PurchaseDate, a.WarrantyDurationMonths, now) {
		case status.WarrantyActive:
			st.Active++
		case status.WarrantyExpiringSoon:
			st.Expiring++
		case status.WarrantyExpired:
			st.Expired++
		}
	}
	return st, nil
}

// normalizeText turns an explicit blank into a clear.
func normalizeText(n store.Nullable[string]) store.Nullable[string] {
	if n.Set && blankToNil(n.Value) == nil {
		return store.Clear[string]()
	}
	return n
}

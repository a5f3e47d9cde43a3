package service

import (
	"context"
	"sort"
	"time"

	"appliance-buddy-backend/internal/status"
	"appliance-buddy-backend/internal/store"
)

// WarrantyEntry pairs an appliance with its computed coverage.
type WarrantyEntry struct {
	ApplianceID     string          `json:"applianceId"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	PurchaseDate    time.Time       `json:"purchaseDate"`
	WarrantyEndDate time.Time       `json:"warrantyEndDate"`
	WarrantyStatus  status.Warranty `json:"warrantyStatus"`
	DaysUntilExpiry int             `json:"daysUntilExpiry"`
}

// WarrantyService answers coverage queries across all appliances.
type WarrantyService struct {
	store store.Store
	now   func() time.Time
}

func NewWarrantyService(s store.Store, now func() time.Time) *WarrantyService {
	if now == nil {
		now = time.Now
	}
	return &WarrantyService{store: s, now: now}
}

// Expiring lists warranties ending in (now, now+days], soonest first.
func (s *WarrantyService) Expiring(ctx context.Context, days int) ([]WarrantyEntry, error) {
	if days < 0 {
		return nil, invalid("days", "must be zero or greater, got %d", days)
	}
	now := s.now()
	threshold := now.Add(time.Duration(days) * 24 * time.Hour)
	return s.collect(ctx, now, func(end time.Time) bool {
		return end.After(now) && !end.After(threshold)
	})
}

// Expired lists warranties that ended before now, soonest first.
func (s *WarrantyService) Expired(ctx context.Context) ([]WarrantyEntry, error) {
	now := s.now()
	return s.collect(ctx, now, func(end time.Time) bool { return end.Before(now) })
}

func (s *WarrantyService) collect(ctx context.Context, now time.Time, keep func(end time.Time) bool) ([]WarrantyEntry, error) {
	appliances, err := s.store.ListAppliances(ctx)
	if err != nil {
		return nil, err
	}
	res := []WarrantyEntry{}
	for _, a := range appliances {
		end := status.WarrantyEndDate(a.PurchaseDate, a.WarrantyDurationMonths)
		if !keep(end) {
			continue
		}
		res = append(res, WarrantyEntry{
			ApplianceID:     a.ID,
			Name:            a.Name,
			Brand:           a.Brand,
			Model:           a.Model,
			PurchaseDate:    a.PurchaseDate,
			WarrantyEndDate: end,
			WarrantyStatus:  status.WarrantyStatus(a.PurchaseDate, a.WarrantyDurationMonths, now),
			DaysUntilExpiry: status.DaysUntilExpiry(a.PurchaseDate, a.WarrantyDurationMonths, now),
		})
	}
	sortByEnd(res)
	return res, nil
}

func sortByEnd(entries []WarrantyEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WarrantyEndDate.Before(entries[j].WarrantyEndDate)
	})
}

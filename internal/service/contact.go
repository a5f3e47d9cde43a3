package service

import (
	"context"
	"strings"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/store"
)

// ContactInput carries the fields of a new support contact.
type ContactInput struct {
	Name    string
	Company *string
	Phone   *string
	Email   *string
	Website *string
	Notes   *string
}

// ContactService manages support contacts of an appliance.
type ContactService struct {
	store store.Store
	now   func() time.Time
}

func NewContactService(s store.Store, now func() time.Time) *ContactService {
	if now == nil {
		now = time.Now
	}
	return &ContactService{store: s, now: now}
}

// List returns the appliance's contacts in insertion order.
func (s *ContactService) List(ctx context.Context, applianceID string) ([]model.SupportContact, error) {
	if _, err := s.store.GetAppliance(ctx, applianceID); err != nil {
		return nil, err
	}
	return s.store.ListContacts(ctx, applianceID)
}

func (s *ContactService) Create(ctx context.Context, applianceID string, in ContactInput) (model.SupportContact, error) {
	if err := requireText("name", in.Name); err != nil {
		return model.SupportContact{}, err
	}
	if _, err := s.store.GetAppliance(ctx, applianceID); err != nil {
		return model.SupportContact{}, err
	}
	c := model.SupportContact{
		ApplianceID: applianceID,
		Name:        strings.TrimSpace(in.Name),
		Company:     blankToNil(in.Company),
		Phone:       blankToNil(in.Phone),
		Email:       blankToNil(in.Email),
		Website:     blankToNil(in.Website),
		Notes:       blankToNil(in.Notes),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateContact(ctx, &c); err != nil {
		return model.SupportContact{}, err
	}
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, id string, u store.ContactUpdate) (model.SupportContact, error) {
	var err error
	if u.Name, err = trimRequired("name", u.Name); err != nil {
		return model.SupportContact{}, err
	}
	u.Company = normalizeText(u.Company)
	u.Phone = normalizeText(u.Phone)
	u.Email = normalizeText(u.Email)
	u.Website = normalizeText(u.Website)
	u.Notes = normalizeText(u.Notes)
	return s.store.UpdateContact(ctx, id, u)
}

func (s *ContactService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteContact(ctx, id)
}

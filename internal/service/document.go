package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/store"
)

// DocumentService manages links (manuals, receipts) attached to an appliance.
type DocumentService struct {
	store store.Store
	now   func() time.Time
}

func NewDocumentService(s store.Store, now func() time.Time) *DocumentService {
	if now == nil {
		now = time.Now
	}
	return &DocumentService{store: s, now: now}
}

func (s *DocumentService) List(ctx context.Context, applianceID string) ([]model.LinkedDocument, error) {
	if _, err := s.store.GetAppliance(ctx, applianceID); err != nil {
		return nil, err
	}
	return s.store.ListDocuments(ctx, applianceID)
}

func (s *DocumentService) Create(ctx context.Context, applianceID, title, link string) (model.LinkedDocument, error) {
	if err := requireText("title", title); err != nil {
		return model.LinkedDocument{}, err
	}
	link, err := validURL(link)
	if err != nil {
		return model.LinkedDocument{}, err
	}
	if _, err := s.store.GetAppliance(ctx, applianceID); err != nil {
		return model.LinkedDocument{}, err
	}
	d := model.LinkedDocument{
		ApplianceID: applianceID,
		Title:       strings.TrimSpace(title),
		URL:         link,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateDocument(ctx, &d); err != nil {
		return model.LinkedDocument{}, err
	}
	return d, nil
}

func (s *DocumentService) Update(ctx context.Context, id string, u store.DocumentUpdate) (model.LinkedDocument, error) {
	var err error
	if u.Title, err = trimRequired("title", u.Title); err != nil {
		return model.LinkedDocument{}, err
	}
	if u.URL != nil {
		link, err := validURL(*u.URL)
		if err != nil {
			return model.LinkedDocument{}, err
		}
		u.URL = &link
	}
	return s.store.UpdateDocument(ctx, id, u)
}

func (s *DocumentService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteDocument(ctx, id)
}

// validURL accepts absolute http(s) links only.
func validURL(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", invalid("url", "is required")
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid("url", "must be an absolute http or https URL")
	}
	return link, nil
}

package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	now     func() time.Time

	appliances  *service.ApplianceService
	maintenance *service.MaintenanceService
	warranties  *service.WarrantyService
	contacts    *service.ContactService
	documents   *service.DocumentService

	databaseType string
}

// NewHandler creates a new API handler. webpushOptions and notifier may be nil
// when push notifications are not configured.
func NewHandler(s store.Store, webpushOptions *webpush.Options, notifier service.Notifier) *Handler {
	return newHandler(s, webpushOptions, notifier, time.Now)
}

func newHandler(s store.Store, webpushOptions *webpush.Options, notifier service.Notifier, now func() time.Time) *Handler {
	return &Handler{
		store:       s,
		webpush:     webpushOptions,
		now:         now,
		appliances:  service.NewApplianceService(s, now),
		maintenance: service.NewMaintenanceService(s, now, notifier),
		warranties:  service.NewWarrantyService(s, now),
		contacts:    service.NewContactService(s, now),
		documents:   service.NewDocumentService(s, now),
	}
}

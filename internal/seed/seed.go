// Package seed loads sample appliances for local development.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/store"
)

// Result counts the records inserted by Run.
type Result struct {
	Appliances int
	Contacts   int
	Tasks      int
	Documents  int
}

func text(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Appliances is the sample inventory.
var Appliances = []service.ApplianceInput{
	{
		Name:                   "Whirlpool Dryer",
		Brand:                  "Whirlpool",
		Model:                  "WED5620HW",
		PurchaseDate:           day(2023, 1, 15),
		WarrantyDurationMonths: 24,
		SerialNumber:           text("WHIR-DR-001"),
		PurchaseLocation:       text("Home Depot"),
		Notes:                  text("Stackable dryer with steam refresh cycle"),
	},
	{
		Name:                   `Samsung 55" QLED TV`,
		Brand:                  "Samsung",
		Model:                  "QN55Q80C",
		PurchaseDate:           day(2024, 7, 1),
		WarrantyDurationMonths: 36,
		SerialNumber:           text("SAM-TV-003"),
		PurchaseLocation:       text("Best Buy"),
		Notes:                  text("Quantum HDR 24x with Direct Full Array backlighting"),
	},
	{
		Name:                   "LG French Door Refrigerator",
		Brand:                  "LG",
		Model:                  "LRFVS3006S",
		PurchaseDate:           day(2024, 1, 15),
		WarrantyDurationMonths: 24,
		SerialNumber:           text("LG-REF-004"),
		PurchaseLocation:       text("Costco"),
		Notes:                  text("InstaView Door-in-Door with craft ice maker"),
	},
}

// Run clears every appliance (and, by cascade, its records) and inserts the
// sample inventory. Each appliance gets one support contact, two tasks
// scheduled 30 and 90 days after now, and two documents.
func Run(ctx context.Context, s store.Store, now func() time.Time) (Result, error) {
	if now == nil {
		now = time.Now
	}
	var res Result

	existing, err := s.ListAppliances(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list existing appliances: %w", err)
	}
	for _, a := range existing {
		if _, err := s.DeleteAppliance(ctx, a.ID); err != nil {
			return res, fmt.Errorf("failed to clear appliance %s: %w", a.ID, err)
		}
	}
	log.Printf("Cleared %d existing appliances", len(existing))

	appliances := service.NewApplianceService(s, now)
	contacts := service.NewContactService(s, now)
	tasks := service.NewMaintenanceService(s, now, nil)
	documents := service.NewDocumentService(s, now)

	for _, in := range Appliances {
		a, err := appliances.Create(ctx, in)
		if err != nil {
			return res, fmt.Errorf("failed to create %s: %w", in.Name, err)
		}
		res.Appliances++

		slug := strings.ToLower(a.Brand)
		if _, err := contacts.Create(ctx, a.ID, service.ContactInput{
			Name:    a.Brand + " Customer Service",
			Company: text(a.Brand + " Corporation"),
			Phone:   text("1-800-555-0000"),
			Email:   text("support@" + slug + ".com"),
			Website: text("https://www." + slug + ".com/support"),
		}); err != nil {
			return res, fmt.Errorf("failed to create contact for %s: %w", a.Name, err)
		}
		res.Contacts++

		for _, t := range []service.TaskInput{
			{
				TaskName:      "General cleaning and inspection",
				ScheduledDate: now().AddDate(0, 0, 30),
				Frequency:     model.FrequencyMonthly,
				Notes:         text("Regular maintenance task"),
			},
			{
				TaskName:      "Filter replacement",
				ScheduledDate: now().AddDate(0, 0, 90),
				Frequency:     model.FrequencyYearly,
				Notes:         text("Replace filters as needed"),
			},
		} {
			if _, err := tasks.Create(ctx, a.ID, t); err != nil {
				return res, fmt.Errorf("failed to create task for %s: %w", a.Name, err)
			}
			res.Tasks++
		}

		docs := [][2]string{
			{"User Manual", "https://www." + slug + ".com/manuals/" + a.Model},
			{"Warranty Information", "https://www." + slug + ".com/warranty"},
		}
		for _, d := range docs {
			if _, err := documents.Create(ctx, a.ID, d[0], d[1]); err != nil {
				return res, fmt.Errorf("failed to create document for %s: %w", a.Name, err)
			}
			res.Documents++
		}
	}

	log.Printf("Seeded %d appliances, %d contacts, %d tasks, %d documents",
		res.Appliances, res.Contacts, res.Tasks, res.Documents)
	return res, nil
}

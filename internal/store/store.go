package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateAppliance(ctx context.Context, a *model.Appliance) error
	GetAppliance(ctx context.Context, id string) (model.Appliance, error)
	ListAppliances(ctx context.Context) ([]model.Appliance, error)
	UpdateAppliance(ctx context.Context, id string, u ApplianceUpdate) (model.Appliance, error)
	// DeleteAppliance removes the appliance and everything that references it.
	DeleteAppliance(ctx context.Context, id string) (bool, error)

	CreateContact(ctx context.Context, c *model.SupportContact) error
	GetContact(ctx context.Context, id string) (model.SupportContact, error)
	ListContacts(ctx context.Context, applianceID string) ([]model.SupportContact, error)
	UpdateContact(ctx context.Context, id string, u ContactUpdate) (model.SupportContact, error)
	DeleteContact(ctx context.Context, id string) (bool, error)

	CreateTask(ctx context.Context, t *model.MaintenanceTask) error
	GetTask(ctx context.Context, id string) (model.MaintenanceTask, error)
	// ListTasks returns an appliance's tasks, latest scheduled first.
	ListTasks(ctx context.Context, applianceID string) ([]model.MaintenanceTask, error)
	// ListTasksByStatus filters on the stored status column, earliest scheduled first.
	ListTasksByStatus(ctx context.Context, s status.Maintenance) ([]model.MaintenanceTask, error)
	// ListOpenTasks returns every task without a completion date, earliest scheduled first.
	ListOpenTasks(ctx context.Context) ([]model.MaintenanceTask, error)
	UpdateTask(ctx context.Context, id string, u TaskUpdate) (model.MaintenanceTask, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	CreateDocument(ctx context.Context, d *model.LinkedDocument) error
	GetDocument(ctx context.Context, id string) (model.LinkedDocument, error)
	ListDocuments(ctx context.Context, applianceID string) ([]model.LinkedDocument, error)
	UpdateDocument(ctx context.Context, id string, u DocumentUpdate) (model.LinkedDocument, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)

	// SaveSubscription upserts the subscription and replaces the set of followed appliances.
	// Unknown appliance ids are ignored.
	SaveSubscription(ctx context.Context, sub *model.PushSubscription, applianceIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) (bool, error)
	ListSubscriptionsForAppliance(ctx context.Context, applianceID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

const subscriptionJoinTable = "subscription_appliances"

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// getByID loads a single row keyed by its string id.
func getByID[T any](ctx context.Context, db *gorm.DB, id string) (T, error) {
	var rec T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return rec, notFound(err)
	}
	return rec, nil
}

// updateByID applies cols to the row with the given id and returns the fresh row.
func updateByID[T any](ctx context.Context, db *gorm.DB, id string, cols map[string]any) (T, error) {
	var rec T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			return notFound(err)
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(new(T)).Where("id = ?", id).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to update %s: %w", id, err)
		}
		// Scan into a zero value: First leaves pointer fields untouched for NULL columns.
		var fresh T
		if err := tx.Where("id = ?", id).First(&fresh).Error; err != nil {
			return err
		}
		rec = fresh
		return nil
	})
	return rec, err
}

// deleteByID reports whether a row was removed.
func deleteByID[T any](ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// --- Appliances ---

func (s *gormStore) CreateAppliance(ctx context.Context, a *model.Appliance) error {
	ensureID(&a.ID)
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create appliance: %w", err)
	}
	return nil
}

func (s *gormStore) GetAppliance(ctx context.Context, id string) (model.Appliance, error) {
	return getByID[model.Appliance](ctx, s.db, id)
}

func (s *gormStore) ListAppliances(ctx context.Context) ([]model.Appliance, error) {
	var appliances []model.Appliance
	// id breaks createdAt ties so paging is stable across queries.
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&appliances).Error; err != nil {
		return nil, fmt.Errorf("failed to list appliances: %w", err)
	}
	return appliances, nil
}

func (s *gormStore) UpdateAppliance(ctx context.Context, id string, u ApplianceUpdate) (model.Appliance, error) {
	return updateByID[model.Appliance](ctx, s.db, id, u.columns())
}

// DeleteAppliance cascades inside one transaction so no partial state is visible.
func (s *gormStore) DeleteAppliance(ctx context.Context, id string) (bool, error) {
	var existed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appliance_id = ?", id).Delete(&model.SupportContact{}).Error; err != nil {
			return fmt.Errorf("failed to delete support contacts of %s: %w", id, err)
		}
		if err := tx.Where("appliance_id = ?", id).Delete(&model.MaintenanceTask{}).Error; err != nil {
			return fmt.Errorf("failed to delete maintenance tasks of %s: %w", id, err)
		}
		if err := tx.Where("appliance_id = ?", id).Delete(&model.LinkedDocument{}).Error; err != nil {
			return fmt.Errorf("failed to delete linked documents of %s: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM "+subscriptionJoinTable+" WHERE appliance_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink subscriptions of %s: %w", id, err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Appliance{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete appliance %s: %w", id, res.Error)
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// --- Support contacts ---

func (s *gormStore) CreateContact(ctx context.Context, c *model.SupportContact) error {
	ensureID(&c.ID)
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create support contact: %w", err)
	}
	return nil
}

func (s *gormStore) GetContact(ctx context.Context, id string) (model.SupportContact, error) {
	return getByID[model.SupportContact](ctx, s.db, id)
}

func (s *gormStore) ListContacts(ctx context.Context, applianceID string) ([]model.SupportContact, error) {
	var contacts []model.SupportContact
	if err := s.db.WithContext(ctx).
		Where("appliance_id = ?", applianceID).
		Order("created_at ASC").
		Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list support contacts of %s: %w", applianceID, err)
	}
	return contacts, nil
}

func (s *gormStore) UpdateContact(ctx context.Context, id string, u ContactUpdate) (model.SupportContact, error) {
	return updateByID[model.SupportContact](ctx, s.db, id, u.columns())
}

func (s *gormStore) DeleteContact(ctx context.Context, id string) (bool, error) {
	return deleteByID[model.SupportContact](ctx, s.db, id)
}

// --- Maintenance tasks ---

func (s *gormStore) CreateTask(ctx context.Context, t *model.MaintenanceTask) error {
	ensureID(&t.ID)
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create maintenance task: %w", err)
	}
	return nil
}

func (s *gormStore) GetTask(ctx context.Context, id string) (model.MaintenanceTask, error) {
	return getByID[model.MaintenanceTask](ctx, s.db, id)
}

func (s *gormStore) ListTasks(ctx context.Context, applianceID string) ([]model.MaintenanceTask, error) {
	var tasks []model.MaintenanceTask
	if err := s.db.WithContext(ctx).
		Where("appliance_id = ?", applianceID).
		Order("scheduled_date DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list maintenance tasks of %s: %w", applianceID, err)
	}
	return tasks, nil
}

func (s *gormStore) ListTasksByStatus(ctx context.Context, st status.Maintenance) ([]model.MaintenanceTask, error) {
	var tasks []model.MaintenanceTask
	if err := s.db.WithContext(ctx).
		Where("status = ?", string(st)).
		Order("scheduled_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s tasks: %w", st, err)
	}
	return tasks, nil
}

func (s *gormStore) ListOpenTasks(ctx context.Context) ([]model.MaintenanceTask, error) {
	var tasks []model.MaintenanceTask
	if err := s.db.WithContext(ctx).
		Where("completed_date IS NULL").
		Order("scheduled_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list open tasks: %w", err)
	}
	return tasks, nil
}

func (s *gormStore) UpdateTask(ctx context.Context, id string, u TaskUpdate) (model.MaintenanceTask, error) {
	cols, err := u.columns()
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	return updateByID[model.MaintenanceTask](ctx, s.db, id, cols)
}

func (s *gormStore) DeleteTask(ctx context.Context, id string) (bool, error) {
	return deleteByID[model.MaintenanceTask](ctx, s.db, id)
}

// --- Linked documents ---

func (s *gormStore) CreateDocument(ctx context.Context, d *model.LinkedDocument) error {
	ensureID(&d.ID)
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create linked document: %w", err)
	}
	return nil
}

func (s *gormStore) GetDocument(ctx context.Context, id string) (model.LinkedDocument, error) {
	return getByID[model.LinkedDocument](ctx, s.db, id)
}

func (s *gormStore) ListDocuments(ctx context.Context, applianceID string) ([]model.LinkedDocument, error) {
	var docs []model.LinkedDocument
	if err := s.db.WithContext(ctx).
		Where("appliance_id = ?", applianceID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list linked documents of %s: %w", applianceID, err)
	}
	return docs, nil
}

func (s *gormStore) UpdateDocument(ctx context.Context, id string, u DocumentUpdate) (model.LinkedDocument, error) {
	return updateByID[model.LinkedDocument](ctx, s.db, id, u.columns())
}

func (s *gormStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	return deleteByID[model.LinkedDocument](ctx, s.db, id)
}

// --- Push subscriptions ---

func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription, applianceIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Appliances").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		appliances := []*model.Appliance{}
		if len(applianceIDs) > 0 {
			if err := tx.Where("id IN ?", applianceIDs).Find(&appliances).Error; err != nil {
				return fmt.Errorf("failed to load followed appliances: %w", err)
			}
		}

		if err := tx.Model(sub).Association("Appliances").Replace(appliances); err != nil {
			return fmt.Errorf("failed to replace followed appliances: %w", err)
		}
		sub.Appliances = appliances
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).
		Preload("Appliances").
		Where("endpoint = ?", endpoint).
		First(&sub).Error; err != nil {
		return sub, notFound(err)
	}
	return sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) (bool, error) {
	var existed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+subscriptionJoinTable+" WHERE push_subscription_endpoint = ?", endpoint).Error; err != nil {
			return fmt.Errorf("failed to unlink subscription %s: %w", endpoint, err)
		}
		res := tx.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete subscription %s: %w", endpoint, res.Error)
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (s *gormStore) ListSubscriptionsForAppliance(ctx context.Context, applianceID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN "+subscriptionJoinTable+" sa ON sa.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sa.appliance_id = ?", applianceID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for appliance %s: %w", applianceID, err)
	}
	return subs, nil
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"appliance-buddy-backend/internal/db"
	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

// Both implementations must honour the same contract.
var implementations = map[string]func(t *testing.T) Store{
	"gorm/sqlite": newSQLiteStore,
	"memory":      func(*testing.T) Store { return NewMemoryStore() },
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func seedAppliance(t *testing.T, s Store, name, brand string, createdAt time.Time) model.Appliance {
	t.Helper()
	a := model.Appliance{
		Name:                   name,
		Brand:                  brand,
		Model:                  "M-" + name,
		PurchaseDate:           day(2023, 1, 15),
		WarrantyDurationMonths: 24,
		CreatedAt:              createdAt,
		UpdatedAt:              createdAt,
	}
	require.NoError(t, s.CreateAppliance(context.Background(), &a))
	return a
}

func TestStoreContract(t *testing.T) {
	for implName, newStore := range implementations {
		t.Run(implName, func(t *testing.T) {
			t.Run("appliance lifecycle", func(t *testing.T) { testApplianceLifecycle(t, newStore(t)) })
			t.Run("list order", func(t *testing.T) { testListOrder(t, newStore(t)) })
			t.Run("cascade delete", func(t *testing.T) { testCascadeDelete(t, newStore(t)) })
			t.Run("task queries", func(t *testing.T) { testTaskQueries(t, newStore(t)) })
			t.Run("task update clears fields", func(t *testing.T) { testTaskUpdate(t, newStore(t)) })
			t.Run("contacts and documents", func(t *testing.T) { testContactsAndDocuments(t, newStore(t)) })
			t.Run("subscriptions", func(t *testing.T) { testSubscriptions(t, newStore(t)) })
		})
	}
}

func testApplianceLifecycle(t *testing.T, s Store) {
	ctx := context.Background()
	created := seedAppliance(t, s, "Dryer", "Whirlpool", day(2024, 1, 1))
	assert.Len(t, created.ID, 36)

	got, err := s.GetAppliance(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dryer", got.Name)
	assert.Nil(t, got.SerialNumber)

	bumped := day(2024, 2, 1)
	updated, err := s.UpdateAppliance(ctx, created.ID, ApplianceUpdate{
		Name:         ptr("Stacked Dryer"),
		SerialNumber: SetTo("WHIR-DR-001"),
		UpdatedAt:    bumped,
	})
	require.NoError(t, err)
	assert.Equal(t, "Stacked Dryer", updated.Name)
	assert.Equal(t, "Whirlpool", updated.Brand, "untouched field must survive")
	require.NotNil(t, updated.SerialNumber)
	assert.Equal(t, "WHIR-DR-001", *updated.SerialNumber)
	assert.True(t, bumped.Equal(updated.UpdatedAt))

	cleared, err := s.UpdateAppliance(ctx, created.ID, ApplianceUpdate{SerialNumber: Clear[string](), UpdatedAt: bumped})
	require.NoError(t, err)
	assert.Nil(t, cleared.SerialNumber)

	_, err = s.UpdateAppliance(ctx, "missing", ApplianceUpdate{Name: ptr("x"), UpdatedAt: bumped})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetAppliance(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testListOrder(t *testing.T, s Store) {
	oldest := seedAppliance(t, s, "Fridge", "LG", day(2024, 1, 1))
	newest := seedAppliance(t, s, "TV", "Samsung", day(2024, 3, 1))
	middle := seedAppliance(t, s, "Dryer", "Whirlpool", day(2024, 2, 1))

	list, err := s.ListAppliances(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func testCascadeDelete(t *testing.T, s Store) {
	ctx := context.Background()
	a := seedAppliance(t, s, "Dryer", "Whirlpool", day(2024, 1, 1))
	other := seedAppliance(t, s, "TV", "Samsung", day(2024, 1, 2))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.CreateContact(ctx, &model.SupportContact{ApplianceID: a.ID, Name: "Support"}))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateTask(ctx, &model.MaintenanceTask{
			ApplianceID: a.ID, TaskName: "Clean lint trap", ScheduledDate: day(2024, 5, i+1),
			Frequency: model.FrequencyMonthly, Status: status.MaintenanceUpcoming,
		}))
	}
	require.NoError(t, s.CreateDocument(ctx, &model.LinkedDocument{ApplianceID: a.ID, Title: "Manual", URL: "https://example.com/manual"}))
	require.NoError(t, s.CreateDocument(ctx, &model.LinkedDocument{ApplianceID: other.ID, Title: "Manual", URL: "https://example.com/tv"}))
	require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "k", Auth: "a"}, []string{a.ID, other.ID}))

	existed, err := s.DeleteAppliance(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	contacts, err := s.ListContacts(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	tasks, err := s.ListTasks(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	docs, err := s.ListDocuments(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	subs, err := s.ListSubscriptionsForAppliance(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// The other appliance keeps its children and its follower.
	docs, err = s.ListDocuments(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	subs, err = s.ListSubscriptionsForAppliance(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	existed, err = s.DeleteAppliance(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func testTaskQueries(t *testing.T, s Store) {
	ctx := context.Background()
	a := seedAppliance(t, s, "Dryer", "Whirlpool", day(2024, 1, 1))
	completed := day(2024, 4, 2)

	mk := func(name string, scheduled time.Time, st status.Maintenance, done *time.Time) model.MaintenanceTask {
		task := model.MaintenanceTask{
			ApplianceID: a.ID, TaskName: name, ScheduledDate: scheduled,
			Frequency: model.FrequencyOneTime, Status: st, CompletedDate: done,
		}
		require.NoError(t, s.CreateTask(ctx, &task))
		return task
	}
	late := mk("late", day(2024, 6, 1), status.MaintenanceUpcoming, nil)
	early := mk("early", day(2024, 4, 1), status.MaintenanceUpcoming, nil)
	done := mk("done", day(2024, 3, 1), status.MaintenanceCompleted, &completed)
	overdue := mk("overdue", day(2024, 2, 1), status.MaintenanceOverdue, nil)

	byAppliance, err := s.ListTasks(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{late.ID, early.ID, done.ID, overdue.ID}, taskIDs(byAppliance))

	upcoming, err := s.ListTasksByStatus(ctx, status.MaintenanceUpcoming)
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID, late.ID}, taskIDs(upcoming))

	open, err := s.ListOpenTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{overdue.ID, early.ID, late.ID}, taskIDs(open))

	got, err := s.GetTask(ctx, done.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedDate)
	assert.True(t, completed.Equal(*got.CompletedDate))

	existed, err := s.DeleteTask(ctx, done.ID)
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = s.DeleteTask(ctx, done.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func testTaskUpdate(t *testing.T, s Store) {
	ctx := context.Background()
	a := seedAppliance(t, s, "Fridge", "LG", day(2024, 1, 1))
	task := model.MaintenanceTask{
		ApplianceID: a.ID, TaskName: "Replace filter", ScheduledDate: day(2024, 6, 1),
		Frequency: model.FrequencyYearly, Status: status.MaintenanceUpcoming,
		ServiceProvider: &model.ServiceProvider{Name: "LG Care", Phone: ptr("1-800-555-0000")},
		Notes:           ptr("use genuine filter"),
	}
	require.NoError(t, s.CreateTask(ctx, &task))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ServiceProvider)
	assert.Equal(t, "LG Care", got.ServiceProvider.Name)

	completedAt := day(2024, 6, 2)
	updated, err := s.UpdateTask(ctx, task.ID, TaskUpdate{
		ServiceProvider: SetTo(model.ServiceProvider{Name: "Appliance Pros"}),
		Status:          ptr(status.MaintenanceCompleted),
		CompletedDate:   SetTo(completedAt),
		UpdatedAt:       completedAt,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ServiceProvider)
	assert.Equal(t, "Appliance Pros", updated.ServiceProvider.Name)
	assert.Nil(t, updated.ServiceProvider.Phone)
	assert.Equal(t, status.MaintenanceCompleted, updated.Status)
	require.NotNil(t, updated.CompletedDate)
	assert.True(t, completedAt.Equal(*updated.CompletedDate))

	reopened, err := s.UpdateTask(ctx, task.ID, TaskUpdate{
		ServiceProvider: Clear[model.ServiceProvider](),
		Notes:           Clear[string](),
		Status:          ptr(status.MaintenanceUpcoming),
		CompletedDate:   Clear[time.Time](),
		UpdatedAt:       completedAt,
	})
	require.NoError(t, err)
	assert.Nil(t, reopened.ServiceProvider)
	assert.Nil(t, reopened.Notes)
	assert.Nil(t, reopened.CompletedDate)
	assert.Equal(t, "Replace filter", reopened.TaskName)

	_, err = s.UpdateTask(ctx, "missing", TaskUpdate{UpdatedAt: completedAt})
	assert.ErrorIs(t, err, ErrNotFound)
}

func testContactsAndDocuments(t *testing.T, s Store) {
	ctx := context.Background()
	a := seedAppliance(t, s, "TV", "Samsung", day(2024, 1, 1))

	first := model.SupportContact{ApplianceID: a.ID, Name: "Samsung Support", Email: ptr("support@samsung.com"), CreatedAt: day(2024, 1, 1)}
	second := model.SupportContact{ApplianceID: a.ID, Name: "Best Buy Geek Squad", CreatedAt: day(2024, 1, 2)}
	require.NoError(t, s.CreateContact(ctx, &first))
	require.NoError(t, s.CreateContact(ctx, &second))

	contacts, err := s.ListContacts(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, first.ID, contacts[0].ID)

	updated, err := s.UpdateContact(ctx, first.ID, ContactUpdate{Phone: SetTo("1-800-726-7864"), Email: Clear[string]()})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Nil(t, updated.Email)
	assert.Equal(t, "Samsung Support", updated.Name)

	unchanged, err := s.UpdateContact(ctx, second.ID, ContactUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Best Buy Geek Squad", unchanged.Name)

	existed, err := s.DeleteContact(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, existed)
	_, err = s.GetContact(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	doc := model.LinkedDocument{ApplianceID: a.ID, Title: "Manual", URL: "https://samsung.com/manual"}
	require.NoError(t, s.CreateDocument(ctx, &doc))
	renamed, err := s.UpdateDocument(ctx, doc.ID, DocumentUpdate{Title: ptr("User Manual")})
	require.NoError(t, err)
	assert.Equal(t, "User Manual", renamed.Title)
	assert.Equal(t, "https://samsung.com/manual", renamed.URL)

	_, err = s.UpdateDocument(ctx, "missing", DocumentUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	existed, err = s.DeleteDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, existed)
}

func testSubscriptions(t *testing.T, s Store) {
	ctx := context.Background()
	a := seedAppliance(t, s, "Dryer", "Whirlpool", day(2024, 1, 1))
	b := seedAppliance(t, s, "TV", "Samsung", day(2024, 1, 2))
	endpoint := "https://push.example/abc"

	sub := &model.PushSubscription{Endpoint: endpoint, P256DH: "key-1", Auth: "auth-1"}
	require.NoError(t, s.SaveSubscription(ctx, sub, []string{a.ID, "unknown"}))
	assert.Len(t, sub.Appliances, 1)

	got, err := s.GetSubscription(ctx, endpoint)
	require.NoError(t, err)
	assert.Equal(t, "key-1", got.P256DH)
	require.Len(t, got.Appliances, 1)
	assert.Equal(t, a.ID, got.Appliances[0].ID)

	// Re-saving replaces keys and followed appliances.
	require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{Endpoint: endpoint, P256DH: "key-2", Auth: "auth-2"}, []string{b.ID}))
	got, err = s.GetSubscription(ctx, endpoint)
	require.NoError(t, err)
	assert.Equal(t, "key-2", got.P256DH)
	require.Len(t, got.Appliances, 1)
	assert.Equal(t, b.ID, got.Appliances[0].ID)

	followers, err := s.ListSubscriptionsForAppliance(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
	followers, err = s.ListSubscriptionsForAppliance(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, endpoint, followers[0].Endpoint)

	existed, err := s.DeleteSubscription(ctx, endpoint)
	require.NoError(t, err)
	assert.True(t, existed)
	_, err = s.GetSubscription(ctx, endpoint)
	assert.ErrorIs(t, err, ErrNotFound)
	existed, err = s.DeleteSubscription(ctx, endpoint)
	require.NoError(t, err)
	assert.False(t, existed)
}

func taskIDs(tasks []model.MaintenanceTask) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
	"appliance-buddy-backend/internal/store"
)

type recordingNotifier struct {
	mu    sync.Mutex
	tasks []model.MaintenanceTask
}

func (r *recordingNotifier) NotifyOverdue(task model.MaintenanceTask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

func newMaintenanceFixture(t *testing.T, now time.Time) (*MaintenanceService, store.Store, model.Appliance) {
	t.Helper()
	return newMaintenanceFixtureOn(t, store.NewMemoryStore(), now)
}

func newMaintenanceFixtureOn(t *testing.T, s store.Store, now time.Time) (*MaintenanceService, store.Store, model.Appliance) {
	t.Helper()
	a := seeded(t, s, input("Dryer", "Whirlpool", "WED", date(2023, 1, 15), 24))[0]
	return NewMaintenanceService(s, fixedClock(now), nil), s, a
}

func TestMaintenanceService_Create(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 6, 1)
	svc, _, a := newMaintenanceFixture(t, now)

	future, err := svc.Create(ctx, a.ID, TaskInput{TaskName: " Clean lint trap ", ScheduledDate: date(2024, 7, 1), Frequency: model.FrequencyMonthly})
	require.NoError(t, err)
	assert.Equal(t, "Clean lint trap", future.TaskName)
	assert.Equal(t, status.MaintenanceUpcoming, future.Status)
	assert.Nil(t, future.CompletedDate)
	assert.NotEmpty(t, future.ID)

	past, err := svc.Create(ctx, a.ID, TaskInput{
		TaskName: "Vent inspection", ScheduledDate: date(2024, 5, 1), Frequency: model.FrequencyYearly,
		ServiceProvider: &model.ServiceProvider{Name: "Vent Pros", Phone: ptr("")},
	})
	require.NoError(t, err)
	assert.Equal(t, status.MaintenanceOverdue, past.Status)
	require.NotNil(t, past.ServiceProvider)
	assert.Nil(t, past.ServiceProvider.Phone)

	_, err = svc.Create(ctx, "missing", TaskInput{TaskName: "x", ScheduledDate: now, Frequency: model.FrequencyOneTime})
	assert.ErrorIs(t, err, store.ErrNotFound)

	invalidInputs := map[string]TaskInput{
		"taskName":             {ScheduledDate: now, Frequency: model.FrequencyMonthly},
		"scheduledDate":        {TaskName: "x", Frequency: model.FrequencyMonthly},
		"frequency":            {TaskName: "x", ScheduledDate: now, Frequency: "Weekly"},
		"serviceProvider.name": {TaskName: "x", ScheduledDate: now, Frequency: model.FrequencyCustom, ServiceProvider: &model.ServiceProvider{}},
	}
	for field, in := range invalidInputs {
		t.Run("Invalid "+field, func(t *testing.T) {
			_, err := svc.Create(ctx, a.ID, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestMaintenanceService_UpdateRules(t *testing.T) {
	now := date(2024, 6, 1)
	earlier := date(2024, 5, 20)
	completed := status.MaintenanceCompleted
	upcoming := status.MaintenanceUpcoming
	overdue := status.MaintenanceOverdue

	testCases := []struct {
		name          string
		scheduled     time.Time
		completedAt   *time.Time
		update        store.TaskUpdate
		wantStatus    status.Maintenance
		wantCompleted *time.Time
	}{
		{
			name:          "Completed stamps now when no completion date is known",
			scheduled:     date(2024, 7, 1),
			update:        store.TaskUpdate{Status: &completed},
			wantStatus:    status.MaintenanceCompleted,
			wantCompleted: &now,
		},
		{
			name:          "Completed keeps an existing completion date",
			scheduled:     date(2024, 5, 1),
			completedAt:   &earlier,
			update:        store.TaskUpdate{Status: &completed},
			wantStatus:    status.MaintenanceCompleted,
			wantCompleted: &earlier,
		},
		{
			name:          "Completed with an explicit date uses that date",
			scheduled:     date(2024, 7, 1),
			update:        store.TaskUpdate{Status: &completed, CompletedDate: store.SetTo(earlier)},
			wantStatus:    status.MaintenanceCompleted,
			wantCompleted: &earlier,
		},
		{
			name:        "Reopening as Upcoming clears the completion date",
			scheduled:   date(2024, 7, 1),
			completedAt: &earlier,
			update:      store.TaskUpdate{Status: &upcoming},
			wantStatus:  status.MaintenanceUpcoming,
		},
		{
			name:        "Reopening a past task reads as Overdue",
			scheduled:   date(2024, 5, 1),
			completedAt: &earlier,
			update:      store.TaskUpdate{Status: &overdue},
			wantStatus:  status.MaintenanceOverdue,
		},
		{
			name:       "Moving the schedule into the past recomputes",
			scheduled:  date(2024, 7, 1),
			update:     store.TaskUpdate{ScheduledDate: ptr(date(2024, 5, 1))},
			wantStatus: status.MaintenanceOverdue,
		},
		{
			name:       "Moving the schedule into the future recomputes",
			scheduled:  date(2024, 5, 1),
			update:     store.TaskUpdate{ScheduledDate: ptr(date(2024, 8, 1))},
			wantStatus: status.MaintenanceUpcoming,
		},
		{
			name:          "Setting a completion date completes",
			scheduled:     date(2024, 7, 1),
			update:        store.TaskUpdate{CompletedDate: store.SetTo(earlier)},
			wantStatus:    status.MaintenanceCompleted,
			wantCompleted: &earlier,
		},
		{
			name:        "Clearing the completion date reopens",
			scheduled:   date(2024, 7, 1),
			completedAt: &earlier,
			update:      store.TaskUpdate{CompletedDate: store.Clear[time.Time]()},
			wantStatus:  status.MaintenanceUpcoming,
		},
		{
			name:          "Unrelated edits leave status alone",
			scheduled:     date(2024, 7, 1),
			completedAt:   &earlier,
			update:        store.TaskUpdate{TaskName: ptr("Renamed")},
			wantStatus:    status.MaintenanceCompleted,
			wantCompleted: &earlier,
		},
	}

	for storeName, newStore := range storeFactories {
		for _, tc := range testCases {
			t.Run(storeName+"/"+tc.name, func(t *testing.T) {
				ctx := context.Background()
				svc, s, a := newMaintenanceFixtureOn(t, newStore(t), now)
				task := model.MaintenanceTask{
					ApplianceID: a.ID, TaskName: "Task", ScheduledDate: tc.scheduled,
					Frequency: model.FrequencyMonthly, CompletedDate: tc.completedAt,
					Status: status.MaintenanceStatus(tc.scheduled, tc.completedAt, now),
				}
				require.NoError(t, s.CreateTask(ctx, &task))

				updated, err := svc.Update(ctx, task.ID, tc.update)
				require.NoError(t, err)
				assert.Equal(t, tc.wantStatus, updated.Status)
				assertSameTime(t, tc.wantCompleted, updated.CompletedDate)
				assert.True(t, now.Equal(updated.UpdatedAt), "updatedAt %s", updated.UpdatedAt)

				stored, err := s.GetTask(ctx, task.ID)
				require.NoError(t, err)
				assert.Equal(t, tc.wantStatus, stored.Status, "stored status follows the rules")
				assertSameTime(t, tc.wantCompleted, stored.CompletedDate)
			})
		}
	}
}

func TestMaintenanceService_ReopenCompletedTask(t *testing.T) {
	now := date(2024, 6, 1)
	upcoming := status.MaintenanceUpcoming

	reopeners := map[string]store.TaskUpdate{
		"explicit Upcoming":       {Status: &upcoming},
		"cleared completion date": {CompletedDate: store.Clear[time.Time]()},
	}
	for storeName, newStore := range storeFactories {
		for how, update := range reopeners {
			t.Run(storeName+"/"+how, func(t *testing.T) {
				ctx := context.Background()
				svc, _, a := newMaintenanceFixtureOn(t, newStore(t), now)
				task, err := svc.Create(ctx, a.ID, TaskInput{TaskName: "Descale", ScheduledDate: date(2024, 7, 1), Frequency: model.FrequencyMonthly})
				require.NoError(t, err)

				done, err := svc.Complete(ctx, task.ID, nil)
				require.NoError(t, err)
				assert.Equal(t, status.MaintenanceCompleted, done.Status)

				reopened, err := svc.Update(ctx, task.ID, update)
				require.NoError(t, err)
				assert.Equal(t, status.MaintenanceUpcoming, reopened.Status)
				assert.Nil(t, reopened.CompletedDate)

				got, err := svc.Get(ctx, task.ID)
				require.NoError(t, err)
				assert.Equal(t, status.MaintenanceUpcoming, got.Status)
				assert.Nil(t, got.CompletedDate)
			})
		}
	}
}

func TestMaintenanceService_UpdateRejects(t *testing.T) {
	ctx := context.Background()
	svc, s, a := newMaintenanceFixture(t, date(2024, 6, 1))
	task := model.MaintenanceTask{ApplianceID: a.ID, TaskName: "Task", ScheduledDate: date(2024, 7, 1), Frequency: model.FrequencyMonthly, Status: status.MaintenanceUpcoming}
	require.NoError(t, s.CreateTask(ctx, &task))

	upcoming := status.MaintenanceUpcoming
	bogus := status.Maintenance("Pending")
	weekly := model.Frequency("Weekly")

	testCases := []struct {
		name   string
		update store.TaskUpdate
		field  string
	}{
		{"Open status with a completion date", store.TaskUpdate{Status: &upcoming, CompletedDate: store.SetTo(date(2024, 5, 1))}, "completedDate"},
		{"Unknown status", store.TaskUpdate{Status: &bogus}, "status"},
		{"Unknown frequency", store.TaskUpdate{Frequency: &weekly}, "frequency"},
		{"Blank name", store.TaskUpdate{TaskName: ptr("  ")}, "taskName"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(ctx, task.ID, tc.update)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	_, err := svc.Update(ctx, "missing", store.TaskUpdate{TaskName: ptr("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMaintenanceService_CompleteIsIdempotent(t *testing.T) {
	for storeName, newStore := range storeFactories {
		t.Run(storeName, func(t *testing.T) {
			ctx := context.Background()
			now := date(2024, 6, 1)
			svc, s, a := newMaintenanceFixtureOn(t, newStore(t), now)
			task := model.MaintenanceTask{ApplianceID: a.ID, TaskName: "Task", ScheduledDate: date(2024, 5, 1), Frequency: model.FrequencyMonthly, Status: status.MaintenanceOverdue}
			require.NoError(t, s.CreateTask(ctx, &task))

			first, err := svc.Complete(ctx, task.ID, nil)
			require.NoError(t, err)
			assert.Equal(t, status.MaintenanceCompleted, first.Status)
			assertSameTime(t, &now, first.CompletedDate)

			at := date(2024, 5, 30)
			second, err := svc.Complete(ctx, task.ID, &at)
			require.NoError(t, err)
			assert.Equal(t, status.MaintenanceCompleted, second.Status)
			assertSameTime(t, &at, second.CompletedDate)

			_, err = svc.Complete(ctx, "missing", nil)
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestMaintenanceService_UpcomingAndOverdue(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 6, 1)
	svc, s, a := newMaintenanceFixture(t, now)
	done := date(2024, 4, 2)
	for _, task := range []model.MaintenanceTask{
		{TaskName: "late-b", ScheduledDate: date(2024, 5, 10), Status: status.MaintenanceUpcoming}, // stale cache
		{TaskName: "late-a", ScheduledDate: date(2024, 5, 1), Status: status.MaintenanceOverdue},
		{TaskName: "soon-b", ScheduledDate: date(2024, 8, 1), Status: status.MaintenanceUpcoming},
		{TaskName: "soon-a", ScheduledDate: date(2024, 6, 1), Status: status.MaintenanceUpcoming},
		{TaskName: "done", ScheduledDate: date(2024, 4, 1), Status: status.MaintenanceCompleted, CompletedDate: &done},
	} {
		task.ApplianceID = a.ID
		task.Frequency = model.FrequencyMonthly
		require.NoError(t, s.CreateTask(ctx, &task))
	}

	names := func(tasks []model.MaintenanceTask) []string {
		res := []string{}
		for _, t := range tasks {
			res = append(res, t.TaskName)
		}
		return res
	}

	upcoming, err := svc.Upcoming(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"soon-a", "soon-b"}, names(upcoming))

	overdue, err := svc.Overdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"late-a", "late-b"}, names(overdue))
	for _, task := range overdue {
		assert.Equal(t, status.MaintenanceOverdue, task.Status)
	}

	all, err := svc.ListForAppliance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"soon-b", "soon-a", "late-b", "late-a", "done"}, names(all))

	_, err = svc.ListForAppliance(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMaintenanceService_RefreshOverdueStatuses(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 6, 1)
	s := store.NewMemoryStore()
	a := seeded(t, s, input("Dryer", "Whirlpool", "WED", date(2023, 1, 15), 24))[0]
	notifier := &recordingNotifier{}
	svc := NewMaintenanceService(s, fixedClock(now), notifier)

	done := date(2024, 4, 2)
	past := model.MaintenanceTask{ApplianceID: a.ID, TaskName: "past", ScheduledDate: date(2024, 5, 1), Frequency: model.FrequencyMonthly, Status: status.MaintenanceUpcoming}
	future := model.MaintenanceTask{ApplianceID: a.ID, TaskName: "future", ScheduledDate: date(2024, 7, 1), Frequency: model.FrequencyMonthly, Status: status.MaintenanceUpcoming}
	boundary := model.MaintenanceTask{ApplianceID: a.ID, TaskName: "boundary", ScheduledDate: now, Frequency: model.FrequencyMonthly, Status: status.MaintenanceUpcoming}
	completed := model.MaintenanceTask{ApplianceID: a.ID, TaskName: "completed", ScheduledDate: date(2024, 4, 1), Frequency: model.FrequencyMonthly, Status: status.MaintenanceCompleted, CompletedDate: &done}
	for _, task := range []*model.MaintenanceTask{&past, &future, &boundary, &completed} {
		require.NoError(t, s.CreateTask(ctx, task))
	}

	transitioned, err := svc.RefreshOverdueStatuses(ctx, now)
	require.NoError(t, err)
	require.Len(t, transitioned, 1)
	assert.Equal(t, past.ID, transitioned[0].ID)
	assert.Equal(t, status.MaintenanceOverdue, transitioned[0].Status)

	expected := map[string]status.Maintenance{
		past.ID:      status.MaintenanceOverdue,
		future.ID:    status.MaintenanceUpcoming,
		boundary.ID:  status.MaintenanceUpcoming,
		completed.ID: status.MaintenanceCompleted,
	}
	for id, want := range expected {
		got, err := s.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, got.TaskName)
	}

	require.Len(t, notifier.tasks, 1)
	assert.Equal(t, past.ID, notifier.tasks[0].ID)

	again, err := svc.RefreshOverdueStatuses(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again, "a second run finds nothing to do")
	assert.Len(t, notifier.tasks, 1)
}

func TestMaintenanceService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, a := newMaintenanceFixture(t, date(2024, 6, 1))
	task, err := svc.Create(ctx, a.ID, TaskInput{TaskName: "x", ScheduledDate: date(2024, 7, 1), Frequency: model.FrequencyOneTime})
	require.NoError(t, err)

	existed, err := svc.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = svc.Get(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	existed, err = svc.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMaintenanceService_ExplicitOverdueOnlyTouchesStoredColumn(t *testing.T) {
	ctx := context.Background()
	svc, s, a := newMaintenanceFixture(t, date(2024, 6, 1))
	task, err := svc.Create(ctx, a.ID, TaskInput{TaskName: "Inspect hoses", ScheduledDate: date(2024, 9, 1), Frequency: model.FrequencyYearly})
	require.NoError(t, err)

	overdue := status.MaintenanceOverdue
	updated, err := svc.Update(ctx, task.ID, store.TaskUpdate{Status: &overdue})
	require.NoError(t, err)
	assert.Equal(t, status.MaintenanceUpcoming, updated.Status, "reads derive from the dates")

	stored, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, status.MaintenanceOverdue, stored.Status)
}

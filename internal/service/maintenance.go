package service

import (
	"context"
	"log"
	"strings"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
	"appliance-buddy-backend/internal/store"
)

// Notifier is told about tasks that just became overdue.
type Notifier interface {
	NotifyOverdue(task model.MaintenanceTask)
}

// TaskInput carries the fields of a new maintenance task.
type TaskInput struct {
	TaskName        string
	ScheduledDate   time.Time
	Frequency       model.Frequency
	ServiceProvider *model.ServiceProvider
	Notes           *string
}

// MaintenanceService owns the maintenance task lifecycle.
//
// The stored status column is a cache: every read re-derives the status from
// scheduledDate, completedDate and the clock.
type MaintenanceService struct {
	store    store.Store
	now      func() time.Time
	notifier Notifier
}

// NewMaintenanceService creates the service. notifier may be nil.
func NewMaintenanceService(s store.Store, now func() time.Time, notifier Notifier) *MaintenanceService {
	if now == nil {
		now = time.Now
	}
	return &MaintenanceService{store: s, now: now, notifier: notifier}
}

func deriveStatuses(tasks []model.MaintenanceTask, now time.Time) []model.MaintenanceTask {
	out := make([]model.MaintenanceTask, len(tasks))
	for i, t := range tasks {
		t.Status = status.MaintenanceStatus(t.ScheduledDate, t.CompletedDate, now)
		out[i] = t
	}
	return out
}

func (s *MaintenanceService) derive(t model.MaintenanceTask) model.MaintenanceTask {
	t.Status = status.MaintenanceStatus(t.ScheduledDate, t.CompletedDate, s.now())
	return t
}

// ListForAppliance returns the appliance's tasks, latest scheduled first.
func (s *MaintenanceService) ListForAppliance(ctx context.Context, applianceID string) ([]model.MaintenanceTask, error) {
	if _, err := s.store.GetAppliance(ctx, applianceID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, applianceID)
	if err != nil {
		return nil, err
	}
	return deriveStatuses(tasks, s.now()), nil
}

// Get returns a single task.
func (s *MaintenanceService) Get(ctx context.Context, id string) (model.MaintenanceTask, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	return s.derive(t), nil
}

// Create schedules a task for an existing appliance.
func (s *MaintenanceService) Create(ctx context.Context, applianceID string, in TaskInput) (model.MaintenanceTask, error) {
	if err := requireText("taskName", in.TaskName); err != nil {
		return model.MaintenanceTask{}, err
	}
	if in.ScheduledDate.IsZero() {
		return model.MaintenanceTask{}, invalid("scheduledDate", "is required")
	}
	if !in.Frequency.Valid() {
		return model.MaintenanceTask{}, invalid("frequency", "must be one of One-time, Monthly, Yearly, Custom")
	}
	provider, err := normalizeProvider(in.ServiceProvider)
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	if _, err := s.store.GetAppliance(ctx, applianceID); err != nil {
		return model.MaintenanceTask{}, err
	}

	now := s.now().UTC()
	t := model.MaintenanceTask{
		ApplianceID:     applianceID,
		TaskName:        strings.TrimSpace(in.TaskName),
		ScheduledDate:   in.ScheduledDate.UTC(),
		Frequency:       in.Frequency,
		ServiceProvider: provider,
		Notes:           blankToNil(in.Notes),
		Status:          status.MaintenanceStatus(in.ScheduledDate, nil, now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateTask(ctx, &t); err != nil {
		return model.MaintenanceTask{}, err
	}
	return t, nil
}

// Update applies a partial change.
//
// An explicit status always wins: Completed stamps completedDate when none is
// known, Upcoming and Overdue clear it. Without an explicit status, a change of
// scheduledDate or completedDate recomputes the status. An explicit Upcoming or
// Overdue only lands in the stored column; the returned task, like every read,
// derives its status from the dates.
func (s *MaintenanceService) Update(ctx context.Context, id string, u store.TaskUpdate) (model.MaintenanceTask, error) {
	var err error
	if u.TaskName, err = trimRequired("taskName", u.TaskName); err != nil {
		return model.MaintenanceTask{}, err
	}
	if u.ScheduledDate != nil {
		if u.ScheduledDate.IsZero() {
			return model.MaintenanceTask{}, invalid("scheduledDate", "must be a valid date")
		}
		utc := u.ScheduledDate.UTC()
		u.ScheduledDate = &utc
	}
	if u.Frequency != nil && !u.Frequency.Valid() {
		return model.MaintenanceTask{}, invalid("frequency", "must be one of One-time, Monthly, Yearly, Custom")
	}
	if u.Status != nil {
		if _, ok := status.ParseMaintenance(string(*u.Status)); !ok {
			return model.MaintenanceTask{}, invalid("status", "must be one of Upcoming, Completed, Overdue")
		}
	}
	if u.ServiceProvider.Set {
		provider, err := normalizeProvider(u.ServiceProvider.Value)
		if err != nil {
			return model.MaintenanceTask{}, err
		}
		u.ServiceProvider = store.Nullable[model.ServiceProvider]{Set: true, Value: provider}
	}
	u.Notes = normalizeText(u.Notes)

	current, err := s.store.GetTask(ctx, id)
	if err != nil {
		return model.MaintenanceTask{}, err
	}

	now := s.now().UTC()
	completed := current.CompletedDate
	if u.CompletedDate.Set {
		completed = u.CompletedDate.Value
	}

	switch {
	case u.Status != nil && *u.Status == status.MaintenanceCompleted:
		if completed == nil {
			u.CompletedDate = store.SetTo(now)
		}
	case u.Status != nil:
		if u.CompletedDate.Set && u.CompletedDate.Value != nil {
			return model.MaintenanceTask{}, invalid("completedDate", "cannot be set on a task marked %s", *u.Status)
		}
		u.CompletedDate = store.Clear[time.Time]()
	case u.ScheduledDate != nil || u.CompletedDate.Set:
		scheduled := current.ScheduledDate
		if u.ScheduledDate != nil {
			scheduled = *u.ScheduledDate
		}
		recomputed := status.MaintenanceStatus(scheduled, completed, now)
		u.Status = &recomputed
	}
	u.UpdatedAt = now

	updated, err := s.store.UpdateTask(ctx, id, u)
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	return s.derive(updated), nil
}

// Complete marks the task done at completedDate, or now when nil.
// Completing again overwrites the completion date.
func (s *MaintenanceService) Complete(ctx context.Context, id string, completedDate *time.Time) (model.MaintenanceTask, error) {
	now := s.now().UTC()
	at := now
	if completedDate != nil {
		at = completedDate.UTC()
	}
	done := status.MaintenanceCompleted
	updated, err := s.store.UpdateTask(ctx, id, store.TaskUpdate{
		Status:        &done,
		CompletedDate: store.SetTo(at),
		UpdatedAt:     now,
	})
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	return updated, nil
}

// Delete removes a task and reports whether it existed.
func (s *MaintenanceService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteTask(ctx, id)
}

// Upcoming lists open tasks scheduled from now on, earliest first.
func (s *MaintenanceService) Upcoming(ctx context.Context) ([]model.MaintenanceTask, error) {
	return s.openWith(ctx, status.MaintenanceUpcoming)
}

// Overdue lists open tasks whose scheduled date has passed, earliest first.
func (s *MaintenanceService) Overdue(ctx context.Context) ([]model.MaintenanceTask, error) {
	return s.openWith(ctx, status.MaintenanceOverdue)
}

func (s *MaintenanceService) openWith(ctx context.Context, want status.Maintenance) ([]model.MaintenanceTask, error) {
	open, err := s.store.ListOpenTasks(ctx)
	if err != nil {
		return nil, err
	}
	res := []model.MaintenanceTask{}
	for _, t := range deriveStatuses(open, s.now()) {
		if t.Status == want {
			res = append(res, t)
		}
	}
	return res, nil
}

// RefreshOverdueStatuses moves stored Upcoming tasks whose scheduled date is
// before now, and that have no completion date, to Overdue. Completed and
// Overdue rows are left alone. It returns the transitioned tasks.
func (s *MaintenanceService) RefreshOverdueStatuses(ctx context.Context, now time.Time) ([]model.MaintenanceTask, error) {
	upcoming, err := s.store.ListTasksByStatus(ctx, status.MaintenanceUpcoming)
	if err != nil {
		return nil, err
	}

	overdue := status.MaintenanceOverdue
	transitioned := []model.MaintenanceTask{}
	for _, t := range upcoming {
		if t.CompletedDate != nil || !t.ScheduledDate.Before(now) {
			continue
		}
		updated, err := s.store.UpdateTask(ctx, t.ID, store.TaskUpdate{Status: &overdue, UpdatedAt: now.UTC()})
		if err != nil {
			return transitioned, err
		}
		transitioned = append(transitioned, updated)
		if s.notifier != nil {
			s.notifier.NotifyOverdue(updated)
		}
	}

	if len(transitioned) > 0 {
		log.Printf("Marked %d maintenance tasks as overdue", len(transitioned))
	}
	return transitioned, nil
}

func normalizeProvider(p *model.ServiceProvider) (*model.ServiceProvider, error) {
	if p == nil {
		return nil, nil
	}
	if err := requireText("serviceProvider.name", p.Name); err != nil {
		return nil, err
	}
	return &model.ServiceProvider{
		Name:  strings.TrimSpace(p.Name),
		Phone: blankToNil(p.Phone),
		Email: blankToNil(p.Email),
		Notes: blankToNil(p.Notes),
	}, nil
}

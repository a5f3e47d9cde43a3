package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/status"
)

// MemoryStore keeps every record in-process. It backs unit tests and
// the `serve --memory` development mode.
type MemoryStore struct {
	mu         sync.RWMutex
	appliances map[string]model.Appliance
	contacts   map[string]model.SupportContact
	tasks      map[string]model.MaintenanceTask
	documents  map[string]model.LinkedDocument
	subs       map[string]model.PushSubscription
	follows    map[string][]string // endpoint -> appliance ids
	orders     []string            // insertion order across all kinds
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appliances: make(map[string]model.Appliance),
		contacts:   make(map[string]model.SupportContact),
		tasks:      make(map[string]model.MaintenanceTask),
		documents:  make(map[string]model.LinkedDocument),
		subs:       make(map[string]model.PushSubscription),
		follows:    make(map[string][]string),
	}
}

var _ Store = (*MemoryStore)(nil)

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// --- Appliances ---

func (m *MemoryStore) CreateAppliance(_ context.Context, a *model.Appliance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&a.ID)
	stamp(&a.CreatedAt)
	stamp(&a.UpdatedAt)
	m.appliances[a.ID] = *a
	m.orders = append(m.orders, a.ID)
	return nil
}

func (m *MemoryStore) GetAppliance(_ context.Context, id string) (model.Appliance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.appliances[id]
	if !ok {
		return model.Appliance{}, ErrNotFound
	}
	return a, nil
}

// ListAppliances returns appliances newest first; ties keep the later insert first.
func (m *MemoryStore) ListAppliances(_ context.Context) ([]model.Appliance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]model.Appliance, 0, len(m.appliances))
	for i := len(m.orders) - 1; i >= 0; i-- {
		if a, ok := m.appliances[m.orders[i]]; ok {
			res = append(res, a)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) UpdateAppliance(_ context.Context, id string, u ApplianceUpdate) (model.Appliance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appliances[id]
	if !ok {
		return model.Appliance{}, ErrNotFound
	}
	u.apply(&a)
	m.appliances[id] = a
	return a, nil
}

func (m *MemoryStore) DeleteAppliance(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appliances[id]; !ok {
		return false, nil
	}
	for cid, c := range m.contacts {
		if c.ApplianceID == id {
			delete(m.contacts, cid)
		}
	}
	for tid, t := range m.tasks {
		if t.ApplianceID == id {
			delete(m.tasks, tid)
		}
	}
	for did, d := range m.documents {
		if d.ApplianceID == id {
			delete(m.documents, did)
		}
	}
	for endpoint, ids := range m.follows {
		m.follows[endpoint] = without(ids, id)
	}
	delete(m.appliances, id)
	m.compactOrders()
	return true, nil
}

// --- Support contacts ---

func (m *MemoryStore) CreateContact(_ context.Context, c *model.SupportContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&c.ID)
	stamp(&c.CreatedAt)
	m.contacts[c.ID] = *c
	m.orders = append(m.orders, c.ID)
	return nil
}

func (m *MemoryStore) GetContact(_ context.Context, id string) (model.SupportContact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts[id]
	if !ok {
		return model.SupportContact{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) ListContacts(_ context.Context, applianceID string) ([]model.SupportContact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []model.SupportContact{}
	for _, id := range m.orders {
		if c, ok := m.contacts[id]; ok && c.ApplianceID == applianceID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (m *MemoryStore) UpdateContact(_ context.Context, id string, u ContactUpdate) (model.SupportContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return model.SupportContact{}, ErrNotFound
	}
	u.apply(&c)
	m.contacts[id] = c
	return c, nil
}

func (m *MemoryStore) DeleteContact(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return false, nil
	}
	delete(m.contacts, id)
	m.compactOrders()
	return true, nil
}

// --- Maintenance tasks ---

func (m *MemoryStore) CreateTask(_ context.Context, t *model.MaintenanceTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&t.ID)
	stamp(&t.CreatedAt)
	stamp(&t.UpdatedAt)
	m.tasks[t.ID] = *t
	m.orders = append(m.orders, t.ID)
	return nil
}

func (m *MemoryStore) GetTask(_ context.Context, id string) (model.MaintenanceTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}
	return t, nil
}

func (m *MemoryStore) ListTasks(_ context.Context, applianceID string) ([]model.MaintenanceTask, error) {
	res := m.filterTasks(func(t model.MaintenanceTask) bool { return t.ApplianceID == applianceID })
	sort.SliceStable(res, func(i, j int) bool { return res[i].ScheduledDate.After(res[j].ScheduledDate) })
	return res, nil
}

func (m *MemoryStore) ListTasksByStatus(_ context.Context, st status.Maintenance) ([]model.MaintenanceTask, error) {
	res := m.filterTasks(func(t model.MaintenanceTask) bool { return t.Status == st })
	sortBySchedule(res)
	return res, nil
}

func (m *MemoryStore) ListOpenTasks(_ context.Context) ([]model.MaintenanceTask, error) {
	res := m.filterTasks(func(t model.MaintenanceTask) bool { return t.CompletedDate == nil })
	sortBySchedule(res)
	return res, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, id string, u TaskUpdate) (model.MaintenanceTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}
	u.apply(&t)
	m.tasks[id] = t
	return t, nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return false, nil
	}
	delete(m.tasks, id)
	m.compactOrders()
	return true, nil
}

func (m *MemoryStore) filterTasks(keep func(model.MaintenanceTask) bool) []model.MaintenanceTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []model.MaintenanceTask{}
	for _, id := range m.orders {
		if t, ok := m.tasks[id]; ok && keep(t) {
			res = append(res, t)
		}
	}
	return res
}

func sortBySchedule(tasks []model.MaintenanceTask) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ScheduledDate.Before(tasks[j].ScheduledDate) })
}

// --- Linked documents ---

func (m *MemoryStore) CreateDocument(_ context.Context, d *model.LinkedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&d.ID)
	stamp(&d.CreatedAt)
	m.documents[d.ID] = *d
	m.orders = append(m.orders, d.ID)
	return nil
}

func (m *MemoryStore) GetDocument(_ context.Context, id string) (model.LinkedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok {
		return model.LinkedDocument{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryStore) ListDocuments(_ context.Context, applianceID string) ([]model.LinkedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []model.LinkedDocument{}
	for _, id := range m.orders {
		if d, ok := m.documents[id]; ok && d.ApplianceID == applianceID {
			res = append(res, d)
		}
	}
	return res, nil
}

func (m *MemoryStore) UpdateDocument(_ context.Context, id string, u DocumentUpdate) (model.LinkedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return model.LinkedDocument{}, ErrNotFound
	}
	u.apply(&d)
	m.documents[id] = d
	return d, nil
}

func (m *MemoryStore) DeleteDocument(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return false, nil
	}
	delete(m.documents, id)
	m.compactOrders()
	return true, nil
}

// --- Push subscriptions ---

func (m *MemoryStore) SaveSubscription(_ context.Context, sub *model.PushSubscription, applianceIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.subs[sub.Endpoint]; ok {
		sub.CreatedAt = existing.CreatedAt
	}
	stamp(&sub.CreatedAt)

	followed := []string{}
	sub.Appliances = []*model.Appliance{}
	for _, id := range applianceIDs {
		if a, ok := m.appliances[id]; ok {
			followed = append(followed, id)
			sub.Appliances = append(sub.Appliances, &a)
		}
	}
	stored := *sub
	stored.Appliances = nil
	m.subs[sub.Endpoint] = stored
	m.follows[sub.Endpoint] = followed
	return nil
}

func (m *MemoryStore) GetSubscription(_ context.Context, endpoint string) (model.PushSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[endpoint]
	if !ok {
		return model.PushSubscription{}, ErrNotFound
	}
	sub.Appliances = []*model.Appliance{}
	for _, id := range m.follows[endpoint] {
		if a, ok := m.appliances[id]; ok {
			sub.Appliances = append(sub.Appliances, &a)
		}
	}
	return sub, nil
}

func (m *MemoryStore) DeleteSubscription(_ context.Context, endpoint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[endpoint]; !ok {
		return false, nil
	}
	delete(m.subs, endpoint)
	delete(m.follows, endpoint)
	return true, nil
}

func (m *MemoryStore) ListSubscriptionsForAppliance(_ context.Context, applianceID string) ([]model.PushSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []model.PushSubscription{}
	for endpoint, ids := range m.follows {
		for _, id := range ids {
			if id == applianceID {
				res = append(res, m.subs[endpoint])
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Endpoint < res[j].Endpoint })
	return res, nil
}

// compactOrders drops ids whose record is gone. Caller holds the write lock.
func (m *MemoryStore) compactOrders() {
	filtered := m.orders[:0]
	for _, id := range m.orders {
		_, a := m.appliances[id]
		_, c := m.contacts[id]
		_, t := m.tasks[id]
		_, d := m.documents[id]
		if a || c || t || d {
			filtered = append(filtered, id)
		}
	}
	m.orders = filtered
}

func without(ids []string, drop string) []string {
	res := ids[:0]
	for _, id := range ids {
		if id != drop {
			res = append(res, id)
		}
	}
	return res
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"appliance-buddy-backend/internal/model"
	"appliance-buddy-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Payload is the JSON body delivered to the browser's service worker.
type Payload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ApplianceID string `json:"applianceId"`
	TaskID      string `json:"taskId"`
}

// WorkerPool fans overdue maintenance tasks out to the push subscribers of
// the task's appliance.
type WorkerPool struct {
	size    int
	jobs    chan model.MaintenanceTask
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	done     chan struct{} // closed once the Start context ends
	stopOnce sync.Once
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.MaintenanceTask, size*8),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	context.AfterFunc(ctx, func() { wp.stopOnce.Do(func() { close(wp.done) }) })
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)
	for {
		select {
		case task, ok := <-wp.jobs:
			if !ok {
				log.Printf("Worker %d drained", id)
				return
			}
			wp.sendNotificationsForTask(ctx, task)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a task. It blocks while the queue is full and drops the
// task once the pool is closed or its workers have been cancelled.
func (wp *WorkerPool) Dispatch(task model.MaintenanceTask) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		log.Printf("Worker pool closed; dropping notification for task %s", task.ID)
		return
	}
	select {
	case wp.jobs <- task:
	case <-wp.done:
		log.Printf("Worker pool stopped; dropping notification for task %s", task.ID)
	}
}

// NotifyOverdue satisfies service.Notifier.
func (wp *WorkerPool) NotifyOverdue(task model.MaintenanceTask) {
	wp.Dispatch(task)
}

// Close stops accepting jobs and waits for the queued ones to be sent.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() <-chan model.MaintenanceTask {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForTask(ctx context.Context, task model.MaintenanceTask) {
	subscriptions, err := wp.store.ListSubscriptionsForAppliance(ctx, task.ApplianceID)
	if err != nil {
		log.Printf("Error fetching subscriptions for appliance %s: %v", task.ApplianceID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := task.ApplianceID
	if appliance, err := wp.store.GetAppliance(ctx, task.ApplianceID); err != nil {
		log.Printf("Error fetching appliance %s: %v", task.ApplianceID, err)
	} else if appliance.Name != "" {
		label = appliance.Name
	}

	payload, err := json.Marshal(Payload{
		Title:       "Maintenance overdue",
		Body:        fmt.Sprintf("%s: %s was due %s", label, task.TaskName, task.ScheduledDate.Format("2006-01-02")),
		ApplianceID: task.ApplianceID,
		TaskID:      task.ID,
	})
	if err != nil {
		log.Printf("Error encoding notification for task %s: %v", task.ID, err)
		return
	}

	log.Printf("Sending %d notifications for task %s", len(subscriptions), task.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if _, err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

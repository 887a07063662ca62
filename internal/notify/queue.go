package notify

import (
	"sync"
	"time"

	"github.com/nhle/mail-assistant/internal/model"
)

// Queue buffers pending email notifications in strict FIFO arrival
// order and tracks the single notification currently shown to the
// user. At most one notification is current at any time; the head of
// the queue is promoted whenever the current slot becomes vacant.
//
// Priority from the summary is informational only and never reorders
// the queue.
type Queue struct {
	mu      sync.Mutex
	queue   []model.EmailNotification
	current *model.EmailNotification
}

// New creates an empty notification queue.
func New() *Queue {
	return &Queue{}
}

// Add builds a notification for the email and either shows it
// immediately (when nothing is current) or appends it to the queue
// tail. The queue does not deduplicate by email ID; the monitor is
// responsible for not enqueuing an email twice.
func (q *Queue) Add(email model.Email, summary *model.EmailSummary) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := model.EmailNotification{
		Email:     email,
		Summary:   summary,
		Timestamp: time.Now(),
	}

	if q.current == nil {
		q.current = &n
		return
	}

	q.queue = append(q.queue, n)
}

// Current returns a copy of the notification currently shown, or nil.
func (q *Queue) Current() *model.EmailNotification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		return nil
	}
	n := *q.current
	return &n
}

// DismissCurrent clears the shown notification and promotes the queue
// head, if any. Dismissing with nothing shown is a no-op.
func (q *Queue) DismissCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.promoteLocked()
}

// Remove purges all notifications for the given email ID from both the
// queue and the current slot. Used when an email is handled through
// another path, e.g. opened directly from the inbox list.
func (q *Queue) Remove(emailID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	filtered := q.queue[:0]
	for _, n := range q.queue {
		if n.Email.ID != emailID {
			filtered = append(filtered, n)
		}
	}
	q.queue = filtered

	if q.current != nil && q.current.Email.ID == emailID {
		q.promoteLocked()
	}
}

// ClearAll empties both the queue and the current slot.
func (q *Queue) ClearAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queue = nil
	q.current = nil
}

// Pending returns the number of queued notifications, excluding the
// current one.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.queue)
}

// promoteLocked pops the queue head into the current slot, or clears
// current when the queue is empty. Callers must hold the lock.
func (q *Queue) promoteLocked() {
	if len(q.queue) == 0 {
		q.current = nil
		return
	}

	next := q.queue[0]
	q.queue = q.queue[1:]
	q.current = &next
}

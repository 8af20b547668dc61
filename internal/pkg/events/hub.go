package events

import (
	"sync"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
)

// Hub fans workflow events out to per-employee subscribers. The workflow
// publishes exactly one event per state transition; the notification layer
// (SSE handler, future email sender) subscribes.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan leave.Event]struct{}
	all         map[chan leave.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan leave.Event]struct{}),
		all:         make(map[chan leave.Event]struct{}),
	}
}

// Subscribe registers a subscriber for one employee's events. The returned
// cleanup function must be called when the subscriber goes away.
func (h *Hub) Subscribe(employeeID string) (chan leave.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan leave.Event, 16)

	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan leave.Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[employeeID], ch)
		close(ch)
		if len(h.subscribers[employeeID]) == 0 {
			delete(h.subscribers, employeeID)
		}
	}

	return ch, cleanup
}

// SubscribeAll registers a firehose subscriber receiving every event,
// regardless of employee. Used by admin dashboards and audit sinks.
func (h *Hub) SubscribeAll() (chan leave.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan leave.Event, 64)
	h.all[ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.all, ch)
		close(ch)
	}

	return ch, cleanup
}

// Publish delivers an event to the employee's subscribers and the firehose.
// Delivery is non-blocking: a slow subscriber drops events rather than
// stalling the workflow.
func (h *Hub) Publish(event leave.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.EmployeeID] {
		select {
		case ch <- event:
		default:
		}
	}
	for ch := range h.all {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers for an employee.
func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}

package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies a workflow transition. The notification layer
// subscribes to these; the workflow emits exactly one event per transition.
type EventType string

const (
	EventRequestSubmitted EventType = "leave.request.submitted"
	EventRequestApproved  EventType = "leave.request.approved"
	EventRequestRejected  EventType = "leave.request.rejected"
	EventRequestCancelled EventType = "leave.request.cancelled"
	EventRequestStarted   EventType = "leave.request.started"
	EventRequestCompleted EventType = "leave.request.completed"
)

// Event is a discrete, inspectable record of one workflow transition.
// ID is unique per event so stream consumers can deduplicate.
type Event struct {
	ID            string           `json:"id"`
	Type          EventType        `json:"type"`
	RequestID     string           `json:"request_id"`
	RequestNumber string           `json:"request_number"`
	EmployeeID    string           `json:"employee_id"`
	LeaveTypeID   string           `json:"leave_type_id"`
	ActorID       string           `json:"actor_id,omitempty"`
	Days          *decimal.Decimal `json:"days,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

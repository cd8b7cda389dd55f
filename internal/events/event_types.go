package events

import (
	"time"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventStatusChanged     EventType = "ticket_status_changed"
	EventAssignmentChanged EventType = "ticket_assignment_changed"
	EventTicketEscalated   EventType = "ticket_escalated"
)

// ActorSystem identifies events raised by background jobs rather than a caller.
const ActorSystem = "system"

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by the lifecycle services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	RequesterID string                `json:"requester_id"`
	Code        string                `json:"code"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	RequesterID string              `json:"requester_id"`
	Title       string              `json:"title"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// AssignmentChangedPayload payload.
type AssignmentChangedPayload struct {
	RequesterID string `json:"requester_id"`
	AssigneeID  string `json:"assignee_id"`
	Title       string `json:"title"`
}

// EscalatedPayload payload.
type EscalatedPayload struct {
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

package domain

import "time"

// NotificationType labels why a notification was produced.
type NotificationType string

const (
	NotificationStatusChange NotificationType = "StatusChange"
	NotificationAssignment   NotificationType = "Assignment"
	NotificationEscalation   NotificationType = "Escalation"
)

// NotificationRecord is one delivered message for one recipient.
// Immutable after creation except for the read flag.
type NotificationRecord struct {
	ID          string
	RecipientID string
	TicketID    string
	Type        NotificationType
	Message     string
	Read        bool
	CreatedAt   time.Time
}

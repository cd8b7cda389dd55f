package dto

import (
	"time"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// NotificationResponse represents one notification record.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	TicketID  string                  `json:"ticket_id"`
	Type      domain.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewNotificationResponse maps a record.
func NewNotificationResponse(record *domain.NotificationRecord) NotificationResponse {
	return NotificationResponse{
		ID:        record.ID,
		TicketID:  record.TicketID,
		Type:      record.Type,
		Message:   record.Message,
		Read:      record.Read,
		CreatedAt: record.CreatedAt,
	}
}

// SettingsRequest is the admin settings patch; omitted fields are untouched.
type SettingsRequest struct {
	AutoAssignEnabled    *bool `json:"auto_assign_enabled"`
	SweepIntervalMinutes *int  `json:"sweep_interval_minutes"`
}

// SettingsResponse mirrors the settings record.
type SettingsResponse struct {
	AutoAssignEnabled    bool      `json:"auto_assign_enabled"`
	SweepIntervalMinutes int       `json:"sweep_interval_minutes"`
	UpdatedAt            time.Time `json:"updated_at"`
}

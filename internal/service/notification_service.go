package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
	"github.com/kaveyan18/resolve-desk/internal/repository"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// NotificationService fans lifecycle events out into per-recipient
// notification records. Delivery is best-effort: a failed recipient is
// logged and never blocks the others or the triggering operation.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		users:         users,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventAssignmentChanged, n.handleAssignmentChanged)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleEscalated)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	message := fmt.Sprintf("Your complaint %q status has been updated to %s.", payload.Title, payload.NewStatus)
	n.deliver(ctx, payload.RequesterID, event.TicketID, domain.NotificationStatusChange, message)
	return nil
}

func (n *NotificationService) handleAssignmentChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssignmentChangedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, payload.RequesterID, event.TicketID, domain.NotificationAssignment,
		fmt.Sprintf("A staff member has been assigned to your complaint %q.", payload.Title))
	n.deliver(ctx, payload.AssigneeID, event.TicketID, domain.NotificationAssignment,
		fmt.Sprintf("You have been assigned a new complaint: %q.", payload.Title))
	return nil
}

func (n *NotificationService) handleEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EscalatedPayload)
	if !ok {
		return nil
	}
	message := fmt.Sprintf("Complaint %s has breached its SLA deadline and was escalated to Urgent.", payload.Code)

	admins, err := n.users.ListAdmins(ctx)
	if err != nil {
		n.logger.Warn("listing admins for escalation notice failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
	for _, admin := range admins {
		n.deliver(ctx, admin.ID, event.TicketID, domain.NotificationEscalation, message)
	}
	if payload.AssigneeID != nil {
		n.deliver(ctx, *payload.AssigneeID, event.TicketID, domain.NotificationEscalation, message)
	}
	return nil
}

// ListForUser returns the recipient's most recent notifications.
func (n *NotificationService) ListForUser(ctx context.Context, recipientID string, limit int) ([]domain.NotificationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return n.notifications.ListByRecipient(ctx, recipientID, limit)
}

// MarkRead flips the read flag. Only the recipient may mark their own
// notification.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, notificationID string) error {
	record, err := n.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if record.RecipientID != actor.ID {
		return apperrors.NewForbidden("notification belongs to another user")
	}
	return n.notifications.MarkRead(ctx, notificationID)
}

func (n *NotificationService) deliver(ctx context.Context, recipientID, ticketID string, kind domain.NotificationType, message string) {
	record := &domain.NotificationRecord{
		RecipientID: recipientID,
		TicketID:    ticketID,
		Type:        kind,
		Message:     message,
	}
	if err := n.notifications.Create(ctx, record); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("recipient_id", recipientID),
			zap.String("ticket_id", ticketID),
			zap.String("type", string(kind)),
			zap.Error(err))
	}
}

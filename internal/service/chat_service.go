package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/realtime"
	"github.com/kaveyan18/resolve-desk/internal/repository"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// ChatService persists ticket chat messages and rebroadcasts them to the
// ticket's room.
type ChatService struct {
	tickets  repository.TicketRepository
	messages repository.ChatMessageRepository
	users    repository.UserRepository
	hub      *realtime.Hub
	logger   *zap.Logger
}

// NewChatService creates the service.
func NewChatService(tickets repository.TicketRepository, messages repository.ChatMessageRepository, users repository.UserRepository, hub *realtime.Hub, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		tickets:  tickets,
		messages: messages,
		users:    users,
		hub:      hub,
		logger:   logger,
	}
}

// SendMessage persists the message and broadcasts the sender-enriched copy to
// every current subscriber of the ticket's room, the sender's own other
// connections included. Broadcast failures do not fail the send.
func (s *ChatService) SendMessage(ctx context.Context, ticketID, senderID, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text required", nil)
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewTransientStore(err)
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sender", map[string]any{"sender_id": senderID})
		}
		return nil, apperrors.NewTransientStore(err)
	}

	msg := &domain.ChatMessage{
		TicketID: ticketID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.NewTransientStore(err)
	}
	msg.SenderName = sender.Name
	msg.SenderRole = sender.Role

	if s.hub != nil {
		s.hub.Publish(ctx, *msg)
	}
	return msg, nil
}

// ListMessages returns the ticket's persisted conversation in creation-time order.
func (s *ChatService) ListMessages(ctx context.Context, ticketID string) ([]domain.ChatMessage, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewTransientStore(err)
	}
	return msgs, nil
}

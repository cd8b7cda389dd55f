package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
	"github.com/kaveyan18/resolve-desk/internal/repository"
)

// EscalationService escalates overdue tickets exactly once.
type EscalationService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      func() time.Time
}

// EscalationDependencies bundles collaborators.
type EscalationDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewEscalationService creates the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &EscalationService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		clock:      deps.Clock,
	}
}

// RunSweep escalates every non-terminal ticket whose SLA deadline has lapsed
// and which has not been escalated before. The escalated flag makes the
// sweep idempotent. A failure on one ticket is logged and the sweep moves on.
func (s *EscalationService) RunSweep(ctx context.Context) (int, error) {
	now := s.clock()
	overdue, err := s.tickets.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	escalated := 0
	for i := range overdue {
		ticket := &overdue[i]
		ticket.Escalated = true
		ticket.Priority = domain.TicketPriorityUrgent
		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Warn("escalation failed for ticket",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		escalated++

		s.publishEscalated(ctx, ticket)
	}
	return escalated, nil
}

func (s *EscalationService) publishEscalated(ctx context.Context, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketEscalated,
		TicketID:  ticket.ID,
		Actor:     events.Actor{ID: events.ActorSystem},
		Timestamp: s.clock(),
		Payload: events.EscalatedPayload{
			Code:       ticket.Code,
			Title:      ticket.Title,
			AssigneeID: ticket.AssigneeID,
		},
	})
}

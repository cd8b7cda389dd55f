package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
	"github.com/kaveyan18/resolve-desk/internal/repository"
)

// AssignmentService selects staff for unassigned tickets by skill match and
// current workload. It runs inline during ticket creation and in batch from
// the scheduler.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// AssignTicket picks the least-loaded eligible staff member for an Open
// ticket and commits the assignment. An empty candidate pool is a no-op, not
// an error. The ticket is mutated in place on success.
func (s *AssignmentService) AssignTicket(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	if ticket.Status != domain.TicketStatusOpen {
		return false, nil
	}

	assignee, err := s.selectAssignee(ctx, ticket.Category)
	if err != nil {
		return false, err
	}
	if assignee == nil {
		return false, nil
	}

	ticket.AssigneeID = &assignee.ID
	ticket.Status = domain.TicketStatusAssigned
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			// A concurrent writer touched the ticket; leave it for the next sweep.
			s.logger.Info("assignment skipped on version conflict", zap.String("ticket_id", ticket.ID))
			return false, nil
		}
		return false, err
	}

	s.publishAssignment(ctx, ticket, assignee.ID)
	return true, nil
}

// RunSweep assigns every currently Open ticket in creation order, recomputing
// workload before each selection so one sweep spreads load across staff.
// Per-ticket failures are logged and do not abort the sweep.
func (s *AssignmentService) RunSweep(ctx context.Context) (int, error) {
	open, err := s.tickets.ListOpenForAssignment(ctx)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for i := range open {
		ok, err := s.AssignTicket(ctx, &open[i])
		if err != nil {
			s.logger.Warn("assignment sweep failed for ticket",
				zap.String("ticket_id", open[i].ID), zap.Error(err))
			continue
		}
		if ok {
			assigned++
		}
	}
	return assigned, nil
}

// selectAssignee returns the candidate with the strictly lowest workload, or
// nil when no staff is available. Candidates with matching skills are
// preferred; when none match, every assignable staff member is considered.
// Ties fall to the pool's enumeration order, which callers must treat as
// unspecified.
func (s *AssignmentService) selectAssignee(ctx context.Context, category domain.TicketCategory) (*domain.User, error) {
	pool, err := s.users.ListStaff(ctx, repository.StaffFilter{
		Skill:          &category,
		OnlyAssignable: true,
	})
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		pool, err = s.users.ListStaff(ctx, repository.StaffFilter{OnlyAssignable: true})
		if err != nil {
			return nil, err
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	workloads := s.gatherWorkloads(ctx, pool)

	best := -1
	for i := range pool {
		if workloads[i] == math.MaxInt {
			continue
		}
		if best == -1 || workloads[i] < workloads[best] {
			best = i
		}
	}
	if best == -1 {
		return nil, errors.New("workload unavailable for every candidate")
	}
	return &pool[best], nil
}

// gatherWorkloads counts each candidate's active tickets. The counts are
// independent, so they run as a scatter/gather; a failed count marks the
// candidate unavailable rather than failing the selection.
func (s *AssignmentService) gatherWorkloads(ctx context.Context, pool []domain.User) []int {
	workloads := make([]int, len(pool))
	var wg sync.WaitGroup
	for i := range pool {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			count, err := s.tickets.CountActiveByAssignee(ctx, pool[i].ID)
			if err != nil {
				s.logger.Warn("workload count failed",
					zap.String("staff_id", pool[i].ID), zap.Error(err))
				workloads[i] = math.MaxInt
				return
			}
			workloads[i] = count
		}(i)
	}
	wg.Wait()
	return workloads
}

func (s *AssignmentService) publishAssignment(ctx context.Context, ticket *domain.Ticket, assigneeID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAssignmentChanged,
		TicketID:  ticket.ID,
		Actor:     events.Actor{ID: events.ActorSystem},
		Timestamp: time.Now(),
		Payload: events.AssignmentChangedPayload{
			RequesterID: ticket.RequesterID,
			AssigneeID:  assigneeID,
			Title:       ticket.Title,
		},
	})
}

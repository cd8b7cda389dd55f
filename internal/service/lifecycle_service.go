package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
	"github.com/kaveyan18/resolve-desk/internal/repository"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

const maxTitleLength = 100

// LifecycleService owns ticket creation and the role-scoped state machine.
type LifecycleService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	settings   repository.SettingsRepository
	assigner   *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	slaWindow  time.Duration
	clock      func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	SettingsRepo repository.SettingsRepository
	Assigner     *AssignmentService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	SLAWindow    time.Duration
	Clock        func() time.Time
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.SLAWindow <= 0 {
		deps.SLAWindow = 48 * time.Hour
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &LifecycleService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		settings:   deps.SettingsRepo,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		slaWindow:  deps.SLAWindow,
		clock:      deps.Clock,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	// SLADeadline overrides the default creation-time + SLA window deadline.
	SLADeadline *time.Time
}

// FeedbackInput is the requester's rating patch.
type FeedbackInput struct {
	Rating  int
	Comment string
}

// TicketPatch is a sparse update; nil fields are untouched.
type TicketPatch struct {
	Status          *domain.TicketStatus
	AssigneeID      *string
	ResolutionNotes *string
	Feedback        *FeedbackInput
}

func (p TicketPatch) empty() bool {
	return p.Status == nil && p.AssigneeID == nil && p.ResolutionNotes == nil && p.Feedback == nil
}

// patchField identifies one patchable ticket field for permission checks.
type patchField string

const (
	fieldStatus          patchField = "status"
	fieldAssignee        patchField = "assignedTo"
	fieldResolutionNotes patchField = "resolutionNotes"
	fieldFeedback        patchField = "feedback"
)

// patchPermissions is the single permission table for ApplyUpdate. Ownership
// rules (staff must be the assignee, requesters patch their own tickets) are
// enforced separately.
var patchPermissions = map[patchField]map[domain.Role]struct{}{
	fieldStatus:          {domain.RoleStaff: {}, domain.RoleAdmin: {}},
	fieldAssignee:        {domain.RoleAdmin: {}},
	fieldResolutionNotes: {domain.RoleStaff: {}, domain.RoleAdmin: {}},
	fieldFeedback:        {domain.RoleUser: {}},
}

// staffStatusTargets are the statuses a staff member may move their own
// assigned ticket to. Admins may set any valid status.
var staffStatusTargets = map[domain.TicketStatus]struct{}{
	domain.TicketStatusInProgress: {},
	domain.TicketStatusResolved:   {},
	domain.TicketStatusClosed:     {},
}

// CreateTicket validates input, persists a new Open ticket and runs the
// inline auto-assignment pass when enabled. Assignment failures never fail
// the creation itself.
func (s *LifecycleService) CreateTicket(ctx context.Context, requester *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if requester == nil {
		return nil, apperrors.NewUnauthorized("requester required")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if len(title) > maxTitleLength {
		return nil, apperrors.NewValidationError("title too long", map[string]any{"max": maxTitleLength})
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	now := s.clock()
	deadline := now.Add(s.slaWindow)
	if input.SLADeadline != nil {
		deadline = *input.SLADeadline
	}

	ticket := &domain.Ticket{
		RequesterID: requester.ID,
		Title:       title,
		Description: description,
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		SLADeadline: deadline,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewTransientStore(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: requester.ID, Role: requester.Role},
		Payload: events.TicketCreatedPayload{
			RequesterID: ticket.RequesterID,
			Code:        ticket.Code,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			Title:       ticket.Title,
		},
	})

	s.maybeAutoAssign(ctx, ticket)
	return ticket, nil
}

func (s *LifecycleService) maybeAutoAssign(ctx context.Context, ticket *domain.Ticket) {
	if s.assigner == nil || s.settings == nil {
		return
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable, skipping inline assignment",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	if !settings.AutoAssignEnabled {
		return
	}
	if _, err := s.assigner.AssignTicket(ctx, ticket); err != nil {
		s.logger.Warn("inline assignment failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

// ApplyUpdate validates and applies a sparse patch on behalf of the actor.
// The whole patch commits or none of it does.
func (s *LifecycleService) ApplyUpdate(ctx context.Context, actor *domain.User, ticketID string, patch TicketPatch) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	if patch.empty() {
		return nil, apperrors.NewValidationError("empty patch", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	for _, field := range requestedFields(patch) {
		if _, ok := patchPermissions[field][actor.Role]; !ok {
			return nil, apperrors.NewForbidden("role may not modify " + string(field))
		}
	}

	switch actor.Role {
	case domain.RoleUser:
		if ticket.RequesterID != actor.ID {
			return nil, apperrors.NewForbidden("not the requester of this complaint")
		}
	case domain.RoleStaff:
		if ticket.AssigneeID == nil || *ticket.AssigneeID != actor.ID {
			return nil, apperrors.NewForbidden("complaint is not assigned to you")
		}
	}

	updated := *ticket
	oldStatus := ticket.Status
	oldAssignee := ticket.AssigneeID

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *patch.Status})
		}
		if actor.Role == domain.RoleStaff {
			if _, ok := staffStatusTargets[*patch.Status]; !ok {
				return nil, apperrors.NewInvalidTransition("staff may only move a complaint to In-Progress, Resolved or Closed", nil)
			}
		}
		updated.Status = *patch.Status
	}

	if patch.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *patch.AssigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": *patch.AssigneeID})
			}
			return nil, apperrors.NewTransientStore(err)
		}
		if !assignee.Assignable() {
			return nil, apperrors.NewConflict("assignee not available", map[string]any{"staff_id": assignee.ID})
		}
		updated.AssigneeID = &assignee.ID
		// Assigning an Open complaint advances it.
		if updated.Status == domain.TicketStatusOpen {
			updated.Status = domain.TicketStatusAssigned
		}
	}

	if patch.ResolutionNotes != nil {
		updated.ResolutionNotes = strings.TrimSpace(*patch.ResolutionNotes)
	}

	if patch.Feedback != nil {
		if !ticket.Status.AcceptsFeedback() {
			return nil, apperrors.NewInvalidTransition("feedback allowed only on resolved or closed complaints",
				map[string]any{"status": ticket.Status})
		}
		if ticket.Feedback != nil {
			return nil, apperrors.NewInvalidTransition("feedback already submitted", nil)
		}
		if patch.Feedback.Rating < 1 || patch.Feedback.Rating > 5 {
			return nil, apperrors.NewValidationError("rating must be between 1 and 5",
				map[string]any{"rating": patch.Feedback.Rating})
		}
		updated.Feedback = &domain.Feedback{
			Rating:      patch.Feedback.Rating,
			Comment:     strings.TrimSpace(patch.Feedback.Comment),
			SubmittedAt: s.clock(),
		}
	}

	if err := s.tickets.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("complaint was modified concurrently", nil)
		}
		return nil, apperrors.NewTransientStore(err)
	}

	actorMeta := events.Actor{ID: actor.ID, Role: actor.Role}
	if updated.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventStatusChanged,
			TicketID: updated.ID,
			Actor:    actorMeta,
			Payload: events.StatusChangedPayload{
				RequesterID: updated.RequesterID,
				Title:       updated.Title,
				OldStatus:   oldStatus,
				NewStatus:   updated.Status,
			},
		})
	}
	if assigneeChanged(oldAssignee, updated.AssigneeID) {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventAssignmentChanged,
			TicketID: updated.ID,
			Actor:    actorMeta,
			Payload: events.AssignmentChangedPayload{
				RequesterID: updated.RequesterID,
				AssigneeID:  *updated.AssigneeID,
				Title:       updated.Title,
			},
		})
	}

	return &updated, nil
}

// GetTicket fetches a ticket enforcing the viewer's scope.
func (s *LifecycleService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// GetTicketByCode fetches a ticket by its COMP-<n> code enforcing scope.
func (s *LifecycleService) GetTicketByCode(ctx context.Context, actor *domain.User, code string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"code": code})
		}
		return nil, apperrors.NewTransientStore(err)
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListTickets returns tickets visible to the actor, newest first: admins see
// everything, staff see their assignments, users their own complaints.
func (s *LifecycleService) ListTickets(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	filter := repository.TicketFilter{Limit: limit, Offset: offset}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleStaff:
		filter.AssigneeID = &actor.ID
	default:
		filter.RequesterID = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewTransientStore(err)
	}
	return tickets, nil
}

func (s *LifecycleService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewTransientStore(err)
	}
	return ticket, nil
}

func requestedFields(patch TicketPatch) []patchField {
	fields := make([]patchField, 0, 4)
	if patch.Status != nil {
		fields = append(fields, fieldStatus)
	}
	if patch.AssigneeID != nil {
		fields = append(fields, fieldAssignee)
	}
	if patch.ResolutionNotes != nil {
		fields = append(fields, fieldResolutionNotes)
	}
	if patch.Feedback != nil {
		fields = append(fields, fieldFeedback)
	}
	return fields
}

func assigneeChanged(before, after *string) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}

func canView(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if ticket.RequesterID == actor.ID {
		return true
	}
	return ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// ErrVersionConflict is returned when a versioned update raced a concurrent writer.
var ErrVersionConflict = errors.New("ticket version conflict")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update persists the whole row guarded by the ticket's version; on
	// success the in-memory version is advanced. Returns ErrVersionConflict
	// when the stored version moved underneath the caller.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListOpenForAssignment returns all Open tickets in creation order.
	ListOpenForAssignment(ctx context.Context) ([]domain.Ticket, error)
	// ListOverdue returns non-terminal, non-escalated tickets whose SLA
	// deadline lies before now.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
	// CountActiveByAssignee computes the staff member's current workload.
	CountActiveByAssignee(ctx context.Context, staffID string) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, code, requester_id, title, description, category, status, assignee_id,
               priority, escalated_flag, sla_deadline, resolution_notes,
               feedback_rating, feedback_comment, feedback_at, version, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (code, requester_id, title, description, category, status, assignee_id, priority, escalated_flag, sla_deadline, resolution_notes)
        VALUES ('COMP-' || nextval('complaint_code_seq'), $1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, code, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.RequesterID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.AssigneeID,
		ticket.Priority,
		ticket.Escalated,
		ticket.SLADeadline,
		ticket.ResolutionNotes,
	).Scan(&ticket.ID, &ticket.Code, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, assignee_id=$2, priority=$3, escalated_flag=$4,
            resolution_notes=$5, feedback_rating=$6, feedback_comment=$7, feedback_at=$8,
            version=version+1, updated_at=NOW()
        WHERE id=$9 AND version=$10`
	var rating *int
	var comment *string
	var submittedAt *time.Time
	if ticket.Feedback != nil {
		rating = &ticket.Feedback.Rating
		comment = &ticket.Feedback.Comment
		submittedAt = &ticket.Feedback.SubmittedAt
	}
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.AssigneeID,
		ticket.Priority,
		ticket.Escalated,
		ticket.ResolutionNotes,
		rating,
		comment,
		submittedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE code=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanTicket(row)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOpenForAssignment(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE status=$1 ORDER BY created_at ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE status NOT IN ($1,$2) AND escalated_flag=FALSE AND sla_deadline < $3
        ORDER BY sla_deadline ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusResolved, domain.TicketStatusClosed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountActiveByAssignee(ctx context.Context, staffID string) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE assignee_id=$1 AND status IN ($2,$3)`
	var count int
	if err := r.pool.QueryRow(ctx, query, staffID,
		domain.TicketStatusAssigned, domain.TicketStatusInProgress).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var rating *int
	var comment *string
	var submittedAt *time.Time
	if err := row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.RequesterID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.AssigneeID,
		&ticket.Priority,
		&ticket.Escalated,
		&ticket.SLADeadline,
		&ticket.ResolutionNotes,
		&rating,
		&comment,
		&submittedAt,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if rating != nil {
		feedback := domain.Feedback{Rating: *rating}
		if comment != nil {
			feedback.Comment = *comment
		}
		if submittedAt != nil {
			feedback.SubmittedAt = *submittedAt
		}
		ticket.Feedback = &feedback
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// NotificationRepository manages per-recipient notification records.
type NotificationRepository interface {
	Create(ctx context.Context, record *domain.NotificationRecord) error
	GetByID(ctx context.Context, id string) (*domain.NotificationRecord, error)
	// ListByRecipient returns the recipient's newest records first.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.NotificationRecord, error)
	MarkRead(ctx context.Context, id string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, record *domain.NotificationRecord) error {
	const query = `
        INSERT INTO notifications (recipient_id, ticket_id, type, message)
        VALUES ($1,$2,$3,$4)
        RETURNING id, read_flag, created_at`
	return r.pool.QueryRow(ctx, query,
		record.RecipientID,
		record.TicketID,
		record.Type,
		record.Message,
	).Scan(&record.ID, &record.Read, &record.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	const query = `
        SELECT id, recipient_id, ticket_id, type, message, read_flag, created_at
        FROM notifications WHERE id=$1`
	var record domain.NotificationRecord
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.RecipientID,
		&record.TicketID,
		&record.Type,
		&record.Message,
		&record.Read,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.NotificationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, recipient_id, ticket_id, type, message, read_flag, created_at
        FROM notifications WHERE recipient_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationRecord
	for rows.Next() {
		var record domain.NotificationRecord
		if err := rows.Scan(
			&record.ID,
			&record.RecipientID,
			&record.TicketID,
			&record.Type,
			&record.Message,
			&record.Read,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET read_flag=TRUE WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

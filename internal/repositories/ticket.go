package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

const ticketColumns = `id, account_id, subject, message, status, priority, created_at, updated_at`

// TicketRepository persists support tickets.
type TicketRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewTicketRepository(db *sqlx.DB, txGetter TxGetter) *TicketRepository {
	return &TicketRepository{db: db, txGetter: txGetter}
}

func (r *TicketRepository) Create(ctx context.Context, t *models.TicketDB) error {
	query := `
		INSERT INTO support_tickets (account_id, subject, message, status, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + ticketColumns
	args := []any{t.AccountID, t.Subject, t.Message, t.Status, t.Priority}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), t, query, args...)
	logQuery(query, []any{t.AccountID, t.Subject, t.Priority}, t.ID, err)
	return err
}

// GetByID returns nil when the ticket does not exist.
func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TicketDB, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id = $1`

	var t models.TicketDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &t, query, id)
	logQuery(query, []any{id}, t.Status, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns a page of tickets, newest first, with the total count.
func (r *TicketRepository) List(ctx context.Context, f models.TicketFilter) ([]models.TicketDB, int, error) {
	const where = `
		WHERE ($1::UUID IS NULL OR account_id = $1)
		  AND ($2::VARCHAR IS NULL OR status = $2)`
	countQuery := `SELECT COUNT(*) FROM support_tickets ` + where
	query := `SELECT ` + ticketColumns + ` FROM support_tickets ` + where + `
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`

	ex := executor(ctx, r.db, r.txGetter)
	status := nullable(f.Status)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, f.AccountID, status)
	logQuery(countQuery, []any{f.AccountID, status}, total, err)
	if err != nil {
		return nil, 0, err
	}

	tickets := []models.TicketDB{}
	args := []any{f.AccountID, status, f.Page.Limit, f.Page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &tickets, query, args...)
	logQuery(query, args, len(tickets), err)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// Update changes status and/or priority. Nil means unchanged. Returns nil when the ticket is missing.
func (r *TicketRepository) Update(ctx context.Context, id uuid.UUID, status *models.TicketStatus, priority *models.TicketPriority) (*models.TicketDB, error) {
	query := `
		UPDATE support_tickets
		SET status = COALESCE($2, status), priority = COALESCE($3, priority), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + ticketColumns

	var t models.TicketDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &t, query, id, status, priority)
	logQuery(query, []any{id, status, priority}, t.Status, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountByAccount returns the number of tickets opened by the account.
func (r *TicketRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM support_tickets WHERE account_id = $1`

	var count int
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &count, query, accountID)
	logQuery(query, []any{accountID}, count, err)
	return count, err
}

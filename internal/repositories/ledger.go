package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
)

const ledgerColumns = `id, account_id, kind, amount, description, status, payment_method,
	order_id, created_at, updated_at`

// LedgerRepository is the append-only record of money movements.
type LedgerRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewLedgerRepository(db *sqlx.DB, txGetter TxGetter) *LedgerRepository {
	return &LedgerRepository{db: db, txGetter: txGetter}
}

// Append inserts a new entry and fills in generated columns.
func (r *LedgerRepository) Append(ctx context.Context, e *models.LedgerEntryDB) error {
	query := `
		INSERT INTO ledger_entries (account_id, kind, amount, description, status, payment_method, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + ledgerColumns
	args := []any{e.AccountID, e.Kind, e.Amount, e.Description, e.Status, e.PaymentMethod, e.OrderID}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), e, query, args...)
	logQuery(query, args, e.ID, err)
	return err
}

// LockByID reads an entry with FOR UPDATE. Returns nil when absent.
func (r *LedgerRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntryDB, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`

	var e models.LedgerEntryDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &e, query, id)
	logQuery(query, []any{id}, e.Status, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SetStatus settles a pending entry. Amount and kind stay untouched.
func (r *LedgerRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.LedgerStatus) error {
	query := `UPDATE ledger_entries SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'PENDING'`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id, status)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id, status}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns a page of entries for the account, newest first, with the total count.
func (r *LedgerRepository) List(ctx context.Context, accountID uuid.UUID, f models.LedgerFilter) ([]models.LedgerEntryDB, int, error) {
	const where = `WHERE account_id = $1 AND ($2::VARCHAR IS NULL OR kind = $2)`
	countQuery := `SELECT COUNT(*) FROM ledger_entries ` + where
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries ` + where + `
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`

	ex := executor(ctx, r.db, r.txGetter)
	kind := nullable(f.Kind)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, accountID, kind)
	logQuery(countQuery, []any{accountID, kind}, total, err)
	if err != nil {
		return nil, 0, err
	}

	entries := []models.LedgerEntryDB{}
	args := []any{accountID, kind, f.Page.Limit, f.Page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &entries, query, args...)
	logQuery(query, args, len(entries), err)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumCompleted adds up all settled entries of the account.
func (r *LedgerRepository) SumCompleted(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND status = 'COMPLETED'
	`

	var sum decimal.Decimal
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &sum, query, accountID)
	logQuery(query, []any{accountID}, sum, err)
	return sum, err
}

// ListByOrder returns the entries referencing an order, oldest first.
func (r *LedgerRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntryDB, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE order_id = $1 ORDER BY created_at, id`

	entries := []models.LedgerEntryDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &entries, query, orderID)
	logQuery(query, []any{orderID}, len(entries), err)
	return entries, err
}

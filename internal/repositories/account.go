package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

const accountColumns = `id, email, password_hash, first_name, last_name, phone, company,
	role, is_active, is_email_verified, created_at, updated_at`

// AccountRepository persists accounts.
type AccountRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewAccountRepository(db *sqlx.DB, txGetter TxGetter) *AccountRepository {
	return &AccountRepository{db: db, txGetter: txGetter}
}

// Create inserts the account and fills in generated columns.
func (r *AccountRepository) Create(ctx context.Context, acc *models.AccountDB) error {
	query := `
		INSERT INTO accounts (email, password_hash, first_name, last_name, phone, company, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns
	args := []any{acc.Email, acc.PasswordHash, acc.FirstName, acc.LastName, acc.Phone, acc.Company, acc.Role}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), acc, query, args...)
	logQuery(query, []any{acc.Email, acc.Role}, acc.ID, err)
	return err
}

// GetByID returns nil when the account does not exist.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AccountDB, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByEmail looks the account up case-insensitively. Returns nil when absent.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.AccountDB, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = LOWER($1)`
	return r.get(ctx, query, email)
}

func (r *AccountRepository) get(ctx context.Context, query string, arg any) (*models.AccountDB, error) {
	var acc models.AccountDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &acc, query, arg)
	logQuery(query, []any{arg}, acc.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpdateProfile changes the non-nil fields and returns the stored row.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.AccountDB, error) {
	query := `
		UPDATE accounts
		SET first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    phone = COALESCE($4, phone),
		    company = COALESCE($5, company),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	args := []any{id, upd.FirstName, upd.LastName, upd.Phone, upd.Company}

	var acc models.AccountDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &acc, query, args...)
	logQuery(query, []any{id}, acc.ID, err)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash)
}

// Deactivate soft-deletes the account.
func (r *AccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *AccountRepository) exec(ctx context.Context, query string, id uuid.UUID, args ...any) error {
	args = append([]any{id}, args...)
	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

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

const walletColumns = `id, account_id, balance, created_at, updated_at`

// WalletRepository stores the cached balance of each account.
// Every balance change must go together with a ledger entry in the same transaction.
type WalletRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewWalletRepository(db *sqlx.DB, txGetter TxGetter) *WalletRepository {
	return &WalletRepository{db: db, txGetter: txGetter}
}

// Create opens an empty wallet for the account.
func (r *WalletRepository) Create(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error) {
	query := `
		INSERT INTO wallets (account_id, balance)
		VALUES ($1, 0)
		RETURNING ` + walletColumns

	var w models.WalletDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &w, query, accountID)
	logQuery(query, []any{accountID}, w.ID, err)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByAccountID returns nil when the account has no wallet.
func (r *WalletRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_id = $1`
	return r.get(ctx, query, accountID)
}

// LockByAccountID reads the wallet row with FOR UPDATE. Must run inside a transaction.
func (r *WalletRepository) LockByAccountID(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_id = $1 FOR UPDATE`
	return r.get(ctx, query, accountID)
}

func (r *WalletRepository) get(ctx context.Context, query string, accountID uuid.UUID) (*models.WalletDB, error) {
	var w models.WalletDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &w, query, accountID)
	logQuery(query, []any{accountID}, w.Balance, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit increases the balance and returns the new value.
func (r *WalletRepository) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE account_id = $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, accountID, amount)
	logQuery(query, []any{accountID, amount}, balance, err)
	return balance, err
}

// Debit decreases the balance only if it covers amount.
// Returns sql.ErrNoRows when funds are insufficient or the wallet does not exist.
func (r *WalletRepository) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = NOW()
		WHERE account_id = $1 AND balance >= $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, accountID, amount)
	logQuery(query, []any{accountID, amount}, balance, err)
	return balance, err
}

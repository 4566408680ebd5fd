//go:generate mockgen -source=account.go -destination=mock_account_test.go -package=services

package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// OrderCounter counts the orders of an account.
type OrderCounter interface {
	CountByAccount(ctx context.Context, accountID uuid.UUID) (total, open int, err error)
}

// TicketCounter counts the support tickets of an account.
type TicketCounter interface {
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// AccountService manages the signed-in user's own account.
type AccountService struct {
	accounts   AccountStore
	wallets    WalletStore
	orders     OrderCounter
	tickets    TicketCounter
	bcryptCost int
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(accounts AccountStore, wallets WalletStore, orders OrderCounter, tickets TicketCounter, bcryptCost int) *AccountService {
	return &AccountService{
		accounts:   accounts,
		wallets:    wallets,
		orders:     orders,
		tickets:    tickets,
		bcryptCost: bcryptCost,
	}
}

// Profile returns the account with its wallet and activity counters.
func (svc *AccountService) Profile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	acc, err := svc.accounts.GetByID(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to get account", "account_id", accountID, "error", err)
		return nil, err
	}
	if acc == nil {
		return nil, notFoundError("account")
	}

	wallet, err := svc.wallets.GetByAccountID(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "account_id", accountID, "error", err)
		return nil, err
	}

	orders, _, err := svc.orders.CountByAccount(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to count orders", "account_id", accountID, "error", err)
		return nil, err
	}

	tickets, err := svc.tickets.CountByAccount(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to count tickets", "account_id", accountID, "error", err)
		return nil, err
	}

	return &models.Profile{Account: acc, Wallet: wallet, OrderCount: orders, TicketCount: tickets}, nil
}

// UpdateProfile changes name, phone or company.
func (svc *AccountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, upd models.ProfileUpdate) (*models.AccountDB, error) {
	if upd.FirstName != nil {
		if err := validateName("first name", *upd.FirstName); err != nil {
			return nil, err
		}
		*upd.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		if err := validateName("last name", *upd.LastName); err != nil {
			return nil, err
		}
		*upd.LastName = strings.TrimSpace(*upd.LastName)
	}

	acc, err := svc.accounts.UpdateProfile(ctx, accountID, upd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError("account")
	}
	if err != nil {
		logger.Log.Errorw("failed to update profile", "account_id", accountID, "error", err)
		return nil, err
	}
	return acc, nil
}

// ChangePassword replaces the password after verifying the current one.
func (svc *AccountService) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLength {
		return validationError("new password must be at least %d characters long", minPasswordLength)
	}

	acc, err := svc.accounts.GetByID(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to get account", "account_id", accountID, "error", err)
		return err
	}
	if acc == nil {
		return notFoundError("account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)); err != nil {
		return validationError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), svc.bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		return err
	}

	if err := svc.accounts.UpdatePassword(ctx, accountID, string(hash)); err != nil {
		logger.Log.Errorw("failed to update password", "account_id", accountID, "error", err)
		return err
	}
	return nil
}

// Delete deactivates the account. Accounts with orders in progress cannot be deleted.
func (svc *AccountService) Delete(ctx context.Context, accountID uuid.UUID) error {
	_, open, err := svc.orders.CountByAccount(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to count orders", "account_id", accountID, "error", err)
		return err
	}
	if open > 0 {
		return validationError("cannot delete account with active orders")
	}

	err = svc.accounts.Deactivate(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundError("account")
	}
	if err != nil {
		logger.Log.Errorw("failed to deactivate account", "account_id", accountID, "error", err)
		return err
	}
	return nil
}

//go:generate mockgen -source=wallet.go -destination=mock_wallet_test.go -package=services

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
)

var (
	minDeposit = decimal.NewFromInt(5)
	maxDeposit = decimal.NewFromInt(10000)

	cryptoAddresses = map[models.CryptoType]string{
		models.CryptoBitcoin:  "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		models.CryptoEthereum: "0x742d35Cc6634C0532925a3b8D4C9db96590b4c5d",
		models.CryptoUSDT:     "TQn9Y2khEsLJW1ChVWFMSMeRDow5oREqjK",
	}
)

// WalletStore defines persistence operations for wallets.
type WalletStore interface {
	Create(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error)
	LockByAccountID(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
}

// LedgerStore defines operations on the append-only ledger.
type LedgerStore interface {
	Append(ctx context.Context, e *models.LedgerEntryDB) error
	LockByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntryDB, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.LedgerStatus) error
	List(ctx context.Context, accountID uuid.UUID, f models.LedgerFilter) ([]models.LedgerEntryDB, int, error)
	SumCompleted(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// WalletService handles balance reads, top-ups and ledger reporting.
type WalletService struct {
	tx      Transactor
	wallets WalletStore
	ledger  LedgerStore
	events  Notifier
}

// NewWalletService creates a new WalletService.
func NewWalletService(tx Transactor, wallets WalletStore, ledger LedgerStore, events Notifier) *WalletService {
	return &WalletService{
		tx:      tx,
		wallets: wallets,
		ledger:  ledger,
		events:  events,
	}
}

// Balance returns the wallet, opening an empty one if the account has none yet.
func (s *WalletService) Balance(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error) {
	w, err := s.wallets.GetByAccountID(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "account_id", accountID, "error", err)
		return nil, err
	}
	if w != nil {
		return w, nil
	}

	w, err = s.wallets.Create(ctx, accountID)
	if isUniqueViolation(err) {
		// created concurrently
		return s.wallets.GetByAccountID(ctx, accountID)
	}
	if err != nil {
		logger.Log.Errorw("failed to create wallet", "account_id", accountID, "error", err)
		return nil, err
	}
	return w, nil
}

func validateDeposit(req models.DepositRequest) error {
	if req.Amount.LessThan(minDeposit) || req.Amount.GreaterThan(maxDeposit) {
		return validationError("amount must be between %s and %s", minDeposit, maxDeposit)
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return validationError("amount must have at most 2 decimal places")
	}
	switch req.Method {
	case models.PaymentStripe:
	case models.PaymentCrypto:
		if _, ok := cryptoAddresses[req.CryptoType]; !ok {
			return validationError("crypto type must be one of bitcoin, ethereum, usdt")
		}
	default:
		return validationError("payment method must be stripe or crypto")
	}
	return nil
}

// AddFunds tops up the wallet. Card payments settle at once; crypto deposits stay
// pending until an operator confirms the transfer.
func (s *WalletService) AddFunds(ctx context.Context, accountID uuid.UUID, req models.DepositRequest) (*models.DepositResult, error) {
	if err := validateDeposit(req); err != nil {
		return nil, err
	}

	method := req.Method
	entry := &models.LedgerEntryDB{
		AccountID:     accountID,
		Kind:          models.LedgerDeposit,
		Amount:        req.Amount,
		Description:   fmt.Sprintf("Funds added via %s", req.Method),
		Status:        models.LedgerCompleted,
		PaymentMethod: &method,
	}
	if req.Method == models.PaymentCrypto {
		entry.Description = fmt.Sprintf("Funds added via crypto (%s)", req.CryptoType)
		entry.Status = models.LedgerPending
	}

	var balance decimal.Decimal
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		w, err := s.wallets.LockByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		if w == nil {
			return notFoundError("wallet")
		}
		balance = w.Balance

		if err := s.ledger.Append(ctx, entry); err != nil {
			return err
		}
		if entry.Status != models.LedgerCompleted {
			return nil
		}
		balance, err = s.wallets.Credit(ctx, accountID, entry.Amount)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to add funds", "account_id", accountID, "amount", req.Amount, "method", req.Method, "error", err)
		return nil, err
	}

	result := &models.DepositResult{Entry: entry, Balance: balance}
	if entry.Status == models.LedgerPending {
		result.PaymentAddress = cryptoAddresses[req.CryptoType]
		return result, nil
	}

	s.publishDeposit(ctx, entry, balance)
	return result, nil
}

// ConfirmDeposit settles a pending deposit and credits the wallet in one transaction.
func (s *WalletService) ConfirmDeposit(ctx context.Context, entryID uuid.UUID) (*models.DepositResult, error) {
	var (
		entry   *models.LedgerEntryDB
		balance decimal.Decimal
	)
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.ledger.LockByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil || entry.Kind != models.LedgerDeposit {
			return notFoundError("deposit")
		}
		if entry.Status != models.LedgerPending {
			return fmt.Errorf("%w: deposit is %s", ErrInvalidStateTransition, entry.Status)
		}

		if err := s.ledger.SetStatus(ctx, entryID, models.LedgerCompleted); err != nil {
			return err
		}
		entry.Status = models.LedgerCompleted

		balance, err = s.wallets.Credit(ctx, entry.AccountID, entry.Amount)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to confirm deposit", "entry_id", entryID, "error", err)
		return nil, err
	}

	s.publishDeposit(ctx, entry, balance)
	return &models.DepositResult{Entry: entry, Balance: balance}, nil
}

func (s *WalletService) publishDeposit(ctx context.Context, entry *models.LedgerEntryDB, balance decimal.Decimal) {
	s.events.Publish(ctx, models.EventWalletDeposited, entry.AccountID.String(), map[string]any{
		"entry_id": entry.ID.String(),
		"amount":   entry.Amount.StringFixed(2),
		"balance":  balance.StringFixed(2),
	})
}

// Transactions returns a page of the account's ledger.
func (s *WalletService) Transactions(ctx context.Context, accountID uuid.UUID, f models.LedgerFilter) ([]models.LedgerEntryDB, models.Pagination, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, models.Pagination{}, validationError("unknown transaction type %q", f.Kind)
	}

	entries, total, err := s.ledger.List(ctx, accountID, f)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "account_id", accountID, "error", err)
		return nil, models.Pagination{}, err
	}
	return entries, models.NewPagination(f.Page, total), nil
}

// Reconcile compares the wallet balance with the sum of completed ledger entries.
// The wallet row is locked so no movement can slip in between the two reads.
func (s *WalletService) Reconcile(ctx context.Context, accountID uuid.UUID) (*models.Reconciliation, error) {
	var rec *models.Reconciliation
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		w, err := s.wallets.LockByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		if w == nil {
			return notFoundError("wallet")
		}

		sum, err := s.ledger.SumCompleted(ctx, accountID)
		if err != nil {
			return err
		}

		rec = &models.Reconciliation{
			AccountID:  accountID,
			Balance:    w.Balance,
			LedgerSum:  sum,
			Consistent: w.Balance.Equal(sum),
		}
		return nil
	})
	if err != nil {
		logger.Log.Errorw("failed to reconcile wallet", "account_id", accountID, "error", err)
		return nil, err
	}

	if !rec.Consistent {
		logger.Log.Errorw("wallet out of balance with ledger", "account_id", accountID, "balance", rec.Balance, "ledger_sum", rec.LedgerSum)
	}
	return rec, nil
}

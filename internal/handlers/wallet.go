//go:generate mockgen -source=wallet.go -destination=mock_wallet_test.go -package=handlers

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
)

const transactionsPageSize = 20

// WalletManager defines the wallet and ledger operations.
type WalletManager interface {
	Balance(ctx context.Context, accountID uuid.UUID) (*models.WalletDB, error)
	AddFunds(ctx context.Context, accountID uuid.UUID, req models.DepositRequest) (*models.DepositResult, error)
	ConfirmDeposit(ctx context.Context, entryID uuid.UUID) (*models.DepositResult, error)
	Transactions(ctx context.Context, accountID uuid.UUID, f models.LedgerFilter) ([]models.LedgerEntryDB, models.Pagination, error)
	Reconcile(ctx context.Context, accountID uuid.UUID) (*models.Reconciliation, error)
}

// AddFundsRequest represents the JSON body for a wallet top-up
// swagger:model AddFundsRequest
type AddFundsRequest struct {
	// Between 5 and 10000
	// required: true
	// default: 100
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`

	// stripe or crypto
	// required: true
	// default: stripe
	PaymentMethod models.PaymentMethod `json:"payment_method"`

	// bitcoin, ethereum or usdt; required for crypto
	CryptoType models.CryptoType `json:"crypto_type,omitempty"`
}

// NewGetWalletHandler returns an HTTP handler for the caller's balance.
// @Summary Get wallet
// @Tags wallet
// @Produce json
// @Success 200 {object} models.WalletDB
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /wallet [get]
// @Security BearerAuth
func NewGetWalletHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		wallet, err := svc.Balance(r.Context(), actor.AccountID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

// NewAddFundsHandler returns an HTTP handler for wallet top-ups.
// @Summary Add funds
// @Description Card payments are credited at once. Crypto deposits stay pending until confirmed and return a payment address.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body handlers.AddFundsRequest true "Top-up"
// @Success 200 {object} models.DepositResult "Card payment settled"
// @Success 202 {object} models.DepositResult "Crypto deposit pending"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount or payment method"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /wallet/add-funds [post]
// @Security BearerAuth
func NewAddFundsHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req AddFundsRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		result, err := svc.AddFunds(r.Context(), actor.AccountID, models.DepositRequest{
			Amount:     req.Amount,
			Method:     req.PaymentMethod,
			CryptoType: req.CryptoType,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		status := http.StatusOK
		if result.Entry.Status == models.LedgerPending {
			status = http.StatusAccepted
		}
		writeJSON(w, status, result)
	}
}

// NewListTransactionsHandler returns an HTTP handler for the caller's ledger.
// @Summary List transactions
// @Tags wallet
// @Produce json
// @Param type query string false "DEPOSIT, ORDER_PAYMENT or REFUND"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlers.PaginatedResponse[models.LedgerEntryDB]
// @Failure 400 {object} handlers.ErrorResponse "Unknown type"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /wallet/transactions [get]
// @Security BearerAuth
func NewListTransactionsHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		entries, page, err := svc.Transactions(r.Context(), actor.AccountID, models.LedgerFilter{
			Kind: models.LedgerKind(r.URL.Query().Get("type")),
			Page: pageFromQuery(r, transactionsPageSize),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, paginated(entries, page))
	}
}

// NewConfirmDepositHandler returns an HTTP handler that settles a pending crypto deposit.
// @Summary Confirm deposit
// @Tags wallet
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Success 200 {object} models.DepositResult
// @Failure 400 {object} handlers.ErrorResponse "Deposit is not pending"
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} handlers.ErrorResponse "Deposit not found"
// @Router /wallet/deposits/{id}/confirm [post]
// @Security BearerAuth
func NewConfirmDepositHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		result, err := svc.ConfirmDeposit(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewReconcileWalletHandler returns an HTTP handler that checks a wallet against its ledger.
// @Summary Reconcile wallet
// @Tags wallet
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} models.Reconciliation
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallet/{accountId}/reconcile [get]
// @Security BearerAuth
func NewReconcileWalletHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := uuidParam(w, r, "accountId")
		if !ok {
			return
		}

		rec, err := svc.Reconcile(r.Context(), accountID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

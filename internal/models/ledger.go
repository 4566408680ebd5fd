package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerKind classifies a money movement.
type LedgerKind string

const (
	LedgerDeposit      LedgerKind = "DEPOSIT"
	LedgerOrderPayment LedgerKind = "ORDER_PAYMENT"
	LedgerRefund       LedgerKind = "REFUND"
)

// Valid reports whether k is a known kind.
func (k LedgerKind) Valid() bool {
	switch k {
	case LedgerDeposit, LedgerOrderPayment, LedgerRefund:
		return true
	}
	return false
}

// LedgerStatus is the settlement state of an entry. Only COMPLETED entries count towards the balance.
type LedgerStatus string

const (
	LedgerPending   LedgerStatus = "PENDING"
	LedgerCompleted LedgerStatus = "COMPLETED"
	LedgerFailed    LedgerStatus = "FAILED"
)

// PaymentMethod is the funding source of a deposit.
type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "stripe"
	PaymentCrypto PaymentMethod = "crypto"
)

// CryptoType is the coin used for a crypto deposit.
type CryptoType string

const (
	CryptoBitcoin  CryptoType = "bitcoin"
	CryptoEthereum CryptoType = "ethereum"
	CryptoUSDT     CryptoType = "usdt"
)

// LedgerEntryDB represents an immutable ledger row. Amount and kind never change after insert.
type LedgerEntryDB struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	AccountID     uuid.UUID       `json:"account_id" db:"account_id"`
	Kind          LedgerKind      `json:"kind" db:"kind"`
	Amount        decimal.Decimal `json:"amount" db:"amount"` // Signed: debits are negative
	Description   string          `json:"description" db:"description"`
	Status        LedgerStatus    `json:"status" db:"status"`
	PaymentMethod *PaymentMethod  `json:"payment_method,omitempty" db:"payment_method"`
	OrderID       uuid.NullUUID   `json:"order_id" db:"order_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// LedgerFilter narrows a ledger listing.
type LedgerFilter struct {
	Kind LedgerKind
	Page Page
}

// DepositResult is returned by a top-up. PaymentAddress is set only for pending crypto deposits.
type DepositResult struct {
	Entry          *LedgerEntryDB  `json:"entry"`
	Balance        decimal.Decimal `json:"balance"`
	PaymentAddress string          `json:"payment_address,omitempty"`
}

// DepositRequest asks to top up a wallet.
type DepositRequest struct {
	Amount     decimal.Decimal
	Method     PaymentMethod
	CryptoType CryptoType
}

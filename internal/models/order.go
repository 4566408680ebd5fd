package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// OrderStatus is a step of the order lifecycle.
type OrderStatus string

const (
	OrderPending      OrderStatus = "PENDING"
	OrderConfirmed    OrderStatus = "CONFIRMED"
	OrderInDesign     OrderStatus = "IN_DESIGN"
	OrderInProduction OrderStatus = "IN_PRODUCTION"
	OrderQualityCheck OrderStatus = "QUALITY_CHECK"
	OrderShipped      OrderStatus = "SHIPPED"
	OrderDelivered    OrderStatus = "DELIVERED"
	OrderCompleted    OrderStatus = "COMPLETED"
	OrderCancelled    OrderStatus = "CANCELLED"
)

// orderLifecycle is the linear happy path. CANCELLED branches off the first two steps.
var orderLifecycle = []OrderStatus{
	OrderPending,
	OrderConfirmed,
	OrderInDesign,
	OrderInProduction,
	OrderQualityCheck,
	OrderShipped,
	OrderDelivered,
	OrderCompleted,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := s.index()
	return ok
}

func (s OrderStatus) index() (int, bool) {
	for i, st := range orderLifecycle {
		if st == s {
			return i, true
		}
	}
	return 0, false
}

// Next returns the following lifecycle step.
func (s OrderStatus) Next() (OrderStatus, bool) {
	i, ok := s.index()
	if !ok || i == len(orderLifecycle)-1 {
		return "", false
	}
	return orderLifecycle[i+1], true
}

// Cancellable reports whether an order in s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// CanTransitionTo reports whether target is a legal successor of s.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderCancelled {
		return s.Cancellable()
	}
	next, ok := s.Next()
	return ok && next == target
}

// Open reports whether the order is still being worked on.
func (s OrderStatus) Open() bool {
	switch s {
	case OrderDelivered, OrderCompleted, OrderCancelled:
		return false
	}
	return true
}

// OrderDB represents an order row in the database
type OrderDB struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	AccountID         uuid.UUID       `json:"account_id" db:"account_id"`
	OrderNumber       string          `json:"order_number" db:"order_number"`
	TotalAmount       decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status            OrderStatus     `json:"status" db:"status"`
	Notes             *string         `json:"notes,omitempty" db:"notes"`
	ShippingAddress   *string         `json:"shipping_address,omitempty" db:"shipping_address"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty" db:"estimated_delivery"`
	ActualDelivery    *time.Time      `json:"actual_delivery,omitempty" db:"actual_delivery"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
	Items             []OrderItemDB   `json:"items,omitempty" db:"-"`
}

// OrderItemDB is a line of an order. Prices are frozen at creation time.
type OrderItemDB struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	Tier        Tier            `json:"tier" db:"tier"`
	Material    string          `json:"material" db:"material"`
	Finish      *string         `json:"finish,omitempty" db:"finish"`
	Dimensions  *string         `json:"dimensions,omitempty" db:"dimensions"`
	CustomSpecs types.JSONText  `json:"custom_specs" db:"custom_specs"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// OrderItemInput is a requested order line.
type OrderItemInput struct {
	ProductID   uuid.UUID
	Quantity    int
	Material    string
	Finish      string
	Dimensions  string
	CustomSpecs types.JSONText
}

// OrderInput is a requested order.
type OrderInput struct {
	Items           []OrderItemInput
	Notes           string
	ShippingAddress string
}

// OrderFilter narrows an order listing. Search matches order number or customer e-mail.
type OrderFilter struct {
	AccountID uuid.NullUUID
	Status    OrderStatus
	Search    string
	Page      Page
}

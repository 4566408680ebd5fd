//go:generate mockgen -source=order.go -destination=mock_order_test.go -package=services

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
)

const orderNumberAttempts = 5

// OrderStore defines persistence operations for orders.
type OrderStore interface {
	Create(ctx context.Context, o *models.OrderDB) error
	AddItem(ctx context.Context, item *models.OrderItemDB) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderDB, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.OrderDB, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.OrderDB, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, actualDelivery *time.Time, notes *string) error
}

// OrderService runs the order workflow: priced creation with a wallet debit,
// status progression and cancellation with a refund.
type OrderService struct {
	tx       Transactor
	orders   OrderStore
	products ProductReader
	wallets  WalletStore
	ledger   LedgerStore
	events   Notifier

	now         func() time.Time
	orderNumber func(now time.Time) string
}

// NewOrderService creates a new OrderService.
func NewOrderService(tx Transactor, orders OrderStore, products ProductReader, wallets WalletStore, ledger LedgerStore, events Notifier) *OrderService {
	return &OrderService{
		tx:          tx,
		orders:      orders,
		products:    products,
		wallets:     wallets,
		ledger:      ledger,
		events:      events,
		now:         time.Now,
		orderNumber: newOrderNumber,
	}
}

// newOrderNumber builds ORD- followed by the last 8 digits of the millisecond clock and 3 random digits.
func newOrderNumber(now time.Time) string {
	ms := now.UnixMilli() % 100_000_000
	return fmt.Sprintf("ORD-%08d%03d", ms, rand.Intn(1000))
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func validateOrderItem(product *models.ProductDB, in models.OrderItemInput) error {
	if in.Quantity < product.MinQuantity {
		return validationError("minimum quantity for %s is %d", product.Name, product.MinQuantity)
	}
	if product.MaxQuantity != nil && in.Quantity > *product.MaxQuantity {
		return validationError("maximum quantity for %s is %d", product.Name, *product.MaxQuantity)
	}
	if len(product.Materials) > 0 && !containsFold(product.Materials, in.Material) {
		return validationError("material %q is not available for %s", in.Material, product.Name)
	}
	if in.Finish != "" && len(product.Finishes) > 0 && !containsFold(product.Finishes, in.Finish) {
		return validationError("finish %q is not available for %s", in.Finish, product.Name)
	}
	return nil
}

// CreateOrder prices every item, debits the wallet and records the payment, all in one transaction.
// Nothing is written when the balance does not cover the total.
func (s *OrderService) CreateOrder(ctx context.Context, accountID uuid.UUID, in models.OrderInput) (*models.OrderDB, error) {
	if len(in.Items) == 0 {
		return nil, validationError("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, validationError("quantity must be a positive integer")
		}
		if strings.TrimSpace(item.Material) == "" {
			return nil, validationError("material is required")
		}
	}

	now := s.now()
	order := &models.OrderDB{
		AccountID:       accountID,
		Status:          models.OrderPending,
		Notes:           optional(in.Notes),
		ShippingAddress: optional(in.ShippingAddress),
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		items := make([]models.OrderItemDB, 0, len(in.Items))
		total := decimal.Zero
		maxDays := 0

		for _, input := range in.Items {
			product, err := s.products.GetByID(ctx, input.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return fmt.Errorf("product %s %w", input.ProductID, ErrNotFound)
			}
			if err := validateOrderItem(product, input); err != nil {
				return err
			}

			quote := Quote(product.BasePrice, input.Quantity, input.Material, input.Finish)
			total = total.Add(quote.TotalPrice)
			if quote.EstimatedDeliveryDays > maxDays {
				maxDays = quote.EstimatedDeliveryDays
			}

			items = append(items, models.OrderItemDB{
				ProductID:   product.ID,
				Quantity:    input.Quantity,
				UnitPrice:   quote.UnitPrice,
				TotalPrice:  quote.TotalPrice,
				Tier:        quote.Tier,
				Material:    strings.ToLower(strings.TrimSpace(input.Material)),
				Finish:      optional(strings.ToLower(input.Finish)),
				Dimensions:  optional(input.Dimensions),
				CustomSpecs: input.CustomSpecs,
			})
		}

		if !total.IsPositive() {
			return validationError("order total must be positive")
		}

		wallet, err := s.wallets.LockByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return notFoundError("wallet")
		}
		if wallet.Balance.LessThan(total) {
			return ErrInsufficientFunds
		}

		eta := now.AddDate(0, 0, maxDays)
		order.TotalAmount = total
		order.EstimatedDelivery = &eta
		if err := s.insertOrder(ctx, order, now); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := s.orders.AddItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		order.Items = items

		if _, err := s.wallets.Debit(ctx, accountID, total); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInsufficientFunds
			}
			return err
		}

		return s.ledger.Append(ctx, &models.LedgerEntryDB{
			AccountID:   accountID,
			Kind:        models.LedgerOrderPayment,
			Amount:      total.Neg(),
			Description: fmt.Sprintf("Payment for order %s", order.OrderNumber),
			Status:      models.LedgerCompleted,
			OrderID:     uuid.NullUUID{UUID: order.ID, Valid: true},
		})
	})
	if err != nil {
		logger.Log.Errorw("failed to create order", "account_id", accountID, "error", err)
		return nil, err
	}

	logger.Log.Infow("order created", "order_number", order.OrderNumber, "account_id", accountID, "total", order.TotalAmount)
	s.events.Publish(ctx, models.EventOrderCreated, accountID.String(), map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.StringFixed(2),
		"items":        len(order.Items),
	})
	return order, nil
}

// insertOrder retries with a fresh order number on collision.
func (s *OrderService) insertOrder(ctx context.Context, order *models.OrderDB, now time.Time) error {
	for i := 0; i < orderNumberAttempts; i++ {
		order.OrderNumber = s.orderNumber(now)
		err := s.orders.Create(ctx, order)
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		logger.Log.Warnw("order number collision", "order_number", order.OrderNumber)
	}
	return fmt.Errorf("could not allocate a unique order number after %d attempts", orderNumberAttempts)
}

// CancelOrder cancels the caller's own order and refunds its total.
func (s *OrderService) CancelOrder(ctx context.Context, accountID, orderID uuid.UUID) (*models.OrderDB, error) {
	var order *models.OrderDB
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil || order.AccountID != accountID {
			return notFoundError("order")
		}
		return s.cancel(ctx, order, nil)
	})
	if err != nil {
		logger.Log.Errorw("failed to cancel order", "order_id", orderID, "account_id", accountID, "error", err)
		return nil, err
	}

	s.publishCancelled(ctx, order)
	return s.orders.GetByID(ctx, orderID)
}

// cancel must run inside a transaction holding the order row lock.
func (s *OrderService) cancel(ctx context.Context, order *models.OrderDB, notes *string) error {
	if !order.Status.Cancellable() {
		return fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidStateTransition, order.Status)
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderCancelled, nil, notes); err != nil {
		return err
	}
	if _, err := s.wallets.Credit(ctx, order.AccountID, order.TotalAmount); err != nil {
		return err
	}
	if err := s.ledger.Append(ctx, &models.LedgerEntryDB{
		AccountID:   order.AccountID,
		Kind:        models.LedgerRefund,
		Amount:      order.TotalAmount,
		Description: fmt.Sprintf("Refund for cancelled order %s", order.OrderNumber),
		Status:      models.LedgerCompleted,
		OrderID:     uuid.NullUUID{UUID: order.ID, Valid: true},
	}); err != nil {
		return err
	}

	order.Status = models.OrderCancelled
	return nil
}

func (s *OrderService) publishCancelled(ctx context.Context, order *models.OrderDB) {
	s.events.Publish(ctx, models.EventOrderCancelled, order.AccountID.String(), map[string]any{
		"order_id":      order.ID.String(),
		"order_number":  order.OrderNumber,
		"refund_amount": order.TotalAmount.StringFixed(2),
	})
}

// UpdateStatus advances an order along its lifecycle. Only the next step is allowed,
// or CANCELLED from the first two steps, which refunds like a customer cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, notes string) (*models.OrderDB, error) {
	if !status.Valid() {
		return nil, validationError("unknown order status %q", status)
	}

	var (
		order    *models.OrderDB
		previous models.OrderStatus
	)
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return notFoundError("order")
		}
		previous = order.Status

		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, order.Status, status)
		}
		if status == models.OrderCancelled {
			return s.cancel(ctx, order, optional(notes))
		}

		var delivered *time.Time
		if status == models.OrderDelivered {
			now := s.now()
			delivered = &now
		}
		return s.orders.UpdateStatus(ctx, orderID, status, delivered, optional(notes))
	})
	if err != nil {
		logger.Log.Errorw("failed to update order status", "order_id", orderID, "status", status, "error", err)
		return nil, err
	}

	if status == models.OrderCancelled {
		s.publishCancelled(ctx, order)
	} else {
		s.events.Publish(ctx, models.EventOrderStatusChanged, order.AccountID.String(), map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"from":         string(previous),
			"to":           string(status),
		})
	}
	return s.orders.GetByID(ctx, orderID)
}

// GetOrder returns an order the actor owns or may manage.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, orderID uuid.UUID) (*models.OrderDB, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		logger.Log.Errorw("failed to get order", "order_id", orderID, "error", err)
		return nil, err
	}
	if order == nil {
		return nil, notFoundError("order")
	}
	if !actor.Owns(order.AccountID, models.CapManageOrders) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns a page of orders matching the filter.
func (s *OrderService) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.OrderDB, models.Pagination, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.Pagination{}, validationError("unknown order status %q", f.Status)
	}

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		logger.Log.Errorw("failed to list orders", "error", err)
		return nil, models.Pagination{}, err
	}
	return orders, models.NewPagination(f.Page, total), nil
}

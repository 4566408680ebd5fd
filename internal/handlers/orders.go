//go:generate mockgen -source=orders.go -destination=mock_orders_test.go -package=handlers

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

const ordersPageSize = 10

// OrderManager defines the order workflow operations.
type OrderManager interface {
	CreateOrder(ctx context.Context, accountID uuid.UUID, in models.OrderInput) (*models.OrderDB, error)
	CancelOrder(ctx context.Context, accountID, orderID uuid.UUID) (*models.OrderDB, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, notes string) (*models.OrderDB, error)
	GetOrder(ctx context.Context, actor models.Actor, orderID uuid.UUID) (*models.OrderDB, error)
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.OrderDB, models.Pagination, error)
}

// OrderItemRequest is one requested order line
// swagger:model OrderItemRequest
type OrderItemRequest struct {
	// required: true
	ProductID uuid.UUID `json:"product_id"`

	// required: true
	// default: 1000
	Quantity int `json:"quantity"`

	// required: true
	// default: paper
	Material   string `json:"material"`
	Finish     string `json:"finish,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`

	// Free-form print details stored with the item
	CustomSpecs json.RawMessage `json:"custom_specs,omitempty" swaggertype:"object"`
}

// CreateOrderRequest represents the JSON body for placing an order
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	// required: true
	Items           []OrderItemRequest `json:"items"`
	Notes           string             `json:"notes,omitempty"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
}

// UpdateOrderStatusRequest represents an administrator status change
// swagger:model UpdateOrderStatusRequest
type UpdateOrderStatusRequest struct {
	// required: true
	// default: CONFIRMED
	Status models.OrderStatus `json:"status"`
	Notes  string             `json:"notes,omitempty"`
}

// NewCreateOrderHandler returns an HTTP handler that places an order paid from the wallet.
// @Summary Create order
// @Description Prices every item, debits the wallet and records the payment atomically
// @Tags orders
// @Accept json
// @Produce json
// @Param request body handlers.CreateOrderRequest true "Order"
// @Success 201 {object} models.OrderDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid input or insufficient funds"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Product not found"
// @Router /orders [post]
// @Security BearerAuth
func NewCreateOrderHandler(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req CreateOrderRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := models.OrderInput{
			Notes:           req.Notes,
			ShippingAddress: req.ShippingAddress,
			Items:           make([]models.OrderItemInput, 0, len(req.Items)),
		}
		for _, item := range req.Items {
			in.Items = append(in.Items, models.OrderItemInput{
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				Material:    item.Material,
				Finish:      item.Finish,
				Dimensions:  item.Dimensions,
				CustomSpecs: types.JSONText(item.CustomSpecs),
			})
		}

		order, err := svc.CreateOrder(r.Context(), actor.AccountID, in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

// NewListOrdersHandler returns an HTTP handler for the caller's orders.
// @Summary List own orders
// @Tags orders
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlers.PaginatedResponse[models.OrderDB]
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /orders [get]
// @Security BearerAuth
func NewListOrdersHandler(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		orders, page, err := svc.ListOrders(r.Context(), models.OrderFilter{
			AccountID: uuid.NullUUID{UUID: actor.AccountID, Valid: true},
			Status:    models.OrderStatus(r.URL.Query().Get("status")),
			Page:      pageFromQuery(r, ordersPageSize),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, paginated(orders, page))
	}
}

// NewListAllOrdersHandler returns an HTTP handler for the administrator order queue.
// @Summary List all orders
// @Tags orders
// @Produce json
// @Param status query string false "Status filter"
// @Param search query string false "Order number or customer e-mail"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlers.PaginatedResponse[models.OrderDB]
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Router /orders/admin/all [get]
// @Security BearerAuth
func NewListAllOrdersHandler(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		orders, page, err := svc.ListOrders(r.Context(), models.OrderFilter{
			Status: models.OrderStatus(q.Get("status")),
			Search: q.Get("search"),
			Page:   pageFromQuery(r, 20),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, paginated(orders, page))
	}
}

// NewGetOrderHandler returns an HTTP handler for a single order.
// @Summary Get order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.OrderDB
// @Failure 403 {object} handlers.ErrorResponse "Not your order"
// @Failure 404 {object} handlers.ErrorResponse "Order not found"
// @Router /orders/{id} [get]
// @Security BearerAuth
func NewGetOrderHandler(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		order, err := svc.GetOrder(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// NewCancelOrderHandler returns an HTTP handler that cancels the caller's order and refunds it.
// @Summary Cancel order
// @Description Allowed while the order is PENDING or CONFIRMED
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.OrderDB
// @Failure 400 {object} handlers.ErrorResponse "Order can no longer be cancelled"
// @Failure 404 {object} handlers.ErrorResponse "Order not found"
// @Router /orders/{id}/cancel [patch]
// @Security BearerAuth
func NewCancelOrderHandler(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		order, err := svc.CancelOrder(r.Context(), actor.AccountID, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// NewUpdateOrderStatusHandler returns an HTTP handler for administrator status changes.
// @Summary Update order status
// @Description Moves the order to the next lifecycle step, or cancels it with a refund
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body handlers.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} models.OrderDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid transition"
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} handlers.ErrorResponse "Order not found"
// @Router /orders/{id}/status [patch]
// @Security BearerAuth
func NewUpdateOrderStatusHandler(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req UpdateOrderStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		order, err := svc.UpdateStatus(r.Context(), id, req.Status, req.Notes)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

//go:generate mockgen -source=products.go -destination=mock_products_test.go -package=handlers

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
)

const productsPageSize = 12

// ProductManager defines the catalog operations.
type ProductManager interface {
	List(ctx context.Context, f models.ProductFilter) ([]models.ProductDB, models.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ProductDB, error)
	Create(ctx context.Context, p *models.ProductDB) (*models.ProductDB, error)
	Update(ctx context.Context, p *models.ProductDB) (*models.ProductDB, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PriceCalculator quotes label prices.
type PriceCalculator interface {
	Calculate(ctx context.Context, req models.PriceRequest) (*models.Quote, error)
}

// ProductRequest represents a catalog entry sent by an administrator
// swagger:model ProductRequest
type ProductRequest struct {
	// required: true
	Name        string `json:"name"`
	Description string `json:"description"`

	// required: true
	// default: SHIPPING_LABELS
	Category models.Category `json:"category"`

	// required: true
	// default: 0.08
	BasePrice   decimal.Decimal `json:"base_price"`
	Materials   []string        `json:"materials"`
	Finishes    []string        `json:"finishes"`
	Features    []string        `json:"features"`
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity,omitempty"`
}

func (req ProductRequest) toModel(id uuid.UUID) *models.ProductDB {
	orEmpty := func(v []string) []string {
		if v == nil {
			return []string{}
		}
		return v
	}
	return &models.ProductDB{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		BasePrice:   req.BasePrice,
		Materials:   orEmpty(req.Materials),
		Finishes:    orEmpty(req.Finishes),
		Features:    orEmpty(req.Features),
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
	}
}

// DeleteProductResponse tells whether the product was only hidden
// swagger:model DeleteProductResponse
type DeleteProductResponse struct {
	Message     string `json:"message"`
	SoftDeleted bool   `json:"soft_deleted"`
}

// PriceRequest represents the JSON body for a price quote
// swagger:model PriceRequest
type PriceRequest struct {
	// Takes precedence over category
	ProductID *uuid.UUID `json:"product_id,omitempty"`

	// default: SHIPPING_LABELS
	Category models.Category `json:"category,omitempty"`

	// required: true
	// default: 1000
	Quantity int `json:"quantity"`

	// default: paper
	Material string `json:"material"`
	Finish   string `json:"finish,omitempty"`
}

// NewListProductsHandler returns an HTTP handler for the public catalog.
// @Summary List products
// @Tags products
// @Produce json
// @Param category query string false "Category filter"
// @Param search query string false "Search in name and description"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlers.PaginatedResponse[models.ProductDB]
// @Failure 400 {object} handlers.ErrorResponse "Unknown category"
// @Router /products [get]
func NewListProductsHandler(svc ProductManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		products, page, err := svc.List(r.Context(), models.ProductFilter{
			Category: models.Category(q.Get("category")),
			Search:   q.Get("search"),
			Page:     pageFromQuery(r, productsPageSize),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, paginated(products, page))
	}
}

// NewGetProductHandler returns an HTTP handler for a single active product.
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductDB
// @Failure 404 {object} handlers.ErrorResponse "Product not found"
// @Router /products/{id} [get]
func NewGetProductHandler(svc ProductManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// NewCreateProductHandler returns an HTTP handler that adds a catalog entry.
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param request body handlers.ProductRequest true "Product"
// @Success 201 {object} models.ProductDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Router /products [post]
// @Security BearerAuth
func NewCreateProductHandler(svc ProductManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProductRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.Create(r.Context(), req.toModel(uuid.Nil))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// NewUpdateProductHandler returns an HTTP handler that replaces a catalog entry.
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body handlers.ProductRequest true "Product"
// @Success 200 {object} models.ProductDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 404 {object} handlers.ErrorResponse "Product not found"
// @Router /products/{id} [put]
// @Security BearerAuth
func NewUpdateProductHandler(svc ProductManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req ProductRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.Update(r.Context(), req.toModel(id))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// NewDeleteProductHandler returns an HTTP handler that removes or hides a product.
// @Summary Delete product
// @Description Products referenced by orders are only deactivated
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} handlers.DeleteProductResponse
// @Failure 404 {object} handlers.ErrorResponse "Product not found"
// @Router /products/{id} [delete]
// @Security BearerAuth
func NewDeleteProductHandler(svc ProductManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		soft, err := svc.Delete(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		msg := "Product deleted successfully"
		if soft {
			msg = "Product deactivated because it is referenced by orders"
		}
		writeJSON(w, http.StatusOK, DeleteProductResponse{Message: msg, SoftDeleted: soft})
	}
}

// NewCalculatePriceHandler returns an HTTP handler for price quotes. No authentication is required.
// @Summary Calculate price
// @Tags products
// @Accept json
// @Produce json
// @Param request body handlers.PriceRequest true "Quote request"
// @Success 200 {object} models.Quote
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 404 {object} handlers.ErrorResponse "Product not found"
// @Router /products/calculate-price [post]
func NewCalculatePriceHandler(svc PriceCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PriceRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := models.PriceRequest{
			Category: req.Category,
			Quantity: req.Quantity,
			Material: req.Material,
			Finish:   req.Finish,
		}
		if req.ProductID != nil {
			in.ProductID = uuid.NullUUID{UUID: *req.ProductID, Valid: true}
		}

		quote, err := svc.Calculate(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, quote)
	}
}

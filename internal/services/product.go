//go:generate mockgen -source=product.go -destination=mock_product_test.go -package=services

package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/sbilibin2017/gw-labelvaults/internal/tx"
)

// ProductStore defines persistence operations for the catalog.
type ProductStore interface {
	Create(ctx context.Context, p *models.ProductDB) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductDB, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.ProductDB, int, error)
	Update(ctx context.Context, p *models.ProductDB) error
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService manages the label catalog.
type ProductService struct {
	tx       Transactor
	products ProductStore
	cache    PriceCache
}

// NewProductService creates a new ProductService. cache may be nil.
func NewProductService(tx Transactor, products ProductStore, cache PriceCache) *ProductService {
	return &ProductService{tx: tx, products: products, cache: cache}
}

func validateProduct(p *models.ProductDB) error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("name is required")
	}
	if !p.Category.Valid() {
		return validationError("unknown category %q", p.Category)
	}
	if !p.BasePrice.IsPositive() {
		return validationError("base price must be positive")
	}
	if p.MinQuantity < 1 {
		return validationError("minimum quantity must be at least 1")
	}
	if p.MaxQuantity != nil && *p.MaxQuantity < p.MinQuantity {
		return validationError("maximum quantity must not be below minimum quantity")
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Log.Warnw("failed to invalidate price cache", "product_id", id, "error", err)
	}
}

// List returns a page of active products.
func (s *ProductService) List(ctx context.Context, f models.ProductFilter) ([]models.ProductDB, models.Pagination, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, models.Pagination{}, validationError("unknown category %q", f.Category)
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		logger.Log.Errorw("failed to list products", "error", err)
		return nil, models.Pagination{}, err
	}
	return products, models.NewPagination(f.Page, total), nil
}

// Get returns an active product.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.ProductDB, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get product", "product_id", id, "error", err)
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, notFoundError("product")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, p *models.ProductDB) (*models.ProductDB, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.IsActive = true

	if err := s.products.Create(ctx, p); err != nil {
		logger.Log.Errorw("failed to create product", "name", p.Name, "error", err)
		return nil, err
	}
	return p, nil
}

// Update replaces a product. Existing order items keep their frozen prices.
func (s *ProductService) Update(ctx context.Context, p *models.ProductDB) (*models.ProductDB, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	err := s.tx.Do(ctx, func(txCtx context.Context) error {
		if err := s.products.Update(txCtx, p); err != nil {
			return err
		}
		// readers must not refill the cache from the old row before commit
		tx.AfterCommit(txCtx, func() { s.invalidate(ctx, p.ID) })
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError("product")
	}
	if err != nil {
		logger.Log.Errorw("failed to update product", "product_id", p.ID, "error", err)
		return nil, err
	}
	return p, nil
}

// Delete removes a product, or only hides it when orders reference it.
// It reports whether the product was soft-deleted.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) (softDeleted bool, err error) {
	err = s.tx.Do(ctx, func(txCtx context.Context) error {
		referenced, err := s.products.IsReferenced(txCtx, id)
		if err != nil {
			return err
		}
		softDeleted = referenced
		if referenced {
			err = s.products.Deactivate(txCtx, id)
		} else {
			err = s.products.Delete(txCtx, id)
		}
		if err != nil {
			return err
		}
		tx.AfterCommit(txCtx, func() { s.invalidate(ctx, id) })
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, notFoundError("product")
	}
	if err != nil {
		logger.Log.Errorw("failed to delete product", "product_id", id, "error", err)
		return false, err
	}
	return softDeleted, nil
}

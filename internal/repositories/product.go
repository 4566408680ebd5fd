package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

const productColumns = `id, name, description, category, base_price, materials, finishes, features,
	min_quantity, max_quantity, is_active, created_at, updated_at`

// ProductRepository persists the label catalog.
type ProductRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewProductRepository(db *sqlx.DB, txGetter TxGetter) *ProductRepository {
	return &ProductRepository{db: db, txGetter: txGetter}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.ProductDB) error {
	query := `
		INSERT INTO products (name, description, category, base_price, materials, finishes, features,
		                      min_quantity, max_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + productColumns
	args := []any{p.Name, p.Description, p.Category, p.BasePrice, p.Materials, p.Finishes, p.Features,
		p.MinQuantity, p.MaxQuantity, p.IsActive}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), p, query, args...)
	logQuery(query, []any{p.Name, p.Category, p.BasePrice}, p.ID, err)
	return err
}

// GetByID returns nil when the product does not exist. Inactive products are returned too.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductDB, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p models.ProductDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &p, query, id)
	logQuery(query, []any{id}, p.Name, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns a page of active products ordered by name, with the total count.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.ProductDB, int, error) {
	const where = `
		WHERE is_active
		  AND ($1::VARCHAR IS NULL OR category = $1)
		  AND ($2::TEXT IS NULL OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`
	countQuery := `SELECT COUNT(*) FROM products ` + where
	query := `SELECT ` + productColumns + ` FROM products ` + where + `
		ORDER BY name, id
		LIMIT $3 OFFSET $4`

	ex := executor(ctx, r.db, r.txGetter)
	category, search := nullable(f.Category), likeFilter(f.Search)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, category, search)
	logQuery(countQuery, []any{category, search}, total, err)
	if err != nil {
		return nil, 0, err
	}

	products := []models.ProductDB{}
	args := []any{category, search, f.Page.Limit, f.Page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &products, query, args...)
	logQuery(query, args, len(products), err)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update overwrites the mutable columns. Returns sql.ErrNoRows when the product is missing.
func (r *ProductRepository) Update(ctx context.Context, p *models.ProductDB) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category = $4, base_price = $5, materials = $6,
		    finishes = $7, features = $8, min_quantity = $9, max_quantity = $10, is_active = $11,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns
	args := []any{p.ID, p.Name, p.Description, p.Category, p.BasePrice, p.Materials, p.Finishes,
		p.Features, p.MinQuantity, p.MaxQuantity, p.IsActive}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), p, query, args...)
	logQuery(query, []any{p.ID, p.BasePrice}, p.UpdatedAt, err)
	return err
}

// IsReferenced reports whether any order item points at the product.
func (r *ProductRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`

	var exists bool
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &exists, query, id)
	logQuery(query, []any{id}, exists, err)
	return exists, err
}

// Deactivate hides the product from the catalog but keeps it for order history.
func (r *ProductRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id)
}

// Delete removes an unreferenced product.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *ProductRepository) exec(ctx context.Context, query string, id uuid.UUID) error {
	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

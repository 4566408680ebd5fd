package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

const orderColumns = `o.id, o.account_id, o.order_number, o.total_amount, o.status, o.notes,
	o.shipping_address, o.estimated_delivery, o.actual_delivery, o.created_at, o.updated_at`

const orderItemColumns = `id, order_id, product_id, quantity, unit_price, total_price, tier,
	material, finish, dimensions, custom_specs, created_at`

// OrderRepository persists orders and their items.
type OrderRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewOrderRepository(db *sqlx.DB, txGetter TxGetter) *OrderRepository {
	return &OrderRepository{db: db, txGetter: txGetter}
}

// Create inserts the order header. Returns sql.ErrNoRows if the order number is already taken.
func (r *OrderRepository) Create(ctx context.Context, o *models.OrderDB) error {
	query := `
		INSERT INTO orders AS o (account_id, order_number, total_amount, status, notes,
		                         shipping_address, estimated_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_number) DO NOTHING
		RETURNING ` + orderColumns
	args := []any{o.AccountID, o.OrderNumber, o.TotalAmount, o.Status, o.Notes, o.ShippingAddress, o.EstimatedDelivery}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), o, query, args...)
	logQuery(query, []any{o.AccountID, o.OrderNumber, o.TotalAmount}, o.ID, err)
	return err
}

// AddItem inserts an order line.
func (r *OrderRepository) AddItem(ctx context.Context, item *models.OrderItemDB) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, tier,
		                         material, finish, dimensions, custom_specs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + orderItemColumns

	specs := item.CustomSpecs
	if len(specs) == 0 {
		specs = []byte("{}")
	}
	args := []any{item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice, item.Tier,
		item.Material, item.Finish, item.Dimensions, specs}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), item, query, args...)
	logQuery(query, []any{item.OrderID, item.ProductID, item.Quantity}, item.ID, err)
	return err
}

// GetByID loads the order with its items. Returns nil when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderDB, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := r.get(ctx, query, id)
	if err != nil || o == nil {
		return o, err
	}

	orders := []models.OrderDB{*o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// LockByID reads the order header with FOR UPDATE. Returns nil when absent.
func (r *OrderRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.OrderDB, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

func (r *OrderRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.OrderDB, error) {
	var o models.OrderDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &o, query, id)
	logQuery(query, []any{id}, o.Status, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns a page of orders, newest first, with items and the total count.
func (r *OrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.OrderDB, int, error) {
	const where = `
		FROM orders o
		JOIN accounts a ON a.id = o.account_id
		WHERE ($1::UUID IS NULL OR o.account_id = $1)
		  AND ($2::VARCHAR IS NULL OR o.status = $2)
		  AND ($3::TEXT IS NULL OR o.order_number ILIKE '%' || $3 || '%' OR a.email ILIKE '%' || $3 || '%')`
	countQuery := `SELECT COUNT(*) ` + where
	query := `SELECT ` + orderColumns + ` ` + where + `
		ORDER BY o.created_at DESC, o.id
		LIMIT $4 OFFSET $5`

	ex := executor(ctx, r.db, r.txGetter)
	status, search := nullable(f.Status), likeFilter(f.Search)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, f.AccountID, status, search)
	logQuery(countQuery, []any{f.AccountID, status, search}, total, err)
	if err != nil {
		return nil, 0, err
	}

	orders := []models.OrderDB{}
	args := []any{f.AccountID, status, search, f.Page.Limit, f.Page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &orders, query, args...)
	logQuery(query, args, len(orders), err)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// attachItems loads the items of all given orders in one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []models.OrderDB) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make(pq.StringArray, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		index[o.ID] = i
	}

	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY($1::UUID[]) ORDER BY created_at, id`

	var items []models.OrderItemDB
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &items, query, ids)
	logQuery(query, []any{ids}, len(items), err)
	if err != nil {
		return err
	}

	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return nil
}

// UpdateStatus moves the order to status. actualDelivery and notes are only written when non-nil.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, actualDelivery *time.Time, notes *string) error {
	query := `
		UPDATE orders
		SET status = $2,
		    actual_delivery = COALESCE($3, actual_delivery),
		    notes = COALESCE($4, notes),
		    updated_at = NOW()
		WHERE id = $1
	`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id, status, actualDelivery, notes)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id, status, actualDelivery, notes}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByAccount returns the number of orders placed by the account and how many are still open.
func (r *OrderRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (total, open int, err error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status NOT IN ('DELIVERED', 'COMPLETED', 'CANCELLED')) AS open
		FROM orders
		WHERE account_id = $1
	`

	var counts struct {
		Total int `db:"total"`
		Open  int `db:"open"`
	}
	err = sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &counts, query, accountID)
	logQuery(query, []any{accountID}, counts, err)
	return counts.Total, counts.Open, err
}

// Package tx carries a database transaction through a context so repositories
// can join the unit of work started by a service or an HTTP middleware.
package tx

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
)

// contextKey is an unexported type for keys in context
type contextKey struct{}

type hooksKey struct{}

var txKey = contextKey{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithTx stores a transaction in the context together with an empty
// list of after-commit hooks owned by whoever began the transaction.
func WithTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	ctx = context.WithValue(ctx, txKey, tx)
	return context.WithValue(ctx, hooksKey{}, &commitHooks{})
}

// AfterCommit schedules fn to run once the transaction in ctx has committed.
// Without a transaction fn runs at once. Hooks are dropped on rollback.
func AfterCommit(ctx context.Context, fn func()) {
	h, _ := ctx.Value(hooksKey{}).(*commitHooks)
	if h == nil {
		fn()
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Committed runs the hooks registered through AfterCommit on ctx.
// It must be called by the transaction owner right after a successful commit.
func Committed(ctx context.Context) {
	h, _ := ctx.Value(hooksKey{}).(*commitHooks)
	if h == nil {
		return
	}
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// FromContext retrieves the transaction from the context. Returns nil if not present.
func FromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

// Manager runs functions inside a single database transaction.
type Manager struct {
	db *sqlx.DB
}

// NewManager creates a new Manager
func NewManager(db *sqlx.DB) *Manager {
	return &Manager{db: db}
}

// Do executes fn in a transaction. If ctx already carries one, fn joins it and
// the owner of that transaction decides whether to commit.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if FromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Log.Errorw("failed to begin transaction", "error", err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			panic(rec)
		}
	}()

	txCtx := WithTx(ctx, tx)
	if err = fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Errorw("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.Log.Errorw("failed to commit transaction", "error", err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	Committed(txCtx)
	return nil
}

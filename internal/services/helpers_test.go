package services

import (
	"context"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-labelvaults/internal/tx"
	"github.com/shopspring/decimal"
)

// newPassthroughTx returns a transactor mock that simply runs the function.
func newPassthroughTx(ctrl *gomock.Controller) *MockTransactor {
	tx := NewMockTransactor(ctrl)
	tx.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
	return tx
}

// newCommittingTx returns a transactor mock that behaves like a transaction owner:
// fn gets a context carrying commit hooks, committed is set once fn succeeds and
// only then are the hooks run.
func newCommittingTx(ctrl *gomock.Controller, committed *bool) *MockTransactor {
	m := NewMockTransactor(ctrl)
	m.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			txCtx := tx.WithTx(ctx, nil)
			if err := fn(txCtx); err != nil {
				return err
			}
			*committed = true
			tx.Committed(txCtx)
			return nil
		},
	).AnyTimes()
	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value regardless of its exponent.
type decEq struct{ want decimal.Decimal }

func (m decEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decEq) String() string { return "is equal to " + m.want.String() }

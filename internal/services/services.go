//go:generate mockgen -source=services.go -destination=mock_services_test.go -package=services

package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

// Error variables
var (
	ErrValidation             = errors.New("validation error")
	ErrUnauthenticated        = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrForbidden              = errors.New("insufficient permissions")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("already exists")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// validEmail accepts a bare address only. Display-name forms like
// "Ann <ann@x.com>" parse fine but are not storable as an account e-mail.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Name == "" && addr.Address == email
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier emits domain events. Delivery is best-effort and never fails the caller.
type Notifier interface {
	Publish(ctx context.Context, eventType models.EventType, accountID string, payload map[string]any)
}

//go:generate mockgen -source=support.go -destination=mock_support_test.go -package=services

package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

// TicketStore defines persistence operations for support tickets.
type TicketStore interface {
	Create(ctx context.Context, t *models.TicketDB) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TicketDB, error)
	List(ctx context.Context, f models.TicketFilter) ([]models.TicketDB, int, error)
	Update(ctx context.Context, id uuid.UUID, status *models.TicketStatus, priority *models.TicketPriority) (*models.TicketDB, error)
}

// SupportService handles contact messages and support tickets.
type SupportService struct {
	tickets TicketStore
	events  Notifier
}

// NewSupportService creates a new SupportService.
func NewSupportService(tickets TicketStore, events Notifier) *SupportService {
	return &SupportService{tickets: tickets, events: events}
}

func validateLength(field, value string, lo, hi int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < lo || n > hi {
		return validationError("%s must be between %d and %d characters", field, lo, hi)
	}
	return nil
}

// Contact forwards a public enquiry to the support inbox.
func (s *SupportService) Contact(ctx context.Context, msg models.ContactMessage) error {
	if err := validateLength("name", msg.Name, 2, 100); err != nil {
		return err
	}
	if !validEmail(msg.Email) {
		return validationError("please provide a valid email")
	}
	if err := validateLength("subject", msg.Subject, 5, 200); err != nil {
		return err
	}
	if err := validateLength("message", msg.Message, 10, 2000); err != nil {
		return err
	}

	s.events.Publish(ctx, models.EventContactMessage, "", map[string]any{
		"name":    msg.Name,
		"email":   normalizeEmail(msg.Email),
		"subject": msg.Subject,
		"message": msg.Message,
		"phone":   msg.Phone,
		"company": msg.Company,
	})
	return nil
}

// CreateTicket opens a ticket for the account.
func (s *SupportService) CreateTicket(ctx context.Context, accountID uuid.UUID, subject, message string, priority models.TicketPriority) (*models.TicketDB, error) {
	if err := validateLength("subject", subject, 5, 200); err != nil {
		return nil, err
	}
	if err := validateLength("message", message, 10, 2000); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return nil, validationError("unknown priority %q", priority)
	}

	t := &models.TicketDB{
		AccountID: accountID,
		Subject:   strings.TrimSpace(subject),
		Message:   strings.TrimSpace(message),
		Status:    models.TicketOpen,
		Priority:  priority,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		logger.Log.Errorw("failed to create ticket", "account_id", accountID, "error", err)
		return nil, err
	}

	s.events.Publish(ctx, models.EventTicketCreated, accountID.String(), map[string]any{
		"ticket_id": t.ID.String(),
		"subject":   t.Subject,
		"priority":  string(t.Priority),
	})
	return t, nil
}

// GetTicket returns a ticket the actor owns or may manage.
func (s *SupportService) GetTicket(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.TicketDB, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get ticket", "ticket_id", id, "error", err)
		return nil, err
	}
	if t == nil {
		return nil, notFoundError("ticket")
	}
	if !actor.Owns(t.AccountID, models.CapManageSupport) {
		return nil, ErrForbidden
	}
	return t, nil
}

// ListTickets returns a page of tickets matching the filter.
func (s *SupportService) ListTickets(ctx context.Context, f models.TicketFilter) ([]models.TicketDB, models.Pagination, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.Pagination{}, validationError("unknown ticket status %q", f.Status)
	}

	tickets, total, err := s.tickets.List(ctx, f)
	if err != nil {
		logger.Log.Errorw("failed to list tickets", "error", err)
		return nil, models.Pagination{}, err
	}
	return tickets, models.NewPagination(f.Page, total), nil
}

// UpdateTicket changes status and/or priority.
func (s *SupportService) UpdateTicket(ctx context.Context, id uuid.UUID, status *models.TicketStatus, priority *models.TicketPriority) (*models.TicketDB, error) {
	if status == nil && priority == nil {
		return nil, validationError("nothing to update")
	}
	if status != nil && !status.Valid() {
		return nil, validationError("unknown ticket status %q", *status)
	}
	if priority != nil && !priority.Valid() {
		return nil, validationError("unknown priority %q", *priority)
	}

	t, err := s.tickets.Update(ctx, id, status, priority)
	if err != nil {
		logger.Log.Errorw("failed to update ticket", "ticket_id", id, "error", err)
		return nil, err
	}
	if t == nil {
		return nil, notFoundError("ticket")
	}
	return t, nil
}

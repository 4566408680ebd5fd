//go:generate mockgen -source=support.go -destination=mock_support_test.go -package=handlers

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

const ticketsPageSize = 20

// SupportDesk defines the support operations.
type SupportDesk interface {
	Contact(ctx context.Context, msg models.ContactMessage) error
	CreateTicket(ctx context.Context, accountID uuid.UUID, subject, message string, priority models.TicketPriority) (*models.TicketDB, error)
	GetTicket(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.TicketDB, error)
	ListTickets(ctx context.Context, f models.TicketFilter) ([]models.TicketDB, models.Pagination, error)
	UpdateTicket(ctx context.Context, id uuid.UUID, status *models.TicketStatus, priority *models.TicketPriority) (*models.TicketDB, error)
}

// CreateTicketRequest represents the JSON body for a new ticket
// swagger:model CreateTicketRequest
type CreateTicketRequest struct {
	// 5 to 200 characters
	// required: true
	Subject string `json:"subject"`

	// 10 to 2000 characters
	// required: true
	Message string `json:"message"`

	// LOW, NORMAL, HIGH or URGENT
	// default: NORMAL
	Priority models.TicketPriority `json:"priority,omitempty"`
}

// UpdateTicketRequest represents an administrator ticket change
// swagger:model UpdateTicketRequest
type UpdateTicketRequest struct {
	Status   *models.TicketStatus   `json:"status,omitempty"`
	Priority *models.TicketPriority `json:"priority,omitempty"`
}

// NewContactHandler returns an HTTP handler for the public contact form.
// @Summary Send contact message
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.ContactMessage true "Message"
// @Success 202 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Router /support/contact [post]
func NewContactHandler(svc SupportDesk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg models.ContactMessage
		if !decodeJSON(w, r, &msg) {
			return
		}

		if err := svc.Contact(r.Context(), msg); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, MessageResponse{Message: "Message sent successfully. We'll get back to you soon!"})
	}
}

// NewCreateTicketHandler returns an HTTP handler that opens a ticket for the caller.
// @Summary Create ticket
// @Tags support
// @Accept json
// @Produce json
// @Param request body handlers.CreateTicketRequest true "Ticket"
// @Success 201 {object} models.TicketDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /support/tickets [post]
// @Security BearerAuth
func NewCreateTicketHandler(svc SupportDesk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req CreateTicketRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		ticket, err := svc.CreateTicket(r.Context(), actor.AccountID, req.Subject, req.Message, req.Priority)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ticket)
	}
}

// NewListTicketsHandler returns an HTTP handler for the caller's tickets.
// @Summary List own tickets
// @Tags support
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlers.PaginatedResponse[models.TicketDB]
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /support/tickets [get]
// @Security BearerAuth
func NewListTicketsHandler(svc SupportDesk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		tickets, page, err := svc.ListTickets(r.Context(), models.TicketFilter{
			AccountID: uuid.NullUUID{UUID: actor.AccountID, Valid: true},
			Status:    models.TicketStatus(r.URL.Query().Get("status")),
			Page:      pageFromQuery(r, ticketsPageSize),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, paginated(tickets, page))
	}
}

// NewListAllTicketsHandler returns an HTTP handler for the support queue.
// @Summary List all tickets
// @Tags support
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlers.PaginatedResponse[models.TicketDB]
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Router /support/admin/tickets [get]
// @Security BearerAuth
func NewListAllTicketsHandler(svc SupportDesk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, page, err := svc.ListTickets(r.Context(), models.TicketFilter{
			Status: models.TicketStatus(r.URL.Query().Get("status")),
			Page:   pageFromQuery(r, ticketsPageSize),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, paginated(tickets, page))
	}
}

// NewGetTicketHandler returns an HTTP handler for a single ticket.
// @Summary Get ticket
// @Tags support
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} models.TicketDB
// @Failure 403 {object} handlers.ErrorResponse "Not your ticket"
// @Failure 404 {object} handlers.ErrorResponse "Ticket not found"
// @Router /support/tickets/{id} [get]
// @Security BearerAuth
func NewGetTicketHandler(svc SupportDesk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		ticket, err := svc.GetTicket(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	}
}

// NewUpdateTicketHandler returns an HTTP handler for ticket status and priority changes.
// @Summary Update ticket
// @Tags support
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body handlers.UpdateTicketRequest true "Changes"
// @Success 200 {object} models.TicketDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 403 {object} handlers.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} handlers.ErrorResponse "Ticket not found"
// @Router /support/tickets/{id} [patch]
// @Security BearerAuth
func NewUpdateTicketHandler(svc SupportDesk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req UpdateTicketRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		ticket, err := svc.UpdateTicket(r.Context(), id, req.Status, req.Priority)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	}
}

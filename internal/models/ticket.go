package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the support ticket state.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// TicketPriority orders the support queue.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityNormal TicketPriority = "NORMAL"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TicketDB represents a support ticket row in the database
type TicketDB struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	AccountID uuid.UUID      `json:"account_id" db:"account_id"`
	Subject   string         `json:"subject" db:"subject"`
	Message   string         `json:"message" db:"message"`
	Status    TicketStatus   `json:"status" db:"status"`
	Priority  TicketPriority `json:"priority" db:"priority"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// TicketFilter narrows a ticket listing.
type TicketFilter struct {
	AccountID uuid.NullUUID
	Status    TicketStatus
	Page      Page
}

// ContactMessage is a public enquiry that is forwarded to the support inbox.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

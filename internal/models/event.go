package models

// EventType names a domain event published to the broker.
type EventType string

const (
	EventAccountRegistered  EventType = "account.registered"
	EventOrderCreated       EventType = "order.created"
	EventOrderCancelled     EventType = "order.cancelled"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventWalletDeposited    EventType = "wallet.deposited"
	EventTicketCreated      EventType = "support.ticket_created"
	EventContactMessage     EventType = "support.contact_message"
)

// Event is a notification-worthy fact. Consumers (mailer, analytics) read it from Kafka.
type Event struct {
	EventID   string         `json:"event_id"`   // Unique event identifier
	Type      EventType      `json:"type"`       // What happened
	Timestamp int64          `json:"timestamp"`  // Unix seconds
	AccountID string         `json:"account_id"` // Acting or affected account, empty for anonymous events
	Payload   map[string]any `json:"payload"`    // Template data for the consumer
}

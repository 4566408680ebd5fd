package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of actor roles.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Capability names a privileged action.
type Capability string

const (
	CapManageOrders   Capability = "manage_orders"
	CapManageProducts Capability = "manage_products"
	CapManageSupport  Capability = "manage_support"
	CapManageWallets  Capability = "manage_wallets"
)

var staffCapabilities = map[Capability]struct{}{
	CapManageOrders:   {},
	CapManageProducts: {},
	CapManageSupport:  {},
	CapManageWallets:  {},
}

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleUser:       {},
	RoleAdmin:      staffCapabilities,
	RoleSuperAdmin: staffCapabilities,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

// AccountDB represents an account row in the database
type AccountDB struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"` // Always lower-case
	PasswordHash    string    `json:"-" db:"password_hash"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Company         *string   `json:"company,omitempty" db:"company"`
	Role            Role      `json:"role" db:"role"`
	IsActive        bool      `json:"is_active" db:"is_active"` // false once soft-deleted
	IsEmailVerified bool      `json:"is_email_verified" db:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileUpdate holds the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Company   *string
}

// Profile aggregates an account with its wallet balance and activity counters.
type Profile struct {
	Account     *AccountDB `json:"account"`
	Wallet      *WalletDB  `json:"wallet"`
	OrderCount  int        `json:"order_count"`
	TicketCount int        `json:"ticket_count"`
}

// Registration is the input of sign-up.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Company   string
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	AccountID uuid.UUID
	Role      Role
}

// Owns reports whether the actor may act on a resource owned by accountID,
// either as its owner or through the given capability.
func (a Actor) Owns(accountID uuid.UUID, c Capability) bool {
	return a.AccountID == accountID || a.Role.Can(c)
}

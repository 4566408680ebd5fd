package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Category is a label product family.
type Category string

const (
	CategoryProductLabels    Category = "PRODUCT_LABELS"
	CategoryShippingLabels   Category = "SHIPPING_LABELS"
	CategorySecurityLabels   Category = "SECURITY_LABELS"
	CategoryCustomLabels     Category = "CUSTOM_LABELS"
	CategoryIndustrialLabels Category = "INDUSTRIAL_LABELS"
	CategoryRollLabels       Category = "ROLL_LABELS"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryProductLabels,
	CategoryShippingLabels,
	CategorySecurityLabels,
	CategoryCustomLabels,
	CategoryIndustrialLabels,
	CategoryRollLabels,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ProductDB represents a catalog row in the database
type ProductDB struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Category    Category        `json:"category" db:"category"`
	BasePrice   decimal.Decimal `json:"base_price" db:"base_price"`
	Materials   pq.StringArray  `json:"materials" db:"materials"`
	Finishes    pq.StringArray  `json:"finishes" db:"finishes"`
	Features    pq.StringArray  `json:"features" db:"features"`
	MinQuantity int             `json:"min_quantity" db:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity,omitempty" db:"max_quantity"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Category Category
	Search   string
	Page     Page
}

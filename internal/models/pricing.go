package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier is a volume pricing bracket.
type Tier string

const (
	TierStarter      Tier = "STARTER"
	TierProfessional Tier = "PROFESSIONAL"
	TierEnterprise   Tier = "ENTERPRISE"
)

// PriceRequest asks for a quote. ProductID wins over Category.
type PriceRequest struct {
	ProductID uuid.NullUUID
	Category  Category
	Quantity  int
	Material  string
	Finish    string
}

// PriceBreakdown exposes the factors of a quote.
type PriceBreakdown struct {
	BasePrice                  decimal.Decimal `json:"base_price"`
	MaterialMultiplier         decimal.Decimal `json:"material_multiplier"`
	FinishMultiplier           decimal.Decimal `json:"finish_multiplier"`
	TierMultiplier             decimal.Decimal `json:"tier_multiplier"`
	QuantityDiscountMultiplier decimal.Decimal `json:"quantity_discount_multiplier"`
}

// Quote is the result of a price calculation.
type Quote struct {
	UnitPrice             decimal.Decimal `json:"unit_price"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	Quantity              int             `json:"quantity"`
	Tier                  Tier            `json:"tier"`
	EstimatedDeliveryDays int             `json:"estimated_delivery_days"`
	Breakdown             PriceBreakdown  `json:"breakdown"`
}

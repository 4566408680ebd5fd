//go:generate mockgen -source=pricing.go -destination=mock_pricing_test.go -package=services

package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)

	defaultBasePrice = decimal.RequireFromString("0.12")

	categoryBasePrices = map[models.Category]decimal.Decimal{
		models.CategoryProductLabels:    decimal.RequireFromString("0.12"),
		models.CategoryShippingLabels:   decimal.RequireFromString("0.08"),
		models.CategorySecurityLabels:   decimal.RequireFromString("0.25"),
		models.CategoryCustomLabels:     decimal.RequireFromString("0.18"),
		models.CategoryIndustrialLabels: decimal.RequireFromString("0.35"),
		models.CategoryRollLabels:       decimal.RequireFromString("0.10"),
	}

	// keys are lower-case
	materialMultipliers = map[string]decimal.Decimal{
		"paper":      decimal.RequireFromString("1.0"),
		"vinyl":      decimal.RequireFromString("1.2"),
		"polyester":  decimal.RequireFromString("1.3"),
		"waterproof": decimal.RequireFromString("1.4"),
		"thermal":    decimal.RequireFromString("1.1"),
		"security":   decimal.RequireFromString("2.0"),
		"premium":    decimal.RequireFromString("1.5"),
		"metallic":   decimal.RequireFromString("1.8"),
		"clear":      decimal.RequireFromString("1.3"),
		"textured":   decimal.RequireFromString("1.4"),
	}

	finishMultipliers = map[string]decimal.Decimal{
		"matte":         decimal.RequireFromString("1.0"),
		"gloss":         decimal.RequireFromString("1.1"),
		"foil-stamping": decimal.RequireFromString("1.8"),
		"embossing":     decimal.RequireFromString("2.0"),
		"uv-coating":    decimal.RequireFromString("1.3"),
		"laminated":     decimal.RequireFromString("1.2"),
	}

	// highest threshold first
	tierRules = []struct {
		min  int
		tier models.Tier
		mult decimal.Decimal
	}{
		{2000, models.TierEnterprise, decimal.RequireFromString("0.75")},
		{500, models.TierProfessional, decimal.RequireFromString("0.85")},
		{0, models.TierStarter, one},
	}

	quantityDiscounts = []struct {
		min  int
		mult decimal.Decimal
	}{
		{10000, decimal.RequireFromString("0.90")},
		{5000, decimal.RequireFromString("0.95")},
	}

	deliveryDays = []struct {
		min  int
		days int
	}{
		{5000, 10},
		{2000, 8},
		{500, 5},
		{0, 3},
	}
)

// CategoryBasePrice returns the list price of a category, or the default for unknown ones.
func CategoryBasePrice(c models.Category) decimal.Decimal {
	if p, ok := categoryBasePrices[c]; ok {
		return p
	}
	return defaultBasePrice
}

func lookupMultiplier(table map[string]decimal.Decimal, key string) decimal.Decimal {
	if m, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return m
	}
	return one
}

// Quote prices quantity labels at the given base price. Quantity must be positive.
// The total is rounded from the unrounded unit price so that it never drifts from base × quantity.
func Quote(base decimal.Decimal, quantity int, material, finish string) models.Quote {
	materialMult := lookupMultiplier(materialMultipliers, material)
	finishMult := lookupMultiplier(finishMultipliers, finish)

	tier, tierMult := models.TierStarter, one
	for _, r := range tierRules {
		if quantity >= r.min {
			tier, tierMult = r.tier, r.mult
			break
		}
	}

	discountMult := one
	for _, d := range quantityDiscounts {
		if quantity >= d.min {
			discountMult = d.mult
			break
		}
	}

	days := 3
	for _, d := range deliveryDays {
		if quantity >= d.min {
			days = d.days
			break
		}
	}

	unit := base.Mul(materialMult).Mul(finishMult).Mul(tierMult).Mul(discountMult)

	return models.Quote{
		UnitPrice:             unit.Round(4),
		TotalPrice:            unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		Quantity:              quantity,
		Tier:                  tier,
		EstimatedDeliveryDays: days,
		Breakdown: models.PriceBreakdown{
			BasePrice:                  base,
			MaterialMultiplier:         materialMult,
			FinishMultiplier:           finishMult,
			TierMultiplier:             tierMult,
			QuantityDiscountMultiplier: discountMult,
		},
	}
}

// ProductReader reads catalog entries.
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductDB, error)
}

// PriceCache caches product base prices.
type PriceCache interface {
	GetBasePrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error)
	SetBasePrice(ctx context.Context, productID uuid.UUID, price decimal.Decimal) error
	Invalidate(ctx context.Context, productID uuid.UUID) error
}

// PricingService answers price quotes for anonymous and signed-in callers.
type PricingService struct {
	products ProductReader
	cache    PriceCache
}

// NewPricingService creates a new PricingService. cache may be nil.
func NewPricingService(products ProductReader, cache PriceCache) *PricingService {
	return &PricingService{products: products, cache: cache}
}

// Calculate returns a quote. It has no side effects apart from warming the price cache.
func (s *PricingService) Calculate(ctx context.Context, req models.PriceRequest) (*models.Quote, error) {
	if req.Quantity <= 0 {
		return nil, validationError("quantity must be a positive integer")
	}

	base := CategoryBasePrice(req.Category)
	if req.ProductID.Valid {
		var err error
		base, err = s.basePrice(ctx, req.ProductID.UUID)
		if err != nil {
			return nil, err
		}
	}

	q := Quote(base, req.Quantity, req.Material, req.Finish)
	// quotes show cents; order items keep the finer snapshot from Quote
	q.UnitPrice = q.UnitPrice.Round(2)
	return &q, nil
}

func (s *PricingService) basePrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	if s.cache != nil {
		price, ok, err := s.cache.GetBasePrice(ctx, productID)
		if err != nil {
			logger.Log.Warnw("price cache unavailable", "product_id", productID, "error", err)
		}
		if ok {
			return price, nil
		}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		logger.Log.Errorw("failed to get product", "product_id", productID, "error", err)
		return decimal.Zero, err
	}
	if product == nil || !product.IsActive {
		return decimal.Zero, notFoundError("product")
	}

	if s.cache != nil {
		if err := s.cache.SetBasePrice(ctx, productID, product.BasePrice); err != nil {
			logger.Log.Warnw("failed to cache product price", "product_id", productID, "error", err)
		}
	}
	return product.BasePrice, nil
}

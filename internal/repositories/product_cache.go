package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/shopspring/decimal"
)

// ProductPriceCacheRepository caches product base prices in Redis for quoting.
type ProductPriceCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached prices
}

// NewProductPriceCacheRepository creates a new repository instance with the given TTL
func NewProductPriceCacheRepository(client *redis.Client, expiration time.Duration) *ProductPriceCacheRepository {
	return &ProductPriceCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func priceKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:base_price:%s", productID)
}

// GetBasePrice returns the cached price. ok is false on a cache miss.
func (r *ProductPriceCacheRepository) GetBasePrice(ctx context.Context, productID uuid.UUID) (price decimal.Decimal, ok bool, err error) {
	key := priceKey(productID)

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Log.Debugw("cache miss", "key", key)
		return decimal.Zero, false, nil
	}
	if err != nil {
		logger.Log.Errorw("cache get failed", "key", key, "error", err)
		return decimal.Zero, false, err
	}

	price, err = decimal.NewFromString(val)
	logger.Log.Debugw("cache hit", "key", key, "value", val, "error", err)
	if err != nil {
		return decimal.Zero, false, err
	}
	return price, true, nil
}

// SetBasePrice caches a product price with expiration
func (r *ProductPriceCacheRepository) SetBasePrice(ctx context.Context, productID uuid.UUID, price decimal.Decimal) error {
	key := priceKey(productID)
	err := r.client.Set(ctx, key, price.String(), r.exp).Err()

	logger.Log.Debugw("cache set", "key", key, "price", price, "error", err)
	return err
}

// Invalidate drops the cached price after a catalog change.
func (r *ProductPriceCacheRepository) Invalidate(ctx context.Context, productID uuid.UUID) error {
	key := priceKey(productID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Debugw("cache invalidate", "key", key, "error", err)
	return err
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/frostmag155/shop-frontend/internal/domain"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

const (
	receiptKeyPrefix        = "receipt:"
	lastMirrorKeyPrefix     = "cartsave:"
	checkoutAmountKeyPrefix = "checkout_amount:"
)

// ShopperStateRepository implements repository.ShopperStateRepository using
// the same Redis instance as the cart store.
type ShopperStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewShopperStateRepository creates a Redis-backed shopper state repository.
func NewShopperStateRepository(client *redis.Client, ttl time.Duration) *ShopperStateRepository {
	return &ShopperStateRepository{
		client: client,
		ttl:    ttl,
	}
}

// SaveReceipt persists the last-order receipt for the owner.
func (r *ShopperStateRepository) SaveReceipt(ctx context.Context, ownerID string, receipt *domain.Receipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	if err := r.client.Set(ctx, receiptKeyPrefix+ownerID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set receipt: %w", err)
	}
	return nil
}

// GetReceipt retrieves the last-order receipt for the owner.
func (r *ShopperStateRepository) GetReceipt(ctx context.Context, ownerID string) (*domain.Receipt, error) {
	data, err := r.client.Get(ctx, receiptKeyPrefix+ownerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("receipt", ownerID)
		}
		return nil, fmt.Errorf("redis get receipt: %w", err)
	}

	var receipt domain.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return &receipt, nil
}

// SetLastMirroredAt records when the cart was last accepted by the remote
// mirror.
func (r *ShopperStateRepository) SetLastMirroredAt(ctx context.Context, ownerID string, at time.Time) error {
	value := strconv.FormatInt(at.UTC().UnixMilli(), 10)
	if err := r.client.Set(ctx, lastMirrorKeyPrefix+ownerID, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set last mirror: %w", err)
	}
	return nil
}

// LastMirroredAt returns the last remote-mirror timestamp, or the zero time
// when the cart has never been mirrored.
func (r *ShopperStateRepository) LastMirroredAt(ctx context.Context, ownerID string) (time.Time, error) {
	value, err := r.client.Get(ctx, lastMirrorKeyPrefix+ownerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis get last mirror: %w", err)
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(millis).UTC(), nil
}

// SetCheckoutAmount snapshots the amount presented to the shopper at
// checkout time.
func (r *ShopperStateRepository) SetCheckoutAmount(ctx context.Context, ownerID string, amount domain.Money) error {
	value := strconv.FormatInt(int64(amount), 10)
	if err := r.client.Set(ctx, checkoutAmountKeyPrefix+ownerID, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set checkout amount: %w", err)
	}
	return nil
}

// CheckoutAmount returns the last checkout amount snapshot, or 0 when none
// was recorded.
func (r *ShopperStateRepository) CheckoutAmount(ctx context.Context, ownerID string) (domain.Money, error) {
	value, err := r.client.Get(ctx, checkoutAmountKeyPrefix+ownerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get checkout amount: %w", err)
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	return domain.Money(n), nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/frostmag155/shop-frontend/internal/domain"
)

// ErrCorrupt is returned when a persisted cart document cannot be decoded.
// Callers are expected to fail closed: discard the document and start over
// with an empty cart.
var ErrCorrupt = errors.New("corrupt cart document")

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by its owner ID. Returns an error wrapping
	// ErrCorrupt when the stored document cannot be decoded.
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)

	// Save persists a cart unconditionally, overwriting any existing cart
	// for the owner.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion persists the cart only if the stored version still
	// equals expectedVersion, bumping cart.Version on success. Returns
	// false when a concurrent write won.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a cart from the store by the owner ID.
	Delete(ctx context.Context, ownerID string) error
}

// ShopperStateRepository persists the per-shopper side documents that live
// next to the cart: the last-order receipt, the last remote-mirror timestamp,
// and the checkout amount snapshot.
type ShopperStateRepository interface {
	SaveReceipt(ctx context.Context, ownerID string, receipt *domain.Receipt) error
	GetReceipt(ctx context.Context, ownerID string) (*domain.Receipt, error)

	SetLastMirroredAt(ctx context.Context, ownerID string, at time.Time) error
	LastMirroredAt(ctx context.Context, ownerID string) (time.Time, error)

	SetCheckoutAmount(ctx context.Context, ownerID string, amount domain.Money) error
	CheckoutAmount(ctx context.Context, ownerID string) (domain.Money, error)
}

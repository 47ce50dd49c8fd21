package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/event"
	"github.com/frostmag155/shop-frontend/internal/repository"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct items allowed in a cart.
	MaxItemsPerCart = 50
)

// DefaultRemovalWindow is how long a removed item lingers in pending state
// before finalization, matching the UI's exit animation.
const DefaultRemovalWindow = 400 * time.Millisecond

// AddItemInput is the resolved variant being added to the cart. The variant
// ID must come from the authoritative resolution path, never from local
// matching.
type AddItemInput struct {
	VariantID int64        `json:"variant_id" validate:"required"`
	Model     string       `json:"model" validate:"required"`
	Color     string       `json:"color"`
	Memory    string       `json:"memory"`
	Screen    string       `json:"screen"`
	RAM       string       `json:"ram"`
	BandSize  string       `json:"band_size"`
	DialSize  string       `json:"dial_size"`
	Country   string       `json:"country"`
	Price     domain.Money `json:"price" validate:"gte=0"`
	ImageURL  string       `json:"image_url"`
}

// Mirror pushes cart state to the remote commerce API, best-effort.
// Implementations log and swallow failures; callers never see them.
type Mirror interface {
	Push(ctx context.Context, shopper domain.Shopper, cart *domain.Cart)
	Clear(ctx context.Context, shopper domain.Shopper)
}

// CartService implements the shopper-local cart state machine: merge-on-add,
// clamped quantity adjustment, and two-phase removal.
type CartService struct {
	repo          repository.CartRepository
	mirror        Mirror
	producer      *event.Producer
	logger        *slog.Logger
	cartTTL       time.Duration
	removalWindow time.Duration
}

// NewCartService creates a new cart service.
func NewCartService(
	repo repository.CartRepository,
	mirror Mirror,
	producer *event.Producer,
	logger *slog.Logger,
	cartTTL time.Duration,
	removalWindow time.Duration,
) *CartService {
	if removalWindow <= 0 {
		removalWindow = DefaultRemovalWindow
	}
	return &CartService{
		repo:          repo,
		mirror:        mirror,
		producer:      producer,
		logger:        logger,
		cartTTL:       cartTTL,
		removalWindow: removalWindow,
	}
}

// GetCart loads the shopper's cart. A corrupt stored document fails closed:
// the cart resets to empty rather than propagating a decode error. Loading
// also repairs bad quantities and finalizes overdue pending removals, so
// correctness never depends on the removal timer having fired.
func (s *CartService) GetCart(ctx context.Context, shopper domain.Shopper) (*domain.Cart, error) {
	if shopper.CartID == "" {
		return nil, apperrors.InvalidInput("cart id is required")
	}

	cart, err := s.repo.Get(ctx, shopper.CartID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(shopper.CartID), nil
		}
		if errors.Is(err, repository.ErrCorrupt) {
			s.logger.WarnContext(ctx, "corrupt cart document, resetting to empty",
				slog.String("cart_id", shopper.CartID),
			)
			fresh := s.newEmptyCart(shopper.CartID)
			if saveErr := s.repo.Save(ctx, fresh); saveErr != nil {
				s.logger.ErrorContext(ctx, "failed to reset corrupt cart",
					slog.String("cart_id", shopper.CartID),
					slog.String("error", saveErr.Error()),
				)
			}
			return fresh, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	repaired := cart.Normalize()
	finalized := cart.FinalizeRemovals(time.Now().UTC())
	if repaired || finalized > 0 {
		if _, err := s.saveCart(ctx, cart); err != nil {
			s.logger.WarnContext(ctx, "failed to persist cart repairs",
				slog.String("cart_id", shopper.CartID),
				slog.String("error", err.Error()),
			)
		}
	}

	return cart, nil
}

// AddItem adds a resolved variant to the cart. A duplicate variant ID merges
// into the existing line by incrementing its quantity by one; otherwise the
// item is appended with quantity one. Re-adding an item that is pending
// removal revives it.
func (s *CartService) AddItem(ctx context.Context, shopper domain.Shopper, input AddItemInput) (*domain.Cart, error) {
	if input.VariantID == 0 {
		return nil, apperrors.InvalidInput("variant id is required")
	}
	if input.Model == "" {
		return nil, apperrors.InvalidInput("model is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	cart, err := s.GetCart(ctx, shopper)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(input.VariantID); idx >= 0 {
		item := &cart.Items[idx]
		if item.Quantity >= MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
		}
		item.Quantity++
		item.Price = input.Price
		item.ImageURL = input.ImageURL
		item.PendingRemovalAt = nil
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.LineItem{
			VariantID: input.VariantID,
			Model:     input.Model,
			Color:     input.Color,
			Memory:    input.Memory,
			Screen:    input.Screen,
			RAM:       input.RAM,
			BandSize:  input.BandSize,
			DialSize:  input.DialSize,
			Country:   input.Country,
			Price:     input.Price,
			Quantity:  1,
			ImageURL:  input.ImageURL,
		})
	}

	cart, err = s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, shopper, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("cart_id", shopper.CartID),
		slog.Int64("variant_id", input.VariantID),
	)

	return cart, nil
}

// AdjustQuantity changes an item's quantity by delta (+1 or -1). Decrements
// clamp at one: reaching zero requires an explicit removal.
func (s *CartService) AdjustQuantity(ctx context.Context, shopper domain.Shopper, variantID int64, delta int) (*domain.Cart, error) {
	if delta != 1 && delta != -1 {
		return nil, apperrors.InvalidInput("delta must be +1 or -1")
	}

	cart, err := s.GetCart(ctx, shopper)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(variantID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", fmt.Sprintf("%d", variantID))
	}

	item := &cart.Items[idx]
	next := int(item.Quantity) + delta
	if next < 1 {
		next = 1
	}
	if next > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	if next == int(item.Quantity) {
		return cart, nil
	}
	item.Quantity = domain.Quantity(next)

	cart, err = s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, shopper, cart)

	return cart, nil
}

// RemoveItem starts a two-phase removal: the item is tagged pending with a
// finalize-after deadline, stays visible until the removal window passes,
// then a timer drops it. The cart keeps its item order throughout.
func (s *CartService) RemoveItem(ctx context.Context, shopper domain.Shopper, variantID int64) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, shopper)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(variantID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", fmt.Sprintf("%d", variantID))
	}
	if cart.Items[idx].PendingRemoval() {
		return cart, nil
	}

	deadline := time.Now().UTC().Add(s.removalWindow)
	cart.Items[idx].PendingRemovalAt = &deadline

	cart, err = s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	s.scheduleFinalization(shopper)

	s.logger.InfoContext(ctx, "cart item marked for removal",
		slog.String("cart_id", shopper.CartID),
		slog.Int64("variant_id", variantID),
	)

	return cart, nil
}

// ClearCart removes the local cart entirely and best-effort clears the
// remote mirror.
func (s *CartService) ClearCart(ctx context.Context, shopper domain.Shopper) error {
	if err := s.repo.Delete(ctx, shopper.CartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.mirror.Clear(ctx, shopper)

	if err := s.producer.PublishCartCleared(ctx, shopper.CartID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("cart_id", shopper.CartID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("cart_id", shopper.CartID),
	)

	return nil
}

// scheduleFinalization arms a timer that drops overdue pending removals once
// the removal window closes. Load-time finalization covers the case where
// the process restarts before the timer fires.
func (s *CartService) scheduleFinalization(shopper domain.Shopper) {
	time.AfterFunc(s.removalWindow, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cart, err := s.repo.Get(ctx, shopper.CartID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.logger.Error("removal finalization: load failed",
					slog.String("cart_id", shopper.CartID),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		if cart.FinalizeRemovals(time.Now().UTC()) == 0 {
			return
		}

		cart, err = s.saveCart(ctx, cart)
		if err != nil {
			s.logger.Error("removal finalization: save failed",
				slog.String("cart_id", shopper.CartID),
				slog.String("error", err.Error()),
			)
			return
		}

		s.afterMutation(ctx, shopper, cart)
	})
}

// saveCart persists the cart with optimistic locking, bumping the version
// token on success. A concurrent-write conflict surfaces as a 409.
func (s *CartService) saveCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	ok, err := s.repo.SaveIfVersion(ctx, cart, cart.Version)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}
	return cart, nil
}

// afterMutation fans out the side effects of a successful cart save: the
// best-effort remote mirror push and the cart.updated event. Neither can
// fail the operation.
func (s *CartService) afterMutation(ctx context.Context, shopper domain.Shopper, cart *domain.Cart) {
	s.mirror.Push(ctx, shopper, cart)

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("cart_id", cart.OwnerID),
			slog.String("error", err.Error()),
		)
	}
}

// newEmptyCart creates a new empty cart for the given owner.
func (s *CartService) newEmptyCart(ownerID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Items:     []domain.LineItem{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}

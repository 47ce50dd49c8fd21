package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/repository"
)

// CartPusher is the slice of the commerce client the mirror needs.
type CartPusher interface {
	SaveCart(ctx context.Context, userID string, cart *domain.Cart) error
	ClearCart(ctx context.Context, userID string) error
}

// RemoteMirror implements Mirror against the commerce API. Pushes carry the
// cart version token so the remote can apply last-writer-wins ordering:
// a push with a version below the last accepted one is simply dropped
// upstream. Every failure here is logged and swallowed; mirroring is a
// convenience, never a dependency.
type RemoteMirror struct {
	commerce CartPusher
	state    repository.ShopperStateRepository
	logger   *slog.Logger
}

// NewRemoteMirror creates the remote cart mirror.
func NewRemoteMirror(commerce CartPusher, state repository.ShopperStateRepository, logger *slog.Logger) *RemoteMirror {
	return &RemoteMirror{
		commerce: commerce,
		state:    state,
		logger:   logger,
	}
}

// Push mirrors the cart snapshot for authenticated shoppers. Anonymous
// shoppers have no remote cart, so the push is a no-op. On success the
// last-mirrored timestamp is recorded. No retries: the next cart mutation
// pushes a fresher snapshot with a higher version anyway.
func (m *RemoteMirror) Push(ctx context.Context, shopper domain.Shopper, cart *domain.Cart) {
	if !shopper.Authenticated() {
		return
	}

	if err := m.commerce.SaveCart(ctx, shopper.UserID, cart); err != nil {
		m.logger.WarnContext(ctx, "cart mirror push failed",
			slog.String("user_id", shopper.UserID),
			slog.Int("version", cart.Version),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := m.state.SetLastMirroredAt(ctx, shopper.CartID, time.Now().UTC()); err != nil {
		m.logger.WarnContext(ctx, "failed to record mirror timestamp",
			slog.String("cart_id", shopper.CartID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.DebugContext(ctx, "cart mirrored",
		slog.String("user_id", shopper.UserID),
		slog.Int("version", cart.Version),
	)
}

// Clear empties the remote cart for authenticated shoppers, best-effort.
func (m *RemoteMirror) Clear(ctx context.Context, shopper domain.Shopper) {
	if !shopper.Authenticated() {
		return
	}

	if err := m.commerce.ClearCart(ctx, shopper.UserID); err != nil {
		m.logger.WarnContext(ctx, "remote cart clear failed",
			slog.String("user_id", shopper.UserID),
			slog.String("error", err.Error()),
		)
	}
}

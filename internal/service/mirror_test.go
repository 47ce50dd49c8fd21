package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/frostmag155/shop-frontend/internal/domain"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

type mockCartPusher struct {
	mock.Mock
}

func (m *mockCartPusher) SaveCart(ctx context.Context, userID string, cart *domain.Cart) error {
	args := m.Called(ctx, userID, cart)
	return args.Error(0)
}

func (m *mockCartPusher) ClearCart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestMirrorPush_AnonymousShopperIsNoOp(t *testing.T) {
	pusher := new(mockCartPusher)
	state := new(mockStateRepository)
	mirror := NewRemoteMirror(pusher, state, newTestLogger())

	anon := domain.Shopper{CartID: "guest-abc"}
	mirror.Push(context.Background(), anon, cartWithItems())

	pusher.AssertNotCalled(t, "SaveCart", mock.Anything, mock.Anything, mock.Anything)
	state.AssertNotCalled(t, "SetLastMirroredAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestMirrorPush_RecordsTimestampOnSuccess(t *testing.T) {
	pusher := new(mockCartPusher)
	state := new(mockStateRepository)
	mirror := NewRemoteMirror(pusher, state, newTestLogger())
	ctx := context.Background()

	cart := cartWithItems(domain.LineItem{VariantID: 1, Price: 100, Quantity: 1})
	pusher.On("SaveCart", ctx, "user-1", cart).Return(nil)
	state.On("SetLastMirroredAt", ctx, "user-1", mock.AnythingOfType("time.Time")).Return(nil)

	mirror.Push(ctx, testShopper(), cart)

	pusher.AssertCalled(t, "SaveCart", ctx, "user-1", cart)
	state.AssertCalled(t, "SetLastMirroredAt", ctx, "user-1", mock.AnythingOfType("time.Time"))
}

func TestMirrorPush_FailureIsSwallowed(t *testing.T) {
	pusher := new(mockCartPusher)
	state := new(mockStateRepository)
	mirror := NewRemoteMirror(pusher, state, newTestLogger())
	ctx := context.Background()

	cart := cartWithItems(domain.LineItem{VariantID: 1, Price: 100, Quantity: 1})
	pusher.On("SaveCart", ctx, "user-1", cart).Return(apperrors.Unreachable("commerce api unreachable"))

	// Must not panic or propagate; the timestamp stays untouched.
	mirror.Push(ctx, testShopper(), cart)

	state.AssertNotCalled(t, "SetLastMirroredAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestMirrorPush_TimestampFailureIsSwallowed(t *testing.T) {
	pusher := new(mockCartPusher)
	state := new(mockStateRepository)
	mirror := NewRemoteMirror(pusher, state, newTestLogger())
	ctx := context.Background()

	cart := cartWithItems()
	pusher.On("SaveCart", ctx, "user-1", cart).Return(nil)
	state.On("SetLastMirroredAt", ctx, "user-1", mock.AnythingOfType("time.Time")).
		Return(apperrors.Internal(assert.AnError))

	mirror.Push(ctx, testShopper(), cart)
}

func TestMirrorClear_AnonymousShopperIsNoOp(t *testing.T) {
	pusher := new(mockCartPusher)
	mirror := NewRemoteMirror(pusher, new(mockStateRepository), newTestLogger())

	mirror.Clear(context.Background(), domain.Shopper{CartID: "guest-abc"})

	pusher.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
}

func TestMirrorClear_FailureIsSwallowed(t *testing.T) {
	pusher := new(mockCartPusher)
	mirror := NewRemoteMirror(pusher, new(mockStateRepository), newTestLogger())
	ctx := context.Background()

	pusher.On("ClearCart", ctx, "user-1").Return(apperrors.Unreachable("commerce api unreachable"))

	mirror.Clear(ctx, testShopper())

	pusher.AssertCalled(t, "ClearCart", ctx, "user-1")
}

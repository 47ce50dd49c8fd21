package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/repository"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		ID:      "cart-001",
		OwnerID: "user-001",
		Items: []domain.LineItem{
			{
				VariantID: 42,
				Model:     "iPhone 15",
				Color:     "black",
				Memory:    "256GB",
				Price:     79990,
				Quantity:  2,
				ImageURL:  "https://img.example.com/iphone.jpg",
			},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)
	require.NoError(t, mr.Set("cart:"+cart.OwnerID, string(data)))

	got, err := repo.Get(context.Background(), cart.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
	assert.Equal(t, cart.OwnerID, got.OwnerID)
	assert.Equal(t, cart.Version, got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(42), got.Items[0].VariantID)
	assert.Equal(t, "iPhone 15", got.Items[0].Model)
	assert.Equal(t, domain.Money(79990), got.Items[0].Price)
	assert.Equal(t, domain.Quantity(2), got.Items[0].Quantity)
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nonexistent-user")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_CorruptDocument(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:user-001", "{not valid json"))

	got, err := repo.Get(context.Background(), "user-001")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrCorrupt)
}

// ---------------------------------------------------------------------------
// Save / Delete
// ---------------------------------------------------------------------------

func TestCartRepository_Save_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	require.NoError(t, repo.Save(ctx, cart))

	got, err := repo.Get(ctx, cart.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, cart.Version, got.Version)
	assert.Len(t, got.Items, 1)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	ttl := mr.TTL("cart:" + cart.OwnerID)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestCartRepository_Delete(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	require.NoError(t, repo.Save(ctx, cart))
	require.NoError(t, repo.Delete(ctx, cart.OwnerID))

	_, err := repo.Get(ctx, cart.OwnerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Delete_MissingCartIsNoError(t *testing.T) {
	repo, _ := setupTestRedis(t)
	assert.NoError(t, repo.Delete(context.Background(), "never-existed"))
}

// ---------------------------------------------------------------------------
// SaveIfVersion
// ---------------------------------------------------------------------------

func TestCartRepository_SaveIfVersion_NewCart(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	cart.Version = 0

	ok, err := repo.SaveIfVersion(ctx, cart, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, cart.Version)

	got, err := repo.Get(ctx, cart.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestCartRepository_SaveIfVersion_VersionIncrementsMonotonically(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	cart.Version = 0

	for expected := 0; expected < 3; expected++ {
		ok, err := repo.SaveIfVersion(ctx, cart, expected)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, expected+1, cart.Version)
	}
}

func TestCartRepository_SaveIfVersion_StaleVersionRejected(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	cart.Version = 0
	ok, err := repo.SaveIfVersion(ctx, cart, 0)
	require.NoError(t, err)
	require.True(t, ok) // stored version is now 1

	stale := sampleCart()
	stale.Version = 0
	ok, err = repo.SaveIfVersion(ctx, stale, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, stale.Version, "version must not advance on rejected save")

	got, err := repo.Get(ctx, cart.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestCartRepository_SaveIfVersion_MissingCartWithNonzeroExpected(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleCart()
	ok, err := repo.SaveIfVersion(context.Background(), cart, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCartRepository_SaveIfVersion_CorruptStoredCartIsOverwritten(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("cart:user-001", "garbage"))

	cart := sampleCart()
	ok, err := repo.SaveIfVersion(ctx, cart, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Get(ctx, cart.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

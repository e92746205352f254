package wallet

import (
	"context"
	"testing"

	"creomart/internal/models"
	"creomart/internal/repositories/repotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache records wallet cache traffic for assertions.
type memCache struct {
	wallets       map[uint]*models.Wallet
	invalidations int
}

func newMemCache() *memCache {
	return &memCache{wallets: make(map[uint]*models.Wallet)}
}

func (c *memCache) GetWallet(ctx context.Context, userID uint) (*models.Wallet, bool, error) {
	w, ok := c.wallets[userID]
	return w, ok, nil
}

func (c *memCache) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	c.wallets[wallet.UserID] = wallet
	return nil
}

func (c *memCache) InvalidateWallet(ctx context.Context, userID uint) error {
	delete(c.wallets, userID)
	c.invalidations++
	return nil
}

func TestGetOrCreate(t *testing.T) {
	repo := repotest.NewMemory()
	cache := newMemCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, first.Balance.IsZero())
	assert.False(t, first.IsFrozen)

	second, err := svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := svc.GetOrCreate(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGet_ServesFromCache(t *testing.T) {
	repo := repotest.NewMemory()
	cache := newMemCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	w, err := svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	// Poison the cached copy to prove Get prefers it over the database.
	cached := *w
	cached.Balance = decimal.NewFromInt(42)
	cache.wallets[1] = &cached

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(42)))
}

func TestFreezeUnfreeze(t *testing.T) {
	repo := repotest.NewMemory()
	cache := newMemCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	w, err := svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	w.Balance = decimal.NewFromInt(100)
	require.NoError(t, repo.SaveWallet(ctx, w))
	cache.InvalidateWallet(ctx, 1)

	require.NoError(t, svc.Freeze(ctx, 1, "chargeback review"))

	w, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, w.IsFrozen)
	assert.Equal(t, "chargeback review", w.FreezeReason)

	// Funds are retained but unavailable.
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))
	available, err := svc.AvailableBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, available.IsZero())

	require.NoError(t, svc.Unfreeze(ctx, 1))
	w, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, w.IsFrozen)
	assert.Empty(t, w.FreezeReason)

	available, err = svc.AvailableBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(100)))
}

func TestFreeze_UnknownWallet(t *testing.T) {
	svc := NewService(repotest.NewMemory(), newMemCache())

	err := svc.Freeze(context.Background(), 99, "reason")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestFreeze_InvalidatesCache(t *testing.T) {
	repo := repotest.NewMemory()
	cache := newMemCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	before := cache.invalidations
	require.NoError(t, svc.Freeze(ctx, 1, "reason"))
	assert.Greater(t, cache.invalidations, before)

	// The next read sees the frozen state, not a stale cached copy.
	w, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, w.IsFrozen)
}

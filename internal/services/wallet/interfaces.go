package wallet

import (
	"context"

	"creomart/internal/models"

	"github.com/shopspring/decimal"
)

// Service defines the wallet aggregate operations.
type Service interface {
	// GetOrCreate lazily creates the user's wallet. Idempotent and safe
	// under concurrent first touch.
	GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error)
	// Get is GetOrCreate behind the read cache.
	Get(ctx context.Context, userID uint) (*models.Wallet, error)
	// AvailableBalance is zero while the wallet is frozen.
	AvailableBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	Freeze(ctx context.Context, userID uint, reason string) error
	Unfreeze(ctx context.Context, userID uint) error
}

// CacheOperator is the slice of the cache layer the wallet service needs.
type CacheOperator interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, bool, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

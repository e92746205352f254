package wallet

import (
	"context"
	"errors"
	"fmt"

	"creomart/internal/models"
	"creomart/internal/repositories"

	"github.com/shopspring/decimal"
)

type service struct {
	repo  repositories.WalletRepository
	cache CacheOperator
}

// NewService creates a new wallet service
func NewService(repo repositories.WalletRepository, cache CacheOperator) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, err := s.repo.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}
	s.cache.CacheWallet(ctx, w)
	return w, nil
}

func (s *service) Get(ctx context.Context, userID uint) (*models.Wallet, error) {
	if w, found, err := s.cache.GetWallet(ctx, userID); err == nil && found {
		return w, nil
	}
	return s.GetOrCreate(ctx, userID)
}

func (s *service) AvailableBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	w, err := s.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.AvailableBalance(), nil
}

func (s *service) Freeze(ctx context.Context, userID uint, reason string) error {
	return s.setFrozen(ctx, userID, true, reason)
}

func (s *service) Unfreeze(ctx context.Context, userID uint) error {
	return s.setFrozen(ctx, userID, false, "")
}

func (s *service) setFrozen(ctx context.Context, userID uint, frozen bool, reason string) error {
	w, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	w.IsFrozen = frozen
	w.FreezeReason = reason
	if err := s.repo.SaveWallet(ctx, w); err != nil {
		return fmt.Errorf("failed to update wallet freeze state: %w", err)
	}

	s.cache.InvalidateWallet(ctx, userID)
	return nil
}
